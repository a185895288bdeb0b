package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP listen address, e.g. ":8080"
	Address string `env:"ADDRESS" envDefault:":8080"`

	// DevMode switches AWS clients to local endpoints with dummy credentials
	DevMode bool `env:"DEV_MODE" envDefault:"false"`

	DynamoDBEndpoint string `env:"DYNAMODB_ENDPOINT"`
	DynamoDBTable    string `env:"DYNAMODB_TABLE" envDefault:"RetreatAssets"`

	SQSEndpoint       string `env:"SQS_ENDPOINT"`
	GalleryClearQueue string `env:"GALLERY_CLEAR_QUEUE" envDefault:"GalleryClearQueue"`

	RedisEndpoint string `env:"REDIS_ENDPOINT" envDefault:"localhost:6379"`

	// Base64-encoded HMAC secret for pass session tokens
	JWTSecret string `env:"JWT_SECRET"`

	// Gemini chat passthrough; empty key degrades to the offline sentinel
	GeminiAPIKey   string `env:"GEMINI_API_KEY"`
	GeminiEndpoint string `env:"GEMINI_ENDPOINT" envDefault:"https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-pro:generateContent"`

	// Optional remote upload side-channel; empty means encode-and-store only
	UploadServerURL string `env:"UPLOAD_SERVER_URL"`

	// Directory backing the local /upload endpoint
	UploadDir string `env:"UPLOAD_DIR" envDefault:"public/uploads"`

	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"*"`
}

// Load loads .env (if present) and parses environment variables into Config.
func Load() (Config, error) {
	// Load .env if available; ignore error if file does not exist
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
