package main

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/ruralsv/retreat/api"
	"github.com/ruralsv/retreat/clients/gemini"
	"github.com/ruralsv/retreat/clients/uploads"
	"github.com/ruralsv/retreat/config"
	"github.com/ruralsv/retreat/logging"
	"github.com/ruralsv/retreat/mq/sqsmq"
	pubsubredis "github.com/ruralsv/retreat/pubsub/redis"
	"github.com/ruralsv/retreat/store/dynamo"
	"github.com/ruralsv/retreat/store/redismirror"
	"github.com/ruralsv/retreat/store/tiered"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()

	durable, err := dynamo.NewDynamoAssetStore(ctx, cfg.DevMode, cfg.DynamoDBEndpoint, cfg.DynamoDBTable)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create dynamodb store")
	}

	clearQueue, err := sqsmq.NewSQSMessageQueue(ctx, cfg.DevMode, cfg.SQSEndpoint, cfg.GalleryClearQueue)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create sqs queue")
	}

	broker, err := pubsubredis.NewRedisBroker(ctx, cfg.DevMode, cfg.RedisEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create redis broker")
	}
	// The mirror shares the broker's connection pool
	mirror := redismirror.NewWithClient(broker.Client())

	assetStore, err := tiered.NewTieredAssetStore(durable, mirror)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create tiered store")
	}

	jwtSecret, err := base64.StdEncoding.DecodeString(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to decode base64 jwt secret")
	}

	chat := gemini.NewClient(cfg.GeminiEndpoint, cfg.GeminiAPIKey)
	uploader := uploads.NewClient(cfg.UploadServerURL)

	shutdownCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	retreatAPI, err := api.NewRetreatAPI(assetStore, mirror, broker, clearQueue, chat, uploader, jwtSecret, cfg.UploadDir, shutdownCtx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create retreat api")
	}

	svc := retreatAPI.Service()
	if err := svc.Hydrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to hydrate registry")
	}
	if err := svc.SeedDemoPass(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to seed demo pass")
	}

	mux := http.NewServeMux()
	retreatAPI.RegisterRoutes(mux, cfg.AllowedOrigin)

	log.Info().Str("address", cfg.Address).Msg("starting server")
	if err := http.ListenAndServe(cfg.Address, mux); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
