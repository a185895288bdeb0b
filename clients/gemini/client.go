// Package gemini is a thin passthrough to the Gemini generateContent REST
// endpoint for the concierge chat widget. It never returns an error to the
// UI: a missing key or any upstream failure degrades to a fixed sentinel
// string instead.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Sentinel replies shown when the upstream model is unreachable.
const (
	SentinelNoKey      = "[demo mode] The concierge is offline: no API key is configured."
	SentinelBadStatus  = "[demo mode] The concierge did not respond properly. Please try again later."
	SentinelEmptyReply = "[demo mode] The concierge had nothing to say. Please try again later."
	SentinelTransport  = "[demo mode] Could not reach the concierge. Please try again later."
)

// Part and Turn mirror the generateContent wire format.
type Part struct {
	Text string `json:"text"`
}

type Turn struct {
	Role  string `json:"role"` // "user" or "model"
	Parts []Part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []Turn           `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewClient(endpoint string, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendMessage forwards the new user text plus prior turns and returns the
// model's reply, or a sentinel string when degraded.
func (c *Client) SendMessage(ctx context.Context, message string, history []Turn) string {
	if strings.TrimSpace(c.apiKey) == "" {
		return SentinelNoKey
	}

	reqBody := generateRequest{
		Contents: append(append([]Turn{}, history...), Turn{
			Role:  "user",
			Parts: []Part{{Text: message}},
		}),
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			TopP:            0.9,
			TopK:            40,
			MaxOutputTokens: 1024,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		log.Error().Err(err).Msg("gemini request marshal failed")
		return SentinelTransport
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?key="+c.apiKey, bytes.NewReader(bodyBytes))
	if err != nil {
		return SentinelTransport
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("gemini request failed")
		return SentinelTransport
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("gemini http error")
		return SentinelBadStatus
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		log.Error().Err(err).Msg("gemini response decode failed")
		return SentinelBadStatus
	}

	if len(genResp.Candidates) == 0 {
		return SentinelEmptyReply
	}

	texts := make([]string, 0, len(genResp.Candidates[0].Content.Parts))
	for _, p := range genResp.Candidates[0].Content.Parts {
		texts = append(texts, p.Text)
	}
	reply := strings.TrimSpace(strings.Join(texts, "\n"))
	if reply == "" {
		return SentinelEmptyReply
	}
	return reply
}
