package ws

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ruralsv/retreat/service"
)

type Handler struct {
	Service *service.Service
	Hub     *Hub
}

func NewHandler(svc *service.Service, hub *Hub) *Handler {
	return &Handler{
		Service: svc,
		Hub:     hub,
	}
}

func (h *Handler) NewWsUpgrader(requiredOrigin string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == requiredOrigin
		},
		Subprotocols: []string{"retreat-v1"},
	}
}

// ServeWS handles websocket requests from the peer. Connections are
// anonymous listeners; the event stream is public site state.
func (h *Handler) ServeWS(wsUpgrader websocket.Upgrader, w http.ResponseWriter, r *http.Request, shutdownCtx context.Context) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("failed to upgrade ws connection")
		return
	}

	client := NewClient(h.Hub, conn, h.HandleWsMessage)
	h.Hub.OpenCh <- client

	go client.ReadPump()
	go client.WritePump(shutdownCtx)
}

type message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type responseMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (h *Handler) HandleWsMessage(client *Client, messageType int, messageBytes []byte) {
	var msg message
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		log.Debug().Err(err).Msg("invalid ws json")
		return
	}

	var resp responseMessage

	switch msg.Type {
	case "ping":
		resp = responseMessage{Type: "pong"}

	case "stats":
		counts, err := h.Service.UploadStats(context.Background())
		if err != nil {
			log.Warn().Err(err).Msg("ws stats lookup failed")
			resp = responseMessage{Type: "stats_response", Data: map[string]any{"success": false}}
			break
		}
		resp = responseMessage{Type: "stats_response", Data: map[string]any{"success": true, "counts": counts}}

	default:
		log.Debug().Str("type", msg.Type).Msg("unknown ws message type")
	}

	if resp.Type != "" {
		respBytes, err := json.Marshal(resp)
		if err != nil {
			return
		}
		client.Send <- respBytes
	}
}
