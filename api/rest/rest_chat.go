package rest

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ruralsv/retreat/clients/gemini"
)

type chatRequest struct {
	Message string        `json:"message"`
	History []gemini.Turn `json:"history"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

const maxChatHistory = 20

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.chatLimiter.Allow() {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if len(req.History) > maxChatHistory {
		req.History = req.History[len(req.History)-maxChatHistory:]
	}

	// The chat client degrades internally; this never errors
	reply := h.Service.Chat.SendMessage(r.Context(), req.Message, req.History)
	h.sendResponse(w, chatResponse{Reply: reply})
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	counts, err := h.Service.UploadStats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("stats lookup failed")
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	h.sendResponse(w, counts)
}
