package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ruralsv/retreat/service"
)

type mintPassRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

func (h *Handler) HandlePasses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req mintPassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pass, err := h.Service.MintPass(r.Context(), req.Name, req.Email, req.Secret)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Error().Err(err).Msg("mint pass failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.sendResponse(w, pass)
}

type verifyPassRequest struct {
	PassID string `json:"passId"`
	Secret string `json:"secret"`
}

type verifyPassResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Token  string `json:"token"`
}

func (h *Handler) HandlePassVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req verifyPassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pass, token, err := h.Service.VerifyPass(r.Context(), req.PassID, req.Secret)
	if err != nil {
		if errors.Is(err, service.ErrPassMismatch) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		log.Error().Err(err).Msg("pass verify failed")
		http.Error(w, "verification failed", http.StatusInternalServerError)
		return
	}

	h.sendResponse(w, verifyPassResponse{
		ID:     pass.ID,
		Name:   pass.Name,
		Email:  pass.Email,
		Avatar: pass.Avatar,
		Token:  token,
	})
}

type resetSecretRequest struct {
	PassID    string `json:"passId"`
	Email     string `json:"email"`
	NewSecret string `json:"newSecret"`
}

func (h *Handler) HandlePassReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req resetSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ok, err := h.Service.ResetSecret(r.Context(), req.PassID, req.Email, req.NewSecret)
	if err != nil {
		log.Error().Err(err).Msg("pass reset failed")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.sendResponse(w, map[string]bool{"success": ok})
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token := h.getTokenFromAuthHeader(r)
	pass, err := h.Service.PassFromToken(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	h.sendResponse(w, pass)
}
