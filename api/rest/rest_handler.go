package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/ruralsv/retreat/codec"
	"github.com/ruralsv/retreat/service"
)

const maxUploadBytes = 32 << 20

type Handler struct {
	Service     *service.Service
	uploadDir   string
	chatLimiter *rate.Limiter
	uploadMap   *uploadMap
}

func NewHandler(svc *service.Service, uploadDir string) *Handler {
	return &Handler{
		Service: svc,
		// One chat call per second sitewide with small bursts; the widget
		// is a demo concierge, not a chat product
		chatLimiter: rate.NewLimiter(rate.Limit(1), 5),
		uploadDir:   uploadDir,
		uploadMap:   newUploadMap(uploadDir),
	}
}

// HandleAssets serves the overridden slot list.
func (h *Handler) HandleAssets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.sendResponse(w, h.Service.Slots())
}

// HandleAssetUpload replaces a named slot: POST /assets/{id} with a
// multipart "file" part. Requires a pass session.
func (h *Handler) HandleAssetUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.requirePass(w, r) {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/assets/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "invalid slot id", http.StatusBadRequest)
		return
	}

	filename, raw, err := h.readSingleFile(r, "file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slot, err := h.Service.UploadSlot(r.Context(), id, filename, raw)
	if err != nil {
		if errors.Is(err, codec.ErrInvalidImage) {
			http.Error(w, "file is not a decodable image", http.StatusUnprocessableEntity)
			return
		}
		log.Error().Err(err).Str("slot", id).Msg("slot upload failed")
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}

	h.sendResponse(w, slot)
}

func (h *Handler) readSingleFile(r *http.Request, field string) (string, []byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, errors.New("invalid multipart body")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", nil, errors.New("missing file")
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return "", nil, errors.New("failed to read file")
	}
	return header.Filename, raw, nil
}

// requirePass rejects the request unless a valid pass session token is
// presented. Returns true when the caller may proceed.
func (h *Handler) requirePass(w http.ResponseWriter, r *http.Request) bool {
	token := h.getTokenFromAuthHeader(r)
	if _, err := h.Service.PassFromToken(r.Context(), token); err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return false
	}
	return true
}

func (h *Handler) sendResponse(w http.ResponseWriter, resp any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

func (h *Handler) getTokenFromAuthHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	return strings.TrimPrefix(authHeader, prefix)
}
