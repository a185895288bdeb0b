package rest

import (
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/ruralsv/retreat/models"
	"github.com/ruralsv/retreat/service"
	"github.com/ruralsv/retreat/sphere"
)

func (h *Handler) HandleGallery(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.sendResponse(w, h.Service.GalleryItems())

	case http.MethodPost:
		h.handleGalleryUpload(w, r)

	case http.MethodDelete:
		if !h.requirePass(w, r) {
			return
		}
		if err := h.Service.ClearGallery(r.Context()); err != nil {
			log.Error().Err(err).Msg("gallery clear failed")
			http.Error(w, "clear failed", http.StatusInternalServerError)
			return
		}
		h.sendResponse(w, map[string]bool{"success": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type galleryUploadResponse struct {
	Stored []models.GalleryItem  `json:"stored"`
	Failed []service.UploadError `json:"failed"`
}

func (h *Handler) handleGalleryUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		http.Error(w, "no files provided", http.StatusBadRequest)
		return
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			continue
		}
		raw, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		f.Close()
		if err != nil {
			continue
		}
		files = append(files, service.UploadFile{Filename: header.Filename, Raw: raw})
	}

	stored, failed := h.Service.UploadGalleryBatch(r.Context(), files)

	// Partial success is still a 200; the body carries the per-file outcome
	h.sendResponse(w, galleryUploadResponse{Stored: stored, Failed: failed})
}

const defaultOrbitRadius = 240.0

// HandleGalleryOrbit serves the gallery pre-positioned on a Fibonacci
// sphere for the orbit view.
func (h *Handler) HandleGalleryOrbit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	radius := defaultOrbitRadius
	if raw := r.URL.Query().Get("radius"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid radius", http.StatusBadRequest)
			return
		}
		radius = parsed
	}

	items := h.Service.GalleryItems()
	h.sendResponse(w, sphere.Points(sphere.Layout(items, radius)))
}

func (h *Handler) HandleMoments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.sendResponse(w, h.Service.Moments())

	case http.MethodPost:
		_, raw, err := h.readSingleFile(r, "file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		moment, err := h.Service.AddMoment(
			r.Context(),
			r.FormValue("caption"),
			r.FormValue("author"),
			r.FormValue("location"),
			raw,
		)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.sendResponse(w, moment)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
