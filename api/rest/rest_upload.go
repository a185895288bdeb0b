package rest

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ruralsv/retreat/service"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// uploadMap tracks which slot id maps to which uploaded file. The map is
// persisted next to the uploads so the static frontend can resolve overrides
// without hitting the API.
type uploadMap struct {
	mu   sync.Mutex
	path string
}

func newUploadMap(uploadDir string) *uploadMap {
	return &uploadMap{path: filepath.Join(uploadDir, "images-map.json")}
}

func (m *uploadMap) set(id, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make(map[string]string)
	if raw, err := os.ReadFile(m.path); err == nil {
		// A corrupt map file starts over rather than blocking uploads
		_ = json.Unmarshal(raw, &entries)
	}
	entries[id] = url

	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, raw, 0644)
}

type uploadResponse struct {
	URL string `json:"url"`
}

// HandleUpload is the static upload side channel: saves the file under the
// upload dir named by its slot id and returns the public URL.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filename, raw, err := h.readSingleFile(r, "file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := r.FormValue("id")
	if err := service.ValidateSlotID(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		ext = ".jpg"
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		log.Error().Err(err).Str("dir", h.uploadDir).Msg("failed to create upload dir")
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}

	target := filepath.Join(h.uploadDir, id+ext)
	if err := os.WriteFile(target, raw, 0644); err != nil {
		log.Error().Err(err).Str("path", target).Msg("failed to write upload")
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}

	url := "/uploads/" + id + ext
	if err := h.uploadMap.set(id, url); err != nil {
		log.Warn().Err(err).Msg("failed to update upload map")
	}

	h.sendResponse(w, uploadResponse{URL: url})
}
