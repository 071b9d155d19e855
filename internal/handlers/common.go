package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/matchcv/internal/extract"
	"github.com/lehigh-university-libraries/matchcv/internal/matching"
	"github.com/lehigh-university-libraries/matchcv/internal/storage"
	"github.com/lehigh-university-libraries/matchcv/internal/textnorm"
	"github.com/lehigh-university-libraries/matchcv/internal/wordcloud"
)

// maxUploadSize bounds every uploaded file.
const maxUploadSize = 10 * 1024 * 1024

var errFileTooLarge = errors.New("file too large (max 10MB)")

type Handler struct {
	profileStore *storage.ProfileStore
	normalizer   *textnorm.Normalizer
	renderer     *wordcloud.Renderer
	cap          int
	concurrency  int
	policy       extract.PagePolicy
}

type Options struct {
	Store       *storage.ProfileStore
	Normalizer  *textnorm.Normalizer
	Renderer    *wordcloud.Renderer
	Cap         int
	Concurrency int
	PagePolicy  extract.PagePolicy
}

func New(opts Options) *Handler {
	h := &Handler{
		profileStore: opts.Store,
		normalizer:   opts.Normalizer,
		renderer:     opts.Renderer,
		cap:          opts.Cap,
		concurrency:  opts.Concurrency,
		policy:       opts.PagePolicy,
	}
	if h.profileStore == nil {
		h.profileStore = storage.New()
	}
	if h.cap < 0 {
		h.cap = matching.DefaultCap
	}
	return h
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// readLimited reads an uploaded part fully in memory, failing once it
// exceeds maxUploadSize.
func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}
	if len(data) > maxUploadSize {
		return nil, errFileTooLarge
	}
	return data, nil
}
