package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/matchcv/internal/extract"
	"github.com/lehigh-university-libraries/matchcv/internal/wordcloud"
)

// HandleWordCloud renders the uploaded résumé as a PNG word cloud.
func (h *Handler) HandleWordCloud(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.renderer == nil {
		h.writeError(w, "Word cloud rendering is not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 2*maxUploadSize)
	form, err := h.readMatchForm(r)
	if err != nil {
		h.writeError(w, "Failed to read upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(form.files) != 1 {
		h.writeError(w, "Exactly one file is required", http.StatusBadRequest)
		return
	}
	f := form.files[0]

	text, err := extract.Extract(r.Context(), f.name, f.data, h.policy)
	if err != nil {
		h.writeError(w, "Failed to extract text: "+err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.EncodePNG(&buf, h.normalizer.Normalize(text)); err != nil {
		if errors.Is(err, wordcloud.ErrEmptyInput) {
			h.writeError(w, "No words left to render in "+f.name, http.StatusBadRequest)
			return
		}
		h.writeError(w, "Failed to render word cloud: "+err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("Rendered word cloud", "filename", f.name, "bytes", buf.Len())

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("Unable to write word cloud", "err", err)
	}
}
