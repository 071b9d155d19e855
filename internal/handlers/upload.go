package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lehigh-university-libraries/matchcv/internal/extract"
	"github.com/lehigh-university-libraries/matchcv/internal/matching"
	"github.com/lehigh-university-libraries/matchcv/internal/matrix"
	"github.com/lehigh-university-libraries/matchcv/internal/models"
	"github.com/lehigh-university-libraries/matchcv/internal/profiles"
)

type uploadedFile struct {
	name string
	data []byte
}

// matchForm is the parsed multipart body of a match request.
type matchForm struct {
	files    []uploadedFile
	workbook []byte
	cap      int
	hasCap   bool
}

// readMatchForm streams the multipart body so uploads stay in memory.
func (h *Handler) readMatchForm(r *http.Request) (*matchForm, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}

	form := &matchForm{}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		name, filename := part.FormName(), part.FileName()
		data, err := readLimited(part)
		part.Close()
		if err != nil {
			return nil, err
		}
		// browsers send empty parts for untouched inputs
		if len(data) == 0 {
			continue
		}

		switch name {
		case "files", "file":
			form.files = append(form.files, uploadedFile{name: filename, data: data})
		case "profiles":
			form.workbook = data
		case "cap":
			v, err := strconv.Atoi(string(bytes.TrimSpace(data)))
			if err != nil {
				return nil, errors.New("cap must be an integer")
			}
			form.cap, form.hasCap = v, true
		}
	}
	return form, nil
}

// HandleMatch scores every uploaded résumé against the uploaded workbook, or
// the server's profiles when none is sent. The format query parameter
// selects text, csv or yaml output instead of JSON.
func (h *Handler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if _, ok := contentTypes[format]; !ok && format != "json" {
		h.writeError(w, "Unsupported format: "+format, http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 10*maxUploadSize)
	form, err := h.readMatchForm(r)
	if err != nil {
		h.writeError(w, "Failed to read upload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(form.files) == 0 {
		h.writeError(w, "No résumé files uploaded", http.StatusBadRequest)
		return
	}

	limit := h.cap
	if form.hasCap {
		if form.cap < 0 {
			h.writeError(w, matching.ErrInvalidCap.Error(), http.StatusBadRequest)
			return
		}
		limit = form.cap
	}

	source := "server"
	jobs := h.profileStore.GetAll()
	if form.workbook != nil {
		jobs, err = profiles.ReadWorkbook(bytes.NewReader(form.workbook))
		if err != nil {
			h.writeError(w, "Invalid profiles workbook: "+err.Error(), http.StatusBadRequest)
			return
		}
		source = "upload"
	}
	if len(jobs) == 0 {
		h.writeError(w, "No job profiles available", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	docs := make([]matrix.Document, 0, len(form.files))
	for _, f := range form.files {
		text, err := extract.Extract(ctx, f.name, f.data, h.policy)
		if err != nil {
			if ctx.Err() != nil {
				h.writeError(w, "Request canceled", http.StatusServiceUnavailable)
				return
			}
			slog.Warn("Failed to extract resume", "filename", f.name, "err", err)
		}
		docs = append(docs, matrix.Document{Name: f.name, Text: text, Err: err})
	}

	m, err := matrix.Build(ctx, h.normalizer, docs, jobs, matrix.Options{Cap: limit, Concurrency: h.concurrency})
	if err != nil {
		h.writeError(w, "Failed to score resumes: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	slog.Info("Scored resumes", "resumes", len(docs), "jobs", len(jobs), "cap", limit, "profile_source", source)

	if format == "json" {
		h.writeJSON(w, models.MatchResponse{
			Matrix:        m,
			Summary:       m.Summarize(),
			ProfileSource: source,
		})
		return
	}

	var buf bytes.Buffer
	if err := matrix.Write(&buf, m, format); err != nil {
		h.writeError(w, "Failed to write report: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("Unable to write report", "err", err)
	}
}

var contentTypes = map[string]string{
	"csv":  "text/csv",
	"text": "text/plain; charset=utf-8",
	"yaml": "application/yaml",
}
