package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"image/png"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/matchcv/internal/matching"
	"github.com/lehigh-university-libraries/matchcv/internal/models"
	"github.com/lehigh-university-libraries/matchcv/internal/storage"
	"github.com/lehigh-university-libraries/matchcv/internal/textnorm"
	"github.com/lehigh-university-libraries/matchcv/internal/wordcloud"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
)

type formPart struct {
	field    string
	filename string
	content  []byte
}

func newTestHandler(t *testing.T, jobs ...matching.JobProfile) *Handler {
	t.Helper()

	noise, err := textnorm.DefaultNoiseSet("portuguese")
	if err != nil {
		t.Fatalf("DefaultNoiseSet failed: %v", err)
	}
	renderer, err := wordcloud.NewRenderer(wordcloud.Config{Width: 200, Height: 100, MaxFontSize: 30})
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	store := storage.New()
	store.Replace(jobs)

	return New(Options{
		Store:       store,
		Normalizer:  textnorm.NewNormalizer(textnorm.FieldsTokenizer{}, noise, language.Portuguese),
		Renderer:    renderer,
		Cap:         matching.DefaultCap,
		Concurrency: 2,
	})
}

func multipartRequest(t *testing.T, target string, parts ...formPart) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		var err error
		if p.filename == "" {
			err = mw.WriteField(p.field, string(p.content))
		} else {
			var fw io.Writer
			fw, err = mw.CreateFormFile(p.field, p.filename)
			if err == nil {
				_, err = fw.Write(p.content)
			}
		}
		if err != nil {
			t.Fatalf("Failed to build form: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func workbookBytes(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatalf("Failed to create sheet: %v", err)
	}
	for i, row := range rows {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatalf("Failed to write row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("Failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

var dataProfile = matching.JobProfile{Name: "data", Keywords: []string{"python", "sql"}, Weights: []float64{1, 1}}

func TestHandleMatch(t *testing.T) {
	h := newTestHandler(t, dataProfile)

	req := multipartRequest(t, "/api/match",
		formPart{field: "files", filename: "ana.txt", content: []byte("Python, Python e SQL")},
		formPart{field: "files", filename: "bruno.txt", content: []byte("Java")},
		formPart{field: "files", filename: "carla.docx", content: []byte("binary")},
	)
	w := httptest.NewRecorder()
	h.HandleMatch(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.MatchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.ProfileSource != "server" {
		t.Errorf("Expected server profiles, got %s", resp.ProfileSource)
	}
	if len(resp.Matrix.Rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(resp.Matrix.Rows))
	}
	if got := resp.Matrix.Rows[0].Scores[0]; got != 0.5 {
		t.Errorf("Expected ana score 0.5, got %v", got)
	}
	if got := resp.Matrix.Rows[1].Scores[0]; got != 0 {
		t.Errorf("Expected bruno score 0, got %v", got)
	}
	if !strings.Contains(resp.Matrix.Rows[2].Error, "unsupported") {
		t.Errorf("Expected unsupported format error for carla, got %q", resp.Matrix.Rows[2].Error)
	}
	if resp.Summary.Failed != 1 {
		t.Errorf("Expected 1 failed resume, got %d", resp.Summary.Failed)
	}
}

func TestHandleMatchUploadedWorkbook(t *testing.T) {
	h := newTestHandler(t, dataProfile)

	workbook := workbookBytes(t, "ml", [][]any{
		{"palavras-chave", "pesos"},
		{"machine learning", 1},
	})
	req := multipartRequest(t, "/api/match",
		formPart{field: "files", filename: "ana.txt", content: []byte("machine learning")},
		formPart{field: "profiles", filename: "vagas.xlsx", content: workbook},
		formPart{field: "cap", content: []byte("1")},
	)
	w := httptest.NewRecorder()
	h.HandleMatch(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.MatchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.ProfileSource != "upload" || resp.Matrix.Cap != 1 {
		t.Errorf("Expected uploaded profiles with cap 1, got %s/%d", resp.ProfileSource, resp.Matrix.Cap)
	}
	if len(resp.Matrix.Jobs) != 1 || resp.Matrix.Jobs[0] != "ml" {
		t.Errorf("Expected only the uploaded ml job, got %v", resp.Matrix.Jobs)
	}
	if got := resp.Matrix.Rows[0].Scores[0]; got != 1 {
		t.Errorf("Expected score 1, got %v", got)
	}
}

func TestHandleMatchCSV(t *testing.T) {
	h := newTestHandler(t, dataProfile)

	req := multipartRequest(t, "/api/match?format=csv",
		formPart{field: "files", filename: "ana.txt", content: []byte("sql")},
	)
	w := httptest.NewRecorder()
	h.HandleMatch(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv, got %s", ct)
	}
	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV: %v", err)
	}
	if len(records) != 2 || records[1][1] != "0.1667" {
		t.Errorf("Unexpected CSV: %v", records)
	}
}

func TestHandleMatchErrors(t *testing.T) {
	resume := formPart{field: "files", filename: "ana.txt", content: []byte("python")}

	tests := []struct {
		name   string
		jobs   []matching.JobProfile
		target string
		parts  []formPart
		want   int
	}{
		{
			name:   "no files",
			jobs:   []matching.JobProfile{dataProfile},
			target: "/api/match",
			want:   http.StatusBadRequest,
		},
		{
			name:   "no profiles",
			target: "/api/match",
			parts:  []formPart{resume},
			want:   http.StatusBadRequest,
		},
		{
			name:   "negative cap",
			jobs:   []matching.JobProfile{dataProfile},
			target: "/api/match",
			parts:  []formPart{resume, {field: "cap", content: []byte("-1")}},
			want:   http.StatusBadRequest,
		},
		{
			name:   "non-numeric cap",
			jobs:   []matching.JobProfile{dataProfile},
			target: "/api/match",
			parts:  []formPart{resume, {field: "cap", content: []byte("three")}},
			want:   http.StatusBadRequest,
		},
		{
			name:   "invalid workbook",
			jobs:   []matching.JobProfile{dataProfile},
			target: "/api/match",
			parts:  []formPart{resume, {field: "profiles", filename: "vagas.xlsx", content: []byte("not a workbook")}},
			want:   http.StatusBadRequest,
		},
		{
			name:   "unsupported format",
			jobs:   []matching.JobProfile{dataProfile},
			target: "/api/match?format=xml",
			parts:  []formPart{resume},
			want:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, tt.jobs...)
			w := httptest.NewRecorder()
			h.HandleMatch(w, multipartRequest(t, tt.target, tt.parts...))
			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestHandleMatchMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, dataProfile)
	w := httptest.NewRecorder()
	h.HandleMatch(w, httptest.NewRequest(http.MethodGet, "/api/match", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}

func TestHandleMatchFileTooLarge(t *testing.T) {
	h := newTestHandler(t, dataProfile)
	big := bytes.Repeat([]byte("a"), maxUploadSize+1)

	w := httptest.NewRecorder()
	h.HandleMatch(w, multipartRequest(t, "/api/match", formPart{field: "files", filename: "big.txt", content: big}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

func TestHandleWordCloud(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.HandleWordCloud(w, multipartRequest(t, "/api/wordcloud",
		formPart{field: "file", filename: "ana.txt", content: []byte("python python sql dados dados dados")},
	))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 100 {
		t.Errorf("Unexpected image size: %v", img.Bounds())
	}
}

func TestHandleWordCloudErrors(t *testing.T) {
	tests := []struct {
		name  string
		parts []formPart
	}{
		{
			name:  "only stopwords",
			parts: []formPart{{field: "file", filename: "a.txt", content: []byte("de a o que e")}},
		},
		{
			name: "two files",
			parts: []formPart{
				{field: "file", filename: "a.txt", content: []byte("python")},
				{field: "file", filename: "b.txt", content: []byte("sql")},
			},
		},
		{
			name:  "unsupported format",
			parts: []formPart{{field: "file", filename: "a.docx", content: []byte("python")}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			w := httptest.NewRecorder()
			h.HandleWordCloud(w, multipartRequest(t, "/api/wordcloud", tt.parts...))
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestHandleProfiles(t *testing.T) {
	broken := matching.JobProfile{Name: "broken", Keywords: []string{"a", "b"}, Weights: []float64{1}}
	h := newTestHandler(t, dataProfile, broken)

	w := httptest.NewRecorder()
	h.HandleProfiles(w, httptest.NewRequest(http.MethodGet, "/api/profiles", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var list []models.ProfileInfo
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 profiles, got %d", len(list))
	}
	if !list[0].Valid || list[0].TotalWeight != 2 {
		t.Errorf("Unexpected data profile info: %+v", list[0])
	}
	if list[1].Valid || !strings.Contains(list[1].Error, "keyword and weight counts differ") {
		t.Errorf("Expected broken profile to be invalid, got %+v", list[1])
	}

	w = httptest.NewRecorder()
	h.HandleProfiles(w, httptest.NewRequest(http.MethodDelete, "/api/profiles", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}

func TestHandleProfilesByName(t *testing.T) {
	h := newTestHandler(t, dataProfile)

	w := httptest.NewRecorder()
	h.HandleProfiles(w, httptest.NewRequest(http.MethodGet, "/api/profiles?name=data", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var info models.ProfileInfo
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if info.Name != "data" || !info.Valid || len(info.Keywords) != 2 {
		t.Errorf("Unexpected profile info: %+v", info)
	}

	w = httptest.NewRecorder()
	h.HandleProfiles(w, httptest.NewRequest(http.MethodGet, "/api/profiles?name=missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestHandleMatchRejectsNonFiniteWeights(t *testing.T) {
	h := newTestHandler(t, dataProfile)

	for _, weight := range []string{"NaN", "Inf"} {
		t.Run(weight, func(t *testing.T) {
			workbook := workbookBytes(t, "data", [][]any{
				{"palavras-chave", "pesos"},
				{"python", weight},
				{"sql", 1},
			})
			w := httptest.NewRecorder()
			h.HandleMatch(w, multipartRequest(t, "/api/match",
				formPart{field: "files", filename: "ana.txt", content: []byte("python sql")},
				formPart{field: "profiles", filename: "vagas.xlsx", content: workbook},
			))
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), "row 2") {
				t.Errorf("Expected error naming the row, got %q", w.Body.String())
			}
		})
	}
}

func TestHandleMatchNonFiniteServerWeight(t *testing.T) {
	bad := matching.JobProfile{Name: "bad", Keywords: []string{"python"}, Weights: []float64{math.NaN()}}
	h := newTestHandler(t, dataProfile, bad)

	w := httptest.NewRecorder()
	h.HandleMatch(w, multipartRequest(t, "/api/match",
		formPart{field: "files", filename: "ana.txt", content: []byte("python sql")},
	))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.MatchResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	row := resp.Matrix.Rows[0]
	if row.Scores[0] != 0.3333 {
		t.Errorf("Expected data score 0.3333, got %v", row.Scores[0])
	}
	if len(row.CellErrors) != 2 || !strings.Contains(row.CellErrors[1], "not a finite number") {
		t.Errorf("Expected a cell error for bad, got %v", row.CellErrors)
	}
}

func TestHandleStatic(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.HandleStatic(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/api/match") {
		t.Errorf("Expected upload form, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.HandleStatic(w, httptest.NewRequest(http.MethodGet, "/uploads/secret.pdf", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}
