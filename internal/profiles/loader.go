// Package profiles loads job keyword profiles from workbooks and flat tables.
package profiles

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/matchcv/internal/matching"
	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrInvalidCell   = errors.New("invalid cell")
)

// Header names accepted for the keyword and weight columns of a sheet.
var (
	KeywordColumns = []string{"palavras-chave", "keywords", "keyword"}
	WeightColumns  = []string{"pesos", "weights", "weight"}
)

// Row is one keyword of one job in a flat (jsonl or parquet) table.
type Row struct {
	Job     string  `json:"job" parquet:"job"`
	Keyword string  `json:"keyword" parquet:"keyword"`
	Weight  float64 `json:"weight" parquet:"weight"`
}

type document struct {
	Profiles []matching.JobProfile `yaml:"profiles"`
}

// Loader reads job profiles from a file
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{
		path: path,
	}
}

// Load reads every profile in the file, in file order.
func (l *Loader) Load() ([]matching.JobProfile, error) {
	ext := strings.ToLower(filepath.Ext(l.path))

	switch ext {
	case ".xlsx":
		return l.loadWorkbook()
	case ".parquet":
		return l.loadParquet()
	case ".jsonl", ".json":
		return l.loadJSONL()
	case ".yaml", ".yml":
		return l.loadYAML()
	default:
		return nil, fmt.Errorf("unsupported file format: %s (supported: .xlsx, .parquet, .jsonl, .yaml)", ext)
	}
}

func (l *Loader) loadWorkbook() ([]matching.JobProfile, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	return ReadWorkbook(file)
}

// ReadWorkbook reads one profile per non-empty sheet, named after the sheet.
func ReadWorkbook(r io.Reader) ([]matching.JobProfile, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var profiles []matching.JobProfile
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			slog.Debug("Skipping empty sheet", "sheet", sheet)
			continue
		}

		profile, err := sheetProfile(sheet, rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}

	slog.Debug("Read workbook", "profiles", len(profiles))
	return profiles, nil
}

func sheetProfile(sheet string, rows [][]string) (matching.JobProfile, error) {
	profile := matching.JobProfile{Name: sheet}

	kwCol, wCol := -1, -1
	for i, header := range rows[0] {
		h := strings.ToLower(strings.TrimSpace(header))
		if kwCol < 0 && contains(KeywordColumns, h) {
			kwCol = i
		}
		if wCol < 0 && contains(WeightColumns, h) {
			wCol = i
		}
	}
	if kwCol < 0 {
		return profile, fmt.Errorf("%w: sheet %q needs one of %v", ErrMissingColumn, sheet, KeywordColumns)
	}
	if wCol < 0 {
		return profile, fmt.Errorf("%w: sheet %q needs one of %v", ErrMissingColumn, sheet, WeightColumns)
	}

	for i, row := range rows[1:] {
		// spreadsheet row numbers are 1-based and the header is row 1
		line := i + 2
		kw := strings.TrimSpace(cell(row, kwCol))
		raw := strings.TrimSpace(cell(row, wCol))

		if kw == "" && raw == "" {
			continue
		}
		if kw == "" {
			return profile, fmt.Errorf("%w: sheet %q row %d has a weight but no keyword", ErrInvalidCell, sheet, line)
		}

		weight, err := parseWeight(raw)
		if err != nil {
			return profile, fmt.Errorf("%w: sheet %q row %d weight %q: %v", ErrInvalidCell, sheet, line, raw, err)
		}

		profile.Keywords = append(profile.Keywords, kw)
		profile.Weights = append(profile.Weights, weight)
	}

	return profile, nil
}

func parseWeight(raw string) (float64, error) {
	if raw == "" {
		return 0, errors.New("empty weight")
	}
	// a single decimal comma, as typed in pt-BR spreadsheets; with a dot as
	// well the thousands separator is unknowable
	if strings.Contains(raw, ",") {
		if strings.Contains(raw, ".") {
			return 0, errors.New("ambiguous decimal separator")
		}
		raw = strings.Replace(raw, ",", ".", 1)
	}
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, errors.New("not a finite number")
	}
	return w, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func (l *Loader) loadJSONL() ([]matching.JobProfile, error) {
	slog.Debug("Opening JSONL file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profiles file: %w", err)
	}
	defer file.Close()

	var rows []Row
	scanner := bufio.NewScanner(file)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var row Row
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading profiles: %w", err)
	}

	return FromRows(rows)
}

func (l *Loader) loadParquet() ([]matching.JobProfile, error) {
	slog.Debug("Opening Parquet file", "path", l.path)

	file, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	var rows []Row
	batch := make([]Row, 128)
	for {
		n, err := reader.Read(batch)
		rows = append(rows, batch[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	return FromRows(rows)
}

func (l *Loader) loadYAML() ([]matching.JobProfile, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, p := range doc.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: profile %d has no name", ErrMissingColumn, i+1)
		}
	}

	return doc.Profiles, nil
}

// FromRows groups flat rows into profiles, in order of first appearance.
func FromRows(rows []Row) ([]matching.JobProfile, error) {
	index := make(map[string]int)
	var profiles []matching.JobProfile

	for i, row := range rows {
		if row.Job == "" {
			return nil, fmt.Errorf("%w: row %d has no job", ErrMissingColumn, i+1)
		}
		if row.Keyword == "" {
			return nil, fmt.Errorf("%w: row %d of job %q has no keyword", ErrInvalidCell, i+1, row.Job)
		}

		idx, ok := index[row.Job]
		if !ok {
			idx = len(profiles)
			index[row.Job] = idx
			profiles = append(profiles, matching.JobProfile{Name: row.Job})
		}
		profiles[idx].Keywords = append(profiles[idx].Keywords, row.Keyword)
		profiles[idx].Weights = append(profiles[idx].Weights, row.Weight)
	}

	return profiles, nil
}
