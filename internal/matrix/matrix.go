// Package matrix scores every résumé against every job profile.
package matrix

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/lehigh-university-libraries/matchcv/internal/matching"
	"github.com/lehigh-university-libraries/matchcv/internal/textnorm"
	"golang.org/x/sync/errgroup"
)

// Document is one résumé after text extraction. Err is set instead of Text
// when extraction failed.
type Document struct {
	Name string
	Text string
	Err  error
}

// Row holds the scores of one résumé, one cell per job column.
type Row struct {
	Resume string    `json:"resume" yaml:"resume"`
	Error  string    `json:"error,omitempty" yaml:"error,omitempty"`
	Scores []float64 `json:"scores" yaml:"scores"`
	// CellErrors is parallel to Scores; empty strings mean the cell scored.
	CellErrors []string `json:"cell_errors,omitempty" yaml:"cell_errors,omitempty"`
}

// Matrix is the résumé × job score table.
type Matrix struct {
	Jobs []string `json:"jobs" yaml:"jobs"`
	Rows []Row    `json:"rows" yaml:"rows"`
	Cap  int      `json:"cap" yaml:"cap"`
}

// Options tune Build.
type Options struct {
	Cap         int
	Concurrency int
}

// Build normalizes each document once and scores it against every profile.
// Cells are computed concurrently and written to their own slot, so row and
// column order always follow docs and profiles. Failures are recorded per
// document or per cell and never abort the batch; only ctx cancellation does.
func Build(ctx context.Context, n *textnorm.Normalizer, docs []Document, profiles []matching.JobProfile, opts Options) (*Matrix, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	m := &Matrix{
		Jobs: make([]string, len(profiles)),
		Rows: make([]Row, len(docs)),
		Cap:  opts.Cap,
	}
	for j, p := range profiles {
		m.Jobs[j] = p.Name
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, doc := range docs {
		row := &m.Rows[i]
		row.Resume = doc.Name
		row.Scores = make([]float64, len(profiles))
		row.CellErrors = make([]string, len(profiles))

		if doc.Err != nil {
			row.Error = doc.Err.Error()
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			cleaned := n.Normalize(doc.Text)
			slog.Debug("Normalized resume", "resume", doc.Name, "tokens_chars", len(cleaned))

			for j, profile := range profiles {
				score, err := matching.Score(cleaned, profile, opts.Cap)
				if err != nil {
					slog.Warn("Failed to score resume", "resume", doc.Name, "job", profile.Name, "err", err)
					row.CellErrors[j] = err.Error()
					continue
				}
				row.Scores[j] = score
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range m.Rows {
		if !hasErrors(m.Rows[i].CellErrors) {
			m.Rows[i].CellErrors = nil
		}
	}

	return m, nil
}

// Cell returns the score at (resume, job) and whether it was scored.
func (m *Matrix) Cell(resume, job int) (float64, bool) {
	row := m.Rows[resume]
	if row.Error != "" {
		return 0, false
	}
	if row.CellErrors != nil && row.CellErrors[job] != "" {
		return 0, false
	}
	return row.Scores[job], true
}

func hasErrors(errs []string) bool {
	for _, e := range errs {
		if e != "" {
			return true
		}
	}
	return false
}
