package matchcmd

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/lehigh-university-libraries/matchcv/internal/extract"
	"github.com/lehigh-university-libraries/matchcv/internal/matrix"
)

// collectInputs expands directories into the supported files they contain,
// sorted by path. Files named explicitly are kept even when unsupported so
// the error shows up in the matrix.
func collectInputs(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && extract.Supported(p) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", path, err)
		}
		sort.Strings(found)
		slog.Debug("Collected resumes", "dir", path, "files", len(found))
		files = append(files, found...)
	}
	return files, nil
}

// loadDocuments extracts every file in order. Extraction failures are kept
// on the document; only cancellation stops the loop.
func loadDocuments(ctx context.Context, files []string, policy extract.PagePolicy) ([]matrix.Document, error) {
	docs := make([]matrix.Document, 0, len(files))
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		slog.Info("Extracting resume", "file", path, "progress", fmt.Sprintf("%d/%d", i+1, len(files)))
		text, err := extract.ExtractFile(ctx, path, policy)
		if err != nil {
			slog.Warn("Failed to extract resume", "file", path, "err", err)
		}
		docs = append(docs, matrix.Document{Name: filepath.Base(path), Text: text, Err: err})
	}
	return docs, nil
}

func PagePolicy(allPages bool) extract.PagePolicy {
	if allPages {
		return extract.AllPages
	}
	return extract.FirstPage
}
