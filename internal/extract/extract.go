// Package extract pulls plain text out of résumé documents.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoPages           = errors.New("document has no pages")
)

// PagePolicy chooses which pages of a document feed the scorer.
type PagePolicy int

const (
	// FirstPage uses only the first page.
	FirstPage PagePolicy = iota
	AllPages
)

// SupportedExtensions lists the file extensions Extract understands.
var SupportedExtensions = []string{".pdf", ".txt"}

// Supported reports whether name has an extension Extract understands.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Extract returns the text of an in-memory document, chosen by file extension.
func Extract(ctx context.Context, name string, data []byte, policy PagePolicy) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".pdf":
		pages, err := PDFPages(data)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", name, err)
		}
		slog.Debug("Extracted PDF text", "file", name, "pages", len(pages))
		return Join(pages, policy), nil
	case ".txt":
		if !utf8.Valid(data) {
			data = bytes.ToValidUTF8(data, []byte("�"))
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(SupportedExtensions, ", "))
	}
}

// ExtractFile reads path from disk and extracts its text.
func ExtractFile(ctx context.Context, path string, policy PagePolicy) (string, error) {
	if !Supported(path) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return Extract(ctx, filepath.Base(path), data, policy)
}

// Join applies policy to per-page text.
func Join(pages []string, policy PagePolicy) string {
	if len(pages) == 0 {
		return ""
	}
	if policy == FirstPage {
		return pages[0]
	}
	return strings.Join(pages, "\n")
}

// PDFPages returns the plain text of every page in a PDF. Pages without
// content yield an empty string so page indices are preserved.
func PDFPages(data []byte) (pages []string, err error) {
	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("failed to parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	total := r.NumPage()
	if total == 0 {
		return nil, ErrNoPages
	}

	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		fonts := make(map[string]*pdf.Font)
		for _, name := range p.Fonts() {
			f := p.Font(name)
			fonts[name] = &f
		}

		text, err := p.GetPlainText(fonts)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	return pages, nil
}
