package matchcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/matchcv/internal/matching"
	"github.com/lehigh-university-libraries/matchcv/internal/matrix"
	"github.com/lehigh-university-libraries/matchcv/internal/profiles"
	"github.com/lehigh-university-libraries/matchcv/internal/textnorm"
	"github.com/spf13/cobra"
)

type scoreOptions struct {
	profilesPath string
	cap          int
	concurrency  int
	format       string
	output       string
	allPages     bool
	language     string
	explain      bool
}

// NewScoreCmd creates the score command
func NewScoreCmd() *cobra.Command {
	opts := scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score [resumes or directories...]",
		Short: "Score résumés against weighted job keyword profiles",
		Long: `Score every résumé against every job profile and print the score matrix.

Each résumé is reduced to lowercase tokens with punctuation and stopwords
removed. For every profile, keyword occurrences are counted, capped, weighted
and divided by the best achievable total, giving a score between 0 and 1.

Directories are searched recursively for .pdf and .txt files.`,
		Example: `  # Score a folder of PDFs against a workbook (one sheet per job)
  matchcv score ./curriculos --profiles vagas.xlsx

  # Write CSV, counting each keyword at most 5 times
  matchcv score ./curriculos --profiles vagas.xlsx --cap 5 --format csv --output matriz.csv

  # Read every page and show per-keyword counts
  matchcv score cv.pdf --profiles vagas.xlsx --all-pages --explain`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			FromEnv(cmd, "profiles", &opts.profilesPath, DefaultProfiles)
			FromEnv(cmd, "language", &opts.language, DefaultLanguage)
			CapFromEnv(cmd, &opts.cap)

			if opts.profilesPath == "" {
				return fmt.Errorf("--profiles is required (or set %s)", EnvProfiles)
			}
			if opts.cap < 0 {
				return fmt.Errorf("%w: got %d", matching.ErrInvalidCap, opts.cap)
			}
			if opts.explain && opts.format != "text" {
				return fmt.Errorf("--explain is only supported with --format text")
			}

			return writeOutput(opts.output, cmd.OutOrStdout(), func(out io.Writer) error {
				return executeScore(cmd.Context(), args, opts, out)
			})
		},
	}

	cmd.Flags().StringVar(&opts.profilesPath, "profiles", "", "Job profiles file (.xlsx, .parquet, .jsonl, .yaml)")
	cmd.Flags().IntVar(&opts.cap, "cap", matching.DefaultCap, "Maximum occurrences counted per keyword")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "Number of résumés scored in parallel (0 for one per CPU)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "Output format: "+strings.Join(matrix.Formats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.allPages, "all-pages", false, "Use the text of every PDF page instead of only the first")
	cmd.Flags().StringVar(&opts.language, "language", textnorm.DefaultLanguage, "Stopword language: "+strings.Join(textnorm.Languages(), ", "))
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Print per-keyword counts for every résumé and job")

	return cmd
}

func executeScore(ctx context.Context, paths []string, opts scoreOptions, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	normalizer, err := textnorm.NewDefaultNormalizer(opts.language)
	if err != nil {
		return err
	}
	slog.Debug("Normalizer ready", "language", opts.language, "noise_tokens", normalizer.Noise().Len())

	jobs, err := profiles.NewLoader(opts.profilesPath).Load()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no job profiles found in %s", opts.profilesPath)
	}
	slog.Info("Profiles loaded", "path", opts.profilesPath, "jobs", len(jobs))

	files, err := collectInputs(paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no résumés found")
	}

	docs, err := loadDocuments(ctx, files, PagePolicy(opts.allPages))
	if err != nil {
		return err
	}

	m, err := matrix.Build(ctx, normalizer, docs, jobs, matrix.Options{Cap: opts.cap, Concurrency: opts.concurrency})
	if err != nil {
		return fmt.Errorf("failed to build score matrix: %w", err)
	}

	if err := matrix.Write(out, m, opts.format); err != nil {
		return err
	}

	if opts.explain {
		return writeExplain(out, normalizer, docs, jobs, opts.cap)
	}
	return nil
}

// writeOutput runs write against the file at path, or against fallback when
// path is empty. A failed close is returned like a failed write.
func writeOutput(path string, fallback io.Writer, write func(io.Writer) error) error {
	if path == "" {
		return write(fallback)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	err = write(f)
	if cerr := f.Close(); cerr != nil && err == nil {
		return fmt.Errorf("failed to close output file: %w", cerr)
	}
	return err
}

func writeExplain(w io.Writer, n *textnorm.Normalizer, docs []matrix.Document, jobs []matching.JobProfile, limit int) error {
	fmt.Fprintln(w, "\nKEYWORD DETAIL")
	fmt.Fprintln(w, strings.Repeat("=", 70))

	for _, doc := range docs {
		if doc.Err != nil {
			continue
		}
		cleaned := n.Normalize(doc.Text)

		for _, job := range jobs {
			b, err := matching.Explain(cleaned, job, limit)
			if err != nil {
				fmt.Fprintf(w, "\n%s × %s: %v\n", doc.Name, job.Name, err)
				continue
			}

			fmt.Fprintf(w, "\n%s × %s: %.4f (%.2f / %.2f)\n", doc.Name, job.Name, b.Score, b.RawScore, b.MaxScore)
			for _, m := range b.Matches {
				fmt.Fprintf(w, "  %-30s count=%d capped=%d weight=%g\n", m.Keyword, m.Count, m.CappedCount, m.Weight)
			}
		}
	}
	return nil
}
