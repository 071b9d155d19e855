package matchcmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/matchcv/internal/extract"
	"github.com/lehigh-university-libraries/matchcv/internal/textnorm"
	"github.com/lehigh-university-libraries/matchcv/internal/wordcloud"
	"github.com/spf13/cobra"
)

// NewCloudCmd creates the cloud command
func NewCloudCmd() *cobra.Command {
	var output string
	var language string
	var allPages bool
	cfg := wordcloud.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "cloud [resume]",
		Short: "Render a word cloud of a résumé",
		Long: `Render the most frequent words of a résumé as a PNG word cloud.

The text goes through the same cleaning as scoring, so punctuation and
stopwords never appear in the image.`,
		Example: `  # Write cv.png next to the working directory
  matchcv cloud cv.pdf

  # Smaller image with fewer words
  matchcv cloud cv.pdf --width 640 --height 360 --max-words 50 -o nuvem.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			FromEnv(cmd, "language", &language, DefaultLanguage)
			if output == "" {
				base := filepath.Base(args[0])
				output = strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return executeCloud(ctx, args[0], output, language, PagePolicy(allPages), cfg)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG file to write (default: résumé name with .png)")
	cmd.Flags().StringVar(&language, "language", textnorm.DefaultLanguage, "Stopword language: "+strings.Join(textnorm.Languages(), ", "))
	cmd.Flags().BoolVar(&allPages, "all-pages", false, "Use the text of every PDF page instead of only the first")
	cmd.Flags().IntVar(&cfg.Width, "width", cfg.Width, "Image width in pixels")
	cmd.Flags().IntVar(&cfg.Height, "height", cfg.Height, "Image height in pixels")
	cmd.Flags().StringVar(&cfg.Background, "background", cfg.Background, "Background color as hex")
	cmd.Flags().Float64Var(&cfg.MaxFontSize, "max-font-size", cfg.MaxFontSize, "Font size of the most frequent word")
	cmd.Flags().IntVar(&cfg.MaxWords, "max-words", cfg.MaxWords, "Maximum number of words drawn")

	return cmd
}

func executeCloud(ctx context.Context, path, output, language string, policy extract.PagePolicy, cfg wordcloud.Config) error {
	normalizer, err := textnorm.NewDefaultNormalizer(language)
	if err != nil {
		return err
	}

	renderer, err := wordcloud.NewRenderer(cfg)
	if err != nil {
		return err
	}

	text, err := extract.ExtractFile(ctx, path, policy)
	if err != nil {
		return err
	}

	if err := renderer.SavePNG(output, normalizer.Normalize(text)); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}

	used := renderer.Config()
	slog.Info("Word cloud written", "resume", path, "output", output, "width", used.Width, "height", used.Height)
	return nil
}
