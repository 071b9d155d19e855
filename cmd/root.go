package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/matchcv/internal/matchcmd"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "matchcv",
		Short: "Keyword-based résumé to job matching",
		Long: `matchcv scores résumés against weighted job keyword profiles.

Résumé text is extracted from PDFs, cleaned of punctuation and stopwords, and
scored per job by capped, weighted keyword counts. Results come out as a
résumé × job matrix on the command line or through a small web interface.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(matchcmd.NewScoreCmd())
	cmd.AddCommand(matchcmd.NewCloudCmd())
	cmd.AddCommand(matchcmd.NewProfilesCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
