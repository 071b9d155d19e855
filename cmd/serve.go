package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lehigh-university-libraries/matchcv/internal/handlers"
	"github.com/lehigh-university-libraries/matchcv/internal/matchcmd"
	"github.com/lehigh-university-libraries/matchcv/internal/matching"
	"github.com/lehigh-university-libraries/matchcv/internal/profiles"
	"github.com/lehigh-university-libraries/matchcv/internal/storage"
	"github.com/lehigh-university-libraries/matchcv/internal/textnorm"
	"github.com/lehigh-university-libraries/matchcv/internal/wordcloud"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var profilesPath string
	var language string
	var limit int
	var concurrency int
	var allPages bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for résumé matching",
		Long: `Starts the matchcv web interface on the specified port.

The web interface accepts résumé PDFs and an optional job profiles workbook,
returns the score matrix, and renders word clouds. Uploads are processed in
memory and discarded after each request.`,
		Example: `  # Start server on default port 8888 with profiles loaded at startup
  matchcv serve --profiles vagas.xlsx

  # Start server on custom port; every request must upload its own workbook
  matchcv serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			matchcmd.FromEnv(cmd, "profiles", &profilesPath, matchcmd.DefaultProfiles)
			matchcmd.FromEnv(cmd, "language", &language, matchcmd.DefaultLanguage)
			matchcmd.FromEnv(cmd, "port", &port, defaultPort)
			matchcmd.CapFromEnv(cmd, &limit)
			if limit < 0 {
				return fmt.Errorf("%w: got %d", matching.ErrInvalidCap, limit)
			}

			normalizer, err := textnorm.NewDefaultNormalizer(language)
			if err != nil {
				return err
			}
			renderer, err := wordcloud.NewRenderer(wordcloud.DefaultConfig())
			if err != nil {
				return err
			}

			store := storage.New()
			if profilesPath != "" {
				jobs, err := profiles.NewLoader(profilesPath).Load()
				if err != nil {
					return fmt.Errorf("failed to load profiles: %w", err)
				}
				store.Replace(jobs)
				slog.Info("Profiles loaded", "path", profilesPath, "jobs", store.Len())
			}

			handler := handlers.New(handlers.Options{
				Store:       store,
				Normalizer:  normalizer,
				Renderer:    renderer,
				Cap:         limit,
				Concurrency: concurrency,
				PagePolicy:  matchcmd.PagePolicy(allPages),
			})

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/match", handler.HandleMatch)
			mux.HandleFunc("/api/wordcloud", handler.HandleWordCloud)
			mux.HandleFunc("/api/profiles", handler.HandleProfiles)
			mux.HandleFunc("/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("matchcv interface available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on (or set PORT)")
	cmd.Flags().StringVar(&profilesPath, "profiles", "", "Job profiles used when a request uploads none")
	cmd.Flags().StringVar(&language, "language", textnorm.DefaultLanguage, "Stopword language: portuguese, english")
	cmd.Flags().IntVar(&limit, "cap", matching.DefaultCap, "Maximum occurrences counted per keyword")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Résumés scored in parallel per request (0 for one per CPU)")
	cmd.Flags().BoolVar(&allPages, "all-pages", false, "Use the text of every PDF page instead of only the first")

	return cmd
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8888"
}
