package matchcmd

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/lehigh-university-libraries/matchcv/internal/matching"
	"github.com/lehigh-university-libraries/matchcv/internal/textnorm"
	"github.com/spf13/cobra"
)

// Environment fallbacks for flags left unset.
const (
	EnvLanguage = "MATCHCV_LANGUAGE"
	EnvCap      = "MATCHCV_CAP"
	EnvProfiles = "MATCHCV_PROFILES"
)

func DefaultLanguage() string {
	if lang := os.Getenv(EnvLanguage); lang != "" {
		return lang
	}
	return textnorm.DefaultLanguage
}

func DefaultProfiles() string {
	return os.Getenv(EnvProfiles)
}

func DefaultCap() int {
	raw := os.Getenv(EnvCap)
	if raw == "" {
		return matching.DefaultCap
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("Ignoring invalid cap from environment", "var", EnvCap, "value", raw, "err", err)
		return matching.DefaultCap
	}
	return v
}

// FromEnv replaces an unset flag with its environment fallback. It runs
// inside RunE so values from .env are visible.
func FromEnv(cmd *cobra.Command, flag string, v *string, fallback func() string) {
	if !cmd.Flags().Changed(flag) {
		*v = fallback()
	}
}

func CapFromEnv(cmd *cobra.Command, v *int) {
	if !cmd.Flags().Changed("cap") {
		*v = DefaultCap()
	}
}
