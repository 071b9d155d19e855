package matchcmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/matchcv/internal/matching"
	"github.com/lehigh-university-libraries/matchcv/internal/models"
	"github.com/lehigh-university-libraries/matchcv/internal/profiles"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewProfilesCmd creates the profiles command
func NewProfilesCmd() *cobra.Command {
	var path string
	var format string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "Inspect job profiles",
		Long: `Load a job profiles file and show every profile with its keywords and weights.

Profiles that cannot be scored (mismatched columns, negative weights or no
positive weight) are flagged.`,
		Example: `  # Inspect a workbook
  matchcv profiles --profiles vagas.xlsx

  # Convert a workbook to YAML
  matchcv profiles --profiles vagas.xlsx --format yaml > vagas.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			FromEnv(cmd, "profiles", &path, DefaultProfiles)
			if path == "" {
				return fmt.Errorf("--profiles is required (or set %s)", EnvProfiles)
			}

			jobs, err := profiles.NewLoader(path).Load()
			if err != nil {
				return fmt.Errorf("failed to load profiles: %w", err)
			}

			return writeProfiles(cmd.OutOrStdout(), jobs, format)
		},
	}

	cmd.Flags().StringVar(&path, "profiles", "", "Job profiles file (.xlsx, .parquet, .jsonl, .yaml)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json, yaml")

	return cmd
}

func writeProfiles(w io.Writer, jobs []matching.JobProfile, format string) error {
	switch format {
	case "json":
		list := make([]models.ProfileInfo, 0, len(jobs))
		for _, p := range jobs {
			list = append(list, models.NewProfileInfo(p))
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(list)
	case "yaml":
		// same layout the loader reads back
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(map[string][]matching.JobProfile{"profiles": jobs}); err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return encoder.Close()
	case "text":
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	fmt.Fprintf(w, "Loaded %d profiles\n", len(jobs))
	for i, p := range jobs {
		info := models.NewProfileInfo(p)

		fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 70))
		fmt.Fprintf(w, "Profile %d: %s\n", i+1, p.Name)
		fmt.Fprintf(w, "%s\n", strings.Repeat("=", 70))
		if !info.Valid {
			fmt.Fprintf(w, "❌ %s\n", info.Error)
		}
		fmt.Fprintf(w, "Total weight: %g\n", info.TotalWeight)

		for j, kw := range p.Keywords {
			weight := "-"
			if j < len(p.Weights) {
				weight = fmt.Sprintf("%g", p.Weights[j])
			}
			fmt.Fprintf(w, "  %-30s %s\n", kw, weight)
		}
		for j := len(p.Keywords); j < len(p.Weights); j++ {
			fmt.Fprintf(w, "  %-30s %g\n", "-", p.Weights[j])
		}
	}
	return nil
}
