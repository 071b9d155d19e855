package matrix

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Formats lists the report formats accepted by Write.
var Formats = []string{"text", "json", "csv", "yaml"}

// Report is the serialized form of a matrix with its summary.
type Report struct {
	Matrix  *Matrix  `json:"matrix" yaml:"matrix"`
	Summary *Summary `json:"summary" yaml:"summary"`
}

// Write renders m to w in the given format.
func Write(w io.Writer, m *Matrix, format string) error {
	switch format {
	case "text":
		return WriteText(w, m)
	case "json":
		return WriteJSON(w, m)
	case "csv":
		return WriteCSV(w, m)
	case "yaml":
		return WriteYAML(w, m)
	default:
		return fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats, ", "))
	}
}

// WriteText writes the matrix as an aligned table followed by the summary.
func WriteText(w io.Writer, m *Matrix) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := append([]string{"RESUME"}, m.Jobs...)
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for i, row := range m.Rows {
		cells := []string{row.Resume}
		for j := range m.Jobs {
			if score, ok := m.Cell(i, j); ok {
				cells = append(cells, fmt.Sprintf("%.4f", score))
			} else {
				cells = append(cells, "ERR")
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	s := m.Summarize()

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintln(w, "MATCH SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Resumes: %d (%d failed)\n", s.Resumes, s.Failed)
	fmt.Fprintf(w, "Cap:     %d\n", m.Cap)

	for _, js := range s.Jobs {
		fmt.Fprintf(w, "\n%s:\n", js.Job)
		fmt.Fprintf(w, "  Scored: %d, Failed: %d\n", js.Scored, js.Failed)
		fmt.Fprintf(w, "  Mean: %.4f  Median: %.4f  Min: %.4f  Max: %.4f\n", js.Mean, js.Median, js.Min, js.Max)
	}

	fmt.Fprintln(w, "\nBEST MATCH PER RESUME")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, b := range s.Best {
		if b.Job == "" {
			fmt.Fprintf(w, "  %s: -\n", b.Resume)
			continue
		}
		fmt.Fprintf(w, "  %s: %s (%.4f)\n", b.Resume, b.Job, b.Score)
	}

	errs := m.errorLines()
	if len(errs) > 0 {
		fmt.Fprintln(w, "\nERRORS")
		fmt.Fprintln(w, strings.Repeat("-", 70))
		for _, e := range errs {
			fmt.Fprintf(w, "  ❌ %s\n", e)
		}
	}

	return nil
}

// WriteJSON writes the matrix and summary as indented JSON.
func WriteJSON(w io.Writer, m *Matrix) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Report{Matrix: m, Summary: m.Summarize()})
}

// WriteYAML writes the matrix and summary as YAML.
func WriteYAML(w io.Writer, m *Matrix) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(Report{Matrix: m, Summary: m.Summarize()}); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return encoder.Close()
}

// WriteCSV writes one row per résumé with a score column per job and a
// trailing error column.
func WriteCSV(w io.Writer, m *Matrix) error {
	writer := csv.NewWriter(w)

	header := append([]string{"resume"}, m.Jobs...)
	header = append(header, "error")
	if err := writer.Write(header); err != nil {
		return err
	}

	for i, row := range m.Rows {
		record := []string{row.Resume}
		var errs []string
		if row.Error != "" {
			errs = append(errs, row.Error)
		}

		for j, job := range m.Jobs {
			score, ok := m.Cell(i, j)
			if !ok {
				record = append(record, "")
				if row.Error == "" {
					errs = append(errs, job+": "+row.CellErrors[j])
				}
				continue
			}
			record = append(record, fmt.Sprintf("%.4f", score))
		}

		record = append(record, strings.Join(errs, "; "))
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (m *Matrix) errorLines() []string {
	var lines []string
	for _, row := range m.Rows {
		if row.Error != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", row.Resume, row.Error))
			continue
		}
		for j, e := range row.CellErrors {
			if e != "" {
				lines = append(lines, fmt.Sprintf("%s × %s: %s", row.Resume, m.Jobs[j], e))
			}
		}
	}
	return lines
}
