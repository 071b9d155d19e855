package matrix

import (
	"sort"
)

// JobStats summarizes one job column over the résumés that scored.
type JobStats struct {
	Job    string  `json:"job" yaml:"job"`
	Scored int     `json:"scored" yaml:"scored"`
	Failed int     `json:"failed" yaml:"failed"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
}

// BestMatch is the highest-scoring job for one résumé.
type BestMatch struct {
	Resume string  `json:"resume" yaml:"resume"`
	Job    string  `json:"job,omitempty" yaml:"job,omitempty"`
	Score  float64 `json:"score" yaml:"score"`
}

type Summary struct {
	Resumes int         `json:"resumes" yaml:"resumes"`
	Failed  int         `json:"failed" yaml:"failed"`
	Jobs    []JobStats  `json:"jobs" yaml:"jobs"`
	Best    []BestMatch `json:"best" yaml:"best"`
}

// Summarize computes per-job statistics and the best job per résumé.
// Ties go to the leftmost job column.
func (m *Matrix) Summarize() *Summary {
	s := &Summary{
		Resumes: len(m.Rows),
		Jobs:    make([]JobStats, len(m.Jobs)),
		Best:    make([]BestMatch, 0, len(m.Rows)),
	}

	columns := make([][]float64, len(m.Jobs))

	for i, row := range m.Rows {
		if row.Error != "" {
			s.Failed++
			s.Best = append(s.Best, BestMatch{Resume: row.Resume})
			continue
		}

		best := BestMatch{Resume: row.Resume, Score: -1}
		for j := range m.Jobs {
			score, ok := m.Cell(i, j)
			if !ok {
				s.Jobs[j].Failed++
				continue
			}
			columns[j] = append(columns[j], score)
			if score > best.Score {
				best.Job = m.Jobs[j]
				best.Score = score
			}
		}
		if best.Score < 0 {
			best.Score = 0
		}
		s.Best = append(s.Best, best)
	}

	for j, job := range m.Jobs {
		stats := &s.Jobs[j]
		stats.Job = job
		scores := columns[j]
		stats.Scored = len(scores)
		if len(scores) == 0 {
			continue
		}

		var total float64
		for _, score := range scores {
			total += score
		}
		stats.Mean = total / float64(len(scores))

		sort.Float64s(scores)
		mid := len(scores) / 2
		if len(scores)%2 == 0 {
			stats.Median = (scores[mid-1] + scores[mid]) / 2
		} else {
			stats.Median = scores[mid]
		}
		stats.Min = scores[0]
		stats.Max = scores[len(scores)-1]
	}

	return s
}
