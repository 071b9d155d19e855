package models

import (
	"github.com/lehigh-university-libraries/matchcv/internal/matching"
	"github.com/lehigh-university-libraries/matchcv/internal/matrix"
)

// MatchResponse is returned by the match endpoint.
type MatchResponse struct {
	Matrix  *matrix.Matrix  `json:"matrix"`
	Summary *matrix.Summary `json:"summary"`
	// ProfileSource is "upload" when a workbook came with the request and
	// "server" when the profiles loaded at startup were used.
	ProfileSource string `json:"profile_source"`
}

// ProfileInfo describes one loaded job profile.
type ProfileInfo struct {
	Name        string    `json:"name"`
	Keywords    []string  `json:"keywords"`
	Weights     []float64 `json:"weights"`
	TotalWeight float64   `json:"total_weight"`
	Valid       bool      `json:"valid"`
	Error       string    `json:"error,omitempty"`
}

func NewProfileInfo(p matching.JobProfile) ProfileInfo {
	info := ProfileInfo{
		Name:        p.Name,
		Keywords:    p.Keywords,
		Weights:     p.Weights,
		TotalWeight: p.TotalWeight(),
		Valid:       true,
	}
	if err := p.Validate(); err != nil {
		info.Valid = false
		info.Error = err.Error()
	}
	return info
}
