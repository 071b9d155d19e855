// Package matching scores cleaned résumé text against weighted keyword profiles.
package matching

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lehigh-university-libraries/matchcv/internal/textnorm"
)

// DefaultCap is the number of occurrences after which a keyword stops adding to the score.
const DefaultCap = 3

// scorePrecision is the number of decimal digits kept in a score.
const scorePrecision = 4

var (
	ErrShapeMismatch     = errors.New("keyword and weight counts differ")
	ErrDivisionUndefined = errors.New("profile weights sum to zero")
	ErrNegativeWeight    = errors.New("negative keyword weight")
	ErrInvalidWeight     = errors.New("keyword weight is not a finite number")
	ErrInvalidCap        = errors.New("cap must not be negative")
)

// KeywordMatch is the contribution of one keyword to a score.
type KeywordMatch struct {
	Keyword      string  `json:"keyword" yaml:"keyword"`
	Weight       float64 `json:"weight" yaml:"weight"`
	Count        int     `json:"count" yaml:"count"`
	CappedCount  int     `json:"capped_count" yaml:"capped_count"`
	Contribution float64 `json:"contribution" yaml:"contribution"`
}

// Breakdown explains how a score was reached.
type Breakdown struct {
	Profile  string         `json:"profile" yaml:"profile"`
	Cap      int            `json:"cap" yaml:"cap"`
	Matches  []KeywordMatch `json:"matches" yaml:"matches"`
	RawScore float64        `json:"raw_score" yaml:"raw_score"`
	MaxScore float64        `json:"max_score" yaml:"max_score"`
	Score    float64        `json:"score" yaml:"score"`
}

// Score returns the capped, weight-normalized keyword score of cleaned text,
// rounded to four decimals. Keywords are counted as literal, non-overlapping
// substrings of the text, so multi-word keywords match across token boundaries.
func Score(cleaned string, profile JobProfile, limit int) (float64, error) {
	b, err := Explain(cleaned, profile, limit)
	if err != nil {
		return 0, err
	}
	return b.Score, nil
}

// Explain is Score with the per-keyword counts that produced it.
func Explain(cleaned string, profile JobProfile, limit int) (*Breakdown, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCap, limit)
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	b := &Breakdown{
		Profile:  profile.Name,
		Cap:      limit,
		Matches:  make([]KeywordMatch, len(profile.Keywords)),
		MaxScore: float64(limit) * profile.TotalWeight(),
	}
	if math.IsInf(b.MaxScore, 0) {
		return nil, fmt.Errorf("%w: profile %q weights overflow at cap %d", ErrInvalidWeight, profile.Name, limit)
	}

	for i, kw := range profile.Keywords {
		m := KeywordMatch{Keyword: kw, Weight: profile.Weights[i]}
		// strings.Count of "" counts rune boundaries, not occurrences
		if kw != "" {
			m.Count = strings.Count(cleaned, kw)
		}
		m.CappedCount = min(m.Count, limit)
		m.Contribution = float64(m.CappedCount) * m.Weight
		b.RawScore += m.Contribution
		b.Matches[i] = m
	}

	if limit == 0 {
		return b, nil
	}

	b.Score = round(b.RawScore/b.MaxScore, scorePrecision)
	return b, nil
}

// ScoreText normalizes raw text and scores it.
func ScoreText(n *textnorm.Normalizer, raw string, profile JobProfile, limit int) (float64, error) {
	return Score(n.Normalize(raw), profile, limit)
}

// round rounds half to even.
func round(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.RoundToEven(v*scale) / scale
}
