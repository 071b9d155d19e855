package matching

import (
	"fmt"
	"math"
)

// JobProfile is a named pair of parallel keyword and weight columns.
// Weights need not sum to one.
type JobProfile struct {
	Name     string    `json:"name" yaml:"name"`
	Keywords []string  `json:"keywords" yaml:"keywords"`
	Weights  []float64 `json:"weights" yaml:"weights"`
}

// Validate reports shape and weight problems that make a profile unscorable.
func (p JobProfile) Validate() error {
	if len(p.Keywords) != len(p.Weights) {
		return fmt.Errorf("%w: profile %q has %d keywords and %d weights",
			ErrShapeMismatch, p.Name, len(p.Keywords), len(p.Weights))
	}

	var total float64
	for i, w := range p.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: profile %q keyword %q has weight %g",
				ErrInvalidWeight, p.Name, p.Keywords[i], w)
		}
		if w < 0 {
			return fmt.Errorf("%w: profile %q keyword %q has weight %g",
				ErrNegativeWeight, p.Name, p.Keywords[i], w)
		}
		total += w
	}

	if math.IsInf(total, 0) {
		return fmt.Errorf("%w: profile %q weights overflow when summed", ErrInvalidWeight, p.Name)
	}
	if total == 0 {
		return fmt.Errorf("%w: profile %q has no positive weight", ErrDivisionUndefined, p.Name)
	}

	return nil
}

// TotalWeight is the sum of all weights.
func (p JobProfile) TotalWeight() float64 {
	var total float64
	for _, w := range p.Weights {
		total += w
	}
	return total
}
