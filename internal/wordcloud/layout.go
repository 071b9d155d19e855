package wordcloud

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/lucasb-eyer/go-colorful"
)

// WordCount is one distinct token and how often it appears.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Placement is a word positioned on the canvas. X and Y are the top-left
// corner of its bounding box.
type Placement struct {
	Word     string
	Count    int
	FontSize float64
	X, Y     float64
	W, H     float64
	Color    colorful.Color
}

// MeasureFunc returns the width and height of word drawn at size points.
type MeasureFunc func(word string, size float64) (w, h float64)

const (
	spiralStep  = 3.0
	thetaStep   = 0.1
	wordPadding = 2.0
)

// Frequencies counts the space-separated tokens of cleaned text, most
// frequent first and alphabetical within equal counts. Tokens without a
// letter or digit are not words and are left out.
func Frequencies(cleaned string) []WordCount {
	counts := make(map[string]int)
	for _, word := range strings.Fields(cleaned) {
		if strings.IndexFunc(word, isWordRune) < 0 {
			continue
		}
		counts[word]++
	}

	freqs := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		freqs = append(freqs, WordCount{Word: word, Count: count})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Word < freqs[j].Word
	})
	return freqs
}

// Layout places words largest first along an Archimedean spiral starting at
// the canvas centre. A word that cannot be placed without overlapping an
// earlier one or leaving the canvas is skipped.
func Layout(freqs []WordCount, cfg Config, measure MeasureFunc) []Placement {
	cfg = cfg.withDefaults()
	if len(freqs) > cfg.MaxWords {
		freqs = freqs[:cfg.MaxWords]
	}
	if len(freqs) == 0 {
		return nil
	}

	palette := cfg.palette()
	width, height := float64(cfg.Width), float64(cfg.Height)
	cx, cy := width/2, height/2
	maxRadius := math.Hypot(cx, cy)
	top := float64(freqs[0].Count)

	placed := make([]Placement, 0, len(freqs))
	for rank, wc := range freqs {
		size := math.Max(cfg.MaxFontSize*float64(wc.Count)/top, cfg.MinFontSize)
		w, h := measure(wc.Word, size)
		if w > width || h > height {
			continue
		}

		p := Placement{
			Word:     wc.Word,
			Count:    wc.Count,
			FontSize: size,
			W:        w,
			H:        h,
			Color:    palette(rank, len(freqs)),
		}

		for theta := 0.0; ; theta += thetaStep {
			r := spiralStep * theta
			if r > maxRadius {
				break
			}
			p.X = cx + r*math.Cos(theta) - w/2
			p.Y = cy + r*math.Sin(theta) - h/2
			if !inside(p, width, height) || collides(p, placed) {
				continue
			}
			placed = append(placed, p)
			break
		}
	}

	return placed
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func inside(p Placement, width, height float64) bool {
	return p.X >= 0 && p.Y >= 0 && p.X+p.W <= width && p.Y+p.H <= height
}

func collides(p Placement, placed []Placement) bool {
	for _, q := range placed {
		if p.X < q.X+q.W+wordPadding && q.X < p.X+p.W+wordPadding &&
			p.Y < q.Y+q.H+wordPadding && q.Y < p.Y+p.H+wordPadding {
			return true
		}
	}
	return false
}
