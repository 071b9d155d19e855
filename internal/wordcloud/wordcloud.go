// Package wordcloud renders the most frequent tokens of a cleaned text as a
// PNG word cloud.
package wordcloud

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var ErrEmptyInput = errors.New("no words to render")

// Blues runs from the light to the dark end of the blue colormap.
var Blues = []string{"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5"}

type Config struct {
	Width       int
	Height      int
	Background  string
	MaxFontSize float64
	MinFontSize float64
	MaxWords    int
	// Colors are blended in order from the most to the least frequent word.
	Colors []string
}

func DefaultConfig() Config {
	return Config{
		Width:       1280,
		Height:      720,
		Background:  "#0f54c9",
		MaxFontSize: 150,
		MinFontSize: 10,
		MaxWords:    200,
		Colors:      Blues,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.Background == "" {
		c.Background = d.Background
	}
	if c.MaxFontSize <= 0 {
		c.MaxFontSize = d.MaxFontSize
	}
	if c.MinFontSize <= 0 {
		c.MinFontSize = d.MinFontSize
	}
	if c.MinFontSize > c.MaxFontSize {
		c.MinFontSize = c.MaxFontSize
	}
	if c.MaxWords <= 0 {
		c.MaxWords = d.MaxWords
	}
	if len(c.Colors) == 0 {
		c.Colors = d.Colors
	}
	return c
}

func (c Config) validate() error {
	if _, err := colorful.Hex(c.Background); err != nil {
		return fmt.Errorf("invalid background color %q: %w", c.Background, err)
	}
	for _, hex := range c.Colors {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("invalid word color %q: %w", hex, err)
		}
	}
	return nil
}

// palette maps a word rank onto the configured color ramp. Colors must have
// been validated.
func (c Config) palette() func(rank, n int) colorful.Color {
	stops := make([]colorful.Color, len(c.Colors))
	for i, hex := range c.Colors {
		stops[i], _ = colorful.Hex(hex)
	}
	return func(rank, n int) colorful.Color {
		if len(stops) == 1 || n <= 1 {
			return stops[0]
		}
		pos := float64(rank) / float64(n-1) * float64(len(stops)-1)
		i := int(pos)
		if i >= len(stops)-1 {
			return stops[len(stops)-1]
		}
		if pos == float64(i) {
			return stops[i]
		}
		return stops[i].BlendLab(stops[i+1], pos-float64(i))
	}
}

// Renderer draws word clouds with a fixed configuration.
type Renderer struct {
	cfg  Config
	font *truetype.Font
}

func NewRenderer(cfg Config) (*Renderer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	return &Renderer{cfg: cfg, font: f}, nil
}

func (r *Renderer) Config() Config {
	return r.cfg
}

// Render draws the word cloud for cleaned text.
func (r *Renderer) Render(cleaned string) (image.Image, error) {
	dc, err := r.draw(cleaned)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

func (r *Renderer) EncodePNG(w io.Writer, cleaned string) error {
	dc, err := r.draw(cleaned)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func (r *Renderer) SavePNG(path, cleaned string) error {
	dc, err := r.draw(cleaned)
	if err != nil {
		return err
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save word cloud: %w", err)
	}
	return nil
}

func (r *Renderer) draw(cleaned string) (*gg.Context, error) {
	freqs := Frequencies(cleaned)
	if len(freqs) == 0 {
		return nil, ErrEmptyInput
	}

	// faces keep glyph caches and are not shared between renders
	faces := make(map[int]font.Face)
	defer func() {
		for _, face := range faces {
			face.Close()
		}
	}()

	dc := gg.NewContext(r.cfg.Width, r.cfg.Height)
	faceFor := func(size float64) font.Face {
		pt := max(int(size), 1)
		face, ok := faces[pt]
		if !ok {
			face = truetype.NewFace(r.font, &truetype.Options{Size: float64(pt)})
			faces[pt] = face
		}
		return face
	}

	measure := func(word string, size float64) (float64, float64) {
		dc.SetFontFace(faceFor(size))
		return dc.MeasureString(word)
	}

	placements := Layout(freqs, r.cfg, measure)
	slog.Debug("Laid out word cloud", "distinct_words", len(freqs), "placed", len(placements))

	bg, _ := colorful.Hex(r.cfg.Background)
	dc.SetColor(bg)
	dc.Clear()

	for _, p := range placements {
		dc.SetFontFace(faceFor(p.FontSize))
		dc.SetColor(p.Color)
		dc.DrawStringAnchored(p.Word, p.X+p.W/2, p.Y+p.H/2, 0.5, 0.5)
	}

	return dc, nil
}

// Render draws cleaned text with cfg in a single call.
func Render(cleaned string, cfg Config) (image.Image, error) {
	r, err := NewRenderer(cfg)
	if err != nil {
		return nil, err
	}
	return r.Render(cleaned)
}
