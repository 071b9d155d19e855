// Package textnorm turns raw extracted text into the cleaned token stream
// consumed by the scorer and the word cloud renderer.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalizer holds the tokenizer and noise set shared by all callers.
// Both are read-only after construction, so one Normalizer may serve
// concurrent requests.
type Normalizer struct {
	tokenizer Tokenizer
	noise     NoiseSet
	tag       language.Tag
}

func NewNormalizer(tokenizer Tokenizer, noise NoiseSet, tag language.Tag) *Normalizer {
	if tokenizer == nil {
		tokenizer = FieldsTokenizer{}
	}
	return &Normalizer{
		tokenizer: tokenizer,
		noise:     noise,
		tag:       tag,
	}
}

// NewDefaultNormalizer wires the Treebank tokenizer with the stopwords of lang.
func NewDefaultNormalizer(lang string) (*Normalizer, error) {
	tag, err := LanguageTag(lang)
	if err != nil {
		return nil, err
	}
	noise, err := DefaultNoiseSet(lang)
	if err != nil {
		return nil, err
	}
	return NewNormalizer(NewTreebankTokenizer(), noise, tag), nil
}

// Noise returns the set of tokens the normalizer drops.
func (n *Normalizer) Noise() NoiseSet {
	return n.noise
}

// Normalize returns raw as lowercase tokens, noise removed, joined by single
// spaces in their original order.
func (n *Normalizer) Normalize(raw string) string {
	return strings.Join(n.Tokens(raw), " ")
}

// Tokens is Normalize without the final join.
func (n *Normalizer) Tokens(raw string) []string {
	tokens := n.tokenizer.Tokenize(raw)
	if len(tokens) == 0 {
		return nil
	}

	// a Caser carries state and must not be shared between goroutines
	lower := cases.Lower(n.tag)

	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = lower.String(tok)
		if tok == "" || n.noise.Contains(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	return kept
}
