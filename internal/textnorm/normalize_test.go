package textnorm

import (
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	noise, err := DefaultNoiseSet("portuguese")
	if err != nil {
		t.Fatalf("DefaultNoiseSet failed: %v", err)
	}
	return NewNormalizer(FieldsTokenizer{}, noise, language.Portuguese)
}

func TestNormalize(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "empty text",
			raw:      "",
			expected: "",
		},
		{
			name:     "only whitespace",
			raw:      " \n\t ",
			expected: "",
		},
		{
			name:     "lowercases tokens",
			raw:      "Python SQL",
			expected: "python sql",
		},
		{
			name:     "drops stopwords",
			raw:      "Experiência com Python e SQL para o negócio",
			expected: "experiência python sql negócio",
		},
		{
			name:     "drops standalone noise punctuation",
			raw:      "( python ) ; sql : [ r ] ,",
			expected: "python sql r",
		},
		{
			name:     "keeps punctuation the tokenizer left attached",
			raw:      "python, sql.",
			expected: "python, sql.",
		},
		{
			name:     "keeps punctuation outside the noise set",
			raw:      "python ! sql",
			expected: "python ! sql",
		},
		{
			name:     "folds accented capitals",
			raw:      "ESTATÍSTICA Negócio",
			expected: "estatística negócio",
		},
		{
			name:     "collapses whitespace between tokens",
			raw:      "machine\n\nlearning   big\tdata",
			expected: "machine learning big data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := n.Normalize(tt.raw)
			if result != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	n := newTestNormalizer(t)

	inputs := []string{
		"",
		"Cientista de Dados com experiência em Machine Learning e Big Data",
		"( Python ) ; SQL : [ R ] , estatística",
		"Python, SQL.",
	}

	for _, raw := range inputs {
		once := n.Normalize(raw)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestNormalizeWithTreebankTokenizer(t *testing.T) {
	n, err := NewDefaultNormalizer("portuguese")
	if err != nil {
		t.Fatalf("NewDefaultNormalizer failed: %v", err)
	}
	if !n.Noise().Contains(",") || !n.Noise().Contains("em") {
		t.Errorf("Expected default punctuation and stopwords in noise set, got %d tokens", n.Noise().Len())
	}

	result := n.Normalize("Experiência em Python, SQL e Machine Learning.")

	for _, want := range []string{"experiência", "python", "sql", "machine learning"} {
		if !strings.Contains(result, want) {
			t.Errorf("Expected %q in %q", want, result)
		}
	}
	if strings.Contains(result, ",") {
		t.Errorf("Expected comma to be split off and dropped, got %q", result)
	}
	for _, tok := range strings.Fields(result) {
		if tok == "em" || tok == "e" {
			t.Errorf("Expected stopword %q to be removed from %q", tok, result)
		}
	}

	if n.Normalize("") != "" {
		t.Error("Expected empty output for empty input")
	}
}

func TestNormalizerNilTokenizerFallsBackToFields(t *testing.T) {
	n := NewNormalizer(nil, NoiseSet{}, language.English)

	if got := n.Normalize("Go  Rust"); got != "go rust" {
		t.Errorf("Expected %q, got %q", "go rust", got)
	}
}

type recordingTokenizer struct {
	calls []string
}

func (r *recordingTokenizer) Tokenize(text string) []string {
	r.calls = append(r.calls, text)
	return []string{"A", "de", "B"}
}

func TestNormalizeUsesInjectedTokenizer(t *testing.T) {
	tok := &recordingTokenizer{}
	noise := NewNoiseSet(nil, []string{"de"})
	n := NewNormalizer(tok, noise, language.Portuguese)

	if got := n.Normalize("ignored"); got != "a b" {
		t.Errorf("Expected %q, got %q", "a b", got)
	}
	if len(tok.calls) != 1 || tok.calls[0] != "ignored" {
		t.Errorf("Expected tokenizer to be called once with raw text, got %v", tok.calls)
	}
}
