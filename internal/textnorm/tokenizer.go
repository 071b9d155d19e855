package textnorm

import (
	"strings"
	"sync"

	"github.com/jdkato/prose/tokenize"
)

// Tokenizer splits text into an ordered sequence of word-level tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// TreebankTokenizer splits text into sentences with the Punkt model and each
// sentence into words with Penn Treebank rules.
type TreebankTokenizer struct {
	mu        sync.Mutex
	sentences *tokenize.PunktSentenceTokenizer
	words     *tokenize.TreebankWordTokenizer
}

func NewTreebankTokenizer() *TreebankTokenizer {
	return &TreebankTokenizer{
		sentences: tokenize.NewPunktSentenceTokenizer(),
		words:     tokenize.NewTreebankWordTokenizer(),
	}
}

func (t *TreebankTokenizer) Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	// the punkt model keeps per-call annotation state
	t.mu.Lock()
	sentences := t.sentences.Tokenize(text)
	t.mu.Unlock()

	var tokens []string
	for _, s := range sentences {
		tokens = append(tokens, t.words.Tokenize(s)...)
	}
	return tokens
}

// FieldsTokenizer splits on Unicode whitespace only.
type FieldsTokenizer struct{}

func (FieldsTokenizer) Tokenize(text string) []string {
	return strings.Fields(text)
}
