package textnorm

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

//go:embed stopwords/*.txt
var stopwordFiles embed.FS

// DefaultLanguage is the stopword language used when none is configured.
const DefaultLanguage = "portuguese"

// noisePunctuation is the punctuation dropped as noise.
// Other marks stay attached to tokens unless the tokenizer splits them off.
var noisePunctuation = []string{"(", ")", ";", ":", "[", "]", ","}

var languageTags = map[string]language.Tag{
	"portuguese": language.Portuguese,
	"english":    language.English,
}

// DefaultPunctuation returns a copy of the punctuation marks treated as noise.
func DefaultPunctuation() []string {
	out := make([]string, len(noisePunctuation))
	copy(out, noisePunctuation)
	return out
}

// Languages lists the languages with an embedded stopword list.
func Languages() []string {
	out := make([]string, 0, len(languageTags))
	for name := range languageTags {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// LanguageTag returns the case-folding tag for a supported language.
func LanguageTag(lang string) (language.Tag, error) {
	tag, ok := languageTags[strings.ToLower(lang)]
	if !ok {
		return language.Und, fmt.Errorf("unsupported language %q (supported: %s)", lang, strings.Join(Languages(), ", "))
	}
	return tag, nil
}

// Stopwords returns the embedded stopword list for lang.
func Stopwords(lang string) ([]string, error) {
	lang = strings.ToLower(lang)
	if _, err := LanguageTag(lang); err != nil {
		return nil, err
	}

	data, err := stopwordFiles.ReadFile("stopwords/" + lang + ".txt")
	if err != nil {
		return nil, fmt.Errorf("failed to read stopwords for %s: %w", lang, err)
	}

	var words []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		w := strings.TrimSpace(scanner.Text())
		if w != "" {
			words = append(words, w)
		}
	}
	return words, scanner.Err()
}

// NoiseSet is the immutable set of tokens dropped during normalization.
// The zero value is an empty set. It is safe for concurrent use.
type NoiseSet struct {
	members map[string]struct{}
}

// NewNoiseSet builds a NoiseSet from punctuation marks and stopwords.
func NewNoiseSet(punctuation, stopwords []string) NoiseSet {
	members := make(map[string]struct{}, len(punctuation)+len(stopwords))
	for _, p := range punctuation {
		members[p] = struct{}{}
	}
	for _, w := range stopwords {
		members[w] = struct{}{}
	}
	return NoiseSet{members: members}
}

// DefaultNoiseSet returns the default punctuation plus the stopwords of lang.
func DefaultNoiseSet(lang string) (NoiseSet, error) {
	words, err := Stopwords(lang)
	if err != nil {
		return NoiseSet{}, err
	}
	return NewNoiseSet(DefaultPunctuation(), words), nil
}

// Contains reports whether token is dropped as noise.
func (n NoiseSet) Contains(token string) bool {
	_, ok := n.members[token]
	return ok
}

// Len is the number of distinct noise tokens.
func (n NoiseSet) Len() int {
	return len(n.members)
}
