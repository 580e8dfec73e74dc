// Package tokenizer provides text tokenisation for the search engine.
// It case-folds input, turns punctuation into separators, splits on
// whitespace, removes stop-words and stems what remains. Each Tokenizer
// carries its own stop-word table and stemmer, so several differently
// configured indexes can live in one process.
package tokenizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var languageTags = map[string]language.Tag{
	"portuguese": language.Portuguese,
	"english":    language.English,
	"spanish":    language.Spanish,
	"french":     language.French,
	"russian":    language.Russian,
	"swedish":    language.Swedish,
	"norwegian":  language.Norwegian,
	"hungarian":  language.Hungarian,
}

// Tokenizer turns raw text into normalised terms. It is immutable after New
// and safe for concurrent use.
type Tokenizer struct {
	stopWords map[string]struct{}
	stemmer   Stemmer
	lang      language.Tag
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithStopWords replaces the stop-word table. Words are matched exactly
// against lowercased, unstemmed candidates; pass nil to disable filtering.
func WithStopWords(words []string) Option {
	return func(t *Tokenizer) {
		t.stopWords = make(map[string]struct{}, len(words))
		for _, w := range words {
			if w = strings.TrimSpace(w); w != "" {
				t.stopWords[w] = struct{}{}
			}
		}
	}
}

// WithStemmer sets the stemming strategy.
func WithStemmer(s Stemmer) Option {
	return func(t *Tokenizer) {
		if s == nil {
			s = Identity
		}
		t.stemmer = s
	}
}

// WithLanguage sets the locale used for case folding.
func WithLanguage(tag language.Tag) Option {
	return func(t *Tokenizer) {
		t.lang = tag
	}
}

// New returns a Tokenizer with Portuguese defaults: the built-in Portuguese
// stop-word table, the Portuguese Snowball stemmer and Portuguese case
// folding.
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{
		stemmer: StemmerFunc(stemPortuguese),
		lang:    language.Portuguese,
	}
	WithStopWords(StopWords("portuguese"))(t)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ForLanguage builds a Tokenizer from a language name as it appears in
// configuration. A nil stopWords slice selects the built-in table for lang;
// stemming=false keeps tokens unstemmed.
func ForLanguage(lang string, stopWords []string, stemming bool) (*Tokenizer, error) {
	stemmer := Identity
	if stemming {
		s, err := NewStemmer(lang)
		if err != nil {
			return nil, err
		}
		stemmer = s
	}
	if stopWords == nil {
		stopWords = StopWords(lang)
	}
	tag, ok := languageTags[lang]
	if !ok {
		tag = language.Und
	}
	return New(
		WithStopWords(stopWords),
		WithStemmer(stemmer),
		WithLanguage(tag),
	), nil
}

// Tokenize breaks text into an ordered slice of normalised terms. Repeated
// words yield repeated terms. Empty or punctuation-only input yields an
// empty slice.
func (t *Tokenizer) Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}
	// A Caser keeps state between calls and must not be shared.
	lowered := cases.Lower(t.lang).String(text)
	cleaned := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, lowered)

	words := strings.Fields(cleaned)
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if _, isStop := t.stopWords[word]; isStop {
			continue
		}
		stemmed := t.stemmer.Stem(word)
		if stemmed == "" {
			continue
		}
		terms = append(terms, stemmed)
	}
	return terms
}

// IsStopWord reports whether word is filtered by this Tokenizer.
func (t *Tokenizer) IsStopWord(word string) bool {
	_, ok := t.stopWords[word]
	return ok
}

// isWordRune matches the characters a word may contain: letters, digits,
// combining marks and connector punctuation such as '_'.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) ||
		unicode.IsDigit(r) ||
		unicode.IsMark(r) ||
		unicode.Is(unicode.Pc, r)
}
