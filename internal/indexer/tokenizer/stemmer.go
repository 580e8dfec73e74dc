package tokenizer

import (
	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/portuguese"
	"github.com/kljensen/snowball"

	apperrors "github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/errors"
)

// Stemmer reduces an inflected token to its root form. Implementations must
// be deterministic and safe for concurrent use.
type Stemmer interface {
	Stem(token string) string
}

// StemmerFunc adapts a plain function to the Stemmer interface.
type StemmerFunc func(token string) string

func (f StemmerFunc) Stem(token string) string { return f(token) }

// Identity leaves tokens untouched.
var Identity Stemmer = StemmerFunc(func(token string) string { return token })

// NewStemmer returns the Snowball stemmer for lang. "none" and "" give the
// identity stemmer.
func NewStemmer(lang string) (Stemmer, error) {
	switch lang {
	case "", "none":
		return Identity, nil
	case "portuguese":
		return StemmerFunc(stemPortuguese), nil
	}
	// kljensen/snowball reports unsupported languages as an error; stem a
	// sample word once so that the returned stemmer never has to.
	if _, err := snowball.Stem("sample", lang, true); err != nil {
		return nil, apperrors.Newf(apperrors.ErrUnknownLanguage, "no stemmer for %q", lang)
	}
	return StemmerFunc(func(token string) string {
		stemmed, err := snowball.Stem(token, lang, true)
		if err != nil {
			return token
		}
		return stemmed
	}), nil
}

func stemPortuguese(token string) string {
	env := snowballstem.NewEnv(token)
	portuguese.Stem(env)
	return env.Current()
}
