package tokenizer

var stopWordTables = map[string][]string{
	"portuguese": {
		"a", "o", "as", "os", "um", "uma", "de", "do", "da", "dos", "das",
		"em", "para", "por", "com", "sem", "e", "ou", "que", "se", "no", "na", "nos", "nas",
	},
	"english": {
		"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
		"in", "is", "it", "its", "of", "on", "or", "that", "the", "to",
		"was", "were", "will", "with", "this", "but", "not", "no",
	},
	"spanish": {
		"el", "la", "los", "las", "un", "una", "unos", "unas", "de", "del",
		"en", "para", "por", "con", "sin", "y", "o", "que", "se", "al",
	},
}

// StopWords returns a copy of the built-in stop-word table for lang, or nil
// when there is none.
func StopWords(lang string) []string {
	words, ok := stopWordTables[lang]
	if !ok {
		return nil
	}
	out := make([]string, len(words))
	copy(out, words)
	return out
}
