package index

import (
	"slices"
	"sort"
)

// Snapshot is an immutable, point-in-time view of the term -> postings
// mapping. It shares nothing with the live index, so it can be read without
// locks while writers keep mutating the index.
type Snapshot struct {
	terms      map[string]PostingList
	generation uint64
}

// Postings returns a copy of the posting list for term, or nil when the term
// is not in the vocabulary.
func (s *Snapshot) Postings(term string) PostingList {
	return slices.Clone(s.terms[term])
}

// EachPosting calls fn for every posting of term, in product-id order.
func (s *Snapshot) EachPosting(term string, fn func(Posting)) {
	for _, p := range s.terms[term] {
		fn(p)
	}
}

// Has reports whether term is in the vocabulary.
func (s *Snapshot) Has(term string) bool {
	_, ok := s.terms[term]
	return ok
}

// Terms returns the vocabulary in sorted order.
func (s *Snapshot) Terms() []string {
	terms := make([]string, 0, len(s.terms))
	for term := range s.terms {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Len returns the vocabulary size.
func (s *Snapshot) Len() int {
	return len(s.terms)
}

// Generation is the index generation the snapshot was taken at.
func (s *Snapshot) Generation() uint64 {
	return s.generation
}
