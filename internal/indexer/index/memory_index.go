// Package index implements the concurrent in-memory inverted index: a
// term -> postings mapping and a product-id -> product mapping, each behind
// its own RWMutex, with snapshot reads for search.
package index

import (
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/internal/indexer/tokenizer"
)

// MemoryIndex is safe for concurrent use. Lock order is mu before
// productsMu; Add and Remove hold mu for the whole mutation so that a
// product and its postings always commit together.
type MemoryIndex struct {
	id        string
	tokenizer *tokenizer.Tokenizer

	mu       sync.RWMutex
	postings map[string]map[uint32]int
	docTerms map[uint32][]string

	productsMu sync.RWMutex
	products   map[uint32]catalog.Product

	// generation counts committed mutations; it only changes under mu.
	generation atomic.Uint64
	cached     atomic.Pointer[Snapshot]

	logger *slog.Logger
}

func NewMemoryIndex(tok *tokenizer.Tokenizer) *MemoryIndex {
	if tok == nil {
		tok = tokenizer.New()
	}
	return &MemoryIndex{
		id:        uuid.NewString(),
		tokenizer: tok,
		postings:  make(map[string]map[uint32]int),
		docTerms:  make(map[uint32][]string),
		products:  make(map[uint32]catalog.Product),
		logger:    slog.Default().With("component", "memory-index"),
	}
}

// ID identifies this index instance. Generations only order mutations
// within one instance; (ID, Generation) names a state across processes.
func (m *MemoryIndex) ID() string {
	return m.id
}

// Tokenizer returns the tokenizer used at index time. Queries must be
// tokenized with the same one.
func (m *MemoryIndex) Tokenizer() *tokenizer.Tokenizer {
	return m.tokenizer
}

// Add stores p and indexes its fields, replacing any earlier version with
// the same ID. Postings for terms the new version no longer contains are
// dropped, so re-adding is remove-then-add and never accumulates.
func (m *MemoryIndex) Add(p catalog.Product) {
	var terms []string
	for _, field := range p.IndexedFields() {
		terms = append(terms, m.tokenizer.Tokenize(field)...)
	}
	tf := termFrequencies(terms)

	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := m.removePostingsLocked(p.ID)
	vocab := make([]string, 0, len(tf))
	for term, freq := range tf {
		docs, exists := m.postings[term]
		if !exists {
			docs = make(map[uint32]int)
			m.postings[term] = docs
		}
		docs[p.ID] = freq
		vocab = append(vocab, term)
	}
	m.docTerms[p.ID] = vocab

	m.productsMu.Lock()
	m.products[p.ID] = p
	m.productsMu.Unlock()

	m.generation.Add(1)
	m.logger.Debug("product indexed",
		"product_id", p.ID,
		"token_count", len(terms),
		"unique_terms", len(tf),
		"replaced", replaced,
	)
}

// Remove deletes the product and all its postings. Posting lists left empty
// are removed from the vocabulary. Unknown ids are a no-op; the result says
// whether anything was removed.
func (m *MemoryIndex) Remove(id uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	hadPostings := m.removePostingsLocked(id)

	m.productsMu.Lock()
	_, existed := m.products[id]
	delete(m.products, id)
	m.productsMu.Unlock()

	if !hadPostings && !existed {
		return false
	}
	m.generation.Add(1)
	m.logger.Debug("product removed", "product_id", id)
	return true
}

// removePostingsLocked drops every posting of id. Callers hold mu.
func (m *MemoryIndex) removePostingsLocked(id uint32) bool {
	terms, ok := m.docTerms[id]
	if !ok {
		return false
	}
	for _, term := range terms {
		docs := m.postings[term]
		delete(docs, id)
		if len(docs) == 0 {
			delete(m.postings, term)
		}
	}
	delete(m.docTerms, id)
	return true
}

// Snapshot returns an immutable copy of the term -> postings mapping as of
// the last committed mutation. The copy is built under a read lock and
// reused by later callers until the index changes again.
func (m *MemoryIndex) Snapshot() *Snapshot {
	if s := m.cached.Load(); s != nil && s.generation == m.generation.Load() {
		return s
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	gen := m.generation.Load()
	if s := m.cached.Load(); s != nil && s.generation == gen {
		return s
	}
	terms := make(map[string]PostingList, len(m.postings))
	for term, docs := range m.postings {
		postings := make(PostingList, 0, len(docs))
		for id, freq := range docs {
			postings = append(postings, Posting{ProductID: id, Frequency: freq})
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].ProductID < postings[j].ProductID
		})
		terms[term] = postings
	}
	s := &Snapshot{terms: terms, generation: gen}
	m.cached.Store(s)
	return s
}

// Get returns a copy of the stored product.
func (m *MemoryIndex) Get(id uint32) (catalog.Product, bool) {
	m.productsMu.RLock()
	defer m.productsMu.RUnlock()
	p, ok := m.products[id]
	return p, ok
}

// Generation returns the number of committed mutations so far.
func (m *MemoryIndex) Generation() uint64 {
	return m.generation.Load()
}

func (m *MemoryIndex) Stats() Stats {
	m.mu.RLock()
	terms := len(m.postings)
	m.mu.RUnlock()

	m.productsMu.RLock()
	defer m.productsMu.RUnlock()
	return Stats{
		Terms:    terms,
		Products: len(m.products),
	}
}
