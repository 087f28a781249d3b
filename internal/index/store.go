// Package index implements the in-memory inverted index: a term to
// document-ID-set mapping paired with a document-ID to record mapping, with
// versioned on-disk persistence of both as a unit.
package index

import (
	"sort"

	"github.com/onslaught7/RAG-Systems-BootDev/internal/tokenizer"
)

// Store holds the inverted index and the document records. It is populated
// by a one-shot build and treated as read-only afterwards.
type Store struct {
	norm     *tokenizer.Normalizer
	dataDir  string
	postings map[string]map[int]struct{}
	docs     map[int]Document
}

// NewStore creates an empty Store persisting its artifacts under dataDir.
func NewStore(norm *tokenizer.Normalizer, dataDir string) *Store {
	return &Store{
		norm:     norm,
		dataDir:  dataDir,
		postings: make(map[string]map[int]struct{}),
		docs:     make(map[int]Document),
	}
}

// AddDocument normalises text and adds id to the posting set of every token
// produced. Re-adding an id to a posting set is a no-op.
func (s *Store) AddDocument(id int, text string) {
	for _, token := range s.norm.Normalize(text) {
		set, exists := s.postings[token]
		if !exists {
			set = make(map[int]struct{})
			s.postings[token] = set
		}
		set[id] = struct{}{}
	}
}

// SetRecord stores the document record for its ID. The Store owns the
// record after this call.
func (s *Store) SetRecord(doc Document) {
	s.docs[doc.ID] = doc
}

// GetDocuments normalises term and returns the posting set of the first
// resulting token as an ascending-sorted slice. It returns nil when the
// term normalises to nothing or the token is absent.
func (s *Store) GetDocuments(term string) []int {
	tokens := s.norm.Normalize(term)
	if len(tokens) == 0 {
		return nil
	}
	set, exists := s.postings[tokens[0]]
	if !exists {
		return nil
	}
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// GetRecord returns the document record for the given ID.
func (s *Store) GetRecord(id int) (Document, bool) {
	doc, ok := s.docs[id]
	return doc, ok
}

// Terms returns the number of distinct tokens in the index.
func (s *Store) Terms() int {
	return len(s.postings)
}

// DocCount returns the number of stored document records.
func (s *Store) DocCount() int {
	return len(s.docs)
}
