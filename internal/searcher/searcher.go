// Package searcher answers keyword queries against a loaded index: it
// normalises the query, unions the posting sets of the first tokens, and
// resolves the lowest-numbered matching documents to their records.
package searcher

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/onslaught7/RAG-Systems-BootDev/internal/index"
	"github.com/onslaught7/RAG-Systems-BootDev/internal/tokenizer"
	apperrors "github.com/onslaught7/RAG-Systems-BootDev/pkg/errors"
	"github.com/onslaught7/RAG-Systems-BootDev/pkg/metrics"
)

// Hard limits on query processing. These are part of the search contract,
// not configuration.
const (
	maxQueryTokens = 5
	maxResults     = 5
)

// Result is the outcome of one search.
type Result struct {
	Query string           `json:"query"`
	Total int              `json:"total"`
	Docs  []index.Document `json:"docs"`
}

// Titles returns the result titles in rank order.
func (r *Result) Titles() []string {
	titles := make([]string, 0, len(r.Docs))
	for _, doc := range r.Docs {
		titles = append(titles, doc.Title)
	}
	return titles
}

// Searcher executes queries against a Store, loading it on first use.
type Searcher struct {
	store   *index.Store
	norm    *tokenizer.Normalizer
	logger  *slog.Logger
	metrics *metrics.Metrics
	loaded  bool
}

// New creates a Searcher over the given store. The normalizer must apply
// the same pipeline the store was built with. Metrics may be nil.
func New(store *index.Store, norm *tokenizer.Normalizer, m *metrics.Metrics) *Searcher {
	return &Searcher{
		store:   store,
		norm:    norm,
		logger:  slog.Default().With("component", "searcher"),
		metrics: m,
	}
}

// Search normalises query, unions the posting sets of at most the first
// five tokens, and returns the five lowest-numbered matching documents. A
// store that has never been built yields an empty Result together with
// ErrIndexNotBuilt so the caller can instruct the user to build first.
func (s *Searcher) Search(ctx context.Context, query string) (*Result, error) {
	start := time.Now()
	empty := &Result{Query: query, Docs: []index.Document{}}

	if !s.loaded {
		if err := s.store.Load(); err != nil {
			if errors.Is(err, apperrors.ErrIndexNotBuilt) {
				s.countQuery("not_built")
			} else {
				s.countQuery("error")
			}
			return empty, err
		}
		s.loaded = true
	}

	tokens := s.norm.Normalize(query)
	if len(tokens) > maxQueryTokens {
		tokens = tokens[:maxQueryTokens]
	}
	if len(tokens) == 0 {
		s.countQuery("zero_result")
		return empty, nil
	}

	union := make(map[int]struct{})
	for _, token := range tokens {
		for _, id := range s.store.GetDocuments(token) {
			union[id] = struct{}{}
		}
	}
	ids := make([]int, 0, len(union))
	for id := range union {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	total := len(ids)
	if len(ids) > maxResults {
		ids = ids[:maxResults]
	}

	docs := make([]index.Document, 0, len(ids))
	for _, id := range ids {
		doc, ok := s.store.GetRecord(id)
		if !ok {
			// Postings referencing a missing record violate the build
			// invariant; treat as corruption rather than skipping silently.
			return empty, apperrors.Newf(apperrors.ErrPersistence, "posting references unknown document %d", id)
		}
		docs = append(docs, doc)
	}

	result := &Result{Query: query, Total: total, Docs: docs}
	if s.metrics != nil {
		s.metrics.SearchLatencySeconds.WithLabelValues("uncached").Observe(time.Since(start).Seconds())
		s.metrics.SearchResultsCount.Observe(float64(len(docs)))
	}
	if len(docs) == 0 {
		s.countQuery("zero_result")
	} else {
		s.countQuery("hit")
	}
	s.logger.Debug("search executed",
		"query", query,
		"tokens", tokens,
		"total_hits", total,
		"returned", len(docs),
	)
	return result, nil
}

func (s *Searcher) countQuery(resultType string) {
	if s.metrics != nil {
		s.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	}
}
