// Package indexer builds the inverted index from the source movie
// collection in one batch pass and persists it.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/onslaught7/RAG-Systems-BootDev/internal/index"
	apperrors "github.com/onslaught7/RAG-Systems-BootDev/pkg/errors"
	"github.com/onslaught7/RAG-Systems-BootDev/pkg/metrics"
)

// Builder populates a Store from a JSON movie collection.
type Builder struct {
	store      *index.Store
	sourcePath string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// BuildStats summarises a completed build.
type BuildStats struct {
	Docs    int
	Terms   int
	Elapsed time.Duration
}

// NewBuilder creates a Builder reading the collection from sourcePath.
// Metrics may be nil.
func NewBuilder(store *index.Store, sourcePath string, m *metrics.Metrics) *Builder {
	return &Builder{
		store:      store,
		sourcePath: sourcePath,
		logger:     slog.Default().With("component", "indexer"),
		metrics:    m,
	}
}

// Build reads the full collection, indexes every record in source order,
// and persists the result. Nothing is persisted when any step fails.
func (b *Builder) Build(ctx context.Context) (BuildStats, error) {
	start := time.Now()

	data, err := os.ReadFile(b.sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return BuildStats{}, apperrors.Newf(apperrors.ErrSourceNotFound, "%s does not exist", b.sourcePath)
		}
		return BuildStats{}, fmt.Errorf("reading source collection %s: %w", b.sourcePath, err)
	}
	var collection struct {
		Movies []index.Document `json:"movies"`
	}
	if err := json.Unmarshal(data, &collection); err != nil {
		return BuildStats{}, fmt.Errorf("parsing source collection %s: %w", b.sourcePath, err)
	}

	seen := make(map[int]struct{}, len(collection.Movies))
	for _, doc := range collection.Movies {
		if err := ctx.Err(); err != nil {
			return BuildStats{}, err
		}
		if _, dup := seen[doc.ID]; dup {
			return BuildStats{}, apperrors.Newf(apperrors.ErrInvalidInput, "duplicate document id %d", doc.ID)
		}
		seen[doc.ID] = struct{}{}
		b.store.AddDocument(doc.ID, doc.Title+" "+doc.Description)
		b.store.SetRecord(doc)
		if b.metrics != nil {
			b.metrics.DocsIndexedTotal.Inc()
		}
		b.logger.Debug("document indexed", "doc_id", doc.ID, "title", doc.Title)
	}

	if err := b.store.Save(); err != nil {
		return BuildStats{}, fmt.Errorf("saving index: %w", err)
	}

	stats := BuildStats{
		Docs:    b.store.DocCount(),
		Terms:   b.store.Terms(),
		Elapsed: time.Since(start),
	}
	if b.metrics != nil {
		b.metrics.BuildDurationSeconds.Observe(stats.Elapsed.Seconds())
		b.metrics.IndexTermsGauge.Set(float64(stats.Terms))
	}
	b.logger.Info("index built",
		"docs", stats.Docs,
		"terms", stats.Terms,
		"elapsed", stats.Elapsed,
	)
	return stats, nil
}
