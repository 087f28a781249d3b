package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/onslaught7/RAG-Systems-BootDev/internal/searcher"
	"github.com/onslaught7/RAG-Systems-BootDev/internal/tokenizer"
	"github.com/onslaught7/RAG-Systems-BootDev/pkg/config"
	"github.com/onslaught7/RAG-Systems-BootDev/pkg/metrics"
	pkgredis "github.com/onslaught7/RAG-Systems-BootDev/pkg/redis"
)

const keyPrefix = "search:"

// QueryCache memoises search results in Redis, keyed by the normalised
// token form of the query so equivalent surface queries share an entry.
// Every cache failure degrades to a miss.
type QueryCache struct {
	client  *pkgredis.Client
	cfg     config.RedisConfig
	norm    *tokenizer.Normalizer
	group   singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(client *pkgredis.Client, cfg config.RedisConfig, norm *tokenizer.Normalizer, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		client:  client,
		cfg:     cfg,
		norm:    norm,
		logger:  slog.Default().With("component", "query-cache"),
		metrics: m,
	}
}

func (c *QueryCache) Get(ctx context.Context, query string) (*searcher.Result, bool) {
	key := c.buildKey(query)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.countMiss()
		return nil, false
	}
	var result searcher.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.countMiss()
		return nil, false
	}
	c.countHit()
	c.logger.Debug("cache hit", "query", query, "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, query string, result *searcher.Result) {
	key := c.buildKey(query)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for query, or runs computeFn and
// caches its result. Concurrent callers with the same key share one
// computation.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query string,
	computeFn func() (*searcher.Result, error),
) (*searcher.Result, bool, error) {
	if result, ok := c.Get(ctx, query); ok {
		return result, true, nil
	}
	key := c.buildKey(query)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, query, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*searcher.Result), false, nil
}

// Invalidate removes every cached search result, for use after a rebuild.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

func (c *QueryCache) buildKey(query string) string {
	tokens := c.norm.Normalize(query)
	hash := sha256.Sum256([]byte(strings.Join(tokens, " ")))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

func (c *QueryCache) countHit() {
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) countMiss() {
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}
