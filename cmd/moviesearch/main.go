package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/onslaught7/RAG-Systems-BootDev/internal/index"
	"github.com/onslaught7/RAG-Systems-BootDev/internal/indexer"
	"github.com/onslaught7/RAG-Systems-BootDev/internal/searcher"
	"github.com/onslaught7/RAG-Systems-BootDev/internal/searcher/cache"
	"github.com/onslaught7/RAG-Systems-BootDev/internal/tokenizer"
	"github.com/onslaught7/RAG-Systems-BootDev/pkg/config"
	apperrors "github.com/onslaught7/RAG-Systems-BootDev/pkg/errors"
	"github.com/onslaught7/RAG-Systems-BootDev/pkg/logger"
	"github.com/onslaught7/RAG-Systems-BootDev/pkg/metrics"
	pkgredis "github.com/onslaught7/RAG-Systems-BootDev/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdown := m.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	norm := tokenizer.New(cfg.Index.StopwordsPath)
	store := index.NewStore(norm, cfg.Index.DataDir)

	var cmdErr error
	switch args[0] {
	case "build":
		cmdErr = runBuild(ctx, cfg, store, m, norm)
	case "search":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: moviesearch search <query>")
			os.Exit(apperrors.ExitCode(apperrors.ErrInvalidInput))
		}
		cmdErr = runSearch(ctx, cfg, store, m, norm, strings.Join(args[1:], " "))
	default:
		printUsage()
		os.Exit(1)
	}
	if cmdErr != nil {
		os.Exit(apperrors.ExitCode(cmdErr))
	}
}

func runBuild(ctx context.Context, cfg *config.Config, store *index.Store, m *metrics.Metrics, norm *tokenizer.Normalizer) error {
	builder := indexer.NewBuilder(store, cfg.Index.SourcePath, m)
	stats, err := builder.Build(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrSourceNotFound) {
			fmt.Fprintf(os.Stderr, "Error: %s not found.\n", cfg.Index.SourcePath)
		} else {
			fmt.Fprintf(os.Stderr, "An error occurred while building the index: %v\n", err)
		}
		return err
	}
	fmt.Printf("Indexed %d documents (%d terms) in %s.\n", stats.Docs, stats.Terms, stats.Elapsed.Round(time.Millisecond))

	// Stale cached results would outlive a rebuild.
	if cfg.Redis.Enabled {
		qc, client, cacheErr := newQueryCache(cfg, norm, m)
		if cacheErr != nil {
			fmt.Fprintf(os.Stderr, "warning: query cache unavailable: %v\n", cacheErr)
			return nil
		}
		defer client.Close()
		if err := qc.Invalidate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not invalidate query cache: %v\n", err)
		}
	}
	return nil
}

func runSearch(ctx context.Context, cfg *config.Config, store *index.Store, m *metrics.Metrics, norm *tokenizer.Normalizer, query string) error {
	fmt.Printf("Searching for: %s\n", query)

	s := searcher.New(store, norm, m)
	var result *searcher.Result
	var err error
	if cfg.Redis.Enabled {
		if qc, client, cacheErr := newQueryCache(cfg, norm, m); cacheErr == nil {
			defer client.Close()
			result, _, err = qc.GetOrCompute(ctx, query, func() (*searcher.Result, error) {
				return s.Search(ctx, query)
			})
		} else {
			fmt.Fprintf(os.Stderr, "warning: query cache unavailable: %v\n", cacheErr)
			result, err = s.Search(ctx, query)
		}
	} else {
		result, err = s.Search(ctx, query)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrIndexNotBuilt) {
			fmt.Println("Index not built. Run 'moviesearch build' first.")
		} else {
			fmt.Fprintf(os.Stderr, "An error occurred while searching: %v\n", err)
		}
		return err
	}

	if len(result.Docs) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for i, title := range result.Titles() {
		fmt.Printf("%d. %s\n", i+1, title)
	}
	return nil
}

func newQueryCache(cfg *config.Config, norm *tokenizer.Normalizer, m *metrics.Metrics) (*cache.QueryCache, *pkgredis.Client, error) {
	client, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return cache.New(client, cfg.Redis, norm, m), client, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Keyword search over the movie collection.

Usage:
  moviesearch [-config path] build           build and persist the index
  moviesearch [-config path] search <query>  search the built index`)
}
