package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/interview-prep/internal/config"
	"github.com/jonathan/interview-prep/internal/db"
	"github.com/jonathan/interview-prep/internal/fetch"
	"github.com/jonathan/interview-prep/internal/ingestion"
	"github.com/jonathan/interview-prep/internal/llm"
	"github.com/jonathan/interview-prep/internal/parsing"
	"github.com/jonathan/interview-prep/internal/pipeline"
	"github.com/jonathan/interview-prep/internal/questions"
	"github.com/jonathan/interview-prep/internal/research"
)

// Redis key prefixes for the two caches sharing one client.
const (
	searchCachePrefix = "interview-prep:search:"
	pageCachePrefix   = "interview-prep:page:"
)

// app holds the long-lived services a command needs.
type app struct {
	cfg          *config.Config
	llm          llm.VisionClient
	redis        *redis.Client
	orchestrator *pipeline.Orchestrator
	extractor    *ingestion.Extractor
}

// loadConfig builds the effective configuration from --config and the environment.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath, os.LookupEnv)
}

// newApp wires providers, caches and the pipeline. requireLLM fails fast
// when no Gemini key is configured; extraction of text files works without one.
func newApp(ctx context.Context, cfg *config.Config, requireLLM bool) (*app, error) {
	a := &app{cfg: cfg}

	if cfg.APIKey != "" {
		llmCfg := llm.DefaultConfig()
		llmCfg.Timeout = cfg.LLMTimeout.Std()
		client, err := llm.NewClient(ctx, llmCfg, cfg.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		a.llm = client
	} else if requireLLM {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable or api_key config is required")
	}

	if cfg.RedisURL != "" {
		rdb, err := research.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			// Caching is optional; run uncached rather than fail.
			log.Printf("[app] redis unavailable, caching disabled: %v", err)
		} else {
			a.redis = rdb
		}
	}

	searcher, err := a.searcher(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.extractor = a.newExtractor()

	if a.llm != nil {
		a.orchestrator = pipeline.New(pipeline.Deps{
			Analyzer: parsing.NewAnalyzer(a.llm, parsing.AnalyzerOptions{}),
			Gatherer: research.NewGatherer(searcher, research.GathererOptions{
				MaxSkills: cfg.MaxSkills,
				Timeout:   cfg.SearchTimeout.Std(),
			}),
			Extractor: questions.NewExtractor(a.llm, questions.ExtractorOptions{}),
			Generator: questions.NewGenerator(a.llm, questions.GeneratorOptions{Count: cfg.QuestionsPerCategory}),
		}, pipeline.Options{
			QuestionsPerCategory: cfg.QuestionsPerCategory,
			CalibrateTechnical:   cfg.CalibrateTechnical,
		})
	}

	return a, nil
}

// searcher returns the configured search provider, or nil when search is off.
func (a *app) searcher(ctx context.Context) (research.Searcher, error) {
	if !a.cfg.SearchEnabled() {
		log.Printf("[app] web search not configured; generating without evidence")
		return nil, nil
	}

	google, err := research.NewGoogleSearcher(ctx, a.cfg.GoogleSearchAPIKey, a.cfg.GoogleSearchCX, research.GoogleOptions{
		QPS: a.cfg.SearchQPS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create search client: %w", err)
	}
	if a.redis == nil {
		return google, nil
	}
	return research.NewCachedSearcher(google, research.NewRedisCache(a.redis, searchCachePrefix), a.cfg.SearchCacheTTL.Std()), nil
}

func (a *app) newExtractor() *ingestion.Extractor {
	var pageCache fetch.Cache
	if a.redis != nil {
		pageCache = research.NewRedisCache(a.redis, pageCachePrefix)
	}

	fetchOpts := fetch.DefaultOptions()
	fetchOpts.BlockPrivate = !a.cfg.AllowPrivateURLs
	opts := []ingestion.Option{
		ingestion.WithFetcher(fetch.NewCachedFetcher(pageCache, fetchOpts, fetch.DefaultPageCacheTTL)),
	}
	if !a.cfg.AllowPrivateURLs {
		opts = append(opts, ingestion.WithAddressGuard())
	}
	if a.llm != nil {
		opts = append(opts, ingestion.WithVision(a.llm))
	}
	if a.cfg.UseBrowser {
		opts = append(opts, ingestion.WithBrowser(fetch.ChromeRenderer{}))
	}
	return ingestion.NewExtractor(opts...)
}

// Close releases provider connections.
func (a *app) Close() {
	if a.llm != nil {
		if err := a.llm.Close(); err != nil {
			log.Printf("[app] closing LLM client: %v", err)
		}
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// openStore connects to the favorites store and ensures its schema.
func openStore(ctx context.Context, cfg *config.Config) (db.Store, error) {
	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
