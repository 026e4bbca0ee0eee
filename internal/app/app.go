// Package app wires configuration into a ready ingestion service. The HTTP
// server and the CLI share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MadeByDW91/gokartpartpicker.com/config"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/domain"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/infrastructure/cache"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/infrastructure/catalog"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/infrastructure/reader"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/infrastructure/registry"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/infrastructure/search"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/infrastructure/store"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/logger"
	"github.com/MadeByDW91/gokartpartpicker.com/internal/usecase"
	"go.uber.org/zap"
)

const (
	cacheCleanupInterval = 5 * time.Minute
	redisKeyPrefix       = "partingest:"
)

// App holds the wired service and everything that must be closed with it
type App struct {
	Config     *config.Config
	Registries *registry.Set
	Service    *usecase.IngestionService
	Store      *store.PartStore

	closers []func() error
	log     *zap.Logger
}

// New loads registries and connects every configured adapter. Search index
// setup failures are logged, not fatal; everything else fails the build.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, log: logger.Named("app")}

	set, err := registry.Load(registry.Paths{
		Brands:     cfg.Registry.BrandsPath,
		Categories: cfg.Registry.CategoriesPath,
		Patterns:   cfg.Registry.PatternsPath,
	})
	if err != nil {
		return nil, err
	}
	a.Registries = set

	stats := set.Stats()
	a.log.Info("Registries loaded",
		zap.Int("brands", stats.Brands),
		zap.Int("aliases", stats.Aliases),
		zap.Int("categories", stats.Categories),
		zap.Int("engine_families", stats.EngineFamilies),
		zap.Int("patterns", stats.Patterns),
	)

	deps := usecase.IngestionDependencies{}

	deps.Cache, err = a.openCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Database.DSN != "" {
		partStore, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, partStore.Close)
		if err := partStore.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.Store = partStore
		deps.Parts = partStore
	}

	deps.Catalog, err = a.catalogSource()
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Search.URL != "" {
		indexer := search.NewIndexer(cfg.Search.URL, cfg.Search.APIKey, cfg.Search.Index)
		if err := indexer.EnsureIndex(ctx); err != nil {
			a.log.Warn("Search index setup failed, indexing may be rejected", zap.Error(err))
		}
		deps.Indexer = indexer
	}

	pipeline := usecase.NewPipeline(usecase.Registries{
		Brands:     set.Brands,
		Categories: set.Categories,
		Patterns:   set.Patterns,
	}, nil, usecase.PipelineConfig{
		BrandFuzzyThreshold:       cfg.Matching.BrandFuzzyThreshold,
		DuplicateFuzzyThreshold:   cfg.Matching.DuplicateFuzzyThreshold,
		HardDuplicateThreshold:    cfg.Matching.HardDuplicateThreshold,
		MaxDuplicateCandidates:    cfg.Matching.MaxDuplicateCandidates,
		CategoryConfidenceDivisor: cfg.Matching.CategoryConfidenceDivisor,
		ReviewConfidenceFloor:     cfg.Matching.ReviewConfidenceFloor,
		Workers:                   cfg.Matching.Workers,
		EnableDebugLogging:        cfg.Server.Environment == "development",
	})

	a.Service = usecase.NewIngestionService(pipeline, deps, usecase.IngestionServiceConfig{
		BatchTTL: cfg.Cache.TTL,
	})

	a.log.Info("Ingestion service ready",
		zap.String("cache", cfg.Cache.Type),
		zap.String("catalog", cfg.Catalog.Source),
		zap.Bool("commit_enabled", a.Service.CommitEnabled()),
		zap.Bool("search_enabled", deps.Indexer != nil),
	)
	return a, nil
}

// Close releases every connection in reverse order of opening
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openCache(ctx context.Context) (domain.CacheRepository, error) {
	if a.Config.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, a.Config.Cache.RedisURL, redisKeyPrefix)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, redisCache.Close)
		return redisCache, nil
	}

	memoryCache := cache.NewMemoryCache(cacheCleanupInterval)
	a.closers = append(a.closers, memoryCache.Close)
	return memoryCache, nil
}

// catalogSource returns nil for the "none" source. The interface is only
// assigned concrete values that are non-nil.
func (a *App) catalogSource() (domain.CatalogSource, error) {
	cfg := a.Config.Catalog
	switch cfg.Source {
	case config.CatalogSourceFile:
		format, err := reader.ParseFormat(cfg.Format)
		if err != nil {
			return nil, err
		}
		return catalog.NewFileSource(cfg.Path, format), nil
	case config.CatalogSourceDatabase:
		if a.Store == nil {
			return nil, fmt.Errorf("%w: database catalog needs database.dsn", domain.ErrStoreUnavailable)
		}
		return a.Store, nil
	case config.CatalogSourceAPI:
		client := catalog.NewClient(cfg.APIKey, cfg.BaseURL, a.Config.RateLimit.Catalog)
		client.SetDebug(a.Config.Server.Environment == "development")
		return client, nil
	}
	return nil, nil
}
