package app

import (
	"context"
	"fmt"

	"github.com/kpenchev/tvprograma-go/internal/config"
	"github.com/kpenchev/tvprograma-go/internal/server"
	"github.com/kpenchev/tvprograma-go/internal/service"
	"github.com/kpenchev/tvprograma-go/internal/service/cache"
	"github.com/kpenchev/tvprograma-go/internal/service/catalog"
	"github.com/kpenchev/tvprograma-go/internal/service/database"
	"github.com/kpenchev/tvprograma-go/internal/service/exclusion"
	"github.com/kpenchev/tvprograma-go/internal/util"
	"go.uber.org/zap"
)

// Container bundles the assembled services. Build wires them once at
// startup; Close tears them down in reverse order.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Cache      *cache.Service
	Postgres   *database.PostgresService
	Catalog    *catalog.Catalog
	Exclusions *exclusion.Store
	Annotator  *service.Annotator
	Aggregator *service.FilmAggregator
	Fetcher    *service.Fetcher
	Scheduler  *service.Scheduler
	Channels   *service.ChannelRepository
	Programs   *service.ProgramRepository

	closers []func()
}

// NewServer constructs the HTTP server over the assembled services.
func (c *Container) NewServer() *server.Server {
	return server.New(c.Config, server.Deps{
		Fetcher:    c.Fetcher,
		Programs:   c.Programs,
		Channels:   c.Channels,
		Annotator:  c.Annotator,
		Aggregator: c.Aggregator,
		Catalog:    c.Catalog,
		Exclusions: c.Exclusions,
		Cache:      c.Cache,
	}, c.Logger)
}

// Close releases held connections in reverse creation order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// Build assembles all infrastructure and domain services. Heavy-weight
// initialization (DB, cache, catalog load) happens here so that main stays
// focused on lifecycle.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// Cache and database
	cacheSvc, err := cache.NewService(cache.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache service: %w", err)
	}
	closers = append(closers, func() {
		_ = cacheSvc.Close()
	})

	postgresSvc, err := database.NewPostgresService(database.PostgresConfig{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres service: %w", err)
	}
	closers = append(closers, func() {
		_ = postgresSvc.Close()
	})

	if err := postgresSvc.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	// Durable stores
	channelRepo := service.NewChannelRepository(postgresSvc, logger)
	if err := channelRepo.SeedFromFile(ctx, cfg.Catalog.ChannelsSeed); err != nil {
		return nil, fmt.Errorf("failed to seed channels: %w", err)
	}
	programRepo := service.NewProgramRepository(postgresSvc, logger)

	exclusionStore, err := exclusion.NewStore(ctx, exclusion.NewPostgresRepository(postgresSvc, logger), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load exclusion store: %w", err)
	}

	// Catalog is load-or-die: annotation without it is meaningless.
	oscarCatalog, err := catalog.Load(cfg.Catalog.MoviesPath, cfg.Catalog.OscarsPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load oscar catalog: %w", err)
	}

	// Annotation pipeline
	var enricher service.Enricher
	if cfg.TMDB.APIKey != "" {
		enricher = service.NewTMDBService(cfg.TMDB.APIKey, cfg.TMDB.WatchRegion, cacheSvc, logger)
	} else {
		logger.Info("TMDB enrichment disabled, no API key configured")
	}

	matcher := service.NewFilmMatcher(oscarCatalog, logger)
	stripper := util.NewSeriesSuffixStripper(cfg.Listings.SeriesMarkers)
	annotator := service.NewAnnotator(matcher, exclusionStore, enricher, stripper, logger)
	aggregator := service.NewFilmAggregator(logger)

	// Ingestion
	scraper := service.NewListingsScraper(cfg.Listings.BaseURL, logger)
	fetcher := service.NewFetcher(scraper, channelRepo, programRepo, cfg.Fetch.Concurrency, logger)
	scheduler, err := service.NewScheduler(fetcher, cfg.Fetch.CronSpec, logger)
	if err != nil {
		return nil, fmt.Errorf("invalid fetch cron spec %q: %w", cfg.Fetch.CronSpec, err)
	}

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Cache:      cacheSvc,
		Postgres:   postgresSvc,
		Catalog:    oscarCatalog,
		Exclusions: exclusionStore,
		Annotator:  annotator,
		Aggregator: aggregator,
		Fetcher:    fetcher,
		Scheduler:  scheduler,
		Channels:   channelRepo,
		Programs:   programRepo,
		closers:    closers,
	}, nil
}
