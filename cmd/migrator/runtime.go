package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/freshdesk-migrator/internal/cache"
	"github.com/spec-kit/freshdesk-migrator/internal/client/freshdesk"
	"github.com/spec-kit/freshdesk-migrator/internal/client/rest"
	"github.com/spec-kit/freshdesk-migrator/internal/client/zendesk"
	"github.com/spec-kit/freshdesk-migrator/internal/config"
	"github.com/spec-kit/freshdesk-migrator/internal/events"
	"github.com/spec-kit/freshdesk-migrator/internal/mapper"
	"github.com/spec-kit/freshdesk-migrator/internal/observability"
	"github.com/spec-kit/freshdesk-migrator/internal/persistence"
	"github.com/spec-kit/freshdesk-migrator/internal/repository"
	"github.com/spec-kit/freshdesk-migrator/internal/service"
	"github.com/spec-kit/freshdesk-migrator/internal/worker"
)

// runtime holds the wired migration engine and the resources it owns.
type runtime struct {
	cfg       *config.Config
	logger    *zap.Logger
	postgres  *persistence.Postgres
	redis     *persistence.Redis
	metrics   *observability.Metrics
	ledger    *service.LedgerService
	migration *service.MigrationService
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if mappingPath != "" {
		cfg.Mapping.Path = mappingPath
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger}

	mapping, err := config.LoadMapping(cfg.Mapping.Path)
	if err != nil {
		return nil, err
	}

	rt.postgres, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	if rt.postgres.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, rt.postgres.PoolHandle(), logger); err != nil {
			rt.close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	rt.redis = persistence.NewRedis(cfg.Redis, logger)

	source, target := newHelpdeskClients(cfg, logger)

	reader, err := rt.sourceReader(source)
	if err != nil {
		rt.close()
		return nil, err
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	rt.metrics = observability.NewMetrics()
	var repo repository.MigrationRepository
	if rt.postgres.Enabled() {
		repo = repository.NewMigrationRepository(rt.postgres.PoolHandle())
	}
	rt.ledger = service.NewLedgerService(dispatcher, repo, rt.metrics, logger)
	worker.StartLedgerRecorder(rt.ledger)

	rt.migration = service.NewMigrationService(service.MigrationDependencies{
		Reader:     reader,
		Linker:     source,
		Writer:     target,
		Mapper:     mapper.NewFieldMapper(mapping, logger),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	return rt, nil
}

// newHelpdeskClients builds both adapters, each logging under its own name.
func newHelpdeskClients(cfg *config.Config, logger *zap.Logger) (*freshdesk.Client, *zendesk.Client) {
	sourceLogger := logger.Named("freshdesk")
	targetLogger := logger.Named("zendesk")
	source := freshdesk.NewClient(rest.New(rest.Options{
		BaseURL:    cfg.Freshdesk.APIBaseURL(),
		Username:   cfg.Freshdesk.Username,
		Password:   cfg.Freshdesk.Password,
		Timeout:    cfg.HTTP.Timeout(),
		MaxRetries: cfg.HTTP.MaxRetries,
		Logger:     sourceLogger,
	}), cfg.Freshdesk.Company, sourceLogger)
	target := zendesk.NewClient(rest.New(rest.Options{
		BaseURL:    cfg.Zendesk.APIBaseURL(),
		Username:   cfg.Zendesk.Username,
		Password:   cfg.Zendesk.Password,
		Timeout:    cfg.HTTP.Timeout(),
		MaxRetries: cfg.HTTP.MaxRetries,
		Logger:     targetLogger,
	}), targetLogger)
	return source, target
}

// sourceReader prefers Redis, then the on-disk cache, then no cache.
func (rt *runtime) sourceReader(source *freshdesk.Client) (service.SourceTicketReader, error) {
	if rt.redis != nil {
		return cache.NewCachingReader(source, rt.redis, rt.logger), nil
	}
	if dir := rt.cfg.Freshdesk.CacheDir; dir != "" {
		store, err := cache.NewDirStore(dir)
		if err != nil {
			return nil, err
		}
		rt.logger.Info("caching freshdesk responses on disk", zap.String("dir", dir))
		return cache.NewCachingReader(source, store, rt.logger), nil
	}
	return source, nil
}

func (rt *runtime) close() {
	rt.redis.Close()
	rt.postgres.Close()
	_ = rt.logger.Sync()
}
