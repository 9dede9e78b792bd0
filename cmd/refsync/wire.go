package main

import (
	"context"
	"fmt"

	"github.com/custodia-labs/refsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/refsync/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/refsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/refsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/refsync/internal/config"
	"github.com/custodia-labs/refsync/internal/connectors/igdb"
	"github.com/custodia-labs/refsync/internal/connectors/resilient"
	"github.com/custodia-labs/refsync/internal/core/ports/driven"
	"github.com/custodia-labs/refsync/internal/core/services"
	"github.com/custodia-labs/refsync/internal/logger"
	"github.com/custodia-labs/refsync/internal/metrics"
	"github.com/custodia-labs/refsync/internal/normalisers/genre"
)

// genreTable is the storage needed by the sync and catalogue services.
type genreTable interface {
	driven.EntitySink
	driven.EntityStore
}

// bootstrap builds the services a command asked for.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	svc := &cli.Services{
		MetricsTextfile: cfg.Metrics.Textfile,
		Close:           func() error { return nil },
	}

	var table genreTable
	if opts.Need&(cli.NeedSync|cli.NeedCatalogue) != 0 {
		if opts.DryRun {
			logger.Info("Dry run: using in-memory storage")
			table = memory.NewEntityStore()
		} else {
			t, closeFn, err := openStorage(ctx, cfg.Storage)
			if err != nil {
				return nil, err
			}
			table, svc.Close = t, closeFn
		}
	}

	var client *igdb.Client
	if opts.Need&(cli.NeedSync|cli.NeedIdentity) != 0 {
		if err := cfg.RequireCredentials(); err != nil {
			_ = svc.Close()
			return nil, err
		}
		client, err = igdb.NewClient(igdbConfig(cfg.IGDB))
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("create igdb client: %w", err)
		}
	}

	if opts.Need&cli.NeedSync != 0 {
		source := resilient.Wrap(
			metrics.InstrumentSource(igdb.NewGenreSource(client)),
			resilientOptions(cfg.IGDB),
		)
		svc.Sync = services.NewSyncOrchestrator(
			source,
			genre.New(),
			metrics.InstrumentSink(table),
			opts.Progress,
			cfg.Sync.PageSize,
		)
	}
	if opts.Need&cli.NeedCatalogue != 0 {
		svc.Catalogue = services.NewCatalogueService(table)
	}
	if opts.Need&cli.NeedIdentity != 0 {
		svc.Identity = services.NewIdentityService(igdb.NewIdentity(client))
	}

	return svc, nil
}

// openStorage opens the configured database and returns its genres table.
func openStorage(ctx context.Context, cfg config.StorageConfig) (genreTable, func() error, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		store, err := postgres.NewStore(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		logger.Debug("Using postgres storage")
		return store.Genres(), store.Close, nil
	default:
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Debug("Using sqlite storage at %s", store.Path())
		return store.Genres(), store.Close, nil
	}
}

func igdbConfig(cfg config.IGDBConfig) igdb.Config {
	return igdb.Config{
		ClientID:          cfg.ClientID,
		ClientSecret:      cfg.ClientSecret,
		BaseURL:           cfg.BaseURL,
		TokenURL:          cfg.TokenURL,
		ValidateURL:       cfg.ValidateURL,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Timeout:           cfg.Timeout,
	}
}

func resilientOptions(cfg config.IGDBConfig) resilient.Options {
	opts := resilient.DefaultOptions()
	opts.MaxRetries = cfg.MaxRetries
	opts.OnStateChange = metrics.BreakerStateChanged
	return opts
}
