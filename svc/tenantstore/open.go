package tenantstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bizdesk/platform/pkg/config"
	"github.com/bizdesk/platform/pkg/mongo"
	"github.com/bizdesk/platform/pkg/pg"
	"github.com/bizdesk/platform/pkg/tenant"
)

// Backend names a tenant store implementation.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendMongo    Backend = "mongo"
	BackendFile     Backend = "file"
)

// Config selects and locates the tenant store.
type Config struct {
	Backend  Backend `env:"TENANT_STORE" envDefault:"postgres"`
	SeedFile string  `env:"TENANT_SEED_FILE" envDefault:"tenants.yaml"`
}

// Opened is a connected store with its readiness probe and release function.
type Opened struct {
	Store       tenant.Store
	Healthcheck func(context.Context) error
	Close       func() error
	// Migrate applies the backend's schema; nil when there is nothing to apply.
	Migrate func(ctx context.Context, log *slog.Logger) error
}

// Open connects the backend named by cfg. Backend settings are read from the
// environment only for the selected backend.
func Open(ctx context.Context, cfg Config) (*Opened, error) {
	switch cfg.Backend {
	case BackendPostgres:
		pgCfg, err := config.Load[pg.Config]()
		if err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, err
		}
		return &Opened{
			Store:       NewPostgres(pool),
			Healthcheck: pg.Healthcheck(pool),
			Close:       func() error { pool.Close(); return nil },
			Migrate: func(ctx context.Context, log *slog.Logger) error {
				return pg.Migrate(ctx, pool, Migrations, MigrationsDir, pgCfg, log)
			},
		}, nil

	case BackendMongo:
		mCfg, err := config.Load[mongo.Config]()
		if err != nil {
			return nil, err
		}
		db, err := mongo.NewWithDatabase(ctx, mCfg)
		if err != nil {
			return nil, err
		}
		client := db.Client()
		store := NewMongo(db)
		return &Opened{
			Store:       store,
			Healthcheck: mongo.Healthcheck(client),
			Close:       func() error { return client.Disconnect(context.Background()) },
			Migrate: func(ctx context.Context, _ *slog.Logger) error {
				return store.EnsureIndexes(ctx)
			},
		}, nil

	case BackendFile:
		store, err := LoadFile(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		return &Opened{
			Store:       store,
			Healthcheck: func(context.Context) error { return nil },
			Close:       func() error { return nil },
		}, nil
	}

	return nil, errors.Join(ErrUnknownBackend, errors.New(string(cfg.Backend)))
}
