package pg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Logger receives goose output. *slog.Logger satisfies it.
type Logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// goose keeps its settings in package globals.
var gooseMu sync.Mutex

// Migrate applies every pending migration found in fsys under dir.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, dir string, cfg Config, log Logger) error {
	return withGoose(ctx, pool, fsys, cfg, log, func(g gooseRunner) error {
		return g.up(ctx, dir)
	})
}

// MigrationVersion reports the schema version recorded in the migrations table.
func MigrationVersion(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, cfg Config, log Logger) (int64, error) {
	var version int64
	err := withGoose(ctx, pool, fsys, cfg, log, func(g gooseRunner) error {
		v, err := g.version(ctx)
		version = v
		return err
	})
	return version, err
}

type gooseRunner struct {
	up      func(ctx context.Context, dir string) error
	version func(ctx context.Context) (int64, error)
}

func withGoose(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, cfg Config, log Logger, fn func(gooseRunner) error) error {
	if fsys == nil {
		return errors.Join(ErrFailedToApplyMigrations, ErrMigrationsNotProvided)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	// goose only speaks database/sql; the wrapper shares the pool's connections.
	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close migration connection", "error", err)
		}
	}()

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{log: log, ctx: ctx})
	if cfg.MigrationsTable != "" {
		goose.SetTableName(cfg.MigrationsTable)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	err := fn(gooseRunner{
		up: func(ctx context.Context, dir string) error {
			return goose.UpContext(ctx, db, dir)
		},
		version: func(ctx context.Context) (int64, error) {
			return goose.GetDBVersionContext(ctx, db)
		},
	})
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	return nil
}

type gooseLogger struct {
	log Logger
	ctx context.Context
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.ErrorContext(l.ctx, fmt.Sprintf(format, v...), "component", "migrate")
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.InfoContext(l.ctx, fmt.Sprintf(format, v...), "component", "migrate")
}
