// Package pg bootstraps the Postgres connection pool behind the tenant store.
//
// Config is populated from PG_* environment variables. Connect opens a
// pgxpool.Pool and retries until the database answers a ping. Migrate runs
// goose migrations from an fs.FS (usually an embed.FS shipped next to the
// store) over the same pool, and Healthcheck adapts the pool to the
// readiness probe.
//
// Usage:
//
//	cfg, err := config.Load[pg.Config]()
//	pool, err := pg.Connect(ctx, cfg)
//	defer pool.Close()
//	err = pg.Migrate(ctx, pool, tenantstore.Migrations, tenantstore.MigrationsDir, cfg, log)
package pg
