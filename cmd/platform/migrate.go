package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bizdesk/platform/pkg/config"
	"github.com/bizdesk/platform/pkg/pg"
	"github.com/bizdesk/platform/svc/tenantstore"
)

func newMigrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the tenant store schema (Postgres migrations or Mongo indexes)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			log, _, err := newLogger()
			if err != nil {
				return err
			}
			storeCfg, err := config.Load[tenantstore.Config]()
			if err != nil {
				return err
			}

			if status {
				if storeCfg.Backend != tenantstore.BackendPostgres {
					return fmt.Errorf("--status needs the postgres backend, TENANT_STORE is %q", storeCfg.Backend)
				}
				pgCfg, err := config.Load[pg.Config]()
				if err != nil {
					return err
				}
				pool, err := pg.Connect(ctx, pgCfg)
				if err != nil {
					return err
				}
				defer pool.Close()

				version, err := pg.MigrationVersion(ctx, pool, tenantstore.Migrations, pgCfg, log)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
				return err
			}

			store, err := tenantstore.Open(ctx, storeCfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if store.Migrate == nil {
				log.InfoContext(ctx, "tenant store has no schema to migrate", "store", string(storeCfg.Backend))
				return nil
			}
			if err := store.Migrate(ctx, log); err != nil {
				return err
			}
			log.InfoContext(ctx, "tenant store migrated", "store", string(storeCfg.Backend))
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "Print the applied schema version instead of migrating")
	return cmd
}
