package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bizdesk/platform/pkg/config"
	"github.com/bizdesk/platform/pkg/httpserver"
	"github.com/bizdesk/platform/pkg/tracing"
)

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			traceCfg, err := config.Load[tracing.Config]()
			if err != nil {
				return err
			}
			shutdownTracing, err := tracing.Init(ctx, traceCfg, a.name, string(a.env))
			if err != nil {
				return err
			}
			defer func() { _ = shutdownTracing(context.WithoutCancel(ctx)) }()

			if migrate && a.store.Migrate != nil {
				if err := a.store.Migrate(ctx, a.log); err != nil {
					return err
				}
			}

			srvCfg, err := config.Load[httpserver.Config]()
			if err != nil {
				return err
			}
			srv := httpserver.NewFromConfig(srvCfg, httpserver.WithLogger(a.log))
			return srv.Run(ctx, newHandler(a))
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply tenant store migrations before serving")
	return cmd
}
