package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bizdesk/platform/pkg/tenant"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve HOST...",
		Short: "Show how hosts classify and which tenant each resolves to",
		Long: "Runs the same classification and lookup as the request dispatcher " +
			"and prints the outcome per host. Use it to answer why a domain shows " +
			"\"Business not found\".",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return resolveHosts(ctx, cmd.OutOrStdout(), a, args)
		},
	}
}

// resolveHosts prints one row per host, then logs each resolved tenant with
// that tenant in scope so the record carries its tenant_id.
func resolveHosts(ctx context.Context, out io.Writer, a *app, hosts []string) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HOST\tKIND\tLABEL\tOUTCOME\tSTRATEGY\tTENANT")

	var found []*tenant.Tenant
	for _, host := range hosts {
		res := a.resolver.Resolve(ctx, host)
		name := "-"
		if res.Found() {
			name = fmt.Sprintf("%s (%s)", res.Tenant.Name, res.Tenant.ID)
			found = append(found, res.Tenant)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			host, res.Host.Kind, orDash(res.Host.Label), res.Outcome(), orDash(res.Strategy), name)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	return tenant.ForEach(ctx, found, func(ctx context.Context) error {
		t := tenant.MustFromContext(ctx)
		a.log.DebugContext(ctx, "tenant resolved", "tenant", t.Name, "host_type", string(t.HostType))
		return nil
	})
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
