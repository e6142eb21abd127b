package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/seacatering/pkg/catalog"
	"github.com/dmitrymomot/seacatering/pkg/config"
	"github.com/dmitrymomot/seacatering/pkg/rbac"
	"github.com/dmitrymomot/seacatering/pkg/retention"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations (postgres) or create indexes (mongo)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if e.cfg.StorageDriver == config.DriverMemory {
				e.log.InfoContext(ctx, "memory storage has no schema, nothing to migrate")
				return nil
			}
			st, err := openStorage(ctx, e.cfg, e.log, storageOptions{migrate: true})
			if err != nil {
				return err
			}
			defer closeWithTimeout(e.log, st.Close)

			e.log.InfoContext(ctx, "storage is up to date", slog.String("driver", st.driver))
			return nil
		},
	}
}

func newSeedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default meal plans that are missing from the catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			st, err := openStorage(ctx, e.cfg, e.log, storageOptions{})
			if err != nil {
				return err
			}
			defer closeWithTimeout(e.log, st.Close)

			authz, err := rbac.NewAuthorizer(ctx, rbac.NewInMemRoleSource(rbac.DefaultRoles()))
			if err != nil {
				return err
			}
			n, err := catalog.NewService(st.plans, authz, catalog.WithLogger(e.log)).
				Seed(ctx, catalog.DefaultPlans()...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d plan(s)\n", n)
			return nil
		},
	}
}

func newPurgeCmd(e *env) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete cancelled subscriptions older than CANCELLED_RETENTION",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var retCfg retention.Config
			if err := config.Load(&retCfg); err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "would purge subscriptions cancelled more than %s ago\n", retCfg.Retention)
				return nil
			}

			st, err := openStorage(ctx, e.cfg, e.log, storageOptions{})
			if err != nil {
				return err
			}
			defer closeWithTimeout(e.log, st.Close)

			purger, err := retention.NewPurger(st.subs, retCfg.Retention, retention.WithLogger(e.log))
			if err != nil {
				return err
			}
			runCtx, cancel := context.WithTimeout(ctx, retCfg.Timeout)
			defer cancel()

			n, err := purger.Run(runCtx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d subscription(s)\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the cutoff without deleting anything")
	return cmd
}
