package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/seacatering/modules/catering"
	"github.com/dmitrymomot/seacatering/pkg/catalog"
	"github.com/dmitrymomot/seacatering/pkg/config"
	"github.com/dmitrymomot/seacatering/pkg/httpserver"
	"github.com/dmitrymomot/seacatering/pkg/i18n"
	"github.com/dmitrymomot/seacatering/pkg/logger"
	"github.com/dmitrymomot/seacatering/pkg/metrics"
	"github.com/dmitrymomot/seacatering/pkg/ratelimiter"
	"github.com/dmitrymomot/seacatering/pkg/rbac"
	"github.com/dmitrymomot/seacatering/pkg/retention"
	"github.com/dmitrymomot/seacatering/pkg/stats"
	"github.com/dmitrymomot/seacatering/pkg/subscription"
	"github.com/dmitrymomot/seacatering/pkg/testimonial"
)

const closeTimeout = 10 * time.Second

func newServeCmd(e *env) *cobra.Command {
	var (
		migrate      bool
		withoutPurge bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), e, migrate, !withoutPurge)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply migrations or ensure indexes before serving")
	cmd.Flags().BoolVar(&withoutPurge, "no-purge", false, "do not schedule the cancelled subscription purge")
	return cmd
}

func serve(ctx context.Context, e *env, migrate, purge bool) error {
	var (
		srvCfg httpserver.Config
		retCfg retention.Config
		rlCfg  ratelimiter.Config
	)
	if err := config.Load(&srvCfg); err != nil {
		return err
	}
	if err := config.Load(&retCfg); err != nil {
		return err
	}
	if err := config.Load(&rlCfg); err != nil {
		return err
	}

	verifier, err := newVerifier(e.cfg)
	if err != nil {
		return err
	}
	tr, err := i18n.New(
		i18n.WithDefaultLanguage(e.cfg.DefaultLanguage),
		i18n.WithLogger(e.log),
	)
	if err != nil {
		return err
	}
	authz, err := rbac.NewAuthorizer(ctx, rbac.NewInMemRoleSource(rbac.DefaultRoles()))
	if err != nil {
		return err
	}

	st, err := openStorage(ctx, e.cfg, e.log, storageOptions{migrate: migrate})
	if err != nil {
		return err
	}
	closeStorage := func(ctx context.Context) error { return st.Close(ctx) }

	sh, err := openShared(ctx, e.cfg, st)
	if err != nil {
		closeWithTimeout(e.log, closeStorage)
		return err
	}
	limiter, err := newRateLimiter(rlCfg, sh)
	if err != nil {
		closeWithTimeout(e.log, closeStorage)
		return err
	}

	m := metrics.New(prometheus.NewRegistry())

	plans := catalog.NewService(st.plans, authz, catalog.WithLogger(e.log))
	if e.cfg.SeedCatalog {
		if _, err := plans.Seed(ctx, catalog.DefaultPlans()...); err != nil {
			closeWithTimeout(e.log, closeStorage)
			return err
		}
	}

	subs := subscription.NewService(st.subs, plans,
		subscription.WithHistory(st.history),
		subscription.WithObserver(m),
		subscription.WithCancelPolicy(subscription.ParseCancelPolicy(e.cfg.CancelPolicy)),
		subscription.WithLogger(e.log),
	)
	reports := stats.NewService(st.subs, authz,
		stats.WithCache(sh.stats, e.cfg.StatsCacheTTL),
		stats.WithLogger(e.log),
	)

	srvOpts := []httpserver.Option{
		httpserver.WithLogger(e.log),
		httpserver.WithShutdownHook("storage", closeStorage),
	}

	if purge {
		purger, err := retention.NewPurger(st.subs, retCfg.Retention,
			retention.WithLogger(e.log),
			retention.WithRunHook(m.PurgeCompleted),
		)
		if err != nil {
			closeWithTimeout(e.log, closeStorage)
			return err
		}
		sched, err := retention.NewScheduler(purger, retCfg.Schedule, retCfg.Timeout)
		if err != nil {
			closeWithTimeout(e.log, closeStorage)
			return err
		}
		sched.Start()
		// hooks run in registration order, the purge must stop before storage closes
		srvOpts = append([]httpserver.Option{httpserver.WithShutdownHook("retention", sched.Stop)}, srvOpts...)
		e.log.InfoContext(ctx, "purge scheduled",
			logger.Component("retention"),
			slog.String("schedule", retCfg.Schedule),
			slog.Duration("retention", retCfg.Retention),
		)
	}

	router := catering.Router(catering.RouterOptions{
		Plans:            plans,
		Subscriptions:    subs,
		Testimonials:     testimonial.NewService(st.testimonials, subs, testimonial.WithLogger(e.log)),
		Stats:            reports,
		Verifier:         verifier,
		Translator:       tr,
		Logger:           e.log,
		Metrics:          m,
		RateLimiter:      limiter,
		ReadinessChecks:  st.checks,
		ReadinessTimeout: srvCfg.ReadinessTimeout,
	})

	server := httpserver.NewFromConfig(srvCfg, srvOpts...)
	if err := server.Run(ctx, router); err != nil {
		// a failed bind never reaches the shutdown path, release hooks here
		_ = server.Shutdown(context.WithoutCancel(ctx))
		return err
	}
	return nil
}

func closeWithTimeout(log *slog.Logger, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.ErrorContext(ctx, "failed to release resources", logger.Error(err))
	}
}
