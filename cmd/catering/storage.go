package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/seacatering/pkg/catalog"
	"github.com/dmitrymomot/seacatering/pkg/config"
	"github.com/dmitrymomot/seacatering/pkg/httpserver"
	"github.com/dmitrymomot/seacatering/pkg/logger"
	"github.com/dmitrymomot/seacatering/pkg/mongo"
	"github.com/dmitrymomot/seacatering/pkg/pg"
	"github.com/dmitrymomot/seacatering/pkg/ratelimiter"
	"github.com/dmitrymomot/seacatering/pkg/redis"
	"github.com/dmitrymomot/seacatering/pkg/retention"
	"github.com/dmitrymomot/seacatering/pkg/stats"
	"github.com/dmitrymomot/seacatering/pkg/subscription"
	"github.com/dmitrymomot/seacatering/pkg/testimonial"
)

// subscriptionStore is what every backend's subscription repository
// provides: the lifecycle contract, the admin aggregates and the purge hook.
type subscriptionStore interface {
	subscription.Repository
	stats.Source
	retention.Target
}

type storage struct {
	driver       string
	plans        catalog.Store
	subs         subscriptionStore
	history      subscription.HistoryStore
	testimonials testimonial.Store
	checks       []httpserver.Check
	closers      []func(context.Context) error
}

// Close releases connections in reverse order of acquisition.
func (s *storage) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type storageOptions struct {
	migrate bool
}

// openStorage connects the backend selected by STORAGE_DRIVER.
func openStorage(ctx context.Context, cfg config.App, log *slog.Logger, opts storageOptions) (*storage, error) {
	log = log.With(logger.Component("storage"), slog.String("driver", cfg.StorageDriver))

	switch cfg.StorageDriver {
	case config.DriverMemory:
		repo := subscription.NewMemoryRepository()
		log.WarnContext(ctx, "using in-memory storage, data is lost on restart")
		return &storage{
			driver:       cfg.StorageDriver,
			plans:        catalog.NewMemoryStore(),
			subs:         repo,
			history:      repo,
			testimonials: testimonial.NewMemoryStore(),
		}, nil

	case config.DriverMongo:
		var mcfg mongo.Config
		if err := config.Load(&mcfg); err != nil {
			return nil, err
		}
		db, err := mongo.NewWithDatabase(ctx, mcfg)
		if err != nil {
			return nil, err
		}
		client := db.Client()
		st := &storage{
			driver:       cfg.StorageDriver,
			plans:        mongo.NewPlanStore(db),
			subs:         mongo.NewSubscriptionRepository(db),
			history:      mongo.NewHistoryStore(db),
			testimonials: mongo.NewTestimonialStore(db),
			checks:       []httpserver.Check{{Name: "mongo", Fn: mongo.Healthcheck(client)}},
			closers:      []func(context.Context) error{client.Disconnect},
		}
		if opts.migrate {
			if err := mongo.EnsureIndexes(ctx, db); err != nil {
				_ = st.Close(ctx)
				return nil, err
			}
			log.InfoContext(ctx, "indexes ensured")
		}
		return st, nil

	case config.DriverPostgres:
		var pcfg pg.Config
		if err := config.Load(&pcfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pcfg)
		if err != nil {
			return nil, err
		}
		st := &storage{
			driver:       cfg.StorageDriver,
			plans:        pg.NewPlanStore(pool),
			subs:         pg.NewSubscriptionRepository(pool),
			history:      pg.NewHistoryStore(pool),
			testimonials: pg.NewTestimonialStore(pool),
			checks:       []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}},
			closers: []func(context.Context) error{func(context.Context) error {
				pool.Close()
				return nil
			}},
		}
		if opts.migrate {
			if err := pg.Migrate(ctx, pool, pcfg, log); err != nil {
				_ = st.Close(ctx)
				return nil, err
			}
		}
		return st, nil
	}

	return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
}

// shared holds the cross-instance stores backed by Redis. Both fields are
// nil when REDIS_ENABLED is off.
type shared struct {
	stats   stats.Cache
	buckets ratelimiter.Store
}

// openShared connects Redis when REDIS_ENABLED is set and registers its
// health check and closer on st.
func openShared(ctx context.Context, cfg config.App, st *storage) (shared, error) {
	if !cfg.RedisEnabled {
		return shared{}, nil
	}
	var rcfg redis.Config
	if err := config.Load(&rcfg); err != nil {
		return shared{}, err
	}
	client, err := redis.Connect(ctx, rcfg)
	if err != nil {
		return shared{}, err
	}
	st.checks = append(st.checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
	st.closers = append(st.closers, func(context.Context) error { return client.Close() })
	return shared{
		stats:   redis.NewStorage(client, rcfg.KeyPrefix),
		buckets: redis.NewBucketStore(client, rcfg.KeyPrefix+"ratelimit:"),
	}, nil
}

// newRateLimiter returns nil when RATE_LIMIT_ENABLED is off. Buckets go to
// Redis when it is available so every instance enforces the same budget.
func newRateLimiter(cfg ratelimiter.Config, sh shared) (*ratelimiter.Limiter, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	var store ratelimiter.Store = ratelimiter.NewMemoryStore()
	if sh.buckets != nil {
		store = sh.buckets
	}
	return ratelimiter.New(store, cfg)
}
