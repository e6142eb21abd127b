package stats

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/seacatering/pkg/logger"
	"github.com/dmitrymomot/seacatering/pkg/rbac"
	"github.com/dmitrymomot/seacatering/pkg/subscription"
	"github.com/dmitrymomot/seacatering/pkg/validator"
)

const reactivationsReason = "reactivation events are not tracked"

// Service builds admin reports.
type Service interface {
	// AdminStats aggregates subscriptions for [from, to]. A zero to means now.
	// Requires the stats.read permission.
	AdminStats(ctx context.Context, from, to time.Time) (Report, error)
}

// ServiceOption configures the stats service.
type ServiceOption func(*service)

// WithCache enables report caching for ttl. A non-positive ttl disables it.
func WithCache(c Cache, ttl time.Duration) ServiceOption {
	return func(s *service) {
		if c != nil && ttl > 0 {
			s.cache = c
			s.ttl = ttl
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

type service struct {
	source Source
	authz  rbac.Authorizer
	cache  Cache
	ttl    time.Duration
	log    *slog.Logger
	now    func() time.Time
}

// NewService builds the stats service. Panics when source or authz is nil.
func NewService(source Source, authz rbac.Authorizer, opts ...ServiceOption) Service {
	if source == nil {
		panic("stats: source is required")
	}
	if authz == nil {
		panic("stats: authorizer is required")
	}

	s := &service{
		source: source,
		authz:  authz,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("stats"))

	return s
}

func (s *service) AdminStats(ctx context.Context, from, to time.Time) (Report, error) {
	if err := s.authz.CanFromContext(ctx, rbac.PermStatsRead); err != nil {
		return Report{}, errors.Join(ErrUnauthorized, err)
	}

	if to.IsZero() {
		to = s.now()
	}
	from, to = from.UTC(), to.UTC()
	if err := validator.Apply(validator.NotAfter("from", from, to)); err != nil {
		return Report{}, err
	}

	key := cacheKey(from, to)
	if r, ok := s.cached(ctx, key); ok {
		return r, nil
	}

	report := Report{
		From:          from,
		To:            to,
		Reactivations: NotComputed(reactivationsReason),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.NewSubscriptions, err = s.source.CountCreated(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		report.PeriodRevenue, err = s.source.SumPlanPrice(gctx, subscription.StatusActive, from, to)
		return err
	})
	g.Go(func() (err error) {
		report.TotalActive, err = s.source.CountByStatus(gctx, subscription.StatusActive)
		return err
	})
	g.Go(func() (err error) {
		report.ActiveMonthlyRevenue, err = s.source.SumMonthlyEstimate(gctx, subscription.StatusActive)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.ErrorContext(ctx, "failed to aggregate stats", logger.Error(err))
		return Report{}, errors.Join(ErrFailedToQuery, err)
	}
	report.GeneratedAt = s.now().UTC()

	s.store(ctx, key, report)
	return report, nil
}

func (s *service) cached(ctx context.Context, key string) (Report, bool) {
	if s.cache == nil {
		return Report{}, false
	}

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.WarnContext(ctx, "stats cache read failed", logger.Error(err))
		return Report{}, false
	}
	if raw == nil {
		return Report{}, false
	}

	var r Report
	if err := json.Unmarshal(raw, &r); err != nil {
		s.log.WarnContext(ctx, "stats cache entry is corrupt", logger.Error(err))
		return Report{}, false
	}
	r.Cached = true
	return r, true
}

func (s *service) store(ctx context.Context, key string, r Report) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.log.WarnContext(ctx, "stats cache write failed", logger.Error(err))
	}
}

// The upper bound is truncated to the minute so an open-ended "until now"
// range can hit the cache at all.
func cacheKey(from, to time.Time) string {
	return "stats:" + from.Format(time.RFC3339) + ":" + to.Truncate(time.Minute).Format(time.RFC3339)
}
