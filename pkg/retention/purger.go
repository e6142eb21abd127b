package retention

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/seacatering/pkg/logger"
)

// Target deletes cancelled subscriptions cancelled before a cutoff.
type Target interface {
	PurgeCancelled(ctx context.Context, before time.Time) (int64, error)
}

// Purger removes cancelled subscriptions older than the retention period.
type Purger struct {
	target    Target
	retention time.Duration
	log       *slog.Logger
	now       func() time.Time
	onRun     func(purged int64, err error)
}

// Option configures a Purger.
type Option func(*Purger)

func WithLogger(l *slog.Logger) Option {
	return func(p *Purger) {
		if l != nil {
			p.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Purger) {
		if now != nil {
			p.now = now
		}
	}
}

// WithRunHook is called after every run, e.g. to export metrics.
func WithRunHook(fn func(purged int64, err error)) Option {
	return func(p *Purger) {
		p.onRun = fn
	}
}

// NewPurger panics when target is nil.
func NewPurger(target Target, retention time.Duration, opts ...Option) (*Purger, error) {
	if target == nil {
		panic("retention: target is required")
	}
	if retention <= 0 {
		return nil, ErrInvalidRetention
	}

	p := &Purger{
		target:    target,
		retention: retention,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(logger.Component("retention"))

	return p, nil
}

// Run deletes every cancelled subscription whose cancellation is older than
// the retention period and reports how many were removed.
func (p *Purger) Run(ctx context.Context) (int64, error) {
	start := p.now()
	cutoff := start.Add(-p.retention)

	n, err := p.target.PurgeCancelled(ctx, cutoff)
	if p.onRun != nil {
		p.onRun(n, err)
	}
	if err != nil {
		p.log.ErrorContext(ctx, "purge failed", logger.Error(err))
		return n, errors.Join(ErrPurgeFailed, err)
	}

	p.log.InfoContext(ctx, "cancelled subscriptions purged",
		slog.Int64("purged", n),
		slog.Time("cutoff", cutoff),
		logger.Duration(p.now().Sub(start)),
	)
	return n, nil
}
