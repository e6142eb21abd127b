package retention

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a Purger on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	purger  *Purger
	timeout time.Duration
}

// NewScheduler registers p under spec. Standard five-field expressions and
// descriptors like @daily or @every 1h are accepted.
func NewScheduler(p *Purger, spec string, timeout time.Duration) (*Scheduler, error) {
	if p == nil {
		panic("retention: purger is required")
	}

	s := &Scheduler{
		cron:    cron.New(),
		purger:  p,
		timeout: timeout,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, errors.Join(ErrInvalidSchedule, err)
	}

	return s, nil
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	// Run logs its own failures.
	_, _ = s.purger.Run(ctx)
}

// Start begins scheduling in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running purge to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
