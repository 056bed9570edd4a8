package artifacts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	robfigcron "github.com/robfig/cron/v3"
)

const (
	DefaultReapSchedule = "@hourly"
	DefaultMaxAge       = 24 * time.Hour
)

// Reaper periodically deletes old artifacts.
type Reaper struct {
	store    *Store
	schedule string
	maxAge   time.Duration
	cron     *robfigcron.Cron
}

// NewReaper validates schedule (standard cron syntax or a descriptor such
// as "@hourly") and returns a Reaper for store.
func NewReaper(store *Store, schedule string, maxAge time.Duration) (*Reaper, error) {
	if schedule == "" {
		schedule = DefaultReapSchedule
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	r := &Reaper{
		store:    store,
		schedule: schedule,
		maxAge:   maxAge,
		cron:     robfigcron.New(),
	}
	if _, err := r.cron.AddFunc(schedule, r.RunOnce); err != nil {
		return nil, fmt.Errorf("parse reap schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Start runs the schedule until ctx is cancelled.
func (r *Reaper) Start(ctx context.Context) error {
	slog.Info("artifacts: reaper started", "dir", r.store.Dir(), "schedule", r.schedule, "max_age", r.maxAge)
	r.cron.Start()
	<-ctx.Done()
	<-r.cron.Stop().Done()
	return ctx.Err()
}

// RunOnce reaps immediately.
func (r *Reaper) RunOnce() {
	n, err := r.store.Reap(r.maxAge)
	if err != nil {
		slog.Warn("artifacts: reap failed", "err", err)
		return
	}
	if n > 0 {
		slog.Info("artifacts: reaped files", "count", n)
	}
}
