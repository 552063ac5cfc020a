package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"stock-dashboard/observability"
)

// Refresher schedules the periodic quote refresh jobs of all sessions on one cron runner
type Refresher struct {
	cron     *cron.Cron
	interval time.Duration
}

// NewRefresher creates a Refresher that fires each job every interval
func NewRefresher(interval time.Duration) *Refresher {
	logger := cronLogger{}
	return &Refresher{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		interval: interval,
	}
}

// Start runs the scheduler in its own goroutine
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for running jobs or ctx, whichever ends first
func (r *Refresher) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		observability.Warn("refresh jobs still running at shutdown")
	}
}

// Schedule registers fn to run every interval
func (r *Refresher) Schedule(fn func()) (cron.EntryID, error) {
	return r.Every(r.interval, fn)
}

// Every registers fn to run on its own interval
func (r *Refresher) Every(interval time.Duration, fn func()) (cron.EntryID, error) {
	id, err := r.cron.AddFunc(fmt.Sprintf("@every %s", interval), fn)
	if err != nil {
		return 0, fmt.Errorf("failed to schedule job: %w", err)
	}
	return id, nil
}

// Cancel removes a scheduled job. Zero IDs are ignored.
func (r *Refresher) Cancel(id cron.EntryID) {
	if id == 0 {
		return
	}
	r.cron.Remove(id)
}

// Scheduled reports whether id is still registered
func (r *Refresher) Scheduled(id cron.EntryID) bool {
	return id != 0 && r.cron.Entry(id).Valid()
}

// Len returns the number of registered jobs
func (r *Refresher) Len() int {
	return len(r.cron.Entries())
}

// cronLogger routes scheduler logs through slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	observability.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	observability.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
