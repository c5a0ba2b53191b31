// Package schedule triggers sync runs on a cron expression.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robfig/cron/v3"

	"github.com/pfrederiksen/fixture-sync/internal/logger"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a cron schedule. A trigger that fires while the previous run is
// still in progress is skipped.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	entryID cron.EntryID
}

// Parse validates a standard five-field cron expression (descriptors such as @hourly are
// also accepted).
func Parse(spec string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schedule %q", spec)
	}
	return sched, nil
}

// New creates a Scheduler that runs job with ctx on spec, evaluated in loc.
func New(ctx context.Context, spec string, loc *time.Location, job Job) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	if _, err := Parse(spec); err != nil {
		return nil, err
	}

	cl := cronLogger{}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	id, err := c.AddFunc(spec, func() {
		if err := job(ctx); err != nil {
			logger.Error("Scheduled run failed", logger.Fields{"schedule": spec}, err)
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scheduling %q", spec)
	}

	return &Scheduler{cron: c, spec: spec, entryID: id}, nil
}

// Next returns the next activation time, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits for a running job
// to finish.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	logger.Info("Scheduler started", logger.Fields{"schedule": s.spec, "next": s.Next().Format(time.RFC3339)})

	<-ctx.Done()

	logger.Info("Scheduler stopping", logger.Fields{"schedule": s.spec})
	<-s.cron.Stop().Done()
}

// cronLogger adapts cron's logr-style logger to the structured logger.
type cronLogger struct{}

func (cronLogger) fields(keysAndValues []interface{}) logger.Fields {
	fields := logger.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, l.fields(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, l.fields(keysAndValues), err)
}
