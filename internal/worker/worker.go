// Package worker schedules the periodic menu refresh.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sammaes/SiouxBelgiumParser/internal/config"
)

// Job is one refresh run.
type Job func(ctx context.Context)

// Scheduler runs a Job immediately and then every Interval. A run that is
// still busy when the next one is due causes that next run to be skipped.
type Scheduler struct {
	Interval time.Duration
	Job      Job
}

// Run blocks until ctx is cancelled, then waits for a running job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	logger := slogLogger{log}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))

	// cron silently rounds shorter delays up to one second.
	if s.Interval < config.MinRefresh {
		return fmt.Errorf("%s: interval %s is below one second", config.ErrCronSchedule, s.Interval)
	}

	spec := config.CronEveryPrefix + s.Interval.String()
	if _, err := c.AddFunc(spec, func() { s.Job(ctx) }); err != nil {
		return fmt.Errorf("%s %q: %w", config.ErrCronSchedule, spec, err)
	}

	s.Job(ctx)

	c.Start()
	log.Info(config.MsgWorkerStart, config.LogKeyInterval, s.Interval.String())

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info(config.MsgWorkerStop)
	return nil
}

// slogLogger adapts slog to cron.Logger.
type slogLogger struct {
	log *slog.Logger
}

func (l slogLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, config.LogKeyError, err)...)
}
