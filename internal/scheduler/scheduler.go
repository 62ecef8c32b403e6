// Package scheduler repeats the website review on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/yingtu35/doombot/internal/logger"
)

// Job is one scheduled unit of work. Its error is logged, never fatal.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a standard five-field cron expression. A run
// that is still going when the next one is due causes that tick to be skipped.
type Scheduler struct {
	spec     string
	parser   cron.Parser
	schedule cron.Schedule
	job      Job
	log      logger.Logger
}

func New(spec string, job Job, log logger.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cron expression %q: %w", spec, err)
	}
	return &Scheduler{
		spec:     spec,
		parser:   parser,
		schedule: schedule,
		job:      job,
		log:      log.With(logger.String("schedule", spec)),
	}, nil
}

// Next returns the first activation after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run blocks until ctx is cancelled, then waits for a job in progress to
// return before returning itself.
func (s *Scheduler) Run(ctx context.Context) error {
	cl := logger.CronLogger{Log: s.log}
	c := cron.New(
		cron.WithParser(s.parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.fire(ctx) }))

	c.Start()
	s.log.Info("scheduler started", logger.Time("next_run", s.Next(time.Now())))

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	s.log.Info("cron triggered review")
	if err := s.job(ctx); err != nil {
		s.log.Error("scheduled review failed", logger.Error(err), logger.Duration("elapsed", time.Since(start)))
		return
	}
	s.log.Info("scheduled review done",
		logger.Duration("elapsed", time.Since(start)),
		logger.Time("next_run", s.Next(time.Now())))
}
