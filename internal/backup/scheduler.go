package backup

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Runner is one scheduled unit of work
type Runner interface {
	Run(ctx context.Context) (Result, error)
}

type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	schedule string
}

// NewScheduler validates the seconds-enabled cron spec and wires runner to it
func NewScheduler(schedule string, runner Runner) (*Scheduler, error) {
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	s := &Scheduler{cron: c, runner: runner, schedule: schedule}
	if _, err := c.AddFunc(schedule, s.runOnce); err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start initializes cron tasks
func (s *Scheduler) Start() {
	log.Info().Str("schedule", s.schedule).Msg("backup scheduler started")
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running snapshot to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("backup scheduler stopped")
}

func (s *Scheduler) runOnce() {
	if _, err := s.runner.Run(context.Background()); err != nil {
		log.Error().Err(err).Msg("backup: snapshot failed")
	}
}
