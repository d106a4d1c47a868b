// Package scheduler triggers posting runs on a cron schedule for the
// long-lived serve mode. One-shot cron/CI deployments call the bot
// directly and never start this service.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	rcron "github.com/robfig/cron/v3"
)

type Service struct {
	spec string
	cron *rcron.Cron

	// OnRun executes one posting run. Overlapping executions are
	// prevented by cron's sequential job delivery per entry.
	OnRun func(ctx context.Context) error
}

func New(spec string) *Service {
	return &Service{spec: spec}
}

func (s *Service) Start(ctx context.Context) error {
	s.cron = rcron.New(rcron.WithSeconds())

	_, err := s.cron.AddFunc(s.spec, func() {
		if s.OnRun == nil {
			log.Printf("[scheduler] no OnRun handler set")
			return
		}
		log.Printf("[scheduler] triggering posting run")
		if err := s.OnRun(ctx); err != nil {
			log.Printf("[scheduler] run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("register schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.Printf("[scheduler] started with schedule %q", s.spec)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *Service) Stop() {
	if s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		log.Printf("[scheduler] stop timeout waiting for a running job")
	}
	log.Printf("[scheduler] stopped")
}
