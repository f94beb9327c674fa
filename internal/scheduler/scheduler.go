package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/importer"
)

// Scheduler runs the import on a cron schedule for unattended nightly
// refreshes. Runs never overlap: a tick that fires while an import is in
// flight is skipped.
type Scheduler struct {
	cron     *cron.Cron
	importer *importer.Importer
	spec     string

	mu      sync.Mutex
	running bool
}

func New(imp *importer.Importer, spec string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		importer: imp,
		spec:     spec,
	}
}

// Start registers the import job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.Info().Str("spec", s.spec).Msg("Import scheduler started")
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Warn().Msg("Previous import still running, skipping this tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	log.Info().Msg("Scheduled import starting")
	if _, err := s.importer.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Scheduled import failed")
	}
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	log.Info().Msg("Import scheduler stopped")
}
