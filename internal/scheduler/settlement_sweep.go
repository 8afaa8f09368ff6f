// Package scheduler runs periodic background jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/papersbook/storefront/internal/config"
	"github.com/papersbook/storefront/internal/settlement"
)

// SettlementSweeper periodically settles stale pending sales. The browser
// callback is the normal settlement trigger; the sweep catches purchases
// where the user closed the tab between paying and landing on /success.
type SettlementSweeper struct {
	service *settlement.Service
	cfg     config.Settlement

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSweeping bool
	cancelFunc context.CancelFunc
}

// NewSettlementSweeper creates a sweeper for the given settlement service.
func NewSettlementSweeper(service *settlement.Service, cfg config.Settlement) *SettlementSweeper {
	return &SettlementSweeper{
		service: service,
		cfg:     cfg,
		cron: cron.New(cron.WithParser(cron.NewParser(
			cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the sweep schedule if sweeping is enabled.
func (s *SettlementSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.SweepEnabled {
		log.Printf("Settlement sweeper: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.cfg.SweepSchedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule '%s': %w", s.cfg.SweepSchedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Settlement sweeper: started with schedule '%s'", s.cfg.SweepSchedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the sweeper, waiting for a running sweep.
func (s *SettlementSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Settlement sweeper: stopped")
}

// RunNow triggers an immediate sweep.
func (s *SettlementSweeper) RunNow() {
	go s.runSweep()
}

// IsRunning returns whether the sweeper is scheduled.
func (s *SettlementSweeper) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur.
func (s *SettlementSweeper) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *SettlementSweeper) runSweep() {
	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		log.Printf("Settlement sweeper: previous sweep still running, skipping")
		return
	}
	s.isSweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	cutoff := time.Now().Add(-s.cfg.SweepGrace)
	settled, failed := s.service.SettlePending(context.Background(), cutoff)
	if settled > 0 || failed > 0 {
		log.Printf("Settlement sweeper: settled=%d failed=%d", settled, failed)
	}
}
