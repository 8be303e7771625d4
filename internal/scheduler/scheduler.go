// Package scheduler runs the periodic KPI refresh.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/service"
)

// Refresher recomputes and republishes every deal's KPIs
type Refresher interface {
	RefreshAll(ctx context.Context) (service.RefreshResult, error)
}

// Scheduler triggers a refresh on a cron spec. A run that is still going
// when the next tick fires makes that tick a no-op.
type Scheduler struct {
	cron    *cron.Cron
	svc     Refresher
	log     *logrus.Logger
	timeout time.Duration

	mu      sync.Mutex
	ctx     context.Context
	running bool
}

// New creates a scheduler. spec accepts the standard five fields and
// descriptors such as "@every 15m".
func New(spec string, svc Refresher, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		svc:     svc,
		log:     log,
		timeout: 10 * time.Minute,
		ctx:     context.Background(),
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start begins ticking. Runs derive their context from ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
	s.log.Info("KPI refresh scheduler started")
}

// Stop halts ticking and waits for a running refresh to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("KPI refresh scheduler stopped")
}

func (s *Scheduler) run() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn("Previous KPI refresh still running, skipping")
		return
	}
	s.running = true
	parent := s.ctx
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()
	started := time.Now()
	res, err := s.svc.RefreshAll(ctx)
	if err != nil {
		s.log.WithError(err).Error("KPI refresh aborted")
		return
	}
	s.log.WithFields(logrus.Fields{
		"refreshed": res.Refreshed,
		"failed":    res.Failed,
		"duration":  time.Since(started).String(),
	}).Info("KPI refresh completed")
}
