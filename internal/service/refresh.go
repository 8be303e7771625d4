package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// RefreshResult summarizes a refresh run
type RefreshResult struct {
	Refreshed int `json:"refreshed"`
	Failed    int `json:"failed"`
}

// RefreshAll recomputes and publishes the KPIs of every deal. A deal that
// fails to load is logged and counted; only cancellation aborts the run.
func (s *Service) RefreshAll(ctx context.Context) (RefreshResult, error) {
	ids, err := s.repo.ListDealIDs(ctx)
	if err != nil {
		return RefreshResult{}, fmt.Errorf("failed to list deals: %w", err)
	}

	var refreshed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	limit := s.config.RefreshConcurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for _, id := range ids {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := s.recompute(gctx, id); err != nil {
				failed.Add(1)
				s.log.WithError(err).Errorf("Failed to refresh deal %d", id)
				return nil
			}
			refreshed.Add(1)
			return nil
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	res := RefreshResult{Refreshed: int(refreshed.Load()), Failed: int(failed.Load())}
	s.log.Infof("KPI refresh finished: %d refreshed, %d failed", res.Refreshed, res.Failed)
	return res, err
}
