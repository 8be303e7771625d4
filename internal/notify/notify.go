// Package notify delivers kpi_update messages to interested parties.
// Delivery is best-effort and at-most-once: nothing is acknowledged or replayed.
package notify

import (
	"context"
	"errors"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
)

// ErrDropped is returned when an update could not be queued
var ErrDropped = errors.New("update dropped")

// Notifier accepts KPI updates
type Notifier interface {
	Publish(ctx context.Context, u models.KPIUpdate) error
}

// Multi fans an update out to several notifiers. Every notifier is tried;
// the errors are joined.
type Multi []Notifier

// Publish sends u to every notifier
func (m Multi) Publish(ctx context.Context, u models.KPIUpdate) error {
	var errs []error
	for _, n := range m {
		if err := n.Publish(ctx, u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every update
type Discard struct{}

// Publish does nothing
func (Discard) Publish(context.Context, models.KPIUpdate) error { return nil }
