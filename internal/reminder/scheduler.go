// Package reminder scans for credit accounts with an upcoming due date
// and raises one notification per account through a Notifier port.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/mkovalch/hroshi/internal/model"
	"github.com/mkovalch/hroshi/internal/service"
)

const (
	// DefaultHorizon is how far ahead the scan looks for due payments.
	DefaultHorizon = 48 * time.Hour
	// DefaultInterval is the period between scheduled scans.
	DefaultInterval = 24 * time.Hour
)

// Notifier delivers due-payment notifications. Delivery is platform glue;
// Enabled mirrors the runtime permission check and the scheduler degrades
// to a silent no-op when it reports false.
type Notifier interface {
	Enabled(ctx context.Context) bool
	NotifyDue(ctx context.Context, account model.CreditAccount) error
}

// Scheduler runs the due-credit scan periodically or on demand.
type Scheduler struct {
	store    service.Storage
	notifier Notifier
	now      func() time.Time
	horizon  time.Duration
	interval time.Duration
}

// NewScheduler creates a scheduler with the default horizon and interval.
func NewScheduler(store service.Storage, notifier Notifier) *Scheduler {
	return &Scheduler{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		horizon:  DefaultHorizon,
		interval: DefaultInterval,
	}
}

// WithHorizon overrides the due-date horizon.
func (s *Scheduler) WithHorizon(horizon time.Duration) *Scheduler {
	s.horizon = horizon
	return s
}

// WithInterval overrides the scan period.
func (s *Scheduler) WithInterval(interval time.Duration) *Scheduler {
	s.interval = interval
	return s
}

// RunOnce performs a single scan and returns the accounts it notified
// about.
func (s *Scheduler) RunOnce(ctx context.Context) ([]model.CreditAccount, error) {
	if !s.notifier.Enabled(ctx) {
		slog.Debug("notifications disabled, skipping due-credit scan")
		return nil, nil
	}

	until := s.now().Add(s.horizon)
	due, err := s.store.GetDueCreditAccounts(ctx, until)
	if err != nil {
		return nil, err
	}

	for _, account := range due {
		if err := s.notifier.NotifyDue(ctx, account); err != nil {
			// One failed delivery should not starve the rest.
			slog.Warn("failed to notify about due credit",
				"credit_id", account.ID,
				"name", account.Name,
				"error", err)
		}
	}

	slog.Info("due-credit scan complete", "due_count", len(due), "horizon", s.horizon)
	return due, nil
}

// Run scans immediately and then on every interval tick until the context
// is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.RunOnce(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				slog.Error("due-credit scan failed", "error", err)
			}
		}
	}
}
