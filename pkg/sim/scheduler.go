package sim

import (
	"time"

	"go.uber.org/zap"
)

// Scheduler defers ledger recording for delayed simulations. Timers are
// fire-and-forget: once armed there is no cancellation, and a timer that
// has not fired when the process exits is simply lost. The metrics were
// computed at submission and are recorded as-is at fire time.
type Scheduler struct {
	ledger *Ledger
	log    *zap.Logger
}

func NewScheduler(ledger *Ledger, log *zap.Logger) *Scheduler {
	return &Scheduler{ledger: ledger, log: log}
}

func (s *Scheduler) Schedule(entry Entry, delay time.Duration) {
	if delay <= 0 {
		s.ledger.Record(entry.Order, entry.Metrics)
		return
	}

	time.AfterFunc(delay, func() {
		s.ledger.Record(entry.Order, entry.Metrics)
		s.log.Info("recorded delayed simulation",
			zap.String("order_id", entry.Order.ID),
			zap.Duration("delay", delay),
		)
	})
}
