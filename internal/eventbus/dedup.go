package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/example/order-saga/internal/domain"
)

// WithDedup wraps a handler with a processed-event log keyed by envelope id,
// so redelivered events on an at-least-once bus are acknowledged without
// re-running their effect. The log is per-wrapper: each listener tracks the
// deliveries it has already handled.
func WithDedup(handler Handler, logger *slog.Logger) Handler {
	var (
		mu        sync.Mutex
		processed = make(map[string]struct{})
		inflight  = make(map[string]struct{})
	)

	return func(ctx context.Context, env domain.Envelope) error {
		mu.Lock()
		if _, seen := processed[env.ID]; seen {
			mu.Unlock()
			logger.Info("duplicate event skipped", "event_type", env.Type, "event_id", env.ID)
			return nil
		}
		if _, running := inflight[env.ID]; running {
			// A concurrent duplicate of a delivery still in progress. Skipping
			// is safe: if the running attempt fails, the bus redelivers.
			mu.Unlock()
			logger.Info("duplicate event skipped", "event_type", env.Type, "event_id", env.ID)
			return nil
		}
		inflight[env.ID] = struct{}{}
		mu.Unlock()

		err := handler(ctx, env)

		// Marked processed only after success so a failed delivery can be
		// retried.
		mu.Lock()
		delete(inflight, env.ID)
		if err == nil {
			processed[env.ID] = struct{}{}
		}
		mu.Unlock()
		return err
	}
}
