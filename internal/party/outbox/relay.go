package outbox

import (
	"context"
	"log/slog"
	"time"
)

// Source hands out undelivered entries.
type Source interface {
	ProcessPending(ctx context.Context, limit int, deliver func(context.Context, Entry) error) (int, error)
}

// Producer sends one keyed record to the event stream.
type Producer interface {
	Produce(ctx context.Context, key, value []byte) error
}

// Relay polls the outbox and forwards entries to the producer. Delivery is
// at-least-once; consumers dedupe on the event id in the payload.
type Relay struct {
	source    Source
	producer  Producer
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

func NewRelay(source Source, producer Producer, logger *slog.Logger, interval time.Duration, batchSize int) *Relay {
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Relay{
		source:    source,
		producer:  producer,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run relays until ctx is cancelled. A full batch is followed immediately by
// another pass instead of waiting for the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for {
				n, err := r.RelayOnce(ctx)
				if err != nil {
					r.logger.ErrorContext(ctx, "outbox relay failed", "error", err, "delivered", n)
					break
				}
				if n < r.batchSize {
					break
				}
			}
		}
	}
}

// RelayOnce forwards at most one batch and returns how many entries were
// delivered.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	n, err := r.source.ProcessPending(ctx, r.batchSize, func(ctx context.Context, e Entry) error {
		return r.producer.Produce(ctx, e.Key(), e.Payload)
	})
	if n > 0 {
		r.logger.DebugContext(ctx, "outbox entries relayed", "count", n)
	}
	return n, err
}
