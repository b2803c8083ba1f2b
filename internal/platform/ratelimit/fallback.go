package ratelimit

import (
	"context"
	"log/slog"

	"party/pkg/platform/circuit"
)

// FallbackLimiter asks the primary and answers from the fallback while the
// primary keeps failing. The primary is still consulted while the breaker is
// open so recovery is noticed.
type FallbackLimiter struct {
	primary  Limiter
	fallback Limiter
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallbackLimiter(primary, fallback Limiter, breaker *circuit.Breaker, logger *slog.Logger) *FallbackLimiter {
	if breaker == nil {
		breaker = circuit.New("ratelimit")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackLimiter{
		primary:  primary,
		fallback: fallback,
		breaker:  breaker,
		logger:   logger,
	}
}

func (f *FallbackLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	res, err := f.primary.Allow(ctx, key)
	if err != nil {
		useFallback, change := f.breaker.RecordFailure()
		if change.Opened {
			f.logger.WarnContext(ctx, "rate limiter degraded to local fallback",
				"breaker", f.breaker.Name(),
				"error", err,
			)
		}
		if !useFallback {
			return nil, err
		}
		return f.fallback.Allow(ctx, key)
	}

	usePrimary, change := f.breaker.RecordSuccess()
	if change.Closed {
		f.logger.InfoContext(ctx, "rate limiter recovered", "breaker", f.breaker.Name())
	}
	if !usePrimary {
		return f.fallback.Allow(ctx, key)
	}
	return res, nil
}

// Degraded reports whether answers currently come from the fallback.
func (f *FallbackLimiter) Degraded() bool {
	return f.breaker.IsOpen()
}
