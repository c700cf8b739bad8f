package store

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	connectBackoff    = 500 * time.Millisecond
	connectMaxBackoff = 10 * time.Second
)

// connectWithRetry calls connect until it succeeds, fails with a permanent
// error, or attempts run out. The delay doubles after each failure.
func connectWithRetry[T any](ctx context.Context, attempts int, connect func(context.Context) (T, error)) (T, error) {
	if attempts < 1 {
		attempts = 1
	}
	delay := connectBackoff

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := connect(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if ctx.Err() != nil || !isTransient(err) || attempt == attempts {
			break
		}

		zap.L().Warn("store: connect failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
		delay = min(delay*2, connectMaxBackoff)
	}
	return zero, lastErr
}

// isTransient reports whether a connection error may clear on its own.
func isTransient(err error) bool {
	if pgconn.SafeToRetry(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED)
}
