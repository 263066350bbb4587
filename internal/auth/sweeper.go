package auth

import (
	"context"
	"time"
)

const (
	sweepInterval   = time.Hour
	sweepRetryDelay = 5 * time.Minute
)

// RunSweeper deletes expired session rows on an hourly cadence until ctx
// is cancelled.  A failed sweep is logged and retried after a fixed
// backoff; it is never fatal to the process.  Intended to be started as
// a goroutine from main.
func (m *Manager) RunSweeper(ctx context.Context) {
	delay := sweepInterval
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		n, err := m.sessions.DeleteExpired(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Warn().Err(err).Msg("session sweep failed, retrying")
			delay = sweepRetryDelay
			continue
		}
		if n > 0 {
			m.logger.Info().Int64("deleted", n).Msg("session sweep")
		}
		delay = sweepInterval
	}
}

// SweepNow runs one expiry sweep immediately.  Exposed for startup and
// tests; the periodic loop uses the same deletion.
func (m *Manager) SweepNow(ctx context.Context) (int64, error) {
	return m.sessions.DeleteExpired(ctx)
}
