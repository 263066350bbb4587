// Package security keeps the append-only audit trail of auth-relevant
// actions.  Events live in a bounded in-memory ring, are written to the
// structured log sink, and are forwarded best-effort to the audit queue.
package security

import (
	"context"
	"sync"
	"time"

	"github.com/rezonate/auth-service/internal/model"
	"github.com/rezonate/auth-service/internal/queue"
	"github.com/rezonate/auth-service/pkg/log"
)

// DefaultMaxEvents bounds the in-memory ring.  Oldest entries are evicted
// once the cap is reached.
const DefaultMaxEvents = 1000

// Publisher forwards an event to the message broker.  Implementations
// must be safe to call from request goroutines; failures are swallowed by
// the manager after logging.
type Publisher func(ctx context.Context, msg queue.SecurityEventMessage) error

// Manager records security events.  The zero value is not usable; use New.
type Manager struct {
	mu      sync.Mutex
	events  []model.SecurityEvent
	max     int
	logger  log.Logger
	publish Publisher
}

// New returns a Manager with the given ring capacity.  publish may be nil
// when no broker is configured; events then stay in memory and in the log
// sink only.
func New(logger log.Logger, maxEvents int, publish Publisher) *Manager {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	return &Manager{
		events:  make([]model.SecurityEvent, 0, maxEvents),
		max:     maxEvents,
		logger:  logger,
		publish: publish,
	}
}

// LogEvent appends an event to the ring, emits it on the log sink and
// forwards it to the audit queue.  Severity is derived from the fixed
// type tables; publish failures never propagate to the caller.
func (m *Manager) LogEvent(ctx context.Context, eventType, userID string, details map[string]string) {
	ev := model.SecurityEvent{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		UserID:    userID,
		Severity:  model.SeverityFor(eventType),
		Details:   details,
	}

	m.mu.Lock()
	if len(m.events) >= m.max {
		// Evict oldest-first.  Copy keeps the backing array from growing
		// without bound as the ring turns over.
		copy(m.events, m.events[1:])
		m.events = m.events[:len(m.events)-1]
	}
	m.events = append(m.events, ev)
	m.mu.Unlock()

	evt := m.logger.Info()
	if ev.Severity == model.SeverityHigh {
		evt = m.logger.Warn()
	}
	evt.Str("event", ev.Type).
		Str("severity", ev.Severity).
		Str("user_id", ev.UserID).
		Interface("details", ev.Details).
		Msg("security event")

	if m.publish != nil {
		msg := queue.SecurityEventMessage{
			Type:      ev.Type,
			UserID:    ev.UserID,
			Severity:  ev.Severity,
			Details:   ev.Details,
			Timestamp: ev.Timestamp.Format(time.RFC3339),
		}
		if err := m.publish(ctx, msg); err != nil {
			m.logger.Warn().Err(err).Str("event", ev.Type).Msg("audit publish failed")
		}
	}
}

// Events returns up to limit events, newest first, optionally filtered by
// user id and/or event type.  Empty filter strings match everything; a
// non-positive limit returns all matches.
func (m *Manager) Events(userID, eventType string, limit int) []model.SecurityEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.SecurityEvent, 0, len(m.events))
	for i := len(m.events) - 1; i >= 0; i-- {
		ev := m.events[i]
		if userID != "" && ev.UserID != userID {
			continue
		}
		if eventType != "" && ev.Type != eventType {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Len reports how many events are currently retained.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}
