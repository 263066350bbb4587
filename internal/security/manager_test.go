package security

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonate/auth-service/internal/model"
	"github.com/rezonate/auth-service/internal/queue"
)

func TestRingEvictsOldestAtCapacity(t *testing.T) {
	m := New(zerolog.Nop(), 3, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		m.LogEvent(ctx, model.EventFailedLogin, "user-"+strconv.Itoa(i), nil)
	}

	assert.Equal(t, 3, m.Len())
	events := m.Events("", "", 0)
	require.Len(t, events, 3)
	// Newest first; the two oldest entries were evicted.
	assert.Equal(t, "user-4", events[0].UserID)
	assert.Equal(t, "user-2", events[2].UserID)
}

func TestEventsFiltersAndLimit(t *testing.T) {
	m := New(zerolog.Nop(), 100, nil)
	ctx := context.Background()

	m.LogEvent(ctx, model.EventFailedLogin, "alice", nil)
	m.LogEvent(ctx, model.EventSuccessfulLogin, "alice", nil)
	m.LogEvent(ctx, model.EventFailedLogin, "bob", nil)
	m.LogEvent(ctx, model.EventFailedLogin, "alice", nil)

	byUser := m.Events("alice", "", 0)
	assert.Len(t, byUser, 3)

	byType := m.Events("", model.EventFailedLogin, 0)
	assert.Len(t, byType, 3)

	both := m.Events("alice", model.EventFailedLogin, 0)
	assert.Len(t, both, 2)

	limited := m.Events("", "", 2)
	require.Len(t, limited, 2)
	assert.Equal(t, "alice", limited[0].UserID)
	assert.Equal(t, "bob", limited[1].UserID)
}

func TestSeverityAssignedFromTypeTable(t *testing.T) {
	m := New(zerolog.Nop(), 10, nil)
	ctx := context.Background()

	m.LogEvent(ctx, model.EventFailedLogin, "u", nil)
	m.LogEvent(ctx, model.EventPasswordChanged, "u", nil)
	m.LogEvent(ctx, "something_unclassified", "u", nil)

	events := m.Events("u", "", 0)
	require.Len(t, events, 3)
	assert.Equal(t, model.SeverityLow, events[0].Severity)
	assert.Equal(t, model.SeverityMedium, events[1].Severity)
	assert.Equal(t, model.SeverityHigh, events[2].Severity)
}

func TestPublishFailureDoesNotPropagate(t *testing.T) {
	var published []queue.SecurityEventMessage
	m := New(zerolog.Nop(), 10, func(_ context.Context, msg queue.SecurityEventMessage) error {
		published = append(published, msg)
		return errors.New("broker down")
	})

	m.LogEvent(context.Background(), model.EventTokenInvalid, "u", map[string]string{"reason": "bad signature"})

	require.Len(t, published, 1)
	assert.Equal(t, model.EventTokenInvalid, published[0].Type)
	assert.Equal(t, model.SeverityHigh, published[0].Severity)
	// The event is retained even though the broker rejected it.
	assert.Equal(t, 1, m.Len())
}
