package audit

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "admissio/pkg/domain"
	"admissio/pkg/requestcontext"
)

func TestPublisher_DeliversThroughWorker(t *testing.T) {
	store := NewInMemoryStore()
	logger := slog.New(slog.DiscardHandler)
	pub := NewPublisher(10, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker := NewWorker(store, nil, pub.Inbox(), logger)
	go func() { _ = worker.Run(ctx) }()

	principalID := id.PrincipalID(uuid.New())
	emitCtx := requestcontext.WithRequestID(context.Background(), "req-1")
	err := pub.Emit(emitCtx, Event{
		Category:    CategoryCompliance,
		PrincipalID: principalID,
		Action:      ActionPrincipalRegistered,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		events, err := store.ListByPrincipal(context.Background(), principalID)
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)

	events, err := store.ListByPrincipal(context.Background(), principalID)
	require.NoError(t, err)
	assert.Equal(t, ActionPrincipalRegistered, events[0].Action)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestPublisher_FullInboxDropsInsteadOfBlocking(t *testing.T) {
	pub := NewPublisher(1, slog.New(slog.DiscardHandler))

	// No worker draining: second emit must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = pub.Emit(context.Background(), Event{Action: ActionLoginFailed})
		_ = pub.Emit(context.Background(), Event{Action: ActionLoginFailed})
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on full inbox")
	}
}
