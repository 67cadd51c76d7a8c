package audit

import (
	"context"
	"log/slog"
	"time"

	id "admissio/pkg/domain"
	"admissio/pkg/requestcontext"
)

// Store persists audit events. Append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByPrincipal(ctx context.Context, principalID id.PrincipalID) ([]Event, error)
}

// Publisher accepts events from domain services and hands them to the worker
// through a bounded inbox. Emit never blocks the request path: when the inbox
// is full the event is dropped and counted, not queued.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Emit enriches the event with request-scoped metadata and enqueues it.
// Audit failure never fails the triggering operation.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit inbox full, event dropped",
			"action", event.Action,
			"principal_id", event.PrincipalID,
		)
	}
	return nil
}

// Inbox exposes the receive side for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

// Sink is an optional secondary destination (Kafka) fed by the worker.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker drains the publisher inbox into the store and, when configured, the
// external sink. It owns all audit I/O so request handlers never wait on it.
type Worker struct {
	store  Store
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, sink: sink, inbox: inbox, logger: logger}
}

// Run consumes until the context is cancelled. Store append failures are
// logged and skipped; losing one audit line must not stop the drain.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			w.deliver(ctx, event)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, event Event) {
	deliveryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := w.store.Append(deliveryCtx, event); err != nil {
		w.logger.Error("audit store append failed", "action", event.Action, "error", err)
	}
	if w.sink != nil {
		if err := w.sink.Publish(deliveryCtx, event); err != nil {
			w.logger.Error("audit sink publish failed", "action", event.Action, "error", err)
		}
	}
}
