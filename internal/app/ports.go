package app

import (
	"context"

	"quiz-stats-service/internal/domain"
)

// EventSink durably appends event records. Retries, if any, belong to the sink.
type EventSink interface {
	Append(ctx context.Context, event domain.Event) error
}

// EventSource returns every raw row of the event log in append order.
type EventSource interface {
	FetchAll(ctx context.Context) ([]domain.Row, error)
}

// EventLog abstracts the append-only log backing both ingestion and reporting
// (in-memory, Redis, Postgres, SQLite).
type EventLog interface {
	EventSink
	EventSource
}
