package memory

import (
	"context"
	"sync"

	"quiz-stats-service/internal/domain"
)

// EventLog is an in-memory implementation of app.EventLog (useful for tests/demos).
// Rows are kept encoded so reads behave like the durable stores.
type EventLog struct {
	mu   sync.RWMutex
	rows []domain.Row
}

func NewEventLog() *EventLog {
	return &EventLog{}
}

// NewEventLogWithRows seeds the log with raw rows, e.g. imported legacy data.
func NewEventLogWithRows(rows []domain.Row) *EventLog {
	l := &EventLog{rows: make([]domain.Row, 0, len(rows))}
	for _, r := range rows {
		l.rows = append(l.rows, append(domain.Row(nil), r...))
	}
	return l
}

func (l *EventLog) Append(_ context.Context, event domain.Event) error {
	row := domain.EncodeRow(event)
	l.mu.Lock()
	l.rows = append(l.rows, row)
	l.mu.Unlock()
	return nil
}

// FetchAll returns a copy of every row so callers get an immutable snapshot.
func (l *EventLog) FetchAll(_ context.Context) ([]domain.Row, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Row, len(l.rows))
	for i, r := range l.rows {
		out[i] = append(domain.Row(nil), r...)
	}
	return out, nil
}

// Len reports the number of stored rows.
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.rows)
}
