package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-stats-service/internal/domain"
)

const insertEventSQL = `INSERT INTO quiz_events
	(timestamp_utc, date_kst, event_type, session_id, question_id, correct_10, result, ua, platform, vw, vh)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const selectEventsSQL = `SELECT
	timestamp_utc, date_kst, event_type, session_id, question_id, correct_10, result, ua, platform, vw, vh
	FROM quiz_events ORDER BY id`

// EventLog stores event rows in the quiz_events table. Rows are only ever inserted.
type EventLog struct {
	pool *pgxpool.Pool
}

func NewEventLog(pool *pgxpool.Pool) *EventLog {
	return &EventLog{pool: pool}
}

func (l *EventLog) Append(ctx context.Context, event domain.Event) error {
	row := domain.EncodeRow(event)
	args := make([]interface{}, len(row))
	for i, v := range row {
		args[i] = v
	}
	if _, err := l.pool.Exec(ctx, insertEventSQL, args...); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (l *EventLog) FetchAll(ctx context.Context) ([]domain.Row, error) {
	rs, err := l.pool.Query(ctx, selectEventsSQL)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rs.Close()

	var rows []domain.Row
	for rs.Next() {
		row := make(domain.Row, domain.RowWidth)
		dest := make([]interface{}, domain.RowWidth)
		for i := range row {
			dest[i] = &row[i]
		}
		if err := rs.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return rows, nil
}
