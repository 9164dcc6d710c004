package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"quiz-stats-service/internal/domain"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS quiz_events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp_utc TEXT NOT NULL,
	date_kst      TEXT NOT NULL,
	event_type    TEXT NOT NULL,
	session_id    TEXT NOT NULL,
	question_id   TEXT NOT NULL DEFAULT '',
	correct_10    TEXT NOT NULL DEFAULT '',
	result        TEXT NOT NULL DEFAULT '',
	ua            TEXT NOT NULL DEFAULT '',
	platform      TEXT NOT NULL DEFAULT '',
	vw            TEXT NOT NULL DEFAULT '',
	vh            TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS quiz_events_date_kst_idx ON quiz_events (date_kst);`

// EventLog stores event rows in a local SQLite file.
type EventLog struct {
	db *sql.DB
}

// Open connects to the database at dsn, applies pragmas and creates the table.
func Open(dsn string) (*EventLog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &EventLog{db: db}, nil
}

// Close closes the database connection.
func (l *EventLog) Close() error {
	return l.db.Close()
}

func (l *EventLog) Append(ctx context.Context, event domain.Event) error {
	row := domain.EncodeRow(event)
	args := make([]any, len(row))
	for i, v := range row {
		args[i] = v
	}
	_, err := l.db.ExecContext(ctx, `INSERT INTO quiz_events
		(timestamp_utc, date_kst, event_type, session_id, question_id, correct_10, result, ua, platform, vw, vh)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (l *EventLog) FetchAll(ctx context.Context) ([]domain.Row, error) {
	rs, err := l.db.QueryContext(ctx, `SELECT
		timestamp_utc, date_kst, event_type, session_id, question_id, correct_10, result, ua, platform, vw, vh
		FROM quiz_events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rs.Close()

	var rows []domain.Row
	for rs.Next() {
		row := make(domain.Row, domain.RowWidth)
		dest := make([]any, domain.RowWidth)
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

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
