package redis

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	zlog "github.com/rs/zerolog/log"
	"quiz-stats-service/internal/domain"
)

// DefaultKey is the list holding the event log when no key is configured.
const DefaultKey = "quiz:events"

// EventLog keeps the event log in a single Redis list.
// Each element is one row encoded as a JSON array of strings:
//
//	RPUSH quiz:events ["2024-01-01T00:00:00.000Z","2024-01-01","start","s1",...]
type EventLog struct {
	client *redis.Client
	key    string
}

func NewEventLog(client *redis.Client, key string) *EventLog {
	if key == "" {
		key = DefaultKey
	}
	return &EventLog{client: client, key: key}
}

func (l *EventLog) Append(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(domain.EncodeRow(event))
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	if err := l.client.RPush(ctx, l.key, payload).Err(); err != nil {
		return fmt.Errorf("rpush %s: %w", l.key, err)
	}
	return nil
}

// FetchAll reads the whole list. Elements that are not JSON string arrays are skipped.
func (l *EventLog) FetchAll(ctx context.Context) ([]domain.Row, error) {
	raw, err := l.client.LRange(ctx, l.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", l.key, err)
	}
	rows := make([]domain.Row, 0, len(raw))
	for i, item := range raw {
		var row domain.Row
		if err := json.Unmarshal([]byte(item), &row); err != nil {
			zlog.Warn().Str("key", l.key).Int("index", i).Err(err).Msg("skipping undecodable event row")
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
