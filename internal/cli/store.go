package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	zlog "github.com/rs/zerolog/log"
	"quiz-stats-service/internal/app"
	"quiz-stats-service/internal/config"
	"quiz-stats-service/internal/infra/memory"
	pgstore "quiz-stats-service/internal/infra/postgres"
	redisstore "quiz-stats-service/internal/infra/redis"
	sqlitestore "quiz-stats-service/internal/infra/sqlite"
)

// openEventLog builds the event log selected by cfg. The returned func releases it.
func openEventLog(ctx context.Context, cfg config.Config) (app.EventLog, func(), error) {
	driver := cfg.StoreDriver()
	zlog.Info().Str("driver", driver).Msg("opening event log")

	switch driver {
	case config.DriverMemory:
		return memory.NewEventLog(), func() {}, nil

	case config.DriverRedis:
		if cfg.Redis.Addr == "" {
			return nil, nil, fmt.Errorf("redis addr not configured")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return redisstore.NewEventLog(client, cfg.Redis.Key), func() { _ = client.Close() }, nil

	case config.DriverPostgres:
		if cfg.Postgres.URL == "" {
			return nil, nil, fmt.Errorf("postgres url not configured")
		}
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return pgstore.NewEventLog(pool), pool.Close, nil

	case config.DriverSQLite:
		path := cfg.SQLite.Path
		if path == "" {
			path = "quiz-events.db"
		}
		store, err := sqlitestore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", driver)
}
