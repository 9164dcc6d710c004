package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"quiz-stats-service/internal/app"
	"quiz-stats-service/internal/domain"
	pgstore "quiz-stats-service/internal/infra/postgres"
	pgmigrations "quiz-stats-service/internal/infra/postgres/migrations"
	redisstore "quiz-stats-service/internal/infra/redis"
)

func TestPostgresEventLogEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	runPlayThrough(t, ctx, pgstore.NewEventLog(pool))
}

func TestRedisEventLogEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	client, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer client.Close()

	runPlayThrough(t, ctx, redisstore.NewEventLog(client, "it:quiz:events"))
}

// runPlayThrough ingests two sessions across a KST midnight and checks the report.
func runPlayThrough(t *testing.T, ctx context.Context, log app.EventLog) {
	t.Helper()
	kst := time.FixedZone("KST", 9*60*60)
	clock := time.Date(2024, 1, 1, 14, 59, 0, 0, time.UTC) // 23:59 KST
	ingest := app.NewIngestServiceWithClock(log, kst, func() time.Time { return clock })
	stats := app.NewStatsService(log, 2)

	qid := 1
	yes, no := true, false
	submit := func(c domain.CandidateEvent) {
		if _, err := ingest.Ingest(ctx, c); err != nil {
			t.Fatalf("ingest %s: %v", c.EventType, err)
		}
	}

	submit(domain.CandidateEvent{EventType: domain.EventStart, SessionID: "s1"})
	submit(domain.CandidateEvent{EventType: domain.EventServed, SessionID: "s1", QuestionID: &qid})
	submit(domain.CandidateEvent{EventType: domain.EventAnswer, SessionID: "s1", QuestionID: &qid, Correct: &yes})

	clock = clock.Add(2 * time.Minute) // 00:01 KST next day
	submit(domain.CandidateEvent{EventType: domain.EventFinish, SessionID: "s1", Result: domain.ResultSuccess})
	submit(domain.CandidateEvent{EventType: domain.EventStart, SessionID: "s2"})
	submit(domain.CandidateEvent{EventType: domain.EventStart, SessionID: "s2"})
	submit(domain.CandidateEvent{EventType: domain.EventServed, SessionID: "s2", QuestionID: &qid})
	submit(domain.CandidateEvent{EventType: domain.EventAnswer, SessionID: "s2", QuestionID: &qid, Correct: &no})
	submit(domain.CandidateEvent{EventType: domain.EventFinish, SessionID: "s2", Result: domain.ResultFailure})

	report, err := stats.Report(ctx, domain.DateRange{Start: "2024-01-01", End: "2024-01-02"})
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if len(report.Daily) != 2 || report.Daily[0].Date != "2024-01-01" || report.Daily[1].Date != "2024-01-02" {
		t.Fatalf("unexpected daily buckets %+v", report.Daily)
	}
	if report.Daily[0].Participants != 1 || report.Daily[1].Participants != 1 {
		t.Fatalf("expected one participant per day, got %d and %d", report.Daily[0].Participants, report.Daily[1].Participants)
	}
	if report.Daily[1].Success != 1 || report.Daily[1].Failure != 1 {
		t.Fatalf("expected outcomes on the second day, got %+v", report.Daily[1])
	}
	overall := report.Overall
	if overall.Participants != 2 || overall.Served[1] != 2 {
		t.Fatalf("unexpected overall %+v", overall)
	}
	if a := overall.Answers[1]; a.Total != 2 || a.RateCorrect != 0.5 || a.RateWrong != 0.5 {
		t.Fatalf("unexpected answer stats %+v", a)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
