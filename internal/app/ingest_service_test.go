package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"quiz-stats-service/internal/app"
	"quiz-stats-service/internal/domain"
	"quiz-stats-service/internal/infra/memory"
)

var kst = time.FixedZone("KST", 9*60*60)

func TestIngestStampsAndAppends(t *testing.T) {
	log := memory.NewEventLog()
	now := time.Date(2024, 1, 1, 16, 30, 0, 0, time.UTC) // 01:30 next day in KST
	service := app.NewIngestServiceWithClock(log, kst, fixedClock(now))

	qid := 4
	event, err := service.Ingest(context.Background(), domain.CandidateEvent{
		EventType:  domain.EventServed,
		SessionID:  "s1",
		QuestionID: &qid,
		Meta:       &domain.Meta{UserAgent: "ua", Platform: "web"},
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-02", event.DateKey)
	assert.True(t, event.Timestamp.Equal(now))
	assert.Equal(t, domain.QuestionID(4), event.QuestionID)
	assert.Equal(t, "ua", event.Meta.UserAgent)

	rows, err := log.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.Row{
		"2024-01-01T16:30:00.000Z", "2024-01-02", "served", "s1", "4", "", "", "ua", "web", "", "",
	}, rows[0])
}

func TestIngestDateKeyIgnoresCallerZone(t *testing.T) {
	instant := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	// The same instant observed from two client zones.
	fromLA := instant.In(time.FixedZone("PST", -8*60*60))
	fromTokyo := instant.In(time.FixedZone("JST", 9*60*60))

	for _, now := range []time.Time{fromLA, fromTokyo, instant} {
		service := app.NewIngestServiceWithClock(memory.NewEventLog(), kst, fixedClock(now))
		event, err := service.Ingest(context.Background(), domain.CandidateEvent{EventType: domain.EventStart, SessionID: "s1"})
		require.NoError(t, err)
		assert.Equal(t, "2024-03-11", event.DateKey)
	}
}

func TestIngestDropsFieldsTheTypeDoesNotCarry(t *testing.T) {
	service := app.NewIngestServiceWithClock(memory.NewEventLog(), kst, fixedClock(time.Now()))
	qid := 2
	correct := true

	event, err := service.Ingest(context.Background(), domain.CandidateEvent{
		EventType:  domain.EventStart,
		SessionID:  "s1",
		QuestionID: &qid,
		Correct:    &correct,
		Result:     domain.ResultSuccess,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.NoQuestion, event.QuestionID)
	assert.Equal(t, domain.CorrectnessAbsent, event.Correct)
	assert.Equal(t, domain.ResultNone, event.Result)
}

func TestIngestAnswerKeepsFalseFlag(t *testing.T) {
	service := app.NewIngestServiceWithClock(memory.NewEventLog(), kst, fixedClock(time.Now()))
	qid := 1
	correct := false

	event, err := service.Ingest(context.Background(), domain.CandidateEvent{
		EventType:  domain.EventAnswer,
		SessionID:  "s1",
		QuestionID: &qid,
		Correct:    &correct,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.AnsweredWrong, event.Correct)
}

func TestIngestRejectsInvalidCandidates(t *testing.T) {
	qid := 1
	cases := []struct {
		name   string
		in     domain.CandidateEvent
		reason string
	}{
		{"missing event type", domain.CandidateEvent{SessionID: "s1"}, "eventType/sessionId required"},
		{"missing session", domain.CandidateEvent{EventType: domain.EventStart}, "eventType/sessionId required"},
		{"answer without correct", domain.CandidateEvent{EventType: domain.EventAnswer, SessionID: "s1", QuestionID: &qid}, "correct required for answer"},
		{"finish without result", domain.CandidateEvent{EventType: domain.EventFinish, SessionID: "s1"}, "result required for finish"},
		{"unknown event type", domain.CandidateEvent{EventType: "pause", SessionID: "s1"}, "unknown eventType"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log := memory.NewEventLog()
			service := app.NewIngestService(log, kst)

			_, err := service.Ingest(context.Background(), tc.in)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.reason, ve.Reason)
			assert.Equal(t, 0, log.Len(), "rejected events must not reach the sink")
		})
	}
}

func TestIngestAcceptsUnlistedFinishResult(t *testing.T) {
	service := app.NewIngestService(memory.NewEventLog(), kst)

	event, err := service.Ingest(context.Background(), domain.CandidateEvent{
		EventType: domain.EventFinish,
		SessionID: "s1",
		Result:    "abandoned",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.Result("abandoned"), event.Result)
}

func TestIngestSurfacesSinkFailure(t *testing.T) {
	sinkErr := errors.New("sheet unavailable")
	service := app.NewIngestService(failingLog{err: sinkErr}, kst)

	_, err := service.Ingest(context.Background(), domain.CandidateEvent{EventType: domain.EventStart, SessionID: "s1"})

	var ie *domain.IngestionError
	require.ErrorAs(t, err, &ie)
	assert.ErrorIs(t, err, sinkErr)
}

func TestDuplicateSubmissionsAreRecordedTwice(t *testing.T) {
	log := memory.NewEventLog()
	service := app.NewIngestService(log, kst)
	candidate := domain.CandidateEvent{EventType: domain.EventStart, SessionID: "s1"}

	_, err := service.Ingest(context.Background(), candidate)
	require.NoError(t, err)
	_, err = service.Ingest(context.Background(), candidate)
	require.NoError(t, err)

	assert.Equal(t, 2, log.Len())
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type failingLog struct {
	err error
}

func (f failingLog) Append(context.Context, domain.Event) error { return f.err }

func (f failingLog) FetchAll(context.Context) ([]domain.Row, error) { return nil, f.err }
