package app

import (
	"context"
	"errors"
	"time"

	zlog "github.com/rs/zerolog/log"
	"quiz-stats-service/internal/domain"
	"quiz-stats-service/internal/metrics"
	"quiz-stats-service/internal/validation"
)

// DefaultTimeZone is the zone daily buckets are cut in.
const DefaultTimeZone = "Asia/Seoul"

// IngestService validates candidate events, stamps them and hands them to the sink.
type IngestService struct {
	sink EventSink
	loc  *time.Location
	now  func() time.Time
}

func NewIngestService(sink EventSink, loc *time.Location) *IngestService {
	return NewIngestServiceWithClock(sink, loc, time.Now)
}

// NewIngestServiceWithClock allows deterministic timestamps in tests.
func NewIngestServiceWithClock(sink EventSink, loc *time.Location, now func() time.Time) *IngestService {
	if loc == nil {
		loc = time.UTC
	}
	return &IngestService{sink: sink, loc: loc, now: now}
}

// Ingest validates c, builds the event record and appends it.
// It returns a *domain.ValidationError for bad input and a
// *domain.IngestionError when the sink fails. Nothing is retried.
func (s *IngestService) Ingest(ctx context.Context, c domain.CandidateEvent) (domain.Event, error) {
	if err := validateCandidate(c); err != nil {
		metrics.IngestFailures.WithLabelValues(metrics.ReasonValidation).Inc()
		zlog.Warn().
			Str("event_type", string(c.EventType)).
			Str("session_id", c.SessionID).
			Err(err).
			Msg("event rejected")
		return domain.Event{}, err
	}

	event := s.build(c)
	if err := s.sink.Append(ctx, event); err != nil {
		metrics.IngestFailures.WithLabelValues(metrics.ReasonSink).Inc()
		zlog.Error().
			Str("event_type", string(event.Type)).
			Str("session_id", event.SessionID).
			Str("date_key", event.DateKey).
			Err(err).
			Msg("event append failed")
		return domain.Event{}, &domain.IngestionError{Err: err}
	}

	metrics.EventsIngested.WithLabelValues(string(event.Type)).Inc()
	return event, nil
}

// build stamps the server-side timestamps and drops fields the event type does not carry.
func (s *IngestService) build(c domain.CandidateEvent) domain.Event {
	now := s.now()
	event := domain.Event{
		Timestamp:  now.UTC(),
		DateKey:    DateKey(now, s.loc),
		Type:       c.EventType,
		SessionID:  c.SessionID,
		QuestionID: domain.NoQuestion,
		Correct:    domain.CorrectnessAbsent,
		Result:     domain.ResultNone,
	}
	if c.Meta != nil {
		event.Meta = *c.Meta
	}

	switch c.EventType {
	case domain.EventServed:
		event.QuestionID = questionID(c.QuestionID)
	case domain.EventAnswer:
		event.QuestionID = questionID(c.QuestionID)
		event.Correct = domain.CorrectnessOf(*c.Correct)
	case domain.EventFinish:
		event.Result = c.Result
	}
	return event
}

// DateKey formats the calendar date of t in loc as YYYY-MM-DD.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(domain.DateKeyLayout)
}

func questionID(raw *int) domain.QuestionID {
	if raw == nil || *raw <= 0 {
		return domain.NoQuestion
	}
	return domain.QuestionID(*raw)
}

func validateCandidate(c domain.CandidateEvent) error {
	err := validation.Struct(c)
	if err == nil {
		if !c.EventType.Known() {
			return domain.ErrValidation("unknown eventType")
		}
		return nil
	}

	var fieldErr *validation.FieldError
	if !errors.As(err, &fieldErr) {
		return domain.ErrValidation("invalid event")
	}
	switch fieldErr.Field {
	case "EventType", "SessionID":
		return domain.ErrValidation("eventType/sessionId required")
	case "Correct":
		return domain.ErrValidation("correct required for answer")
	case "Result":
		return domain.ErrValidation("result required for finish")
	}
	return domain.ErrValidation("invalid event")
}
