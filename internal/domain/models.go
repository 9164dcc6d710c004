package domain

import "time"

// EventType identifies which user action an event record describes.
type EventType string

const (
	EventStart  EventType = "start"
	EventServed EventType = "served"
	EventAnswer EventType = "answer"
	EventFinish EventType = "finish"
)

// Known reports whether t is one of the recorded event types.
func (t EventType) Known() bool {
	switch t {
	case EventStart, EventServed, EventAnswer, EventFinish:
		return true
	}
	return false
}

// Result is the outcome of a play-through, carried by finish events.
// Values other than ResultSuccess and ResultFailure are stored as given.
type Result string

const (
	ResultNone    Result = ""
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// QuestionID identifies a quiz question. NoQuestion marks the field absent.
type QuestionID int

const NoQuestion QuestionID = 0

// Present reports whether the id refers to a question.
func (q QuestionID) Present() bool { return q > 0 }

// Correctness is the answer flag of an answer event.
type Correctness int8

const (
	CorrectnessAbsent Correctness = iota
	AnsweredCorrect
	AnsweredWrong
)

// CorrectnessOf converts a known answer flag.
func CorrectnessOf(correct bool) Correctness {
	if correct {
		return AnsweredCorrect
	}
	return AnsweredWrong
}

// Meta holds client diagnostics. It is stored but never aggregated.
type Meta struct {
	UserAgent string `json:"userAgent,omitempty"`
	Platform  string `json:"platform,omitempty"`
	VW        *int   `json:"vw,omitempty"`
	VH        *int   `json:"vh,omitempty"`
}

// Event is one immutable entry of the append-only event log.
type Event struct {
	Timestamp  time.Time
	DateKey    string
	Type       EventType
	SessionID  string
	QuestionID QuestionID
	Correct    Correctness
	Result     Result
	Meta       Meta
}

// CandidateEvent is the body a client submits before it is validated and stamped.
type CandidateEvent struct {
	EventType  EventType `json:"eventType" validate:"required"`
	SessionID  string    `json:"sessionId" validate:"required"`
	QuestionID *int      `json:"questionId,omitempty"`
	Correct    *bool     `json:"correct,omitempty" validate:"required_if=EventType answer"`
	Result     Result    `json:"result,omitempty" validate:"required_if=EventType finish"`
	Meta       *Meta     `json:"meta,omitempty"`
}
