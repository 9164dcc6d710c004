package domain

import (
	"strconv"
	"time"
)

// Row is the flat, string-typed form of an event as held by the event log.
// Column order is fixed: see the Col* constants.
type Row []string

const (
	ColTimestamp = iota
	ColDateKey
	ColEventType
	ColSessionID
	ColQuestionID
	ColCorrect
	ColResult
	ColUserAgent
	ColPlatform
	ColViewportWidth
	ColViewportHeight

	RowWidth
)

// Header names the columns in log order.
var Header = Row{
	"timestamp_utc", "date_kst", "event_type", "session_id", "question_id",
	"correct_10", "result", "ua", "platform", "vw", "vh",
}

const (
	// DateKeyLayout is the zero-padded calendar date used for daily bucketing.
	DateKeyLayout = "2006-01-02"
	// TimestampLayout matches the millisecond ISO-8601 form written to the log.
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// EncodeRow flattens an event into log columns. Absent fields become "".
func EncodeRow(e Event) Row {
	row := make(Row, RowWidth)
	row[ColTimestamp] = e.Timestamp.UTC().Format(TimestampLayout)
	row[ColDateKey] = e.DateKey
	row[ColEventType] = string(e.Type)
	row[ColSessionID] = e.SessionID
	if e.QuestionID.Present() {
		row[ColQuestionID] = strconv.Itoa(int(e.QuestionID))
	}
	switch e.Correct {
	case AnsweredCorrect:
		row[ColCorrect] = "1"
	case AnsweredWrong:
		row[ColCorrect] = "0"
	}
	row[ColResult] = string(e.Result)
	row[ColUserAgent] = e.Meta.UserAgent
	row[ColPlatform] = e.Meta.Platform
	row[ColViewportWidth] = formatOptionalInt(e.Meta.VW)
	row[ColViewportHeight] = formatOptionalInt(e.Meta.VH)
	return row
}

// ParseRow converts a raw log row into an event. It returns false when the row
// cannot be bucketed at all (bad date key or no event type); optional fields
// that fail to parse are treated as absent.
func ParseRow(raw Row) (Event, bool) {
	row := raw
	if len(row) < RowWidth {
		row = make(Row, RowWidth)
		copy(row, raw)
	}

	if _, err := time.Parse(DateKeyLayout, row[ColDateKey]); err != nil {
		return Event{}, false
	}
	if row[ColEventType] == "" {
		return Event{}, false
	}

	e := Event{
		DateKey:    row[ColDateKey],
		Type:       EventType(row[ColEventType]),
		SessionID:  row[ColSessionID],
		QuestionID: parseQuestionID(row[ColQuestionID]),
		Correct:    parseCorrect(row[ColCorrect]),
		Result:     Result(row[ColResult]),
		Meta: Meta{
			UserAgent: row[ColUserAgent],
			Platform:  row[ColPlatform],
			VW:        parseOptionalInt(row[ColViewportWidth]),
			VH:        parseOptionalInt(row[ColViewportHeight]),
		},
	}
	if ts, err := time.Parse(time.RFC3339Nano, row[ColTimestamp]); err == nil {
		e.Timestamp = ts
	}
	return e, true
}

func parseQuestionID(raw string) QuestionID {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return NoQuestion
	}
	return QuestionID(n)
}

func parseCorrect(raw string) Correctness {
	switch raw {
	case "1":
		return AnsweredCorrect
	case "0":
		return AnsweredWrong
	}
	return CorrectnessAbsent
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func parseOptionalInt(raw string) *int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
