package domain

import "fmt"

// ValidationError reports bad or missing client input. It is never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ErrValidation builds a ValidationError with a short client-facing reason.
func ErrValidation(reason string) error { return &ValidationError{Reason: reason} }

// IngestionError reports that the event sink could not append a record.
type IngestionError struct {
	Err error
}

func (e *IngestionError) Error() string { return fmt.Sprintf("append event: %v", e.Err) }

func (e *IngestionError) Unwrap() error { return e.Err }

// UpstreamError reports that the event source could not be read.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("fetch events: %v", e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }
