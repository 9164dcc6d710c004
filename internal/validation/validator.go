// Package validation wraps a shared go-playground validator instance.
package validation

import (
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the process-wide validator. It caches struct metadata.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldError names the first struct field that failed and the rule it broke.
type FieldError struct {
	Field string
	Tag   string
}

func (e *FieldError) Error() string {
	return e.Field + " failed " + e.Tag
}

// Struct validates s and reports the first failing field, or nil.
// Errors that are not field failures (e.g. a non-struct argument) pass through.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &FieldError{Field: fieldErrs[0].Field(), Tag: fieldErrs[0].Tag()}
	}
	return err
}
