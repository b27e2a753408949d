package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOperationLimit is returned when adding an operation to a batch
	// that already holds the configured maximum.
	ErrOperationLimit = errors.New("batch operation limit reached")
	// ErrUnknownConstraint is returned when the evaluator meets a
	// constraint variant it does not know.
	ErrUnknownConstraint = errors.New("unknown constraint variant")
	// ErrAlreadyExecuted is returned when reusing a coordinator that has
	// already executed.
	ErrAlreadyExecuted = errors.New("coordinator already executed")
)

// ErrTargetNil is returned when the passed target, which should be a
// pointer, is passed as a nil value.
type ErrTargetNil struct{}

func (e *ErrTargetNil) Error() string { return "target interface is nil" }

// ValidationError aggregates every limit or shape violation found in one
// validation pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Violations))
	for n, v := range e.Violations {
		if v.Path == "" {
			msgs[n] = v.Message
			continue
		}
		msgs[n] = v.Path + ": " + v.Message
	}
	return fmt.Sprintf("validation failed with %d violation(s): %s", len(e.Violations), strings.Join(msgs, "; "))
}

// IndexRequiredError is returned when strict validation is enabled and no
// registered compound index satisfies the query. Fields carries the minimal
// field list a matching index must cover.
type IndexRequiredError struct {
	Collection string
	Fields     []IndexField
}

func (e *IndexRequiredError) Error() string {
	parts := make([]string, len(e.Fields))
	for n, f := range e.Fields {
		parts[n] = f.Field + " " + string(f.Direction)
	}
	return fmt.Sprintf("query on %q requires a compound index on (%s)", e.Collection, strings.Join(parts, ", "))
}

// NotFoundError is returned when a referenced document is absent but
// required to exist.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %s/%s does not exist", e.Collection, e.ID)
}

// ConflictError is returned on a precondition mismatch, such as creating a
// document that already exists.
type ConflictError struct {
	Collection string
	ID         string
	Reason     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s/%s: %s", e.Collection, e.ID, e.Reason)
}

// TransientError marks a retryable backend failure. The transaction
// coordinator retries only errors wrapped in it; everything else ends the
// attempt loop immediately.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return "transient: " + e.Cause.Error()
}

func (e *TransientError) Unwrap() error { return e.Cause }

// ConfigurationError is returned for malformed coordinator input, such as an
// unknown operation kind.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Detail
}

// IsTransient reports whether err is (or wraps) a [TransientError].
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
