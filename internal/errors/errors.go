package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType classifies errors raised by the analysis core
type ErrorType string

const (
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeInput     ErrorType = "input"
	ErrorTypeDuplicate ErrorType = "duplicate_evidence"
	ErrorTypeInternal  ErrorType = "internal"
)

// Sentinels for errors.Is checks
var (
	ErrDuplicateEvidence = errors.New("duplicate evidence")
	ErrMissingInput      = errors.New("missing required input")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// TypeOf classifies err by the first typed error in its chain. Errors that are
// not raised by the analysis core are ErrorTypeInternal; nil yields "".
func TypeOf(err error) ErrorType {
	var (
		cfgErr *ConfigError
		inErr  *InputError
		dupErr *DuplicateEvidenceError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return ErrorTypeConfig
	case errors.As(err, &inErr):
		return ErrorTypeInput
	case errors.As(err, &dupErr):
		return ErrorTypeDuplicate
	default:
		return ErrorTypeInternal
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config error for field %s: %v", e.Field, e.Underlying)
	}
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// Is makes every ConfigError match ErrInvalidConfig
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// InputError reports a required input that is absent or unusable
type InputError struct {
	Input      string
	Underlying error
	Timestamp  time.Time
}

// NewInputError creates a new input error. A nil err defaults to ErrMissingInput.
func NewInputError(input string, err error) *InputError {
	if err == nil {
		err = ErrMissingInput
	}
	return &InputError{
		Input:      input,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *InputError) Error() string {
	return fmt.Sprintf("input %s: %v", e.Input, e.Underlying)
}

// Unwrap returns the underlying error
func (e *InputError) Unwrap() error {
	return e.Underlying
}

// DuplicateEvidenceError is returned when a claimant contributes a second score
// to a fact it already scored, or when a link pair is inserted twice without merging.
// It signals a caller contract violation: merge instead of inserting blindly.
type DuplicateEvidenceError struct {
	Fact      string
	Claimant  string
	Timestamp time.Time
}

// NewDuplicateEvidenceError creates a duplicate evidence error
func NewDuplicateEvidenceError(fact, claimant string) *DuplicateEvidenceError {
	return &DuplicateEvidenceError{
		Fact:      fact,
		Claimant:  claimant,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *DuplicateEvidenceError) Error() string {
	if e.Claimant == "" {
		return fmt.Sprintf("duplicate evidence for %s", e.Fact)
	}
	return fmt.Sprintf("duplicate evidence for %s from claimant %s", e.Fact, e.Claimant)
}

// Unwrap returns ErrDuplicateEvidence
func (e *DuplicateEvidenceError) Unwrap() error {
	return ErrDuplicateEvidence
}

// IsRecoverable reports whether a caller can continue after this error.
// Duplicate evidence never corrupts state, so it is always recoverable.
func (e *DuplicateEvidenceError) IsRecoverable() bool {
	return true
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
