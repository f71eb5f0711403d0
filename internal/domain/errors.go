package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrAdvisorNotFound = errors.New("advisor not found in roster")
	ErrNoObligations   = errors.New("no obligations found for this document")
	ErrSessionNotFound = errors.New("session not found")
)

// ConfigError means the reference data cannot be used: a file is missing or
// unreadable, or required columns could not be resolved. It ends the session.
type ConfigError struct {
	Source  string
	Missing []Field
	Err     error
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		names := make([]string, len(e.Missing))
		for i, f := range e.Missing {
			names[i] = string(f)
		}
		return fmt.Sprintf("reference data %s: unresolved columns %s", e.Source, strings.Join(names, ", "))
	}
	return fmt.Sprintf("reference data %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every failed check of a submission.
type ValidationErrors []FieldError

func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Err returns nil when no check failed.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// DuplicateError blocks a submission that matches a logged payment.
type DuplicateError struct {
	Key DuplicateKey
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("payment already registered for document %s on %s with receipt %s",
		e.Key.DebtorDocument, e.Key.PaymentDate, e.Key.ReceiptNumber)
}

// PartialPersistenceError reports a record that reached the local log but
// not the remote mirror.
type PartialPersistenceError struct {
	Err error
}

func (e *PartialPersistenceError) Error() string {
	return fmt.Sprintf("payment saved locally but remote sync failed: %v", e.Err)
}

func (e *PartialPersistenceError) Unwrap() error {
	return e.Err
}
