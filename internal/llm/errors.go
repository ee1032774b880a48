package llm

import (
	"errors"
	"fmt"
)

// Kind classifies provider failures.
type Kind string

const (
	MissingCredential Kind = "missing_credential"
	CredentialInvalid Kind = "credential_invalid"
	GenerationFailed  Kind = "generation_failed"
	MalformedResponse Kind = "malformed_response"
	NetworkFailure    Kind = "network_failure"
)

// Error is returned by providers. Message is the provider's own text when it
// supplied one.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("llm %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("llm %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the provider message carried by err, falling back to err.Error().
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
