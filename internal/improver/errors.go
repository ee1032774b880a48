package improver

import (
	"errors"

	"cv-improver/internal/llm"
)

var (
	// ErrEmptyInput is returned when the draft is blank after trimming.
	ErrEmptyInput = errors.New("empty input")
	// ErrBusy is returned while a generation for the session is in flight.
	ErrBusy = errors.New("generation already in progress")
	// ErrExportDisabled is returned when there is no result to export.
	ErrExportDisabled = errors.New("no result to export")
	// ErrMissingCredential is returned when no API key is stored.
	ErrMissingCredential = &llm.Error{Kind: llm.MissingCredential, Message: "no API key stored"}
)
