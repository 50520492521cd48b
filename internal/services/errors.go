// Package services defines the business logic for draft generation and
// plagiarism scans. This file centralizes common service-level error values
// so that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Generation-related errors.
var (
	// ErrEmptyPrompt is returned when a generation request carries neither a
	// prompt nor a topic to build one from.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrPromptTooLong is returned when a prompt or revision exceeds the
	// configured rune limit.
	ErrPromptTooLong = errors.New("prompt too long")

	// ErrGenerationNotFound indicates that the requested generation does not exist.
	ErrGenerationNotFound = errors.New("generation not found")

	// ErrDraftNotFound indicates that the requested draft does not exist.
	ErrDraftNotFound = errors.New("draft not found")

	// ErrEmptyRevision is returned when a draft revision is blank.
	ErrEmptyRevision = errors.New("revision is empty")
)

// Scan-related errors.
var (
	// ErrUnknownStatus is returned by the status webhook for a status the
	// provider does not send.
	ErrUnknownStatus = errors.New("unknown scan status")
)
