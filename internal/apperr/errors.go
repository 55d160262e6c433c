// Package apperr defines the error taxonomy shared across the application.
//
// Infrastructure errors (connectivity, provider) carry enough context for a
// user-facing message and propagate unmodified. Domain errors (validation,
// not-found, empty review queue) are distinct types so callers can branch on
// them with errors.Is/errors.As instead of string matching.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a missing host-collection entity (note or card).
	ErrNotFound = errors.New("not found")

	// ErrNoReviewItems reports an empty review queue. This is an expected
	// terminal state, not a failure: present it as an informational message.
	ErrNoReviewItems = errors.New("no notes marked for review")
)

// ConnectivityError reports an unreachable endpoint. The message names the
// endpoint so the user can check that the server is actually running.
type ConnectivityError struct {
	Endpoint string
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot reach server at %s: check that it is running", e.Endpoint)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// ProviderError reports a non-success HTTP status from an external backend.
// Status code and response body are kept verbatim for diagnostics.
type ProviderError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// SchemaValidationError reports structured LLM output that failed to parse
// against the guided schema. It is fatal for the call: silently accepting
// malformed output would corrupt note content.
type SchemaValidationError struct {
	Raw string
	Err error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("structured output failed schema validation: %v", e.Err)
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }

// DocumentNotFoundError reports a lookup miss in the vector index. Expected
// during normal operation, not logged as severe.
type DocumentNotFoundError struct {
	ID string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", e.ID)
}
