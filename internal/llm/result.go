package llm

import "time"

// CompletionResult is a transient value pairing generated text with its
// provenance. It is never persisted.
type CompletionResult struct {
	Text      string
	Source    string
	Timestamp time.Time
}
