package llm

import (
	"context"
	"errors"
	"sync"
)

// Scripted is a test double that replays canned completions in order. It
// records every prompt it receives and fails loudly once the queue is
// exhausted, so a test can never silently consume a stale response.
type Scripted struct {
	mu        sync.Mutex
	responses []string
	prompts   []string
}

// NewScripted creates a scripted client that will return the given responses
// one per call.
func NewScripted(responses ...string) *Scripted {
	return &Scripted{responses: responses}
}

// Run pops the next canned response.
func (s *Scripted) Run(_ context.Context, prompt string, _ ...RunOption) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.responses) == 0 {
		return "", errors.New("llm: no scripted responses left")
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	return next, nil
}

// Prompts returns the prompts received so far.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}
