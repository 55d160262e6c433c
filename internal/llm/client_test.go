package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
)

func TestRun_CompletionMode(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/completions" {
			t.Errorf("path = %q, want /v1/completions", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"text":"generated"}],"model":"m","usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Model: "m", MaxTokens: 200})
	text, err := c.Run(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if text != "generated" {
		t.Errorf("text = %q, want %q", text, "generated")
	}
	if got["prompt"] != "hello" {
		t.Errorf("prompt = %v, want %q", got["prompt"], "hello")
	}
	if _, ok := got["messages"]; ok {
		t.Error("completion mode must not send messages")
	}
}

func TestRun_ChatMode(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q, want /v1/chat/completions", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"chat reply"}}]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Mode: ModeChat, Model: "m"})
	text, err := c.Run(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if text != "chat reply" {
		t.Errorf("text = %q, want %q", text, "chat reply")
	}
	msgs, ok := got["messages"].([]any)
	if !ok || len(msgs) != 1 {
		t.Fatalf("messages = %v, want one entry", got["messages"])
	}
}

func TestRun_OptionalParamsAndGuidedJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"text":"ok"}]}`))
	}))
	defer srv.Close()

	topP := 0.9
	topK := 40
	c := New(Config{BaseURL: srv.URL, Model: "m", TopP: &topP, TopK: &topK})
	schema := map[string]any{"type": "object"}
	if _, err := c.Run(context.Background(), "p", WithGuidedJSON(schema)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got["top_p"] != 0.9 {
		t.Errorf("top_p = %v, want 0.9", got["top_p"])
	}
	if got["top_k"] != float64(40) {
		t.Errorf("top_k = %v, want 40", got["top_k"])
	}
	if _, ok := got["min_p"]; ok {
		t.Error("min_p was not configured and must be absent")
	}
	if _, ok := got["guided_json"]; !ok {
		t.Error("guided_json missing from payload")
	}
}

func TestRun_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Model: "m"})
	_, err := c.Run(context.Background(), "p")
	var pe *apperr.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want ProviderError", err)
	}
	if pe.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", pe.StatusCode)
	}
}

func TestRun_ConnectivityError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing is listening anymore

	c := New(Config{BaseURL: url, Model: "m"})
	_, err := c.Run(context.Background(), "p")
	var ce *apperr.ConnectivityError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want ConnectivityError", err)
	}
	if ce.Endpoint == "" {
		t.Error("connectivity error must name the endpoint")
	}
}

func TestRun_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, Model: "m"})
	if _, err := c.Run(context.Background(), "p"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestScripted_ReplaysAndExhausts(t *testing.T) {
	s := NewScripted("one", "two")
	ctx := context.Background()

	if text, _ := s.Run(ctx, "a"); text != "one" {
		t.Errorf("first = %q, want %q", text, "one")
	}
	if text, _ := s.Run(ctx, "b"); text != "two" {
		t.Errorf("second = %q, want %q", text, "two")
	}
	if _, err := s.Run(ctx, "c"); err == nil {
		t.Fatal("exhausted scripted client must fail loudly")
	}
	if got := s.Prompts(); len(got) != 3 || got[0] != "a" {
		t.Errorf("prompts = %v", got)
	}
}
