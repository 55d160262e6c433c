package embedding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
)

func TestFake_Deterministic(t *testing.T) {
	f := NewFake(16)
	a, err := f.Encode(context.Background(), "same input")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, _ := f.Encode(context.Background(), "same input")
	if len(a) != 16 {
		t.Fatalf("len = %d, want 16", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestFake_DifferentInputsDiffer(t *testing.T) {
	f := NewFake(16)
	a, _ := f.Encode(context.Background(), "first")
	b, _ := f.Encode(context.Background(), "second")
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("distinct inputs produced identical vectors")
	}
}

func TestOpenAI_Encode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer srv.Close()

	c, err := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, Model: "m", Dimension: 3})
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	vec, err := c.Encode(context.Background(), "text")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(vec) != 3 || vec[1] != 0.2 {
		t.Errorf("vec = %v", vec)
	}
}

func TestOpenAI_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad model", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, _ := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, Model: "m", Dimension: 3})
	_, err := c.Encode(context.Background(), "text")
	var pe *apperr.ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want ProviderError", err)
	}
}

func TestOpenAI_DimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2]}]}`))
	}))
	defer srv.Close()

	c, _ := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, Model: "m", Dimension: 3})
	if _, err := c.Encode(context.Background(), "text"); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}
