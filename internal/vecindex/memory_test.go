package vecindex

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/embedding"
)

func testMemory(t *testing.T) *Memory {
	t.Helper()
	return NewMemory(embedding.NewFake(16))
}

func TestMemory_StoreAndFindSimilar(t *testing.T) {
	m := testMemory(t)
	ctx := context.Background()
	docs := []Document{
		{ID: "1", Content: "the capital of France is Paris"},
		{ID: "2", Content: "goroutines are lightweight threads"},
		{ID: "3", Content: "Paris is the capital of France"},
	}
	if err := m.StoreBatch(ctx, docs); err != nil {
		t.Fatalf("StoreBatch: %v", err)
	}

	results, err := m.FindSimilar(ctx, SearchQuery{Text: "the capital of France is Paris", MaxResults: 2})
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Document.ID != "1" {
		t.Errorf("top result = %q, want exact match %q", results[0].Document.ID, "1")
	}
	if results[0].Score < results[1].Score {
		t.Error("results not ranked descending")
	}
}

func TestMemory_StoreIsUpsert(t *testing.T) {
	m := testMemory(t)
	ctx := context.Background()
	_ = m.Store(ctx, Document{ID: "x", Content: "old"})
	_ = m.Store(ctx, Document{ID: "x", Content: "new"})

	doc, err := m.FindByID(ctx, "x")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if doc.Content != "new" {
		t.Errorf("content = %q, want %q", doc.Content, "new")
	}
	results, _ := m.FindSimilar(ctx, SearchQuery{Text: "new"})
	if len(results) != 1 {
		t.Fatalf("got %d results after upsert, want 1", len(results))
	}
}

func TestMemory_FindByID_NotFound(t *testing.T) {
	m := testMemory(t)
	_, err := m.FindByID(context.Background(), "missing")
	var nf *apperr.DocumentNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want DocumentNotFoundError", err)
	}
	if nf.ID != "missing" {
		t.Errorf("id = %q, want %q", nf.ID, "missing")
	}
}

func TestMemory_EmptyBatchIsNoop(t *testing.T) {
	m := testMemory(t)
	if err := m.StoreBatch(context.Background(), nil); err != nil {
		t.Fatalf("StoreBatch(nil): %v", err)
	}
}
