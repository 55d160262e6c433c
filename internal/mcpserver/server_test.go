package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/ansuz/internal/cardstore"
	"github.com/starford/ansuz/internal/formatter"
	"github.com/starford/ansuz/internal/llm"
	"github.com/starford/ansuz/internal/notesvc"
)

func testServer(t *testing.T, responses ...string) (*Server, *cardstore.DB) {
	t.Helper()

	db, err := cardstore.Open(filepath.Join(t.TempDir(), "collection.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	svc := notesvc.New(db, formatter.New(llm.NewScripted(responses...)), nil, nil, "")
	return New(svc), db
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go doesn't expose a direct "call tool" test helper, so we call the
	// handler functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "format_note":
		result, err = srv.formatNote(ctx, req)
	case "find_duplicates":
		result, err = srv.findDuplicates(ctx, req)
	case "count_review_notes":
		result, err = srv.countReviewNotes(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func seedNote(t *testing.T, db *cardstore.DB, front, back string, flagged bool) *cardstore.Note {
	t.Helper()
	n := &cardstore.Note{
		GUID:   front,
		Model:  cardstore.ModelBasic,
		Fields: map[string]string{"Front": front, "Back": back},
	}
	if err := db.AddNote(n); err != nil {
		t.Fatalf("AddNote: %v", err)
	}
	if flagged {
		if err := db.SetFlag(n.ID, cardstore.FlagReview); err != nil {
			t.Fatalf("SetFlag: %v", err)
		}
	}
	return n
}

func TestFormatNoteTool(t *testing.T) {
	srv, db := testServer(t, `{"front":"Clean front","back":"Clean back"}`)
	n := seedNote(t, db, "messy front", "messy back", false)

	r := callTool(t, srv, "format_note", map[string]interface{}{"note_id": float64(n.ID)})
	if r.IsError {
		t.Fatalf("tool errored: %s", resultText(r))
	}

	var res notesvc.FormatResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatalf("bad tool output: %v", err)
	}
	if res.Formatted.Front != "Clean front" {
		t.Errorf("formatted front = %q", res.Formatted.Front)
	}
	if res.Original.Front != "messy front" {
		t.Errorf("original front = %q", res.Original.Front)
	}
}

func TestFormatNoteTool_UnknownNote(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "format_note", map[string]interface{}{"note_id": float64(99)})
	if !r.IsError {
		t.Fatal("expected error result")
	}
	if !strings.Contains(resultText(r), "not found") {
		t.Errorf("error text = %q", resultText(r))
	}
}

func TestFormatNoteTool_MissingArg(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "format_note", map[string]interface{}{})
	if !r.IsError {
		t.Fatal("expected error result for missing note_id")
	}
}

func TestFindDuplicatesTool_NoMatches(t *testing.T) {
	srv, db := testServer(t)
	n := seedNote(t, db, "front", "back", false)

	r := callTool(t, srv, "find_duplicates", map[string]interface{}{"note_id": float64(n.ID)})
	if r.IsError {
		t.Fatalf("tool errored: %s", resultText(r))
	}
	if resultText(r) != "no duplicates found" {
		t.Errorf("text = %q", resultText(r))
	}
}

func TestCountReviewNotesTool(t *testing.T) {
	srv, db := testServer(t)
	seedNote(t, db, "a", "b", true)
	seedNote(t, db, "c", "d", true)
	seedNote(t, db, "e", "f", false)

	r := callTool(t, srv, "count_review_notes", map[string]interface{}{})
	if r.IsError {
		t.Fatalf("tool errored: %s", resultText(r))
	}
	if resultText(r) != "2 notes flagged for review" {
		t.Errorf("text = %q", resultText(r))
	}
}
