// Package mcpserver provides an MCP (Model Context Protocol) server
// exposing the flashcard tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/notesvc"
)

// Server wraps the MCP server with flashcard tools.
type Server struct {
	mcp *server.MCPServer
	svc *notesvc.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *notesvc.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("format_note",
		mcp.WithDescription("Run the reformatting pipeline on a note and return the "+
			"original and proposed content side by side. Nothing is persisted."),
		mcp.WithNumber("note_id", mcp.Required(), mcp.Description("Collection note id")),
	), s.formatNote)

	s.mcp.AddTool(mcp.NewTool("find_duplicates",
		mcp.WithDescription("Find the closest semantic duplicate of a note in the collection."),
		mcp.WithNumber("note_id", mcp.Required(), mcp.Description("Collection note id")),
	), s.findDuplicates)

	s.mcp.AddTool(mcp.NewTool("count_review_notes",
		mcp.WithDescription("Count the notes currently flagged for review."),
	), s.countReviewNotes)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) formatNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("note_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.FormatNote(ctx, int64(id))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("note not found: %d", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) findDuplicates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("note_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dups, err := s.svc.FindDuplicates(ctx, int64(id))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("note not found: %d", id)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(dups) == 0 {
		return mcp.NewToolResultText("no duplicates found"), nil
	}
	out, _ := json.MarshalIndent(dups, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) countReviewNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	count, err := s.svc.ReviewCount(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d notes flagged for review", count)), nil
}
