// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the note index for LLM integration via stdio transport. The
// surface is read-only: notes are authored elsewhere, this system only
// indexes them.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/search"
)

// Server wraps the MCP server with ansuz tools.
type Server struct {
	mcp    *server.MCPServer
	store  index.Store
	engine *search.Engine
}

// New creates a new MCP server with all ansuz tools registered.
func New(store index.Store, engine *search.Engine) *Server {
	s := &Server{store: store, engine: engine}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Weighted full-text search across note titles, tags, paths, and content. "+
			"Returns ranked matches plus related-term suggestions."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List every indexed note, newest modification first. "+
			"Notes whose backing file was deleted are flagged as missing."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Return the indexed plain-text content of a note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the indexed note")),
	), s.readNote)

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

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 20)

	results, related, err := s.engine.Search(query, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{
		"results": results,
		"related": related,
	}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	results, err := s.engine.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var lines []string
	for _, r := range results {
		line := r.Path + "\t" + r.Title
		if r.Missing {
			line += "\t(missing)"
		}
		lines = append(lines, line)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.store.ByPath(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if doc == nil {
		return mcp.NewToolResultError(fmt.Sprintf("not indexed: %s", path)), nil
	}
	return mcp.NewToolResultText(doc.Content), nil
}
