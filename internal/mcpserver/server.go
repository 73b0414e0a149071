// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the recorded page graph to LLM tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/storage"
)

// Server wraps the MCP server with graph query tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	idx   index.GraphIndex
}

// New creates a new MCP server with all tools registered.
func New(store storage.Provider, idx index.GraphIndex, version string) *Server {
	s := &Server{store: store, idx: idx}

	s.mcp = server.NewMCPServer(
		"raido",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Full-text search through page titles, text and tags of the last build."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchPages)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read the markdown source of a page by its canonical path (e.g. /blog/post-a)."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Canonical page path")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("List markdown source documents, optionally inside one folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listSources)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all pages that link to the specified page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Canonical path of the page to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("child_pages",
		mcp.WithDescription("List the pages whose nearest index page is the specified page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Canonical path of an index page (e.g. / or /blog)")),
	), s.childPages)

	s.mcp.AddTool(mcp.NewTool("pages_by_tag",
		mcp.WithDescription("List all pages carrying a tag. Without a tag, list every tag with its page count."),
		mcp.WithString("tag", mcp.Description("Tag name")),
	), s.pagesByTag)

	s.mcp.AddTool(mcp.NewTool("get_page_format",
		mcp.WithDescription("Returns the page source format understood by the site builder. "+
			"Call this before writing new documents."),
	), s.getPageFormat)

	s.mcp.AddResource(
		mcp.NewResource("raido://page-format", "Page Format",
			mcp.WithResourceDescription("Markdown source format understood by the site builder."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPageFormatResource,
	)

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

func canonical(p string) string {
	return path.Clean("/" + strings.TrimSpace(p))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func pageList(rows []index.PageRow, empty string) *mcp.CallToolResult {
	if len(rows) == 0 {
		return mcp.NewToolResultText(empty)
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, r.Path+"\t"+r.Title)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n"))
}

func (s *Server) searchPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 20)
	results, err := s.idx.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	return jsonResult(results)
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.idx.Page(ctx, canonical(p))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", p)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(page.Source)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read %s: %v", page.Source, err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listSources(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := req.GetString("folder", "")

	metas, err := s.store.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	paths := make([]string, 0, len(metas))
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := s.idx.Backlinks(ctx, canonical(p))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return pageList(rows, "no backlinks found"), nil
}

func (s *Server) childPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := s.idx.Children(ctx, canonical(p))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return pageList(rows, "no child pages found"), nil
}

func (s *Server) pagesByTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := strings.TrimSpace(req.GetString("tag", ""))
	if tag == "" {
		tags, err := s.idx.Tags(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if tags == nil {
			tags = []index.TagCount{}
		}
		return jsonResult(tags)
	}
	rows, err := s.idx.PagesByTag(ctx, tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return pageList(rows, "no pages tagged "+tag), nil
}

func (s *Server) getPageFormat(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PageFormat), nil
}

func (s *Server) readPageFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://page-format",
			MIMEType: "text/markdown",
			Text:     PageFormat,
		},
	}, nil
}
