package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/inveskit/trade-mentor/internal/httpapi"
)

// Server wraps the MCP server with its pipeline dependency.
type Server struct {
	server  *mcp.Server
	service httpapi.Service
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(service httpapi.Service) *Server {
	impl := &mcp.Implementation{
		Name:    "trade-mentor-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_trades",
		Description: "Analyze a stock trade history against a YouTube video's investment strategy (or general principles) and return per-instrument advice plus an overall 0-100 score.",
	}, makeAnalyzeHandler(service))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_video_id",
		Description: "Resolve a YouTube URL (watch, short-link, or embed form) to its 11-character video ID.",
	}, makeExtractVideoIDHandler())

	mcp.AddTool(server, &mcp.Tool{
		Name:        "test_video",
		Description: "Check whether a YouTube video has a retrievable transcript before running an analysis against it.",
	}, makeTestVideoHandler(service))

	return &Server{
		server:  server,
		service: service,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
