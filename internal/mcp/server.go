// Package mcp exposes the portal's manifest, geo export and copilot to
// MCP clients over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/aibandobast/bandobast/internal/copilot"
	"github.com/aibandobast/bandobast/internal/geo"
	"github.com/aibandobast/bandobast/internal/manifest"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Deps are the services behind the tools. A nil dependency makes the
// matching tools report an error instead of failing registration.
type Deps struct {
	Index        *manifest.Index
	Geo          *geo.Store
	Copilot      *copilot.Service
	DocumentName string
	Logger       *zap.Logger
}

// Server wraps an MCP server that exposes bandobast tools.
type Server struct {
	deps Deps
	mcp  *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	s := &Server{deps: deps}

	s.mcp = server.NewMCPServer(
		"bandobast",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(classifyFilenameTool, s.handleClassifyFilename)
	s.mcp.AddTool(searchManifestTool, s.handleSearchManifest)
	s.mcp.AddTool(getMetricsTool, s.handleGetMetrics)
	s.mcp.AddTool(exportKMLTool, s.handleExportKML)
	s.mcp.AddTool(askCopilotTool, s.handleAskCopilot)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
