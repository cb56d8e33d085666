package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
)

// Name is the server name announced to MCP clients.
const Name = "Tigo"

// Server represents the MCP server for Tigo Energy monitoring
type Server struct {
	server *server.MCPServer
}

// NewServer creates a new MCP server instance backed by the given
// client. A non-zero defaultSystemID pins every tool to that system;
// zero falls back to the account's first system per call.
func NewServer(client *tigo.Client, defaultSystemID int, version string) *Server {
	s := server.NewMCPServer(Name, version, server.WithToolCapabilities(true))

	registerTools(s, &Toolset{
		client:          client,
		defaultSystemID: defaultSystemID,
	})

	return &Server{
		server: s,
	}
}

// Run starts the MCP server on stdio
func (s *Server) Run() error {
	return server.ServeStdio(s.server)
}

// RunSSE serves the MCP server over SSE until ctx is canceled.
func (s *Server) RunSSE(ctx context.Context, addr, baseURL string) error {
	sse := server.NewSSEServer(s.server, server.WithBaseURL(baseURL))

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return sse.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// registerTools registers all available tools with the MCP server
func registerTools(s *server.MCPServer, ts *Toolset) {
	tools := InitTools(ts)
	s.AddTools(tools...)
}

func newServerTool(tool mcp.Tool, handler server.ToolHandlerFunc) server.ServerTool {
	return server.ServerTool{
		Tool:    tool,
		Handler: handler,
	}
}
