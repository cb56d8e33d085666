// Package cli implements the command-line interface for tigo-mcp-server.
//
// The cli package provides:
// - The MCP server entrypoint over stdio and SSE transports
// - Monitoring commands rendered as markdown in the terminal
// - A live production dashboard
// - CSV export of production data
// - Prometheus metrics exposure alongside the server
package cli
