// Package mcp implements the Model Context Protocol server for Tigo
// Energy monitoring.
//
// The mcp package provides:
// - MCP server implementation over stdio and SSE transports
// - Tool definitions for configuration, production, health and maintenance data
// - Argument decoding and validation for MCP clients
package mcp
