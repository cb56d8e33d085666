package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"github.com/mitchellh/mapstructure"
	"github.com/morikuni/failure/v2"
)

var validate = validator.New()

// Toolset carries the dependencies shared by every tool handler.
type Toolset struct {
	client          *tigo.Client
	defaultSystemID int
}

func InitTools(ts *Toolset) []server.ServerTool {
	tools := []server.ServerTool{}

	tools = append(tools, newServerTool(ts.FetchConfiguration()))
	tools = append(tools, newServerTool(ts.GetSystemDetails()))
	tools = append(tools, newServerTool(ts.GetCurrentProduction()))
	tools = append(tools, newServerTool(ts.GetPerformanceAnalysis()))
	tools = append(tools, newServerTool(ts.GetHistoricalData()))
	tools = append(tools, newServerTool(ts.GetSystemAlerts()))
	tools = append(tools, newServerTool(ts.GetSystemHealth()))
	tools = append(tools, newServerTool(ts.GetMaintenanceInsights()))

	return tools
}

// decodeArgs maps raw tool arguments onto a typed struct and
// validates it.
func decodeArgs(ctx context.Context, raw any, out any) error {
	if err := mapstructure.Decode(raw, out); err != nil {
		return err
	}
	return validate.StructCtx(ctx, out)
}

// resolveSystemID picks the system a tool operates on: an explicit
// argument wins, then the configured default, then the account's
// first system.
func (t *Toolset) resolveSystemID(ctx context.Context, arg int) (int, error) {
	if arg > 0 {
		return arg, nil
	}
	if t.defaultSystemID > 0 {
		return t.defaultSystemID, nil
	}
	return t.client.PrimarySystemID(ctx)
}

// resolveOrError resolves the target system, mapping failure to a
// bare tool error ("No systems found" for an empty account).
func (t *Toolset) resolveOrError(ctx context.Context, arg int) (int, *mcp.CallToolResult) {
	id, err := t.resolveSystemID(ctx, arg)
	if err != nil {
		return 0, mcp.NewToolResultError(userMessage(err))
	}
	return id, nil
}

// jsonResult renders a tool payload as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// toolError renders a failed call as an MCP error result, keeping the
// transport itself error-free.
func toolError(prefix string, err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(prefix + ": " + userMessage(err)), nil
}

func userMessage(err error) string {
	if msg := failure.MessageOf(err); msg != "" {
		return msg.String()
	}
	return err.Error()
}

func timestamp() string {
	return time.Now().Format(time.RFC3339)
}

// emptyIfNil keeps list payloads serializing as [] rather than null.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
