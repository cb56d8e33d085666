package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"golang.org/x/sync/errgroup"
)

// FetchConfiguration reports the account and every system it can see.
func (t *Toolset) FetchConfiguration() (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"Fetch_Configuration",
			mcp.WithDescription("Query the Tigo API for the runtime status of system"),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var (
				user    tigo.User
				systems []tigo.System
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				user, err = t.client.GetUser(gctx)
				return err
			})
			g.Go(func() error {
				var err error
				systems, err = t.client.ListSystems(gctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return toolError("Error fetching Tigo data", err)
			}

			type Configuration struct {
				User    tigo.User     `json:"user"`
				Systems []tigo.System `json:"systems"`
			}

			return jsonResult(Configuration{
				User:    user,
				Systems: emptyIfNil(systems),
			})
		}
}

// GetSystemDetails reports layout, sources and summary of one system.
func (t *Toolset) GetSystemDetails() (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"Get_System_Details",
			mcp.WithDescription("Get detailed information about a specific system including layout, sources, and summary. If no system_id provided, uses the first available system."),
			mcp.WithNumber("system_id", mcp.Description("System ID (optional, uses first system if not provided)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				SystemID int `json:"system_id" mapstructure:"system_id" validate:"omitempty,gte=0"`
			}
			var args ToolArguments
			if err := decodeArgs(ctx, req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			systemID, errRes := t.resolveOrError(ctx, args.SystemID)
			if errRes != nil {
				return errRes, nil
			}

			info, err := t.client.GetSystemInfo(ctx, systemID)
			if err != nil {
				return toolError("Error fetching system details", err)
			}
			if info.Sources == nil {
				info.Sources = []tigo.Source{}
			}

			return jsonResult(info)
		}
}
