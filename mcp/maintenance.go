package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/matt-dreyer/Tigo-MCP-server/insights"
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"golang.org/x/sync/errgroup"
)

// GetMaintenanceInsights turns performance and alert data into a
// prioritized maintenance plan.
func (t *Toolset) GetMaintenanceInsights() (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"Get_Maintenance_Insights",
			mcp.WithDescription("Get maintenance recommendations based on system performance analysis."),
			mcp.WithNumber("system_id", mcp.Description("System ID (optional, uses first system if not provided)")),
			mcp.WithNumber("threshold_percent", mcp.Description("Underperformance threshold as percent of best panel (default: 85)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				SystemID         int     `json:"system_id" mapstructure:"system_id" validate:"omitempty,gte=0"`
				ThresholdPercent float64 `json:"threshold_percent" mapstructure:"threshold_percent" validate:"omitempty,gt=0,lte=100"`
			}
			var args ToolArguments
			if err := decodeArgs(ctx, req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if args.ThresholdPercent == 0 {
				args.ThresholdPercent = tigo.DefaultThresholdPercent
			}

			systemID, errRes := t.resolveOrError(ctx, args.SystemID)
			if errRes != nil {
				return errRes, nil
			}

			var (
				under   []tigo.UnderperformingPanel
				metrics tigo.EfficiencyMetrics
				alerts  []tigo.Alert
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				under, err = t.client.FindUnderperformingPanels(gctx, systemID, args.ThresholdPercent, 7)
				return err
			})
			g.Go(func() error {
				var err error
				metrics, err = t.client.CalculateSystemEfficiency(gctx, systemID, 30)
				return err
			})
			g.Go(func() error {
				var err error
				alerts, err = t.client.GetAlerts(gctx, systemID, time.Time{})
				return err
			})
			if err := g.Wait(); err != nil {
				return toolError("Error fetching maintenance insights", err)
			}

			report := insights.BuildMaintenance(under, metrics, insights.ActiveAlerts(alerts), args.ThresholdPercent)

			type Maintenance struct {
				SystemID  int    `json:"system_id"`
				Timestamp string `json:"timestamp"`
				insights.MaintenanceReport
			}

			return jsonResult(Maintenance{
				SystemID:          systemID,
				Timestamp:         timestamp(),
				MaintenanceReport: report,
			})
		}
}
