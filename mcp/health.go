package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/matt-dreyer/Tigo-MCP-server/insights"
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// GetSystemAlerts reports recent alerts next to the alert catalog.
func (t *Toolset) GetSystemAlerts() (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"Get_System_Alerts",
			mcp.WithDescription("Get recent alerts and system health information."),
			mcp.WithNumber("system_id", mcp.Description("System ID (optional, uses first system if not provided)")),
			mcp.WithNumber("days_back", mcp.Description("Alert lookback window in days (default: 30)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				SystemID int `json:"system_id" mapstructure:"system_id" validate:"omitempty,gte=0"`
				DaysBack int `json:"days_back" mapstructure:"days_back" validate:"omitempty,gte=1,lte=365"`
			}
			var args ToolArguments
			if err := decodeArgs(ctx, req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if args.DaysBack == 0 {
				args.DaysBack = 30
			}

			systemID, errRes := t.resolveOrError(ctx, args.SystemID)
			if errRes != nil {
				return errRes, nil
			}

			since := time.Now().AddDate(0, 0, -args.DaysBack)
			alerts, err := t.client.GetAlerts(ctx, systemID, since)
			if err != nil {
				return toolError("Error fetching system alerts", err)
			}
			alertTypes, err := t.client.GetAlertTypes(ctx)
			if err != nil {
				return toolError("Error fetching system alerts", err)
			}

			type AlertSummary struct {
				TotalAlerts  int          `json:"total_alerts"`
				ActiveAlerts int          `json:"active_alerts"`
				RecentAlerts []tigo.Alert `json:"recent_alerts"`
			}
			type Alerts struct {
				SystemID     int              `json:"system_id"`
				DaysBack     int              `json:"days_back"`
				Timestamp    string           `json:"timestamp"`
				Alerts       []tigo.Alert     `json:"alerts"`
				AlertTypes   []tigo.AlertType `json:"alert_types"`
				AlertSummary AlertSummary     `json:"alert_summary"`
			}

			return jsonResult(Alerts{
				SystemID:   systemID,
				DaysBack:   args.DaysBack,
				Timestamp:  timestamp(),
				Alerts:     emptyIfNil(alerts),
				AlertTypes: emptyIfNil(alertTypes),
				AlertSummary: AlertSummary{
					TotalAlerts:  len(alerts),
					ActiveAlerts: len(insights.ActiveAlerts(alerts)),
					RecentAlerts: emptyIfNil(lo.Slice(alerts, 0, 5)),
				},
			})
		}
}

// GetSystemHealth grades overall condition from the live summary,
// alert load and panel efficiency.
func (t *Toolset) GetSystemHealth() (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"Get_System_Health",
			mcp.WithDescription("Get comprehensive system health status combining multiple data sources."),
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

			var (
				summary tigo.Summary
				alerts  []tigo.Alert
				metrics tigo.EfficiencyMetrics
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				summary, err = t.client.GetSummary(gctx, systemID)
				return err
			})
			g.Go(func() error {
				var err error
				alerts, err = t.client.GetAlerts(gctx, systemID, time.Time{})
				return err
			})
			g.Go(func() error {
				var err error
				metrics, err = t.client.CalculateSystemEfficiency(gctx, systemID, 7)
				return err
			})
			if err := g.Wait(); err != nil {
				return toolError("Error fetching system health", err)
			}

			alertCount := len(alerts)
			efficiencyPercent := metrics.AverageEfficiencyPercent
			status := insights.GradeHealth(alertCount, efficiencyPercent)

			systemStatus := summary.Status
			if systemStatus == "" {
				systemStatus = "Unknown"
			}

			type HealthMetrics struct {
				ActiveAlerts      int     `json:"active_alerts"`
				EfficiencyPercent float64 `json:"efficiency_percent"`
				SystemStatus      string  `json:"system_status"`
			}
			type Details struct {
				Summary            tigo.Summary           `json:"summary"`
				RecentAlerts       []tigo.Alert           `json:"recent_alerts"`
				EfficiencyAnalysis tigo.EfficiencyMetrics `json:"efficiency_analysis"`
			}
			type Health struct {
				SystemID        int                   `json:"system_id"`
				Timestamp       string                `json:"timestamp"`
				OverallHealth   insights.HealthStatus `json:"overall_health"`
				HealthMetrics   HealthMetrics         `json:"health_metrics"`
				Recommendations []string              `json:"recommendations"`
				Details         Details               `json:"details"`
			}

			return jsonResult(Health{
				SystemID:      systemID,
				Timestamp:     timestamp(),
				OverallHealth: status,
				HealthMetrics: HealthMetrics{
					ActiveAlerts:      alertCount,
					EfficiencyPercent: efficiencyPercent,
					SystemStatus:      systemStatus,
				},
				Recommendations: insights.HealthRecommendations(status, alertCount, efficiencyPercent),
				Details: Details{
					Summary:            summary,
					RecentAlerts:       emptyIfNil(lo.Slice(alerts, 0, 3)),
					EfficiencyAnalysis: metrics,
				},
			})
		}
}
