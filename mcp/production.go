package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// GetCurrentProduction reports today's production next to the live
// system summary.
func (t *Toolset) GetCurrentProduction() (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"Get_Current_Production",
			mcp.WithDescription("Get today's production data and real-time system summary."),
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
				today   *tigo.DataSet
				summary tigo.Summary
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				var err error
				today, err = t.client.GetTodayData(gctx, systemID)
				return err
			})
			g.Go(func() error {
				var err error
				summary, err = t.client.GetSummary(gctx, systemID)
				return err
			})
			if err := g.Wait(); err != nil {
				return toolError("Error fetching current production", err)
			}

			type TodayProduction struct {
				DataPoints           int                  `json:"data_points"`
				Columns              []string             `json:"columns"`
				LatestValues         []map[string]float64 `json:"latest_values"`
				TotalProductionToday float64              `json:"total_production_today"`
			}
			type Production struct {
				SystemID        int             `json:"system_id"`
				Timestamp       string          `json:"timestamp"`
				Summary         tigo.Summary    `json:"summary"`
				TodayProduction TodayProduction `json:"today_production"`
			}

			columns := []string{}
			if !today.Empty() {
				columns = today.Columns
			}

			return jsonResult(Production{
				SystemID:  systemID,
				Timestamp: timestamp(),
				Summary:   summary,
				TodayProduction: TodayProduction{
					DataPoints:           today.Len(),
					Columns:              columns,
					LatestValues:         today.Tail(1),
					TotalProductionToday: today.ColumnTotal(0),
				},
			})
		}
}

// GetPerformanceAnalysis reports efficiency metrics, a panel ranking
// and the panels falling behind.
func (t *Toolset) GetPerformanceAnalysis() (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"Get_Performance_Analysis",
			mcp.WithDescription("Get comprehensive performance analysis including efficiency metrics and panel performance."),
			mcp.WithNumber("system_id", mcp.Description("System ID (optional, uses first system if not provided)")),
			mcp.WithNumber("days_back", mcp.Description("Number of days to analyze (default: 7)")),
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
				args.DaysBack = 7
			}

			systemID, errRes := t.resolveOrError(ctx, args.SystemID)
			if errRes != nil {
				return errRes, nil
			}

			metrics, err := t.client.CalculateSystemEfficiency(ctx, systemID, args.DaysBack)
			if err != nil {
				return toolError("Error fetching performance analysis", err)
			}
			stats, err := t.client.GetPanelPerformance(ctx, systemID, args.DaysBack)
			if err != nil {
				return toolError("Error fetching performance analysis", err)
			}
			under, err := t.client.FindUnderperformingPanels(ctx, systemID, tigo.DefaultThresholdPercent, args.DaysBack)
			if err != nil {
				return toolError("Error fetching performance analysis", err)
			}

			type PanelPerformance struct {
				TotalPanels      int               `json:"total_panels"`
				TopPerformers    []tigo.PanelStats `json:"top_performers"`
				BottomPerformers []tigo.PanelStats `json:"bottom_performers"`
			}
			type PerformanceSummary struct {
				PanelsBelow85Percent int     `json:"panels_below_85_percent"`
				AvgPanelEfficiency   float64 `json:"avg_panel_efficiency"`
			}
			type Analysis struct {
				SystemID              int                         `json:"system_id"`
				AnalysisPeriodDays    int                         `json:"analysis_period_days"`
				Timestamp             string                      `json:"timestamp"`
				EfficiencyMetrics     tigo.EfficiencyMetrics      `json:"efficiency_metrics"`
				PanelPerformance      PanelPerformance            `json:"panel_performance"`
				UnderperformingPanels []tigo.UnderperformingPanel `json:"underperforming_panels"`
				PerformanceSummary    PerformanceSummary          `json:"performance_summary"`
			}

			avgEfficiency := 0.0
			if len(stats) > 0 && stats[0].MeanPower > 0 {
				mean := lo.SumBy(stats, func(s tigo.PanelStats) float64 { return s.MeanPower }) / float64(len(stats))
				avgEfficiency = mean / stats[0].MeanPower * 100
			}

			return jsonResult(Analysis{
				SystemID:           systemID,
				AnalysisPeriodDays: args.DaysBack,
				Timestamp:          timestamp(),
				EfficiencyMetrics:  metrics,
				PanelPerformance: PanelPerformance{
					TotalPanels:      len(stats),
					TopPerformers:    emptyIfNil(lo.Slice(stats, 0, 5)),
					BottomPerformers: emptyIfNil(lo.Slice(stats, len(stats)-5, len(stats))),
				},
				UnderperformingPanels: emptyIfNil(under),
				PerformanceSummary: PerformanceSummary{
					PanelsBelow85Percent: len(under),
					AvgPanelEfficiency:   avgEfficiency,
				},
			})
		}
}

// GetHistoricalData reports production over a trailing window at
// minute, hour or day granularity.
func (t *Toolset) GetHistoricalData() (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"Get_Historical_Data",
			mcp.WithDescription("Get historical production data for analysis."),
			mcp.WithNumber("system_id", mcp.Description("System ID (optional, uses first system if not provided)")),
			mcp.WithNumber("days_back", mcp.Description("Number of days of historical data (default: 30)")),
			mcp.WithString("level", mcp.Description("Data granularity - \"minute\", \"hour\", or \"day\" (default: \"day\")")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				SystemID int    `json:"system_id" mapstructure:"system_id" validate:"omitempty,gte=0"`
				DaysBack int    `json:"days_back" mapstructure:"days_back" validate:"omitempty,gte=1,lte=365"`
				Level    string `json:"level" mapstructure:"level"`
			}
			var args ToolArguments
			if err := decodeArgs(ctx, req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if args.DaysBack == 0 {
				args.DaysBack = 30
			}
			if args.Level == "" {
				args.Level = string(tigo.LevelDay)
			}

			level, err := tigo.ParseLevel(args.Level)
			if err != nil {
				return mcp.NewToolResultError(userMessage(err)), nil
			}

			systemID, errRes := t.resolveOrError(ctx, args.SystemID)
			if errRes != nil {
				return errRes, nil
			}

			data, err := t.client.GetDateRangeData(ctx, systemID, args.DaysBack, level)
			if err != nil {
				return toolError("Error fetching historical data", err)
			}

			type DateRange struct {
				Start *string `json:"start"`
				End   *string `json:"end"`
			}
			type DataSummary struct {
				TotalDataPoints int       `json:"total_data_points"`
				DateRange       DateRange `json:"date_range"`
				Columns         []string  `json:"columns"`
				TotalProduction float64   `json:"total_production"`
				AveragePower    float64   `json:"average_power"`
				PeakPower       float64   `json:"peak_power"`
			}
			type Historical struct {
				SystemID    int                  `json:"system_id"`
				DaysBack    int                  `json:"days_back"`
				Level       string               `json:"level"`
				Timestamp   string               `json:"timestamp"`
				DataSummary DataSummary          `json:"data_summary"`
				SampleData  []map[string]float64 `json:"sample_data"`
			}

			var dateRange DateRange
			if !data.Empty() {
				dateRange.Start = lo.ToPtr(data.Start().Format(time.RFC3339))
				dateRange.End = lo.ToPtr(data.End().Format(time.RFC3339))
			}

			return jsonResult(Historical{
				SystemID:  systemID,
				DaysBack:  args.DaysBack,
				Level:     string(level),
				Timestamp: timestamp(),
				DataSummary: DataSummary{
					TotalDataPoints: data.Len(),
					DateRange:       dateRange,
					Columns:         emptyIfNil(data.Columns),
					TotalProduction: data.ColumnTotal(0),
					AveragePower:    data.ColumnMean(0),
					PeakPower:       data.ColumnMax(0),
				},
				SampleData: data.Head(10),
			})
		}
}
