package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/matt-dreyer/Tigo-MCP-server/insights"
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	reportDaysFlag      int
	reportThresholdFlag float64

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Full performance and maintenance report",
		Long: `Build a performance and maintenance report: per-panel production over
the analysis window, system efficiency, underperforming panels, and
prioritized maintenance items.`,
		Args: cobra.NoArgs,
		RunE: runReport,
	}
)

func init() {
	reportCmd.Flags().IntVar(&reportDaysFlag, "days", 30, "Analysis window in days")
	reportCmd.Flags().Float64Var(&reportThresholdFlag, "threshold", tigo.DefaultThresholdPercent, "Underperformance threshold as a percentage of the best panel")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	client, cfg, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	systemID, err := resolveSystem(ctx, client, cfg)
	if err != nil {
		return err
	}

	var (
		system  tigo.System
		summary tigo.Summary
		stats   []tigo.PanelStats
		metrics tigo.EfficiencyMetrics
		under   []tigo.UnderperformingPanel
		alerts  []tigo.Alert
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		system, err = client.GetSystem(ctx, systemID)
		return err
	})
	eg.Go(func() error {
		var err error
		summary, err = client.GetSummary(ctx, systemID)
		return err
	})
	eg.Go(func() error {
		var err error
		stats, err = client.GetPanelPerformance(ctx, systemID, reportDaysFlag)
		return err
	})
	eg.Go(func() error {
		var err error
		metrics, err = client.CalculateSystemEfficiency(ctx, systemID, reportDaysFlag)
		return err
	})
	eg.Go(func() error {
		var err error
		under, err = client.FindUnderperformingPanels(ctx, systemID, reportThresholdFlag, reportDaysFlag)
		return err
	})
	eg.Go(func() error {
		var err error
		alerts, err = client.GetAlerts(ctx, systemID, time.Time{})
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	report := insights.BuildMaintenance(under, metrics, insights.ActiveAlerts(alerts), reportThresholdFlag)
	return page(reportMarkdown(system, summary, stats, metrics, under, report))
}

func reportMarkdown(system tigo.System, summary tigo.Summary, stats []tigo.PanelStats, metrics tigo.EfficiencyMetrics, under []tigo.UnderperformingPanel, report insights.MaintenanceReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %d Day Report\n\n", system.Name, metrics.DaysAnalyzed)

	b.WriteString("## Production\n\n")
	fmt.Fprintf(&b, "- **Current power**: %s\n", insights.FormatPower(float64(summary.LastPowerDC)))
	fmt.Fprintf(&b, "- **Energy today**: %s\n", insights.FormatEnergy(float64(summary.DailyEnergyDC)))
	fmt.Fprintf(&b, "- **Lifetime energy**: %s\n", insights.FormatEnergy(float64(summary.LifetimeEnergyDC)))

	b.WriteString("\n## Efficiency\n\n")
	fmt.Fprintf(&b, "- **Average panel efficiency**: %.1f%%\n", metrics.AverageEfficiencyPercent)
	fmt.Fprintf(&b, "- **Energy in window**: %s\n", insights.FormatEnergy(metrics.TotalEnergyWh))
	if metrics.BestPanel != "" {
		fmt.Fprintf(&b, "- **Best panel**: %s at %s mean\n", metrics.BestPanel, insights.FormatPower(metrics.BestMeanPowerW))
	}

	if len(stats) > 0 {
		b.WriteString("\n## Panels\n\n")
		b.WriteString("| Panel | Mean | Peak | Energy | % of best |\n")
		b.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, s := range stats {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %.1f%% |\n",
				s.PanelID,
				insights.FormatPower(s.MeanPower),
				insights.FormatPower(s.PeakPower),
				insights.FormatEnergy(s.EnergyWh),
				s.PercentOfBest,
			)
		}
	}

	b.WriteString("\n## Underperforming Panels\n\n")
	if len(under) == 0 {
		b.WriteString("None below threshold\n")
	} else {
		for _, p := range under {
			fmt.Fprintf(&b, "- **%s**: %.1f%% of best (%s mean)\n",
				p.PanelID, p.PercentOfBest, insights.FormatPower(p.MeanPower))
		}
	}

	fmt.Fprintf(&b, "\n## Maintenance: %s priority\n\n", report.OverallPriority)
	fmt.Fprintf(&b, "Priority score %d with %d open items.\n\n", report.PriorityScore, report.Summary.TotalIssues)
	for _, item := range report.Items {
		fmt.Fprintf(&b, "- **%s** (%s): %s. %s\n", item.Category, item.Priority, item.Issue, item.Recommendation)
	}
	fmt.Fprintf(&b, "\nNext: %s\n", report.NextAction)

	return b.String()
}
