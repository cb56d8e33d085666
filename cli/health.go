package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/matt-dreyer/Tigo-MCP-server/insights"
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Grade system health from alerts and panel efficiency",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
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
		alerts  []tigo.Alert
		metrics tigo.EfficiencyMetrics
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		alerts, err = client.GetAlerts(ctx, systemID, time.Time{})
		return err
	})
	eg.Go(func() error {
		var err error
		metrics, err = client.CalculateSystemEfficiency(ctx, systemID, 7)
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	status := insights.GradeHealth(len(alerts), metrics.AverageEfficiencyPercent)
	recs := insights.HealthRecommendations(status, len(alerts), metrics.AverageEfficiencyPercent)

	return show(healthMarkdown(status, alerts, metrics, recs))
}

func healthMarkdown(status insights.HealthStatus, alerts []tigo.Alert, metrics tigo.EfficiencyMetrics, recs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# System Health: %s\n\n", status)

	active := insights.ActiveAlerts(alerts)
	fmt.Fprintf(&b, "- **Alerts**: %d total, %d active\n", len(alerts), len(active))
	fmt.Fprintf(&b, "- **Panel efficiency (7d)**: %.1f%%\n", metrics.AverageEfficiencyPercent)
	if metrics.BestPanel != "" {
		fmt.Fprintf(&b, "- **Best panel**: %s at %s mean\n", metrics.BestPanel, insights.FormatPower(metrics.BestMeanPowerW))
	}

	if len(recs) > 0 {
		b.WriteString("\n## Recommendations\n\n")
		for _, rec := range recs {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	if len(active) > 0 {
		b.WriteString("\n## Active Alerts\n\n")
		for _, alert := range lo.Slice(active, 0, 5) {
			line := alert.Title
			if alert.AddedOn != "" {
				line += " (since " + alert.AddedOn + ")"
			}
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}
	return b.String()
}
