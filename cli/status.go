package cli

import (
	"fmt"
	"strings"

	"github.com/matt-dreyer/Tigo-MCP-server/insights"
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current production snapshot",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
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
		today   *tigo.DataSet
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
		today, err = client.GetTodayData(ctx, systemID)
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	return show(statusMarkdown(system, summary, today))
}

func statusMarkdown(system tigo.System, summary tigo.Summary, today *tigo.DataSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", system.Name)
	if system.Status != "" {
		fmt.Fprintf(&b, "Status: %s\n\n", system.Status)
	}

	fmt.Fprintf(&b, "- **Current power**: %s\n", insights.FormatPower(float64(summary.LastPowerDC)))
	fmt.Fprintf(&b, "- **Energy today**: %s\n", insights.FormatEnergy(float64(summary.DailyEnergyDC)))
	if !today.Empty() {
		fmt.Fprintf(&b, "- **Peak today**: %s\n", insights.FormatPower(today.ColumnMax(0)))
	}
	fmt.Fprintf(&b, "- **Lifetime energy**: %s\n", insights.FormatEnergy(float64(summary.LifetimeEnergyDC)))
	if summary.UpdatedOn != "" {
		fmt.Fprintf(&b, "- **Last report**: %s\n", summary.UpdatedOn)
	}
	return b.String()
}
