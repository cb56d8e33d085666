package cli

import (
	"fmt"
	"strings"

	"github.com/matt-dreyer/Tigo-MCP-server/insights"
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"github.com/spf13/cobra"
)

var systemsCmd = &cobra.Command{
	Use:   "systems",
	Short: "List the systems visible to the account",
	Args:  cobra.NoArgs,
	RunE:  runSystems,
}

func init() {
	rootCmd.AddCommand(systemsCmd)
}

func runSystems(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	systems, err := client.ListSystems(cmd.Context())
	if err != nil {
		return err
	}

	return show(systemsMarkdown(systems))
}

func systemsMarkdown(systems []tigo.System) string {
	var b strings.Builder
	b.WriteString("# Tigo Systems\n\n")

	if len(systems) == 0 {
		b.WriteString("No systems found\n")
		return b.String()
	}

	b.WriteString("| ID | Name | Status | Rating |\n")
	b.WriteString("| --- | --- | --- | --- |\n")
	for _, s := range systems {
		status := s.Status
		if status == "" {
			status = "-"
		}
		rating := "-"
		if s.PowerRating > 0 {
			rating = insights.FormatPower(float64(s.PowerRating))
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", s.SystemID, s.Name, status, rating)
	}
	return b.String()
}
