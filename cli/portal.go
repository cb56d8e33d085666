package cli

import (
	"fmt"

	"github.com/morikuni/failure/v2"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

// Per-system dashboards sit behind the portal login.
const portalURL = "https://platform.tigoenergy.com"

var portalCmd = &cobra.Command{
	Use:   "portal",
	Short: "Open the Tigo Energy web portal in the browser",
	Args:  cobra.NoArgs,
	RunE:  runPortal,
}

func init() {
	rootCmd.AddCommand(portalCmd)
}

func runPortal(cmd *cobra.Command, args []string) error {
	fmt.Printf("Opening portal: %s\n", portalURL)
	if err := browser.OpenURL(portalURL); err != nil {
		return failure.Wrap(err)
	}
	return nil
}
