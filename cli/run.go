package cli

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/matt-dreyer/Tigo-MCP-server/config"
	"github.com/matt-dreyer/Tigo-MCP-server/tigo"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	// Command line flags shared by every subcommand
	systemFlag int

	// Root command. Running the bare binary serves MCP over stdio,
	// which is what desktop assistant configurations expect.
	rootCmd = &cobra.Command{
		Use:           "tigo-mcp-server",
		Short:         "MCP server and monitoring CLI for Tigo Energy systems",
		SilenceErrors: true,
		Long: `tigo-mcp-server exposes Tigo Energy solar monitoring to MCP clients.

Started without arguments it speaks MCP over stdio, so an MCP client
configuration can point at the bare binary. The subcommands offer the
same monitoring data directly in the terminal.

Credentials come from TIGO_USERNAME and TIGO_PASSWORD, set either in
the environment or in a .env file in the working directory.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	// Version information
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Version command
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print detailed version information about tigo-mcp-server",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tigo-mcp-server version %s\n", Version)
			fmt.Printf("  commit: %s\n", Commit)
			fmt.Printf("  built:  %s\n", Date)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().IntVarP(&systemFlag, "system", "s", 0, "System ID to target (defaults to TIGO_SYSTEM_ID or the primary system)")
	rootCmd.AddCommand(versionCmd)

	// Module builds carry the revision even without ldflags
	if Commit == "none" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if vcsv, ok := lo.Find(info.Settings, func(s debug.BuildSetting) bool {
				return s.Key == "vcs.revision"
			}); ok && vcsv.Value != "" {
				Commit = vcsv.Value
			}
		}
	}
}

// Run executes the main CLI functionality
func Run() error {
	return rootCmd.Execute()
}

// loadConfig reads the environment configuration and applies the
// --system override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if systemFlag > 0 {
		cfg.SystemID = systemFlag
	}
	cfg.ApplyCache()
	return cfg, nil
}

// newClient builds an API client from the loaded configuration.
func newClient() (*tigo.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := tigo.NewClient(cfg.ClientConfig())
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// resolveSystem picks the system to operate on: the --system flag,
// then TIGO_SYSTEM_ID, then the account's primary system.
func resolveSystem(ctx context.Context, client *tigo.Client, cfg *config.Config) (int, error) {
	if cfg.SystemID > 0 {
		return cfg.SystemID, nil
	}
	return client.PrimarySystemID(ctx)
}
