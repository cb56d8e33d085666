package cli

import (
	"net/http"
	"os/signal"
	"syscall"

	"github.com/matt-dreyer/Tigo-MCP-server/log"
	"github.com/matt-dreyer/Tigo-MCP-server/mcp"
	"github.com/matt-dreyer/Tigo-MCP-server/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	sseFlag         bool
	addrFlag        string
	baseURLFlag     string
	metricsAddrFlag string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools over stdio or SSE",
		Long: `Serve the MCP tool set. The default transport is stdio. With --sse
the server listens on --addr and clients connect over server-sent
events. --metrics-addr additionally exposes Prometheus gauges for the
target system.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
)

func init() {
	addServeFlags(serveCmd)
	addServeFlags(rootCmd)
	rootCmd.AddCommand(serveCmd)
}

// addServeFlags registers the transport flags. They live on both the
// root command and the explicit serve subcommand.
func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&sseFlag, "sse", false, "Serve over SSE instead of stdio")
	cmd.Flags().StringVar(&addrFlag, "addr", ":8080", "Listen address for the SSE transport")
	cmd.Flags().StringVar(&baseURLFlag, "base-url", "", "Public base URL advertised to SSE clients")
	cmd.Flags().StringVar(&metricsAddrFlag, "metrics-addr", "", "Listen address for Prometheus metrics (disabled when empty)")
}

func runServe(cmd *cobra.Command, args []string) error {
	client, cfg, err := newClient()
	if err != nil {
		return err
	}

	if metricsAddrFlag != "" {
		registry := metrics.Registry(metrics.NewCollector(client, cfg.SystemID))
		go serveMetrics(metricsAddrFlag, registry)
	}

	srv := mcp.NewServer(client, cfg.SystemID, Version)
	if !sseFlag {
		return srv.Run()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("serving MCP over SSE", "addr", addrFlag)
	return srv.RunSSE(ctx, addrFlag, baseURLFlag)
}

func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	log.Info("serving Prometheus metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics listener stopped", "error", err)
	}
}
