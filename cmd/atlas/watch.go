package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"backwork/atlas/pkg/cli"
	"backwork/atlas/pkg/config"
	"backwork/atlas/pkg/registry"
	"backwork/atlas/pkg/telemetry/metrics"
)

var watchFlags struct {
	policiesDir string
	metricsAddr string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the policy bundle directory and hot-reload on changes",
	Long: `Watch the policy bundle directory and hot-reload bundles on changes.

The full directory is reloaded and revalidated on every change; a
bundle set with any validation error is rejected whole and the
previous set keeps serving. Runs until interrupted.

With --metrics-addr, reload outcomes and bundle counts are exposed as
Prometheus metrics at /metrics.

Examples:
  # Watch the configured bundle directory
  atlas watch

  # Watch a specific directory and expose metrics
  atlas watch --policies policies/ --metrics-addr :9090`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFlags.policiesDir, "policies", "", "policy bundle directory (uses config if not specified)")
	watchCmd.Flags().StringVar(&watchFlags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	logger := newLogger(&cfg.Telemetry.Logging)

	dir := watchFlags.policiesDir
	if dir == "" {
		dir = cfg.Policies.Directory
	}

	reg, watcher, err := buildBundleWatcher(cfg, dir, logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer watcher.Close()

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled || watchFlags.metricsAddr != "" {
		collector = metrics.NewCollector(&metrics.Config{
			Enabled:   true,
			Namespace: cfg.Telemetry.Metrics.Namespace,
			Subsystem: cfg.Telemetry.Metrics.Subsystem,
		}, nil)
		collector.RecordReload("success", reg.Count())
		watcher.OnReload(collector.RecordReload)
	}

	ctx := cli.SetupSignalHandler()

	if watchFlags.metricsAddr != "" {
		srv := &http.Server{
			Addr:    watchFlags.metricsAddr,
			Handler: metricsMux(collector),
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics listener failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		logger.Info("Serving metrics", "addr", watchFlags.metricsAddr, "path", "/metrics")
	}

	return watcher.Run(ctx)
}

// buildBundleWatcher loads the directory into a fresh registry and
// wires a watcher over it. The initial load fails fast so a bad bundle
// directory is reported before watching starts.
func buildBundleWatcher(cfg *config.Config, dir string, logger *slog.Logger) (*registry.BundleRegistry, *registry.BundleWatcher, error) {
	reg := registry.NewBundleRegistry()
	loader := registry.NewBundleLoader(&registry.LoaderConfig{
		MaxFileSize: cfg.Policies.MaxFileSize,
	})
	if err := loader.LoadIntoRegistry(dir, reg); err != nil {
		return nil, nil, fmt.Errorf("failed to load bundles: %w", err)
	}

	watcher, err := registry.NewBundleWatcher(loader, reg, &registry.WatchConfig{
		Directory:        dir,
		DebounceInterval: cfg.Policies.DebounceInterval,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	return reg, watcher, nil
}

func metricsMux(collector *metrics.Collector) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	return mux
}
