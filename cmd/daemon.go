package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/storefront-labs/backend-integration/internal/cmd"
	"github.com/storefront-labs/backend-integration/internal/config"
	"github.com/storefront-labs/backend-integration/internal/daemon"
	"github.com/storefront-labs/backend-integration/internal/flags"
)

const (
	defaultAddr = "0.0.0.0:8000"
	devAddr     = "localhost:8000"
)

// DaemonCmd should be used to represent the 'daemon' command.
type DaemonCmd struct {
	*cmd.BaseCmd
	Dev             bool
	Addr            string
	CORSEnabled     bool
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	ShopifyBaseURL  string

	loadConfig       func(envFile string) (config.Config, error)
	loadDependencies func(path string) ([]config.Dependency, error)
}

// NewDaemonCmd creates a newly configured (Cobra) command.
func NewDaemonCmd(baseCmd *cmd.BaseCmd) (*cobra.Command, error) {
	c := &DaemonCmd{
		BaseCmd:          baseCmd,
		loadConfig:       config.Load,
		loadDependencies: config.LoadDependencies,
	}

	cobraCommand := &cobra.Command{
		Use:     "daemon [--dev] [--addr]",
		Aliases: []string{"serve"},
		Short:   "Runs the health service",
		Long: "Runs the health service, serving liveness on /health, downstream health on /health/details " +
			"and Prometheus metrics on /metrics. Configuration is read from the environment and fails fast " +
			"when required values are missing.",
		RunE: c.run,
	}

	cobraCommand.Flags().BoolVar(
		&c.Dev,
		"dev",
		false,
		"Run the daemon in development-focused mode",
	)

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		defaultAddr,
		"Address for the daemon to bind (not applicable in --dev mode)",
	)

	cobraCommand.Flags().BoolVar(
		&c.CORSEnabled,
		"cors-enable",
		false,
		"Enable CORS headers on API responses",
	)

	cobraCommand.Flags().StringSliceVar(
		&c.CORSOrigins,
		"cors-allow-origin",
		nil,
		"Origins allowed to call the API when CORS is enabled (repeatable)",
	)

	cobraCommand.Flags().DurationVar(
		&c.ShutdownTimeout,
		"shutdown-timeout",
		daemon.DefaultAPIShutdownTimeout(),
		"How long to wait for in-flight requests on shutdown",
	)

	cobraCommand.Flags().StringVar(
		&c.ShopifyBaseURL,
		"shopify-base-url",
		"",
		"Override the Shopify store URL (e.g. to go through a proxy)",
	)

	cobraCommand.MarkFlagsMutuallyExclusive("dev", "addr")

	return cobraCommand, nil
}

// run is configured (via NewDaemonCmd) to be called by the Cobra framework when the command is executed.
func (c *DaemonCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger := c.Logger()

	if err := c.RequireTogether(cobraCmd, "cors-enable", "cors-allow-origin"); err != nil {
		return err
	}

	addr := strings.TrimSpace(c.Addr)
	if c.Dev {
		logger.Info("Development-focused mode", "addr", addr, "override", devAddr)
		addr = devAddr
	}

	if err := daemon.IsValidAddr(addr); err != nil {
		return err
	}

	// Configuration problems must stop the process before anything is served.
	cfg, err := c.loadConfig(flags.EnvFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	services, err := c.loadDependencies(flags.DependenciesFile)
	if err != nil {
		return fmt.Errorf("error loading dependencies file: %w", err)
	}

	deps, err := daemon.NewDependencies(logger, addr, cfg, services)
	if err != nil {
		return fmt.Errorf("error configuring daemon dependencies: %w", err)
	}

	var opts []daemon.Option
	opts = append(opts, daemon.WithAPIOptions(
		daemon.WithCORSEnabled(c.CORSEnabled),
		daemon.WithCORSAllowOrigins(c.CORSOrigins),
		daemon.WithShutdownTimeout(c.ShutdownTimeout),
	))
	if u := strings.TrimSpace(c.ShopifyBaseURL); u != "" {
		opts = append(opts, daemon.WithShopifyBaseURL(u))
	}

	d, err := daemon.NewDaemon(deps, opts...)
	if err != nil {
		return fmt.Errorf("failed to create daemon instance: %w", err)
	}

	// Create the signal handling context for the application.
	daemonCtx, daemonCtxCancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer daemonCtxCancel()

	runErr := make(chan error, 1)
	go func() {
		if err := d.StartAndManage(daemonCtx); err != nil && !errors.Is(err, context.Canceled) {
			runErr <- err
		}
		close(runErr)
	}()

	if c.Dev {
		banner := fmt.Sprintf("%s running in 'dev' mode.\n\n"+
			"  Liveness:\thttp://%s/health\n"+
			"  Details:\thttp://%s/health/details\n"+
			"  OpenAPI UI:\thttp://%s/docs\n"+
			"  Store:\t%s\n",
			cmd.AppName, addr, addr, addr, cfg.Shopify.StoreName)

		if flags.LogPath != "" {
			banner += fmt.Sprintf("  Log file:\t%s => (%s)\n", flags.LogPath, flags.LogLevel)
		}

		banner += "\nPress Ctrl+C to stop.\n\n"
		_, _ = fmt.Fprint(cobraCmd.OutOrStdout(), banner)
	}

	select {
	case <-daemonCtx.Done():
		logger.Info("Shutting down daemon")
		return <-runErr
	case err := <-runErr:
		if err != nil {
			logger.Error("daemon exited with error", "error", err)
		}
		return err
	}
}
