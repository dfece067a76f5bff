// Package cmd implements the CLI surface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zorak1103/docktail/internal/config"
	"github.com/zorak1103/docktail/internal/docker"
	apperrors "github.com/zorak1103/docktail/internal/errors"
	"github.com/zorak1103/docktail/internal/notification"
	"github.com/zorak1103/docktail/internal/tailer"
	"github.com/zorak1103/docktail/internal/version"
)

var (
	cfgFile string
	verbose bool
)

const pingTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "docktail [flags] PATTERN",
	Short: "Stream Docker logs for containers matching a name pattern",
	Long: `docktail merges the logs of every running container whose name matches
PATTERN into one color-coded terminal stream.

  - Substring mode (default) follows all matching containers concurrently
    and rescans for new matches on an interval.
  - Exact mode follows only the container named exactly PATTERN.
  - '+ name' and '- name' banners announce containers starting and stopping.
  - A container that is down or not found prints nothing; docktail keeps
    running and attaches when it appears.
  - Colors are unique per container until the palette is exhausted.
  - TTY/interactive containers are excluded by default to avoid shell
    session noise.`,
	Example: `  # Follow every container whose name contains "worker"
  docktail worker

  # Follow exactly the container named "db", last 100 lines of history
  docktail --exact --tail 100 db

  # Only replay the last 5 minutes, rescan twice a second
  docktail --since 300 --refresh 0.5 api`,
	Args:         cobra.ExactArgs(1),
	Version:      version.GetFullVersion(),
	SilenceUsage: true,
	RunE:         runRoot,
}

// Execute runs the root command and maps errors to a non-zero exit.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// nolint:gochecknoinits // Standard Cobra pattern for command registration
func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	addStreamFlags(rootCmd)
}

func runRoot(cmd *cobra.Command, args []string) error {
	opts, err := optionsFromCmd(cmd, args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if verbose && cfg.ConfigFilePath != "" {
		fmt.Fprintf(os.Stderr, "Loaded configuration from: %s\n", cfg.ConfigFilePath)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := docker.NewClient(cfg.Docker.SocketPath)
	if err != nil {
		return fmt.Errorf("failed to create Docker client: %w", err)
	}
	defer client.Close() //nolint:errcheck // Close error not actionable in defer context

	// Bound the initial daemon contact so a hung socket cannot hang startup.
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		return &apperrors.DockerConnectionError{
			SocketPath: cfg.Docker.SocketPath,
			Operation:  "Ping",
			Err:        err,
		}
	}

	warnExactTTY(ctx, client, opts)

	notifier, err := notification.NewNotifier(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: notifications disabled: %v\n", err)
	}
	var lifecycleNotifier tailer.Notifier
	if notifier.IsEnabled() {
		lifecycleNotifier = notifier
	}

	renderer := tailer.NewRenderer(cmd.OutOrStdout())
	return tailer.New(client, opts, renderer, lifecycleNotifier).Run(ctx)
}

// warnExactTTY reproduces the advisory for exact mode: when the named
// container exists but has a TTY and TTY containers are excluded, the user
// would otherwise see silence with no hint why.
func warnExactTTY(ctx context.Context, client docker.Client, opts tailer.Options) {
	if !opts.Exact || opts.IncludeTTY {
		return
	}

	ctr, err := client.Resolve(ctx, opts.Pattern)
	if err != nil || !ctr.TTY {
		if err != nil && !errors.Is(err, docker.ErrNotFound) && verbose {
			fmt.Fprintf(os.Stderr, "Warning: could not resolve container %q: %v\n", opts.Pattern, err)
		}
		return
	}

	color.Yellow("Container '%s' has TTY enabled; logs are skipped by default. Use --include-tty to force following interactive streams.", ctr.Name)
}
