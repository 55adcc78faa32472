package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wasteday/wasteday/internal/config"
	"github.com/wasteday/wasteday/internal/database"
	"github.com/wasteday/wasteday/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts runOptions

	root := &cobra.Command{
		Use:           "wasteday",
		Short:         "wasteday - desktop activity telemetry agent",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $WASTEDAY_CONFIG or ~/.config/wasteday/config.yaml)")
	addLaunchFlags(root, &opts)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start the agent: classify the launch and serve the local API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(cmd, opts)
		},
	}
	addLaunchFlags(runCmd, &opts)

	root.AddCommand(
		runCmd,
		newProbeCmd(&opts),
		newSessionsCmd(&opts),
		newRulesCmd(&opts),
		newSettingsCmd(&opts),
		newReportCmd(&opts),
		newStatusCmd(&opts),
		newVersionCmd(),
	)
	return root
}

type runOptions struct {
	configPath string
	autostart  bool
	hidden     bool
}

// The launch flags are declared so cobra accepts them; the launch itself is
// classified from the raw process arguments.
func addLaunchFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().BoolVar(&opts.autostart, "autostart", false, "launched by the OS at login")
	cmd.Flags().BoolVar(&opts.hidden, "hidden", false, "start without showing the main window")
}

// app holds what every subcommand needs.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	logCloser io.Closer
	store     *database.Store
}

func loadConfig(opts *runOptions) (*config.Config, error) {
	if opts.configPath != "" {
		if err := os.Setenv("WASTEDAY_CONFIG", opts.configPath); err != nil {
			return nil, fmt.Errorf("failed to set config path: %w", err)
		}
	}

	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openApp(opts *runOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	store, err := database.Open(cfg.Database.Path, database.WithLockTimeout(cfg.Database.LockTimeout))
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug().Str("path", store.Path()).Msg("database opened")

	return &app{cfg: cfg, logger: logger, logCloser: closer, store: store}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error().Err(err).Msg("failed to close database")
	}
	a.logCloser.Close()
}
