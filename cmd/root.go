package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/silentsignal/vitals/internal/config"
	"github.com/silentsignal/vitals/pkg/logger"
	"github.com/silentsignal/vitals/pkg/metrics"
)

// cli carries state shared by every subcommand once the root has loaded it.
type cli struct {
	cfg *config.Config
	log logger.Logger
}

// newRootCmd creates the root silentsignal command with all subcommands attached.
func newRootCmd() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:           "silentsignal",
		Short:         "Silent Signal vitals engine",
		Long:          "silentsignal scans heart and breath rate, scores anxiety, keeps a short\ntrend history and relays chat to the wellness agent.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context(), cmd)
		},
	}

	cmd.AddCommand(
		newServeCmd(c),
		newScanCmd(c),
		newSOSCmd(c),
		newChatCmd(c),
		newHistoryCmd(c),
	)

	return cmd
}

// setup loads configuration (defaults -> optional file -> env) and
// initializes logging on stderr so command output stays clean.
func (c *cli) setup(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	c.log = logger.Get().Named("cli")

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.SetEnabled(cfg.MetricsEnabled)
	metrics.SetRefreshInterval(cfg.MetricsRefresh)

	c.cfg = cfg
	return nil
}
