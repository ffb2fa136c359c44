package main

import (
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/silentsignal/vitals/internal/adapters/readinglog"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List logged readings",
		Long:  "List the newest readings from the configured history source, oldest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("history: --limit must be positive, got %d", limit)
			}
			ctx := cmd.Context()
			eng, err := build(ctx, c.cfg, c.log)
			if err != nil {
				return err
			}
			defer eng.Close() //nolint:errcheck

			entries, err := historySource(c.cfg, eng.store).History(ctx, limit)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			readings := readinglog.Readings(entries)
			slices.Reverse(readings)
			if len(readings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no readings logged")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tHR\tBR\tANXIETY\tSTATUS")
			for _, r := range readings {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d%%\t%s\n",
					r.Timestamp.Local().Format(time.DateTime), r.Sample.HeartRate, r.Sample.BreathRate, r.AnxietyScore, r.Status)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", readinglog.DefaultHistoryLimit, "number of readings to list")
	return cmd
}
