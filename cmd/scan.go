package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/silentsignal/vitals/internal/domain/model"
	"github.com/silentsignal/vitals/internal/domain/sos"
	"github.com/silentsignal/vitals/pkg/logger"
)

func newScanCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one vitals scan",
		Long:  "Acquire the sensor, run a full scan and print the scored reading with its SOS payload.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withEngine(cmd.Context(), func(ctx context.Context, eng *engine) error {
				r, err := eng.svc.Scan(ctx)
				if err != nil {
					return fmt.Errorf("scan: %w", err)
				}
				notice := ""
				if st, ok := eng.svc.ScanStatus(); ok {
					notice = st.Notice
				}
				return printReading(cmd.OutOrStdout(), r, eng.svc.SOS(), notice, asJSON)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the reading as JSON")
	return cmd
}

func newSOSCmd(c *cli) *cobra.Command {
	var rescan bool
	cmd := &cobra.Command{
		Use:   "sos",
		Short: "Print the SOS payload",
		Long:  "Print the SOS payload for the newest logged reading. With --scan a fresh scan runs first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withEngine(cmd.Context(), func(ctx context.Context, eng *engine) error {
				if rescan {
					if _, err := eng.svc.Scan(ctx); err != nil {
						return fmt.Errorf("sos: %w", err)
					}
				} else if h := eng.svc.History(); len(h) > 0 {
					// The buffer is seeded from the log; reuse its newest reading.
					fmt.Fprintln(cmd.OutOrStdout(), sos.Encode(h[len(h)-1]))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), eng.svc.SOS())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&rescan, "scan", false, "run a scan before encoding")
	return cmd
}

// withEngine builds and starts the service, runs fn, then stops it so queued
// readings reach the log.
func (c *cli) withEngine(ctx context.Context, fn func(context.Context, *engine) error) error {
	eng, err := build(ctx, c.cfg, c.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := eng.Close(); err != nil {
			c.log.Warn(ctx, "closing backends", logger.Error(err))
		}
	}()

	if err := eng.svc.Start(ctx); err != nil {
		return err
	}
	runErr := fn(ctx, eng)
	if err := eng.svc.Stop(context.WithoutCancel(ctx)); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func printReading(w io.Writer, r model.ScoredReading, payload, notice string, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Reading model.ScoredReading `json:"reading"`
			SOS     string              `json:"sos"`
			Notice  string              `json:"notice,omitempty"`
		}{r, payload, notice})
	}
	if notice != "" {
		fmt.Fprintln(w, notice)
	}
	fmt.Fprintf(w, "heart rate:  %d bpm\n", r.Sample.HeartRate)
	fmt.Fprintf(w, "breath rate: %d /min\n", r.Sample.BreathRate)
	fmt.Fprintf(w, "anxiety:     %d%% (%s)\n", r.AnxietyScore, r.Status)
	fmt.Fprintln(w, payload)
	return nil
}
