package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/silentsignal/vitals/internal/adapters/agent"
)

func newChatCmd(c *cli) *cobra.Command {
	var scanFirst bool
	cmd := &cobra.Command{
		Use:   "chat <message...>",
		Short: "Send one message to the wellness agent",
		Long:  "Send a message with the current vitals attached and print the agent's reply.\nIf the agent requests a scan the intent is printed after the reply.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return c.withEngine(cmd.Context(), func(ctx context.Context, eng *engine) error {
				if scanFirst {
					if _, err := eng.svc.Scan(ctx); err != nil {
						return fmt.Errorf("chat: %w", err)
					}
				}
				out, err := eng.svc.Chat(ctx, text)
				if err != nil {
					return fmt.Errorf("chat: %w", err)
				}
				name := out.Message.AgentName
				if name == "" {
					name = "agent"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, out.Message.Text)
				if out.Kind == agent.KindReplyWithIntent {
					fmt.Fprintf(cmd.OutOrStdout(), "intent: %s\n", out.Intent)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&scanFirst, "scan", false, "run a scan so the agent sees fresh vitals")
	return cmd
}
