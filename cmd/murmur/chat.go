package main

import (
	"fmt"

	"github.com/fwojciec/murmur"
	bt "github.com/fwojciec/murmur/bubbletea"
	"github.com/spf13/cobra"
)

func (a *app) chatCmd() *cobra.Command {
	var (
		historyUID string
		selection  string
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat, recorded to history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.newProvider(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			conv, entries := a.conversation(p, historyUID, selection)

			m := bt.New(conv.Ask, murmur.DefaultTheme(),
				bt.WithHistory(entries),
				bt.WithConversationID(conv.ConversationID()),
				bt.WithAssistantLabel(a.cfg.Assistant.Name),
			)
			if err := bt.Run(ctx, m); err != nil {
				return fmt.Errorf("TUI: %w", err)
			}
			fmt.Fprintf(a.stderr, "history: %s\n", conv.HistoryUID())
			return nil
		},
	}
	cmd.Flags().StringVar(&historyUID, "history", "", "History uid to resume (default: start a new one)")
	cmd.Flags().StringVar(&selection, "selection", "", "Selection input sent with every message")
	return cmd
}
