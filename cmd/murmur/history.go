package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
	"github.com/fwojciec/murmur"
	"github.com/fwojciec/murmur/json"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const previewWidth = 48

func (a *app) historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage stored conversations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List histories, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.listHistories()
			},
		},
		&cobra.Command{
			Use:   "show <uid>",
			Short: "Print the messages of a history",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.showHistory(args[0])
			},
		},
		&cobra.Command{
			Use:   "delete <uid>",
			Short: "Delete a history",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.store().Delete(a.cfg.User.ID, args[0])
			},
		},
		&cobra.Command{
			Use:   "rename <uid> <new-uid>",
			Short: "Rename a history",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.store().Rename(a.cfg.User.ID, args[0], args[1])
			},
		},
	)
	return cmd
}

func (a *app) listHistories() error {
	summaries, err := a.store().List(a.cfg.User.ID)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(a.stderr, "no histories")
		return nil
	}
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("UID", "UPDATED", "ROLE", "LATEST")
	for _, s := range summaries {
		t = t.Row(s.UID, s.Timestamp.Format(json.TimeLayout), string(s.Latest.Role), preview(s.Latest.Content))
	}
	fmt.Fprintln(a.stdout, t.Render())
	return nil
}

func (a *app) showHistory(uid string) error {
	store := a.store()
	entries, err := store.Entries(a.cfg.User.ID, uid)
	if err != nil {
		return err
	}
	meta, err := store.Metadata(a.cfg.User.ID, uid)
	if err != nil {
		return err
	}
	if meta.ConversationID != "" {
		color.New(color.Faint).Fprintf(a.stdout, "conversation: %s\n\n", meta.ConversationID)
	}
	human := color.New(color.FgBlue, color.Bold)
	ai := color.New(color.FgCyan, color.Bold)
	for _, e := range entries {
		label := ai
		if e.Role == murmur.HistoryRoleHuman {
			label = human
		}
		name := e.Name
		if name == "" {
			name = string(e.Role)
		}
		label.Fprintf(a.stdout, "%s", name)
		fmt.Fprintf(a.stdout, " %s\n%s\n\n", e.Timestamp.Format(json.TimeLayout), strings.TrimRight(sanitize(e.Content), "\n"))
	}
	return nil
}

// preview flattens content to one line that fits the listing column.
func preview(content string) string {
	line := strings.Join(strings.Fields(sanitize(content)), " ")
	return runewidth.Truncate(line, previewWidth, "…")
}
