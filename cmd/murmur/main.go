// Command murmur chats with an LLM backend and prints the answer as
// speakable units: sentences, fenced code blocks and tables.
//
// Usage:
//
//	murmur chat [--history uid]
//	murmur ask [--speech] [--raw] [--history uid] <question>
//	murmur history list|show|delete|rename
//	murmur feedback <message-id> <like|dislike|none> [content]
//	murmur params
//
// Settings are read from ~/.murmur/config.yaml (or --config) and MURMUR_*
// environment variables.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/fwojciec/murmur"
	"github.com/fwojciec/murmur/json"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{
		getenv:      os.Getenv,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		interactive: isatty.IsTerminal(os.Stderr.Fd()),
		newProvider: resolveProvider,
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "murmur: %v\n", err)
		os.Exit(1)
	}
}

// app carries what the commands share. Env and output streams are passed
// in so commands never touch the process globals.
type app struct {
	getenv      func(string) string
	stdout      io.Writer
	stderr      io.Writer
	interactive bool
	newProvider func(context.Context, *Config, *slog.Logger) (murmur.Provider, error)

	configPath string
	userID     string

	cfg      *Config
	logger   *slog.Logger
	closeLog func() error
}

func (a *app) run(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "murmur",
		Short:         "Stream LLM answers as speakable units",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closeLog != nil {
				return a.closeLog()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", DefaultConfigPath(), "Path to config file")
	root.PersistentFlags().StringVar(&a.userID, "user", "", "User id (overrides user.id)")

	root.AddCommand(
		a.chatCmd(),
		a.askCmd(),
		a.historyCmd(),
		a.feedbackCmd(),
		a.paramsCmd(),
	)
	return root
}

// setup loads the config and builds the logger.
func (a *app) setup() error {
	cfg, err := Load(a.configPath, a.getenv)
	if err != nil {
		return err
	}
	if a.userID != "" {
		if err := murmur.ValidateID(a.userID); err != nil {
			return fmt.Errorf("--user: %w", err)
		}
		cfg.User.ID = a.userID
	}
	logger, closer, err := newLogger(cfg.Logger)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.closeLog = closer
	return nil
}

func (a *app) store() *json.Store {
	return json.NewStore(a.cfg.History.Dir, json.WithLogger(a.logger))
}

func (a *app) responder(p murmur.Provider) *murmur.Responder {
	return murmur.NewResponder(p,
		murmur.WithLogger(a.logger),
		murmur.WithSegmenterOptions(
			murmur.WithThreshold(a.cfg.Segmenter.Threshold),
			murmur.WithWindow(a.cfg.Segmenter.Window),
		),
	)
}

// conversation resumes historyUID, or starts a new history when it is empty.
func (a *app) conversation(p murmur.Provider, historyUID, selection string) (*murmur.Conversation, []murmur.HistoryEntry) {
	transcript := murmur.NewTranscript(a.store(), a.logger)
	var entries []murmur.HistoryEntry
	if historyUID == "" {
		historyUID = json.NewUID(time.Now())
	} else {
		entries = transcript.Entries(a.cfg.User.ID, historyUID)
	}
	conv := murmur.NewConversation(a.responder(p), transcript, a.cfg.User.ID, historyUID,
		murmur.WithHumanName(a.cfg.User.Name),
		murmur.WithAssistant(a.cfg.Assistant.Name, a.cfg.Assistant.Avatar),
		murmur.WithSelection(selection),
	)
	return conv, entries
}
