package main

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/fwojciec/murmur"
	"github.com/fwojciec/murmur/tts"
	"github.com/spf13/cobra"
)

type askFlags struct {
	historyUID string
	save       bool
	speech     bool
	raw        bool
	selection  string
}

func (a *app) askCmd() *cobra.Command {
	var f askFlags
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question and print the answer unit by unit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ask(cmd, strings.Join(args, " "), f)
		},
	}
	cmd.Flags().StringVar(&f.historyUID, "history", "", "Resume and record to this history")
	cmd.Flags().BoolVar(&f.save, "save", false, "Record the exchange to a new history")
	cmd.Flags().BoolVar(&f.speech, "speech", false, "Print units filtered for text-to-speech, one per line")
	cmd.Flags().BoolVar(&f.raw, "raw", false, "Print every output in the single-string encoding, one per line")
	cmd.Flags().StringVar(&f.selection, "selection", "", "Selection input sent with the question")
	cmd.MarkFlagsMutuallyExclusive("speech", "raw")
	cmd.MarkFlagsMutuallyExclusive("history", "save")
	return cmd
}

func (a *app) ask(cmd *cobra.Command, question string, f askFlags) error {
	ctx := cmd.Context()
	p, err := a.newProvider(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}

	var (
		outputs    iter.Seq[murmur.Output]
		historyUID string
	)
	if f.historyUID != "" || f.save {
		conv, _ := a.conversation(p, f.historyUID, f.selection)
		historyUID = conv.HistoryUID()
		outputs = conv.Ask(ctx, question)
	} else {
		outputs = a.responder(p).Respond(ctx, murmur.Request{
			Messages:  []murmur.ChatMessage{murmur.UserText(question)},
			UserID:    a.cfg.User.ID,
			Selection: f.selection,
		})
	}

	stop := a.startSpinner()
	var (
		turnErr   error
		messageID string
		last      string
	)
	for out := range outputs {
		stop()
		if f.raw {
			fmt.Fprintln(a.stdout, murmur.Encode(out))
		}
		switch o := out.(type) {
		case murmur.Text:
			switch {
			case f.raw:
			case f.speech:
				if s := tts.Filter(o.Text, a.cfg.TTS.Options()); s != "" {
					fmt.Fprintln(a.stdout, s)
				}
			default:
				last = sanitize(o.Text)
				fmt.Fprint(a.stdout, last)
			}
		case murmur.ConversationID:
			a.logger.Info("conversation started", "conversation_id", o.ID)
		case murmur.MessageID:
			messageID = o.ID
		case murmur.Error:
			turnErr = o.Err
		}
	}
	stop()

	if last != "" && !strings.HasSuffix(last, "\n") {
		fmt.Fprintln(a.stdout)
	}
	if !f.raw {
		muted := color.New(color.Faint)
		if messageID != "" {
			muted.Fprintf(a.stderr, "message: %s\n", messageID)
		}
		if historyUID != "" {
			muted.Fprintf(a.stderr, "history: %s\n", historyUID)
		}
	}
	return turnErr
}

// startSpinner shows a spinner on stderr until the returned func is called.
// The func is idempotent. Nothing is shown when stderr is not a terminal.
func (a *app) startSpinner() func() {
	if !a.interactive {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(a.stderr))
	s.Suffix = " thinking"
	_ = s.Color("cyan")
	s.Start()
	stopped := false
	return func() {
		if !stopped {
			stopped = true
			s.Stop()
		}
	}
}
