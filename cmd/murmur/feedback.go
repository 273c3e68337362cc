package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/murmur"
	"github.com/spf13/cobra"
)

func (a *app) feedbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feedback <message-id> <like|dislike|none> [content]",
		Short: "Rate an assistant message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, ok := murmur.ParseRating(args[1])
			if !ok {
				return fmt.Errorf("%w: rating %q must be like, dislike or none", murmur.ErrValidation, args[1])
			}
			p, err := a.newProvider(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			fs, ok := p.(murmur.FeedbackSender)
			if !ok {
				return fmt.Errorf("backend %s does not accept feedback", a.cfg.Backend)
			}
			fb := murmur.Feedback{
				MessageID: args[0],
				Rating:    rating,
				User:      a.cfg.User.ID,
				Content:   strings.Join(args[2:], " "),
			}
			if !fs.SendFeedback(cmd.Context(), fb) {
				return errors.New("feedback was not accepted")
			}
			fmt.Fprintln(a.stdout, "ok")
			return nil
		},
	}
}

func (a *app) paramsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Print the selection options the backend accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.newProvider(cmd.Context(), a.cfg, a.logger)
			if err != nil {
				return err
			}
			ps, ok := p.(murmur.ParameterSource)
			if !ok {
				return fmt.Errorf("backend %s has no parameters", a.cfg.Backend)
			}
			params := ps.Parameters(cmd.Context())
			if params.Variable == "" {
				fmt.Fprintln(a.stderr, "no selection parameter")
				return nil
			}
			fmt.Fprintln(a.stdout, params.Variable)
			for _, opt := range params.SelectOptions {
				fmt.Fprintf(a.stdout, "  %s\n", opt)
			}
			return nil
		},
	}
}
