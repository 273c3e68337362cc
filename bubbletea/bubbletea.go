// Package bubbletea provides a Bubble Tea chat TUI on top of segmented
// answer streams.
package bubbletea

import (
	"context"
	"iter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/murmur"
)

// AskFunc sends one user message and streams the answer outputs.
// [murmur.Conversation.Ask] satisfies it.
type AskFunc func(ctx context.Context, text string) iter.Seq[murmur.Output]

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// OutputMsg delivers one turn output to the model.
type OutputMsg struct {
	Output murmur.Output
}

// TurnDoneMsg signals that the answer stream ended.
type TurnDoneMsg struct{}
