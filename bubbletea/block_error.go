package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/murmur"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders the error that ended a turn.
type ErrorBlock struct {
	out    murmur.Error
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{out: murmur.Error{Err: err}, styles: styles}
}

func (b *ErrorBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	content := b.styles.Error.Render(murmur.Encode(b.out))
	return lipgloss.NewStyle().Width(width).Render(content)
}
