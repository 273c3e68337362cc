package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*UserMessageBlock)(nil)

const userPrompt = "> "

// UserMessageBlock renders a question. Wrapped and multi-line text hangs
// under the prompt.
type UserMessageBlock struct {
	text   string
	styles Styles
}

func NewUserMessageBlock(text string, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{text: text, styles: styles}
}

func (b *UserMessageBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) { return b, nil }

func (b *UserMessageBlock) View(width int) string {
	inner := width - lipgloss.Width(userPrompt)
	if inner <= 0 {
		return ""
	}
	body := lipgloss.NewStyle().Width(inner).Render(strings.TrimRight(b.text, "\n"))
	lines := strings.Split(body, "\n")
	hang := strings.Repeat(" ", lipgloss.Width(userPrompt))
	for i, line := range lines {
		if i == 0 {
			lines[i] = b.styles.UserMsg.Render(userPrompt) + line
			continue
		}
		lines[i] = hang + line
	}
	return strings.Join(lines, "\n")
}
