package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// MessageBlock is a renderable element in the conversation.
// Unlike tea.Model, View takes a width parameter so the root model
// controls layout and blocks are testable in isolation.
type MessageBlock interface {
	Update(tea.Msg) (MessageBlock, tea.Cmd)
	View(width int) string
}

// blockSeparator returns the gap between two consecutive blocks. An error
// stays attached to the answer it interrupted.
func blockSeparator(prev, curr MessageBlock) string {
	if _, ok := curr.(*ErrorBlock); ok {
		if _, ok := prev.(*AssistantBlock); ok {
			return "\n"
		}
	}
	return "\n\n"
}
