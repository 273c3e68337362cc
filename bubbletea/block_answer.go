package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/murmur"
	"github.com/fwojciec/murmur/goldmark"
)

var _ MessageBlock = (*AssistantBlock)(nil)

// AssistantBlock renders an answer as markdown. It grows one segmented unit
// at a time; the rendering is cached per width until the next unit arrives.
type AssistantBlock struct {
	content strings.Builder
	theme   murmur.Theme
	styles  Styles
	label   string
	units   int
	byWidth map[int]string
}

// NewAssistantBlock creates an empty answer block. A non-empty label is
// shown above the answer.
func NewAssistantBlock(label string, theme murmur.Theme, styles Styles) *AssistantBlock {
	return &AssistantBlock{
		theme:   theme,
		styles:  styles,
		label:   label,
		byWidth: make(map[int]string),
	}
}

// Append adds one unit of the answer.
func (b *AssistantBlock) Append(unit string) {
	b.content.WriteString(unit)
	b.units++
	clear(b.byWidth)
}

// Text returns the raw answer.
func (b *AssistantBlock) Text() string { return b.content.String() }

// Units returns how many units were appended.
func (b *AssistantBlock) Units() int { return b.units }

func (b *AssistantBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *AssistantBlock) View(width int) string {
	if width <= 0 {
		return ""
	}
	if cached, ok := b.byWidth[width]; ok {
		return cached
	}
	raw := b.content.String()
	if hasUnclosedFence(raw) {
		// A flushed remainder may end inside a code block.
		raw += "\n```"
	}
	rendered := goldmark.Render(raw, width, b.theme)
	if b.label != "" {
		rendered = b.styles.Assistant.Render(b.label) + "\n" + rendered
	}
	b.byWidth[width] = rendered
	return rendered
}

// hasUnclosedFence reports an odd number of "```" in s.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
