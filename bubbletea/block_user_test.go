package bubbletea_test

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/murmur"
	bt "github.com/fwojciec/murmur/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestUserMessageBlock_View(t *testing.T) {
	t.Parallel()

	t.Run("renders prompt prefix and text", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(murmur.DefaultTheme())
		block := bt.NewUserMessageBlock("你好 world", styles)
		view := block.View(80)
		assert.Contains(t, view, "> 你好 world")
	})

	t.Run("pads each line to full width", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(murmur.DefaultTheme())
		block := bt.NewUserMessageBlock("test", styles)
		for _, line := range strings.Split(block.View(40), "\n") {
			assert.Equal(t, 40, lipgloss.Width(line))
		}
	})

	t.Run("wraps long text to width", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(murmur.DefaultTheme())
		longText := "short words that keep going and going beyond the viewport width easily"
		block := bt.NewUserMessageBlock(longText, styles)
		view := block.View(30)
		assert.Contains(t, view, "easily")
		assert.Greater(t, len(strings.Split(view, "\n")), 1)
	})

	t.Run("hangs continuation lines under the prompt", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(murmur.DefaultTheme())
		block := bt.NewUserMessageBlock("first\nsecond", styles)
		lines := strings.Split(block.View(40), "\n")
		assert.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "> first"))
		assert.True(t, strings.HasPrefix(lines[1], "  second"))
	})

	t.Run("renders nothing without room", func(t *testing.T) {
		t.Parallel()
		block := bt.NewUserMessageBlock("x", bt.NewStyles(murmur.DefaultTheme()))
		assert.Empty(t, block.View(2))
	})
}
