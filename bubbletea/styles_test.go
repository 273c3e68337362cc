package bubbletea_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/murmur"
	bt "github.com/fwojciec/murmur/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNewStyles(t *testing.T) {
	t.Parallel()

	styles := bt.NewStyles(murmur.DefaultTheme())

	assert.Equal(t, lipgloss.Color("4"), styles.UserMsg.GetForeground())
	assert.True(t, styles.UserMsg.GetBold())
	assert.Equal(t, lipgloss.Color("6"), styles.Assistant.GetForeground())
	assert.Equal(t, lipgloss.Color("1"), styles.Error.GetForeground())
	assert.Equal(t, lipgloss.Color("8"), styles.Muted.GetForeground())
	assert.True(t, styles.Muted.GetFaint())
}

func TestNewStyles_NoColor(t *testing.T) {
	t.Parallel()

	theme := murmur.DefaultTheme()
	theme.Error = -1
	styles := bt.NewStyles(theme)

	assert.Equal(t, lipgloss.NoColor{}, styles.Error.GetForeground())
}
