package bubbletea

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/murmur"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// conversationIDWidth is how much of the conversation id the status line
// shows.
const conversationIDWidth = 13

// Model is the Bubble Tea model for the chat TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	ask    AskFunc
	theme  murmur.Theme
	styles Styles
	label  string

	history []murmur.HistoryEntry
	blocks  []MessageBlock
	active  *AssistantBlock

	conversationID string
	messageID      string

	running bool
	cancel  context.CancelFunc
	outCh   chan murmur.Output
	err     error
	ready   bool
}

// Option configures a [Model].
type Option func(*Model)

// WithHistory renders earlier messages before the first prompt.
func WithHistory(entries []murmur.HistoryEntry) Option {
	return func(m *Model) { m.history = entries }
}

// WithConversationID shows a resumed conversation in the status line.
func WithConversationID(id string) Option {
	return func(m *Model) { m.conversationID = id }
}

// WithAssistantLabel sets the name shown above each answer.
func WithAssistantLabel(label string) Option {
	return func(m *Model) { m.label = label }
}

// New creates a new TUI Model that sends prompts through ask.
func New(ask AskFunc, theme murmur.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	m := Model{
		Input:  ti,
		ask:    ask,
		theme:  theme,
		styles: NewStyles(theme),
	}
	for _, o := range opts {
		o(&m)
	}
	for _, e := range m.history {
		switch e.Role {
		case murmur.HistoryRoleHuman:
			m.blocks = append(m.blocks, NewUserMessageBlock(e.Content, m.styles))
		case murmur.HistoryRoleAI:
			b := NewAssistantBlock(m.label, m.theme, m.styles)
			b.Append(e.Content)
			m.blocks = append(m.blocks, b)
		}
	}
	return m
}

// Running returns whether an answer is streaming.
func (m Model) Running() bool { return m.running }

// Err returns the error of the last turn, if any.
func (m Model) Err() error { return m.err }

// ConversationID returns the backend conversation id, once known.
func (m Model) ConversationID() string { return m.conversationID }

// MessageID returns the id of the latest answer.
func (m Model) MessageID() string { return m.messageID }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case OutputMsg:
		m = m.processOutput(msg.Output)
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		if m.outCh != nil {
			return m, listenForOutput(m.outCh)
		}
		return m, nil

	case TurnDoneMsg:
		if m.cancel != nil {
			m.cancel()
		}
		m.running = false
		m.cancel = nil
		m.outCh = nil
		m.active = nil
		return m, m.Input.Focus()
	}

	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)
	}

	// When idle, pass keys to both the input and the viewport. Only
	// non-character keys reach the viewport so typing never scrolls.
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	m.blocks = append(m.blocks, NewUserMessageBlock(text, m.styles))
	m.active = nil
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.outCh = make(chan murmur.Output, 64)
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startTurn(ctx, m.ask, text, m.outCh),
		listenForOutput(m.outCh),
	)
}

func (m Model) renderContent() string {
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString(blockSeparator(m.blocks[i-1], block))
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// processOutput routes one output: text grows the current answer, ids
// update the status line, and an error closes the answer.
func (m Model) processOutput(out murmur.Output) Model {
	switch o := out.(type) {
	case murmur.Text:
		if m.active == nil {
			m.active = NewAssistantBlock(m.label, m.theme, m.styles)
			m.blocks = append(m.blocks, m.active)
		}
		m.active.Append(o.Text)
	case murmur.ConversationID:
		m.conversationID = o.ID
	case murmur.MessageID:
		m.messageID = o.ID
	case murmur.Error:
		err := o.Err
		if err == nil {
			err = errors.New(o.Message())
		}
		m.err = err
		m.blocks = append(m.blocks, NewErrorBlock(err, m.styles))
		m.active = nil
	}
	return m
}

func (m Model) statusLine() string {
	width := m.Viewport.Width
	if m.err != nil {
		return m.styles.Error.Render(runewidth.Truncate(murmur.ErrorPrefix+m.err.Error(), width, "…"))
	}
	text := "Enter to send, Ctrl+C to quit"
	if m.running {
		text = "Generating..."
	}
	if m.conversationID != "" {
		text += " · " + runewidth.Truncate(m.conversationID, conversationIDWidth, "…")
	}
	return m.styles.Muted.Render(runewidth.Truncate(text, width, "…"))
}

// startTurn ranges over the answer in a goroutine and forwards every output.
// The channel is closed when the answer ends.
func startTurn(ctx context.Context, ask AskFunc, text string, outCh chan<- murmur.Output) tea.Cmd {
	return func() tea.Msg {
		defer close(outCh)
		for out := range ask(ctx, text) {
			select {
			case outCh <- out:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	}
}

// listenForOutput waits for the next output. A closed channel means the
// turn is over.
func listenForOutput(ch <-chan murmur.Output) tea.Cmd {
	return func() tea.Msg {
		out, ok := <-ch
		if !ok {
			return TurnDoneMsg{}
		}
		return OutputMsg{Output: out}
	}
}
