package murmur

import (
	"context"
	"iter"
)

// Conversation is a running chat between one user and the backend, with
// every exchange recorded to a [Transcript]. It is not safe for concurrent
// use: one Ask at a time.
type Conversation struct {
	responder  *Responder
	transcript *Transcript
	userID     string
	historyUID string

	conversationID string
	selection      string
	humanName      string
	aiName         string
	aiAvatar       string
}

// ConversationOption configures a [Conversation].
type ConversationOption func(*Conversation)

// WithSelection sends s as the selection input of every request.
func WithSelection(s string) ConversationOption {
	return func(c *Conversation) { c.selection = s }
}

// WithHumanName sets the display name stored with user messages.
func WithHumanName(name string) ConversationOption {
	return func(c *Conversation) { c.humanName = name }
}

// WithAssistant sets the display name and avatar stored with answers.
func WithAssistant(name, avatar string) ConversationOption {
	return func(c *Conversation) {
		c.aiName = name
		c.aiAvatar = avatar
	}
}

// NewConversation resumes the history identified by userID and historyUID,
// restoring its backend conversation id from metadata.
func NewConversation(r *Responder, t *Transcript, userID, historyUID string, opts ...ConversationOption) *Conversation {
	c := &Conversation{
		responder:  r,
		transcript: t,
		userID:     userID,
		historyUID: historyUID,
	}
	for _, o := range opts {
		o(c)
	}
	c.conversationID = t.ConversationID(userID, historyUID)
	return c
}

// ConversationID returns the backend conversation id, empty before the
// first answer of a new conversation.
func (c *Conversation) ConversationID() string { return c.conversationID }

// HistoryUID returns the id of the history being recorded.
func (c *Conversation) HistoryUID() string { return c.historyUID }

// Ask sends text and streams the answer. The question is recorded before
// the request; the answer is recorded once the stream ends, unless the
// consumer stopped early.
func (c *Conversation) Ask(ctx context.Context, text string) iter.Seq[Output] {
	return func(yield func(Output) bool) {
		c.transcript.Record(c.userID, c.historyUID, HistoryEntry{
			Role:    HistoryRoleHuman,
			Content: text,
			Name:    c.humanName,
		})

		turn := c.responder.Start(ctx, Request{
			Messages:       []ChatMessage{UserText(text)},
			UserID:         c.userID,
			ConversationID: c.conversationID,
			Selection:      c.selection,
		})
		for out := range turn.Outputs() {
			if id, ok := out.(ConversationID); ok {
				c.conversationID = id.ID
				c.transcript.SetConversationID(c.userID, c.historyUID, id.ID)
			}
			if !yield(out) {
				return
			}
		}

		if answer := turn.Text(); answer != "" {
			c.transcript.Record(c.userID, c.historyUID, HistoryEntry{
				Role:      HistoryRoleAI,
				Content:   answer,
				Name:      c.aiName,
				Avatar:    c.aiAvatar,
				MessageID: turn.MessageID(),
			})
		}
	}
}
