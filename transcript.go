package murmur

import (
	"log/slog"
	"time"
)

// Transcript records conversation history without ever failing the caller.
// Read errors are treated as an empty history; write errors are logged and
// dropped so a broken disk never interrupts a live conversation.
type Transcript struct {
	store  HistoryStore
	logger *slog.Logger
}

// NewTranscript wraps store. A nil logger discards.
func NewTranscript(store HistoryStore, logger *slog.Logger) *Transcript {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Transcript{store: store, logger: logger}
}

// Record appends an entry, stamping it with the current time when unset.
func (t *Transcript) Record(userID, historyUID string, e HistoryEntry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if err := t.store.Append(userID, historyUID, e); err != nil {
		t.logger.Error("failed to store message",
			"user", userID, "history", historyUID, "role", e.Role, "error", err)
	}
}

// Entries returns the stored messages, or nil when they cannot be read.
func (t *Transcript) Entries(userID, historyUID string) []HistoryEntry {
	entries, err := t.store.Entries(userID, historyUID)
	if err != nil {
		t.logger.Debug("no history", "user", userID, "history", historyUID, "error", err)
		return nil
	}
	return entries
}

// ConversationID returns the backend conversation id saved in metadata.
func (t *Transcript) ConversationID(userID, historyUID string) string {
	meta, err := t.store.Metadata(userID, historyUID)
	if err != nil {
		t.logger.Debug("no metadata", "user", userID, "history", historyUID, "error", err)
		return ""
	}
	return meta.ConversationID
}

// SetConversationID saves the backend conversation id in metadata.
func (t *Transcript) SetConversationID(userID, historyUID, conversationID string) {
	patch := HistoryMetadata{ConversationID: conversationID, UserID: userID}
	if err := t.store.SetMetadata(userID, historyUID, patch); err != nil {
		t.logger.Error("failed to update metadata",
			"user", userID, "history", historyUID, "error", err)
	}
}
