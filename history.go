package murmur

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// MaxIDLength is the longest accepted user or history id, in bytes.
const MaxIDLength = 255

// HistoryRole is the role of a stored history record.
type HistoryRole string

const (
	HistoryRoleHuman    HistoryRole = "human"
	HistoryRoleAI       HistoryRole = "ai"
	HistoryRoleMetadata HistoryRole = "metadata"
)

// HistoryEntry is one stored conversation message.
type HistoryEntry struct {
	Role      HistoryRole
	Timestamp time.Time
	Content   string
	Name      string
	Avatar    string
	MessageID string
}

// HistoryMetadata is the leading record of a history file.
type HistoryMetadata struct {
	Timestamp      time.Time
	ConversationID string
	UserID         string
}

// HistorySummary describes one history in a listing.
type HistorySummary struct {
	UID string
	// Latest is the newest message; zero when the history has none.
	Latest    HistoryEntry
	Timestamp time.Time
}

// HistoryStore persists conversation transcripts per user.
//
// Implementations validate both ids with [ValidateID] before touching
// storage. Writers to the same history must be serialised by the caller.
type HistoryStore interface {
	// Create starts an empty history and returns its uid.
	Create(userID string) (string, error)
	// Append adds an entry, creating the history when it does not exist.
	Append(userID, historyUID string, entry HistoryEntry) error
	// Entries returns the messages in insertion order, metadata excluded.
	Entries(userID, historyUID string) ([]HistoryEntry, error)
	Metadata(userID, historyUID string) (HistoryMetadata, error)
	// SetMetadata merges the non-zero fields of patch into the stored
	// metadata, inserting a metadata record when there is none.
	SetMetadata(userID, historyUID string, patch HistoryMetadata) error
}

// ValidateID rejects identifiers that are unsafe to use as a path
// component: empty, too long, not UTF-8, containing a path separator, a
// parent reference or a control character.
func ValidateID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("empty id: %w", ErrInvalidID)
	case len(id) > MaxIDLength:
		return fmt.Errorf("id longer than %d bytes: %w", MaxIDLength, ErrInvalidID)
	case !utf8.ValidString(id):
		return fmt.Errorf("id %q is not valid UTF-8: %w", id, ErrInvalidID)
	case id == "." || strings.Contains(id, ".."):
		return fmt.Errorf("id %q contains a parent reference: %w", id, ErrInvalidID)
	case strings.ContainsAny(id, `/\`):
		return fmt.Errorf("id %q contains a path separator: %w", id, ErrInvalidID)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return fmt.Errorf("id %q contains a control character: %w", id, ErrInvalidID)
		}
	}
	return nil
}
