// Package json persists conversation histories as JSON files, one array
// per history: an optional leading metadata record followed by messages.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/murmur"
)

// TimeLayout is the timestamp format of history records.
const TimeLayout = "2006-01-02T15:04:05"

// readLayouts are tried in order when parsing stored timestamps.
var readLayouts = []string{
	TimeLayout,
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

// entryDTO is the JSON representation of a HistoryEntry.
type entryDTO struct {
	Role      string  `json:"role"`
	Timestamp string  `json:"timestamp"`
	Content   string  `json:"content"`
	Name      *string `json:"name,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
	MessageID *string `json:"message_id,omitempty"`
}

// History is the decoded content of one history file. Metadata keeps every
// stored key so that unknown keys survive a rewrite.
type History struct {
	Metadata map[string]json.RawMessage
	Entries  []murmur.HistoryEntry
}

// MarshalHistory serializes a History to the on-disk array format.
func MarshalHistory(h History) ([]byte, error) {
	items := make([]any, 0, len(h.Entries)+1)
	if h.Metadata != nil {
		items = append(items, h.Metadata)
	}
	for _, e := range h.Entries {
		items = append(items, marshalEntry(e))
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalHistory deserializes a history file. The first metadata record
// wins; later ones are dropped.
func UnmarshalHistory(data []byte) (History, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return History{}, fmt.Errorf("unmarshal history: %w", err)
	}
	var h History
	for i, raw := range items {
		var head struct {
			Role string `json:"role"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return History{}, fmt.Errorf("record %d: %w", i, err)
		}
		if head.Role == string(murmur.HistoryRoleMetadata) {
			if h.Metadata == nil {
				if err := json.Unmarshal(raw, &h.Metadata); err != nil {
					return History{}, fmt.Errorf("record %d: %w", i, err)
				}
			}
			continue
		}
		var dto entryDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return History{}, fmt.Errorf("record %d: %w", i, err)
		}
		h.Entries = append(h.Entries, unmarshalEntry(dto))
	}
	return h, nil
}

// metadataOf decodes the known metadata keys.
func metadataOf(m map[string]json.RawMessage) murmur.HistoryMetadata {
	str := func(key string) string {
		var s *string
		if raw, ok := m[key]; ok && json.Unmarshal(raw, &s) == nil && s != nil {
			return *s
		}
		return ""
	}
	return murmur.HistoryMetadata{
		Timestamp:      parseTime(str("timestamp")),
		ConversationID: str("conversation_id"),
		UserID:         str("user_id"),
	}
}

// newMetadata builds a metadata record. An empty conversation id is stored
// as null.
func newMetadata(meta murmur.HistoryMetadata) map[string]json.RawMessage {
	m := map[string]json.RawMessage{
		"role":            mustRaw(string(murmur.HistoryRoleMetadata)),
		"timestamp":       mustRaw(meta.Timestamp.Format(TimeLayout)),
		"conversation_id": json.RawMessage("null"),
		"user_id":         mustRaw(meta.UserID),
	}
	if meta.ConversationID != "" {
		m["conversation_id"] = mustRaw(meta.ConversationID)
	}
	return m
}

// mergeMetadata overwrites the keys whose patch field is set.
func mergeMetadata(m map[string]json.RawMessage, patch murmur.HistoryMetadata) {
	if !patch.Timestamp.IsZero() {
		m["timestamp"] = mustRaw(patch.Timestamp.Format(TimeLayout))
	}
	if patch.ConversationID != "" {
		m["conversation_id"] = mustRaw(patch.ConversationID)
	}
	if patch.UserID != "" {
		m["user_id"] = mustRaw(patch.UserID)
	}
}

func mustRaw(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}

func marshalEntry(e murmur.HistoryEntry) entryDTO {
	return entryDTO{
		Role:      string(e.Role),
		Timestamp: e.Timestamp.Format(TimeLayout),
		Content:   e.Content,
		Name:      optional(e.Name),
		Avatar:    optional(e.Avatar),
		MessageID: optional(e.MessageID),
	}
}

func unmarshalEntry(dto entryDTO) murmur.HistoryEntry {
	return murmur.HistoryEntry{
		Role:      murmur.HistoryRole(dto.Role),
		Timestamp: parseTime(dto.Timestamp),
		Content:   dto.Content,
		Name:      deref(dto.Name),
		Avatar:    deref(dto.Avatar),
		MessageID: deref(dto.MessageID),
	}
}

func parseTime(s string) time.Time {
	for _, layout := range readLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Save writes a History atomically, creating parent directories as needed.
func Save(path string, h History) error {
	data, err := MarshalHistory(h)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a History from a JSON file.
func Load(path string) (History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return History{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalHistory(data)
}
