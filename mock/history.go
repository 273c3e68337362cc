package mock

import "github.com/fwojciec/murmur"

// Interface compliance check.
var _ murmur.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is a test double for murmur.HistoryStore.
// Set the function fields for the methods you need.
type HistoryStore struct {
	CreateFn      func(userID string) (string, error)
	AppendFn      func(userID, historyUID string, entry murmur.HistoryEntry) error
	EntriesFn     func(userID, historyUID string) ([]murmur.HistoryEntry, error)
	MetadataFn    func(userID, historyUID string) (murmur.HistoryMetadata, error)
	SetMetadataFn func(userID, historyUID string, patch murmur.HistoryMetadata) error
}

// Create delegates to CreateFn.
func (s *HistoryStore) Create(userID string) (string, error) {
	return s.CreateFn(userID)
}

// Append delegates to AppendFn.
func (s *HistoryStore) Append(userID, historyUID string, entry murmur.HistoryEntry) error {
	return s.AppendFn(userID, historyUID, entry)
}

// Entries delegates to EntriesFn.
func (s *HistoryStore) Entries(userID, historyUID string) ([]murmur.HistoryEntry, error) {
	return s.EntriesFn(userID, historyUID)
}

// Metadata delegates to MetadataFn.
func (s *HistoryStore) Metadata(userID, historyUID string) (murmur.HistoryMetadata, error) {
	return s.MetadataFn(userID, historyUID)
}

// SetMetadata delegates to SetMetadataFn.
func (s *HistoryStore) SetMetadata(userID, historyUID string, patch murmur.HistoryMetadata) error {
	return s.SetMetadataFn(userID, historyUID, patch)
}
