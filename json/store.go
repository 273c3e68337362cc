package json

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/murmur"
	"github.com/google/uuid"
)

// Interface compliance check.
var _ murmur.HistoryStore = (*Store)(nil)

// Store keeps histories under <root>/users/<user_id>/<history_uid>.json.
//
// Every call reads or rewrites the whole file. There is no locking: callers
// serialise writes to the same history.
type Store struct {
	root   string
	logger *slog.Logger
	now    func() time.Time
}

// StoreOption configures a [Store].
type StoreOption func(*Store)

// WithLogger sets the logger for skipped files and cleanup.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithClock sets the time source for new records and uids.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates a [Store] rooted at root.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{
		root:   root,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewUID returns a history uid: the creation time followed by a random
// hex suffix, so uids sort by creation.
func NewUID(t time.Time) string {
	id := uuid.New()
	return t.Format("2006-01-02_15-04-05") + "_" + hex.EncodeToString(id[:])
}

// Create writes a new history holding only metadata and returns its uid.
func (s *Store) Create(userID string) (string, error) {
	now := s.now()
	uid := NewUID(now)
	path, err := s.path(userID, uid)
	if err != nil {
		return "", err
	}
	h := History{Metadata: newMetadata(murmur.HistoryMetadata{Timestamp: now, UserID: userID})}
	if err := Save(path, h); err != nil {
		return "", fmt.Errorf("json: %w: %w", murmur.ErrPersistence, err)
	}
	return uid, nil
}

// Append adds entry to the history, creating it with a metadata record when
// it does not exist yet.
func (s *Store) Append(userID, historyUID string, entry murmur.HistoryEntry) error {
	path, err := s.path(userID, historyUID)
	if err != nil {
		return err
	}
	h, err := s.load(path)
	if errors.Is(err, murmur.ErrNotFound) {
		h = History{Metadata: newMetadata(murmur.HistoryMetadata{Timestamp: s.now(), UserID: userID})}
	} else if err != nil {
		return err
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	h.Entries = append(h.Entries, entry)
	return s.save(path, h)
}

// Entries returns the messages of a history, metadata excluded.
func (s *Store) Entries(userID, historyUID string) ([]murmur.HistoryEntry, error) {
	path, err := s.path(userID, historyUID)
	if err != nil {
		return nil, err
	}
	h, err := s.load(path)
	if err != nil {
		return nil, err
	}
	return h.Entries, nil
}

// Metadata returns the metadata record; zero when the history has none.
func (s *Store) Metadata(userID, historyUID string) (murmur.HistoryMetadata, error) {
	path, err := s.path(userID, historyUID)
	if err != nil {
		return murmur.HistoryMetadata{}, err
	}
	h, err := s.load(path)
	if err != nil {
		return murmur.HistoryMetadata{}, err
	}
	if h.Metadata == nil {
		return murmur.HistoryMetadata{}, nil
	}
	return metadataOf(h.Metadata), nil
}

// SetMetadata merges patch into the metadata record, inserting one at the
// front when the history has none.
func (s *Store) SetMetadata(userID, historyUID string, patch murmur.HistoryMetadata) error {
	path, err := s.path(userID, historyUID)
	if err != nil {
		return err
	}
	h, err := s.load(path)
	if err != nil {
		return err
	}
	if h.Metadata == nil {
		h.Metadata = newMetadata(murmur.HistoryMetadata{Timestamp: s.now(), UserID: userID})
	}
	mergeMetadata(h.Metadata, patch)
	return s.save(path, h)
}

// Delete removes a history.
func (s *Store) Delete(userID, historyUID string) error {
	path, err := s.path(userID, historyUID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("json: history %s: %w", historyUID, murmur.ErrNotFound)
		}
		return fmt.Errorf("json: %w: %w", murmur.ErrPersistence, err)
	}
	return nil
}

// Rename moves a history to a new uid. The target must not exist.
func (s *Store) Rename(userID, oldUID, newUID string) error {
	from, err := s.path(userID, oldUID)
	if err != nil {
		return err
	}
	to, err := s.path(userID, newUID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(from); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("json: history %s: %w", oldUID, murmur.ErrNotFound)
	}
	if _, err := os.Stat(to); err == nil {
		return fmt.Errorf("json: history %s already exists: %w", newUID, murmur.ErrValidation)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("json: %w: %w", murmur.ErrPersistence, err)
	}
	return nil
}

// ModifyLatest replaces the content of the newest message, provided it has
// the given role.
func (s *Store) ModifyLatest(userID, historyUID string, role murmur.HistoryRole, content string) error {
	path, err := s.path(userID, historyUID)
	if err != nil {
		return err
	}
	h, err := s.load(path)
	if err != nil {
		return err
	}
	if len(h.Entries) == 0 {
		return fmt.Errorf("json: history %s has no messages: %w", historyUID, murmur.ErrValidation)
	}
	latest := &h.Entries[len(h.Entries)-1]
	if latest.Role != role {
		return fmt.Errorf("json: latest message is %s, not %s: %w", latest.Role, role, murmur.ErrValidation)
	}
	latest.Content = content
	return s.save(path, h)
}

// List summarises a user's histories, newest message first. Histories
// without messages are left out, and deleted when the user has others.
// Unreadable files are skipped.
func (s *Store) List(userID string) ([]murmur.HistorySummary, error) {
	dir, err := s.userDir(userID)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	names, err := doublestar.Glob(os.DirFS(dir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("json: %w: %w", murmur.ErrPersistence, err)
	}

	var (
		summaries []murmur.HistorySummary
		empty     []string
	)
	for _, name := range names {
		uid := strings.TrimSuffix(name, ".json")
		h, err := Load(filepath.Join(dir, name))
		if err != nil {
			s.logger.Warn("skipping unreadable history", "user", userID, "history", uid, "error", err)
			continue
		}
		if len(h.Entries) == 0 {
			empty = append(empty, name)
			continue
		}
		latest := h.Entries[len(h.Entries)-1]
		summaries = append(summaries, murmur.HistorySummary{
			UID:       uid,
			Latest:    latest,
			Timestamp: latest.Timestamp,
		})
	}

	if len(names) > 1 {
		for _, name := range empty {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				s.logger.Warn("failed to remove empty history", "user", userID, "file", name, "error", err)
				continue
			}
			s.logger.Info("removed empty history", "user", userID, "file", name)
		}
	}

	slices.SortStableFunc(summaries, func(a, b murmur.HistorySummary) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return summaries, nil
}

func (s *Store) userDir(userID string) (string, error) {
	if err := murmur.ValidateID(userID); err != nil {
		return "", fmt.Errorf("json: user: %w", err)
	}
	return filepath.Join(s.root, "users", userID), nil
}

// path returns the file of a history after validating both ids.
func (s *Store) path(userID, historyUID string) (string, error) {
	dir, err := s.userDir(userID)
	if err != nil {
		return "", err
	}
	if err := murmur.ValidateID(historyUID); err != nil {
		return "", fmt.Errorf("json: history: %w", err)
	}
	return filepath.Join(dir, historyUID+".json"), nil
}

func (s *Store) load(path string) (History, error) {
	h, err := Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return History{}, fmt.Errorf("json: %s: %w", filepath.Base(path), murmur.ErrNotFound)
		}
		return History{}, fmt.Errorf("json: %w: %w", murmur.ErrPersistence, err)
	}
	return h, nil
}

func (s *Store) save(path string, h History) error {
	if err := Save(path, h); err != nil {
		return fmt.Errorf("json: %w: %w", murmur.ErrPersistence, err)
	}
	return nil
}
