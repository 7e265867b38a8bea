// Package storage keeps match state durable across sessions and devices using
// two backing stores with different jobs:
//
//   - LocalStore  — a fast JSON file cache on the device running the server.
//     Written synchronously on every change, so the latest state survives a
//     process restart even if the database was unreachable.
//   - RemoteStore — the authoritative PostgreSQL record (one row per owner).
//     Written asynchronously behind a debounce so a burst of rapid edits
//     (auto-advance through a hole, fixing a typo) becomes one write.
//
// The Synchronizer in sync.go arbitrates between them: remote wins on load
// when reachable, the local cache is the fallback, and persistence failures
// degrade to warnings — they never surface as errors into the match engine's
// transition path.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/trentd187/golf-matchplay/internal/match"
	"github.com/trentd187/golf-matchplay/internal/models"
)

// Store is one backing store, already bound to its owner. Load's second
// return distinguishes "nothing saved" (false, nil error) from a real
// failure; callers treat the two very differently.
type Store interface {
	Load(ctx context.Context) (match.State, bool, error)
	Save(ctx context.Context, state match.State) error
	Delete(ctx context.Context) error
	Has(ctx context.Context) (bool, error)
}

// LocalStore caches the match state as a JSON file under a cache directory.
// One well-known filename per owner — a device tracks at most one live match
// per identity, so there is nothing to enumerate.
type LocalStore struct {
	path string
}

// NewLocalStore returns a file-backed store rooted at dir for the given
// owner key. The directory is created on first save, not here, so merely
// constructing a store has no side effects.
func NewLocalStore(dir, owner string) *LocalStore {
	return &LocalStore{path: filepath.Join(dir, owner+".json")}
}

func (s *LocalStore) Load(_ context.Context) (match.State, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return match.State{}, false, nil
	}
	if err != nil {
		return match.State{}, false, fmt.Errorf("read local cache: %w", err)
	}

	var state match.State
	if err := json.Unmarshal(data, &state); err != nil {
		return match.State{}, false, fmt.Errorf("decode local cache: %w", err)
	}
	return state, true, nil
}

func (s *LocalStore) Save(_ context.Context, state match.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode local cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Write-then-rename so a crash mid-write can't leave a truncated file —
	// a torn cache would read back as corrupt and get discarded.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write local cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace local cache: %w", err)
	}
	return nil
}

func (s *LocalStore) Delete(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete local cache: %w", err)
	}
	return nil
}

func (s *LocalStore) Has(_ context.Context) (bool, error) {
	_, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RemoteStore persists the match state as a single saved_matches row keyed by
// the owning user. Saves are upserts: the unique index on user_id plus an
// ON CONFLICT clause keeps it one row per owner no matter how many devices
// write.
type RemoteStore struct {
	db     *gorm.DB
	userID uuid.UUID
}

// NewRemoteStore binds a remote store to one owner.
func NewRemoteStore(db *gorm.DB, userID uuid.UUID) *RemoteStore {
	return &RemoteStore{db: db, userID: userID}
}

func (s *RemoteStore) Load(ctx context.Context) (match.State, bool, error) {
	var record models.SavedMatch
	err := s.db.WithContext(ctx).Where("user_id = ?", s.userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return match.State{}, false, nil
	}
	if err != nil {
		return match.State{}, false, fmt.Errorf("load saved match: %w", err)
	}

	var state match.State
	if err := json.Unmarshal(record.State, &state); err != nil {
		return match.State{}, false, fmt.Errorf("decode saved match: %w", err)
	}
	return state, true, nil
}

func (s *RemoteStore) Save(ctx context.Context, state match.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode saved match: %w", err)
	}

	record := models.SavedMatch{UserID: s.userID, State: data}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("save match: %w", err)
	}
	return nil
}

func (s *RemoteStore) Delete(ctx context.Context) error {
	err := s.db.WithContext(ctx).Where("user_id = ?", s.userID).Delete(&models.SavedMatch{}).Error
	if err != nil {
		return fmt.Errorf("delete saved match: %w", err)
	}
	return nil
}

func (s *RemoteStore) Has(ctx context.Context) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.SavedMatch{}).
		Where("user_id = ?", s.userID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check saved match: %w", err)
	}
	return count > 0, nil
}
