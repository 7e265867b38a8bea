package handlers

// sessions.go — one live scoring session per authenticated owner.
//
// A session bundles the owner's state machine with its synchronizer. It is
// created lazily on the owner's first authenticated request — that is the
// "load on session start" moment: the synchronizer resolves remote-first,
// local-fallback, and the machine restores whatever came back.
//
// Each session has its own mutex. The match rules assume a single logical
// writer, and the lock is what makes two in-flight HTTP requests from the
// same owner apply one at a time instead of interleaving. Two devices on the
// same account remain a last-write-wins race by design.

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trentd187/golf-matchplay/internal/match"
	"github.com/trentd187/golf-matchplay/internal/storage"
)

// Session is one owner's live match: the authoritative machine plus the
// persistence wrapper around it.
type Session struct {
	mu      sync.Mutex
	Machine *match.Machine
	Sync    *storage.Synchronizer
}

// Do runs fn with the session locked. All handler access to the machine goes
// through here so transitions stay atomic with respect to each other.
func (s *Session) Do(fn func(*match.Machine, *storage.Synchronizer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.Machine, s.Sync)
}

// Sessions is the registry of live sessions, keyed by owner.
type Sessions struct {
	mu       sync.Mutex
	byOwner  map[uuid.UUID]*Session
	db       *gorm.DB
	cacheDir string
	debounce time.Duration
}

// NewSessions builds the registry. cacheDir is where each owner's local
// cache file lives; debounce is the remote write delay.
func NewSessions(db *gorm.DB, cacheDir string, debounce time.Duration) *Sessions {
	return &Sessions{
		byOwner:  make(map[uuid.UUID]*Session),
		db:       db,
		cacheDir: cacheDir,
		debounce: debounce,
	}
}

// ForOwner returns the owner's session, creating and loading it on first
// touch.
func (r *Sessions) ForOwner(ctx context.Context, ownerID uuid.UUID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.byOwner[ownerID]; ok {
		return session
	}

	local := storage.NewLocalStore(r.cacheDir, ownerID.String())
	remote := storage.NewRemoteStore(r.db, ownerID)
	syncer := storage.NewSynchronizer(local, remote, r.debounce)

	machine := match.NewMachine()
	// Load already validated and cleared anything corrupt; Restore can only
	// fail on a state Load itself produced, so a failure here just means the
	// machine keeps its default setup state.
	_ = machine.Restore(syncer.Load(ctx))

	session := &Session{Machine: machine, Sync: syncer}
	r.byOwner[ownerID] = session
	return session
}

// FlushAll pushes every session's pending remote write. Called on shutdown.
func (r *Sessions) FlushAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.byOwner))
	for _, s := range r.byOwner {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Sync.Flush()
	}
}
