package storage

// sync.go — the synchronizer that sits between the match engine and the two
// stores.
//
// The engine applies transitions synchronously and never waits for a save, so
// the in-memory state is always ahead of (or equal to) what is durable. Each
// change is written to the local cache immediately; the remote write is
// deferred behind a trailing debounce so rapid successive edits coalesce into
// one UPDATE. Remote failures set a warning and are logged — the state that
// triggered them has already been applied and is never rolled back.

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/trentd187/golf-matchplay/internal/match"
)

// DefaultDebounce is the delay between a state change and the remote write.
// Long enough to batch a tap-tap-tap editing burst, short enough that a
// closed laptop lid rarely loses more than a moment of play.
const DefaultDebounce = 800 * time.Millisecond

// Synchronizer keeps one owner's match state durable. remote is nil when the
// session has no identity (anonymous play: local cache only).
type Synchronizer struct {
	local    Store
	remote   Store
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending *match.State // latest unsent snapshot; nil when nothing is queued
	warning string       // last non-fatal persistence problem, "" when healthy
}

// NewSynchronizer wires a synchronizer over the two stores. Pass nil remote
// for identity-less sessions. A non-positive debounce falls back to the
// default.
func NewSynchronizer(local, remote Store, debounce time.Duration) *Synchronizer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Synchronizer{local: local, remote: remote, debounce: debounce}
}

// Load resolves the state to resume: remote first when an identity is
// present, local cache as the fallback, a fresh setup state when neither has
// anything usable. A record that fails validation is corrupt — it is
// discarded and its store entry cleared so it can't be loaded again.
func (s *Synchronizer) Load(ctx context.Context) match.State {
	if s.remote != nil {
		state, ok, err := s.remote.Load(ctx)
		switch {
		case err != nil:
			// Remote being down is not fatal; play continues off the cache.
			s.warn("remote load failed: %v", err)
		case ok:
			if err := state.Validate(); err != nil {
				s.warn("discarding corrupt remote state: %v", err)
				if derr := s.remote.Delete(ctx); derr != nil {
					s.warn("clearing corrupt remote state failed: %v", derr)
				}
			} else {
				return state
			}
		}
	}

	state, ok, err := s.local.Load(ctx)
	if err != nil {
		s.warn("local load failed: %v", err)
		return match.DefaultState()
	}
	if !ok {
		return match.DefaultState()
	}
	if err := state.Validate(); err != nil {
		s.warn("discarding corrupt local state: %v", err)
		if derr := s.local.Delete(ctx); derr != nil {
			s.warn("clearing corrupt local state failed: %v", derr)
		}
		return match.DefaultState()
	}
	return state
}

// Save persists a state change. The empty setup state is skipped entirely —
// persisting "nothing has happened yet" would make every visitor look
// resumable. The local write happens synchronously right here; the remote
// write is queued behind the debounce, with each newer snapshot replacing the
// queued one.
func (s *Synchronizer) Save(state match.State) {
	if state.Phase == match.PhaseSetup && len(state.Players) == 0 {
		return
	}

	if err := s.local.Save(context.Background(), state); err != nil {
		s.warn("local save failed: %v", err)
	}

	if s.remote == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := state.Clone()
	s.pending = &snapshot
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.flushPending)
	} else {
		s.timer.Reset(s.debounce)
	}
}

// flushPending runs on the debounce timer's goroutine and sends the newest
// queued snapshot to the remote store.
func (s *Synchronizer) flushPending() {
	s.mu.Lock()
	state := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()

	if state == nil {
		return
	}
	if err := s.remote.Save(context.Background(), *state); err != nil {
		s.warn("remote save failed: %v", err)
	}
}

// Flush sends any queued remote write immediately. Called on shutdown so the
// debounce window can't swallow the final state of a session.
func (s *Synchronizer) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flushPending()
}

// Clear removes the persisted state from both stores on reset. A queued
// remote write is dropped first — flushing it after the delete would
// resurrect the match. Both deletions are best effort.
func (s *Synchronizer) Clear(ctx context.Context) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.mu.Unlock()

	if err := s.local.Delete(ctx); err != nil {
		s.warn("local delete failed: %v", err)
	}
	if s.remote != nil {
		if err := s.remote.Delete(ctx); err != nil {
			s.warn("remote delete failed: %v", err)
		}
	}
}

// CanResume reports whether a saved state exists anywhere. The local cache
// counts: right after a save the remote write may still be sitting in the
// debounce window, and the whole point of the cache is to offer resume when
// the database can't.
func (s *Synchronizer) CanResume(ctx context.Context) bool {
	if s.remote != nil {
		ok, err := s.remote.Has(ctx)
		if err != nil {
			s.warn("remote resume check failed: %v", err)
		} else if ok {
			return true
		}
	}
	ok, err := s.local.Has(ctx)
	if err != nil {
		s.warn("local resume check failed: %v", err)
		return false
	}
	return ok
}

// LastWarning returns the most recent non-fatal persistence problem, or ""
// when everything has been healthy. Surfaced to the UI as a banner, never as
// a blocking error.
func (s *Synchronizer) LastWarning() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warning
}

// ClearWarning resets the warning once the UI has shown it.
func (s *Synchronizer) ClearWarning() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warning = ""
}

func (s *Synchronizer) warn(format string, args ...any) {
	log.Printf("storage: "+format, args...)
	s.mu.Lock()
	s.warning = "saving is degraded; your scores are kept locally"
	s.mu.Unlock()
}
