// Package spectator implements the read-only live view of someone else's
// match. A spectator holds nothing but a 4-digit share code; the poller
// fetches the owner's persisted snapshot on a fixed cadence and keeps the
// latest one available for display. It never mutates anything — the owner's
// save cadence and the spectator's poll cadence are fully decoupled, so a
// spectator can lag by up to one polling interval and that is fine.
package spectator

import (
	"context"
	"sync"
	"time"

	"github.com/trentd187/golf-matchplay/internal/match"
)

// DefaultInterval is the polling cadence. Golf is slow; 15 seconds keeps the
// clubhouse screen fresh without hammering the API.
const DefaultInterval = 15 * time.Second

// Snapshot is one observed match state plus the owner-side save timestamp.
type Snapshot struct {
	State     match.State
	Standings []match.Player // ranked, derived from State at fetch time
	UpdatedAt time.Time      // when the owner last saved
}

// FetchFunc resolves a share code to the owner's current snapshot. In
// production this is a call through sharecode.Service and the remote store;
// tests swap in a fake.
type FetchFunc func(ctx context.Context, code string) (Snapshot, error)

// Poller periodically fetches a match snapshot by share code.
type Poller struct {
	code     string
	fetch    FetchFunc
	interval time.Duration

	mu        sync.Mutex
	snapshot  *Snapshot
	fetchedAt time.Time // when the spectator last saw fresh data
	lastErr   error

	refresh chan struct{}
	stop    chan struct{}
	done    chan struct{}
}

// NewPoller builds a poller for the given code. A non-positive interval
// falls back to the default. Nothing runs until Start.
func NewPoller(code string, fetch FetchFunc, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		code:     code,
		fetch:    fetch,
		interval: interval,
		refresh:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the poll loop: one immediate fetch, then one per interval
// until Stop. A fetch failure records a visible error and the loop keeps
// going — the next tick may well succeed.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	p.fetchOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-p.refresh:
			p.fetchOnce(ctx)
		case <-ticker.C:
			p.fetchOnce(ctx)
		}
	}
}

func (p *Poller) fetchOnce(ctx context.Context) {
	snap, err := p.fetch(ctx, p.code)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		// Keep the stale snapshot on screen alongside the error; a blank
		// scoreboard helps nobody.
		p.lastErr = err
		return
	}
	p.snapshot = &snap
	p.fetchedAt = time.Now()
	p.lastErr = nil
}

// Refresh requests an immediate out-of-band fetch (the "pull to refresh"
// path). Non-blocking: if a refresh is already queued this is a no-op.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Stop halts the poll loop and waits for it to exit, so no snapshot update
// can land after teardown.
func (p *Poller) Stop() {
	select {
	case <-p.stop:
	default:
		close(p.stop)
	}
	<-p.done
}

// View returns the latest snapshot (nil until the first successful fetch),
// when it was fetched, and the error from the most recent attempt if that
// attempt failed.
func (p *Poller) View() (*Snapshot, time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snapshot == nil {
		return nil, p.fetchedAt, p.lastErr
	}
	snap := *p.snapshot
	return &snap, p.fetchedAt, p.lastErr
}
