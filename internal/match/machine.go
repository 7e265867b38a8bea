package match

// machine.go — the match state machine.
//
// The machine owns the authoritative in-memory state and is the only thing
// allowed to mutate it. Every operation validates its input up front and then
// swaps in a fully-built replacement state, so a failed call leaves the state
// exactly as it was. There is one machine per owning session and a single
// logical writer (see internal/handlers), so the machine itself carries no
// lock.

import "sort"

// Machine drives a single match from setup through scoring to completion.
// The zero value is not usable; call NewMachine.
type Machine struct {
	state State
}

// NewMachine returns a machine in the initial setup state.
func NewMachine() *Machine {
	return &Machine{state: DefaultState()}
}

// Restore replaces the machine's state with one loaded from persistence.
// The state is validated first; a corrupt record is rejected and the machine
// keeps whatever it had.
func (m *Machine) Restore(s State) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.state = s.Clone()
	return nil
}

// Snapshot returns a deep copy of the current state for serialization or
// display. The copy is detached: the machine can keep mutating without
// affecting it.
func (m *Machine) Snapshot() State {
	return m.state.Clone()
}

// Phase reports the machine's current lifecycle phase.
func (m *Machine) Phase() Phase {
	return m.state.Phase
}

// SetShareCode records the owner's active share code on the state so it
// travels with persisted snapshots. Purely informational for spectator
// display; it does not affect scoring.
func (m *Machine) SetShareCode(code string) {
	m.state.ShareCode = code
}

// StartMatch validates the 4 player names and moves the match from setup to
// scoring on hole 1. Names are trimmed; trimmed names must be non-empty and
// pairwise distinct. On any failure the match stays in setup untouched.
func (m *Machine) StartMatch(names []string) error {
	if len(names) != PlayerCount {
		return ErrInvalidPlayerCount
	}

	players := make([]Player, 0, PlayerCount)
	seen := make(map[string]bool, PlayerCount)
	for _, name := range names {
		p, err := NewPlayer(name)
		if err != nil {
			return err
		}
		if seen[p.Name] {
			return ErrDuplicateName
		}
		seen[p.Name] = true
		players = append(players, p)
	}

	m.state = State{
		Players:        players,
		CurrentHole:    1,
		Phase:          PhaseScoring,
		HoleResults:    nil,
		MaxHoleReached: 1,
	}
	return nil
}

// CurrentMatchups returns the two matchups for the hole being played. If a
// result is already stored for the current hole (after navigating back), the
// stored matchups come back with their results; otherwise fresh pending
// matchups from the rotation. The second return is false outside the scoring
// phase.
func (m *Machine) CurrentMatchups() ([MatchupsPerHole]Matchup, bool) {
	matchups, ok, err := m.MatchupsForHole(m.state.CurrentHole)
	if err != nil {
		return [MatchupsPerHole]Matchup{}, false
	}
	return matchups, ok
}

// MatchupsForHole returns the matchups for an arbitrary hole: the stored
// result if the hole has been recorded, otherwise pending matchups from the
// rotation. ok is false when the match isn't in a state that has matchups
// (setup, or a malformed player list).
func (m *Machine) MatchupsForHole(n int) (matchups [MatchupsPerHole]Matchup, ok bool, err error) {
	if n < 1 || n > HoleCount {
		return matchups, false, ErrInvalidHole
	}
	if m.state.Phase != PhaseScoring || len(m.state.Players) != PlayerCount {
		return matchups, false, nil
	}
	if stored, found := m.state.resultForHole(n); found {
		return stored.Matchups, true, nil
	}
	fresh, err := MatchupsForHole(m.state.Players, n)
	if err != nil {
		return matchups, false, err
	}
	return fresh, true, nil
}

// RecordHoleResult records the outcome of the current hole and advances play.
// Recording hole 18 completes the match; the current hole then stays parked
// on 18. Recording a hole that already has a stored result (after navigating
// back) replaces it and replays history, same as UpdateHoleResult, before
// advancing.
func (m *Machine) RecordHoleResult(results []Matchup) error {
	if m.state.Phase != PhaseScoring {
		return ErrNotScoring
	}
	if err := m.applyHoleResult(m.state.CurrentHole, results); err != nil {
		return err
	}

	recorded := m.state.CurrentHole
	if recorded == HoleCount {
		m.state.Phase = PhaseComplete
	} else {
		m.state.CurrentHole = recorded + 1
	}
	if m.state.CurrentHole > m.state.MaxHoleReached {
		m.state.MaxHoleReached = m.state.CurrentHole
	}
	return nil
}

// NavigateToHole moves the current hole pointer backward (or forward) within
// the frontier. Stored results and the frontier itself are untouched, so
// navigation is always safe to undo by navigating again.
func (m *Machine) NavigateToHole(n int) error {
	if n < 1 || n > HoleCount {
		return ErrInvalidHole
	}
	if n > m.state.MaxHoleReached {
		return ErrBeyondFrontier
	}
	m.state.CurrentHole = n
	return nil
}

// UpdateHoleResult replaces (or inserts) the stored result for hole n and
// recomputes every player's record by replaying the full hole log. The
// current hole and frontier are unchanged — editing history never moves play.
func (m *Machine) UpdateHoleResult(n int, results []Matchup) error {
	if m.state.Phase != PhaseScoring && m.state.Phase != PhaseComplete {
		return ErrNotScoring
	}
	if n < 1 || n > HoleCount {
		return ErrInvalidHole
	}
	if n > m.state.MaxHoleReached {
		return ErrBeyondFrontier
	}
	return m.applyHoleResult(n, results)
}

// Stats returns the ranked standings. Derived on every call, never stored —
// the hole log is the source of truth.
func (m *Machine) Stats() []Player {
	return Rank(m.state.Players)
}

// Reset unconditionally returns the machine to the initial setup state.
// Persistence-side clearing is the synchronizer's job.
func (m *Machine) Reset() {
	m.state = DefaultState()
}

// applyHoleResult validates results, upserts the HoleResult for hole n
// (keeping the log sorted by hole number), and rebuilds player stats by
// replaying the whole log from zeroed players. Replay rather than an
// incremental delta is what makes edits to arbitrary past holes correct: the
// edited hole's old contribution has to come out and its new one go in, and
// replaying the ordered log does both for free. All of this happens on a
// scratch copy; the machine's state is only replaced once everything checks
// out.
func (m *Machine) applyHoleResult(n int, results []Matchup) error {
	if len(results) != MatchupsPerHole {
		return ErrWrongResultCount
	}
	var matchups [MatchupsPerHole]Matchup
	for i, r := range results {
		if r.Result == ResultPending {
			return ErrIncompleteResult
		}
		matchups[i] = r
	}

	next := m.state.Clone()

	replaced := false
	for i, hr := range next.HoleResults {
		if hr.HoleNumber == n {
			next.HoleResults[i] = HoleResult{HoleNumber: n, Matchups: matchups}
			replaced = true
			break
		}
	}
	if !replaced {
		next.HoleResults = append(next.HoleResults, HoleResult{HoleNumber: n, Matchups: matchups})
		sort.Slice(next.HoleResults, func(i, j int) bool {
			return next.HoleResults[i].HoleNumber < next.HoleResults[j].HoleNumber
		})
	}

	replayed, err := replay(next.Players, next.HoleResults)
	if err != nil {
		return err
	}
	next.Players = replayed

	// Completion tracks hole 18 having a result, however it got one — an
	// edit can insert it directly when the frontier already sits on 18.
	if _, done := next.resultForHole(HoleCount); done {
		next.Phase = PhaseComplete
	}

	m.state = next
	return nil
}

// replay rebuilds player records from scratch by folding every stored hole
// result, in hole order, onto zeroed players. Deterministic and idempotent:
// the same log always produces the same records.
func replay(players []Player, log []HoleResult) ([]Player, error) {
	if len(players) != PlayerCount {
		return nil, ErrInvalidPlayerCount
	}

	zeroed := make([]Player, len(players))
	for i, p := range players {
		zeroed[i] = Player{Name: p.Name}
	}

	for _, hr := range log {
		updated, err := ProcessHole(zeroed, hr.Matchups)
		if err != nil {
			return nil, err
		}
		zeroed = updated
	}
	return zeroed, nil
}
