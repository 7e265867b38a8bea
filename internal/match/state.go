// Package match implements the rules engine for a 4-player round-robin golf
// match played over 18 holes. Each hole splits the group into 2 head-to-head
// matchups; a matchup win is worth 3 points, a draw 1, a loss 0. The rotation
// guarantees that across any 3 consecutive holes every player faces every
// other player exactly once.
//
// The package is pure: no I/O, no clocks, no database handles. Persistence
// and transport live in internal/storage and internal/handlers — they consume
// snapshots of the state defined here and never reach into it directly.
package match

import (
	"errors"
	"fmt"
)

const (
	// PlayerCount is fixed at 4. The 3-partition rotation in rotation.go only
	// exists for a 4-element set, so other group sizes are rejected outright.
	PlayerCount = 4
	// HoleCount is fixed at 18, the full round.
	HoleCount = 18
	// MatchupsPerHole is always 2: four players pair into two matches.
	MatchupsPerHole = 2
)

// Validation sentinels. Handlers compare with errors.Is to pick a status code.
var (
	ErrInvalidHole        = errors.New("hole number must be between 1 and 18")
	ErrInvalidPlayerCount = errors.New("exactly 4 players are required")
	ErrEmptyName          = errors.New("player name cannot be empty")
	ErrDuplicateName      = errors.New("player names must be unique")
	ErrWrongResultCount   = errors.New("exactly 2 matchup results are required")
	ErrIncompleteResult   = errors.New("every matchup needs a result before the hole can be recorded")
	ErrBeyondFrontier     = errors.New("cannot navigate beyond the furthest hole reached")
	ErrUnresolvedMatchup  = errors.New("matchup has no result")
	ErrUnknownPlayer      = errors.New("matchup references a player not in this match")
	ErrNotScoring         = errors.New("match is not in the scoring phase")
)

// Result is the outcome of a single matchup.
// The zero value ("") means the matchup is still pending.
type Result string

const (
	ResultPending Result = ""
	ResultPlayer1 Result = "player1"
	ResultPlayer2 Result = "player2"
	ResultDraw    Result = "draw"
)

// Phase tracks the lifecycle of a match.
type Phase string

const (
	PhaseSetup    Phase = "setup"    // No players yet; waiting for StartMatch
	PhaseScoring  Phase = "scoring"  // Holes are being played and recorded
	PhaseComplete Phase = "complete" // Hole 18 has a recorded result
)

// Player is one of the 4 competitors with their accumulated record.
// Invariant maintained by the accumulator: Points == 3*Wins + Draws.
type Player struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Wins   int    `json:"wins"`
	Draws  int    `json:"draws"`
	Losses int    `json:"losses"`
}

// Matchup is one head-to-head pairing within a hole. Players are referenced
// by name; names are unique within a match so this is unambiguous.
type Matchup struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
	Result  Result `json:"result"`
}

// HoleResult is the recorded outcome of one hole: exactly 2 matchups, both
// with a non-pending result. Stored entries are replaced wholesale on edit,
// never patched in place.
type HoleResult struct {
	HoleNumber int                      `json:"holeNumber"`
	Matchups   [MatchupsPerHole]Matchup `json:"matchups"`
}

// State is the full serializable match state. It is a plain value: callers
// that hand it to another goroutine must pass a deep copy (see Clone).
type State struct {
	Players        []Player     `json:"players"`
	CurrentHole    int          `json:"currentHole"`
	Phase          Phase        `json:"phase"`
	HoleResults    []HoleResult `json:"holeResults"`
	MaxHoleReached int          `json:"maxHoleReached"`
	ShareCode      string       `json:"shareCode,omitempty"`
}

// DefaultState returns a fresh setup-phase state. Callers always get a new
// value — resets copy this rather than sharing a package-level variable, so
// one session's mutations can never bleed into another's.
func DefaultState() State {
	return State{
		Players:        nil,
		CurrentHole:    1,
		Phase:          PhaseSetup,
		HoleResults:    nil,
		MaxHoleReached: 1,
	}
}

// Clone returns a deep copy of the state. Slices are reallocated so the copy
// can outlive the original across a goroutine boundary (the save scheduler
// serializes snapshots while the owner keeps mutating).
func (s State) Clone() State {
	out := s
	if s.Players != nil {
		out.Players = make([]Player, len(s.Players))
		copy(out.Players, s.Players)
	}
	if s.HoleResults != nil {
		out.HoleResults = make([]HoleResult, len(s.HoleResults))
		copy(out.HoleResults, s.HoleResults)
	}
	return out
}

// Validate checks the structural invariants of a state that arrived from
// outside the engine — typically a record loaded from a backing store. A
// state that fails here is treated as corrupt: discarded and cleared, never
// repaired. The engine itself can only produce valid states, so this is a
// boundary check, not something called on every transition.
func (s State) Validate() error {
	switch s.Phase {
	case PhaseSetup, PhaseScoring, PhaseComplete:
	default:
		return fmt.Errorf("unknown phase %q", s.Phase)
	}

	if s.CurrentHole < 1 || s.CurrentHole > HoleCount {
		return fmt.Errorf("current hole %d out of range", s.CurrentHole)
	}
	if s.MaxHoleReached < 1 || s.MaxHoleReached > HoleCount {
		return fmt.Errorf("max hole reached %d out of range", s.MaxHoleReached)
	}
	if s.MaxHoleReached < s.CurrentHole {
		return fmt.Errorf("max hole reached %d behind current hole %d", s.MaxHoleReached, s.CurrentHole)
	}

	if s.Phase == PhaseSetup {
		if len(s.Players) != 0 {
			return fmt.Errorf("setup phase cannot have players")
		}
		if len(s.HoleResults) != 0 {
			return fmt.Errorf("setup phase cannot have hole results")
		}
		return nil
	}

	if len(s.Players) != PlayerCount {
		return fmt.Errorf("expected %d players, found %d", PlayerCount, len(s.Players))
	}
	names := make(map[string]bool, PlayerCount)
	for _, p := range s.Players {
		if p.Name == "" {
			return fmt.Errorf("player with empty name")
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate player name %q", p.Name)
		}
		names[p.Name] = true
		if p.Points < 0 || p.Wins < 0 || p.Draws < 0 || p.Losses < 0 {
			return fmt.Errorf("player %q has negative stats", p.Name)
		}
		if p.Points != 3*p.Wins+p.Draws {
			return fmt.Errorf("player %q points %d inconsistent with %d wins and %d draws", p.Name, p.Points, p.Wins, p.Draws)
		}
	}

	seen := make(map[int]bool, len(s.HoleResults))
	prev := 0
	for _, hr := range s.HoleResults {
		if hr.HoleNumber < 1 || hr.HoleNumber > HoleCount {
			return fmt.Errorf("hole result %d out of range", hr.HoleNumber)
		}
		if hr.HoleNumber > s.MaxHoleReached {
			return fmt.Errorf("hole result %d beyond frontier %d", hr.HoleNumber, s.MaxHoleReached)
		}
		if seen[hr.HoleNumber] {
			return fmt.Errorf("duplicate hole result for hole %d", hr.HoleNumber)
		}
		if hr.HoleNumber < prev {
			return fmt.Errorf("hole results out of order at hole %d", hr.HoleNumber)
		}
		seen[hr.HoleNumber] = true
		prev = hr.HoleNumber
		for _, m := range hr.Matchups {
			if m.Result == ResultPending {
				return fmt.Errorf("hole %d stored with a pending matchup", hr.HoleNumber)
			}
			if !names[m.Player1] || !names[m.Player2] {
				return fmt.Errorf("hole %d references unknown players", hr.HoleNumber)
			}
		}
	}

	// Complete means — and only means — hole 18 has been recorded.
	if s.Phase == PhaseComplete {
		if s.MaxHoleReached != HoleCount || !seen[HoleCount] {
			return fmt.Errorf("complete phase without a result for hole %d", HoleCount)
		}
	} else if seen[HoleCount] {
		return fmt.Errorf("hole %d recorded but phase is %q", HoleCount, s.Phase)
	}

	return nil
}

// resultForHole returns the stored result for a hole, if any.
func (s State) resultForHole(n int) (HoleResult, bool) {
	for _, hr := range s.HoleResults {
		if hr.HoleNumber == n {
			return hr, true
		}
	}
	return HoleResult{}, false
}
