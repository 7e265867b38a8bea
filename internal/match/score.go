package match

// score.go — the score accumulator.
//
// Standings use the classic 3/1/0 scheme: 3 points for a matchup win, 1 for a
// draw, 0 for a loss. Every function here is pure — players go in by value and
// come out updated, which is what makes full-history replay (machine.go) safe
// to run as many times as needed.

import (
	"sort"
	"strings"
)

// outcome is a single player's side of a matchup result.
type outcome int

const (
	outcomeWin outcome = iota
	outcomeDraw
	outcomeLoss
)

// NewPlayer creates a zeroed player from a raw name. The name is trimmed;
// a name that is empty after trimming is rejected.
func NewPlayer(name string) (Player, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Player{}, ErrEmptyName
	}
	return Player{Name: trimmed}, nil
}

// applyOutcome returns a copy of the player with one matchup outcome folded
// into their record. A loss moves no points but still counts a hole played.
func applyOutcome(p Player, o outcome) Player {
	switch o {
	case outcomeWin:
		p.Points += 3
		p.Wins++
	case outcomeDraw:
		p.Points++
		p.Draws++
	case outcomeLoss:
		p.Losses++
	}
	return p
}

// ProcessHole folds one hole's two matchup results into the players' records
// and returns the updated players in their original order. Both matchups must
// be resolved and must reference players from the supplied four; otherwise
// nothing is applied.
func ProcessHole(players []Player, matchups [MatchupsPerHole]Matchup) ([]Player, error) {
	if len(players) != PlayerCount {
		return nil, ErrInvalidPlayerCount
	}

	index := make(map[string]int, PlayerCount)
	for i, p := range players {
		index[p.Name] = i
	}

	// Validate both matchups before touching anything, so a bad second
	// matchup can't leave the first one half-applied.
	for _, m := range matchups {
		if m.Result == ResultPending {
			return nil, ErrUnresolvedMatchup
		}
		if _, ok := index[m.Player1]; !ok {
			return nil, ErrUnknownPlayer
		}
		if _, ok := index[m.Player2]; !ok {
			return nil, ErrUnknownPlayer
		}
	}

	updated := make([]Player, len(players))
	copy(updated, players)

	for _, m := range matchups {
		i1, i2 := index[m.Player1], index[m.Player2]
		switch m.Result {
		case ResultPlayer1:
			updated[i1] = applyOutcome(updated[i1], outcomeWin)
			updated[i2] = applyOutcome(updated[i2], outcomeLoss)
		case ResultPlayer2:
			updated[i1] = applyOutcome(updated[i1], outcomeLoss)
			updated[i2] = applyOutcome(updated[i2], outcomeWin)
		case ResultDraw:
			updated[i1] = applyOutcome(updated[i1], outcomeDraw)
			updated[i2] = applyOutcome(updated[i2], outcomeDraw)
		}
	}

	return updated, nil
}

// Rank returns the players ordered for the leaderboard: points descending,
// ties broken alphabetically by name. Names are unique within a match, so the
// order is total — no two entries ever compare equal. The input is not
// mutated.
func Rank(players []Player) []Player {
	ranked := make([]Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Points != ranked[j].Points {
			return ranked[i].Points > ranked[j].Points
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

// HolesCompleted reports how many holes a player has a recorded result for.
// Every hole contributes exactly one of win/draw/loss per player.
func HolesCompleted(p Player) int {
	return p.Wins + p.Draws + p.Losses
}
