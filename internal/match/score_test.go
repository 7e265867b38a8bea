package match

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fourPlayers() []Player {
	return []Player{{Name: "Alice"}, {Name: "Bob"}, {Name: "Charlie"}, {Name: "David"}}
}

func TestNewPlayer(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain name", input: "Alice", want: "Alice"},
		{name: "trims whitespace", input: "  Bob  ", want: "Bob"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPlayer(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrEmptyName)
				return
			}
			require.NoError(t, err)
			require.Equal(t, Player{Name: tc.want}, p)
		})
	}
}

func TestProcessHoleAppliesOutcomes(t *testing.T) {
	matchups := [MatchupsPerHole]Matchup{
		{Player1: "Alice", Player2: "Bob", Result: ResultPlayer1},
		{Player1: "Charlie", Player2: "David", Result: ResultDraw},
	}

	updated, err := ProcessHole(fourPlayers(), matchups)
	require.NoError(t, err)

	require.Equal(t, Player{Name: "Alice", Points: 3, Wins: 1}, updated[0])
	require.Equal(t, Player{Name: "Bob", Losses: 1}, updated[1])
	require.Equal(t, Player{Name: "Charlie", Points: 1, Draws: 1}, updated[2])
	require.Equal(t, Player{Name: "David", Points: 1, Draws: 1}, updated[3])

	// Points identity and win/loss symmetry hold after any hole.
	totalWins, totalLosses := 0, 0
	for _, p := range updated {
		require.Equal(t, 3*p.Wins+p.Draws, p.Points, "points identity for %s", p.Name)
		require.Equal(t, 1, HolesCompleted(p))
		totalWins += p.Wins
		totalLosses += p.Losses
	}
	require.Equal(t, totalWins, totalLosses)
}

func TestProcessHoleDoesNotMutateInput(t *testing.T) {
	players := fourPlayers()
	matchups := [MatchupsPerHole]Matchup{
		{Player1: "Alice", Player2: "Bob", Result: ResultPlayer2},
		{Player1: "Charlie", Player2: "David", Result: ResultPlayer1},
	}

	_, err := ProcessHole(players, matchups)
	require.NoError(t, err)
	require.Equal(t, fourPlayers(), players, "input players must stay untouched")
}

func TestProcessHoleValidation(t *testing.T) {
	cases := []struct {
		name     string
		players  []Player
		matchups [MatchupsPerHole]Matchup
		want     error
	}{
		{
			name:    "pending result",
			players: fourPlayers(),
			matchups: [MatchupsPerHole]Matchup{
				{Player1: "Alice", Player2: "Bob", Result: ResultPending},
				{Player1: "Charlie", Player2: "David", Result: ResultDraw},
			},
			want: ErrUnresolvedMatchup,
		},
		{
			name:    "unknown player",
			players: fourPlayers(),
			matchups: [MatchupsPerHole]Matchup{
				{Player1: "Alice", Player2: "Bob", Result: ResultPlayer1},
				{Player1: "Charlie", Player2: "Eve", Result: ResultDraw},
			},
			want: ErrUnknownPlayer,
		},
		{
			name:    "wrong player count",
			players: fourPlayers()[:3],
			matchups: [MatchupsPerHole]Matchup{
				{Player1: "Alice", Player2: "Bob", Result: ResultPlayer1},
				{Player1: "Charlie", Player2: "David", Result: ResultDraw},
			},
			want: ErrInvalidPlayerCount,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ProcessHole(tc.players, tc.matchups)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRankOrdersByPointsThenName(t *testing.T) {
	players := []Player{
		{Name: "David", Points: 9, Wins: 3},
		{Name: "Alice", Points: 9, Wins: 3},
		{Name: "Bob", Points: 12, Wins: 4},
		{Name: "Charlie", Points: 2, Draws: 2},
	}

	ranked := Rank(players)

	names := []string{ranked[0].Name, ranked[1].Name, ranked[2].Name, ranked[3].Name}
	require.Equal(t, []string{"Bob", "Alice", "David", "Charlie"}, names)

	// Total order: every adjacent pair is strictly ordered.
	for i := 0; i < len(ranked)-1; i++ {
		a, b := ranked[i], ranked[i+1]
		strict := a.Points > b.Points || (a.Points == b.Points && a.Name < b.Name)
		require.True(t, strict, "ranking not strictly ordered at %d", i)
	}

	// Input order untouched.
	require.Equal(t, "David", players[0].Name)
}
