package match

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPatternPartitionsAllFourPlayers(t *testing.T) {
	for hole := 1; hole <= HoleCount; hole++ {
		pattern, err := Pattern(hole)
		require.NoError(t, err, "hole %d", hole)

		seen := map[int]bool{}
		for _, pair := range pattern {
			for _, idx := range pair {
				require.False(t, seen[idx], "hole %d repeats player index %d", hole, idx)
				seen[idx] = true
			}
		}
		require.Len(t, seen, PlayerCount, "hole %d does not cover all players", hole)
	}
}

func TestPatternCyclesAllThreePartitions(t *testing.T) {
	// Across any aligned window of 3 holes, the 3 distinct partitions must
	// each appear exactly once — that's what guarantees everyone plays
	// everyone over the window.
	for start := 1; start+2 <= HoleCount; start += 3 {
		seen := map[[2][2]int]bool{}
		for hole := start; hole < start+3; hole++ {
			pattern, err := Pattern(hole)
			require.NoError(t, err)
			require.False(t, seen[pattern], "partition repeated within holes %d-%d", start, start+2)
			seen[pattern] = true
		}
		require.Len(t, seen, 3)
	}
}

func TestPatternRejectsOutOfRangeHoles(t *testing.T) {
	for _, hole := range []int{0, -1, 19, 100} {
		_, err := Pattern(hole)
		require.ErrorIs(t, err, ErrInvalidHole, "hole %d", hole)
	}
}

func TestMatchupsForHole(t *testing.T) {
	players := []Player{{Name: "Alice"}, {Name: "Bob"}, {Name: "Charlie"}, {Name: "David"}}

	matchups, err := MatchupsForHole(players, 1)
	require.NoError(t, err)
	require.Equal(t, Matchup{Player1: "Alice", Player2: "Bob", Result: ResultPending}, matchups[0])
	require.Equal(t, Matchup{Player1: "Charlie", Player2: "David", Result: ResultPending}, matchups[1])

	// Hole 2 uses the second partition: {0,2}/{1,3}.
	matchups, err = MatchupsForHole(players, 2)
	require.NoError(t, err)
	require.Equal(t, "Alice", matchups[0].Player1)
	require.Equal(t, "Charlie", matchups[0].Player2)
	require.Equal(t, "Bob", matchups[1].Player1)
	require.Equal(t, "David", matchups[1].Player2)

	// Hole 4 wraps back to the first partition.
	wrapped, err := MatchupsForHole(players, 4)
	require.NoError(t, err)
	first, err := MatchupsForHole(players, 1)
	require.NoError(t, err)
	require.Equal(t, first, wrapped)
}

func TestMatchupsForHoleRejectsWrongPlayerCount(t *testing.T) {
	_, err := MatchupsForHole([]Player{{Name: "Alice"}}, 1)
	require.ErrorIs(t, err, ErrInvalidPlayerCount)

	_, err = MatchupsForHole(nil, 5)
	require.ErrorIs(t, err, ErrInvalidPlayerCount)
}
