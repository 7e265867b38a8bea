package match

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func startedMachine(t *testing.T) *Machine {
	t.Helper()
	m := NewMachine()
	require.NoError(t, m.StartMatch([]string{"Alice", "Bob", "Charlie", "David"}))
	return m
}

// recordHole records the current hole with the given two results applied to
// the rotation's pairings for that hole.
func recordHole(t *testing.T, m *Machine, r1, r2 Result) {
	t.Helper()
	matchups, ok := m.CurrentMatchups()
	require.True(t, ok)
	matchups[0].Result = r1
	matchups[1].Result = r2
	require.NoError(t, m.RecordHoleResult(matchups[:]))
}

func playerByName(t *testing.T, players []Player, name string) Player {
	t.Helper()
	for _, p := range players {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("player %q not found", name)
	return Player{}
}

func TestStartMatchValidation(t *testing.T) {
	cases := []struct {
		name  string
		names []string
		want  error
	}{
		{name: "too few", names: []string{"Alice", "Bob", "Charlie"}, want: ErrInvalidPlayerCount},
		{name: "too many", names: []string{"A", "B", "C", "D", "E"}, want: ErrInvalidPlayerCount},
		{name: "empty after trim", names: []string{"Alice", "  ", "Charlie", "David"}, want: ErrEmptyName},
		{name: "duplicate", names: []string{"Alice", "Bob", "Alice", "David"}, want: ErrDuplicateName},
		{name: "duplicate after trim", names: []string{"Alice", " Alice ", "Charlie", "David"}, want: ErrDuplicateName},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMachine()
			err := m.StartMatch(tc.names)
			require.ErrorIs(t, err, tc.want)
			// Failed start leaves the machine in setup, untouched.
			require.Equal(t, PhaseSetup, m.Phase())
			require.Empty(t, m.Snapshot().Players)
		})
	}
}

func TestStartMatchEntersScoring(t *testing.T) {
	m := startedMachine(t)

	s := m.Snapshot()
	require.Equal(t, PhaseScoring, s.Phase)
	require.Equal(t, 1, s.CurrentHole)
	require.Equal(t, 1, s.MaxHoleReached)
	require.Len(t, s.Players, 4)
	require.Empty(t, s.HoleResults)
	require.NoError(t, s.Validate())
}

func TestCurrentMatchupsOutsideScoring(t *testing.T) {
	m := NewMachine()
	_, ok := m.CurrentMatchups()
	require.False(t, ok, "setup phase has no matchups")
}

func TestRecordHoleResultAdvances(t *testing.T) {
	m := startedMachine(t)
	recordHole(t, m, ResultPlayer1, ResultDraw)

	s := m.Snapshot()
	require.Equal(t, 2, s.CurrentHole)
	require.Equal(t, 2, s.MaxHoleReached)
	require.Len(t, s.HoleResults, 1)
	require.Equal(t, 1, s.HoleResults[0].HoleNumber)
	require.Equal(t, PhaseScoring, s.Phase)
	require.NoError(t, s.Validate())
}

func TestRecordHoleResultValidation(t *testing.T) {
	m := startedMachine(t)
	matchups, ok := m.CurrentMatchups()
	require.True(t, ok)

	// Wrong count.
	err := m.RecordHoleResult(matchups[:1])
	require.ErrorIs(t, err, ErrWrongResultCount)

	// Missing result on the second matchup.
	matchups[0].Result = ResultPlayer1
	err = m.RecordHoleResult(matchups[:])
	require.ErrorIs(t, err, ErrIncompleteResult)

	// Unknown player.
	matchups[0].Result = ResultPlayer1
	matchups[1].Result = ResultDraw
	matchups[1].Player2 = "Eve"
	err = m.RecordHoleResult(matchups[:])
	require.ErrorIs(t, err, ErrUnknownPlayer)

	// Every failure above left the state untouched.
	s := m.Snapshot()
	require.Equal(t, 1, s.CurrentHole)
	require.Empty(t, s.HoleResults)
	for _, p := range s.Players {
		require.Zero(t, p.Points)
	}
}

// Scenario: Alice wins her matchup on all 18 holes. Alice is seeded first, so
// she is player1 of the first matchup in every rotation pattern.
func TestFullMatchAliceSweeps(t *testing.T) {
	m := startedMachine(t)

	for hole := 1; hole <= HoleCount; hole++ {
		recordHole(t, m, ResultPlayer1, ResultPlayer2)
	}

	s := m.Snapshot()
	require.Equal(t, PhaseComplete, s.Phase)
	require.Equal(t, HoleCount, s.CurrentHole, "current hole parks on 18 after completion")
	require.Equal(t, HoleCount, s.MaxHoleReached)
	require.NoError(t, s.Validate())

	alice := playerByName(t, s.Players, "Alice")
	require.Equal(t, 54, alice.Points)
	require.Equal(t, 18, alice.Wins)
	require.Equal(t, 18, HolesCompleted(alice))

	// Completed match rejects further recording.
	matchups := s.HoleResults[0].Matchups
	require.ErrorIs(t, m.RecordHoleResult(matchups[:]), ErrNotScoring)
}

// Scenario: every matchup halved on every hole.
func TestFullMatchAllDraws(t *testing.T) {
	m := startedMachine(t)

	for hole := 1; hole <= HoleCount; hole++ {
		recordHole(t, m, ResultDraw, ResultDraw)
	}

	s := m.Snapshot()
	require.Equal(t, PhaseComplete, s.Phase)
	for _, p := range s.Players {
		require.Equal(t, 18, p.Points, p.Name)
		require.Equal(t, 18, p.Draws, p.Name)
		require.Zero(t, p.Wins, p.Name)
		require.Zero(t, p.Losses, p.Name)
	}
}

func TestNavigateWithinFrontier(t *testing.T) {
	m := startedMachine(t)
	for hole := 1; hole <= 3; hole++ {
		recordHole(t, m, ResultPlayer1, ResultPlayer2)
	}
	require.Equal(t, 4, m.Snapshot().MaxHoleReached)

	// Beyond the frontier: rejected, nothing moves.
	require.ErrorIs(t, m.NavigateToHole(5), ErrBeyondFrontier)
	require.Equal(t, 4, m.Snapshot().CurrentHole)

	// Out of range entirely.
	require.ErrorIs(t, m.NavigateToHole(0), ErrInvalidHole)
	require.ErrorIs(t, m.NavigateToHole(19), ErrInvalidHole)

	// Backward navigation works and leaves the frontier alone.
	require.NoError(t, m.NavigateToHole(2))
	s := m.Snapshot()
	require.Equal(t, 2, s.CurrentHole)
	require.Equal(t, 4, s.MaxHoleReached)

	// The revisited hole shows its stored result, not fresh pairings.
	matchups, ok := m.CurrentMatchups()
	require.True(t, ok)
	require.NotEqual(t, ResultPending, matchups[0].Result)

	// An unplayed hole inside the frontier shows pending pairings.
	require.NoError(t, m.NavigateToHole(4))
	matchups, ok = m.CurrentMatchups()
	require.True(t, ok)
	require.Equal(t, ResultPending, matchups[0].Result)
	require.Equal(t, ResultPending, matchups[1].Result)
}

// Scenario: hole 1 is "Alice beats Bob, Charlie halves with David", later
// edited to all draws. Alice trades a 3-point win for a 1-point draw.
func TestUpdateHoleResultReplaysHistory(t *testing.T) {
	m := startedMachine(t)
	recordHole(t, m, ResultPlayer1, ResultDraw)
	recordHole(t, m, ResultPlayer1, ResultPlayer1)
	recordHole(t, m, ResultDraw, ResultDraw)

	before := m.Snapshot()
	aliceBefore := playerByName(t, before.Players, "Alice")

	matchups, _, err := m.MatchupsForHole(1)
	require.NoError(t, err)
	matchups[0].Result = ResultDraw
	matchups[1].Result = ResultDraw
	require.NoError(t, m.UpdateHoleResult(1, matchups[:]))

	after := m.Snapshot()
	aliceAfter := playerByName(t, after.Players, "Alice")

	require.Equal(t, aliceBefore.Points-2, aliceAfter.Points)
	require.Equal(t, aliceBefore.Wins-1, aliceAfter.Wins)
	require.Equal(t, aliceBefore.Draws+1, aliceAfter.Draws)

	// Editing history never moves play.
	require.Equal(t, before.CurrentHole, after.CurrentHole)
	require.Equal(t, before.MaxHoleReached, after.MaxHoleReached)
	require.NoError(t, after.Validate())

	// Round-trip: the stored matchups are exactly what was submitted.
	stored, ok, err := m.MatchupsForHole(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ResultDraw, stored[0].Result)
	require.Equal(t, ResultDraw, stored[1].Result)
}

func TestUpdateHoleResultValidation(t *testing.T) {
	m := startedMachine(t)
	recordHole(t, m, ResultPlayer1, ResultPlayer2)

	matchups, _, err := m.MatchupsForHole(1)
	require.NoError(t, err)

	require.ErrorIs(t, m.UpdateHoleResult(0, matchups[:]), ErrInvalidHole)
	require.ErrorIs(t, m.UpdateHoleResult(19, matchups[:]), ErrInvalidHole)
	// Editing a hole past the frontier would plant a result ahead of play.
	require.ErrorIs(t, m.UpdateHoleResult(7, matchups[:]), ErrBeyondFrontier)
}

// Editing can insert hole 18's result directly once the frontier sits on 18;
// completion must track that, not just the RecordHoleResult path.
func TestUpdateHoleResultCanCompleteMatch(t *testing.T) {
	m := startedMachine(t)
	for hole := 1; hole <= 17; hole++ {
		recordHole(t, m, ResultPlayer1, ResultPlayer2)
	}
	require.Equal(t, PhaseScoring, m.Phase())
	require.Equal(t, HoleCount, m.Snapshot().CurrentHole)

	matchups, _, err := m.MatchupsForHole(HoleCount)
	require.NoError(t, err)
	matchups[0].Result = ResultDraw
	matchups[1].Result = ResultDraw
	require.NoError(t, m.UpdateHoleResult(HoleCount, matchups[:]))

	s := m.Snapshot()
	require.Equal(t, PhaseComplete, s.Phase)
	require.Equal(t, HoleCount, s.CurrentHole)
	require.NoError(t, s.Validate())
}

// Replay determinism: replaying the same log repeatedly always lands on the
// same records.
func TestReplayIsIdempotent(t *testing.T) {
	m := startedMachine(t)
	recordHole(t, m, ResultPlayer1, ResultPlayer2)
	recordHole(t, m, ResultDraw, ResultPlayer1)
	recordHole(t, m, ResultPlayer2, ResultDraw)

	reference := m.Snapshot()

	for i := 0; i < 3; i++ {
		players, err := replay(reference.Players, reference.HoleResults)
		require.NoError(t, err)
		require.Equal(t, reference.Players, players, "replay %d diverged", i)
	}
}

func TestStatsDerivedRanking(t *testing.T) {
	m := startedMachine(t)
	recordHole(t, m, ResultPlayer1, ResultPlayer2) // Alice wins, David wins

	stats := m.Stats()
	require.Len(t, stats, 4)
	require.Equal(t, 3, stats[0].Points)
	require.Equal(t, "Alice", stats[0].Name, "tie on points breaks alphabetically")
	require.Equal(t, "David", stats[1].Name)

	// Stats is a derived view; mutating it must not touch the machine.
	stats[0].Points = 99
	require.Equal(t, 3, m.Stats()[0].Points)
}

func TestResetReturnsToSetup(t *testing.T) {
	m := startedMachine(t)
	recordHole(t, m, ResultPlayer1, ResultDraw)

	m.Reset()

	s := m.Snapshot()
	require.Equal(t, DefaultState(), s)
	require.Equal(t, PhaseSetup, s.Phase)

	// A fresh match can be started straight after reset.
	require.NoError(t, m.StartMatch([]string{"W", "X", "Y", "Z"}))
}

func TestRestoreRejectsCorruptState(t *testing.T) {
	corrupt := []struct {
		name  string
		state State
	}{
		{name: "unknown phase", state: State{Phase: "paused", CurrentHole: 1, MaxHoleReached: 1}},
		{name: "hole out of range", state: State{Phase: PhaseSetup, CurrentHole: 0, MaxHoleReached: 1}},
		{name: "frontier behind current", state: State{Phase: PhaseSetup, CurrentHole: 5, MaxHoleReached: 3}},
		{
			name: "scoring without players",
			state: State{Phase: PhaseScoring, CurrentHole: 1, MaxHoleReached: 1},
		},
		{
			name: "points identity broken",
			state: State{
				Phase:       PhaseScoring,
				CurrentHole: 1, MaxHoleReached: 1,
				Players: []Player{
					{Name: "Alice", Points: 5, Wins: 1},
					{Name: "Bob"}, {Name: "Charlie"}, {Name: "David"},
				},
			},
		},
	}

	for _, tc := range corrupt {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMachine()
			require.Error(t, m.Restore(tc.state))
			require.Equal(t, PhaseSetup, m.Phase(), "failed restore must not replace state")
		})
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	m := startedMachine(t)
	recordHole(t, m, ResultPlayer1, ResultDraw)
	snap := m.Snapshot()

	restored := NewMachine()
	require.NoError(t, restored.Restore(snap))
	require.Equal(t, snap, restored.Snapshot())

	// The restored machine continues scoring from where the snapshot left off.
	recordHole(t, restored, ResultDraw, ResultDraw)
	require.Equal(t, 3, restored.Snapshot().CurrentHole)
}

func TestSnapshotIsDetached(t *testing.T) {
	m := startedMachine(t)
	snap := m.Snapshot()
	snap.Players[0].Name = "Mallory"
	require.Equal(t, "Alice", m.Snapshot().Players[0].Name)
}
