package match

// rotation.go — the fixed matchup rotation.
//
// A 4-element set has exactly 3 ways to split into two pairs. Cycling through
// those 3 partitions hole by hole means that over any 3 consecutive holes each
// player faces every other player exactly once, and over 18 holes each pairing
// occurs 6 times. The table is fixed rather than computed so the pairing for
// a given hole is stable across sessions, devices, and spectators.
var rotationPatterns = [3][2][2]int{
	{{0, 1}, {2, 3}},
	{{0, 2}, {1, 3}},
	{{0, 3}, {1, 2}},
}

// Pattern returns the partition of player indices {0,1,2,3} into two pairs
// for the given hole. Hole 1 uses the first partition, hole 2 the second,
// hole 3 the third, hole 4 wraps back to the first, and so on.
func Pattern(hole int) ([2][2]int, error) {
	if hole < 1 || hole > HoleCount {
		return [2][2]int{}, ErrInvalidHole
	}
	return rotationPatterns[(hole-1)%len(rotationPatterns)], nil
}

// MatchupsForHole applies the hole's pattern to concrete players, producing
// two pending matchups. The players slice must hold exactly 4 entries; their
// order is the seeding order from StartMatch and never changes mid-match.
func MatchupsForHole(players []Player, hole int) ([MatchupsPerHole]Matchup, error) {
	var out [MatchupsPerHole]Matchup

	pattern, err := Pattern(hole)
	if err != nil {
		return out, err
	}
	if len(players) != PlayerCount {
		return out, ErrInvalidPlayerCount
	}

	for i, pair := range pattern {
		out[i] = Matchup{
			Player1: players[pair[0]].Name,
			Player2: players[pair[1]].Name,
			Result:  ResultPending,
		}
	}
	return out, nil
}
