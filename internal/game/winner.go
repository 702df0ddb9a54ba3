package game

func distance(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

// SelectWinner scans the admissible guess domain, not the participant set,
// so its cost does not depend on how many bets were placed. It returns the
// minimal distance to winning and the number of participants at exactly that
// distance; ties on either side and shared guesses all count.
func SelectWinner(index map[uint64][]string, winning uint64) (minDistance uint64, winners uint64, err error) {
	found := false
	for v := MinGuess; v <= MaxGuess; v++ {
		n := uint64(len(index[v]))
		if n == 0 {
			continue
		}
		d := distance(v, winning)
		switch {
		case !found || d < minDistance:
			minDistance, winners, found = d, n, true
		case d == minDistance:
			winners += n
		}
	}
	if !found {
		return 0, 0, ErrStateConflict.Wrap("no participants")
	}
	return minDistance, winners, nil
}
