package game

const (
	// ModuleName is the error codespace and log module of the round.
	ModuleName = "guess"

	// Denom is the base unit stakes and prizes are denominated in.
	Denom = "uguess"
)

// Fixed round parameters. They are not configurable.
const (
	MinGuess uint64 = 1
	MaxGuess uint64 = 100

	// GameDuration is the length of the betting window in heights.
	GameDuration int64 = 5760

	// RevealDeadline is the length of the reveal window that follows the
	// betting window, in heights.
	RevealDeadline int64 = 5760

	// StakeAmount is the fixed stake pulled for every bet.
	StakeAmount uint64 = 1_000_000
)
