package game

// Round is the singleton round record.
//
// Once Revealed is set, WinningNumber, WinningDistance, WinnerCount and
// PrizePerWinner never change again.
type Round struct {
	Authority   string `json:"authority"`
	StartHeight int64  `json:"startHeight"` // 0 = not started
	Commitment  []byte `json:"commitment,omitempty"`

	Revealed        bool   `json:"revealed"`
	WinningNumber   uint64 `json:"winningNumber,omitempty"`
	WinningDistance uint64 `json:"winningDistance,omitempty"`
	WinnerCount     uint64 `json:"winnerCount,omitempty"`
	PrizePerWinner  uint64 `json:"prizePerWinner,omitempty"`
}

// Participant is the per-identity bet record. Claimed and Refunded are
// mutually exclusive and each implies HasPlayed.
type Participant struct {
	Guess     uint64 `json:"guess"`
	HasPlayed bool   `json:"hasPlayed"`
	Claimed   bool   `json:"claimed,omitempty"`
	Refunded  bool   `json:"refunded,omitempty"`
}

// State is the whole mutable aggregate of a round.
type State struct {
	Round Round `json:"round"`

	Participants map[string]*Participant `json:"participants"`
	// GuessIndex maps a guessed value to the identities that chose it, in
	// bet order.
	GuessIndex map[uint64][]string `json:"guessIndex"`

	// TotalStaked counts admitted bets; the pool is TotalStaked*StakeAmount.
	TotalStaked uint64 `json:"totalStaked"`
	// TotalPaid sums successful prize and refund transfers.
	TotalPaid uint64 `json:"totalPaid"`
}

func NewState(authority string) *State {
	return &State{
		Round:        Round{Authority: authority},
		Participants: map[string]*Participant{},
		GuessIndex:   map[uint64][]string{},
	}
}

// Normalize fills nil maps left by decoding an older or empty state.
func (s *State) Normalize() {
	if s.Participants == nil {
		s.Participants = map[string]*Participant{}
	}
	if s.GuessIndex == nil {
		s.GuessIndex = map[uint64][]string{}
	}
}

// Result is the frozen outcome of a successful reveal.
type Result struct {
	WinningNumber   uint64 `json:"winningNumber"`
	WinningDistance uint64 `json:"winningDistance"`
	WinnerCount     uint64 `json:"winnerCount"`
	PrizePerWinner  uint64 `json:"prizePerWinner"`
}
