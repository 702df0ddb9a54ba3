package game

import "context"

// View answers read-only questions about a round. It never writes to the
// State it wraps, so it is safe on committed state outside tx execution.
type View struct {
	st     *State
	ledger Ledger
	clock  Clock
}

func NewView(st *State, ledger Ledger, clock Clock) View {
	if st == nil {
		panic("guess view: state is nil")
	}
	if ledger == nil {
		panic("guess view: ledger is nil")
	}
	if clock == nil {
		panic("guess view: clock is nil")
	}
	return View{st: st, ledger: ledger, clock: clock}
}

// Round returns a copy of the round record.
func (v View) Round() Round {
	r := v.st.Round
	r.Commitment = append([]byte(nil), r.Commitment...)
	return r
}

func (v View) Phase() Phase {
	return v.st.Round.PhaseAt(v.clock.Now())
}

// Result returns the frozen outcome, or the zero Result before a reveal.
func (v View) Result() Result {
	r := v.st.Round
	if !r.Revealed {
		return Result{}
	}
	return Result{
		WinningNumber:   r.WinningNumber,
		WinningDistance: r.WinningDistance,
		WinnerCount:     r.WinnerCount,
		PrizePerWinner:  r.PrizePerWinner,
	}
}

func (v View) ParticipantCount() int {
	return len(v.st.Participants)
}

// ParticipantsByGuess lists the identities that chose guess, in bet order.
func (v View) ParticipantsByGuess(guess uint64) []string {
	return append([]string(nil), v.st.GuessIndex[guess]...)
}

func (v View) Participant(addr string) (Participant, bool) {
	p := v.st.Participants[addr]
	if p == nil {
		return Participant{}, false
	}
	return *p, true
}

// IsWinner reports whether addr played and sits at the winning distance.
func (v View) IsWinner(addr string) bool {
	r := v.st.Round
	p := v.st.Participants[addr]
	return r.Revealed && p != nil && p.HasPlayed && distance(p.Guess, r.WinningNumber) == r.WinningDistance
}

// Pool is the total escrowed stake of the round.
func (v View) Pool() (uint64, error) {
	return poolOf(v.st.TotalStaked)
}

// Dust is the remainder of the pool that integer division leaves unclaimed.
// It is zero before a reveal and is never swept.
func (v View) Dust() (uint64, error) {
	return dustOf(v.st)
}

// Outstanding is what the escrow still owes or holds: pool minus payouts.
func (v View) Outstanding() (uint64, error) {
	pool, err := poolOf(v.st.TotalStaked)
	if err != nil {
		return 0, err
	}
	return pool - v.st.TotalPaid, nil
}

func (v View) Balance(ctx context.Context, addr string) uint64 {
	return v.ledger.Balance(ctx, addr)
}
