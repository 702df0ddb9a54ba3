package game

type Phase string

const (
	PhaseUnstarted  Phase = "unstarted"
	PhaseOpen       Phase = "open"
	PhaseClosed     Phase = "closed"
	PhaseSettled    Phase = "settled"
	PhaseRefundOpen Phase = "refundOpen"
)

func (r Round) Started() bool {
	return r.StartHeight != 0
}

// CloseHeight is the first height at which bets are no longer accepted.
func (r Round) CloseHeight() int64 {
	return r.StartHeight + GameDuration
}

// RevealDeadlineHeight is the last height at which a reveal is accepted.
func (r Round) RevealDeadlineHeight() int64 {
	return r.CloseHeight() + RevealDeadline
}

func (r Round) BettingOpen(now int64) bool {
	return r.Started() && r.StartHeight <= now && now < r.CloseHeight()
}

// revealWindowOpen is the single deadline predicate shared by reveal and
// refund: reveal needs it true, refund needs it false.
func (r Round) revealWindowOpen(now int64) bool {
	return now <= r.RevealDeadlineHeight()
}

// PhaseAt derives the phase from the recorded milestones and the clock.
func (r Round) PhaseAt(now int64) Phase {
	switch {
	case !r.Started():
		return PhaseUnstarted
	case r.Revealed:
		return PhaseSettled
	case now < r.CloseHeight():
		return PhaseOpen
	case r.revealWindowOpen(now):
		return PhaseClosed
	default:
		return PhaseRefundOpen
	}
}

func (r Round) requireBettingOpen(now int64) error {
	if !r.Started() {
		return ErrWrongPhase.Wrap("round not started")
	}
	if now < r.StartHeight {
		return ErrWrongPhase.Wrapf("height %d precedes start height %d", now, r.StartHeight)
	}
	if !r.BettingOpen(now) {
		return ErrWrongPhase.Wrapf("betting closed at height %d", r.CloseHeight())
	}
	return nil
}

func (r Round) requireRevealWindow(now int64) error {
	if !r.Started() {
		return ErrWrongPhase.Wrap("round not started")
	}
	if now < r.CloseHeight() {
		return ErrWrongPhase.Wrapf("betting still open until height %d", r.CloseHeight())
	}
	if !r.revealWindowOpen(now) {
		return ErrWrongPhase.Wrapf("reveal deadline passed at height %d", r.RevealDeadlineHeight())
	}
	return nil
}

func (r Round) requireRefundWindow(now int64) error {
	if !r.Started() {
		return ErrWrongPhase.Wrap("round not started")
	}
	if r.Revealed {
		return ErrStateConflict.Wrap("round already revealed")
	}
	if r.revealWindowOpen(now) {
		return ErrWrongPhase.Wrapf("refunds open after height %d", r.RevealDeadlineHeight())
	}
	return nil
}
