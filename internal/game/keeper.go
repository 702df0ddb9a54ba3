package game

import (
	"context"
	"slices"

	"cosmossdk.io/log"

	"closestguess/internal/commit"
)

// Ledger moves stake between participants and the round escrow. A non-nil
// error is a hard failure of the calling operation. Implementations may call
// back into the Keeper before returning.
type Ledger interface {
	Pull(ctx context.Context, from string, amount uint64) error
	Push(ctx context.Context, to string, amount uint64) error
	Balance(ctx context.Context, addr string) uint64
}

// Clock reports a monotonically non-decreasing height.
type Clock interface {
	Now() int64
}

type ClockFunc func() int64

func (f ClockFunc) Now() int64 { return f() }

// Keeper applies round operations to a State. It takes no lock: callers
// serialise entry points, and a reentrant call from the Ledger observes the
// flags already written by the outer call.
type Keeper struct {
	View
	logger log.Logger
}

func NewKeeper(st *State, ledger Ledger, clock Clock, logger log.Logger) *Keeper {
	v := NewView(st, ledger, clock)
	if logger == nil {
		logger = log.NewNopLogger()
	}
	st.Normalize()
	return &Keeper{
		View:   v,
		logger: logger.With("module", "x/"+ModuleName),
	}
}

func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// Start opens betting. Only the authority may call it, once, with a
// non-empty commitment digest.
func (k *Keeper) Start(caller string, digest []byte) error {
	r := &k.st.Round
	if caller != r.Authority {
		return ErrUnauthorized.Wrapf("%q cannot start the round", caller)
	}
	if r.Started() {
		return ErrStateConflict.Wrapf("round already started at height %d", r.StartHeight)
	}
	if len(digest) == 0 {
		return ErrInvalidRequest.Wrap("missing commitment")
	}
	now := k.clock.Now()
	if now <= 0 {
		return ErrWrongPhase.Wrapf("cannot start at height %d", now)
	}

	r.StartHeight = now
	r.Commitment = append([]byte(nil), digest...)

	k.logger.Info("round started",
		"height", now,
		"closeHeight", r.CloseHeight(),
		"revealDeadline", r.RevealDeadlineHeight(),
	)
	return nil
}

// Bet records caller's guess and pulls one stake into escrow. If the pull
// fails every effect of this call is undone.
func (k *Keeper) Bet(ctx context.Context, caller string, guess uint64) error {
	if caller == "" {
		return ErrInvalidRequest.Wrap("missing caller")
	}
	r := &k.st.Round
	if err := r.requireBettingOpen(k.clock.Now()); err != nil {
		return err
	}
	if len(r.Commitment) == 0 {
		return ErrInvalidRequest.Wrap("commitment not set")
	}
	if guess < MinGuess || guess > MaxGuess {
		return ErrInvalidRequest.Wrapf("guess %d outside [%d,%d]", guess, MinGuess, MaxGuess)
	}
	if _, ok := k.st.Participants[caller]; ok {
		return ErrInvalidRequest.Wrapf("%s already placed a bet", caller)
	}
	total, err := addUint64Checked(k.st.TotalStaked, 1, "total staked")
	if err != nil {
		return ErrInvalidRequest.Wrap(err.Error())
	}

	k.st.Participants[caller] = &Participant{Guess: guess, HasPlayed: true}
	k.st.GuessIndex[guess] = append(k.st.GuessIndex[guess], caller)
	k.st.TotalStaked = total

	if err := k.ledger.Pull(ctx, caller, StakeAmount); err != nil {
		k.undoBet(caller, guess)
		return ErrTransferFailed.Wrapf("pull stake from %s: %s", caller, err)
	}

	k.logger.Debug("bet placed", "player", caller, "totalStaked", k.st.TotalStaked)
	return nil
}

func (k *Keeper) undoBet(caller string, guess uint64) {
	delete(k.st.Participants, caller)
	ids := k.st.GuessIndex[guess]
	if i := slices.Index(ids, caller); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	}
	if len(ids) == 0 {
		delete(k.st.GuessIndex, guess)
	} else {
		k.st.GuessIndex[guess] = ids
	}
	k.st.TotalStaked--
}

// Reveal discloses the committed number, selects the winners and freezes
// the result. It must be called by the authority between the close height
// and the reveal deadline, inclusive.
func (k *Keeper) Reveal(caller string, number uint64, secret []byte) (Result, error) {
	r := &k.st.Round
	if caller != r.Authority {
		return Result{}, ErrUnauthorized.Wrapf("%q cannot reveal", caller)
	}
	if r.Revealed {
		return Result{}, ErrStateConflict.Wrap("round already revealed")
	}
	if err := r.requireRevealWindow(k.clock.Now()); err != nil {
		return Result{}, err
	}
	if number < MinGuess || number > MaxGuess {
		return Result{}, ErrInvalidRequest.Wrapf("number %d outside [%d,%d]", number, MinGuess, MaxGuess)
	}
	if !commit.Verify(r.Commitment, number, secret, caller) {
		return Result{}, ErrCommitMismatch
	}

	dist, winners, err := SelectWinner(k.st.GuessIndex, number)
	if err != nil {
		return Result{}, err
	}
	prize, err := prizePerWinner(k.st.TotalStaked, winners)
	if err != nil {
		return Result{}, ErrStateConflict.Wrap(err.Error())
	}

	r.Revealed = true
	r.WinningNumber = number
	r.WinningDistance = dist
	r.WinnerCount = winners
	r.PrizePerWinner = prize

	res := k.Result()
	k.logger.Info("round revealed",
		"number", number,
		"distance", dist,
		"winners", winners,
		"prize", prize,
	)
	return res, nil
}

// Claim pays the frozen prize to a winner. The claimed flag is written
// before the transfer and restored if the transfer fails.
func (k *Keeper) Claim(ctx context.Context, caller string) (uint64, error) {
	r := &k.st.Round
	if !r.Revealed {
		return 0, ErrWrongPhase.Wrap("round not revealed")
	}
	p := k.st.Participants[caller]
	if p == nil || !p.HasPlayed {
		return 0, ErrNotEntitled.Wrapf("%s did not play", caller)
	}
	if p.Claimed {
		return 0, ErrStateConflict.Wrap("prize already claimed")
	}
	if p.Refunded {
		return 0, ErrStateConflict.Wrap("stake already refunded")
	}
	if distance(p.Guess, r.WinningNumber) != r.WinningDistance {
		return 0, ErrNotEntitled.Wrapf("%s did not win", caller)
	}

	amount := r.PrizePerWinner
	paid, err := addUint64Checked(k.st.TotalPaid, amount, "total paid")
	if err != nil {
		return 0, ErrStateConflict.Wrap(err.Error())
	}
	p.Claimed = true
	k.st.TotalPaid = paid

	if err := k.ledger.Push(ctx, caller, amount); err != nil {
		p.Claimed = false
		k.st.TotalPaid -= amount
		return 0, ErrTransferFailed.Wrapf("push prize to %s: %s", caller, err)
	}

	k.logger.Info("prize claimed", "player", caller, "amount", amount)
	return amount, nil
}

// Refund returns one stake to a participant once the reveal deadline has
// passed without a reveal.
func (k *Keeper) Refund(ctx context.Context, caller string) (uint64, error) {
	r := &k.st.Round
	if err := r.requireRefundWindow(k.clock.Now()); err != nil {
		return 0, err
	}
	p := k.st.Participants[caller]
	if p == nil || !p.HasPlayed {
		return 0, ErrNotEntitled.Wrapf("%s did not play", caller)
	}
	if p.Refunded {
		return 0, ErrStateConflict.Wrap("stake already refunded")
	}
	if p.Claimed {
		return 0, ErrStateConflict.Wrap("prize already claimed")
	}

	paid, err := addUint64Checked(k.st.TotalPaid, StakeAmount, "total paid")
	if err != nil {
		return 0, ErrStateConflict.Wrap(err.Error())
	}
	p.Refunded = true
	k.st.TotalPaid = paid

	if err := k.ledger.Push(ctx, caller, StakeAmount); err != nil {
		p.Refunded = false
		k.st.TotalPaid -= StakeAmount
		return 0, ErrTransferFailed.Wrapf("push refund to %s: %s", caller, err)
	}

	k.logger.Info("stake refunded", "player", caller, "amount", StakeAmount)
	return StakeAmount, nil
}

// GenerateCommitment computes the digest caller would have to publish to
// later reveal number with secret. It reads no state.
func (k *Keeper) GenerateCommitment(caller string, number uint64, secret []byte) ([]byte, error) {
	return GenerateCommitment(caller, number, secret)
}

func GenerateCommitment(caller string, number uint64, secret []byte) ([]byte, error) {
	if caller == "" {
		return nil, ErrInvalidRequest.Wrap("missing identity")
	}
	if number < MinGuess || number > MaxGuess {
		return nil, ErrInvalidRequest.Wrapf("number %d outside [%d,%d]", number, MinGuess, MaxGuess)
	}
	if len(secret) == 0 {
		return nil, ErrInvalidRequest.Wrap("missing secret")
	}
	return commit.Digest(number, secret, caller), nil
}
