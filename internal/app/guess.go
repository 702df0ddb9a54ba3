package app

import (
	"fmt"

	abci "github.com/cometbft/cometbft/abci/types"

	"closestguess/internal/codec"
	"closestguess/internal/commit"
	"closestguess/internal/game"
)

func (x *txExec) guessStart() (*abci.ExecTxResult, error) {
	msg, err := decodeMsg[codec.GuessStartTx](x.env)
	if err != nil {
		return nil, err
	}
	if err := x.authorize(msg.Authority); err != nil {
		return nil, err
	}
	if len(msg.Commitment) != commit.DigestSize {
		return nil, game.ErrInvalidRequest.Wrapf("commitment must be %d bytes", commit.DigestSize)
	}
	k := x.keeper()
	if err := k.Start(msg.Authority, msg.Commitment); err != nil {
		return nil, err
	}
	r := k.Round()
	return okEvent("RoundStarted", map[string]string{
		"authority":      r.Authority,
		"commitment":     commit.ToHex(r.Commitment),
		"startHeight":    fmt.Sprintf("%d", r.StartHeight),
		"closeHeight":    fmt.Sprintf("%d", r.CloseHeight()),
		"revealDeadline": fmt.Sprintf("%d", r.RevealDeadlineHeight()),
	}), nil
}

func (x *txExec) guessBet() (*abci.ExecTxResult, error) {
	msg, err := decodeMsg[codec.GuessBetTx](x.env)
	if err != nil {
		return nil, err
	}
	if err := x.authorize(msg.Player); err != nil {
		return nil, err
	}
	k := x.keeper()
	if err := k.Bet(x.ctx, msg.Player, msg.Guess); err != nil {
		return nil, err
	}
	return okEvent("BetPlaced", map[string]string{
		"player":       msg.Player,
		"guess":        fmt.Sprintf("%d", msg.Guess),
		"stake":        fmt.Sprintf("%d", game.StakeAmount),
		"denom":        game.Denom,
		"participants": fmt.Sprintf("%d", k.ParticipantCount()),
	}), nil
}

func (x *txExec) guessReveal() (*abci.ExecTxResult, error) {
	msg, err := decodeMsg[codec.GuessRevealTx](x.env)
	if err != nil {
		return nil, err
	}
	if err := x.authorize(msg.Authority); err != nil {
		return nil, err
	}
	res, err := x.keeper().Reveal(msg.Authority, msg.Number, msg.Secret)
	if err != nil {
		return nil, err
	}
	return okEvent("RoundRevealed", map[string]string{
		"winningNumber":   fmt.Sprintf("%d", res.WinningNumber),
		"winningDistance": fmt.Sprintf("%d", res.WinningDistance),
		"winnerCount":     fmt.Sprintf("%d", res.WinnerCount),
		"prizePerWinner":  fmt.Sprintf("%d", res.PrizePerWinner),
	}), nil
}

func (x *txExec) guessClaim() (*abci.ExecTxResult, error) {
	msg, err := decodeMsg[codec.GuessClaimTx](x.env)
	if err != nil {
		return nil, err
	}
	if err := x.authorize(msg.Player); err != nil {
		return nil, err
	}
	amount, err := x.keeper().Claim(x.ctx, msg.Player)
	if err != nil {
		return nil, err
	}
	return okEvent("PrizeClaimed", map[string]string{
		"player": msg.Player,
		"amount": fmt.Sprintf("%d", amount),
		"denom":  game.Denom,
	}), nil
}

func (x *txExec) guessRefund() (*abci.ExecTxResult, error) {
	msg, err := decodeMsg[codec.GuessRefundTx](x.env)
	if err != nil {
		return nil, err
	}
	if err := x.authorize(msg.Player); err != nil {
		return nil, err
	}
	amount, err := x.keeper().Refund(x.ctx, msg.Player)
	if err != nil {
		return nil, err
	}
	return okEvent("StakeRefunded", map[string]string{
		"player": msg.Player,
		"amount": fmt.Sprintf("%d", amount),
		"denom":  game.Denom,
	}), nil
}
