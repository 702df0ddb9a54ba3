package app

import (
	"context"
	"encoding/json"
	"testing"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/stretchr/testify/require"

	"closestguess/internal/commit"
	"closestguess/internal/game"
)

func query(t *testing.T, a *GuessApp, path string, data []byte, out any) *abci.QueryResponse {
	t.Helper()
	res, err := a.Query(context.Background(), &abci.QueryRequest{Path: path, Data: data})
	require.NoError(t, err)
	if out != nil && res.Code == 0 {
		require.NoError(t, json.Unmarshal(res.Value, out))
	}
	return res
}

func TestQuery_RoundAndPool(t *testing.T) {
	const height = int64(1)
	a := newTestApp(t)
	for _, p := range []string{"alice", "bob", "carol"} {
		fundedPlayer(t, a, height, p)
	}

	var round roundView
	query(t, a, "/round", nil, &round)
	require.Equal(t, string(game.PhaseUnstarted), round.Phase)
	require.Equal(t, testAuthority, round.Authority)
	require.Empty(t, round.Commitment)

	startRound(t, a, height, 30)
	mustOk(t, deliver(a, betTx(t, "alice", 25), height))
	mustOk(t, deliver(a, betTx(t, "bob", 31), height))
	mustOk(t, deliver(a, betTx(t, "carol", 31), height))

	query(t, a, "/round", nil, &round)
	require.Equal(t, string(game.PhaseOpen), round.Phase)
	require.Equal(t, 3, round.Participants)
	require.Equal(t, height+game.GameDuration, round.CloseHeight)
	require.Equal(t, commit.ToHex(commit.Digest(30, testSecret, testAuthority)), round.Commitment)

	var byGuess []string
	query(t, a, "/participants/31", nil, &byGuess)
	require.Equal(t, []string{"bob", "carol"}, byGuess)
	query(t, a, "/participants/77", nil, &byGuess)
	require.Empty(t, byGuess)
	res := query(t, a, "/participants/x", nil, nil)
	require.Equal(t, game.ErrInvalidRequest.ABCICode(), res.Code)

	var all map[uint64][]string
	query(t, a, "/participants", nil, &all)
	require.Equal(t, map[uint64][]string{25: {"alice"}, 31: {"bob", "carol"}}, all)

	closeAt := height + game.GameDuration
	a.st.Height = closeAt
	var phase map[string]any
	query(t, a, "/phase", nil, &phase)
	require.Equal(t, string(game.PhaseClosed), phase["phase"])

	mustOk(t, deliver(a, revealTx(t, 30, testSecret), closeAt))
	mustOk(t, deliver(a, claimTx(t, "bob"), closeAt))

	var pool poolView
	query(t, a, "/pool", nil, &pool)
	require.Equal(t, 3*game.StakeAmount, pool.Pool)
	require.Equal(t, uint64(3), pool.TotalStaked)
	prize := 3 * game.StakeAmount / 2
	require.Equal(t, prize, pool.TotalPaid)
	require.Equal(t, pool.Escrow, pool.Outstanding)
	require.Equal(t, 3*game.StakeAmount-prize, pool.Outstanding)
	require.Zero(t, pool.Dust)

	var p participantView
	query(t, a, "/participant/bob", nil, &p)
	require.True(t, p.Winner)
	require.True(t, p.Claimed)
	require.Equal(t, uint64(31), p.Guess)

	var loser participantView
	query(t, a, "/participant/alice", nil, &loser)
	require.False(t, loser.Winner)
	require.False(t, loser.Claimed)

	res = query(t, a, "/participant/nobody", nil, nil)
	require.Equal(t, game.ErrNotEntitled.ABCICode(), res.Code)
	require.Equal(t, game.ModuleName, res.Codespace)
}

func TestQuery_Account(t *testing.T) {
	a := newTestApp(t)
	fundedPlayer(t, a, 1, "alice")

	var acct struct {
		Addr    string `json:"addr"`
		Balance uint64 `json:"balance"`
	}
	query(t, a, "/account/alice", nil, &acct)
	require.Equal(t, "alice", acct.Addr)
	require.Equal(t, 2*game.StakeAmount, acct.Balance)
}

func TestQuery_Commitment(t *testing.T) {
	a := newTestApp(t)

	data := mustMarshal(t, map[string]any{"number": 42, "secret": testSecret, "identity": testAuthority})
	var out map[string]string
	query(t, a, "/commitment", data, &out)
	require.Equal(t, commit.ToHex(commit.Digest(42, testSecret, testAuthority)), out["commitment"])

	data = mustMarshal(t, map[string]any{"number": 101, "secret": testSecret, "identity": testAuthority})
	res := query(t, a, "/commitment", data, nil)
	require.Equal(t, game.ErrInvalidRequest.ABCICode(), res.Code)

	res = query(t, a, "/commitment", []byte("nope"), nil)
	require.Equal(t, game.ErrInvalidRequest.ABCICode(), res.Code)
}

func TestQuery_UnknownPath(t *testing.T) {
	a := newTestApp(t)
	res := query(t, a, "/tables", nil, nil)
	require.Equal(t, ErrUnknownQuery.ABCICode(), res.Code)
	require.Equal(t, Codespace, res.Codespace)
}
