package app

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"closestguess/internal/commit"
	"closestguess/internal/game"
	"closestguess/internal/state"
)

type roundView struct {
	Authority      string      `json:"authority"`
	Phase          string      `json:"phase"`
	StartHeight    int64       `json:"startHeight"`
	CloseHeight    int64       `json:"closeHeight,omitempty"`
	RevealDeadline int64       `json:"revealDeadline,omitempty"`
	Commitment     string      `json:"commitment,omitempty"`
	Revealed       bool        `json:"revealed"`
	Result         game.Result `json:"result"`
	Participants   int         `json:"participants"`
}

type poolView struct {
	Pool        uint64 `json:"pool"`
	TotalStaked uint64 `json:"totalStaked"`
	TotalPaid   uint64 `json:"totalPaid"`
	Outstanding uint64 `json:"outstanding"`
	Dust        uint64 `json:"dust"`
	Escrow      uint64 `json:"escrow"`
}

type participantView struct {
	Addr string `json:"addr"`
	game.Participant
	Winner bool `json:"winner"`
}

type commitmentRequest struct {
	Number   uint64 `json:"number"`
	Secret   []byte `json:"secret"` // base64
	Identity string `json:"identity"`
}

// Query serves read-only views of the committed state.
//
// Paths:
//   - /account/<addr>
//   - /round
//   - /phase
//   - /pool
//   - /participants
//   - /participants/<guess>
//   - /participant/<addr>
//   - /commitment (Data: {"number","secret","identity"})
func (a *GuessApp) Query(ctx context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, err := a.query(ctx, strings.TrimSpace(req.Path), req.Data)
	if err != nil {
		codespace, code, _ := errorsmod.ABCIInfo(err, false)
		return &abci.QueryResponse{Code: code, Codespace: codespace, Log: err.Error(), Height: a.st.Height}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return &abci.QueryResponse{Code: 1, Log: err.Error(), Height: a.st.Height}, nil
	}
	return &abci.QueryResponse{Code: 0, Value: b, Height: a.st.Height}, nil
}

func (a *GuessApp) query(ctx context.Context, path string, data []byte) (any, error) {
	k := game.NewView(a.st.Game, a.st.Ledger(), a.st.Clock())

	switch {
	case strings.HasPrefix(path, "/account/"):
		addr := strings.TrimPrefix(path, "/account/")
		return map[string]any{"addr": addr, "balance": k.Balance(ctx, addr)}, nil

	case path == "/round":
		r := k.Round()
		v := roundView{
			Authority:    r.Authority,
			Phase:        string(k.Phase()),
			StartHeight:  r.StartHeight,
			Revealed:     r.Revealed,
			Result:       k.Result(),
			Participants: k.ParticipantCount(),
		}
		if r.Started() {
			v.CloseHeight = r.CloseHeight()
			v.RevealDeadline = r.RevealDeadlineHeight()
			v.Commitment = commit.ToHex(r.Commitment)
		}
		return v, nil

	case path == "/phase":
		return map[string]any{"height": a.st.Height, "phase": string(k.Phase())}, nil

	case path == "/pool":
		pool, err := k.Pool()
		if err != nil {
			return nil, err
		}
		outstanding, err := k.Outstanding()
		if err != nil {
			return nil, err
		}
		dust, err := k.Dust()
		if err != nil {
			return nil, err
		}
		return poolView{
			Pool:        pool,
			TotalStaked: a.st.Game.TotalStaked,
			TotalPaid:   a.st.Game.TotalPaid,
			Outstanding: outstanding,
			Dust:        dust,
			Escrow:      k.Balance(ctx, state.EscrowAccount),
		}, nil

	case path == "/participants":
		out := make(map[uint64][]string)
		for g := game.MinGuess; g <= game.MaxGuess; g++ {
			if ids := k.ParticipantsByGuess(g); len(ids) > 0 {
				out[g] = ids
			}
		}
		return out, nil

	case strings.HasPrefix(path, "/participants/"):
		raw := strings.TrimPrefix(path, "/participants/")
		g, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, game.ErrInvalidRequest.Wrapf("invalid guess %q", raw)
		}
		ids := k.ParticipantsByGuess(g)
		if ids == nil {
			ids = []string{}
		}
		return ids, nil

	case strings.HasPrefix(path, "/participant/"):
		addr := strings.TrimPrefix(path, "/participant/")
		p, ok := k.Participant(addr)
		if !ok {
			return nil, game.ErrNotEntitled.Wrapf("%s did not play", addr)
		}
		return participantView{Addr: addr, Participant: p, Winner: k.IsWinner(addr)}, nil

	case path == "/commitment":
		var req commitmentRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, game.ErrInvalidRequest.Wrapf("bad commitment request: %s", err)
		}
		digest, err := game.GenerateCommitment(req.Identity, req.Number, req.Secret)
		if err != nil {
			return nil, err
		}
		return map[string]string{"commitment": commit.ToHex(digest)}, nil

	default:
		return nil, ErrUnknownQuery.Wrap(path)
	}
}
