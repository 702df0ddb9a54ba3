package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"

	"closestguess/internal/codec"
	"closestguess/internal/game"
	"closestguess/internal/state"
)

const (
	AppVersion uint64 = 1
)

type GuessApp struct {
	*abci.BaseApplication

	db     dbm.DB
	logger log.Logger

	mu       sync.Mutex
	st       *state.State
	lastHash []byte
}

// New loads the committed state from db. On a fresh database authority and
// authorityPubKey define the round authority and the only key it signs with;
// on an existing one they must match what is stored, or be empty.
func New(db dbm.DB, authority string, authorityPubKey []byte, logger log.Logger) (*GuessApp, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	st, err := state.Load(db, authority, authorityPubKey)
	if err != nil {
		return nil, err
	}
	a := &GuessApp{
		BaseApplication: abci.NewBaseApplication(),
		db:              db,
		logger:          logger,
		st:              st,
		lastHash:        st.AppHash(),
	}
	return a, nil
}

func (a *GuessApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "closest-guess",
		Version:          "v1",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

// CheckTx performs stateless validation only; signatures and nonces are
// verified on delivery.
func (a *GuessApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	env, err := codec.DecodeTxEnvelope(req.Tx)
	if err != nil {
		err = ErrTxDecode.Wrap(err.Error())
	} else if serr := requireSignedEnvelope(env); serr != nil {
		err = ErrTxAuth.Wrap(serr.Error())
	}
	if err != nil {
		codespace, code, _ := errorsmod.ABCIInfo(err, false)
		return &abci.CheckTxResponse{Code: code, Codespace: codespace, Log: err.Error()}, nil
	}
	return &abci.CheckTxResponse{Code: 0}, nil
}

type genesisState struct {
	Accounts map[string]uint64 `json:"accounts"`
}

func (a *GuessApp) InitChain(_ context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(req.AppStateBytes) > 0 {
		var gen genesisState
		if err := json.Unmarshal(req.AppStateBytes, &gen); err != nil {
			return nil, fmt.Errorf("decode genesis app state: %w", err)
		}
		addrs := make([]string, 0, len(gen.Accounts))
		for addr := range gen.Accounts {
			addrs = append(addrs, addr)
		}
		sort.Strings(addrs)
		for _, addr := range addrs {
			if state.IsModuleAccount(addr) {
				return nil, fmt.Errorf("genesis account %s: %w", addr, ErrReservedAccount)
			}
			if err := a.st.Credit(addr, gen.Accounts[addr]); err != nil {
				return nil, fmt.Errorf("genesis account %s: %w", addr, err)
			}
		}
		a.logger.Info("applied genesis", "accounts", len(addrs))
	}
	a.lastHash = a.st.AppHash()
	return &abci.InitChainResponse{AppHash: a.lastHash}, nil
}

func (a *GuessApp) FinalizeBlock(ctx context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.st.Height = req.Height

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for _, txBytes := range req.Txs {
		res := a.deliverTx(ctx, txBytes, req.Height)
		txResults = append(txResults, res)
	}

	a.lastHash = a.st.AppHash()

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   a.lastHash,
	}, nil
}

func (a *GuessApp) Commit(_ context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.st.Save(a.db); err != nil {
		// Halt the node rather than diverge from the committed app hash.
		return nil, err
	}
	a.logger.Debug("committed", "height", a.st.Height, "appHash", fmt.Sprintf("%X", a.lastHash))
	return &abci.CommitResponse{}, nil
}

// deliverTx executes one tx against a staged copy of state and swaps it in
// only on success. A signer whose nonce was accepted keeps that nonce even if
// the tx then fails.
func (a *GuessApp) deliverTx(ctx context.Context, txBytes []byte, height int64) *abci.ExecTxResult {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return errResult(ErrTxDecode.Wrap(err.Error()))
	}

	staged, err := a.st.Clone()
	if err != nil {
		return errResult(err)
	}
	staged.Height = height

	x := &txExec{ctx: ctx, st: staged, env: env, logger: a.logger}
	res, err := x.run()
	if err != nil {
		if x.authed {
			a.st.NonceMax[env.Signer] = x.nonce
		}
		a.logger.Debug("tx failed", "type", env.Type, "height", height, "err", err)
		return errResult(err)
	}
	a.st = staged
	return res
}

// txExec carries one tx through authentication and execution.
type txExec struct {
	ctx    context.Context
	st     *state.State
	env    codec.TxEnvelope
	logger log.Logger

	authed bool
	nonce  uint64
}

func (x *txExec) run() (*abci.ExecTxResult, error) {
	switch x.env.Type {
	case codec.TypeBankMint:
		return x.bankMint()
	case codec.TypeBankSend:
		return x.bankSend()
	case codec.TypeRegisterAccount:
		return x.registerAccount()
	case codec.TypeGuessStart:
		return x.guessStart()
	case codec.TypeGuessBet:
		return x.guessBet()
	case codec.TypeGuessReveal:
		return x.guessReveal()
	case codec.TypeGuessClaim:
		return x.guessClaim()
	case codec.TypeGuessRefund:
		return x.guessRefund()
	default:
		return nil, ErrUnknownTx.Wrap(x.env.Type)
	}
}

// authorize requires the envelope to be signed by account's registered key
// with a fresh nonce, and records that nonce.
func (x *txExec) authorize(account string) error {
	if err := requireAccountAuth(x.st, x.env, account); err != nil {
		return ErrTxAuth.Wrap(err.Error())
	}
	return x.acceptNonce()
}

func (x *txExec) acceptNonce() error {
	n, err := checkNonce(x.st, x.env)
	if err != nil {
		return ErrTxAuth.Wrap(err.Error())
	}
	x.st.NonceMax[x.env.Signer] = n
	x.authed = true
	x.nonce = n
	return nil
}

func (x *txExec) keeper() *game.Keeper {
	return game.NewKeeper(x.st.Game, x.st.Ledger(), x.st.Clock(), x.logger)
}

func decodeMsg[T any](env codec.TxEnvelope) (T, error) {
	msg, err := codec.DecodeValue[T](env)
	if err != nil {
		return msg, ErrTxDecode.Wrap(err.Error())
	}
	return msg, nil
}

func errResult(err error) *abci.ExecTxResult {
	codespace, code, _ := errorsmod.ABCIInfo(err, false)
	return &abci.ExecTxResult{Code: code, Codespace: codespace, Log: err.Error()}
}

func okEvent(typ string, attrs map[string]string) *abci.ExecTxResult {
	ev := abci.Event{Type: typ}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: k, Value: attrs[k], Index: true})
	}
	return &abci.ExecTxResult{
		Code:   0,
		Events: []abci.Event{ev},
	}
}
