package app

import (
	"fmt"

	abci "github.com/cometbft/cometbft/abci/types"

	"closestguess/internal/codec"
	"closestguess/internal/state"
)

// bankMint credits new funds. Only the round authority may mint.
func (x *txExec) bankMint() (*abci.ExecTxResult, error) {
	msg, err := decodeMsg[codec.BankMintTx](x.env)
	if err != nil {
		return nil, err
	}
	if err := x.authorize(x.st.Authority()); err != nil {
		return nil, err
	}
	if state.IsModuleAccount(msg.To) {
		return nil, ErrReservedAccount.Wrapf("cannot mint to %q", msg.To)
	}
	if msg.To == "" || msg.Amount == 0 {
		return nil, ErrInvalidTx.Wrap("missing to/amount")
	}
	if err := x.st.Credit(msg.To, msg.Amount); err != nil {
		return nil, ErrBank.Wrap(err.Error())
	}
	return okEvent("BankMinted", map[string]string{
		"to":     msg.To,
		"amount": fmt.Sprintf("%d", msg.Amount),
	}), nil
}

func (x *txExec) bankSend() (*abci.ExecTxResult, error) {
	msg, err := decodeMsg[codec.BankSendTx](x.env)
	if err != nil {
		return nil, err
	}
	if state.IsModuleAccount(msg.From) || state.IsModuleAccount(msg.To) {
		return nil, ErrReservedAccount.Wrapf("bank/send cannot touch %q", reservedOf(msg.From, msg.To))
	}
	if err := x.authorize(msg.From); err != nil {
		return nil, err
	}
	if msg.To == "" || msg.Amount == 0 {
		return nil, ErrInvalidTx.Wrap("missing to/amount")
	}
	if err := x.st.Transfer(msg.From, msg.To, msg.Amount); err != nil {
		return nil, ErrBank.Wrap(err.Error())
	}
	return okEvent("BankSent", map[string]string{
		"from":   msg.From,
		"to":     msg.To,
		"amount": fmt.Sprintf("%d", msg.Amount),
	}), nil
}

func (x *txExec) registerAccount() (*abci.ExecTxResult, error) {
	msg, err := decodeMsg[codec.AuthRegisterAccountTx](x.env)
	if err != nil {
		return nil, err
	}
	if err := requireRegisterAccountAuth(x.env, msg); err != nil {
		return nil, ErrTxAuth.Wrap(err.Error())
	}
	if err := x.acceptNonce(); err != nil {
		return nil, err
	}
	if state.IsModuleAccount(msg.Account) {
		return nil, ErrReservedAccount.Wrapf("%q is a module account", msg.Account)
	}
	if msg.Account == x.st.Authority() {
		return nil, ErrReservedAccount.Wrapf("%q is the round authority; its key is fixed at genesis", msg.Account)
	}
	if existing := x.st.AccountKeys[msg.Account]; len(existing) != 0 {
		return nil, ErrInvalidTx.Wrapf("account %q already registered", msg.Account)
	}
	x.st.AccountKeys[msg.Account] = append([]byte(nil), msg.PubKey...)
	return okEvent("AccountRegistered", map[string]string{
		"account": msg.Account,
	}), nil
}

func reservedOf(from, to string) string {
	if state.IsModuleAccount(from) {
		return from
	}
	return to
}
