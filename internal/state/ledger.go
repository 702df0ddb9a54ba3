package state

import (
	"context"
	"strings"

	"closestguess/internal/game"
)

// ModuleAccountPrefix namespaces accounts owned by the round itself. No key
// can be registered for them and bank txs cannot touch them.
const ModuleAccountPrefix = game.ModuleName + "/"

// EscrowAccount holds every stake of the round until it is paid out.
const EscrowAccount = ModuleAccountPrefix + "escrow"

func IsModuleAccount(addr string) bool {
	return strings.HasPrefix(addr, ModuleAccountPrefix)
}

// Ledger adapts the in-state bank to the round's value-transfer interface.
type Ledger struct {
	st *State
}

var _ game.Ledger = Ledger{}

func (s *State) Ledger() Ledger {
	return Ledger{st: s}
}

func (l Ledger) Pull(_ context.Context, from string, amount uint64) error {
	return l.st.Transfer(from, EscrowAccount, amount)
}

func (l Ledger) Push(_ context.Context, to string, amount uint64) error {
	return l.st.Transfer(EscrowAccount, to, amount)
}

func (l Ledger) Balance(_ context.Context, addr string) uint64 {
	return l.st.Balance(addr)
}

// Clock reports the height of the block being executed.
func (s *State) Clock() game.Clock {
	return game.ClockFunc(func() int64 { return s.Height })
}
