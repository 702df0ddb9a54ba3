package state

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"testing"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/stretchr/testify/require"

	"closestguess/internal/game"
)

func TestAppHash_StableAcrossMapOrder(t *testing.T) {
	s1 := NewState("house")
	s1.Height = 7
	s1.Accounts["bob"] = 2
	s1.Accounts["alice"] = 1
	s1.Game.Participants["bob"] = &game.Participant{Guess: 3, HasPlayed: true}
	s1.Game.Participants["alice"] = &game.Participant{Guess: 4, HasPlayed: true}
	s1.Game.GuessIndex[4] = []string{"alice"}
	s1.Game.GuessIndex[3] = []string{"bob"}

	s2 := NewState("house")
	s2.Height = 7
	s2.Accounts["alice"] = 1
	s2.Accounts["bob"] = 2
	s2.Game.Participants["alice"] = &game.Participant{Guess: 4, HasPlayed: true}
	s2.Game.Participants["bob"] = &game.Participant{Guess: 3, HasPlayed: true}
	s2.Game.GuessIndex[3] = []string{"bob"}
	s2.Game.GuessIndex[4] = []string{"alice"}

	h1 := s1.AppHash()
	require.Equal(t, h1, s2.AppHash())

	s2.Accounts["alice"] = 9
	require.NotEqual(t, h1, s2.AppHash())

	s1.Game.Participants["alice"].Claimed = true
	require.NotEqual(t, h1, s1.AppHash())
}

func TestAppHash_IgnoresEmptyIndexEntries(t *testing.T) {
	s1 := NewState("house")
	s2 := NewState("house")
	s2.Game.GuessIndex[9] = nil
	require.Equal(t, s1.AppHash(), s2.AppHash())
}

func TestClone_IsDeep(t *testing.T) {
	s := NewState("house")
	s.Accounts["alice"] = 5
	s.Game.Round.Commitment = []byte{1, 2, 3}
	s.Game.Participants["alice"] = &game.Participant{Guess: 10, HasPlayed: true}
	s.Game.GuessIndex[10] = []string{"alice"}

	c, err := s.Clone()
	require.NoError(t, err)
	require.Equal(t, s.AppHash(), c.AppHash())

	c.Accounts["alice"] = 0
	c.Game.Round.Commitment[0] = 9
	c.Game.Participants["alice"].Claimed = true
	c.Game.GuessIndex[10] = append(c.Game.GuessIndex[10], "bob")

	require.Equal(t, uint64(5), s.Accounts["alice"])
	require.Equal(t, byte(1), s.Game.Round.Commitment[0])
	require.False(t, s.Game.Participants["alice"].Claimed)
	require.Equal(t, []string{"alice"}, s.Game.GuessIndex[10])
}

func TestBank_CreditDebitTransfer(t *testing.T) {
	s := NewState("house")

	require.Error(t, s.Debit("alice", 1))
	require.NoError(t, s.Credit("alice", 10))
	require.NoError(t, s.Debit("alice", 4))
	require.Equal(t, uint64(6), s.Balance("alice"))

	require.NoError(t, s.Credit("bob", ^uint64(0)))
	require.ErrorContains(t, s.Credit("bob", 1), "overflow")

	// A failed credit leaves the sender whole.
	require.Error(t, s.Transfer("alice", "bob", 1))
	require.Equal(t, uint64(6), s.Balance("alice"))
	require.Equal(t, ^uint64(0), s.Balance("bob"))

	require.ErrorContains(t, s.Transfer("alice", "carol", 7), "insufficient funds")
	require.NoError(t, s.Transfer("alice", "carol", 6))
	require.Zero(t, s.Balance("alice"))
	require.Equal(t, uint64(6), s.Balance("carol"))
}

func TestLedger_MovesThroughEscrow(t *testing.T) {
	s := NewState("house")
	s.Accounts["alice"] = game.StakeAmount
	l := s.Ledger()
	ctx := context.Background()

	require.NoError(t, l.Pull(ctx, "alice", game.StakeAmount))
	require.Zero(t, l.Balance(ctx, "alice"))
	require.Equal(t, game.StakeAmount, l.Balance(ctx, EscrowAccount))

	require.Error(t, l.Pull(ctx, "alice", 1))
	require.Error(t, l.Push(ctx, "bob", game.StakeAmount+1))

	require.NoError(t, l.Push(ctx, "bob", game.StakeAmount))
	require.Equal(t, game.StakeAmount, s.Balance("bob"))
	require.Zero(t, s.Balance(EscrowAccount))
}

func TestClock_FollowsHeight(t *testing.T) {
	s := NewState("house")
	c := s.Clock()
	require.Equal(t, int64(0), c.Now())
	s.Height = 12
	require.Equal(t, int64(12), c.Now())
}

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, ed25519.PublicKeySize)
}

func TestIsModuleAccount(t *testing.T) {
	require.True(t, IsModuleAccount(EscrowAccount))
	require.True(t, IsModuleAccount("guess/anything"))
	require.False(t, IsModuleAccount("guess"))
	require.False(t, IsModuleAccount("alice"))
	require.False(t, IsModuleAccount("house/guess/escrow"))
}

func TestStore_SaveLoad(t *testing.T) {
	db := dbm.NewMemDB()
	key := testKey(1)

	s, err := Load(db, "house", key)
	require.NoError(t, err)
	require.Equal(t, "house", s.Authority())
	require.Equal(t, key, s.AccountKeys["house"])

	s.Height = 3
	s.Accounts["alice"] = 99
	s.Game.Round.StartHeight = 2
	s.Game.Round.Commitment = []byte{7}
	s.Game.Participants["alice"] = &game.Participant{Guess: 1, HasPlayed: true}
	s.Game.GuessIndex[1] = []string{"alice"}
	s.Game.TotalStaked = 1
	require.NoError(t, s.Save(db))

	got, err := Load(db, "house", key)
	require.NoError(t, err)
	require.Equal(t, s.AppHash(), got.AppHash())

	// Empty values reuse whatever is stored.
	got, err = Load(db, "", nil)
	require.NoError(t, err)
	require.Equal(t, "house", got.Authority())
	require.Equal(t, key, got.AccountKeys["house"])

	_, err = Load(db, "impostor", key)
	require.ErrorContains(t, err, "authority mismatch")

	_, err = Load(db, "house", testKey(2))
	require.ErrorContains(t, err, "authority key mismatch")
}

func TestStore_FreshDBPinsAuthorityKey(t *testing.T) {
	_, err := Load(dbm.NewMemDB(), "", testKey(1))
	require.ErrorContains(t, err, "missing round authority")

	_, err = Load(dbm.NewMemDB(), "house", nil)
	require.ErrorContains(t, err, "authority pubKey must be")

	_, err = Load(dbm.NewMemDB(), "house", []byte{1, 2, 3})
	require.ErrorContains(t, err, "authority pubKey must be")

	_, err = Load(dbm.NewMemDB(), EscrowAccount, testKey(1))
	require.ErrorContains(t, err, "module account")
}

func TestStore_OpenDB(t *testing.T) {
	db, err := OpenDB(t.TempDir(), string(dbm.GoLevelDBBackend))
	require.NoError(t, err)
	defer db.Close()

	s, err := Load(db, "house", testKey(1))
	require.NoError(t, err)
	s.Accounts["alice"] = 1
	require.NoError(t, s.Save(db))

	got, err := Load(db, "house", testKey(1))
	require.NoError(t, err)
	require.Equal(t, uint64(1), got.Balance("alice"))

	_, err = OpenDB(t.TempDir(), "no-such-backend")
	require.Error(t, err)
}
