package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"

	"closestguess/internal/game"
)

type State struct {
	Height int64 `json:"height"`

	Accounts    map[string]uint64 `json:"accounts"`
	AccountKeys map[string][]byte `json:"accountKeys,omitempty"` // addr -> ed25519 pubkey (32 bytes)
	NonceMax    map[string]uint64 `json:"nonceMax,omitempty"`    // signer -> last accepted tx.nonce, for replay protection

	Game *game.State `json:"game"`
}

func NewState(authority string) *State {
	return &State{
		Height:      0,
		Accounts:    map[string]uint64{},
		AccountKeys: map[string][]byte{},
		NonceMax:    map[string]uint64{},
		Game:        game.NewState(authority),
	}
}

func (s *State) normalize(authority string) {
	if s.Accounts == nil {
		s.Accounts = map[string]uint64{}
	}
	if s.AccountKeys == nil {
		s.AccountKeys = map[string][]byte{}
	}
	if s.NonceMax == nil {
		s.NonceMax = map[string]uint64{}
	}
	if s.Game == nil {
		s.Game = game.NewState(authority)
	}
	s.Game.Normalize()
}

// Clone returns a deep copy of state suitable for staged tx execution.
func (s *State) Clone() (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("state is nil")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state clone: %w", err)
	}
	var out State
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode state clone: %w", err)
	}
	out.normalize(s.Authority())
	return &out, nil
}

func (s *State) Authority() string {
	if s.Game == nil {
		return ""
	}
	return s.Game.Round.Authority
}

func (s *State) AppHash() []byte {
	// Maps are flattened into sorted slices so the hash does not depend on
	// how the encoder orders keys.
	type accountKV struct {
		Addr    string `json:"addr"`
		Balance uint64 `json:"balance"`
	}
	type accountKeyKV struct {
		Addr   string `json:"addr"`
		PubKey []byte `json:"pubKey"`
	}
	type nonceKV struct {
		Signer string `json:"signer"`
		Nonce  uint64 `json:"nonce"`
	}
	type participantKV struct {
		Addr        string            `json:"addr"`
		Participant *game.Participant `json:"participant"`
	}
	type guessKV struct {
		Guess   uint64   `json:"guess"`
		Players []string `json:"players"`
	}

	accounts := make([]accountKV, 0, len(s.Accounts))
	for k, v := range s.Accounts {
		accounts = append(accounts, accountKV{Addr: k, Balance: v})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Addr < accounts[j].Addr })

	accountKeys := make([]accountKeyKV, 0, len(s.AccountKeys))
	for k, v := range s.AccountKeys {
		accountKeys = append(accountKeys, accountKeyKV{Addr: k, PubKey: v})
	}
	sort.Slice(accountKeys, func(i, j int) bool { return accountKeys[i].Addr < accountKeys[j].Addr })

	nonces := make([]nonceKV, 0, len(s.NonceMax))
	for k, v := range s.NonceMax {
		nonces = append(nonces, nonceKV{Signer: k, Nonce: v})
	}
	sort.Slice(nonces, func(i, j int) bool { return nonces[i].Signer < nonces[j].Signer })

	var (
		round        game.Round
		participants []participantKV
		guesses      []guessKV
		totalStaked  uint64
		totalPaid    uint64
	)
	if s.Game != nil {
		round = s.Game.Round
		totalStaked = s.Game.TotalStaked
		totalPaid = s.Game.TotalPaid
		for k, v := range s.Game.Participants {
			participants = append(participants, participantKV{Addr: k, Participant: v})
		}
		sort.Slice(participants, func(i, j int) bool { return participants[i].Addr < participants[j].Addr })
		for g, ids := range s.Game.GuessIndex {
			if len(ids) == 0 {
				continue
			}
			guesses = append(guesses, guessKV{Guess: g, Players: ids})
		}
		sort.Slice(guesses, func(i, j int) bool { return guesses[i].Guess < guesses[j].Guess })
	}

	normalized := struct {
		Height       int64           `json:"height"`
		Accounts     []accountKV     `json:"accounts"`
		AccountKeys  []accountKeyKV  `json:"accountKeys,omitempty"`
		NonceMax     []nonceKV       `json:"nonceMax,omitempty"`
		Round        game.Round      `json:"round"`
		Participants []participantKV `json:"participants,omitempty"`
		GuessIndex   []guessKV       `json:"guessIndex,omitempty"`
		TotalStaked  uint64          `json:"totalStaked"`
		TotalPaid    uint64          `json:"totalPaid"`
	}{
		Height:       s.Height,
		Accounts:     accounts,
		AccountKeys:  accountKeys,
		NonceMax:     nonces,
		Round:        round,
		Participants: participants,
		GuessIndex:   guesses,
		TotalStaked:  totalStaked,
		TotalPaid:    totalPaid,
	}

	b, _ := json.Marshal(normalized)
	sum := sha256.Sum256(b)
	return sum[:]
}

// ---- Bank ----

func (s *State) Balance(addr string) uint64 {
	return s.Accounts[addr]
}

func (s *State) Credit(addr string, amount uint64) error {
	bal := s.Accounts[addr]
	if bal > ^uint64(0)-amount {
		return fmt.Errorf("balance overflow: have=%d add=%d", bal, amount)
	}
	s.Accounts[addr] = bal + amount
	return nil
}

func (s *State) Debit(addr string, amount uint64) error {
	bal := s.Accounts[addr]
	if bal < amount {
		return fmt.Errorf("insufficient funds: have=%d need=%d", bal, amount)
	}
	s.Accounts[addr] = bal - amount
	return nil
}

// Transfer moves amount from one account to another, leaving both untouched
// on failure.
func (s *State) Transfer(from, to string, amount uint64) error {
	if err := s.Debit(from, amount); err != nil {
		return err
	}
	if err := s.Credit(to, amount); err != nil {
		s.Accounts[from] += amount
		return err
	}
	return nil
}
