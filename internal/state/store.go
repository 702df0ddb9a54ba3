package state

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	dbm "github.com/cosmos/cosmos-db"
)

var stateKey = []byte("state/v1")

// OpenDB opens the application database in dir.
func OpenDB(dir string, backend string) (dbm.DB, error) {
	if backend == "" {
		backend = string(dbm.GoLevelDBBackend)
	}
	db, err := dbm.NewDB("application", dbm.BackendType(backend), dir)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", backend, err)
	}
	return db, nil
}

// Load reads the committed state, or returns a fresh state for authority
// when the database is empty. A fresh state pins authorityPubKey as the only
// key the authority can sign with. A stored round keeps its authority and
// key; asking for different ones is an error.
func Load(db dbm.DB, authority string, authorityPubKey []byte) (*State, error) {
	b, err := db.Get(stateKey)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if b == nil {
		return newGenesisState(authority, authorityPubKey)
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	st.normalize(authority)
	if authority != "" && st.Authority() != authority {
		return nil, fmt.Errorf("authority mismatch: stored=%q configured=%q", st.Authority(), authority)
	}
	stored := st.AccountKeys[st.Authority()]
	if len(stored) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("stored state has no key for authority %q", st.Authority())
	}
	if len(authorityPubKey) != 0 && !bytes.Equal(stored, authorityPubKey) {
		return nil, fmt.Errorf("authority key mismatch for %q", st.Authority())
	}
	return &st, nil
}

func newGenesisState(authority string, authorityPubKey []byte) (*State, error) {
	if authority == "" {
		return nil, fmt.Errorf("missing round authority")
	}
	if IsModuleAccount(authority) {
		return nil, fmt.Errorf("authority %q is a module account", authority)
	}
	if len(authorityPubKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("authority pubKey must be %d bytes, got %d", ed25519.PublicKeySize, len(authorityPubKey))
	}
	st := NewState(authority)
	st.AccountKeys[authority] = append([]byte(nil), authorityPubKey...)
	return st, nil
}

func (s *State) Save(db dbm.DB) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := db.SetSync(stateKey, b); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
