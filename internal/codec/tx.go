package codec

import (
	"encoding/json"
	"fmt"
)

// Tx types routed by the application.
const (
	TypeBankMint        = "bank/mint"
	TypeBankSend        = "bank/send"
	TypeRegisterAccount = "auth/register_account"
	TypeGuessStart      = "guess/start"
	TypeGuessBet        = "guess/bet"
	TypeGuessReveal     = "guess/reveal"
	TypeGuessClaim      = "guess/claim"
	TypeGuessRefund     = "guess/refund"
)

// TxEnvelope is the transaction container. CometBFT transactions are opaque
// bytes; this application uses JSON.
type TxEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Nonce must increase per signer. Sig is an Ed25519 signature over
	// (type, nonce, signer, sha256(value)).
	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

// DecodeValue unmarshals env.Value into v.
func DecodeValue[T any](env TxEnvelope) (T, error) {
	var v T
	if len(env.Value) == 0 {
		return v, fmt.Errorf("missing %s value", env.Type)
	}
	if err := json.Unmarshal(env.Value, &v); err != nil {
		return v, fmt.Errorf("bad %s value: %w", env.Type, err)
	}
	return v, nil
}

// ---- Bank ----

type BankMintTx struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type BankSendTx struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// ---- Auth ----

type AuthRegisterAccountTx struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey"` // base64 (32 bytes)
}

// ---- Guess ----

type GuessStartTx struct {
	Authority  string `json:"authority"`
	Commitment []byte `json:"commitment"` // base64 (32 bytes)
}

type GuessBetTx struct {
	Player string `json:"player"`
	Guess  uint64 `json:"guess"`
}

type GuessRevealTx struct {
	Authority string `json:"authority"`
	Number    uint64 `json:"number"`
	Secret    []byte `json:"secret"` // base64
}

type GuessClaimTx struct {
	Player string `json:"player"`
}

type GuessRefundTx struct {
	Player string `json:"player"`
}
