package commit

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// FromHex decodes a digest or secret given as hex, with or without 0x prefix.
func FromHex(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("hex: empty string")
	}
	ss := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if len(ss)%2 != 0 {
		return nil, fmt.Errorf("hex: odd length")
	}
	b, err := hex.DecodeString(ss)
	if err != nil {
		return nil, fmt.Errorf("hex: %w", err)
	}
	return b, nil
}

func ToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
