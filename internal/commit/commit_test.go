package commit

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigest_RoundTrip(t *testing.T) {
	secret := []byte("correct horse battery staple")
	for _, n := range []uint64{1, 50, 100} {
		d := Digest(n, secret, "authority")
		require.Len(t, d, DigestSize)
		require.True(t, Verify(d, n, secret, "authority"), "number=%d", n)
	}
}

func TestDigest_Deterministic(t *testing.T) {
	d1 := Digest(42, []byte("s"), "alice")
	d2 := Digest(42, []byte("s"), "alice")
	require.Equal(t, d1, d2)
}

func TestVerify_BindsIdentitySecretAndNumber(t *testing.T) {
	secret := []byte("secret")
	d := Digest(42, secret, "alice")

	require.False(t, Verify(d, 42, secret, "mallory"), "other identity must not verify")
	require.False(t, Verify(d, 42, []byte("secreT"), "alice"), "other secret must not verify")
	require.False(t, Verify(d, 43, secret, "alice"), "other number must not verify")
	require.False(t, Verify(d, 42, nil, "alice"))
}

func TestVerify_RejectsMalformedDigest(t *testing.T) {
	d := Digest(7, []byte("x"), "alice")
	require.False(t, Verify(d[:31], 7, []byte("x"), "alice"))
	require.False(t, Verify(nil, 7, []byte("x"), "alice"))
	require.False(t, Verify(append(d, 0), 7, []byte("x"), "alice"))
}

func TestDigest_FieldBoundariesAreFramed(t *testing.T) {
	// Moving bytes between secret and identity must change the digest.
	d1 := Digest(1, []byte("ab"), "c")
	d2 := Digest(1, []byte("a"), "bc")
	require.False(t, bytes.Equal(d1, d2))
}

func TestHex_RoundTrip(t *testing.T) {
	d := Digest(9, []byte("k"), "alice")
	s := ToHex(d)
	require.Equal(t, "0x", s[:2])

	back, err := FromHex(s)
	require.NoError(t, err)
	require.Equal(t, d, back)

	back, err = FromHex(s[2:])
	require.NoError(t, err)
	require.Equal(t, d, back)
}

func TestFromHex_Errors(t *testing.T) {
	_, err := FromHex("")
	require.Error(t, err)
	_, err = FromHex("0xabc")
	require.Error(t, err)
	_, err = FromHex("zz")
	require.Error(t, err)
}
