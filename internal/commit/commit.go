package commit

import (
	"crypto/subtle"
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/sha3"
)

// DigestSize is the length in bytes of a commitment digest (Keccak-256).
const DigestSize = 32

var (
	commitPrefix = []byte("GUESSv1|commit|")
)

func updateLenBytes(h hash.Hash, b []byte) {
	h.Write(u32le(uint32(len(b))))
	h.Write(b)
}

// Digest binds (number, secret, identity) into an opaque 32-byte value.
//
// Every variable-length field is length-prefixed, so two distinct tuples never
// share an encoding. The committer identity is part of the preimage: a reveal
// is only valid when submitted by the identity that produced the digest.
func Digest(number uint64, secret []byte, identity string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(commitPrefix)
	h.Write(u64be(number))
	updateLenBytes(h, secret)
	updateLenBytes(h, []byte(identity))
	return h.Sum(nil)
}

// Verify recomputes the digest and compares it in constant time.
func Verify(digest []byte, number uint64, secret []byte, identity string) bool {
	if len(digest) != DigestSize {
		return false
	}
	return subtle.ConstantTimeCompare(digest, Digest(number, secret, identity)) == 1
}

func u32le(x uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, x)
	return b
}

func u64be(x uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, x)
	return b
}
