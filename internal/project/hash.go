package project

import (
	"crypto/sha256"
)

// Digest is a fixed 256-bit hash, compatible with source.File.Hash.
type Digest [32]byte

// Combine hashes content followed by parts: H(content || part1 || part2 ...).
// The order of parts must be deterministic.
func Combine(content Digest, parts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range parts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// HashStrings digests a list of strings, each terminated by a zero byte.
func HashStrings(values ...string) Digest {
	h := sha256.New()
	for _, v := range values {
		_, _ = h.Write([]byte(v))
		_, _ = h.Write([]byte{0})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
