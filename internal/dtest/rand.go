package dtest

import (
	"crypto/sha256"
	"math/rand/v2"
	"testing"
)

// RandForTest returns a pseudorandom source seeded from the test name,
// so a failing randomized test reproduces on every run.
func RandForTest(t testing.TB) *rand.Rand {
	return rand.New(newChaCha(t))
}

// RandomDataForTest returns sz pseudorandom bytes derived from the test name.
func RandomDataForTest(t testing.TB, sz int) []byte {
	out := make([]byte, sz)
	if _, err := newChaCha(t).Read(out); err != nil {
		panic(err)
	}
	return out
}

func newChaCha(t testing.TB) *rand.ChaCha8 {
	// A sha256 digest is exactly the chacha8 seed size,
	// and hashing frees us from any limit on test name length.
	return rand.NewChaCha8(sha256.Sum256([]byte(t.Name())))
}
