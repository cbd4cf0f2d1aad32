// Package httest contains helpers shared by tests across the module.
package httest

import (
	"crypto/sha256"
	"math/rand/v2"
	"testing"
)

// RandomDataForTest returns sz pseudorandom bytes.
// The same test name always yields the same bytes,
// so failures reproduce across runs.
func RandomDataForTest(t *testing.T, sz int) []byte {
	t.Helper()

	// The ChaCha8 seed is 32 bytes, which is exactly a SHA-256 digest.
	src := rand.NewChaCha8(sha256.Sum256([]byte(t.Name())))

	out := make([]byte, sz)
	if _, err := src.Read(out); err != nil {
		t.Fatalf("failed to read random data: %v", err)
	}
	return out
}

// RandomItemsForTest returns n distinct items of itemSize bytes each,
// sliced out of a single call to [RandomDataForTest].
func RandomItemsForTest(t *testing.T, n, itemSize int) [][]byte {
	t.Helper()

	mem := RandomDataForTest(t, n*itemSize)

	items := make([][]byte, n)
	for i := range items {
		start := i * itemSize
		items[i] = mem[start : start+itemSize : start+itemSize]
	}
	return items
}
