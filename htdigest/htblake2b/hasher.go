// Package htblake2b contains a [htdigest.Hasher] backed by unkeyed BLAKE2b-256.
package htblake2b

import (
	"fmt"
	"hash"

	"github.com/gordian-engine/hashtree/htdigest"
	"golang.org/x/crypto/blake2b"
)

const HashSize = blake2b.Size256

// Hasher is a [htdigest.Hasher] backed by BLAKE2b-256.
type Hasher struct{}

var _ htdigest.Hasher = Hasher{}

func (Hasher) Leaf(in []byte, dst []byte) []byte {
	h := newHash()
	_, _ = h.Write(in)
	return h.Sum(dst)
}

func (Hasher) Node(left, right []byte, dst []byte) []byte {
	h := newHash()
	_, _ = h.Write(left)
	_, _ = h.Write(right)
	return h.Sum(dst)
}

func (Hasher) Size() int {
	return HashSize
}

func newHash() hash.Hash {
	// New256 only fails for keys longer than 64 bytes,
	// and we never pass a key.
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(fmt.Errorf("BUG: unkeyed blake2b.New256 failed: %w", err))
	}
	return h
}
