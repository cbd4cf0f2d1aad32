// Package htsha3 contains [htdigest.Hasher] implementations
// from the Keccak family.
//
// [Keccak256Hasher] uses the legacy Keccak padding found in Ethereum,
// and [SHA3Hasher] uses the standardized FIPS 202 SHA3-256.
package htsha3

import (
	"hash"

	"github.com/gordian-engine/hashtree/htdigest"
	"golang.org/x/crypto/sha3"
)

const HashSize = 32

// Keccak256Hasher is a [htdigest.Hasher] backed by legacy Keccak-256.
type Keccak256Hasher struct{}

var _ htdigest.Hasher = Keccak256Hasher{}

func (Keccak256Hasher) Leaf(in []byte, dst []byte) []byte {
	return leaf(sha3.NewLegacyKeccak256(), in, dst)
}

func (Keccak256Hasher) Node(left, right []byte, dst []byte) []byte {
	return node(sha3.NewLegacyKeccak256(), left, right, dst)
}

func (Keccak256Hasher) Size() int {
	return HashSize
}

// SHA3Hasher is a [htdigest.Hasher] backed by SHA3-256.
type SHA3Hasher struct{}

var _ htdigest.Hasher = SHA3Hasher{}

func (SHA3Hasher) Leaf(in []byte, dst []byte) []byte {
	return leaf(sha3.New256(), in, dst)
}

func (SHA3Hasher) Node(left, right []byte, dst []byte) []byte {
	return node(sha3.New256(), left, right, dst)
}

func (SHA3Hasher) Size() int {
	return HashSize
}

func leaf(h hash.Hash, in, dst []byte) []byte {
	_, _ = h.Write(in)
	return h.Sum(dst)
}

func node(h hash.Hash, left, right, dst []byte) []byte {
	_, _ = h.Write(left)
	_, _ = h.Write(right)
	return h.Sum(dst)
}
