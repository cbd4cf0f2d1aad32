// Package htsha256 contains the reference [htdigest.Hasher], backed by SHA-256.
package htsha256

import (
	"crypto/sha256"

	"github.com/gordian-engine/hashtree/htdigest"
)

const HashSize = sha256.Size

// Hasher is a [htdigest.Hasher] backed by SHA-256 hashes.
//
// Leaves are SHA256(in) and nodes are SHA256(left ++ right),
// with no domain separation prefix,
// so that roots match other implementations of the same layered tree.
type Hasher struct{}

var _ htdigest.Hasher = Hasher{}

func (Hasher) Leaf(in []byte, dst []byte) []byte {
	h := sha256.New()
	_, _ = h.Write(in)
	return h.Sum(dst)
}

func (Hasher) Node(left, right []byte, dst []byte) []byte {
	h := sha256.New()
	_, _ = h.Write(left)
	_, _ = h.Write(right)
	return h.Sum(dst)
}

func (Hasher) Size() int {
	return HashSize
}
