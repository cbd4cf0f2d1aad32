package hashtree

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/fxamacker/cbor/v2"
	"github.com/gordian-engine/hashtree/htdigest"
)

// Proof is an inclusion proof for a single item of a [Tree].
//
// Siblings holds one digest per layer below the root,
// starting at the leaf layer.
// A digest without a right neighbor has itself as its sibling,
// matching the pairing rule used to build the tree.
type Proof struct {
	// Index of the proven leaf.
	Index int

	// Number of leaves in the tree the proof was produced from.
	LeafCount int

	Siblings [][]byte

	// Left has bit i set when Siblings[i] is the left operand
	// of the node hash at layer i.
	Left *bitset.BitSet
}

// Prove returns the inclusion proof for the item at index.
//
// It returns [ErrEmptyTree] for a tree without leaves,
// and [LeafIndexOutOfRangeError] for any other invalid index.
func (t *Tree) Prove(index int) (Proof, error) {
	if t.Empty() {
		return Proof{}, ErrEmptyTree
	}
	if index < 0 || index >= t.LeafCount() {
		return Proof{}, LeafIndexOutOfRangeError{Index: index, LeafCount: t.LeafCount()}
	}

	pathLen := len(t.layers) - 1
	p := Proof{
		Index:     index,
		LeafCount: t.LeafCount(),
		Siblings:  make([][]byte, pathLen),
		Left:      bitset.MustNew(uint(pathLen)),
	}

	pos := index
	for i, layer := range t.layers[:pathLen] {
		sib := pos
		if (pos & 1) == 1 {
			sib = pos - 1
			p.Left.Set(uint(i))
		} else if pos+1 < len(layer) {
			sib = pos + 1
		}
		// Otherwise pos is the unpaired final digest and is its own sibling.

		p.Siblings[i] = bytes.Clone(layer[sib])
		pos >>= 1
	}

	return p, nil
}

// Verify reports whether p proves that item is included,
// at p.Index, in the tree with the given root under h.
func (p Proof) Verify(h htdigest.Hasher, root, item []byte) bool {
	return p.VerifyDigest(h, root, Digest(h, item))
}

// VerifyDigest is like [Proof.Verify]
// but accepts an already computed leaf digest.
//
// Besides folding the path, VerifyDigest rejects proofs
// whose path length or direction bits do not match
// the shape implied by p.Index and p.LeafCount,
// including any direction bit set beyond the path.
func (p Proof) VerifyDigest(h htdigest.Hasher, root, leaf []byte) bool {
	if p.LeafCount <= 0 || p.Index < 0 || p.Index >= p.LeafCount {
		return false
	}
	if len(p.Siblings) != layerCount(p.LeafCount)-1 {
		return false
	}
	if p.Left != nil {
		// Direction bits past the path would give one proof many encodings.
		if _, extra := p.Left.NextSet(uint(len(p.Siblings))); extra {
			return false
		}
	}

	sz := hasherSize(h)
	if len(leaf) != sz || len(root) != sz {
		return false
	}

	cur := leaf
	pos := p.Index
	width := p.LeafCount
	for i, sib := range p.Siblings {
		if len(sib) != sz {
			return false
		}

		siblingLeft := (pos & 1) == 1
		if p.leftBit(i) != siblingLeft {
			return false
		}

		next := make([]byte, sz)
		if siblingLeft {
			writeNode(h, sib, cur, next)
		} else {
			if pos+1 == width && !bytes.Equal(sib, cur) {
				// The unpaired final digest must be paired with itself.
				return false
			}
			writeNode(h, cur, sib, next)
		}

		cur = next
		pos >>= 1
		width = parentWidth(width)
	}

	return bytes.Equal(cur, root)
}

func (p Proof) leftBit(i int) bool {
	return p.Left != nil && p.Left.Test(uint(i))
}

// proofWire is the CBOR layout of a [Proof].
type proofWire struct {
	_ struct{} `cbor:",toarray"`

	Index     uint64
	LeafCount uint64
	Siblings  [][]byte
	Left      []uint64
}

var proofEncMode = mustProofEncMode()

func mustProofEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("BUG: failed to build CBOR encoding mode: %w", err))
	}
	return em
}

var errMalformedProof = errors.New("malformed proof")

// MarshalBinary encodes p as a deterministic CBOR array.
func (p Proof) MarshalBinary() ([]byte, error) {
	if p.Index < 0 || p.LeafCount < 0 {
		return nil, fmt.Errorf("%w: negative index or leaf count", errMalformedProof)
	}

	// Empty containers always encode as empty arrays, never null.
	w := proofWire{
		Index:     uint64(p.Index),
		LeafCount: uint64(p.LeafCount),
		Siblings:  [][]byte{},
		Left:      []uint64{},
	}
	if len(p.Siblings) > 0 {
		w.Siblings = p.Siblings
	}
	if p.Left != nil && len(p.Left.Words()) > 0 {
		w.Left = p.Left.Words()
	}

	b, err := proofEncMode.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to encode proof: %w", err)
	}
	return b, nil
}

// UnmarshalBinary decodes a proof produced by [Proof.MarshalBinary].
// The decoded proof still has to pass [Proof.Verify].
func (p *Proof) UnmarshalBinary(data []byte) error {
	var w proofWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("failed to decode proof: %w", err)
	}

	if w.LeafCount == 0 || w.LeafCount > math.MaxInt32 || w.Index >= w.LeafCount {
		return fmt.Errorf(
			"%w: index %d with leaf count %d",
			errMalformedProof, w.Index, w.LeafCount,
		)
	}

	*p = Proof{
		Index:     int(w.Index),
		LeafCount: int(w.LeafCount),
		Siblings:  w.Siblings,
		Left:      bitset.From(w.Left),
	}
	return nil
}
