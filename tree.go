package hashtree

import (
	"bytes"
	"fmt"

	"github.com/gordian-engine/hashtree/htdigest"
	"github.com/gordian-engine/hashtree/htdigest/htsha256"
)

// Tree is an immutable binary hash tree over an ordered list of items.
//
// Layer 0 holds one leaf digest per item, in item order.
// Every following layer holds the pairwise node digests of the layer below,
// where an unpaired final digest is paired with itself.
// The last layer holds exactly one digest, the root.
//
// A Tree built from zero items has no layers and no root.
//
// Every accessor returns copies,
// so a Tree never changes after construction
// and is safe for concurrent use.
type Tree struct {
	// Each layer is a view into one backing allocation,
	// sized once at construction.
	layers [][][]byte

	hashSize int

	// Set when some layer had two equal digests in a left/right pair.
	mutated bool
}

// New builds a Tree from items using the reference SHA-256 hasher.
func New(items [][]byte) *Tree {
	return NewWithHasher(htsha256.Hasher{}, items)
}

// NewWithHasher builds a Tree from items using h
// for both leaf and node digests.
//
// A nil element of items is hashed as an empty item.
// NewWithHasher panics if h misbehaves,
// as a hasher failure cannot be recovered from.
func NewWithHasher(h htdigest.Hasher, items [][]byte) *Tree {
	t := newEmptyTree(len(items), hasherSize(h))
	if len(items) == 0 {
		return t
	}

	leaves := t.layers[0]
	for i, item := range items {
		writeLeaf(h, item, leaves[i])
	}

	t.complete(h)
	return t
}

// newEmptyTree returns a tree with every layer allocated
// for the given number of leaves, but no digests written yet.
func newEmptyTree(nLeaves, hashSize int) *Tree {
	t := &Tree{hashSize: hashSize}
	if nLeaves == 0 {
		return t
	}

	nLayers := layerCount(nLeaves)

	// We know the exact width of every layer up front,
	// so we back the entire tree with a single byte slice
	// and a single slice of node views.
	var nNodes int
	for w := nLeaves; ; w = parentWidth(w) {
		nNodes += w
		if w == 1 {
			break
		}
	}

	mem := make([]byte, nNodes*hashSize)
	nodes := make([][]byte, nNodes)
	for i := range nodes {
		start := i * hashSize
		end := start + hashSize

		// Capping the view keeps a hasher that appends too much
		// from spilling into the neighboring node.
		nodes[i] = mem[start:end:end]
	}

	t.layers = make([][][]byte, nLayers)
	off := 0
	w := nLeaves
	for i := range t.layers {
		t.layers[i] = nodes[off : off+w : off+w]
		off += w
		w = parentWidth(w)
	}

	return t
}

// complete fills every layer above the leaves,
// combining pairs strictly left to right.
func (t *Tree) complete(h htdigest.Hasher) {
	for i := 1; i < len(t.layers); i++ {
		if combineInto(h, t.layers[i-1], t.layers[i]) {
			t.mutated = true
		}
	}
}

// Root returns a copy of the root digest and true,
// or nil and false if the tree was built from zero items.
//
// An absent root is distinct from every digest value;
// callers must not substitute a zero digest for it.
func (t *Tree) Root() ([]byte, bool) {
	if len(t.layers) == 0 {
		return nil, false
	}
	return bytes.Clone(t.layers[len(t.layers)-1][0]), true
}

// Empty reports whether the tree was built from zero items.
func (t *Tree) Empty() bool {
	return len(t.layers) == 0
}

// LeafCount returns the number of items the tree was built from.
func (t *Tree) LeafCount() int {
	if len(t.layers) == 0 {
		return 0
	}
	return len(t.layers[0])
}

// Height returns the number of layers,
// including the leaf layer and the root layer.
// It is ceil(log2(n))+1 for n items, and zero for the empty tree.
func (t *Tree) Height() int {
	return len(t.layers)
}

// HashSize returns the length of every digest in the tree.
func (t *Tree) HashSize() int {
	return t.hashSize
}

// Leaf returns a copy of the digest of the item at index idx.
func (t *Tree) Leaf(idx int) []byte {
	if idx < 0 || idx >= t.LeafCount() {
		panic(fmt.Errorf(
			"BUG: attempted to get leaf at index %d; must be in range [0, %d)",
			idx, t.LeafCount(),
		))
	}

	return bytes.Clone(t.layers[0][idx])
}

// Layer returns a copy of layer i, where layer 0 is the leaves
// and layer Height()-1 is the root.
func (t *Tree) Layer(i int) [][]byte {
	if i < 0 || i >= len(t.layers) {
		panic(fmt.Errorf(
			"BUG: attempted to get layer %d; must be in range [0, %d)",
			i, len(t.layers),
		))
	}

	return cloneLayer(t.layers[i])
}

// Layers returns a copy of every layer, leaves first.
// The result is empty for a tree built from zero items.
func (t *Tree) Layers() [][][]byte {
	out := make([][][]byte, len(t.layers))
	for i, l := range t.layers {
		out[i] = cloneLayer(l)
	}
	return out
}

// Mutated reports whether any layer paired two equal digests.
//
// Because an unpaired final digest is paired with itself,
// an item list ending in a duplicated run (such as [a b c c])
// has the same root as the list without the duplicate ([a b c]).
// A tree for which Mutated returns true could be the longer form
// of such a pair, so callers checking an item list
// received from an untrusted party should reject it.
// The root is unaffected.
func (t *Tree) Mutated() bool {
	return t.mutated
}

func cloneLayer(l [][]byte) [][]byte {
	// One allocation for the whole copied layer.
	if len(l) == 0 {
		return [][]byte{}
	}
	sz := len(l[0])
	mem := make([]byte, len(l)*sz)
	out := make([][]byte, len(l))
	for i, d := range l {
		start := i * sz
		end := start + sz
		out[i] = mem[start:end:end]
		copy(out[i], d)
	}
	return out
}

// layerCount returns the number of layers in a tree of n leaves.
func layerCount(n int) int {
	if n <= 0 {
		return 0
	}

	c := 1
	for w := n; w > 1; w = parentWidth(w) {
		c++
	}
	return c
}

// parentWidth is the width of the layer above a layer of width w.
func parentWidth(w int) int {
	return (w + 1) / 2
}
