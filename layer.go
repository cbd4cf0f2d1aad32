package hashtree

import (
	"bytes"
	"fmt"

	"github.com/gordian-engine/hashtree/htdigest"
)

// Digest returns the leaf digest of item under h.
// The item bytes are hashed exactly as given.
func Digest(h htdigest.Hasher, item []byte) []byte {
	dst := make([]byte, hasherSize(h))
	writeLeaf(h, item, dst)
	return dst
}

// CombineLayer returns the parent layer of layer under h.
//
// Digests are combined two at a time, left to right,
// as h.Node(left, right).
// If layer has an odd length, the final digest is paired with itself;
// it is never dropped or promoted unhashed.
//
// The returned layer has (len(layer)+1)/2 digests.
// An empty layer returns an empty layer.
func CombineLayer(h htdigest.Hasher, layer [][]byte) [][]byte {
	sz := hasherSize(h)

	w := parentWidth(len(layer))
	mem := make([]byte, w*sz)
	out := make([][]byte, w)
	for i := range out {
		start := i * sz
		end := start + sz
		out[i] = mem[start:end:end]
	}

	_ = combineInto(h, layer, out)
	return out
}

// combineInto writes the parent digests of src into dst,
// which must already be sized to parentWidth(len(src)).
// It reports whether any real pair had equal digests.
func combineInto(h htdigest.Hasher, src, dst [][]byte) (sawEqualPair bool) {
	for i := 0; i < len(src); i += 2 {
		left := src[i]
		right := left
		if i+1 < len(src) {
			right = src[i+1]
			if bytes.Equal(left, right) {
				sawEqualPair = true
			}
		}

		writeNode(h, left, right, dst[i/2])
	}
	return sawEqualPair
}

func writeLeaf(h htdigest.Hasher, item, dst []byte) {
	out := h.Leaf(item, dst[:0])
	checkDigest("Leaf", out, dst)
}

func writeNode(h htdigest.Hasher, left, right, dst []byte) {
	out := h.Node(left, right, dst[:0])
	checkDigest("Node", out, dst)
}

// checkDigest confirms the hasher produced a full digest,
// and copies it into dst in case the hasher did not write in place.
func checkDigest(method string, out, dst []byte) {
	if len(out) != len(dst) {
		panic(fmt.Errorf(
			"BUG: hasher %s produced %d bytes; expected %d",
			method, len(out), len(dst),
		))
	}
	copy(dst, out)
}

func hasherSize(h htdigest.Hasher) int {
	if h == nil {
		panic("BUG: nil hasher")
	}

	sz := h.Size()
	if sz <= 0 {
		panic(fmt.Errorf(
			"BUG: hasher size must be positive (got %d)", sz,
		))
	}
	return sz
}
