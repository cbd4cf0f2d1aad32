// Package htdigesttest contains a compliance suite
// for [htdigest.Hasher] implementations.
package htdigesttest

import (
	"bytes"
	"sync"
	"testing"

	"github.com/gordian-engine/hashtree/htdigest"
	"github.com/stretchr/testify/require"
)

type HasherFactory func() htdigest.Hasher

// TestHasherCompliance runs the behaviors every Hasher must exhibit
// in order to be usable by the hash tree.
func TestHasherCompliance(t *testing.T, f HasherFactory) {
	t.Run("size is positive", func(t *testing.T) {
		t.Parallel()

		require.Positive(t, f().Size())
	})

	t.Run("leaf is deterministic", func(t *testing.T) {
		t.Parallel()

		h := f()

		require.Equal(t, leaf(h, []byte("deterministic_data")), leaf(h, []byte("deterministic_data")))
	})

	t.Run("leaf respects input", func(t *testing.T) {
		t.Parallel()

		h := f()

		require.NotEqual(t, leaf(h, []byte("hello")), leaf(h, []byte("hellp")))
		require.NotEqual(t, leaf(h, nil), leaf(h, []byte{0}))
	})

	t.Run("node is deterministic", func(t *testing.T) {
		t.Parallel()

		h := f()
		l := leaf(h, []byte("left"))
		r := leaf(h, []byte("right"))

		require.Equal(t, node(h, l, r), node(h, l, r))
	})

	t.Run("node respects order", func(t *testing.T) {
		t.Parallel()

		h := f()
		l := leaf(h, []byte("left"))
		r := leaf(h, []byte("right"))

		require.NotEqual(t, node(h, l, r), node(h, r, l))
	})

	t.Run("output is appended to dst", func(t *testing.T) {
		t.Parallel()

		h := f()
		sz := h.Size()

		// One extra sentinel byte past the digest,
		// which must not be touched.
		dst := bytes.Repeat([]byte{0xAA}, sz+1)
		out := h.Leaf([]byte("in"), dst[:0])
		require.Len(t, out, sz)
		require.Equal(t, byte(0xAA), dst[sz])
		require.Equal(t, out, dst[:sz])

		dst = bytes.Repeat([]byte{0xAA}, sz+1)
		out = h.Node([]byte("l"), []byte("r"), dst[:0])
		require.Len(t, out, sz)
		require.Equal(t, byte(0xAA), dst[sz])
		require.Equal(t, out, dst[:sz])
	})

	t.Run("output extends a non-empty dst", func(t *testing.T) {
		t.Parallel()

		h := f()

		prefix := []byte("prefix")
		out := h.Leaf([]byte("in"), bytes.Clone(prefix))
		require.Len(t, out, len(prefix)+h.Size())
		require.Equal(t, prefix, out[:len(prefix)])
		require.Equal(t, leaf(h, []byte("in")), out[len(prefix):])
	})

	t.Run("concurrent use", func(t *testing.T) {
		t.Parallel()

		h := f()
		want := leaf(h, []byte("concurrent"))

		const n = 16
		got := make([][]byte, n)
		var wg sync.WaitGroup
		for i := range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got[i] = leaf(h, []byte("concurrent"))
			}()
		}
		wg.Wait()

		for i := range n {
			require.Equal(t, want, got[i])
		}
	})
}

func leaf(h htdigest.Hasher, in []byte) []byte {
	return h.Leaf(in, make([]byte, 0, h.Size()))
}

func node(h htdigest.Hasher, left, right []byte) []byte {
	return h.Node(left, right, make([]byte, 0, h.Size()))
}
