package hashtree_test

import (
	"crypto/sha256"
	"fmt"
	"math/bits"
	"testing"

	"github.com/gordian-engine/hashtree"
	"github.com/gordian-engine/hashtree/htdigest/htsha256"
	"github.com/gordian-engine/hashtree/htdigest/htsha3"
	"github.com/gordian-engine/hashtree/internal/httest"
	"github.com/stretchr/testify/require"
)

func sha(parts ...[]byte) []byte {
	h := sha256.New()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return h.Sum(nil)
}

func strItems(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func mustRoot(t *testing.T, tree *hashtree.Tree) []byte {
	t.Helper()

	root, ok := tree.Root()
	require.True(t, ok)
	return root
}

func TestTree_empty(t *testing.T) {
	t.Parallel()

	for _, items := range [][][]byte{nil, {}} {
		tree := hashtree.New(items)

		root, ok := tree.Root()
		require.False(t, ok)
		require.Nil(t, root)

		require.True(t, tree.Empty())
		require.Zero(t, tree.LeafCount())
		require.Zero(t, tree.Height())
		require.Empty(t, tree.Layers())
		require.False(t, tree.Mutated())
		require.Equal(t, htsha256.HashSize, tree.HashSize())
	}
}

func TestTree_empty_rootIsNotHashOfNothing(t *testing.T) {
	t.Parallel()

	// A single empty item commits to something;
	// zero items commit to nothing.
	tree := hashtree.New([][]byte{{}})
	require.Equal(t, sha(nil), mustRoot(t, tree))

	_, ok := hashtree.New(nil).Root()
	require.False(t, ok)
}

func TestTree_singleton(t *testing.T) {
	t.Parallel()

	tree := hashtree.New(strItems("x"))

	require.Equal(t, sha([]byte("x")), mustRoot(t, tree))
	require.Equal(t, 1, tree.Height())
	require.Equal(t, tree.Leaf(0), mustRoot(t, tree))
	require.False(t, tree.Empty())
}

func TestTree_knownVector(t *testing.T) {
	t.Parallel()

	tree := hashtree.New(strItems("tx1", "tx2", "tx3", "tx4"))

	h1 := sha([]byte("tx1"))
	h2 := sha([]byte("tx2"))
	h3 := sha([]byte("tx3"))
	h4 := sha([]byte("tx4"))

	h12 := sha(h1, h2)
	h34 := sha(h3, h4)

	expRoot := sha(h12, h34)
	require.Equal(t, expRoot, mustRoot(t, tree))

	require.Equal(t, [][][]byte{
		{h1, h2, h3, h4},
		{h12, h34},
		{expRoot},
	}, tree.Layers())
}

func TestTree_oddLayerDuplication(t *testing.T) {
	t.Parallel()

	tree := hashtree.New(strItems("a", "b", "c"))

	ha := sha([]byte("a"))
	hb := sha([]byte("b"))
	hc := sha([]byte("c"))

	hab := sha(ha, hb)
	hcc := sha(hc, hc)

	require.Equal(t, sha(hab, hcc), mustRoot(t, tree))
	require.Equal(t, 3, tree.Height())
}

func TestTree_oddLayerDuplication_aboveLeaves(t *testing.T) {
	t.Parallel()

	// Six leaves give an even leaf layer but an odd second layer,
	// so the duplication must happen above the leaves too.
	items := strItems("0", "1", "2", "3", "4", "5")
	tree := hashtree.New(items)

	l := make([][]byte, len(items))
	for i, it := range items {
		l[i] = sha(it)
	}

	n01 := sha(l[0], l[1])
	n23 := sha(l[2], l[3])
	n45 := sha(l[4], l[5])

	n0123 := sha(n01, n23)
	n4545 := sha(n45, n45)

	require.Equal(t, sha(n0123, n4545), mustRoot(t, tree))
}

func TestTree_orderSensitivity(t *testing.T) {
	t.Parallel()

	a := mustRoot(t, hashtree.New(strItems("tx1", "tx2")))
	b := mustRoot(t, hashtree.New(strItems("tx2", "tx1")))

	require.NotEqual(t, a, b)
}

func TestTree_determinism(t *testing.T) {
	t.Parallel()

	items := httest.RandomItemsForTest(t, 37, 24)

	first := mustRoot(t, hashtree.New(items))
	for range 5 {
		require.Equal(t, first, mustRoot(t, hashtree.New(items)))
	}
}

func TestTree_sensitivity(t *testing.T) {
	t.Parallel()

	items := httest.RandomItemsForTest(t, 8, 16)
	base := mustRoot(t, hashtree.New(items))

	t.Run("mutation", func(t *testing.T) {
		t.Parallel()

		for i := range items {
			mutated := cloneItems(items)
			mutated[i][0] ^= 0x01

			require.NotEqual(t, base, mustRoot(t, hashtree.New(mutated)), "item %d", i)
		}
	})

	t.Run("insertion", func(t *testing.T) {
		t.Parallel()

		extra := []byte("inserted item")
		for i := 0; i <= len(items); i++ {
			inserted := make([][]byte, 0, len(items)+1)
			inserted = append(inserted, items[:i]...)
			inserted = append(inserted, extra)
			inserted = append(inserted, items[i:]...)

			require.NotEqual(t, base, mustRoot(t, hashtree.New(inserted)), "position %d", i)
		}
	})

	t.Run("deletion", func(t *testing.T) {
		t.Parallel()

		for i := range items {
			deleted := make([][]byte, 0, len(items)-1)
			deleted = append(deleted, items[:i]...)
			deleted = append(deleted, items[i+1:]...)

			require.NotEqual(t, base, mustRoot(t, hashtree.New(deleted)), "position %d", i)
		}
	})

	t.Run("reordering", func(t *testing.T) {
		t.Parallel()

		for i := 0; i+1 < len(items); i++ {
			swapped := cloneItems(items)
			swapped[i], swapped[i+1] = swapped[i+1], swapped[i]

			require.NotEqual(t, base, mustRoot(t, hashtree.New(swapped)), "swap %d", i)
		}
	})
}

func TestTree_height(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 33; n++ {
		tree := hashtree.New(httest.RandomItemsForTest(t, n, 4))

		// ceil(log2(n)) + 1.
		exp := bits.Len(uint(n-1)) + 1
		require.Equal(t, exp, tree.Height(), "n=%d", n)

		require.Equal(t, n, tree.LeafCount())

		layers := tree.Layers()
		require.Len(t, layers, exp)
		require.Len(t, layers[len(layers)-1], 1)

		for i := 1; i < len(layers); i++ {
			require.Len(t, layers[i], (len(layers[i-1])+1)/2, "n=%d layer=%d", n, i)
		}
	}
}

func TestTree_matchesCombineLayerLoop(t *testing.T) {
	t.Parallel()

	h := htsha3.Keccak256Hasher{}
	for n := 1; n <= 20; n++ {
		items := httest.RandomItemsForTest(t, n, 8)
		tree := hashtree.NewWithHasher(h, items)

		layer := make([][]byte, n)
		for i, it := range items {
			layer[i] = hashtree.Digest(h, it)
		}
		for len(layer) > 1 {
			layer = hashtree.CombineLayer(h, layer)
		}

		require.Equal(t, layer[0], mustRoot(t, tree), "n=%d", n)
	}
}

func TestTree_accessorsReturnCopies(t *testing.T) {
	t.Parallel()

	tree := hashtree.New(strItems("a", "b", "c"))
	root := mustRoot(t, tree)

	r, _ := tree.Root()
	r[0] ^= 0xFF

	leaf := tree.Leaf(0)
	leaf[0] ^= 0xFF

	layers := tree.Layers()
	layers[1][0][0] ^= 0xFF

	layer := tree.Layer(0)
	layer[2][0] ^= 0xFF

	require.Equal(t, root, mustRoot(t, tree))
	require.Equal(t, sha([]byte("a")), tree.Leaf(0))
	require.Equal(t, sha([]byte("c")), tree.Layer(0)[2])
}

func TestTree_accessorsPanicOutOfRange(t *testing.T) {
	t.Parallel()

	tree := hashtree.New(strItems("a", "b"))

	require.Panics(t, func() { _ = tree.Leaf(2) })
	require.Panics(t, func() { _ = tree.Leaf(-1) })
	require.Panics(t, func() { _ = tree.Layer(2) })
	require.Panics(t, func() { _ = hashtree.New(nil).Layer(0) })
}

func TestTree_nilItemIsEmptyItem(t *testing.T) {
	t.Parallel()

	a := mustRoot(t, hashtree.New([][]byte{nil, []byte("x")}))
	b := mustRoot(t, hashtree.New([][]byte{{}, []byte("x")}))

	require.Equal(t, a, b)
}

func TestTree_Mutated(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		items   [][]byte
		mutated bool
	}{
		{items: strItems("a", "b", "c"), mutated: false},
		{items: strItems("a", "b", "c", "c"), mutated: true},
		{items: strItems("a", "a"), mutated: true},
		// Equal items that never form a pair are not a mutation.
		{items: strItems("a", "b", "a"), mutated: false},
		// Equal subtrees pairing above the leaves are a mutation too.
		{items: strItems("a", "b", "c", "d", "a", "b", "c", "d"), mutated: true},
		{items: strItems("a", "b", "a", "b"), mutated: true},
		{items: strItems("x"), mutated: false},
	} {
		tree := hashtree.New(tc.items)
		require.Equal(t, tc.mutated, tree.Mutated(), "items=%q", tc.items)
	}
}

func TestTree_Mutated_sharesRootWithShorterList(t *testing.T) {
	t.Parallel()

	short := hashtree.New(strItems("a", "b", "c"))
	long := hashtree.New(strItems("a", "b", "c", "c"))

	// This is the structural weakness of odd-node duplication
	// that Mutated exists to flag.
	require.Equal(t, mustRoot(t, short), mustRoot(t, long))
	require.False(t, short.Mutated())
	require.True(t, long.Mutated())
}

func TestTree_concurrentConstruction(t *testing.T) {
	t.Parallel()

	items := httest.RandomItemsForTest(t, 100, 32)
	want := mustRoot(t, hashtree.New(items))

	const n = 8
	got := make(chan []byte, n)
	for range n {
		go func() {
			r, _ := hashtree.New(items).Root()
			got <- r
		}()
	}

	for range n {
		require.Equal(t, want, <-got)
	}
}

func TestNewWithHasher_badHasherPanics(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		_ = hashtree.NewWithHasher(shortHasher{}, strItems("a"))
	})
	require.Panics(t, func() {
		_ = hashtree.NewWithHasher(nil, strItems("a"))
	})
}

func TestCombineLayer(t *testing.T) {
	t.Parallel()

	h := htsha256.Hasher{}

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		require.Empty(t, hashtree.CombineLayer(h, nil))
	})

	t.Run("single digest pairs with itself", func(t *testing.T) {
		t.Parallel()

		d := sha([]byte("only"))
		require.Equal(t, [][]byte{sha(d, d)}, hashtree.CombineLayer(h, [][]byte{d}))
	})

	t.Run("odd length", func(t *testing.T) {
		t.Parallel()

		a, b, c := sha([]byte("a")), sha([]byte("b")), sha([]byte("c"))
		require.Equal(t, [][]byte{sha(a, b), sha(c, c)}, hashtree.CombineLayer(h, [][]byte{a, b, c}))
	})

	t.Run("input not modified", func(t *testing.T) {
		t.Parallel()

		a, b := sha([]byte("a")), sha([]byte("b"))
		in := [][]byte{a, b}
		_ = hashtree.CombineLayer(h, in)

		require.Equal(t, sha([]byte("a")), in[0])
		require.Equal(t, sha([]byte("b")), in[1])
	})
}

func TestDigest(t *testing.T) {
	t.Parallel()

	require.Equal(t, sha([]byte("tx1")), hashtree.Digest(htsha256.Hasher{}, []byte("tx1")))
}

func cloneItems(items [][]byte) [][]byte {
	out := make([][]byte, len(items))
	for i, it := range items {
		out[i] = append([]byte(nil), it...)
	}
	return out
}

// shortHasher violates the Hasher contract by writing fewer bytes than its size.
type shortHasher struct{}

func (shortHasher) Leaf(in []byte, dst []byte) []byte {
	return append(dst, 1, 2)
}

func (shortHasher) Node(left, right []byte, dst []byte) []byte {
	return append(dst, 1, 2)
}

func (shortHasher) Size() int { return 4 }

func ExampleNew() {
	tree := hashtree.New([][]byte{
		[]byte("tx1"), []byte("tx2"), []byte("tx3"), []byte("tx4"),
	})

	root, ok := tree.Root()
	fmt.Println(ok, len(root), tree.Height())
	// Output:
	// true 32 3
}
