package hashtree_test

import (
	"slices"
	"testing"

	"github.com/gordian-engine/hashtree"
	"github.com/gordian-engine/hashtree/htdigest/htsha256"
	"github.com/stretchr/testify/require"
)

func TestLookupHasher(t *testing.T) {
	t.Parallel()

	names := hashtree.HasherNames()
	require.True(t, slices.IsSorted(names))
	require.Equal(t, []string{"blake2b-256", "keccak256", "sha256", "sha3-256"}, names)

	seen := map[string]string{}
	for _, name := range names {
		h, err := hashtree.LookupHasher(name)
		require.NoError(t, err)
		require.Equal(t, 32, h.Size())

		// Every registered hasher must produce a distinct root.
		root := mustRoot(t, hashtree.NewWithHasher(h, strItems("a", "b", "c")))
		prev, dup := seen[string(root)]
		require.False(t, dup, "%s and %s produced the same root", name, prev)
		seen[string(root)] = name
	}

	h, err := hashtree.LookupHasher(hashtree.DefaultHasherName)
	require.NoError(t, err)
	require.Equal(t, htsha256.Hasher{}, h)
}

func TestLookupHasher_unknown(t *testing.T) {
	t.Parallel()

	_, err := hashtree.LookupHasher("md5")
	require.Error(t, err)

	var uhe hashtree.UnknownHasherError
	require.ErrorAs(t, err, &uhe)
	require.Equal(t, "md5", uhe.Name)
	require.Contains(t, err.Error(), "sha256")
}
