// Package hashtree builds binary hash trees
// that commit to an ordered list of opaque items.
//
// Items are hashed into leaf digests,
// and each layer is combined pairwise, left to right,
// into the layer above it until a single root digest remains.
// When a layer has an odd length, its final digest is paired with itself.
// Node digests hash the raw bytes of the two child digests,
// never their textual form.
//
// The root changes if any item, or the order of the items, changes;
// see [*Tree.Mutated] for the one structural exception
// introduced by pairing odd digests with themselves.
//
// A [Tree] built from zero items is valid and has no root.
//
// The hash function is supplied through the [htdigest.Hasher] interface.
// [New] uses SHA-256, and [LookupHasher] resolves the other bundled hashers by name.
// [*Tree.Prove] produces inclusion proofs for single items,
// and [Builder] hashes leaves on multiple goroutines for large inputs.
package hashtree
