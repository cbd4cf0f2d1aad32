// Package htdigest defines the hash function seam used by the hash tree.
//
// The tree itself never names a concrete hash function.
// Callers pick one of the implementations in the child packages
// (htsha256, htsha3, htblake2b) or provide their own.
package htdigest

// Hasher is the interface for hashing leaves and nodes.
// The tree passes raw item bytes to the Leaf method to create a leaf digest,
// and it passes the raw digests of two children to the Node method.
//
// To be allocation-efficient, the Hasher implementation
// must append its hash output to dst, instead of creating a new byte slice.
// Callers pass a zero-length slice with at least Size bytes of capacity,
// and then read the digest out of the backing array.
// Hasher must not retain references to the dst slice.
//
// Both methods return the extended slice, as [hash.Hash.Sum] does.
// Exactly Size bytes must be appended on every call;
// the tree treats any other length as a fatal hasher failure.
//
// Furthermore, Hasher methods must be safe to call concurrently.
type Hasher interface {
	Leaf(in []byte, dst []byte) []byte
	Node(left, right []byte, dst []byte) []byte

	// Size is the length in bytes of every digest the Hasher produces.
	Size() int
}
