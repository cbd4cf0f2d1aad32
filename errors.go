package hashtree

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyTree is returned from [*Tree.Prove]
// when the tree was built from zero items.
var ErrEmptyTree = errors.New("tree has no leaves")

// LeafIndexOutOfRangeError is returned from [*Tree.Prove]
// if the requested leaf index does not exist in the tree.
type LeafIndexOutOfRangeError struct {
	Index, LeafCount int
}

func (e LeafIndexOutOfRangeError) Error() string {
	return fmt.Sprintf("leaf index %d out of range [0, %d)", e.Index, e.LeafCount)
}

// UnknownHasherError is returned from [LookupHasher]
// when no hasher is registered under the given name.
type UnknownHasherError struct {
	Name string
}

func (e UnknownHasherError) Error() string {
	return fmt.Sprintf(
		"unknown hasher %q (available: %s)",
		e.Name, strings.Join(HasherNames(), ", "),
	)
}
