// Package htitem converts caller records into the byte items
// that a [hashtree.Tree] commits to.
//
// Every conversion is all-or-nothing:
// either every value becomes an item, or an [InvalidItemError]
// identifies the first value that could not be represented as bytes.
// Nothing is built from a partially converted list.
//
// [hashtree.Tree]: github.com/gordian-engine/hashtree.Tree
package htitem
