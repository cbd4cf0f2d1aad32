package htitem

import (
	"errors"
	"fmt"
)

var (
	// ErrNilItem is wrapped by [InvalidItemError]
	// when a nil value is passed to [Encode].
	ErrNilItem = errors.New("nil item")

	// ErrInvalidUTF8 is wrapped by [InvalidItemError]
	// when text input is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")
)

// InvalidItemError reports an input value
// that has no byte representation.
type InvalidItemError struct {
	// Zero-based position of the value in its input.
	Index int

	Err error
}

func (e InvalidItemError) Error() string {
	return fmt.Sprintf("invalid item at index %d: %v", e.Index, e.Err)
}

func (e InvalidItemError) Unwrap() error {
	return e.Err
}
