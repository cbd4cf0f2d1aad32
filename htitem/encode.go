package htitem

import (
	"encoding"
	"fmt"
	"reflect"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"
)

var recordEncMode = mustRecordEncMode()

func mustRecordEncMode() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("BUG: failed to build CBOR encoding mode: %w", err))
	}
	return em
}

// FromStrings encodes each string as a UTF-8 item.
func FromStrings(ss []string) ([][]byte, error) {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		if !utf8.ValidString(s) {
			return nil, InvalidItemError{Index: i, Err: ErrInvalidUTF8}
		}
		out[i] = []byte(s)
	}
	return out, nil
}

// Encode converts each value into an item:
//   - []byte is used as is
//   - string must be valid UTF-8 and is used as its bytes
//   - [encoding.BinaryMarshaler] values use their MarshalBinary output
//   - anything else is encoded as core deterministic CBOR,
//     so equal records always produce equal items
//
// A nil value (including a typed nil pointer, map, slice or interface,
// other than a nil []byte), or a value CBOR cannot represent
// (such as a func or chan),
// results in an [InvalidItemError] and no items.
func Encode(vals ...any) ([][]byte, error) {
	out := make([][]byte, len(vals))
	for i, v := range vals {
		b, err := encodeOne(v)
		if err != nil {
			return nil, InvalidItemError{Index: i, Err: err}
		}
		out[i] = b
	}
	return out, nil
}

func encodeOne(v any) ([]byte, error) {
	if isTypedNil(v) {
		return nil, ErrNilItem
	}

	switch v := v.(type) {
	case nil:
		return nil, ErrNilItem
	case []byte:
		if v == nil {
			return []byte{}, nil
		}
		return v, nil
	case string:
		if !utf8.ValidString(v) {
			return nil, ErrInvalidUTF8
		}
		return []byte(v), nil
	case encoding.BinaryMarshaler:
		b, err := v.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
		}
		return b, nil
	default:
		b, err := recordEncMode.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %T as CBOR: %w", v, err)
		}
		return b, nil
	}
}

// isTypedNil reports whether v is a nil pointer, map, slice or interface
// wrapped in a non-nil interface value.
// A nil []byte is an empty item, not a nil one.
func isTypedNil(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.([]byte); ok {
		return false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
