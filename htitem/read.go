package htitem

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"
)

// MaxLineSize is the longest line accepted by [ReadLines] and [ReadHexLines].
const MaxLineSize = 16 << 20

// Format identifies how items are laid out in a stream.
type Format uint8

const (
	// FormatLines is UTF-8 text with one item per line.
	FormatLines Format = iota

	// FormatHex is one hex-encoded item per line.
	FormatHex

	// FormatCBOR is a single CBOR array of byte strings.
	FormatCBOR
)

var formatNames = [...]string{
	FormatLines: "lines",
	FormatHex:   "hex",
	FormatCBOR:  "cbor",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// ParseFormat returns the Format with the given name.
func ParseFormat(name string) (Format, error) {
	for i, n := range formatNames {
		if n == name {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("unknown input format %q (available: lines, hex, cbor)", name)
}

// Read reads every item from r in the given format.
func Read(r io.Reader, f Format) ([][]byte, error) {
	switch f {
	case FormatLines:
		return ReadLines(r)
	case FormatHex:
		return ReadHexLines(r)
	case FormatCBOR:
		return ReadCBOR(r)
	default:
		panic(fmt.Errorf("BUG: unhandled format %v", f))
	}
}

// ReadLines reads one UTF-8 item per line.
// Line terminators ("\n" or "\r\n") are not part of the item.
// A blank line is an empty item;
// a final newline does not start another item.
func ReadLines(r io.Reader) ([][]byte, error) {
	return scanLines(r, func(line []byte) ([]byte, error) {
		if !utf8.Valid(line) {
			return nil, ErrInvalidUTF8
		}
		return append([]byte{}, line...), nil
	})
}

// ReadHexLines reads one hex-encoded item per line.
// Surrounding whitespace on a line is ignored.
func ReadHexLines(r io.Reader) ([][]byte, error) {
	return scanLines(r, func(line []byte) ([]byte, error) {
		line = bytes.TrimSpace(line)
		out := make([]byte, hex.DecodedLen(len(line)))
		if _, err := hex.Decode(out, line); err != nil {
			return nil, fmt.Errorf("failed to decode hex: %w", err)
		}
		return out, nil
	})
}

func scanLines(r io.Reader, conv func([]byte) ([]byte, error)) ([][]byte, error) {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	var items [][]byte
	for s.Scan() {
		item, err := conv(s.Bytes())
		if err != nil {
			return nil, InvalidItemError{Index: len(items), Err: err}
		}
		items = append(items, item)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	return items, nil
}

// MaxCBORItems is the largest item array accepted by [ReadCBOR].
// It is the upper bound the CBOR decoder supports.
const MaxCBORItems = math.MaxInt32

var itemsDecMode = mustItemsDecMode()

func mustItemsDecMode() cbor.DecMode {
	dm, err := cbor.DecOptions{MaxArrayElements: MaxCBORItems}.DecMode()
	if err != nil {
		panic(fmt.Errorf("BUG: failed to build CBOR decoding mode: %w", err))
	}
	return dm
}

// ReadCBOR reads a single CBOR array of byte strings.
// A null or undefined element is rejected as [ErrNilItem],
// and any data following the array is an error.
func ReadCBOR(r io.Reader) ([][]byte, error) {
	dec := itemsDecMode.NewDecoder(r)

	var raw []cbor.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode CBOR items: %w", err)
	}

	var extra cbor.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after CBOR item array")
	}

	items := make([][]byte, len(raw))
	for i, elem := range raw {
		// 0xf6 is null and 0xf7 is undefined.
		if len(elem) == 1 && (elem[0] == 0xf6 || elem[0] == 0xf7) {
			return nil, InvalidItemError{Index: i, Err: ErrNilItem}
		}

		var b []byte
		if err := itemsDecMode.Unmarshal(elem, &b); err != nil {
			return nil, InvalidItemError{Index: i, Err: err}
		}
		if b == nil {
			b = []byte{}
		}
		items[i] = b
	}
	return items, nil
}
