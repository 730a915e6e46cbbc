package fragment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Tokens of the fragment file name layout:
//
//	<original>.binary-Checksum-<hex>-ChecksumEnd.splitPart<padded ordinal>_<total>
const (
	binaryMarker   = ".binary"
	checksumStart  = "-Checksum-"
	checksumEnd    = "-ChecksumEnd"
	partMarker     = ".splitPart"
	totalSeparator = "_"
)

// ErrInvalidName indicates a string that does not follow the fragment name layout.
var ErrInvalidName = errors.New("not a fragment name")

// Name is the parsed form of a fragment file name. Immutable value object.
type Name struct {
	original string
	checksum string
	ordinal  int
	total    int
}

// NewName creates a Name for the ordinal-th of total fragments of original.
func NewName(original, checksum string, ordinal, total int) (Name, error) {
	if original == "" {
		return Name{}, fmt.Errorf("%w: empty original file name", ErrInvalidName)
	}
	if checksum == "" {
		return Name{}, fmt.Errorf("%w: empty checksum", ErrInvalidName)
	}
	if total < 1 || ordinal < 1 || ordinal > total {
		return Name{}, fmt.Errorf("%w: ordinal %d out of range 1..%d", ErrInvalidName, ordinal, total)
	}
	return Name{original: original, checksum: checksum, ordinal: ordinal, total: total}, nil
}

// Original returns the source file name the fragment was cut from.
func (n Name) Original() string { return n.original }

// Checksum returns the source checksum embedded in the name.
func (n Name) Checksum() string { return n.checksum }

// Ordinal returns the 1-based position of the fragment.
func (n Name) Ordinal() int { return n.ordinal }

// Total returns the number of fragments in the split.
func (n Name) Total() int { return n.total }

// String renders the file name.
func (n Name) String() string {
	var b strings.Builder
	b.Grow(len(n.original) + len(n.checksum) + 64)
	b.WriteString(n.original)
	b.WriteString(binaryMarker)
	b.WriteString(checksumStart)
	b.WriteString(n.checksum)
	b.WriteString(checksumEnd)
	b.WriteString(partMarker)
	b.WriteString(PadOrdinal(n.ordinal, n.total))
	b.WriteString(totalSeparator)
	b.WriteString(strconv.Itoa(n.total))
	return b.String()
}

// PadOrdinal left-pads ordinal with zeros to the digit width of total, so that
// names sort lexicographically in ordinal order.
func PadOrdinal(ordinal, total int) string {
	width := len(strconv.Itoa(total))
	return fmt.Sprintf("%0*d", width, ordinal)
}

// ParseName parses a fragment file name (base name, no directory).
func ParseName(s string) (Name, error) {
	head, tail, ok := cutLast(s, partMarker)
	if !ok {
		return Name{}, fmt.Errorf("%w: %q has no %s marker", ErrInvalidName, s, partMarker)
	}

	padded, totalStr, ok := cutLast(tail, totalSeparator)
	if !ok {
		return Name{}, fmt.Errorf("%w: %q has no total", ErrInvalidName, s)
	}
	total, err := parseDecimal(totalStr)
	if err != nil {
		return Name{}, fmt.Errorf("%w: total %q: %v", ErrInvalidName, totalStr, err)
	}
	ordinal, err := parseDecimal(padded)
	if err != nil {
		return Name{}, fmt.Errorf("%w: ordinal %q: %v", ErrInvalidName, padded, err)
	}
	if len(padded) != len(totalStr) {
		return Name{}, fmt.Errorf("%w: ordinal %q is not padded to width %d", ErrInvalidName, padded, len(totalStr))
	}

	head, ok = strings.CutSuffix(head, checksumEnd)
	if !ok {
		return Name{}, fmt.Errorf("%w: %q has no %s marker", ErrInvalidName, s, checksumEnd)
	}
	original, checksum, ok := cutLast(head, binaryMarker+checksumStart)
	if !ok {
		return Name{}, fmt.Errorf("%w: %q has no checksum section", ErrInvalidName, s)
	}
	if !isLowerHex(checksum) {
		return Name{}, fmt.Errorf("%w: checksum %q is not lowercase hex", ErrInvalidName, checksum)
	}

	return NewName(original, checksum, ordinal, total)
}

func cutLast(s, sep string) (string, string, bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func parseDecimal(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("unexpected character %q", r)
		}
	}
	return strconv.Atoi(s)
}

func isLowerHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
