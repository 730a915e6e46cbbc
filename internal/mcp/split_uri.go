package mcp

import (
	"fmt"
	"strconv"
	"strings"
)

const splitURIPrefix = "splitmerge://splits/"

// SplitURITemplate is the resource template for catalogued splits.
const SplitURITemplate = splitURIPrefix + "{id}"

// SplitURI identifies a catalogued split as an MCP resource.
// Immutable value object.
type SplitURI struct {
	id int64
}

// NewSplitURI creates a SplitURI for the split with the given ID.
func NewSplitURI(id int64) SplitURI {
	return SplitURI{id: id}
}

// ParseSplitURI parses splitmerge://splits/{id}.
func ParseSplitURI(s string) (SplitURI, error) {
	rest, ok := strings.CutPrefix(s, splitURIPrefix)
	if !ok {
		return SplitURI{}, fmt.Errorf("not a split uri: %s", s)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return SplitURI{}, fmt.Errorf("invalid split id in %s", s)
	}
	return SplitURI{id: id}, nil
}

// ID returns the split ID.
func (u SplitURI) ID() int64 { return u.id }

// String builds the URI string.
func (u SplitURI) String() string {
	return splitURIPrefix + strconv.FormatInt(u.id, 10)
}
