package main

import (
	"math"

	"github.com/dustin/go-humanize"

	"github.com/helixml/splitmerge/domain/fragment"
)

// parseChunkSize accepts plain byte counts and humanized sizes such as
// "512KiB" or "4MB". An empty string returns fallback.
func parseChunkSize(s string, fallback int64) (int64, error) {
	if s == "" {
		return fallback, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fragment.NewValidationError("chunk size", "cannot parse "+s, err)
	}
	if n == 0 || n > math.MaxInt64 {
		return 0, fragment.NewValidationError("chunk size", "must be greater than zero", nil)
	}
	return int64(n), nil
}

func formatSize(n int64) string {
	if n < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(n))
}
