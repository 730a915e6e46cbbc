package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewManifest_FromFragments(t *testing.T) {
	frags := []Fragment{
		NewFragment("/out/f.binary-Checksum-ab-ChecksumEnd.splitPart1_2", 1, 2, 1024, "ab"),
		NewFragment("/out/f.binary-Checksum-ab-ChecksumEnd.splitPart2_2", 2, 2, 10, "ab"),
	}
	m := NewManifest("f", 1034, 1024, "ab", frags)

	assert.Equal(t, 2, m.Total())
	assert.Equal(t, ManifestEntry{Ordinal: 1, Name: "f.binary-Checksum-ab-ChecksumEnd.splitPart1_2", Size: 1024}, m.Entries()[0])
	assert.NoError(t, m.Validate())
}

func TestManifest_ValidateEmpty(t *testing.T) {
	m := ReconstructManifest("empty", 0, 1024, "e3b0", nil)
	assert.NoError(t, m.Validate())
}

func TestManifest_ValidateRejects(t *testing.T) {
	cases := map[string]Manifest{
		"missing checksum": ReconstructManifest("f", 1, 1, "", []ManifestEntry{{Ordinal: 1, Name: "x", Size: 1}}),
		"gap in ordinals":  ReconstructManifest("f", 2, 1, "ab", []ManifestEntry{{Ordinal: 1, Name: "x", Size: 1}, {Ordinal: 3, Name: "y", Size: 1}}),
		"missing name":     ReconstructManifest("f", 1, 1, "ab", []ManifestEntry{{Ordinal: 1, Size: 1}}),
		"empty fragment":   ReconstructManifest("f", 0, 1, "ab", []ManifestEntry{{Ordinal: 1, Name: "x", Size: 0}}),
		"size mismatch":    ReconstructManifest("f", 5, 1, "ab", []ManifestEntry{{Ordinal: 1, Name: "x", Size: 1}}),
		"parent escape":    ReconstructManifest("f", 1, 1, "ab", []ManifestEntry{{Ordinal: 1, Name: "../../x", Size: 1}}),
		"absolute name":    ReconstructManifest("f", 1, 1, "ab", []ManifestEntry{{Ordinal: 1, Name: "/etc/x", Size: 1}}),
		"backslash":        ReconstructManifest("f", 1, 1, "ab", []ManifestEntry{{Ordinal: 1, Name: `..\x`, Size: 1}}),
		"dot dot":          ReconstructManifest("f", 1, 1, "ab", []ManifestEntry{{Ordinal: 1, Name: "..", Size: 1}}),
	}
	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, m.Validate(), ErrValidation)
		})
	}
}
