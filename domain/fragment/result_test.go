package fragment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitResult_Success(t *testing.T) {
	frags := []Fragment{
		NewFragment("/out/a.binary-Checksum-ab-ChecksumEnd.splitPart1_2", 1, 2, 4, "ab"),
		NewFragment("/out/a.binary-Checksum-ab-ChecksumEnd.splitPart2_2", 2, 2, 1, "ab"),
	}
	r := NewSplitResult(frags, "ab")

	assert.True(t, r.Succeeded())
	assert.Equal(t, StatusSuccess, r.Status())
	assert.Equal(t, "ab", r.Checksum())
	assert.Equal(t, []string{frags[0].Path(), frags[1].Path()}, r.Paths())
	assert.Empty(t, r.Errors())
	assert.NoError(t, r.Err())

	frags[0] = Fragment{}
	assert.Equal(t, 1, r.Fragments()[0].Ordinal(), "result must not alias the caller's slice")
}

func TestSplitResult_Failure(t *testing.T) {
	cause := NewValidationError("chunk size", "must be greater than zero", nil)
	r := FailedSplit(cause)

	assert.False(t, r.Succeeded())
	assert.Equal(t, ChecksumUnavailable, r.Checksum())
	assert.Empty(t, r.Paths())
	assert.Equal(t, []string{cause.Error()}, r.Messages())
	assert.ErrorIs(t, r.Err(), ErrValidation)
}

func TestMergeResult(t *testing.T) {
	ok := NewMergeResult("/out/a")
	assert.True(t, ok.Succeeded())
	assert.Equal(t, "/out/a", ok.Destination())

	failed := FailedMerge(NewChecksumMismatch("/out/a", "aa", "bb"))
	assert.False(t, failed.Succeeded())
	assert.Empty(t, failed.Destination())
	assert.ErrorIs(t, failed.Err(), ErrIntegrity)
	assert.Len(t, failed.Messages(), 1)
}

func TestStatus_MarshalText(t *testing.T) {
	b, err := json.Marshal(map[string]Status{"status": StatusFailure})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"FAILURE"}`, string(b))
	assert.Equal(t, "SUCCESS", StatusSuccess.String())
}
