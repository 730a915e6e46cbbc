package checksum

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/splitmerge/domain/fragment"
)

func TestSHA256_KnownVectors(t *testing.T) {
	empty, err := SHA256(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", empty)

	abc, err := SHA256(strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", abc)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestSHA256_ReadError(t *testing.T) {
	_, err := SHA256(failingReader{})
	assert.EqualError(t, err, "disk on fire")
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	sum, err := File(path, SHA256)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)
}

func TestFile_Missing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing"), SHA256)
	assert.ErrorIs(t, err, fragment.ErrTransfer)
}

func TestFile_HasherError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	_, err := File(path, func(io.Reader) (string, error) { return "", errors.New("nope") })
	assert.ErrorIs(t, err, fragment.ErrTransfer)
}

func TestSection_HashesPrefixOnly(t *testing.T) {
	r := bytes.NewReader([]byte("abcdef"))

	sum, err := Section(r, 3, SHA256)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)
}
