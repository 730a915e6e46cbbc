package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/helixml/splitmerge/domain/catalog"
	"github.com/helixml/splitmerge/domain/fragment"
)

func writeSource(t *testing.T, dir, name string, size int) (string, []byte) {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte((i*31 + 7) % 251)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path, data
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

type fakeRecorder struct {
	mu      sync.Mutex
	entries []catalog.Entry
	merges  []string
	err     error
}

func (r *fakeRecorder) Record(_ context.Context, e catalog.Entry) (catalog.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return catalog.Entry{}, r.err
	}
	e = e.WithID(int64(len(r.entries) + 1))
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *fakeRecorder) MarkMerged(_ context.Context, dir, dest string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.merges = append(r.merges, dir+"->"+dest)
	return nil
}

type failingManifestStore struct{}

func (failingManifestStore) Write(dir string, _ fragment.Manifest) error {
	return fragment.NewTransferError("write", dir, errors.New("disk full"))
}

func (failingManifestStore) Read(string) (fragment.Manifest, error) {
	return fragment.Manifest{}, fragment.ErrNoManifest
}
