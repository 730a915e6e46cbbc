package splitmerge_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/splitmerge"
	"github.com/helixml/splitmerge/application/service"
	"github.com/helixml/splitmerge/domain/catalog"
	"github.com/helixml/splitmerge/domain/fragment"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path string, size int) []byte {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 253)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return data
}

func TestClient_SplitMergeWithCatalog(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	client, err := splitmerge.New(
		splitmerge.WithSQLite(filepath.Join(dir, "db", "catalog.db")),
		splitmerge.WithLogger(quietLogger()),
		splitmerge.WithManifest(true),
		splitmerge.WithCreateTargetDir(true),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	source := filepath.Join(dir, "video.mp4")
	data := writeFile(t, source, 5000)

	split, err := client.Split(ctx, service.SplitParams{
		Source: source, ChunkSize: 2048, TargetDir: filepath.Join(dir, "frags"),
	})
	require.NoError(t, err)
	require.Len(t, split.Fragments(), 3)

	entry, err := client.Catalog.Get(ctx, catalog.WithChecksum(split.Checksum()))
	require.NoError(t, err)

	dest := filepath.Join(dir, "restored", "video.mp4")
	merged, err := client.MergeSplit(ctx, entry.ID(), dest, true)
	require.NoError(t, err)
	assert.True(t, merged.Succeeded())

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	entries, err := os.ReadDir(filepath.Join(dir, "frags"))
	require.NoError(t, err)
	assert.Empty(t, entries, "fragments and manifest removed after verified merge")

	entry, err = client.Catalog.ByID(ctx, entry.ID())
	require.NoError(t, err)
	assert.True(t, entry.Merged())
}

func TestClient_WithoutCatalog(t *testing.T) {
	ctx := context.Background()
	client, err := splitmerge.New(splitmerge.WithLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.Nil(t, client.Catalog)
	_, err = client.MergeSplit(ctx, 1, filepath.Join(t.TempDir(), "x"), false)
	assert.ErrorIs(t, err, splitmerge.ErrCatalogDisabled)
}

func TestClient_CustomHasher(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	hasher := func(r io.Reader) (string, error) {
		n, err := io.Copy(io.Discard, r)
		if n == 0 {
			return "00", err
		}
		return "ff", err
	}
	client, err := splitmerge.New(splitmerge.WithLogger(quietLogger()), splitmerge.WithHasher(hasher))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	source := filepath.Join(dir, "a.bin")
	writeFile(t, source, 10)
	frags := filepath.Join(dir, "frags")
	require.NoError(t, os.Mkdir(frags, 0o755))

	split, err := client.Split(ctx, service.SplitParams{Source: source, ChunkSize: 4, TargetDir: frags})
	require.NoError(t, err)
	assert.Equal(t, "ff", split.Checksum())

	_, err = client.Merge(ctx, service.MergeParams{
		FragmentDir: frags, ExpectedChecksum: "ff", Destination: filepath.Join(dir, "out.bin"),
	})
	require.NoError(t, err)
}

func TestClient_SplitAll(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	client, err := splitmerge.New(splitmerge.WithLogger(quietLogger()), splitmerge.WithWorkerCount(3))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sources := make([]string, 5)
	for i := range sources {
		sources[i] = filepath.Join(dir, "src", string(rune('a'+i))+".bin")
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "src"), 0o755))
	for i, s := range sources {
		writeFile(t, s, 100*(i+1))
	}
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0o755))

	results, err := client.SplitAll(ctx, sources, 64, out)
	require.NoError(t, err)
	require.Len(t, results, 5)
	for i, r := range results {
		assert.True(t, r.Succeeded())
		total := (100*(i+1) + 63) / 64
		assert.Len(t, r.Fragments(), total)
		entries, err := os.ReadDir(filepath.Join(out, filepath.Base(sources[i])))
		require.NoError(t, err)
		assert.Len(t, entries, total)
	}
}

func TestClient_SplitAllReportsFirstFailureInOrder(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	client, err := splitmerge.New(splitmerge.WithLogger(quietLogger()), splitmerge.WithWorkerCount(2))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	good := filepath.Join(dir, "good.bin")
	writeFile(t, good, 10)
	missing := filepath.Join(dir, "missing.bin")
	out := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(out, 0o755))

	results, err := client.SplitAll(ctx, []string{good, missing}, 4, out)
	assert.ErrorIs(t, err, fragment.ErrValidation)
	require.Len(t, results, 2)
	assert.True(t, results[0].Succeeded())
	assert.False(t, results[1].Succeeded())
}

func TestClient_SplitAllRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	client, err := splitmerge.New(splitmerge.WithLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	_, err = client.SplitAll(context.Background(),
		[]string{filepath.Join(dir, "a", "x.bin"), filepath.Join(dir, "b", "x.bin")}, 4, dir)
	assert.ErrorIs(t, err, fragment.ErrValidation)
}

func TestClient_Close(t *testing.T) {
	client, err := splitmerge.New(splitmerge.WithLogger(quietLogger()))
	require.NoError(t, err)

	require.NoError(t, client.Close())
	assert.True(t, client.Closed())
	assert.ErrorIs(t, client.Close(), splitmerge.ErrClientClosed)

	_, err = client.Split(context.Background(), service.SplitParams{})
	assert.ErrorIs(t, err, splitmerge.ErrClientClosed)
	_, err = client.Merge(context.Background(), service.MergeParams{})
	assert.ErrorIs(t, err, splitmerge.ErrClientClosed)
}
