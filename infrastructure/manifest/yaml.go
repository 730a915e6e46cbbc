// Package manifest stores split manifests as YAML sidecar files.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/helixml/splitmerge/domain/fragment"
	"github.com/helixml/splitmerge/infrastructure/filesystem"
)

const formatVersion = 1

type document struct {
	Version    int       `yaml:"version"`
	SourceName string    `yaml:"source_name"`
	SourceSize int64     `yaml:"source_size"`
	ChunkSize  int64     `yaml:"chunk_size"`
	Checksum   string    `yaml:"checksum"`
	Total      int       `yaml:"total"`
	Fragments  []fragDoc `yaml:"fragments"`
}

type fragDoc struct {
	Ordinal int    `yaml:"ordinal"`
	Name    string `yaml:"name"`
	Size    int64  `yaml:"size"`
}

// YAMLStore reads and writes fragment.ManifestFileName in a fragment directory.
type YAMLStore struct{}

var _ fragment.ManifestStore = YAMLStore{}

// NewYAMLStore creates a YAMLStore.
func NewYAMLStore() YAMLStore {
	return YAMLStore{}
}

// Path returns the manifest location for dir.
func (YAMLStore) Path(dir string) string {
	return filepath.Join(dir, fragment.ManifestFileName)
}

// Write replaces the manifest in dir.
func (s YAMLStore) Write(dir string, m fragment.Manifest) error {
	doc := document{
		Version:    formatVersion,
		SourceName: m.SourceName(),
		SourceSize: m.SourceSize(),
		ChunkSize:  m.ChunkSize(),
		Checksum:   m.Checksum(),
		Total:      m.Total(),
	}
	for _, e := range m.Entries() {
		doc.Fragments = append(doc.Fragments, fragDoc(e))
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	path := s.Path(dir)
	if err := filesystem.WriteAtomic(path, data); err != nil {
		return fragment.NewTransferError("write", path, err)
	}
	return nil
}

// Read loads and validates the manifest in dir. A missing file returns
// fragment.ErrNoManifest.
func (s YAMLStore) Read(dir string) (fragment.Manifest, error) {
	path := s.Path(dir)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fragment.Manifest{}, fragment.ErrNoManifest
	}
	if err != nil {
		return fragment.Manifest{}, fragment.NewTransferError("read", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fragment.Manifest{}, fragment.NewValidationError("manifest", "cannot decode "+path, err)
	}
	if doc.Version != formatVersion {
		return fragment.Manifest{}, fragment.NewValidationError("manifest", fmt.Sprintf("unsupported version %d", doc.Version), nil)
	}
	if doc.Total != len(doc.Fragments) {
		return fragment.Manifest{}, fragment.NewValidationError("manifest", fmt.Sprintf("total %d does not match %d listed fragments", doc.Total, len(doc.Fragments)), nil)
	}

	entries := make([]fragment.ManifestEntry, len(doc.Fragments))
	for i, f := range doc.Fragments {
		entries[i] = fragment.ManifestEntry(f)
	}
	m := fragment.ReconstructManifest(doc.SourceName, doc.SourceSize, doc.ChunkSize, doc.Checksum, entries)
	if err := m.Validate(); err != nil {
		return fragment.Manifest{}, err
	}
	return m, nil
}
