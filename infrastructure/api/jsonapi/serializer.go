package jsonapi

import (
	"strconv"

	"github.com/helixml/splitmerge/domain/catalog"
	"github.com/helixml/splitmerge/domain/fragment"
)

// Resource type names.
const (
	TypeSplit       = "split"
	TypeSplitResult = "split-result"
	TypeMerge       = "merge"
	TypeFragment    = "fragment"
)

// SplitAttributes are the attributes of a catalogued split.
type SplitAttributes struct {
	SourcePath  string   `json:"source_path"`
	SourceName  string   `json:"source_name"`
	SourceSize  int64    `json:"source_size"`
	ChunkSize   int64    `json:"chunk_size"`
	Checksum    string   `json:"checksum"`
	Total       int      `json:"total"`
	FragmentDir string   `json:"fragment_dir"`
	CreatedAt   DateTime `json:"created_at"`
	MergedAt    DateTime `json:"merged_at"`
	MergedTo    string   `json:"merged_to,omitempty"`
}

// FragmentAttributes are the attributes of one written fragment.
type FragmentAttributes struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`
	Total   int    `json:"total"`
	Size    int64  `json:"size"`
}

// SplitResultAttributes are the attributes of a completed split request.
type SplitResultAttributes struct {
	Status    fragment.Status      `json:"status"`
	Checksum  string               `json:"checksum"`
	SplitID   *int64               `json:"split_id,omitempty"`
	Fragments []FragmentAttributes `json:"fragments"`
}

// MergeAttributes are the attributes of a completed merge request.
type MergeAttributes struct {
	Status      fragment.Status `json:"status"`
	Destination string          `json:"destination"`
}

// Serializer converts domain values to JSON:API resources.
type Serializer struct{}

// NewSerializer creates a Serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// SplitResource converts a catalog entry.
func (s *Serializer) SplitResource(e catalog.Entry) *Resource {
	r := NewResource(TypeSplit, strconv.FormatInt(e.ID(), 10), SplitAttributes{
		SourcePath:  e.SourcePath(),
		SourceName:  e.SourceName(),
		SourceSize:  e.SourceSize(),
		ChunkSize:   e.ChunkSize(),
		Checksum:    e.Checksum(),
		Total:       e.Total(),
		FragmentDir: e.FragmentDir(),
		CreatedAt:   DateTime(e.CreatedAt()),
		MergedAt:    DateTime(e.MergedAt()),
		MergedTo:    e.MergedTo(),
	})
	r.Links = &Links{Self: "/api/v1/splits/" + r.ID}
	return r
}

// SplitResources converts catalog entries.
func (s *Serializer) SplitResources(entries []catalog.Entry) []*Resource {
	out := make([]*Resource, len(entries))
	for i, e := range entries {
		out[i] = s.SplitResource(e)
	}
	return out
}

// SplitResultResource converts the result of a split. The resource ID is the
// catalog ID when the split was recorded, and the checksum otherwise.
func (s *Serializer) SplitResultResource(result fragment.SplitResult, recorded *catalog.Entry) *Resource {
	frags := result.Fragments()
	attrs := SplitResultAttributes{
		Status:    result.Status(),
		Checksum:  result.Checksum(),
		Fragments: make([]FragmentAttributes, len(frags)),
	}
	for i, f := range frags {
		attrs.Fragments[i] = FragmentAttributes{
			Path:    f.Path(),
			Name:    f.FileName(),
			Ordinal: f.Ordinal(),
			Total:   f.Total(),
			Size:    f.Size(),
		}
	}

	id := result.Checksum()
	var links *Links
	if recorded != nil {
		splitID := recorded.ID()
		attrs.SplitID = &splitID
		id = strconv.FormatInt(splitID, 10)
		links = &Links{Self: "/api/v1/splits/" + id}
	}
	r := NewResource(TypeSplitResult, id, attrs)
	r.Links = links
	return r
}

// MergeResource converts the result of a merge.
func (s *Serializer) MergeResource(result fragment.MergeResult) *Resource {
	return NewResource(TypeMerge, result.Destination(), MergeAttributes{
		Status:      result.Status(),
		Destination: result.Destination(),
	})
}
