// Package dto holds the request and response bodies of the v1 API.
package dto

import "github.com/helixml/splitmerge/infrastructure/api/jsonapi"

// SplitCreateAttributes are the attributes of a split request.
type SplitCreateAttributes struct {
	Source    string `json:"source"`
	TargetDir string `json:"target_dir"`
	ChunkSize *int64 `json:"chunk_size,omitempty"`
}

// SplitCreateData is the data member of a split request.
type SplitCreateData struct {
	Type       string                `json:"type"`
	Attributes SplitCreateAttributes `json:"attributes"`
}

// SplitCreateRequest is the JSON:API body of POST /api/v1/splits.
type SplitCreateRequest struct {
	Data SplitCreateData `json:"data"`
}

// MergeCreateAttributes are the attributes of a merge request. With SplitID
// set, the fragment directory and checksum come from the catalog. Fragments
// lists fragment paths in merge order and replaces FragmentDir.
type MergeCreateAttributes struct {
	FragmentDir      string   `json:"fragment_dir,omitempty"`
	Fragments        []string `json:"fragments,omitempty"`
	ExpectedChecksum string   `json:"expected_checksum,omitempty"`
	Destination      string   `json:"destination"`
	DeleteFragments  bool     `json:"delete_fragments,omitempty"`
	UseManifest      bool     `json:"use_manifest,omitempty"`
	SplitID          *int64   `json:"split_id,omitempty"`
}

// MergeCreateData is the data member of a merge request.
type MergeCreateData struct {
	Type       string                `json:"type"`
	Attributes MergeCreateAttributes `json:"attributes"`
}

// MergeCreateRequest is the JSON:API body of POST /api/v1/merges.
type MergeCreateRequest struct {
	Data MergeCreateData `json:"data"`
}

// SplitListResponse is the body of GET /api/v1/splits.
type SplitListResponse struct {
	Data  []*jsonapi.Resource `json:"data"`
	Meta  *jsonapi.Meta       `json:"meta,omitempty"`
	Links *jsonapi.Links      `json:"links,omitempty"`
}
