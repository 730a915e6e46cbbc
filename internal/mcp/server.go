// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/splitmerge/application/service"
	"github.com/helixml/splitmerge/domain/catalog"
	"github.com/helixml/splitmerge/domain/fragment"
	"github.com/helixml/splitmerge/domain/repository"
)

// Splitter splits files for MCP tools.
type Splitter interface {
	Split(ctx context.Context, params service.SplitParams) (fragment.SplitResult, error)
}

// Merger merges fragments for MCP tools.
type Merger interface {
	Merge(ctx context.Context, params service.MergeParams) (fragment.MergeResult, error)
}

// SplitLister provides catalog lookups for MCP tools and resources.
type SplitLister interface {
	Find(ctx context.Context, options ...repository.Option) ([]catalog.Entry, error)
	Get(ctx context.Context, options ...repository.Option) (catalog.Entry, error)
}

// Server wraps the MCP server with split and merge tools.
type Server struct {
	mcpServer        *server.MCPServer
	splitter         Splitter
	merger           Merger
	splits           SplitLister
	defaultChunkSize int64
	version          string
	logger           *slog.Logger
}

// NewServer creates a new MCP server. splits may be nil when the catalog is
// disabled; list_splits and split resources then report an error.
func NewServer(splitter Splitter, merger Merger, splits SplitLister, defaultChunkSize int64, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		splitter:         splitter,
		merger:           merger,
		splits:           splits,
		defaultChunkSize: defaultChunkSize,
		version:          version,
		logger:           logger,
	}

	mcpServer := server.NewMCPServer(
		"splitmerge",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(mcp.NewTool("split_file",
		mcp.WithDescription("Split a file into ordered fragments whose names carry the file checksum"),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Path of the file to split"),
		),
		mcp.WithString("target_dir",
			mcp.Required(),
			mcp.Description("Directory that receives the fragments"),
		),
		mcp.WithNumber("chunk_size",
			mcp.Description("Maximum fragment size in bytes"),
		),
	), s.handleSplit)

	mcpServer.AddTool(mcp.NewTool("merge_fragments",
		mcp.WithDescription("Concatenate the fragments in a directory and verify the result against a checksum"),
		mcp.WithString("fragment_dir",
			mcp.Required(),
			mcp.Description("Directory holding the fragments"),
		),
		mcp.WithString("destination",
			mcp.Required(),
			mcp.Description("Path of the merged file"),
		),
		mcp.WithString("expected_checksum",
			mcp.Description("Expected SHA-256 of the merged file; taken from the manifest when omitted"),
		),
		mcp.WithBoolean("delete_fragments",
			mcp.Description("Delete the fragments after a verified merge"),
		),
		mcp.WithBoolean("use_manifest",
			mcp.Description("Order fragments by the manifest when one exists"),
		),
	), s.handleMerge)

	mcpServer.AddTool(mcp.NewTool("list_splits",
		mcp.WithDescription("List recorded splits, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of splits to return (default: 20)"),
		),
	), s.handleListSplits)

	mcpServer.AddTool(mcp.NewTool("inspect_fragment",
		mcp.WithDescription("Decode a fragment file name into its original name, checksum, ordinal and total"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Fragment file name"),
		),
	), s.handleInspect)

	mcpServer.AddTool(mcp.NewTool("get_version",
		mcp.WithDescription("Get the splitmerge server version"),
	), s.handleGetVersion)
}

func (s *Server) registerResources(mcpServer *server.MCPServer) {
	mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(SplitURITemplate, "split",
			mcp.WithTemplateDescription("A recorded split"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleReadSplit,
	)
}

type fragmentResult struct {
	Path    string `json:"path"`
	Ordinal int    `json:"ordinal"`
	Total   int    `json:"total"`
	Size    int64  `json:"size"`
}

type splitResult struct {
	Status    fragment.Status  `json:"status"`
	Checksum  string           `json:"checksum"`
	Fragments []fragmentResult `json:"fragments"`
}

type mergeResult struct {
	Status      fragment.Status `json:"status"`
	Destination string          `json:"destination"`
}

type splitEntry struct {
	ID          int64      `json:"id"`
	URI         string     `json:"uri"`
	SourcePath  string     `json:"source_path"`
	SourceName  string     `json:"source_name"`
	SourceSize  int64      `json:"source_size"`
	ChunkSize   int64      `json:"chunk_size"`
	Checksum    string     `json:"checksum"`
	Total       int        `json:"total"`
	FragmentDir string     `json:"fragment_dir"`
	CreatedAt   time.Time  `json:"created_at"`
	MergedAt    *time.Time `json:"merged_at,omitempty"`
	MergedTo    string     `json:"merged_to,omitempty"`
}

type nameResult struct {
	Original string `json:"original"`
	Checksum string `json:"checksum"`
	Ordinal  int    `json:"ordinal"`
	Total    int    `json:"total"`
}

func (s *Server) handleSplit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError("source is required"), nil
	}
	target, err := request.RequireString("target_dir")
	if err != nil {
		return mcp.NewToolResultError("target_dir is required"), nil
	}
	chunk := int64(request.GetInt("chunk_size", int(s.defaultChunkSize)))

	result, err := s.splitter.Split(ctx, service.SplitParams{Source: source, ChunkSize: chunk, TargetDir: target})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("split failed (%s): %v", fragment.KindOf(err), err)), nil
	}

	frags := result.Fragments()
	out := splitResult{Status: result.Status(), Checksum: result.Checksum(), Fragments: make([]fragmentResult, len(frags))}
	for i, f := range frags {
		out.Fragments[i] = fragmentResult{Path: f.Path(), Ordinal: f.Ordinal(), Total: f.Total(), Size: f.Size()}
	}
	return jsonResult(out)
}

func (s *Server) handleMerge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := request.RequireString("fragment_dir")
	if err != nil {
		return mcp.NewToolResultError("fragment_dir is required"), nil
	}
	dest, err := request.RequireString("destination")
	if err != nil {
		return mcp.NewToolResultError("destination is required"), nil
	}

	result, err := s.merger.Merge(ctx, service.MergeParams{
		FragmentDir:      dir,
		ExpectedChecksum: request.GetString("expected_checksum", ""),
		Destination:      dest,
		DeleteFragments:  request.GetBool("delete_fragments", false),
		UseManifest:      request.GetBool("use_manifest", false),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("merge failed (%s): %v", fragment.KindOf(err), err)), nil
	}
	return jsonResult(mergeResult{Status: result.Status(), Destination: result.Destination()})
}

func (s *Server) handleListSplits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.splits == nil {
		return mcp.NewToolResultError("split catalog is disabled"), nil
	}
	limit := request.GetInt("limit", 20)

	entries, err := s.splits.Find(ctx, catalog.Newest(), repository.WithLimit(limit))
	if err != nil {
		s.logger.Error("failed to list splits", slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to list splits: %v", err)), nil
	}

	out := make([]splitEntry, len(entries))
	for i, e := range entries {
		out[i] = toSplitEntry(e)
	}
	return jsonResult(out)
}

func (s *Server) handleInspect(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}
	parsed, err := fragment.ParseName(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(nameResult{
		Original: parsed.Original(),
		Checksum: parsed.Checksum(),
		Ordinal:  parsed.Ordinal(),
		Total:    parsed.Total(),
	})
}

func (s *Server) handleGetVersion(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.version), nil
}

func (s *Server) handleReadSplit(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if s.splits == nil {
		return nil, fmt.Errorf("split catalog is disabled")
	}
	uri, err := ParseSplitURI(request.Params.URI)
	if err != nil {
		return nil, err
	}
	entry, err := s.splits.Get(ctx, repository.WithID(uri.ID()))
	if err != nil {
		return nil, fmt.Errorf("get split %d: %w", uri.ID(), err)
	}
	b, err := json.Marshal(toSplitEntry(entry))
	if err != nil {
		return nil, fmt.Errorf("marshal split: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri.String(),
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

func toSplitEntry(e catalog.Entry) splitEntry {
	out := splitEntry{
		ID:          e.ID(),
		URI:         NewSplitURI(e.ID()).String(),
		SourcePath:  e.SourcePath(),
		SourceName:  e.SourceName(),
		SourceSize:  e.SourceSize(),
		ChunkSize:   e.ChunkSize(),
		Checksum:    e.Checksum(),
		Total:       e.Total(),
		FragmentDir: e.FragmentDir(),
		CreatedAt:   e.CreatedAt(),
		MergedTo:    e.MergedTo(),
	}
	if e.Merged() {
		at := e.MergedAt()
		out.MergedAt = &at
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

// MCPServer returns the underlying MCP server for stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
