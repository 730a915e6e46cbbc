// Package v1 provides the v1 API routes.
package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/splitmerge"
	"github.com/helixml/splitmerge/application/service"
	"github.com/helixml/splitmerge/domain/catalog"
	"github.com/helixml/splitmerge/domain/repository"
	"github.com/helixml/splitmerge/infrastructure/api/jsonapi"
	"github.com/helixml/splitmerge/infrastructure/api/middleware"
	"github.com/helixml/splitmerge/infrastructure/api/v1/dto"
)

// SplitsRouter handles split API endpoints.
type SplitsRouter struct {
	client     *splitmerge.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewSplitsRouter creates a new SplitsRouter.
func NewSplitsRouter(client *splitmerge.Client) *SplitsRouter {
	return &SplitsRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for split endpoints.
func (r *SplitsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Create)
	router.Get("/{id}", r.Get)
	router.Delete("/{id}", r.Delete)

	return router
}

// List handles GET /api/v1/splits.
//
// Supports page, page_size, checksum and source_name query parameters.
func (r *SplitsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	if r.client.Catalog == nil {
		middleware.WriteError(w, req, service.ErrCatalogDisabled, r.logger)
		return
	}

	var filters []repository.Option
	if checksum := req.URL.Query().Get("checksum"); checksum != "" {
		filters = append(filters, catalog.WithChecksum(checksum))
	}
	if name := req.URL.Query().Get("source_name"); name != "" {
		filters = append(filters, catalog.WithSourceName(name))
	}

	pagination := ParsePagination(req)
	options := append(append([]repository.Option{catalog.Newest()}, filters...), pagination.Options()...)

	entries, err := r.client.Catalog.Find(ctx, options...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	total, err := r.client.Catalog.Count(ctx, filters...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.SplitListResponse{
		Data:  r.serializer.SplitResources(entries),
		Meta:  PaginationMeta(pagination, total),
		Links: PaginationLinks(req, pagination, total),
	})
}

// Create handles POST /api/v1/splits.
func (r *SplitsRouter) Create(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.SplitCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err), r.logger)
		return
	}
	if body.Data.Type != "" && body.Data.Type != jsonapi.TypeSplit {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "data.type must be "+jsonapi.TypeSplit, nil), r.logger)
		return
	}

	attrs := body.Data.Attributes
	chunkSize := r.client.ChunkSize()
	if attrs.ChunkSize != nil {
		chunkSize = *attrs.ChunkSize
	}

	result, err := r.client.Split(ctx, service.SplitParams{
		Source:    attrs.Source,
		ChunkSize: chunkSize,
		TargetDir: attrs.TargetDir,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var recorded *catalog.Entry
	if r.client.Catalog != nil {
		if dir, err := filepath.Abs(attrs.TargetDir); err == nil {
			if entry, err := r.client.Catalog.Get(ctx, catalog.WithFragmentDir(dir)); err == nil {
				recorded = &entry
			}
		}
	}

	middleware.WriteJSON(w, http.StatusCreated, jsonapi.NewSingleResponse(r.serializer.SplitResultResource(result, recorded)))
}

// Get handles GET /api/v1/splits/{id}.
func (r *SplitsRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := splitID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if r.client.Catalog == nil {
		middleware.WriteError(w, req, service.ErrCatalogDisabled, r.logger)
		return
	}

	entry, err := r.client.Catalog.ByID(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.SplitResource(entry)))
}

// Delete handles DELETE /api/v1/splits/{id}. Only the catalog entry is
// removed; fragments on disk are untouched.
func (r *SplitsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	id, err := splitID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if r.client.Catalog == nil {
		middleware.WriteError(w, req, service.ErrCatalogDisabled, r.logger)
		return
	}

	if err := r.client.Catalog.Delete(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func splitID(req *http.Request) (int64, error) {
	idStr := chi.URLParam(req, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, middleware.NewAPIError(http.StatusBadRequest, "invalid split id: "+idStr, err)
	}
	if id <= 0 {
		return 0, middleware.NewAPIError(http.StatusBadRequest, "invalid split id: "+idStr, errors.New("must be positive"))
	}
	return id, nil
}
