package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/splitmerge"
	"github.com/helixml/splitmerge/application/service"
	"github.com/helixml/splitmerge/domain/fragment"
	"github.com/helixml/splitmerge/infrastructure/api/jsonapi"
	"github.com/helixml/splitmerge/infrastructure/api/middleware"
	"github.com/helixml/splitmerge/infrastructure/api/v1/dto"
)

// MergesRouter handles merge API endpoints.
type MergesRouter struct {
	client     *splitmerge.Client
	serializer *jsonapi.Serializer
	logger     *slog.Logger
}

// NewMergesRouter creates a new MergesRouter.
func NewMergesRouter(client *splitmerge.Client) *MergesRouter {
	return &MergesRouter{
		client:     client,
		serializer: jsonapi.NewSerializer(),
		logger:     client.Logger(),
	}
}

// Routes returns the chi router for merge endpoints.
func (r *MergesRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", r.Create)
	return router
}

// Create handles POST /api/v1/merges.
//
// A merge that fails verification answers 422 and leaves the destination
// file in place.
func (r *MergesRouter) Create(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var body dto.MergeCreateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid request body", err), r.logger)
		return
	}
	if body.Data.Type != "" && body.Data.Type != jsonapi.TypeMerge {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "data.type must be "+jsonapi.TypeMerge, nil), r.logger)
		return
	}
	attrs := body.Data.Attributes

	var (
		result fragment.MergeResult
		err    error
	)
	switch {
	case attrs.SplitID != nil && len(attrs.Fragments) > 0:
		err = fragment.NewValidationError("fragments", "cannot be combined with split_id", nil)
	case attrs.SplitID != nil:
		result, err = r.client.MergeSplit(ctx, *attrs.SplitID, attrs.Destination, attrs.DeleteFragments)
	default:
		result, err = r.client.Merge(ctx, service.MergeParams{
			FragmentDir:      attrs.FragmentDir,
			Paths:            attrs.Fragments,
			ExpectedChecksum: attrs.ExpectedChecksum,
			Destination:      attrs.Destination,
			DeleteFragments:  attrs.DeleteFragments,
			UseManifest:      attrs.UseManifest,
		})
	}
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, jsonapi.NewSingleResponse(r.serializer.MergeResource(result)))
}
