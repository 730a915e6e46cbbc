package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/helixml/splitmerge/application/service"
	"github.com/helixml/splitmerge/domain/catalog"
	"github.com/helixml/splitmerge/domain/fragment"
	"github.com/helixml/splitmerge/infrastructure/api/jsonapi"
)

// StatusFor maps an error to its HTTP status and a short title.
func StatusFor(err error) (int, string) {
	var apiErr *APIError
	var serverErr *ServerError

	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code(), "API Error"
	case errors.As(err, &serverErr):
		return serverErr.StatusCode(), "Server Error"
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized, "Authentication Failed"
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, "Not Found"
	case errors.Is(err, service.ErrCatalogDisabled):
		return http.StatusNotImplemented, "Catalog Disabled"
	}

	switch fragment.KindOf(err) {
	case fragment.KindValidation:
		return http.StatusBadRequest, "Validation Error"
	case fragment.KindIntegrity:
		return http.StatusUnprocessableEntity, "Integrity Error"
	case fragment.KindTransfer:
		return http.StatusInternalServerError, "Transfer Error"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// WriteError writes a JSON:API formatted error response.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, title := StatusFor(err)

	detail := err.Error()
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		detail = apiErr.Message()
	}
	var serverErr *ServerError
	if errors.As(err, &serverErr) {
		detail = serverErr.Message()
	}

	correlationID := GetCorrelationID(r.Context())

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request error",
			slog.String("correlation_id", correlationID),
			slog.Int("status", status),
			slog.String("kind", fragment.KindOf(err).String()),
			slog.Any("error", err),
			slog.String("path", r.URL.Path),
		)
	}

	e := jsonapi.NewError(http.StatusText(status), title, detail)
	e.ID = correlationID
	if k := fragment.KindOf(err); k != fragment.KindUnknown {
		e.Code = k.String()
	}

	w.Header().Set("Content-Type", jsonapi.MediaType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonapi.NewErrorResponse(e))
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
