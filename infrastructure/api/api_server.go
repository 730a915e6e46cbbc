package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/splitmerge"
	apimiddleware "github.com/helixml/splitmerge/infrastructure/api/middleware"
	v1 "github.com/helixml/splitmerge/infrastructure/api/v1"
	mcpinternal "github.com/helixml/splitmerge/internal/mcp"
)

// APIServer provides an HTTP API backed by a splitmerge Client.
type APIServer struct {
	client       *splitmerge.Client
	apiKeys      []string
	version      string
	server       *Server
	router       chi.Router
	routerCalled bool
	logger       *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given Client.
// apiKeys configures write-protection: mutating endpoints on /api/v1/splits
// and /api/v1/merges require a valid key. Reads, MCP, docs and the health
// check remain open.
func NewAPIServer(client *splitmerge.Client, apiKeys []string) *APIServer {
	return &APIServer{
		client:  client,
		apiKeys: apiKeys,
		version: "dev",
		logger:  client.Logger(),
	}
}

// WithVersion sets the version reported by the MCP server and /healthz.
func (a *APIServer) WithVersion(version string) *APIServer {
	if version != "" {
		a.version = version
	}
	return a
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	splitsRouter := v1.NewSplitsRouter(c)
	mergesRouter := v1.NewMergesRouter(c)

	router.Get("/healthz", a.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))
		r.Use(apimiddleware.WriteProtectAuth(a.apiKeys))

		r.Mount("/splits", splitsRouter.Routes())
		r.Mount("/merges", mergesRouter.Routes())
	})

	// MCP streams responses and keeps its session in response headers, so it
	// sits outside the Timeout group.
	var splits mcpinternal.SplitLister
	if c.Catalog != nil {
		splits = c.Catalog
	}
	mcpSrv := mcpinternal.NewServer(c, c, splits, c.ChunkSize(), a.version, a.logger)
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Catalog bool   `json:"catalog"`
}

func (a *APIServer) health(w http.ResponseWriter, _ *http.Request) {
	if a.client.Closed() {
		apimiddleware.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "closed", Version: a.version})
		return
	}
	apimiddleware.WriteJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Version: a.version,
		Catalog: a.client.Catalog != nil,
	})
}

// DocsRouter returns a router for Swagger UI and OpenAPI spec.
func (a *APIServer) DocsRouter(specURL string) *DocsRouter {
	return NewDocsRouter(specURL)
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = &server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
