package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/helixml/splitmerge"
	"github.com/helixml/splitmerge/domain/catalog"
	"github.com/helixml/splitmerge/infrastructure/api"
	apimiddleware "github.com/helixml/splitmerge/infrastructure/api/middleware"
	"github.com/helixml/splitmerge/infrastructure/persistence"
	"github.com/helixml/splitmerge/internal/database"
)

const testAPIKey = "e2e-secret"

// TestServer wraps the full HTTP stack for e2e testing.
type TestServer struct {
	t          *testing.T
	client     *splitmerge.Client
	db         database.Database
	httpServer *httptest.Server

	// Direct catalog access for assertions.
	splitStore persistence.SplitStore
}

// NewTestServer creates a test server wired the way serve wires it: the
// server middleware stack, correlation IDs, request logging, API key
// protection and docs.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	ctx := context.Background()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	client, err := splitmerge.New(
		splitmerge.WithSQLite(dbPath),
		splitmerge.WithLogger(logger),
		splitmerge.WithManifest(true),
		splitmerge.WithChunkSize(1024),
		splitmerge.WithAPIKeys(testAPIKey),
	)
	if err != nil {
		t.Fatalf("create splitmerge client: %v", err)
	}

	// Separate handle for inspecting the catalog.
	db, err := database.NewDatabase(ctx, "sqlite:///"+dbPath)
	if err != nil {
		t.Fatalf("create database: %v", err)
	}

	apiServer := api.NewAPIServer(client, client.APIKeys()).WithVersion("e2e")
	router := apiServer.Router()
	router.Use(apimiddleware.CorrelationID)
	router.Use(apimiddleware.Logging(logger))
	apiServer.MountRoutes()
	router.Mount("/docs", apiServer.DocsRouter("/docs/openapi.json").Routes())

	server := api.NewServer(":0", logger)
	server.Router().Mount("/", router)

	ts := &TestServer{
		t:          t,
		client:     client,
		db:         db,
		httpServer: httptest.NewServer(server.Router()),
		splitStore: persistence.NewSplitStore(db),
	}

	t.Cleanup(func() {
		ts.Close()
	})

	return ts
}

// URL returns the base URL of the test server.
func (ts *TestServer) URL() string {
	return ts.httpServer.URL
}

// Close shuts down the test server.
func (ts *TestServer) Close() {
	ts.httpServer.Close()
	_ = ts.client.Close()
	_ = ts.db.Close()
}

// GET performs a GET request and returns the response.
func (ts *TestServer) GET(path string) *http.Response {
	ts.t.Helper()
	resp, err := http.Get(ts.URL() + path)
	if err != nil {
		ts.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs an authenticated POST request with a JSON body.
func (ts *TestServer) POST(path string, body any) *http.Response {
	ts.t.Helper()
	return ts.do(http.MethodPost, path, body, testAPIKey)
}

// DELETE performs an authenticated DELETE request.
func (ts *TestServer) DELETE(path string) *http.Response {
	ts.t.Helper()
	return ts.do(http.MethodDelete, path, nil, testAPIKey)
}

func (ts *TestServer) do(method, path string, body any, apiKey string) *http.Response {
	ts.t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(jsonBody)
	}
	req, err := http.NewRequest(method, ts.URL()+path, reader)
	if err != nil {
		ts.t.Fatalf("create %s request: %v", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("X-API-KEY", apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// DecodeJSON decodes the response body as JSON into v.
func (ts *TestServer) DecodeJSON(resp *http.Response, v any) {
	ts.t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		ts.t.Fatalf("decode response: %v", err)
	}
}

// ReadBody reads and returns the response body as a string.
func (ts *TestServer) ReadBody(resp *http.Response) string {
	ts.t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ts.t.Fatalf("read body: %v", err)
	}
	return string(body)
}

// Entries returns every catalog entry straight from the database.
func (ts *TestServer) Entries() []catalog.Entry {
	ts.t.Helper()
	entries, err := ts.splitStore.Find(context.Background(), catalog.Newest())
	if err != nil {
		ts.t.Fatalf("find entries: %v", err)
	}
	return entries
}

// WriteSource creates a source file of size bytes in a fresh directory.
func WriteSource(t *testing.T, name string, size int) (string, []byte) {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = byte((i*7 + 3) % 256)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path, data
}
