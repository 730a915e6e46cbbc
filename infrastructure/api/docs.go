// Package api provides HTTP server and API documentation.
package api

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed openapi.json
var openapiJSON []byte

// docsPage renders Swagger UI against the served OpenAPI document. Only the
// API listing is shown, so the standalone preset and its top bar are left out.
var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
window.ui = SwaggerUIBundle({url: {{.SpecURL}}, dom_id: "#swagger-ui", deepLinking: true});
</script>
</body>
</html>`))

type docsPageData struct {
	Title   string
	SpecURL string
}

// DocsRouter serves Swagger UI and the OpenAPI document.
type DocsRouter struct {
	specURL string
	title   string
}

// NewDocsRouter creates a documentation router whose page loads the
// document from specURL.
func NewDocsRouter(specURL string) *DocsRouter {
	title := "splitmerge API"
	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
	}
	if err := json.Unmarshal(openapiJSON, &doc); err == nil && doc.Info.Title != "" {
		title = doc.Info.Title
	}
	return &DocsRouter{specURL: specURL, title: title}
}

// Routes returns the chi router for documentation endpoints.
func (d *DocsRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", d.page)
	router.Get("/openapi.json", d.document)
	return router
}

func (d *DocsRouter) page(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = docsPage.Execute(w, docsPageData{Title: d.title + " documentation", SpecURL: d.specURL})
}

// document serves openapi.json with its single server entry pointing at the
// host that asked, so "Try it out" works behind proxies and on any port.
func (d *DocsRouter) document(w http.ResponseWriter, r *http.Request) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(openapiJSON, &doc); err != nil {
		http.Error(w, "openapi document is invalid", http.StatusInternalServerError)
		return
	}
	servers, err := json.Marshal([]map[string]string{{"url": requestBaseURL(r) + "/api/v1"}})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	doc["servers"] = servers

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// requestBaseURL rebuilds scheme://host of r, preferring X-Forwarded-*
// headers set by a reverse proxy.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	return scheme + "://" + host
}
