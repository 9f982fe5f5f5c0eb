package http_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	handler "github.com/samirrijal/territorymap/internal/adapters/http"
)

// findOpenAPISpec locates the openapi.yaml file by walking up from the test directory.
func findOpenAPISpec(t *testing.T) string {
	// Start from the current working directory or test file location
	dir, _ := os.Getwd()

	// Look for api/openapi.yaml by going up directories
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		dir = filepath.Dir(dir)
	}

	t.Fatalf("could not find api/openapi.yaml")
	return ""
}

// TestOpenAPISpec validates the OpenAPI specification is valid.
func TestOpenAPISpec(t *testing.T) {
	// Load the spec file
	specPath := findOpenAPISpec(t)
	data, err := os.ReadFile(specPath)
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	// Parse YAML spec
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}

	// Validate the spec
	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	// Check that key paths exist
	expectedPaths := []string{
		"/v1/health",
		"/v1/ready",
		"/v1/scene",
		"/v1/scene/summary",
		"/v1/scene/reload",
		"/v1/layers",
		"/v1/layers/{role}",
		"/v1/features",
		"/v1/features/{key}",
		"/v1/hit",
		"/v1/project",
		"/v1/catalog",
		"/v1/catalog/{id}",
		"/v1/sessions",
		"/v1/sessions/{id}",
		"/v1/sessions/{id}/select",
		"/v1/sessions/{id}/close",
		"/v1/sessions/{id}/locate",
		"/v1/sessions/{id}/marker",
		"/v1/render",
		"/v1/render/{format}",
		"/graphql",
	}

	for _, path := range expectedPaths {
		if item := spec.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found in spec", path)
		}
	}

	// Verify key schemas exist
	expectedSchemas := []string{
		"Scene",
		"SceneSummary",
		"Layer",
		"RenderedFeature",
		"BoundingBox",
		"CatalogRecord",
		"DetailView",
		"SelectionState",
		"LocateResult",
		"Notice",
		"APIError",
		"Pagination",
	}

	for _, schema := range expectedSchemas {
		if spec.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	t.Logf("OpenAPI spec valid: %d paths, %d schemas", len(spec.Paths.Map()), len(spec.Components.Schemas))
}

// TestOpenAPIInfo verifies spec metadata.
func TestOpenAPIInfo(t *testing.T) {
	specPath := findOpenAPISpec(t)
	data, err := os.ReadFile(specPath)
	if err != nil {
		t.Fatalf("failed to read openapi.yaml: %v", err)
	}

	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}

	if spec.Info.Title != "Territory Map API" {
		t.Errorf("expected title 'Territory Map API', got %q", spec.Info.Title)
	}

	if spec.Info.Version != handler.APIVersion {
		t.Errorf("expected version %s, got %q", handler.APIVersion, spec.Info.Version)
	}

	if spec.Info.Description == "" {
		t.Error("expected non-empty description")
	}

	if len(spec.Servers) == 0 {
		t.Error("expected at least one server")
	}

	t.Logf("OpenAPI Info: %s v%s @ %s", spec.Info.Title, spec.Info.Version, spec.Servers[0].URL)
}

// TestDocs_ServesSpec checks that /docs/openapi.yaml serves the checked-in file.
func TestDocs_ServesSpec(t *testing.T) {
	specPath := findOpenAPISpec(t)
	prev := handler.OpenAPIPath
	handler.OpenAPIPath = specPath
	t.Cleanup(func() { handler.OpenAPIPath = prev })

	app := setupApp(makeDeps(fixtureSource()))
	req := httptest.NewRequest("GET", "/docs/openapi.yaml", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(readBody(t, resp.Body)), "Territory Map API") {
		t.Error("expected the spec document")
	}
}

func TestDocs_ServesJSON(t *testing.T) {
	specPath := findOpenAPISpec(t)
	prev := handler.OpenAPIPath
	handler.OpenAPIPath = specPath
	t.Cleanup(func() { handler.OpenAPIPath = prev })

	app := setupApp(makeDeps(fixtureSource()))
	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	if code := doJSON(t, app, "GET", "/docs/openapi.json", "", &doc); code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if doc.OpenAPI != "3.0.3" || doc.Info.Title != "Territory Map API" {
		t.Errorf("unexpected document header %+v", doc)
	}
	if _, ok := doc.Paths["/v1/scene"]; !ok {
		t.Error("expected /v1/scene in paths")
	}
}
