package scope

import "testing"

const minimalOpenAPIDoc = `{
  "openapi": "3.0.0",
  "info": {"title": "widgets", "version": "1.0.0"},
  "paths": {
    "/widgets": {
      "get": {"responses": {"200": {"description": "ok"}}}
    },
    "/widgets/{id}": {
      "get": {"responses": {"200": {"description": "ok"}}}
    }
  }
}`

func TestAllowPatternsFromOpenAPI_DerivesOnePatternPerPath(t *testing.T) {
	patterns, err := AllowPatternsFromOpenAPI([]byte(minimalOpenAPIDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d: %v", len(patterns), patterns)
	}
}

func TestAllowPatternsFromOpenAPI_LoosensPathParams(t *testing.T) {
	patterns, err := AllowPatternsFromOpenAPI([]byte(minimalOpenAPIDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := NewFilter("example.com", Config{AllowPatterns: patterns})
	if !f.Check("https://example.com/widgets/42").Allowed {
		t.Error("expected /widgets/{id} pattern to match a concrete id")
	}
	if !f.Check("https://example.com/widgets").Allowed {
		t.Error("expected /widgets pattern to match its own path")
	}
	if f.Check("https://example.com/other").Allowed {
		t.Error("expected an undeclared path to be denied")
	}
}

func TestAllowPatternsFromOpenAPI_InvalidDocument(t *testing.T) {
	if _, err := AllowPatternsFromOpenAPI([]byte("not json")); err == nil {
		t.Fatal("expected an error for an invalid OpenAPI document")
	}
}
