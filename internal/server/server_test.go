package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"google.golang.org/grpc/metadata"

	executor "github.com/hanpama/fedgraph/internal/executor"
	products "github.com/hanpama/fedgraph/internal/products"
	reqid "github.com/hanpama/fedgraph/internal/reqid"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

func newTestHandler(t *testing.T, rt executor.Runtime, opts ...Option) *Handler {
	t.Helper()
	sdl := `type Query { hello: String }`
	sch, err := schema.BuildFromSDL(sdl)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	h, err := New(rt, sch, opts...)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return h
}

func TestForwardedHeaders(t *testing.T) {
	rt := executor.NewMockRuntime(nil)
	var captured metadata.MD
	rt.SetResolver("Query", "hello", func(ctx context.Context, src any, args map[string]any) (any, error) {
		captured, _ = metadata.FromOutgoingContext(ctx)
		return "world", nil
	})
	h := newTestHandler(t, rt, WithMetadataHeaders("X-Test"))

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test", "abc")
	req.Header.Set("X-Other", "nope")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if captured == nil || captured.Get("x-test")[0] != "abc" || len(captured.Get("x-other")) > 0 {
		t.Fatalf("metadata not propagated correctly: %v", captured)
	}
}

func TestForwardedHeadersDefaultEmpty(t *testing.T) {
	rt := executor.NewMockRuntime(nil)
	var captured metadata.MD
	rt.SetResolver("Query", "hello", func(ctx context.Context, src any, args map[string]any) (any, error) {
		captured, _ = metadata.FromOutgoingContext(ctx)
		return "world", nil
	})
	h := newTestHandler(t, rt)

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test", "abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if captured != nil && len(captured.Get("x-test")) > 0 {
		t.Fatalf("header should not be forwarded by default: %v", captured)
	}
}

func TestCORSAndPreflight(t *testing.T) {
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.hello": executor.NewMockValueResolver("world"),
	})
	h := newTestHandler(t, rt, WithCORS("*"))

	// simple request
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}

	// preflight
	pre := httptest.NewRequest("OPTIONS", "/", nil)
	pre.Header.Set("Origin", "http://example.com")
	pre.Header.Set("Access-Control-Request-Headers", "X-Test")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, pre)
	if pw.Code != http.StatusNoContent {
		t.Fatalf("preflight status %d", pw.Code)
	}
	if pw.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight missing CORS header")
	}
	if pw.Header().Get("Access-Control-Allow-Headers") != "X-Test" {
		t.Fatalf("preflight missing allow headers")
	}
}

func TestMaxBodyBytes(t *testing.T) {
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.hello": executor.NewMockValueResolver("world"),
	})
	h := newTestHandler(t, rt, WithMaxBodyBytes(10))

	body := bytes.NewBufferString(`{"query":"1234567890"}`)
	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	rt := executor.NewMockRuntime(nil)
	var capturedMD metadata.MD
	var capturedID int64
	rt.SetResolver("Query", "hello", func(ctx context.Context, src any, args map[string]any) (any, error) {
		capturedMD, _ = metadata.FromOutgoingContext(ctx)
		capturedID, _ = reqid.FromContext(ctx)
		return "world", nil
	})
	h := newTestHandler(t, rt)

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if capturedID == 0 {
		t.Fatalf("missing request id in context")
	}
	if got := capturedMD.Get("graphql-request-id"); len(got) == 0 || got[0] != strconv.FormatInt(capturedID, 10) {
		t.Fatalf("metadata mismatch: %v id %d", capturedMD, capturedID)
	}
}

func TestGraphiQLServed(t *testing.T) {
	rt := executor.NewMockRuntime(nil)
	h := newTestHandler(t, rt, WithGraphiQL(true))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type %q", ct)
	}
	if !strings.Contains(w.Body.String(), "GraphiQL") {
		t.Fatalf("unexpected body")
	}
}

func newProductsHandler(t *testing.T) *Handler {
	t.Helper()
	sg, err := products.New()
	if err != nil {
		t.Fatalf("subgraph: %v", err)
	}
	h, err := New(sg.Runtime, sg.Schema)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return h
}

func postJSON(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestServeServiceSDL(t *testing.T) {
	h := newProductsHandler(t)
	w := postJSON(t, h, `{"query":"{ _service { sdl } }"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var out struct {
		Data struct {
			Service struct {
				SDL string `json:"sdl"`
			} `json:"_service"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Data.Service.SDL != products.SDL {
		t.Fatalf("unexpected sdl: %q", out.Data.Service.SDL)
	}
}

func TestServeEntitiesRequest(t *testing.T) {
	h := newProductsHandler(t)
	body := `{
		"query": "query ($reps: [_Any!]!) { _entities(representations: $reps) { ... on Product { sku } ... on User { name } } }",
		"variables": {"reps": [
			{"__typename": "Product", "id": "apollo-federation"},
			{"__typename": "Unknown", "id": "1"},
			{"__typename": "User", "email": "support@apollographql.com"}
		]}
	}`
	w := postJSON(t, h, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}

	var out struct {
		Data struct {
			Entities []map[string]any `json:"_entities"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
			Path    []any  `json:"path"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Data.Entities) != 3 {
		t.Fatalf("entities = %v", out.Data.Entities)
	}
	if out.Data.Entities[0]["sku"] != "federation" {
		t.Fatalf("slot 0 = %v", out.Data.Entities[0])
	}
	if out.Data.Entities[1] != nil {
		t.Fatalf("slot 1 should be null, got %v", out.Data.Entities[1])
	}
	if out.Data.Entities[2]["name"] != "Jane Smith" {
		t.Fatalf("slot 2 = %v", out.Data.Entities[2])
	}
	if len(out.Errors) != 1 || !strings.Contains(out.Errors[0].Message, "unknown entity type") {
		t.Fatalf("errors = %v", out.Errors)
	}
	// JSON numbers decode as float64
	if got := out.Errors[0].Path; len(got) != 2 || got[0] != "_entities" || got[1] != float64(1) {
		t.Fatalf("error path = %v", got)
	}
}

func TestServeBatchRequest(t *testing.T) {
	h := newProductsHandler(t)
	w := postJSON(t, h, `[{"query":"{ _service { sdl } }"},{"query":"{ product(id: \"apollo-studio\") { sku } }"}]`)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var out []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("batch size = %d", len(out))
	}
}
