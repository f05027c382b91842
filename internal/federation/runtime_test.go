package federation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	executor "github.com/hanpama/fedgraph/internal/executor"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

const subgraphSDL = `
	directive @key(fields: String!, resolvable: Boolean = true) repeatable on OBJECT | INTERFACE

	type Query {
		topProducts: [Product]
	}

	type Product @key(fields: "id") @key(fields: "sku package") @key(fields: "sku variation { id }") {
		id: ID!
		sku: String
		package: String
		variation: ProductVariation
		name: String
	}

	type ProductVariation {
		id: ID!
	}

	type User @key(fields: "email") {
		email: ID!
		name: String
	}
`

var productFixtures = []map[string]any{
	{
		"id":        "apollo-federation",
		"sku":       "federation",
		"package":   "@apollo/federation",
		"variation": map[string]any{"id": "OSS"},
		"name":      "Apollo Federation",
	},
	{
		"id":        "apollo-studio",
		"sku":       "studio",
		"package":   "",
		"variation": map[string]any{"id": "platform"},
		"name":      "Apollo Studio",
	},
}

func resolveProductRef(ctx context.Context, ref Reference) (any, error) {
	if id, ok := ref.KeyValues["id"].(string); ok && id == "kaboom" {
		return nil, errors.New("store unavailable")
	}
	for _, p := range productFixtures {
		if p["id"] == ref.KeyValues["id"] {
			return p, nil
		}
		if sku, ok := ref.KeyValues["sku"]; ok && sku == p["sku"] {
			if pkg, ok := ref.KeyValues["package"]; ok && pkg == p["package"] {
				return p, nil
			}
			if v, ok := ref.KeyValues["variation"].(map[string]any); ok {
				if fv := p["variation"].(map[string]any); fv["id"] == v["id"] {
					return p, nil
				}
			}
		}
	}
	return nil, nil
}

// resolveUserRef returns values without __typename so tests cover the
// runtime's injection.
func resolveUserRef(ctx context.Context, ref Reference) (any, error) {
	if ref.KeyValues["email"] == "support@apollographql.com" {
		return map[string]any{"email": "support@apollographql.com", "name": "Jane Smith"}, nil
	}
	return nil, nil
}

func sourceField(field string) executor.MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		m, _ := source.(map[string]any)
		return m[field], nil
	}
}

func newTestWrapper(t *testing.T, opts ...Option) (*Wrapper, *executor.MockRuntime) {
	t.Helper()
	sch, err := schema.BuildFromSDL(subgraphSDL)
	require.NoError(t, err)
	sch.Types["Query"].GetField("topProducts").SetAsync(true)

	base := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.topProducts": executor.NewMockValueResolver([]any{
			map[string]any{"name": "Apollo Federation"},
			map[string]any{"name": "Apollo Studio"},
		}),
		"Product.name": sourceField("name"),
		"User.name":    sourceField("name"),
	})

	w, err := Wrap(base, sch, opts...)
	require.NoError(t, err)
	return w, base
}

func mustParse(t *testing.T, q string) *ast.QueryDocument {
	t.Helper()
	doc, err := parser.ParseQuery(&ast.Source{Input: q})
	require.NoError(t, err)
	return doc
}

func execute(t *testing.T, w *Wrapper, query string, vars map[string]any) *executor.ExecutionResult {
	t.Helper()
	ex := executor.NewExecutor(w.Runtime, w.Schema)
	return ex.ExecuteRequest(context.Background(), mustParse(t, query), "", vars, nil)
}

func TestWrapRejectsResolverWithoutKey(t *testing.T) {
	sch, err := schema.BuildFromSDL(subgraphSDL)
	require.NoError(t, err)

	_, err = Wrap(executor.NewMockRuntime(nil), sch,
		WithResolver("ProductVariation", resolveProductRef))
	require.ErrorContains(t, err, "declares no @key")
}

func TestServiceField(t *testing.T) {
	t.Run("serves the configured document", func(t *testing.T) {
		w, _ := newTestWrapper(t, WithSDL("schema { query: Query }"),
			WithResolver("Product", resolveProductRef))
		res := execute(t, w, "{ _service { sdl } }", nil)
		require.Empty(t, res.Errors)

		want := map[string]any{"_service": map[string]any{"sdl": "schema { query: Query }"}}
		if diff := cmp.Diff(want, res.Data); diff != "" {
			t.Fatalf("result mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("falls back to the rendered schema", func(t *testing.T) {
		w, _ := newTestWrapper(t, WithResolver("Product", resolveProductRef))
		res := execute(t, w, "{ _service { sdl } }", nil)
		require.Empty(t, res.Errors)

		sdl := res.Data.(map[string]any)["_service"].(map[string]any)["sdl"].(string)
		require.Contains(t, sdl, "type Product")
		require.Contains(t, sdl, `@key(fields: "sku package")`)
		require.NotContains(t, sdl, "_entities")
	})
}

const entitiesQuery = `query ($reps: [_Any!]!) {
	_entities(representations: $reps) {
		__typename
		... on Product { name }
		... on User { name }
	}
}`

func TestEntitiesResolvesByEachKey(t *testing.T) {
	w, _ := newTestWrapper(t,
		WithResolvers(ResolverMap{"Product": resolveProductRef, "User": resolveUserRef}))

	reps := []any{
		map[string]any{"__typename": "Product", "id": "apollo-federation"},
		map[string]any{"__typename": "Product", "sku": "studio", "package": ""},
		map[string]any{"__typename": "Product", "sku": "federation", "variation": map[string]any{"id": "OSS"}},
		map[string]any{"__typename": "User", "email": "support@apollographql.com"},
	}
	res := execute(t, w, entitiesQuery, map[string]any{"reps": reps})
	require.Empty(t, res.Errors)

	want := map[string]any{"_entities": []any{
		map[string]any{"__typename": "Product", "name": "Apollo Federation"},
		map[string]any{"__typename": "Product", "name": "Apollo Studio"},
		map[string]any{"__typename": "Product", "name": "Apollo Federation"},
		map[string]any{"__typename": "User", "name": "Jane Smith"},
	}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestEntitiesSlotDegradation(t *testing.T) {
	w, _ := newTestWrapper(t,
		WithResolvers(ResolverMap{"Product": resolveProductRef, "User": resolveUserRef}))

	reps := []any{
		map[string]any{"__typename": "Product", "id": "apollo-federation"},
		map[string]any{"__typename": "Review", "id": "1"},
		map[string]any{"__typename": "Product", "id": "does-not-exist"},
		map[string]any{"__typename": "Product", "sku": "federation"},
		map[string]any{"id": "no-typename"},
		map[string]any{"__typename": "Product", "id": "kaboom"},
	}
	res := execute(t, w, entitiesQuery, map[string]any{"reps": reps})

	// Failed slots degrade to null without disturbing their neighbors.
	want := map[string]any{"_entities": []any{
		map[string]any{"__typename": "Product", "name": "Apollo Federation"},
		nil,
		nil,
		nil,
		nil,
		nil,
	}}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	// Only the unknown type, the missing __typename and the resolver
	// failure produce errors. Unresolved entities and unmatched keys are
	// plain nulls.
	require.Len(t, res.Errors, 3)
	byIndex := map[int]string{}
	for _, e := range res.Errors {
		require.Len(t, e.Path, 2)
		require.Equal(t, "_entities", e.Path[0])
		byIndex[e.Path[1].(int)] = e.Message
	}
	require.Contains(t, byIndex[1], "unknown entity type")
	require.Contains(t, byIndex[4], "missing __typename")
	require.Contains(t, byIndex[5], "resolving Product reference")
}

func TestEntitiesAlongsideBaseAsyncFields(t *testing.T) {
	w, base := newTestWrapper(t,
		WithResolvers(ResolverMap{"Product": resolveProductRef, "User": resolveUserRef}))

	query := `query ($reps: [_Any!]!) {
		topProducts { name }
		_entities(representations: $reps) { ... on User { name } }
	}`
	reps := []any{map[string]any{"__typename": "User", "email": "support@apollographql.com"}}
	res := execute(t, w, query, map[string]any{"reps": reps})
	require.Empty(t, res.Errors)

	want := map[string]any{
		"topProducts": []any{
			map[string]any{"name": "Apollo Federation"},
			map[string]any{"name": "Apollo Studio"},
		},
		"_entities": []any{map[string]any{"name": "Jane Smith"}},
	}
	if diff := cmp.Diff(want, res.Data); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}

	// The base runtime sees its own async tasks but never the federation
	// fields.
	var sawTopProducts bool
	for _, c := range base.GetCalls() {
		require.NotEqual(t, "_entities", c.Field)
		require.NotEqual(t, "_service", c.Field)
		if c.Field == "topProducts" {
			sawTopProducts = true
			require.Equal(t, executor.CallKindAsync, c.Kind)
		}
	}
	require.True(t, sawTopProducts)
}

func TestEntitiesRequiresRegisteredResolver(t *testing.T) {
	w, _ := newTestWrapper(t, WithResolver("Product", resolveProductRef))

	reps := []any{map[string]any{"__typename": "User", "email": "support@apollographql.com"}}
	res := execute(t, w, entitiesQuery, map[string]any{"reps": reps})

	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0].Message, "no reference resolver registered for type User")
}
