package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

func petSchema() *schema.Schema {
	return &schema.Schema{
		QueryType: "Query",
		Types: map[string]*schema.Type{
			"Query": {
				Name: "Query", Kind: schema.TypeKindObject,
				Fields: []*schema.Field{{Name: "pets", Type: schema.ListType(schema.NamedType("Pet"))}},
			},
			"Pet": {Name: "Pet", Kind: schema.TypeKindUnion, PossibleTypes: []string{"Dog", "Cat"}},
			"Dog": {
				Name: "Dog", Kind: schema.TypeKindObject,
				Fields: []*schema.Field{{Name: "bark", Type: schema.NamedType("String")}},
			},
			"Cat": {
				Name: "Cat", Kind: schema.TypeKindObject,
				Fields: []*schema.Field{{Name: "meow", Type: schema.NamedType("String")}},
			},
			"String": {Name: "String", Kind: schema.TypeKindScalar},
		},
	}
}

// Pattern: Result comparison
func TestAbstract_UnionFragments_SelectByConcreteType(t *testing.T) {
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.pets": NewMockValueResolver([]any{
			map[string]any{"__typename": "Dog"},
			map[string]any{"__typename": "Cat"},
		}),
		"Dog.bark": NewMockValueResolver("woof"),
		"Cat.meow": NewMockValueResolver("meow"),
	})
	exec := NewExecutor(rt, petSchema())
	doc := mustParseQuery(t, "{ pets { __typename ... on Dog { bark } ... on Cat { meow } } }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantRes := &ExecutionResult{
		Data: map[string]any{"pets": []any{
			map[string]any{"__typename": "Dog", "bark": "woof"},
			map[string]any{"__typename": "Cat", "meow": "meow"},
		}},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestAbstract_FragmentOnUnionName_AppliesToMembers(t *testing.T) {
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.pets": NewMockValueResolver([]any{map[string]any{"__typename": "Dog"}}),
		"Dog.bark":   NewMockValueResolver("woof"),
	})
	exec := NewExecutor(rt, petSchema())
	doc := mustParseQuery(t, "{ pets { ... on Pet { __typename } ... on Dog { bark } } }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantRes := &ExecutionResult{
		Data:   map[string]any{"pets": []any{map[string]any{"__typename": "Dog", "bark": "woof"}}},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, gotRes); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Error path assertion
func TestAbstract_UnresolvableType_LocatedError(t *testing.T) {
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.pets": NewMockValueResolver([]any{map[string]any{"kind": "iguana"}}),
	})
	exec := NewExecutor(rt, petSchema())
	doc := mustParseQuery(t, "{ pets { __typename } }")

	gotRes := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)

	if len(gotRes.Errors) != 1 {
		t.Fatalf("expected 1 error, got %+v", gotRes.Errors)
	}
	wantPath := Path{"pets", 0}
	if diff := cmp.Diff(wantPath, gotRes.Errors[0].Path); diff != "" {
		t.Fatalf("error path mismatch (-want +got):\n%s", diff)
	}
}
