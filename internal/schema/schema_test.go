package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSDL = `
directive @key(fields: String!, resolvable: Boolean = true) repeatable on OBJECT | INTERFACE

type Query {
  product(id: ID!): Product
}

type Product @key(fields: "id") @key(fields: "sku package") {
  id: ID!
  sku: String
  package: String
  notes: String @deprecated(reason: "Use description instead.")
  dimensions: ProductDimension
}

type ProductDimension {
  size: String
  weight: Float
}

interface SkuItemInterface {
  sku: ID!
}

type SkuItem implements SkuItemInterface {
  sku: ID!
}

extend type Query {
  skuItem(sku: ID!): SkuItem
}
`

func TestBuildFromSDL(t *testing.T) {
	s, err := BuildFromSDL(testSDL)
	require.NoError(t, err)

	require.Equal(t, "Query", s.QueryType)
	require.NotNil(t, s.GetQueryType())

	// Extension fields merge into the base Query definition in order.
	query := s.Types["Query"]
	require.NotNil(t, query.GetField("product"))
	require.NotNil(t, query.GetField("skuItem"))
	require.Equal(t, "product", query.GetOrderedFields()[0].Name)
	require.Equal(t, "skuItem", query.GetOrderedFields()[1].Name)

	product := s.Types["Product"]
	require.NotNil(t, product)
	require.Equal(t, TypeKindObject, product.Kind)

	keys := product.AppliedList("key")
	require.Len(t, keys, 2)
	require.Equal(t, "id", keys[0].StringArg("fields"))
	require.Equal(t, "sku package", keys[1].StringArg("fields"))

	notes := product.GetField("notes")
	require.True(t, notes.IsDeprecated)
	require.Equal(t, "Use description instead.", notes.DeprecationReason)

	id := product.GetField("id")
	require.True(t, id.Type.IsNonNull())
	require.Equal(t, "ID", id.Type.GetNamedType())

	iface := s.Types["SkuItemInterface"]
	require.Equal(t, []string{"SkuItem"}, iface.PossibleTypes)

	keyDir := s.Directives["key"]
	require.NotNil(t, keyDir)
	require.True(t, keyDir.IsRepeatable)
	require.Equal(t, true, keyDir.Arguments[1].DefaultValue)
}

func TestBuildFromSDLBuiltins(t *testing.T) {
	s, err := BuildFromSDL(`type Query { ok: Boolean }`)
	require.NoError(t, err)

	for _, name := range []string{"String", "Int", "Float", "Boolean", "ID"} {
		typ, ok := s.Types[name]
		require.True(t, ok, "missing builtin scalar %s", name)
		require.Equal(t, TypeKindScalar, typ.Kind)
	}
	require.NotNil(t, s.Directives["include"])
	require.NotNil(t, s.Directives["skip"])
	require.NotNil(t, s.Directives["deprecated"])
}

func TestBuildFromSDLNoQueryRoot(t *testing.T) {
	_, err := BuildFromSDL(`type Product { id: ID! }`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "query root")
}

func TestBuildFromSDLDuplicateType(t *testing.T) {
	_, err := BuildFromSDL(`
type Query { ok: Boolean }
type Query { nope: Boolean }
`)
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	s, err := BuildFromSDL(testSDL)
	require.NoError(t, err)

	out := Render(s)
	require.True(t, strings.Contains(out, `type Product @key(fields: "id") @key(fields: "sku package") {`), out)
	require.True(t, strings.Contains(out, `notes: String @deprecated(reason: "Use description instead.")`), out)
	require.True(t, strings.Contains(out, "type SkuItem implements SkuItemInterface {"), out)
	require.True(t, strings.Contains(out, "directive @key"), out)

	// Round trip: rendered SDL must parse back into an equivalent schema.
	again, err := BuildFromSDL(out)
	require.NoError(t, err)
	require.Len(t, again.Types["Product"].AppliedList("key"), 2)
}

func TestTypeRefHelpers(t *testing.T) {
	ref := NonNullType(ListType(NonNullType(NamedType("Product"))))
	require.True(t, ref.IsNonNull())
	require.True(t, ref.IsList())
	require.Equal(t, "Product", ref.GetNamedType())
	require.Equal(t, TypeRefKindList, ref.Unwrap().Kind)
}
