package federation

import (
	"context"
)

// Reference is the input to a reference resolver: the classified entity type,
// the key that matched, the key's extracted values, and the raw
// representation as sent by the router.
type Reference struct {
	TypeName       string
	Key            *KeyDescriptor
	KeyValues      map[string]any
	Representation map[string]any
}

// ReferenceResolver loads one entity from a classified reference.
//
// Return (nil, nil) when no entity exists for the key; the slot becomes null
// without an error. Returned values are completed against the entity's
// selection set by the executor, so map values should carry the fields the
// subgraph owns.
type ReferenceResolver func(ctx context.Context, ref Reference) (any, error)

// ResolverMap associates entity type names with their reference resolvers.
type ResolverMap map[string]ReferenceResolver
