package federation

import (
	schema "github.com/hanpama/fedgraph/internal/schema"
)

// extendSchemaWithFederation creates a copy of the schema and adds the
// federation service types and root fields: the _Any scalar, the _Service
// descriptor, the _Entity union over the registry's object entity types, and
// Query._service / Query._entities. When the registry holds no object
// entities the _Entity union and _entities field are omitted, matching
// subgraphs that only contribute non-entity types.
func extendSchemaWithFederation(original *schema.Schema, reg *Registry) *schema.Schema {
	// Create a shallow copy of the schema to avoid modifying the original
	extended := &schema.Schema{
		QueryType:        original.QueryType,
		MutationType:     original.MutationType,
		SubscriptionType: original.SubscriptionType,
		Types:            make(map[string]*schema.Type),
		Directives:       original.Directives,
		Description:      original.Description,
	}
	for name, typ := range original.Types {
		extended.Types[name] = typ
	}

	extended.Types["_Any"] = schema.NewType("_Any", schema.TypeKindScalar,
		"The `_Any` scalar is used to pass representations of entities from external services into this service.")
	extended.Types["_Service"] = schema.NewType("_Service", schema.TypeKindObject, "").
		AddField(schema.NewField("sdl", "The SDL representing the federated service capabilities.", schema.NonNullType(schema.NamedType("String"))))

	entityNames := objectEntityNames(original, reg)
	if len(entityNames) > 0 {
		entityUnion := schema.NewType("_Entity", schema.TypeKindUnion,
			"A union of all types that use the @key directive.")
		for _, name := range entityNames {
			entityUnion.AddPossibleType(name)
		}
		extended.Types["_Entity"] = entityUnion
	}

	queryType := extended.GetQueryType()
	if queryType == nil {
		return extended
	}
	queryCopy := &schema.Type{
		Name:        queryType.Name,
		Kind:        queryType.Kind,
		Description: queryType.Description,
		Fields:      make([]*schema.Field, len(queryType.Fields)),
		Interfaces:  queryType.Interfaces,
		Applied:     queryType.Applied,
	}
	copy(queryCopy.Fields, queryType.Fields)

	queryCopy.Fields = append(queryCopy.Fields,
		schema.NewField("_service", "", schema.NonNullType(schema.NamedType("_Service"))))
	if len(entityNames) > 0 {
		queryCopy.Fields = append(queryCopy.Fields,
			schema.NewField("_entities", "", schema.NonNullType(schema.ListType(schema.NamedType("_Entity")))).
				SetAsync(true).
				AddArgument(schema.NewInputValue("representations", "",
					schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("_Any")))))))
	}
	extended.Types[queryType.Name] = queryCopy

	return extended
}

// objectEntityNames filters the registry's entity types down to object types
// present in the schema. Entity interfaces declare keys too but never join
// the _Entity union.
func objectEntityNames(sch *schema.Schema, reg *Registry) []string {
	var out []string
	for _, name := range reg.Types() {
		typ, ok := sch.Types[name]
		if !ok || typ.Kind != schema.TypeKindObject {
			continue
		}
		out = append(out, name)
	}
	return out
}
