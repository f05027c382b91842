package federation

import (
	"fmt"
	"sort"

	schema "github.com/hanpama/fedgraph/internal/schema"
)

// Registry holds the key descriptors of every entity type, in declaration
// order per type. It is populated once at startup and read-only afterwards.
type Registry struct {
	byType map[string][]*KeyDescriptor
	names  []string // entity type names in registration order
}

func NewRegistry() *Registry {
	return &Registry{byType: make(map[string][]*KeyDescriptor)}
}

// Register parses fieldSet and adds a key descriptor for typeName. Declaring
// the same field set twice on one type is a configuration error and fails
// immediately.
func (r *Registry) Register(typeName, fieldSet string) (*KeyDescriptor, error) {
	desc, err := NewKeyDescriptor(typeName, fieldSet)
	if err != nil {
		return nil, fmt.Errorf("type %s: %w", typeName, err)
	}
	existing := r.byType[typeName]
	for _, prev := range existing {
		if prev.canonical() == desc.canonical() {
			return nil, fmt.Errorf("type %s: duplicate key %q", typeName, desc.FieldSet)
		}
	}
	desc.ordinal = len(existing)
	if len(existing) == 0 {
		r.names = append(r.names, typeName)
	}
	r.byType[typeName] = append(existing, desc)
	return desc, nil
}

// markUnresolvable flags a key declared with resolvable: false.
func (r *Registry) markUnresolvable(desc *KeyDescriptor) { desc.Resolvable = false }

// Keys returns typeName's key descriptors in declaration order, or nil for
// types without keys.
func (r *Registry) Keys(typeName string) []*KeyDescriptor {
	return r.byType[typeName]
}

// HasType reports whether typeName declares at least one key.
func (r *Registry) HasType(typeName string) bool {
	return len(r.byType[typeName]) > 0
}

// Types returns the entity type names in registration order.
func (r *Registry) Types() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// RegistryFromSchema builds a registry from the @key applications in the
// schema. Types are visited in sorted name order so the registry (and the
// _Entity union derived from it) is deterministic; keys within a type keep
// their SDL declaration order.
func RegistryFromSchema(sch *schema.Schema) (*Registry, error) {
	reg := NewRegistry()

	names := make([]string, 0, len(sch.Types))
	for name := range sch.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		typ := sch.Types[name]
		if typ.Kind != schema.TypeKindObject && typ.Kind != schema.TypeKindInterface {
			continue
		}
		for _, applied := range typ.AppliedList("key") {
			fieldSet := applied.StringArg("fields")
			if fieldSet == "" {
				return nil, fmt.Errorf("type %s: @key requires a fields argument", name)
			}
			desc, err := reg.Register(name, fieldSet)
			if err != nil {
				return nil, err
			}
			if resolvable, ok := applied.Arguments["resolvable"].(bool); ok && !resolvable {
				reg.markUnresolvable(desc)
			}
		}
	}
	return reg, nil
}
