package funcrt

import (
	"context"
	"fmt"
	"sync"

	executor "github.com/hanpama/fedgraph/internal/executor"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

// Resolver resolves one field occurrence from its parent source value.
type Resolver func(ctx context.Context, source any, args map[string]any) (any, error)

// Serializer converts a scalar or enum value into its transport form.
type Serializer func(value any) (any, error)

// Runtime implements executor.Runtime over plain Go functions.
// Invariants and boundaries:
//   - Registration trust: fields are bound at startup. Binding a field the
//     schema does not declare is a programming error and causes panic.
//   - Source shape: unresolved object fields are read from map sources. Other
//     source shapes need an explicit resolver.
//   - Concurrency: BatchResolveAsync runs every task in its own goroutine.
//     Registered resolvers must be safe for concurrent use.
//   - Determinism: results land in the slot of the task that produced them.
type Runtime struct {
	schema      *schema.Schema
	resolvers   map[string]Resolver
	serializers map[string]Serializer
}

var _ executor.Runtime = (*Runtime)(nil)

func New(sch *schema.Schema) *Runtime {
	return &Runtime{
		schema:      sch,
		resolvers:   map[string]Resolver{},
		serializers: map[string]Serializer{},
	}
}

// Register binds fn as the synchronous resolver of objectType.field.
func (r *Runtime) Register(objectType, field string, fn Resolver) *Runtime {
	r.fieldDef(objectType, field)
	r.resolvers[objectType+"."+field] = fn
	return r
}

// RegisterAsync binds fn as an asynchronous resolver of objectType.field and
// marks the schema field async so the executor batches it.
func (r *Runtime) RegisterAsync(objectType, field string, fn Resolver) *Runtime {
	r.fieldDef(objectType, field).SetAsync(true)
	r.resolvers[objectType+"."+field] = fn
	return r
}

// RegisterSerializer binds fn as the serializer of a scalar or enum type.
// Types without one pass values through unchanged.
func (r *Runtime) RegisterSerializer(typeName string, fn Serializer) *Runtime {
	if r.schema.Types[typeName] == nil {
		panic(fmt.Sprintf("funcrt: schema declares no type %s", typeName))
	}
	r.serializers[typeName] = fn
	return r
}

func (r *Runtime) fieldDef(objectType, field string) *schema.Field {
	typ := r.schema.Types[objectType]
	if typ == nil {
		panic(fmt.Sprintf("funcrt: schema declares no type %s", objectType))
	}
	def := typ.GetField(field)
	if def == nil {
		panic(fmt.Sprintf("funcrt: schema declares no field %s.%s", objectType, field))
	}
	return def
}

// ResolveSync runs the registered resolver, or reads the field from a map
// source when none is bound. Absent fields resolve to null.
func (r *Runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if fn, ok := r.resolvers[objectType+"."+field]; ok {
		return fn(ctx, source, args)
	}
	if source == nil {
		return nil, nil
	}
	m, ok := source.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot read field %s.%s from source of type %T", objectType, field, source)
	}
	return m[field], nil
}

// BatchResolveAsync runs the batched tasks concurrently and reassembles the
// results into their task slots.
func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, t := range tasks {
		fn, ok := r.resolvers[t.ObjectType+"."+t.Field]
		if !ok {
			panic(fmt.Sprintf("funcrt: no resolver registered for async field %s.%s", t.ObjectType, t.Field))
		}
		go func(i int, t executor.AsyncResolveTask, fn Resolver) {
			defer wg.Done()
			value, err := fn(ctx, t.Source, t.Args)
			results[i] = executor.AsyncResolveResult{Value: value, Error: err}
		}(i, t, fn)
	}
	wg.Wait()
	return results
}

// ResolveType resolves abstract types through the value's __typename.
func (r *Runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if m, ok := value.(map[string]any); ok {
		if typeName, ok := m["__typename"].(string); ok && typeName != "" {
			return typeName, nil
		}
	}
	return "", fmt.Errorf("cannot resolve concrete type of %s value %T", abstractType, value)
}

// SerializeLeafValue applies the type's registered serializer, defaulting to
// the value unchanged.
func (r *Runtime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	if fn, ok := r.serializers[scalarOrEnumTypeName]; ok {
		return fn(value)
	}
	return value, nil
}
