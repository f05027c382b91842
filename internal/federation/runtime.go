package federation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	eventbus "github.com/hanpama/fedgraph/internal/eventbus"
	events "github.com/hanpama/fedgraph/internal/events"
	executor "github.com/hanpama/fedgraph/internal/executor"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

// Wrapper holds the federation-capable runtime and its extended schema.
type Wrapper struct {
	Runtime  executor.Runtime
	Schema   *schema.Schema
	Registry *Registry
}

type options struct {
	sdl       string
	logger    *zap.Logger
	resolvers ResolverMap
}

type Option func(*options)

// WithSDL sets the document served by _service { sdl }. Without it the
// schema is rendered back to SDL, which drops descriptions' original layout
// but keeps directive applications.
func WithSDL(sdl string) Option { return func(o *options) { o.sdl = sdl } }

// WithLogger sets the logger used for classification and resolver failures.
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// WithResolver registers the reference resolver for one entity type.
func WithResolver(typeName string, fn ReferenceResolver) Option {
	return func(o *options) { o.resolvers[typeName] = fn }
}

// WithResolvers registers reference resolvers for several entity types.
func WithResolvers(m ResolverMap) Option {
	return func(o *options) {
		for name, fn := range m {
			o.resolvers[name] = fn
		}
	}
}

// Wrap returns a Runtime that serves the federation root fields on top of
// base. It reads @key applications from the schema into a Registry, extends
// the schema with _Any, _Service, _Entity and the Query._service /
// Query._entities fields, and dispatches entity representations to the
// registered reference resolvers.
func Wrap(base executor.Runtime, sch *schema.Schema, opts ...Option) (*Wrapper, error) {
	op := options{logger: zap.NewNop(), resolvers: ResolverMap{}}
	for _, f := range opts {
		f(&op)
	}

	reg, err := RegistryFromSchema(sch)
	if err != nil {
		return nil, err
	}
	for name := range op.resolvers {
		if !reg.HasType(name) {
			return nil, fmt.Errorf("resolver registered for %s, which declares no @key", name)
		}
	}

	extended := extendSchemaWithFederation(sch, reg)
	sdl := op.sdl
	if sdl == "" {
		sdl = schema.Render(sch)
	}

	rt := &runtime{
		base:       base,
		queryType:  extended.QueryType,
		registry:   reg,
		classifier: NewClassifier(reg),
		resolvers:  op.resolvers,
		sdl:        sdl,
		logger:     op.logger,
	}
	return &Wrapper{Runtime: rt, Schema: extended, Registry: reg}, nil
}

type runtime struct {
	base       executor.Runtime
	queryType  string
	registry   *Registry
	classifier *Classifier
	resolvers  ResolverMap
	sdl        string
	logger     *zap.Logger
}

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if objectType == r.queryType && field == "_service" {
		return map[string]any{"sdl": r.sdl}, nil
	}
	if objectType == "_Service" && field == "sdl" {
		if m, ok := source.(map[string]any); ok {
			return m["sdl"], nil
		}
		return r.sdl, nil
	}
	return r.base.ResolveSync(ctx, objectType, field, source, args)
}

func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	var baseTasks []executor.AsyncResolveTask
	var baseIdx []int
	var wg sync.WaitGroup
	for i, t := range tasks {
		if t.ObjectType == r.queryType && t.Field == "_entities" {
			wg.Add(1)
			go func(i int, t executor.AsyncResolveTask) {
				defer wg.Done()
				results[i] = r.resolveEntities(ctx, t)
			}(i, t)
			continue
		}
		baseTasks = append(baseTasks, t)
		baseIdx = append(baseIdx, i)
	}
	if len(baseTasks) > 0 {
		baseResults := r.base.BatchResolveAsync(ctx, baseTasks)
		for j := range baseResults {
			results[baseIdx[j]] = baseResults[j]
		}
	}
	wg.Wait()
	return results
}

// resolveEntities handles one Query._entities task: classify every
// representation, dispatch references concurrently, and reassemble results
// into their positional slots.
func (r *runtime) resolveEntities(ctx context.Context, task executor.AsyncResolveTask) executor.AsyncResolveResult {
	reps, ok := task.Args["representations"].([]any)
	if !ok {
		return executor.AsyncResolveResult{Error: errors.New("_entities requires a representations argument")}
	}

	start := time.Now()
	eventbus.Publish(ctx, events.EntityBatchStart{Representations: len(reps)})

	values := make([]any, len(reps))
	slotErrs := make([]error, len(reps))
	typeNames := make([]string, len(reps))

	var wg sync.WaitGroup
	wg.Add(len(reps))
	for i, raw := range reps {
		go func(i int, raw any) {
			defer wg.Done()
			value, typeName, err := r.resolveOne(ctx, raw)
			values[i] = value
			slotErrs[i] = err
			typeNames[i] = typeName
		}(i, raw)
	}
	wg.Wait()

	var partial []executor.ElementError
	failed := 0
	resolved := 0
	seen := map[string]struct{}{}
	for i := range reps {
		if slotErrs[i] != nil {
			partial = append(partial, executor.ElementError{Index: i, Err: slotErrs[i]})
			failed++
			continue
		}
		if values[i] != nil {
			resolved++
		}
		if typeNames[i] != "" {
			seen[typeNames[i]] = struct{}{}
		}
	}
	types := make([]string, 0, len(seen))
	for name := range seen {
		types = append(types, name)
	}
	sort.Strings(types)

	eventbus.Publish(ctx, events.EntityBatchFinish{
		Representations: len(reps),
		Resolved:        resolved,
		Failed:          failed,
		Types:           types,
		Duration:        time.Since(start),
	})

	return executor.AsyncResolveResult{Value: values, Partial: partial}
}

// resolveOne classifies and resolves a single representation. A nil value
// with a nil error degrades the slot to null without a field error.
func (r *runtime) resolveOne(ctx context.Context, raw any) (any, string, error) {
	rep, ok := raw.(map[string]any)
	if !ok {
		return nil, "", fmt.Errorf("representation must be an object, got %T", raw)
	}

	match, err := r.classifier.Classify(rep)
	if err != nil {
		if errors.Is(err, ErrNoMatchingKey) {
			// A known type whose keys all miss degrades to null silently;
			// the representation likely belongs to another subgraph's key.
			r.logger.Warn("representation matched no key", zap.Error(err))
			return nil, "", nil
		}
		return nil, "", err
	}

	resolver, ok := r.resolvers[match.TypeName]
	if !ok {
		return nil, match.TypeName, fmt.Errorf("no reference resolver registered for type %s", match.TypeName)
	}

	value, err := resolver(ctx, Reference{
		TypeName:       match.TypeName,
		Key:            match.Key,
		KeyValues:      match.KeyValues,
		Representation: rep,
	})
	if err != nil {
		r.logger.Error("reference resolver failed",
			zap.String("type", match.TypeName),
			zap.String("key", match.Key.FieldSet),
			zap.Error(err))
		return nil, match.TypeName, fmt.Errorf("resolving %s reference: %w", match.TypeName, err)
	}
	if value == nil {
		return nil, match.TypeName, nil
	}
	// Completion resolves _Entity members through __typename; guarantee it
	// on map values so domain resolvers don't have to.
	if m, ok := value.(map[string]any); ok {
		if _, has := m["__typename"]; !has {
			withType := make(map[string]any, len(m)+1)
			for k, v := range m {
				withType[k] = v
			}
			withType["__typename"] = match.TypeName
			return withType, match.TypeName, nil
		}
	}
	return value, match.TypeName, nil
}

func (r *runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if abstractType == "_Entity" {
		m, ok := value.(map[string]any)
		if !ok {
			return "", fmt.Errorf("cannot resolve _Entity member for %T", value)
		}
		typeName, _ := m["__typename"].(string)
		if typeName == "" || !r.registry.HasType(typeName) {
			return "", fmt.Errorf("value is not a member of _Entity: %q", typeName)
		}
		return typeName, nil
	}
	return r.base.ResolveType(ctx, abstractType, value)
}

func (r *runtime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	if scalarOrEnumTypeName == "_Any" {
		return value, nil
	}
	return r.base.SerializeLeafValue(ctx, scalarOrEnumTypeName, value)
}
