package schema

import (
	"fmt"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// BuildFromSDL parses an SDL document and returns the corresponding Schema.
// Type extensions are merged into their base definitions; when an extension
// has no base (the usual shape for `extend type Query` in a subgraph
// document), it is promoted to a definition. Directive applications on type
// definitions are retained on Type.Applied.
func BuildFromSDL(sdl string) (*Schema, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
	if err != nil {
		return nil, err
	}

	s := NewSchema("")
	// Builtins
	s.AddType(stringType).
		AddType(intType).
		AddType(floatType).
		AddType(booleanType).
		AddType(idType)
	s.AddDirective(includeDirective).
		AddDirective(skipDirective).
		AddDirective(deprecatedDirective)

	defs := map[string]*ast.Definition{}
	var order []string
	for _, def := range doc.Definitions {
		if _, ok := defs[def.Name]; ok {
			return nil, fmt.Errorf("duplicate type definition %q", def.Name)
		}
		defs[def.Name] = def
		order = append(order, def.Name)
	}
	for _, ext := range doc.Extensions {
		base, ok := defs[ext.Name]
		if !ok {
			defs[ext.Name] = ext
			order = append(order, ext.Name)
			continue
		}
		if base.Kind != ext.Kind {
			return nil, fmt.Errorf("extension of %q does not match its kind", ext.Name)
		}
		base.Interfaces = append(base.Interfaces, ext.Interfaces...)
		base.Fields = append(base.Fields, ext.Fields...)
		base.Types = append(base.Types, ext.Types...)
		base.EnumValues = append(base.EnumValues, ext.EnumValues...)
		base.Directives = append(base.Directives, ext.Directives...)
	}

	for _, name := range order {
		t, err := buildType(defs[name])
		if err != nil {
			return nil, err
		}
		s.AddType(t)
	}
	for _, dir := range doc.Directives {
		s.AddDirective(buildDirective(dir))
	}

	if err := applySchemaDefinition(s, doc); err != nil {
		return nil, err
	}
	resolvePossibleTypes(s)
	return s, nil
}

func buildType(def *ast.Definition) (*Type, error) {
	var kind TypeKind
	switch def.Kind {
	case ast.Object:
		kind = TypeKindObject
	case ast.Interface:
		kind = TypeKindInterface
	case ast.Union:
		kind = TypeKindUnion
	case ast.Enum:
		kind = TypeKindEnum
	case ast.Scalar:
		kind = TypeKindScalar
	case ast.InputObject:
		kind = TypeKindInputObject
	default:
		return nil, fmt.Errorf("unsupported definition kind %q for %q", def.Kind, def.Name)
	}

	t := NewType(def.Name, kind, def.Description)
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	for _, name := range def.Types {
		t.AddPossibleType(name)
	}
	for _, fieldDef := range def.Fields {
		if kind == TypeKindInputObject {
			v, err := buildInputValue(fieldDef)
			if err != nil {
				return nil, err
			}
			t.AddInputField(v)
			continue
		}
		f, err := buildField(fieldDef)
		if err != nil {
			return nil, err
		}
		t.AddField(f)
	}
	for _, v := range def.EnumValues {
		e := NewEnumValue(v.Name, v.Description)
		if reason, ok := deprecationReason(v.Directives); ok {
			e.Deprecate(reason)
		}
		t.AddEnumValue(e)
	}
	for _, d := range def.Directives {
		applied, err := buildApplied(d)
		if err != nil {
			return nil, err
		}
		if applied.Name == "oneOf" {
			t.SetOneOf(true)
			continue
		}
		t.AddApplied(applied)
	}
	return t, nil
}

func buildField(def *ast.FieldDefinition) (*Field, error) {
	f := NewField(def.Name, def.Description, buildTypeRef(def.Type))
	if reason, ok := deprecationReason(def.Directives); ok {
		f.Deprecate(reason)
	}
	for _, arg := range def.Arguments {
		v, err := buildArgument(arg)
		if err != nil {
			return nil, err
		}
		f.AddArgument(v)
	}
	return f, nil
}

func buildInputValue(def *ast.FieldDefinition) (*InputValue, error) {
	in := NewInputValue(def.Name, def.Description, buildTypeRef(def.Type))
	if def.DefaultValue != nil {
		val, err := def.DefaultValue.Value(nil)
		if err != nil {
			return nil, err
		}
		in.SetDefault(val)
	}
	if reason, ok := deprecationReason(def.Directives); ok {
		in.Deprecate(reason)
	}
	return in, nil
}

func buildArgument(def *ast.ArgumentDefinition) (*InputValue, error) {
	in := NewInputValue(def.Name, def.Description, buildTypeRef(def.Type))
	if def.DefaultValue != nil {
		val, err := def.DefaultValue.Value(nil)
		if err != nil {
			return nil, err
		}
		in.SetDefault(val)
	}
	if reason, ok := deprecationReason(def.Directives); ok {
		in.Deprecate(reason)
	}
	return in, nil
}

func buildTypeRef(t *ast.Type) *TypeRef {
	var inner *TypeRef
	if t.NamedType != "" {
		inner = &TypeRef{Kind: TypeRefKindNamed, Named: t.NamedType}
	} else {
		inner = &TypeRef{Kind: TypeRefKindList, OfType: buildTypeRef(t.Elem)}
	}
	if t.NonNull {
		return &TypeRef{Kind: TypeRefKindNonNull, OfType: inner}
	}
	return inner
}

func buildDirective(def *ast.DirectiveDefinition) *Directive {
	d := NewDirective(def.Name, def.Description).SetRepeatable(def.IsRepeatable)
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range def.Arguments {
		if in, err := buildArgument(arg); err == nil {
			d.AddArgument(in)
		}
	}
	return d
}

func buildApplied(d *ast.Directive) (*AppliedDirective, error) {
	applied := &AppliedDirective{Name: d.Name, Arguments: map[string]any{}}
	for _, arg := range d.Arguments {
		val, err := arg.Value.Value(nil)
		if err != nil {
			return nil, fmt.Errorf("directive @%s argument %q: %w", d.Name, arg.Name, err)
		}
		applied.Arguments[arg.Name] = val
	}
	return applied, nil
}

func deprecationReason(dirs ast.DirectiveList) (string, bool) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil {
		if v, err := arg.Value.Value(nil); err == nil {
			if reason, ok := v.(string); ok {
				return reason, true
			}
		}
	}
	return "No longer supported", true
}

func applySchemaDefinition(s *Schema, doc *ast.SchemaDocument) error {
	bind := func(opTypes ast.OperationTypeDefinitionList) {
		for _, opType := range opTypes {
			switch opType.Operation {
			case ast.Query:
				s.SetQueryType(opType.Type)
			case ast.Mutation:
				s.SetMutationType(opType.Type)
			case ast.Subscription:
				s.SetSubscriptionType(opType.Type)
			}
		}
	}
	for _, def := range doc.Schema {
		bind(def.OperationTypes)
	}
	for _, def := range doc.SchemaExtension {
		bind(def.OperationTypes)
	}
	// Default root bindings by conventional name
	if s.QueryType == "" {
		if _, ok := s.Types["Query"]; ok {
			s.SetQueryType("Query")
		}
	}
	if s.MutationType == "" {
		if _, ok := s.Types["Mutation"]; ok {
			s.SetMutationType("Mutation")
		}
	}
	if s.SubscriptionType == "" {
		if _, ok := s.Types["Subscription"]; ok {
			s.SetSubscriptionType("Subscription")
		}
	}
	if s.QueryType == "" {
		return fmt.Errorf("schema has no query root type")
	}
	return nil
}

// resolvePossibleTypes fills interface possible-type lists from the object
// definitions that implement them. Names are visited in sorted order so the
// resulting lists are deterministic.
func resolvePossibleTypes(s *Schema) {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := s.Types[name]
		if t.Kind != TypeKindObject {
			continue
		}
		for _, ifaceName := range t.Interfaces {
			iface, ok := s.Types[ifaceName]
			if !ok || iface.Kind != TypeKindInterface {
				continue
			}
			found := false
			for _, name := range iface.PossibleTypes {
				if name == t.Name {
					found = true
					break
				}
			}
			if !found {
				iface.AddPossibleType(t.Name)
			}
		}
	}
}
