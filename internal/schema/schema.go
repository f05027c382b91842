package schema

// Schema is the executable GraphQL schema: every named type keyed by name,
// plus the root operation type bindings. It is built once at startup and is
// safe for unsynchronized concurrent reads afterwards.
type Schema struct {
	QueryType        string
	MutationType     string
	SubscriptionType string
	Types            map[string]*Type
	Directives       map[string]*Directive
	Description      string
}

// NewSchema creates an empty schema with the given description.
func NewSchema(description string) *Schema {
	return &Schema{
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
		Description: description,
	}
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

// AddType registers a named type. Later additions with the same name replace
// earlier ones; SDL-level duplicate detection happens in BuildFromSDL.
func (s *Schema) AddType(t *Type) *Schema { s.Types[t.Name] = t; return s }

func (s *Schema) AddDirective(d *Directive) *Schema { s.Directives[d.Name] = d; return s }

// GetQueryType returns the root query type (may be nil if absent)
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType returns the root mutation type (may be nil if absent)
func (s *Schema) GetMutationType() *Type { return s.Types[s.MutationType] }

// GetSubscriptionType returns the root subscription type (may be nil if absent)
func (s *Schema) GetSubscriptionType() *Type { return s.Types[s.SubscriptionType] }

// Type is a named GraphQL type (object, interface, union, scalar, enum, input)
type Type struct {
	Name          string
	Kind          TypeKind
	Description   string
	Fields        []*Field      // For OBJECT and INTERFACE, in declaration order
	Interfaces    []string      // For OBJECT and INTERFACE (implemented/extended)
	PossibleTypes []string      // For INTERFACE and UNION
	EnumValues    []*EnumValue  // For ENUM
	InputFields   []*InputValue // For INPUT_OBJECT

	// Applied holds directive applications from the SDL (e.g. @key on an
	// entity type). Only type-level applications are retained; the runtime
	// has no use for field-level ones.
	Applied []*AppliedDirective

	SpecifiedByURL *string
	OneOf          bool
}

// NewType creates a named type of the given kind.
func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type           { t.Fields = append(t.Fields, f); return t }
func (t *Type) AddInterface(name string) *Type    { t.Interfaces = append(t.Interfaces, name); return t }
func (t *Type) AddPossibleType(name string) *Type { t.PossibleTypes = append(t.PossibleTypes, name); return t }
func (t *Type) AddEnumValue(v *EnumValue) *Type   { t.EnumValues = append(t.EnumValues, v); return t }
func (t *Type) AddInputField(v *InputValue) *Type { t.InputFields = append(t.InputFields, v); return t }
func (t *Type) AddApplied(d *AppliedDirective) *Type {
	t.Applied = append(t.Applied, d)
	return t
}
func (t *Type) SetOneOf(oneOf bool) *Type { t.OneOf = oneOf; return t }

// GetField returns the field with the given name, or nil.
func (t *Type) GetField(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// GetOrderedFields returns fields in declaration order.
func (t *Type) GetOrderedFields() []*Field { return t.Fields }

// GetOrderedInputFields returns input fields in declaration order.
func (t *Type) GetOrderedInputFields() []*InputValue { return t.InputFields }

// AppliedList returns every application of the named directive, in
// declaration order. Repeatable directives like @key may appear many times.
func (t *Type) AppliedList(name string) []*AppliedDirective {
	var out []*AppliedDirective
	for _, d := range t.Applied {
		if d.Name == name {
			out = append(out, d)
		}
	}
	return out
}

// AppliedDirective is one directive application from the SDL, with its
// arguments reduced to plain Go values.
type AppliedDirective struct {
	Name      string
	Arguments map[string]any
}

// StringArg returns the named argument as a string, or "" when absent or not
// a string.
func (d *AppliedDirective) StringArg(name string) string {
	s, _ := d.Arguments[name].(string)
	return s
}

// Field represents a field on an object or interface
type Field struct {
	Name        string
	Description string
	Type        *TypeRef
	Arguments   []*InputValue

	// Async marks fields resolved via Runtime.BatchResolveAsync instead of
	// Runtime.ResolveSync. Set by the runtime binding, not by the SDL.
	Async bool

	IsDeprecated      bool
	DeprecationReason string
}

// NewField creates a field with the given name, description and return type.
func NewField(name, description string, t *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: t}
}

func (f *Field) SetAsync(async bool) *Field       { f.Async = async; return f }
func (f *Field) AddArgument(a *InputValue) *Field { f.Arguments = append(f.Arguments, a); return f }
func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

// GetOrderedArguments returns arguments in declaration order.
func (f *Field) GetOrderedArguments() []*InputValue { return f.Arguments }

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
)

// TypeRef represents a reference to a type (can be wrapped)
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For List and NonNull
	Named  string   // For named types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t.Kind == TypeRefKindList {
		return true
	}
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeRefKindList
	}
	return false
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		if current.Named != "" {
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

// NewEnumValue creates an enum value.
func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (e *EnumValue) Deprecate(reason string) *EnumValue {
	e.IsDeprecated = true
	e.DeprecationReason = reason
	return e
}

type InputValue struct {
	Name              string
	Description       string
	Type              *TypeRef
	DefaultValue      any
	IsDeprecated      bool
	DeprecationReason string
}

// NewInputValue creates an input value (argument or input field).
func NewInputValue(name, description string, t *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: t}
}

func (v *InputValue) SetDefault(val any) *InputValue { v.DefaultValue = val; return v }
func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

// NewDirective creates a directive definition.
func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) SetRepeatable(r bool) *Directive      { d.IsRepeatable = r; return d }
func (d *Directive) AddArgument(a *InputValue) *Directive { d.Arguments = append(d.Arguments, a); return d }

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsList reports whether the type is (or is wrapped by) a list type.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// Unwrap removes one layer of Non-Null or List wrapping and returns the inner type.
func Unwrap(t *TypeRef) *TypeRef { return t.Unwrap() }

// GetNamedType returns the innermost named type for the given reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }
