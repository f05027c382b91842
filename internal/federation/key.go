package federation

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// FieldPath addresses one leaf of a key field set. A flat key like "sku" is a
// single-element path; a nested selection like "variation { id }" yields the
// path ["variation", "id"].
type FieldPath []string

func (p FieldPath) String() string { return strings.Join(p, ".") }

// KeyDescriptor is one parsed @key application on an entity type. A type may
// declare several descriptors; the classifier picks among them per
// representation.
type KeyDescriptor struct {
	// TypeName is the entity type the key belongs to.
	TypeName string
	// FieldSet is the original @key(fields:) text, e.g. "sku variation { id }".
	FieldSet string
	// Paths are the leaf field paths the key requires, in field-set order.
	Paths []FieldPath
	// Resolvable mirrors @key(resolvable:). Non-resolvable keys are declared
	// for the router's benefit only and never match representations here.
	Resolvable bool

	// ordinal is the declaration position among the type's keys. It breaks
	// specificity ties deterministically.
	ordinal int
}

// ParseFieldSet parses a @key field-set string into its leaf field paths.
// The field-set grammar is the selection-set subset without aliases,
// arguments, directives, or fragments.
func ParseFieldSet(fieldSet string) ([]FieldPath, error) {
	trimmed := strings.TrimSpace(fieldSet)
	if trimmed == "" {
		return nil, fmt.Errorf("empty key field set")
	}
	doc, err := parser.ParseQuery(&ast.Source{Input: "{" + trimmed + "}"})
	if err != nil {
		return nil, fmt.Errorf("invalid key field set %q: %w", fieldSet, err)
	}
	if len(doc.Operations) != 1 {
		return nil, fmt.Errorf("invalid key field set %q", fieldSet)
	}
	paths, err := fieldSetPaths(doc.Operations[0].SelectionSet, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid key field set %q: %w", fieldSet, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("empty key field set")
	}
	return paths, nil
}

func fieldSetPaths(sel ast.SelectionSet, prefix FieldPath) ([]FieldPath, error) {
	var out []FieldPath
	for _, s := range sel {
		field, ok := s.(*ast.Field)
		if !ok {
			return nil, fmt.Errorf("fragments are not allowed in key field sets")
		}
		if field.Alias != "" && field.Alias != field.Name {
			return nil, fmt.Errorf("aliases are not allowed in key field sets")
		}
		if len(field.Arguments) > 0 {
			return nil, fmt.Errorf("arguments are not allowed in key field sets")
		}
		if len(field.Directives) > 0 {
			return nil, fmt.Errorf("directives are not allowed in key field sets")
		}
		path := append(append(FieldPath{}, prefix...), field.Name)
		if len(field.SelectionSet) == 0 {
			out = append(out, path)
			continue
		}
		nested, err := fieldSetPaths(field.SelectionSet, path)
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	return out, nil
}

// NewKeyDescriptor parses fieldSet and builds a descriptor for typeName.
func NewKeyDescriptor(typeName, fieldSet string) (*KeyDescriptor, error) {
	paths, err := ParseFieldSet(fieldSet)
	if err != nil {
		return nil, err
	}
	return &KeyDescriptor{
		TypeName:   typeName,
		FieldSet:   strings.Join(strings.Fields(fieldSet), " "),
		Paths:      paths,
		Resolvable: true,
	}, nil
}

// Specificity is the number of leaf fields the key requires. The classifier
// prefers higher specificity when several keys match one representation.
func (k *KeyDescriptor) Specificity() int { return len(k.Paths) }

// Match reports whether the representation carries a usable, non-null value
// for every leaf field of this key.
func (k *KeyDescriptor) Match(rep map[string]any) bool {
	if !k.Resolvable {
		return false
	}
	for _, path := range k.Paths {
		if _, ok := lookupPath(rep, path); !ok {
			return false
		}
	}
	return true
}

// Extract copies the key's fields out of the representation, preserving the
// nested shape of compound selections. Match must hold for the result to be
// complete.
func (k *KeyDescriptor) Extract(rep map[string]any) map[string]any {
	out := make(map[string]any, len(k.Paths))
	for _, path := range k.Paths {
		v, ok := lookupPath(rep, path)
		if !ok {
			continue
		}
		cur := out
		for _, seg := range path[:len(path)-1] {
			next, ok := cur[seg].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[seg] = next
			}
			cur = next
		}
		cur[path[len(path)-1]] = v
	}
	return out
}

// canonical identifies a key by its leaf paths regardless of whitespace in
// the original field-set text.
func (k *KeyDescriptor) canonical() string {
	parts := make([]string, len(k.Paths))
	for i, p := range k.Paths {
		parts[i] = p.String()
	}
	return strings.Join(parts, ",")
}

// lookupPath walks nested representation maps along path. The bool result is
// false when any segment is absent, null, or not an object where the path
// descends further.
func lookupPath(rep map[string]any, path FieldPath) (any, bool) {
	var cur any = rep
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[seg]
		if !ok || v == nil {
			return nil, false
		}
		cur = v
	}
	return cur, true
}
