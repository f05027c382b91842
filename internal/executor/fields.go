package executor

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	schema "github.com/hanpama/fedgraph/internal/schema"
)

// collectedFieldMap preserves field order from the original query
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

type collectedField struct {
	ResponseName string
	Fields       []*ast.Field
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{
		fields: make([]collectedField, 0),
		index:  make(map[string]int),
	}
}

func (cfm *collectedFieldMap) add(responseName string, field *ast.Field) {
	if idx, exists := cfm.index[responseName]; exists {
		// Append to existing field group
		cfm.fields[idx].Fields = append(cfm.fields[idx].Fields, field)
	} else {
		// Create new field group
		cfm.index[responseName] = len(cfm.fields)
		cfm.fields = append(cfm.fields, collectedField{
			ResponseName: responseName,
			Fields:       []*ast.Field{field},
		})
	}
}

func (cfm *collectedFieldMap) orderedFields() []collectedField {
	return cfm.fields
}

// collectFields collects fields from a selection set
func collectFields(state *executionState, objectType *schema.Type, selectionSet ast.SelectionSet) *collectedFieldMap {
	groupedFields := newCollectedFieldMap()
	visitedFragments := make(map[string]bool)

	collectFieldsImpl(state, objectType, selectionSet, groupedFields, visitedFragments)

	return groupedFields
}

// collectFieldsImpl is the recursive implementation of field collection
func collectFieldsImpl(state *executionState, objectType *schema.Type, selectionSet ast.SelectionSet, groupedFields *collectedFieldMap, visitedFragments map[string]bool) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *ast.Field:
			// Check directives (@skip, @include)
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}

			responseName := sel.Alias
			if responseName == "" {
				responseName = sel.Name
			}

			groupedFields.add(responseName, sel)

		case *ast.InlineFragment:
			// Check directives
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}

			// Check type condition
			if !doesFragmentTypeApply(state, objectType, sel.TypeCondition) {
				continue
			}

			// Collect fields from inline fragment
			collectFieldsImpl(state, objectType, sel.SelectionSet, groupedFields, visitedFragments)

		case *ast.FragmentSpread:
			// Check directives
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}

			// Check if already visited
			if visitedFragments[sel.Name] {
				continue
			}
			visitedFragments[sel.Name] = true

			// Get fragment definition from document
			fragmentDef := getFragmentDefinition(state.document, sel.Name)
			if fragmentDef == nil {
				continue
			}

			// Check type condition
			if !doesFragmentTypeApply(state, objectType, fragmentDef.TypeCondition) {
				continue
			}

			// Check fragment definition directives (@skip, @include)
			if !shouldIncludeNode(state, fragmentDef.Directives) {
				continue
			}

			// Recursively collect fields from fragment
			collectFieldsImpl(state, objectType, fragmentDef.SelectionSet, groupedFields, visitedFragments)
		}
	}
}

// doesFragmentTypeApply reports whether a fragment with the given type
// condition selects into objectType. Interface conditions match implementing
// objects and union conditions match their member objects.
func doesFragmentTypeApply(state *executionState, objectType *schema.Type, typeCondition string) bool {
	if typeCondition == "" || typeCondition == objectType.Name {
		return true
	}
	conditionType, ok := state.schema.Types[typeCondition]
	if !ok {
		return false
	}
	switch conditionType.Kind {
	case schema.TypeKindInterface, schema.TypeKindUnion:
		for _, name := range conditionType.PossibleTypes {
			if name == objectType.Name {
				return true
			}
		}
	}
	return false
}

// shouldIncludeNode checks if a node should be included based on directives
func shouldIncludeNode(state *executionState, directives ast.DirectiveList) bool {
	// Check @skip directive
	if skip := directives.ForName("skip"); skip != nil {
		if skipIf, err := getDirectiveArgumentValue(state, skip, "if"); err == nil {
			if skipBool, ok := skipIf.(bool); ok && skipBool {
				return false
			}
		}
	}

	// Check @include directive
	if include := directives.ForName("include"); include != nil {
		if includeIf, err := getDirectiveArgumentValue(state, include, "if"); err == nil {
			if includeBool, ok := includeIf.(bool); ok && !includeBool {
				return false
			}
		}
	}

	return true
}

// getDirectiveArgumentValue gets the value of a directive argument
func getDirectiveArgumentValue(state *executionState, directive *ast.Directive, argName string) (any, error) {
	for _, arg := range directive.Arguments {
		if arg.Name == argName {
			return valueFromAST(state, arg.Value), nil
		}
	}
	return nil, fmt.Errorf("argument %s not found", argName)
}

// valueFromAST converts an AST value to a runtime value
func valueFromAST(state *executionState, value *ast.Value) any {
	if value == nil {
		return nil
	}

	switch value.Kind {
	case ast.Variable:
		varName := value.Raw
		if val, ok := state.variableValues[varName]; ok {
			return val
		}
		return nil
	default:
		return astValueToGo(value)
	}
}

// getFragmentDefinition finds a fragment definition by name in the document
func getFragmentDefinition(document *ast.QueryDocument, name string) *ast.FragmentDefinition {
	if fd := document.Fragments.ForName(name); fd != nil {
		return fd
	}
	// Fallback: iterate
	for _, f := range document.Fragments {
		if f != nil && f.Name == name {
			return f
		}
	}
	return nil
}

func getFieldDefinition(objectType *schema.Type, fieldName string) *schema.Field {
	for _, field := range objectType.Fields {
		if field.Name == fieldName {
			return field
		}
	}
	return nil
}
