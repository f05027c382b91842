package federation

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingTypename marks a representation without a usable __typename.
	ErrMissingTypename = errors.New("representation is missing __typename")
	// ErrUnknownType marks a representation whose __typename declares no keys.
	ErrUnknownType = errors.New("unknown entity type")
	// ErrNoMatchingKey marks a representation that names a known entity type
	// but satisfies none of its keys.
	ErrNoMatchingKey = errors.New("representation matches no declared key")
)

// Match is the outcome of classifying one representation: the entity type,
// the selected key descriptor, and the key's extracted values.
type Match struct {
	TypeName  string
	Key       *KeyDescriptor
	KeyValues map[string]any
}

// Classifier selects the key descriptor a representation satisfies.
//
// When several keys of one type match, the most specific key (most leaf
// fields) wins. Representations that satisfy two keys of equal specificity
// are resolved in favor of the earlier declaration; with well-designed keys
// the choice is equivalent, and the rule keeps classification deterministic.
type Classifier struct {
	reg *Registry
}

func NewClassifier(reg *Registry) *Classifier {
	return &Classifier{reg: reg}
}

// Classify inspects rep and returns the entity type and key it satisfies.
// The representation is not consumed; callers pass it on to the reference
// resolver unchanged.
func (c *Classifier) Classify(rep map[string]any) (*Match, error) {
	typeName, ok := rep["__typename"].(string)
	if !ok || typeName == "" {
		return nil, ErrMissingTypename
	}
	keys := c.reg.Keys(typeName)
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}

	var best *KeyDescriptor
	for _, key := range keys {
		if !key.Match(rep) {
			continue
		}
		switch {
		case best == nil:
			best = key
		case key.Specificity() > best.Specificity():
			best = key
		case key.Specificity() == best.Specificity() && key.ordinal < best.ordinal:
			// Earlier declaration wins specificity ties.
			best = key
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: type %s", ErrNoMatchingKey, typeName)
	}
	return &Match{
		TypeName:  typeName,
		Key:       best,
		KeyValues: best.Extract(rep),
	}, nil
}
