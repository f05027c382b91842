package executor

// GraphQLError is a located field error. Path addresses the failing
// response position, with int elements for list indexes.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// ExecutionResult pairs response data with the field errors raised while
// producing it. Data stays populated on partial failure; failed fields
// degrade to null inside it.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
