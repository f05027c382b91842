package events

import "time"

// GraphQLStart fires before an operation executes. Batched requests
// emit one event per operation.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish fires when the operation result is complete, carrying
// any field errors collected during execution.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}
