package events

import "time"

// EntityBatchStart is emitted before resolving one _entities batch.
type EntityBatchStart struct {
	// Representations is the number of slots in the batch.
	Representations int
}

// EntityBatchFinish is emitted after an _entities batch completes.
type EntityBatchFinish struct {
	Representations int
	// Resolved counts slots that produced an entity value.
	Resolved int
	// Failed counts slots that produced a field error.
	Failed int
	// Types lists the distinct entity types seen in the batch.
	Types    []string
	Duration time.Duration
}
