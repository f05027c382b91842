// Package executor implements a breadth-first, batch-friendly GraphQL executor
// with explicit runtime hooks for synchronous resolution, depth-wise batching of
// asynchronous work, abstract-type resolution, and leaf serialization.
//
// # Overview
//
// The executor follows a level-by-level (BFS) execution model designed to:
//   - Expand synchronous fields immediately without adding batch depth.
//   - Collect asynchronous fields encountered at the current depth and
//     resolve them in a single call to Runtime.BatchResolveAsync.
//   - Complete values according to the GraphQL specification (lists, leafs,
//     objects, abstract types), including Non-Null null-propagation rules.
//   - Accumulate located errors while allowing partial success.
//
// # Execution Model
//
// A field is classified as synchronous or asynchronous via schema.Field.Async.
// Synchronous fields are resolvable without remote work and are executed
// immediately via Runtime.ResolveSync; asynchronous fields require a
// resolver/loader call and are queued to be resolved in batch via
// Runtime.BatchResolveAsync. The executor repeats the following cycle until
// no pending async tasks remain:
//
//	A. Sync expansion
//	   - For each field in the current selection set, compute argument values
//	     and determine its return type and async flag.
//	   - If sync: call Runtime.ResolveSync, then completeValue immediately.
//	     Object results keep expanding synchronously without increasing depth.
//	   - If async: enqueue an AsyncResolveTask for the current depth.
//
//	B. Batch execution
//	   - If there are async tasks at this depth, call Runtime.BatchResolveAsync
//	     exactly once with all of them (after filtering out any paths nullified
//	     by prior Non-Null violations). The runtime must return one result per
//	     task, in the same order. Element-scoped failures reported via
//	     AsyncResolveResult.Partial become located errors at their list index.
//
//	C. Non-Null propagation and pruning
//	   - A Non-Null violation at path p sets the nearest nullable ancestor to
//	     null and marks that ancestor path as a tombstone. Any queued tasks
//	     under that path are dropped. Errors are recorded as located errors.
//
//	D. Advance depth
//	   - Move to the next depth with the subfield frontier gathered from object
//	     completions and the async tasks queued at that depth.
//
// A core invariant is preserved: for a query with asynchronous depth d,
// BatchResolveAsync is invoked exactly d times. Purely synchronous descents do
// not increase d.
//
// # Value Completion
//
// The executor implements GraphQL value completion using runtime hooks:
//   - Non-Null: unwrap and complete the inner type. If the inner completion
//     produced null, record a Non-Null violation and propagate null upwards.
//   - List: complete each element recursively with index-aware paths. A null
//     element for a Non-Null inner type nullifies the entire list value.
//   - Leaf (Scalar/Enum): defer to Runtime.SerializeLeafValue to produce a
//     JSON-safe Go value.
//   - Abstract (Interface/Union): defer to Runtime.ResolveType to determine
//     the concrete object type, validate it against the schema, then complete
//     as an object.
//
// See runtime.go for detailed method contracts and guidance (ordering, partial
// success, cancellation via context, batching strategies).
package executor
