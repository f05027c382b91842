// Package federation layers the Apollo Federation subgraph surface over a
// base executor runtime.
//
// Wrap extends a schema with the federation service types (_Any, _Service,
// the _Entity union) and the Query._service and Query._entities root fields,
// and returns a runtime that answers them:
//
//   - _service resolves synchronously to the subgraph SDL.
//   - _entities is an async field. Each representation in the batch is
//     classified against the @key descriptors read from the schema, handed to
//     the matching type's ReferenceResolver, and written back into its
//     positional slot. Representations are resolved concurrently; result
//     order always mirrors argument order.
//
// Failure of one slot never disturbs its neighbors. Unknown types and
// resolver failures surface as located field errors via the executor's
// element-error channel; representations that match no key, and references
// whose entity does not exist, degrade to null without an error.
package federation
