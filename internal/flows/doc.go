// Package flows contains pure-function orchestrators for every Engine operation.
//
// RunLogin and RunValidate accept a typed dependency struct and return
// classified outcomes without side-effects beyond those dependencies. The root
// package maps each outcome to its error taxonomy.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the user store, hashing primitive, token
// manager, cache connection, audit dispatcher, and metrics. They do NOT own any
// of these resources; ownership stays with the Engine. The one exception is the
// per-invocation cache connection, which a flow opens and always releases.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goLogin (to avoid import cycles).
//   - Perform I/O directly; all I/O is mediated through dependency functions.
package flows
