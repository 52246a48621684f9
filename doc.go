// Package minijs is the host binding for the minijs script engine: a
// dynamically-typed Value transport, an explicit handle reference-counting
// discipline, and a trampoline that carries engine-invoked calls into Go
// closures and back.
//
// Ownership in one paragraph: factory results (NewArray, NewObject,
// NewClass, NewFunction) arrive owning one reference count. Clone retains,
// Free releases, Detach transfers. Consuming operations (Set, Push,
// AddMethod, DeclareMove, returning a handle from a Callback) take the one
// count out of the value they are given and leave it null; borrowing
// operations (Get) hand back a value that owns no count and must be Cloned
// to outlive the call. The engine is the only party that ever frees engine
// memory — the host just retains and releases.
//
// A session is strictly single-threaded, but the engine may reenter the
// host (and the host the engine) on the same goroutine to any depth.
package minijs
