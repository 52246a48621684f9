package minijs

import "errors"

// Failure taxonomy of the binding. All are surfaced synchronously at the
// call that detects them; closure failures inside a trampoline are never
// surfaced as Go errors — they cross the boundary as "Error: ..." string
// results instead (see trampoline.go).
var (
	// ErrEngineCreationFailed means the native factory returned a null
	// interpreter handle.
	ErrEngineCreationFailed = errors.New("minijs: engine creation failed")

	// ErrEmptyName rejects registering a native function under a blank name.
	ErrEmptyName = errors.New("minijs: empty name")

	// ErrTypeMismatch means a typed wrapper was constructed over a Value of
	// the wrong kind.
	ErrTypeMismatch = errors.New("minijs: type mismatch")

	// ErrInvalidHandle means an operation ran against a null or detached
	// handle (or a closed engine).
	ErrInvalidHandle = errors.New("minijs: invalid handle")

	// ErrNativeCallFailed means a handle-producing native call returned null.
	ErrNativeCallFailed = errors.New("minijs: native call failed")
)
