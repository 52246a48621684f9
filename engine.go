package minijs

import (
	"fmt"

	"github.com/cryguy/minijs/internal/capi"
)

// Engine owns one native interpreter instance plus the arena of trampoline
// bindings the interpreter may call into. A session is single-threaded:
// none of its methods may run concurrently from two goroutines, but
// reentrant use (engine → trampoline → engine) on one goroutine is fully
// supported.
type Engine struct {
	it       uintptr
	bindings []*binding
	closed   bool
}

// NewEngine allocates a native interpreter.
func NewEngine() (*Engine, error) {
	it := capi.Create()
	if it == 0 {
		return nil, ErrEngineCreationFailed
	}
	return &Engine{it: it}, nil
}

// Run executes script source and returns the text rendering of the final
// statement's value. Script-level failures come back as "Error: ..." text,
// not as a Go error; the run ABI has no separate error channel.
func (e *Engine) Run(src string) (string, error) {
	if e.closed {
		return "", fmt.Errorf("%w: run on closed engine", ErrInvalidHandle)
	}
	cSrc := capi.AllocText(src)
	defer capi.FreeText(cSrc)

	out := capi.Run(e.it, cSrc)
	if out == 0 {
		return "", fmt.Errorf("%w: run", ErrInvalidHandle)
	}
	s := capi.GoText(out)
	capi.FreeText(out)
	return s, nil
}

// RegisterFunc binds a global native function under name.
func (e *Engine) RegisterFunc(name string, cb Callback) error {
	if e.closed {
		return fmt.Errorf("%w: register on closed engine", ErrInvalidHandle)
	}
	if name == "" {
		return fmt.Errorf("%w: register needs a function name", ErrEmptyName)
	}
	cName := capi.AllocText(name)
	defer capi.FreeText(cName)
	capi.Register(e.it, cName, e.trampoline, e.addBinding(cb))
	return nil
}

// NewFunction creates a function handle for class methods or container
// storage. The caller owns the wrapper's reference.
func (e *Engine) NewFunction(cb Callback) (*Function, error) {
	if e.closed {
		return nil, fmt.Errorf("%w: new function on closed engine", ErrInvalidHandle)
	}
	h := capi.FunctionCreateNative(e.trampoline, e.addBinding(cb))
	if h == 0 {
		return nil, fmt.Errorf("%w: function_create_native returned null", ErrNativeCallFailed)
	}
	return &Function{v: HandleValue(KindFunction, h, false)}, nil
}

// NewClass creates an empty class. Declaring it into global scope is a
// separate, consuming step (DeclareMove of ToValue).
func (e *Engine) NewClass(name string) (*Class, error) {
	if e.closed {
		return nil, fmt.Errorf("%w: new class on closed engine", ErrInvalidHandle)
	}
	cName := capi.AllocText(name)
	defer capi.FreeText(cName)
	h := capi.ClassCreate(e.it, cName)
	if h == 0 {
		return nil, fmt.Errorf("%w: class_create returned null", ErrNativeCallFailed)
	}
	return &Class{v: HandleValue(KindClass, h, false)}, nil
}

// NewObject creates an empty object owned by the caller.
func (e *Engine) NewObject() (*Object, error) {
	if e.closed {
		return nil, fmt.Errorf("%w: new object on closed engine", ErrInvalidHandle)
	}
	h := capi.ObjectCreate()
	if h == 0 {
		return nil, fmt.Errorf("%w: object_create returned null", ErrNativeCallFailed)
	}
	return &Object{v: HandleValue(KindObject, h, false)}, nil
}

// NewArray creates an empty array owned by the caller.
func (e *Engine) NewArray() (*Array, error) {
	if e.closed {
		return nil, fmt.Errorf("%w: new array on closed engine", ErrInvalidHandle)
	}
	h := capi.ArrayCreate()
	if h == 0 {
		return nil, fmt.Errorf("%w: array_create returned null", ErrNativeCallFailed)
	}
	return &Array{v: HandleValue(KindArray, h, false)}, nil
}

// DeclareCopy declares v into global scope while the caller keeps its own
// reference. The declare call consumes one count, so a duplicate is
// retained first; the caller's Value stays live and must still be Freed.
func (e *Engine) DeclareCopy(name string, v Value) error {
	if e.closed {
		return fmt.Errorf("%w: declare on closed engine", ErrInvalidHandle)
	}
	cName := capi.AllocText(name)
	defer capi.FreeText(cName)
	nv, tmp := toNativeArg(v)
	defer capi.FreeText(tmp)
	if v.IsHandleKind() && v.Handle() != 0 {
		// One extra retain pairs with the single count declare consumes.
		capi.HandleRetain(v.Handle())
	}
	capi.GlobalDeclare(e.it, cName, &nv)
	return nil
}

// DeclareMove declares v into global scope, transferring ownership; v
// becomes null whether or not it was a handle kind.
func (e *Engine) DeclareMove(name string, v *Value) error {
	if e.closed {
		return fmt.Errorf("%w: declare on closed engine", ErrInvalidHandle)
	}
	cName := capi.AllocText(name)
	defer capi.FreeText(cName)
	nv, tmp := toNativeArg(*v)
	defer capi.FreeText(tmp)
	isHandle := v.IsHandleKind()
	h := v.Detach()
	if isHandle {
		nv.Handle = h
	}
	capi.GlobalDeclare(e.it, cName, &nv)
	return nil
}

// Close destroys the native interpreter and then drops the trampoline
// bindings (the interpreter can call them right up to teardown).
// Idempotent; every other method fails with ErrInvalidHandle afterwards.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	capi.Destroy(e.it)
	e.bindings = nil
	e.it = 0
	e.closed = true
	return nil
}
