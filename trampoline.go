package minijs

import (
	"fmt"
	"unsafe"

	"github.com/cryguy/minijs/internal/capi"
)

// Callback is a host closure invocable from script. args and this are
// delivered retained, owned by the trampoline; a closure that wants to
// keep or consume one must Clone it first. The returned Value is consumed
// by the engine. A non-nil error (or a panic) never crosses the boundary:
// the script sees a string result prefixed with "Error: " instead.
type Callback func(args []Value, this Value) (Value, error)

// binding pins one registered closure. The arena in Engine keeps bindings
// alive until Close, because the interpreter may invoke any of them up to
// its own teardown.
type binding struct {
	cb Callback
}

// addBinding stores cb in the arena and returns its userdata index.
func (e *Engine) addBinding(cb Callback) uintptr {
	e.bindings = append(e.bindings, &binding{cb: cb})
	return uintptr(len(e.bindings) - 1)
}

func (e *Engine) bindingAt(userdata uintptr) *binding {
	if int(userdata) >= len(e.bindings) {
		return nil
	}
	return e.bindings[userdata]
}

// trampoline is the fixed-signature entry point the engine calls for every
// registered native function and method. It runs on the engine's calling
// goroutine, synchronously; reentering the engine from the closure is
// allowed.
func (e *Engine) trampoline(argc int32, argv *capi.Value, this *capi.Value, userdata uintptr) (out capi.Value) {
	defer func() {
		if p := recover(); p != nil {
			out = errorResult(fmt.Sprint(p))
		}
	}()

	b := e.bindingAt(userdata)
	if b == nil || b.cb == nil {
		return capi.Value{Kind: capi.KindNull}
	}

	// Arguments and this arrive borrowed; retain them so the normal Free
	// path below is balanced no matter what the closure did with them.
	args := make([]Value, 0, argc)
	if argc > 0 && argv != nil {
		wire := unsafe.Slice(argv, int(argc))
		for i := range wire {
			args = append(args, fromNative(&wire[i], true))
		}
	}
	thisVal := Null()
	if this != nil {
		thisVal = fromNative(this, true)
	}
	defer func() {
		for i := range args {
			args[i].Free()
		}
		thisVal.Free()
	}()

	ret, err := b.cb(args, thisVal)
	if err != nil {
		ret.Free()
		return errorResult(err.Error())
	}
	return toNativeResult(&ret)
}

// toNativeResult converts the closure's return for handing to the engine:
// primitives copy by value, strings are re-allocated with the engine
// allocator (the engine frees them with its own free), and handle kinds
// are detached — the engine treats the return exactly like a consuming
// call.
func toNativeResult(v *Value) capi.Value {
	nv := capi.Value{Kind: int32(v.Kind())}
	switch v.Kind() {
	case KindNumber:
		nv.Num = v.AsNumber(0)
	case KindBool:
		if v.AsBool(false) {
			nv.Bool = 1
		}
	case KindString:
		nv.Str = capi.AllocText(v.AsText())
	case KindArray, KindObject, KindFunction, KindClass, KindTask:
		nv.Handle = v.Detach()
	}
	return nv
}

// errorResult wraps a contained closure failure as a script-visible string.
func errorResult(msg string) capi.Value {
	return capi.Value{
		Kind: capi.KindString,
		Str:  capi.AllocText("Error: " + msg),
	}
}
