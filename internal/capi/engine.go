package capi

import "github.com/cryguy/minijs/internal/interp"

// Create allocates a fresh interpreter and returns its handle, or 0 on
// failure.
func Create() uintptr {
	ip := interp.New()
	mu.Lock()
	defer mu.Unlock()
	e := nextEngine
	nextEngine++
	engines[e] = ip
	return e
}

// Destroy tears down an interpreter. Idempotent; handles minted against its
// objects become dangling, which is the documented use-after-free contract.
func Destroy(e uintptr) {
	mu.Lock()
	defer mu.Unlock()
	delete(engines, e)
}

func engine(e uintptr) *interp.Interp {
	mu.Lock()
	defer mu.Unlock()
	return engines[e]
}

// Run executes source (engine-allocated text) and returns the toString of
// the final statement's value as engine-allocated text the caller must
// FreeText. Script failures come back as "Error: ..." text; the run ABI has
// no separate error channel. Returns 0 for an unknown engine handle.
func Run(e uintptr, src uintptr) uintptr {
	ip := engine(e)
	if ip == nil {
		return 0
	}
	v, err := ip.Run(GoText(src))
	if err != nil {
		return AllocText("Error: " + err.Error())
	}
	return AllocText(interp.ToString(v))
}

// Register binds a native global function under name. The engine owns the
// resulting function object; no handle is minted.
func Register(e uintptr, name uintptr, cb NativeFunc, userdata uintptr) {
	ip := engine(e)
	if ip == nil || cb == nil {
		return
	}
	n := GoText(name)
	ip.Declare(n, interp.FunctionValue(wrapNative(n, cb, userdata)))
}

// FunctionCreateNative creates a function object for methods or container
// storage. The caller owns the initial reference count.
func FunctionCreateNative(cb NativeFunc, userdata uintptr) uintptr {
	if cb == nil {
		return 0
	}
	return bind(wrapNative("native", cb, userdata), 1)
}

// GlobalDeclare copies v into global scope. Handle payloads are consumed;
// string payloads stay owned by the caller.
func GlobalDeclare(e uintptr, name uintptr, v *Value) {
	ip := engine(e)
	if ip == nil || v == nil {
		return
	}
	ip.Declare(GoText(name), valueIn(v))
	consume(v)
}

// ClassCreate creates an empty class. The caller owns the initial count;
// declaring it into scope is a separate, consuming step.
func ClassCreate(e uintptr, name uintptr) uintptr {
	if engine(e) == nil {
		return 0
	}
	return bind(interp.NewClass(GoText(name)), 1)
}

// ClassAddMethod adds or overwrites an instance method; "constructor" is
// the initializer new invokes. The function handle is consumed.
func ClassAddMethod(cls uintptr, name uintptr, fn uintptr) {
	c, _ := resolve(cls).(*interp.Class)
	f, _ := resolve(fn).(*interp.Function)
	if c != nil && f != nil {
		c.AddMethod(GoText(name), f)
	}
	HandleRelease(fn)
}

// wrapNative adapts the wire-level callback into the engine's calling
// convention: arguments and this go out as borrowed wire values whose
// string payloads the engine frees after the call; the returned wire value
// is consumed (strings copied then freed with the engine allocator, handle
// counts taken over).
func wrapNative(name string, cb NativeFunc, userdata uintptr) *interp.Function {
	fn := &interp.Function{Name: name}
	fn.Call = func(args []interp.Value, this interp.Value) interp.Value {
		wargs := make([]Value, len(args))
		var temps []uintptr
		for i, a := range args {
			wargs[i] = valueOut(a)
			if wargs[i].Str != 0 {
				temps = append(temps, wargs[i].Str)
			}
		}
		var argv *Value
		if len(wargs) > 0 {
			argv = &wargs[0]
		}
		var thisPtr *Value
		if this.Kind != interp.KindNull {
			w := valueOut(this)
			if w.Str != 0 {
				temps = append(temps, w.Str)
			}
			thisPtr = &w
		}

		ret := cb(int32(len(wargs)), argv, thisPtr, userdata)

		for _, t := range temps {
			FreeText(t)
		}

		out := valueIn(&ret)
		FreeText(ret.Str)
		consume(&ret)
		return out
	}
	return fn
}
