// Package capi is the minijs native API surface: the fixed-layout value
// struct, opaque uintptr handles with engine-owned reference counts, and
// the engine allocator for every text buffer that crosses the boundary.
// Everything above this package (the host binding) sees only these
// functions; everything below it (internal/interp) never sees a wire
// struct or a handle.
package capi

import (
	"sync"

	"modernc.org/libc"

	"github.com/cryguy/minijs/internal/interp"
)

// Value kinds, stable across the boundary.
const (
	KindNull int32 = iota
	KindNumber
	KindBool
	KindString
	KindArray
	KindObject
	KindFunction
	KindClass
	KindTask
)

// Value is the wire struct. Only the fields relevant to Kind are
// meaningful; the rest are zero. Str points into the engine allocator's
// heap (or is 0); Handle is an opaque registry id (or 0).
type Value struct {
	Kind   int32
	Num    float64
	Bool   int32
	Str    uintptr
	Handle uintptr
}

// NativeFunc is the fixed callback signature the engine invokes for native
// functions. argv points at argc consecutive Values, each a borrowed
// reference freed by the engine after the call returns. this is nil for
// plain function calls. The returned Value is consumed by the engine:
// string payloads must come from the engine allocator, handle payloads
// give up one reference count.
type NativeFunc func(argc int32, argv *Value, this *Value, userdata uintptr) Value

type handleEntry struct {
	ref  any
	refs int32
}

var (
	mu      sync.Mutex
	handles = make(map[uintptr]*handleEntry)
	ids     = make(map[any]uintptr) // stable id per engine object
	nextID  uintptr = 1

	engines    = make(map[uintptr]*interp.Interp)
	nextEngine uintptr = 1
)

// --- engine allocator -------------------------------------------------

var (
	tlsOnce sync.Once
	tls     *libc.TLS
)

func allocTLS() *libc.TLS {
	tlsOnce.Do(func() { tls = libc.NewTLS() })
	return tls
}

// Alloc allocates n bytes from the engine allocator.
func Alloc(n int) uintptr {
	if n <= 0 {
		return 0
	}
	return libc.Xmalloc(allocTLS(), libc.Tsize_t(n))
}

// AllocText copies s into an engine-allocated, NUL-terminated buffer.
func AllocText(s string) uintptr {
	p, err := libc.CString(s)
	if err != nil {
		return 0
	}
	return p
}

// FreeText returns an engine-allocated buffer to the engine allocator.
// No-op on 0.
func FreeText(p uintptr) {
	if p == 0 {
		return
	}
	libc.Xfree(allocTLS(), p)
}

// GoText copies an engine-allocated NUL-terminated buffer into a Go string.
func GoText(p uintptr) string {
	if p == 0 {
		return ""
	}
	return libc.GoString(p)
}

// --- handle registry --------------------------------------------------

// bind returns the stable handle for ref, creating or reviving its registry
// entry. initial counts are added on top of any live entry's count.
func bind(ref any, initial int32) uintptr {
	mu.Lock()
	defer mu.Unlock()
	if h, ok := ids[ref]; ok {
		if e, ok := handles[h]; ok {
			e.refs += initial
		} else {
			// Entry was dropped at zero but the object survived inside
			// the engine graph; revive it under the same id.
			handles[h] = &handleEntry{ref: ref, refs: initial}
		}
		return h
	}
	h := nextID
	nextID++
	ids[ref] = h
	handles[h] = &handleEntry{ref: ref, refs: initial}
	return h
}

// resolve returns the engine object behind a handle, or nil for 0 or a
// fully released handle.
func resolve(h uintptr) any {
	if h == 0 {
		return nil
	}
	mu.Lock()
	defer mu.Unlock()
	if e, ok := handles[h]; ok {
		return e.ref
	}
	return nil
}

// HandleRetain increments a handle's reference count. No-op on 0 and on
// handles the engine has already reclaimed.
func HandleRetain(h uintptr) {
	if h == 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	if e, ok := handles[h]; ok {
		e.refs++
	}
}

// HandleRelease decrements a handle's reference count; at zero the engine
// reclaims the host's view of the object. No-op on 0 and on unknown
// handles.
func HandleRelease(h uintptr) {
	if h == 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	e, ok := handles[h]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(handles, h)
	}
}

// HandleRefs reports the current count, or -1 for a handle with no live
// entry. Exists for protocol tests; the C surface has no equivalent.
func HandleRefs(h uintptr) int32 {
	mu.Lock()
	defer mu.Unlock()
	if e, ok := handles[h]; ok {
		return e.refs
	}
	return -1
}

// --- wire <-> engine value translation --------------------------------

// valueIn converts a caller-owned wire value into an engine value. String
// payloads are copied; handle payloads are resolved but no count changes
// hands here (consuming ops call consume separately).
func valueIn(v *Value) interp.Value {
	if v == nil {
		return interp.NullValue()
	}
	switch v.Kind {
	case KindNumber:
		return interp.NumberValue(v.Num)
	case KindBool:
		return interp.BoolValue(v.Bool != 0)
	case KindString:
		return interp.StringValue(GoText(v.Str))
	case KindArray, KindObject, KindFunction, KindClass, KindTask:
		return interp.FromRef(resolve(v.Handle))
	}
	return interp.NullValue()
}

// valueOut converts an engine value into a borrowed wire value: strings
// are freshly engine-allocated (receiver must FreeText), handles carry no
// new count.
func valueOut(v interp.Value) Value {
	out := Value{Kind: int32(v.Kind)}
	switch v.Kind {
	case interp.KindNumber:
		out.Num = v.Num
	case interp.KindBool:
		if v.Bool {
			out.Bool = 1
		}
	case interp.KindString:
		out.Str = AllocText(v.Str)
	default:
		if ref := v.Ref(); ref != nil {
			out.Handle = bind(ref, 0)
		} else if v.Kind.IsHandle() {
			out.Kind = KindNull
		}
	}
	return out
}

// consume takes the one reference count embedded in a consumed wire value.
func consume(v *Value) {
	if v == nil {
		return
	}
	switch v.Kind {
	case KindArray, KindObject, KindFunction, KindClass, KindTask:
		HandleRelease(v.Handle)
	}
}
