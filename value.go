package minijs

import "github.com/cryguy/minijs/internal/capi"

// Kind tags a Value. The numeric values match the wire enum.
type Kind int32

const (
	KindNull Kind = iota
	KindNumber
	KindBool
	KindString
	KindArray
	KindObject
	KindFunction
	KindClass
	KindTask
)

// IsHandle reports whether values of this kind reference engine-owned,
// reference-counted memory.
func (k Kind) IsHandle() bool {
	return k == KindArray || k == KindObject || k == KindFunction || k == KindClass || k == KindTask
}

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindTask:
		return "task"
	}
	return "unknown"
}

// Value is the host-side value. Number, bool and null are pure values;
// strings are host-owned text copied at the boundary; handle kinds own at
// most one reference count on an engine object.
//
// Go has no destructors, so the ownership triple is explicit: Clone is
// copy (retain), Free is destroy (release), and Detach is the single
// transfer point used when a reference crosses into a consuming call.
// Dropping a Value without calling Free leaks its count; dropping a
// borrowed Value (see Array.Get / Object.Get) is safe because it holds no
// count of its own.
type Value struct {
	kind   Kind
	num    float64
	b      bool
	str    string
	handle uintptr
}

// Null returns the null value.
func Null() Value { return Value{} }

// Number wraps a float64.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Bool wraps a bool.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String wraps host-owned text.
func String(s string) Value { return Value{kind: KindString, str: s} }

// HandleValue wraps a raw engine handle. retain must be true when h is
// borrowed and the Value should durably keep it, false when h already
// carries a fresh count the host has not yet accounted for (factory
// results). A null h is legal and yields an inert reference of kind k.
func HandleValue(k Kind, h uintptr, retain bool) Value {
	if retain && h != 0 {
		capi.HandleRetain(h)
	}
	return Value{kind: k, handle: h}
}

// Kind reports the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsHandleKind reports whether the value references engine memory.
func (v Value) IsHandleKind() bool { return v.kind.IsHandle() }

// AsNumber returns the numeric payload; bools coerce to 0/1, everything
// else yields def.
func (v Value) AsNumber(def float64) float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	}
	return def
}

// AsBool returns the boolean payload; numbers coerce to n != 0, everything
// else yields def.
func (v Value) AsBool(def bool) bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0
	}
	return def
}

// AsText returns the string payload, or "" for non-string values.
func (v Value) AsText() string { return v.str }

// Handle returns the raw engine handle (0 for non-handle kinds and
// detached values).
func (v Value) Handle() uintptr { return v.handle }

// Clone duplicates the value; for handle kinds this retains one more
// reference count, so both the original and the clone must be Freed.
func (v Value) Clone() Value {
	if v.kind.IsHandle() && v.handle != 0 {
		capi.HandleRetain(v.handle)
	}
	return v
}

// Free releases the value's reference count (handle kinds only) and leaves
// it null. Safe on non-handle kinds, detached values and repeated calls.
func (v *Value) Free() {
	if v.kind.IsHandle() && v.handle != 0 {
		capi.HandleRelease(v.handle)
	}
	*v = Value{}
}

// Detach strips ownership without touching the reference count and hands
// the raw handle to the caller; the Value becomes null. This is the one
// way a reference enters a consuming call.
func (v *Value) Detach() uintptr {
	h := v.handle
	*v = Value{}
	return h
}

// fromNative translates a wire struct into a host Value. retain must be
// true for borrowed structs that the Value should durably keep (trampoline
// argument delivery) and false for structs already carrying a fresh count
// (factory results) or for transient borrows. String payloads are copied;
// freeing the wire buffer stays with the caller.
func fromNative(nv *capi.Value, retain bool) Value {
	switch Kind(nv.Kind) {
	case KindNumber:
		return Number(nv.Num)
	case KindBool:
		return Bool(nv.Bool != 0)
	case KindString:
		return String(capi.GoText(nv.Str))
	case KindArray, KindObject, KindFunction, KindClass, KindTask:
		return HandleValue(Kind(nv.Kind), nv.Handle, retain)
	}
	return Null()
}

// toNativeArg builds the wire struct for passing v into the engine. The
// second result is a temporary engine-allocated text buffer (0 if none)
// the caller must FreeText after the call returns; consuming calls do not
// free argument strings. The handle, if any, is copied without detaching —
// ownership decisions stay at the call site.
func toNativeArg(v Value) (capi.Value, uintptr) {
	nv := capi.Value{Kind: int32(v.kind)}
	switch v.kind {
	case KindNumber:
		nv.Num = v.num
	case KindBool:
		if v.b {
			nv.Bool = 1
		}
	case KindString:
		nv.Str = capi.AllocText(v.str)
		return nv, nv.Str
	case KindArray, KindObject, KindFunction, KindClass, KindTask:
		nv.Handle = v.handle
	}
	return nv, 0
}
