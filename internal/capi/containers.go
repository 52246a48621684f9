package capi

import (
	"strings"

	"github.com/cryguy/minijs/internal/interp"
)

// ArrayCreate returns a fresh array handle owned by the caller.
func ArrayCreate() uintptr {
	return bind(interp.NewArray(), 1)
}

// ArrayLength reports the element count; 0 for null/dangling handles.
func ArrayLength(h uintptr) int32 {
	a, _ := resolve(h).(*interp.Array)
	if a == nil {
		return 0
	}
	return int32(len(a.Elems))
}

// ArrayGet writes a borrowed view of element i into out. String payloads
// are engine-allocated and must be FreeText'd by the caller.
func ArrayGet(h uintptr, i int32, out *Value) {
	if out == nil {
		return
	}
	*out = Value{}
	a, _ := resolve(h).(*interp.Array)
	if a == nil {
		return
	}
	*out = valueOut(a.Index(int(i)))
}

// ArraySet stores v at index i, growing with nulls. Handle payloads are
// consumed; string payloads stay caller-owned.
func ArraySet(h uintptr, i int32, v *Value) {
	a, _ := resolve(h).(*interp.Array)
	if a != nil && v != nil {
		a.SetIndex(int(i), valueIn(v))
	}
	consume(v)
}

// ArrayPush appends v. Same ownership contract as ArraySet.
func ArrayPush(h uintptr, v *Value) {
	a, _ := resolve(h).(*interp.Array)
	if a != nil && v != nil {
		a.Push(valueIn(v))
	}
	consume(v)
}

// ObjectCreate returns a fresh object handle owned by the caller.
func ObjectCreate() uintptr {
	return bind(interp.NewObject(), 1)
}

// ObjectHas reports 1 if key is an own property.
func ObjectHas(h uintptr, key uintptr) int32 {
	o, _ := resolve(h).(*interp.Object)
	if o != nil && o.Has(GoText(key)) {
		return 1
	}
	return 0
}

// ObjectGet writes a borrowed view of the property into out (null when
// absent). String payloads must be FreeText'd by the caller.
func ObjectGet(h uintptr, key uintptr, out *Value) {
	if out == nil {
		return
	}
	*out = Value{}
	o, _ := resolve(h).(*interp.Object)
	if o == nil {
		return
	}
	v, _ := o.Get(GoText(key))
	*out = valueOut(v)
}

// ObjectSet stores v under key. Handle payloads are consumed; string
// payloads stay caller-owned.
func ObjectSet(h uintptr, key uintptr, v *Value) {
	o, _ := resolve(h).(*interp.Object)
	if o != nil && v != nil {
		o.Set(GoText(key), valueIn(v))
	}
	consume(v)
}

// ObjectKeys returns the own keys encoded as a compact array of quoted
// strings, e.g. ["a","b"], as engine-allocated text the caller must
// FreeText. Only the five standard backslash escapes are produced.
func ObjectKeys(h uintptr) uintptr {
	o, _ := resolve(h).(*interp.Object)
	if o == nil {
		return AllocText("[]")
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, k := range o.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		for j := 0; j < len(k); j++ {
			switch c := k[j]; c {
			case '\\':
				b.WriteString(`\\`)
			case '"':
				b.WriteString(`\"`)
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			default:
				b.WriteByte(c)
			}
		}
		b.WriteByte('"')
	}
	b.WriteByte(']')
	return AllocText(b.String())
}
