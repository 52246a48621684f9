package minijs

import (
	"fmt"

	"github.com/cryguy/minijs/internal/capi"
)

// Object is a typed view over a Value of kind object. The wrapper adopts
// the Value's reference: freeing the wrapper frees that one count.
type Object struct {
	v Value
}

// AsObject wraps v, which must be of kind object.
func AsObject(v Value) (*Object, error) {
	if v.Kind() != KindObject {
		return nil, fmt.Errorf("%w: expected object, got %s", ErrTypeMismatch, v.Kind())
	}
	return &Object{v: v}, nil
}

// Handle returns the raw engine handle (0 once detached).
func (o *Object) Handle() uintptr { return o.v.Handle() }

// Has reports whether key is an own property. False on a detached wrapper.
func (o *Object) Has(key string) bool {
	if o.v.Handle() == 0 {
		return false
	}
	cKey := capi.AllocText(key)
	defer capi.FreeText(cKey)
	return capi.ObjectHas(o.v.Handle(), cKey) != 0
}

// Get returns the property as a borrowed Value (no count of its own; Clone
// to keep). Missing keys yield null.
func (o *Object) Get(key string) (Value, error) {
	if o.v.Handle() == 0 {
		return Null(), fmt.Errorf("%w: object get", ErrInvalidHandle)
	}
	cKey := capi.AllocText(key)
	defer capi.FreeText(cKey)
	var out capi.Value
	capi.ObjectGet(o.v.Handle(), cKey, &out)
	v := fromNative(&out, false)
	capi.FreeText(out.Str)
	return v, nil
}

// Set stores v under key. If v is a handle kind its reference is consumed
// and v becomes null.
func (o *Object) Set(key string, v *Value) error {
	if o.v.Handle() == 0 {
		return fmt.Errorf("%w: object set", ErrInvalidHandle)
	}
	cKey := capi.AllocText(key)
	defer capi.FreeText(cKey)
	nv, tmp := toNativeArg(*v)
	if v.IsHandleKind() {
		nv.Handle = v.Detach()
	}
	capi.ObjectSet(o.v.Handle(), cKey, &nv)
	capi.FreeText(tmp)
	return nil
}

// Keys returns the own property names in insertion order, parsed from the
// engine's compact array-of-quoted-strings wire format.
func (o *Object) Keys() ([]string, error) {
	if o.v.Handle() == 0 {
		return nil, fmt.Errorf("%w: object keys", ErrInvalidHandle)
	}
	p := capi.ObjectKeys(o.v.Handle())
	if p == 0 {
		return nil, nil
	}
	s := capi.GoText(p)
	capi.FreeText(p)
	return parseKeyList(s), nil
}

// Value returns a retained duplicate of the underlying Value; the caller
// must Free it.
func (o *Object) Value() Value { return o.v.Clone() }

// Detach strips ownership and returns the raw handle; the wrapper becomes
// inert.
func (o *Object) Detach() uintptr { return o.v.Detach() }

// Free releases the wrapper's reference count.
func (o *Object) Free() { o.v.Free() }

// parseKeyList decodes ["a","b"]. Deliberately not a JSON parser: the wire
// format only guarantees string arrays with the \\ \" \n \r \t escapes.
func parseKeyList(s string) []string {
	var keys []string
	i := 0
	skipWS := func() {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\r' || s[i] == '\n') {
			i++
		}
	}

	skipWS()
	if i >= len(s) || s[i] != '[' {
		return keys
	}
	i++

	for {
		skipWS()
		if i >= len(s) || s[i] == ']' {
			return keys
		}
		if s[i] != '"' {
			return keys
		}
		i++

		var cur []byte
		for i < len(s) {
			c := s[i]
			i++
			if c == '"' {
				break
			}
			if c == '\\' && i < len(s) {
				e := s[i]
				i++
				switch e {
				case 'n':
					cur = append(cur, '\n')
				case 'r':
					cur = append(cur, '\r')
				case 't':
					cur = append(cur, '\t')
				default:
					cur = append(cur, e)
				}
				continue
			}
			cur = append(cur, c)
		}
		keys = append(keys, string(cur))

		skipWS()
		if i < len(s) && s[i] == ',' {
			i++
		}
	}
}
