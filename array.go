package minijs

import (
	"fmt"

	"github.com/cryguy/minijs/internal/capi"
)

// Array is a typed view over a Value of kind array. The wrapper adopts the
// Value's reference: freeing the wrapper frees that one count.
type Array struct {
	v Value
}

// AsArray wraps v, which must be of kind array.
func AsArray(v Value) (*Array, error) {
	if v.Kind() != KindArray {
		return nil, fmt.Errorf("%w: expected array, got %s", ErrTypeMismatch, v.Kind())
	}
	return &Array{v: v}, nil
}

// Handle returns the raw engine handle (0 once detached).
func (a *Array) Handle() uintptr { return a.v.Handle() }

// Length reports the element count, 0 on a detached wrapper.
func (a *Array) Length() int {
	if a.v.Handle() == 0 {
		return 0
	}
	return int(capi.ArrayLength(a.v.Handle()))
}

// Get returns element i as a borrowed Value: it holds no reference count
// of its own, so Clone it before storing it past the current call. Out of
// range reads yield null.
func (a *Array) Get(i int) (Value, error) {
	if a.v.Handle() == 0 {
		return Null(), fmt.Errorf("%w: array get", ErrInvalidHandle)
	}
	var out capi.Value
	capi.ArrayGet(a.v.Handle(), int32(i), &out)
	v := fromNative(&out, false)
	capi.FreeText(out.Str)
	return v, nil
}

// Set stores v at index i, growing the array with nulls. If v is a handle
// kind its reference is consumed and v becomes null.
func (a *Array) Set(i int, v *Value) error {
	if a.v.Handle() == 0 {
		return fmt.Errorf("%w: array set", ErrInvalidHandle)
	}
	nv, tmp := toNativeArg(*v)
	if v.IsHandleKind() {
		nv.Handle = v.Detach()
	}
	capi.ArraySet(a.v.Handle(), int32(i), &nv)
	capi.FreeText(tmp)
	return nil
}

// Push appends v. Same ownership contract as Set.
func (a *Array) Push(v *Value) error {
	if a.v.Handle() == 0 {
		return fmt.Errorf("%w: array push", ErrInvalidHandle)
	}
	nv, tmp := toNativeArg(*v)
	if v.IsHandleKind() {
		nv.Handle = v.Detach()
	}
	capi.ArrayPush(a.v.Handle(), &nv)
	capi.FreeText(tmp)
	return nil
}

// Value returns a retained duplicate of the underlying Value; the caller
// must Free it.
func (a *Array) Value() Value { return a.v.Clone() }

// Detach strips ownership and returns the raw handle for a consuming call;
// the wrapper becomes inert.
func (a *Array) Detach() uintptr { return a.v.Detach() }

// Free releases the wrapper's reference count.
func (a *Array) Free() { a.v.Free() }
