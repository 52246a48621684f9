package minijs

import "fmt"

// Function is an opaque typed view over a Value of kind function. Its only
// real operation is Detach, used when handing the function to a consuming
// call such as Class.AddMethod or Engine.DeclareMove.
type Function struct {
	v Value
}

// AsFunction wraps v, which must be of kind function.
func AsFunction(v Value) (*Function, error) {
	if v.Kind() != KindFunction {
		return nil, fmt.Errorf("%w: expected function, got %s", ErrTypeMismatch, v.Kind())
	}
	return &Function{v: v}, nil
}

// Handle returns the raw engine handle (0 once detached).
func (f *Function) Handle() uintptr { return f.v.Handle() }

// Value returns a retained duplicate of the underlying Value; the caller
// must Free it.
func (f *Function) Value() Value { return f.v.Clone() }

// Detach strips ownership and returns the raw handle; the wrapper becomes
// inert.
func (f *Function) Detach() uintptr { return f.v.Detach() }

// Free releases the wrapper's reference count.
func (f *Function) Free() { f.v.Free() }
