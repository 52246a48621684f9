package minijs

import (
	"fmt"

	"github.com/cryguy/minijs/internal/capi"
)

// ConstructorMethod is the distinguished method name the engine invokes
// when a script constructs an instance with new.
const ConstructorMethod = "constructor"

// Class is a typed view over a Value of kind class.
type Class struct {
	v Value
}

// AsClass wraps v, which must be of kind class.
func AsClass(v Value) (*Class, error) {
	if v.Kind() != KindClass {
		return nil, fmt.Errorf("%w: expected class, got %s", ErrTypeMismatch, v.Kind())
	}
	return &Class{v: v}, nil
}

// Handle returns the raw engine handle (0 once detached).
func (c *Class) Handle() uintptr { return c.v.Handle() }

// AddMethod adds or overwrites an instance method. On success the
// function's handle is consumed and fn becomes inert; a failed call
// leaves fn untouched.
func (c *Class) AddMethod(name string, fn *Function) error {
	if c.v.Handle() == 0 {
		return fmt.Errorf("%w: add method on class", ErrInvalidHandle)
	}
	if name == "" {
		return fmt.Errorf("%w: method name", ErrEmptyName)
	}
	if fn == nil || fn.Handle() == 0 {
		return fmt.Errorf("%w: add method %q needs a live function", ErrInvalidHandle, name)
	}
	cName := capi.AllocText(name)
	defer capi.FreeText(cName)
	capi.ClassAddMethod(c.v.Handle(), cName, fn.Detach())
	return nil
}

// ToValue moves the class value out for declaration into global scope; the
// wrapper becomes inert. The returned Value still owns the wrapper's count.
func (c *Class) ToValue() Value {
	v := c.v
	c.v = Value{}
	return v
}

// Detach strips ownership and returns the raw handle; the wrapper becomes
// inert.
func (c *Class) Detach() uintptr { return c.v.Detach() }

// Free releases the wrapper's reference count.
func (c *Class) Free() { c.v.Free() }
