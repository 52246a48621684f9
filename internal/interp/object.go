package interp

// Array is a growable list of values.
type Array struct {
	Elems []Value
}

func NewArray() *Array { return &Array{} }

// SetIndex grows the array with nulls as needed; negative indexes are ignored.
func (a *Array) SetIndex(i int, v Value) {
	if i < 0 {
		return
	}
	for len(a.Elems) <= i {
		a.Elems = append(a.Elems, NullValue())
	}
	a.Elems[i] = v
}

// Index returns null for out-of-range reads, like a missing property.
func (a *Array) Index(i int) Value {
	if i < 0 || i >= len(a.Elems) {
		return NullValue()
	}
	return a.Elems[i]
}

func (a *Array) Push(v Value) { a.Elems = append(a.Elems, v) }

// Object is a string-keyed record with insertion-ordered keys and an
// optional class for method dispatch.
type Object struct {
	Class  *Class
	fields map[string]Value
	order  []string
}

func NewObject() *Object {
	return &Object{fields: make(map[string]Value)}
}

func (o *Object) Has(key string) bool {
	_, ok := o.fields[key]
	return ok
}

func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.fields[key]
	return v, ok
}

func (o *Object) Set(key string, v Value) {
	if _, ok := o.fields[key]; !ok {
		o.order = append(o.order, key)
	}
	o.fields[key] = v
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.order))
	copy(out, o.order)
	return out
}

// NativeFn is an engine-invocable host function. The boundary layer wraps
// the wire-level callback into this shape.
type NativeFn func(args []Value, this Value) Value

// Function is a callable. The engine has no script function literals; every
// function body is native.
type Function struct {
	Name string
	Call NativeFn
}

// Class holds named methods; "constructor" is invoked by new.
type Class struct {
	Name    string
	methods map[string]*Function
}

func NewClass(name string) *Class {
	return &Class{Name: name, methods: make(map[string]*Function)}
}

// AddMethod adds or overwrites an instance method.
func (c *Class) AddMethod(name string, fn *Function) {
	c.methods[name] = fn
}

func (c *Class) Method(name string) (*Function, bool) {
	fn, ok := c.methods[name]
	return fn, ok
}
