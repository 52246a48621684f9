// Package interp is the engine behind the minijs C-style API: a small
// JS-like interpreter whose object graph is reached from the host only
// through the boundary layer's handles. It evaluates statements eagerly and
// synchronously; reentrant calls (a native function running more script)
// simply nest on the same goroutine.
package interp

import (
	"fmt"
	"math"
)

// Interp is one interpreter instance. Not safe for concurrent use.
type Interp struct {
	globals map[string]Value
}

func New() *Interp {
	return &Interp{globals: make(map[string]Value)}
}

// Declare binds a value into global scope, overwriting any previous binding.
func (ip *Interp) Declare(name string, v Value) {
	ip.globals[name] = v
}

// Global looks up a global binding.
func (ip *Interp) Global(name string) (Value, bool) {
	v, ok := ip.globals[name]
	return v, ok
}

// Run evaluates source and returns the value of the last statement.
func (ip *Interp) Run(src string) (Value, error) {
	stmts, err := parse(src)
	if err != nil {
		return NullValue(), err
	}
	result := NullValue()
	for _, s := range stmts {
		result, err = ip.eval(s)
		if err != nil {
			return NullValue(), err
		}
	}
	return result, nil
}

func (ip *Interp) eval(n node) (Value, error) {
	switch nd := n.(type) {
	case nodeNumber:
		return NumberValue(nd.val), nil
	case nodeString:
		return StringValue(nd.val), nil
	case nodeBool:
		return BoolValue(nd.val), nil
	case nodeNull:
		return NullValue(), nil

	case nodeIdent:
		v, ok := ip.globals[nd.name]
		if !ok {
			return NullValue(), fmt.Errorf("line %d: %s is not defined", nd.line, nd.name)
		}
		return v, nil

	case nodeVar:
		v, err := ip.eval(nd.init)
		if err != nil {
			return NullValue(), err
		}
		ip.globals[nd.name] = v
		return v, nil

	case nodeArrayLit:
		arr := NewArray()
		for _, e := range nd.elems {
			v, err := ip.eval(e)
			if err != nil {
				return NullValue(), err
			}
			arr.Push(v)
		}
		return ArrayValue(arr), nil

	case nodeObjectLit:
		obj := NewObject()
		for i, key := range nd.keys {
			v, err := ip.eval(nd.vals[i])
			if err != nil {
				return NullValue(), err
			}
			obj.Set(key, v)
		}
		return ObjectValue(obj), nil

	case nodeUnary:
		x, err := ip.eval(nd.x)
		if err != nil {
			return NullValue(), err
		}
		return NumberValue(-x.ToNumber()), nil

	case nodeBinary:
		return ip.evalBinary(nd)

	case nodeAssign:
		return ip.evalAssign(nd)

	case nodeMember:
		obj, err := ip.eval(nd.obj)
		if err != nil {
			return NullValue(), err
		}
		return ip.member(obj, nd.name, nd.line)

	case nodeIndex:
		obj, err := ip.eval(nd.obj)
		if err != nil {
			return NullValue(), err
		}
		idx, err := ip.eval(nd.index)
		if err != nil {
			return NullValue(), err
		}
		return ip.index(obj, idx, nd.line)

	case nodeCall:
		return ip.evalCall(nd)

	case nodeNew:
		return ip.evalNew(nd)
	}
	return NullValue(), fmt.Errorf("unhandled node %T", n)
}

func (ip *Interp) evalBinary(nd nodeBinary) (Value, error) {
	lhs, err := ip.eval(nd.lhs)
	if err != nil {
		return NullValue(), err
	}
	rhs, err := ip.eval(nd.rhs)
	if err != nil {
		return NullValue(), err
	}
	switch nd.op {
	case "+":
		if lhs.Kind == KindString || rhs.Kind == KindString {
			return StringValue(ToString(lhs) + ToString(rhs)), nil
		}
		return NumberValue(lhs.ToNumber() + rhs.ToNumber()), nil
	case "-":
		return NumberValue(lhs.ToNumber() - rhs.ToNumber()), nil
	case "*":
		return NumberValue(lhs.ToNumber() * rhs.ToNumber()), nil
	case "/":
		d := rhs.ToNumber()
		if d == 0 {
			n := lhs.ToNumber()
			switch {
			case n > 0:
				return NumberValue(math.Inf(1)), nil
			case n < 0:
				return NumberValue(math.Inf(-1)), nil
			}
			return NumberValue(math.NaN()), nil
		}
		return NumberValue(lhs.ToNumber() / d), nil
	}
	return NullValue(), fmt.Errorf("line %d: unknown operator %q", nd.line, nd.op)
}

func (ip *Interp) evalAssign(nd nodeAssign) (Value, error) {
	v, err := ip.eval(nd.value)
	if err != nil {
		return NullValue(), err
	}
	switch target := nd.target.(type) {
	case nodeIdent:
		ip.globals[target.name] = v
		return v, nil

	case nodeMember:
		obj, err := ip.eval(target.obj)
		if err != nil {
			return NullValue(), err
		}
		if obj.Kind != KindObject || obj.Obj == nil {
			return NullValue(), fmt.Errorf("line %d: cannot set property %s on %s", target.line, target.name, ToString(obj))
		}
		obj.Obj.Set(target.name, v)
		return v, nil

	case nodeIndex:
		obj, err := ip.eval(target.obj)
		if err != nil {
			return NullValue(), err
		}
		idx, err := ip.eval(target.index)
		if err != nil {
			return NullValue(), err
		}
		switch {
		case obj.Kind == KindArray && obj.Arr != nil:
			obj.Arr.SetIndex(int(idx.ToNumber()), v)
		case obj.Kind == KindObject && obj.Obj != nil:
			obj.Obj.Set(ToString(idx), v)
		default:
			return NullValue(), fmt.Errorf("line %d: cannot index %s", target.line, ToString(obj))
		}
		return v, nil
	}
	return NullValue(), fmt.Errorf("line %d: invalid assignment target", nd.line)
}

// member resolves obj.name: own fields first, then class methods; arrays
// expose length.
func (ip *Interp) member(obj Value, name string, line int) (Value, error) {
	switch {
	case obj.Kind == KindObject && obj.Obj != nil:
		if v, ok := obj.Obj.Get(name); ok {
			return v, nil
		}
		if obj.Obj.Class != nil {
			if m, ok := obj.Obj.Class.Method(name); ok {
				return FunctionValue(m), nil
			}
		}
		return NullValue(), nil
	case obj.Kind == KindArray && obj.Arr != nil:
		if name == "length" {
			return NumberValue(float64(len(obj.Arr.Elems))), nil
		}
		return NullValue(), nil
	}
	return NullValue(), fmt.Errorf("line %d: cannot read property %s of %s", line, name, ToString(obj))
}

func (ip *Interp) index(obj, idx Value, line int) (Value, error) {
	switch {
	case obj.Kind == KindArray && obj.Arr != nil:
		return obj.Arr.Index(int(idx.ToNumber())), nil
	case obj.Kind == KindObject && obj.Obj != nil:
		v, _ := obj.Obj.Get(ToString(idx))
		return v, nil
	}
	return NullValue(), fmt.Errorf("line %d: cannot index %s", line, ToString(obj))
}

func (ip *Interp) evalCall(nd nodeCall) (Value, error) {
	// A member callee carries its receiver as this.
	this := NullValue()
	var fn Value
	if m, ok := nd.callee.(nodeMember); ok {
		recv, err := ip.eval(m.obj)
		if err != nil {
			return NullValue(), err
		}
		f, err := ip.member(recv, m.name, m.line)
		if err != nil {
			return NullValue(), err
		}
		this = recv
		fn = f
	} else {
		f, err := ip.eval(nd.callee)
		if err != nil {
			return NullValue(), err
		}
		fn = f
	}

	if fn.Kind != KindFunction || fn.Fn == nil || fn.Fn.Call == nil {
		return NullValue(), fmt.Errorf("line %d: not a function", nd.line)
	}
	args, err := ip.evalArgs(nd.args)
	if err != nil {
		return NullValue(), err
	}
	return fn.Fn.Call(args, this), nil
}

func (ip *Interp) evalNew(nd nodeNew) (Value, error) {
	cv, ok := ip.globals[nd.class]
	if !ok || cv.Kind != KindClass || cv.Cls == nil {
		return NullValue(), fmt.Errorf("line %d: %s is not a class", nd.line, nd.class)
	}
	args, err := ip.evalArgs(nd.args)
	if err != nil {
		return NullValue(), err
	}
	inst := NewObject()
	inst.Class = cv.Cls
	if ctor, ok := cv.Cls.Method("constructor"); ok && ctor.Call != nil {
		ctor.Call(args, ObjectValue(inst))
	}
	return ObjectValue(inst), nil
}

func (ip *Interp) evalArgs(nodes []node) ([]Value, error) {
	args := make([]Value, 0, len(nodes))
	for _, a := range nodes {
		v, err := ip.eval(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}
