package interp

import (
	"math"
	"strconv"
	"strings"
)

// Kind tags an engine value. The numbering matches the wire enum so the
// boundary layer can copy it through untouched.
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

// IsHandle reports whether values of this kind live in the engine's object
// graph (and therefore cross the boundary as handles).
func (k Kind) IsHandle() bool {
	return k == KindArray || k == KindObject || k == KindFunction || k == KindClass || k == KindTask
}

// Value is an engine-side value. Exactly the fields relevant to Kind are
// set; the rest stay zero.
type Value struct {
	Kind Kind
	Num  float64
	Bool bool
	Str  string
	Arr  *Array
	Obj  *Object
	Fn   *Function
	Cls  *Class
}

func NullValue() Value            { return Value{Kind: KindNull} }
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Num: n} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func StringValue(s string) Value  { return Value{Kind: KindString, Str: s} }

func ArrayValue(a *Array) Value       { return Value{Kind: KindArray, Arr: a} }
func ObjectValue(o *Object) Value     { return Value{Kind: KindObject, Obj: o} }
func FunctionValue(f *Function) Value { return Value{Kind: KindFunction, Fn: f} }
func ClassValue(c *Class) Value       { return Value{Kind: KindClass, Cls: c} }

// Ref returns the graph object backing a handle-kind value, or nil.
func (v Value) Ref() any {
	switch v.Kind {
	case KindArray:
		if v.Arr != nil {
			return v.Arr
		}
	case KindObject:
		if v.Obj != nil {
			return v.Obj
		}
	case KindFunction:
		if v.Fn != nil {
			return v.Fn
		}
	case KindClass:
		if v.Cls != nil {
			return v.Cls
		}
	}
	return nil
}

// FromRef rebuilds a handle-kind value from a graph object previously
// obtained via Ref. A nil or foreign ref yields null.
func FromRef(ref any) Value {
	switch r := ref.(type) {
	case *Array:
		return ArrayValue(r)
	case *Object:
		return ObjectValue(r)
	case *Function:
		return FunctionValue(r)
	case *Class:
		return ClassValue(r)
	}
	return NullValue()
}

// ToNumber converts following the loose rules the toString/arith paths use.
func (v Value) ToNumber() float64 {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return math.NaN()
		}
		return n
	}
	return 0
}

// ToString renders a value the way run() reports its final result.
func ToString(v Value) string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindNumber:
		return formatNumber(v.Num)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindString:
		return v.Str
	case KindArray:
		if v.Arr == nil {
			return ""
		}
		parts := make([]string, len(v.Arr.Elems))
		for i, e := range v.Arr.Elems {
			parts[i] = ToString(e)
		}
		return strings.Join(parts, ",")
	case KindObject:
		return "[object Object]"
	case KindFunction:
		name := ""
		if v.Fn != nil {
			name = v.Fn.Name
		}
		return "function " + name
	case KindClass:
		name := ""
		if v.Cls != nil {
			name = v.Cls.Name
		}
		return "class " + name
	case KindTask:
		return "[object Task]"
	}
	return "null"
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
