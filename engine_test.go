package minijs

import (
	"errors"
	"strings"
	"testing"

	"github.com/cryguy/minijs/internal/capi"
)

func TestHostAddScenario(t *testing.T) {
	e := newTestEngine(t)

	err := e.RegisterFunc("hostAdd", func(args []Value, this Value) (Value, error) {
		a, b := 0.0, 0.0
		if len(args) > 0 {
			a = args[0].AsNumber(0)
		}
		if len(args) > 1 {
			b = args[1].AsNumber(0)
		}
		return Number(a + b), nil
	})
	if err != nil {
		t.Fatalf("RegisterFunc: %v", err)
	}

	got, err := e.Run("hostAdd(2, 3)")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "5" {
		t.Fatalf("hostAdd(2, 3) = %q, want 5", got)
	}
}

// declareCounter builds the Counter class from the host side: the
// constructor stores its argument in x, inc bumps it and returns the
// new value.
func declareCounter(t *testing.T, e *Engine) {
	t.Helper()
	cls, err := e.NewClass("Counter")
	if err != nil {
		t.Fatal(err)
	}

	ctor, err := e.NewFunction(func(args []Value, this Value) (Value, error) {
		self, err := AsObject(this.Clone())
		if err != nil {
			return Null(), err
		}
		defer self.Free()
		x := Number(0)
		if len(args) > 0 {
			x = Number(args[0].AsNumber(0))
		}
		if err := self.Set("x", &x); err != nil {
			return Null(), err
		}
		return Null(), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := cls.AddMethod(ConstructorMethod, ctor); err != nil {
		t.Fatal(err)
	}

	inc, err := e.NewFunction(func(args []Value, this Value) (Value, error) {
		self, err := AsObject(this.Clone())
		if err != nil {
			return Null(), err
		}
		defer self.Free()
		cur, err := self.Get("x")
		if err != nil {
			return Null(), err
		}
		next := Number(cur.AsNumber(0) + 1)
		res := next
		if err := self.Set("x", &next); err != nil {
			return Null(), err
		}
		return res, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := cls.AddMethod("inc", inc); err != nil {
		t.Fatal(err)
	}

	cv := cls.ToValue()
	if err := e.DeclareMove("Counter", &cv); err != nil {
		t.Fatal(err)
	}
	if cv.Kind() != KindNull || cv.Handle() != 0 {
		t.Fatal("DeclareMove should leave the source null")
	}
}

func TestCounterScenario(t *testing.T) {
	e := newTestEngine(t)
	declareCounter(t, e)

	got, err := e.Run("var c = new Counter(5); c.inc()")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "6" {
		t.Fatalf("counter = %q, want 6", got)
	}

	// Instance state persists across runs.
	got, err = e.Run("c.inc()")
	if err != nil {
		t.Fatal(err)
	}
	if got != "7" {
		t.Fatalf("second inc = %q, want 7", got)
	}
}

func TestAddMethodConsumesFunction(t *testing.T) {
	e := newTestEngine(t)
	cls, err := e.NewClass("C")
	if err != nil {
		t.Fatal(err)
	}
	defer cls.Free()

	fn, err := e.NewFunction(func(args []Value, this Value) (Value, error) {
		return Null(), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	h := fn.Handle()
	if got := capi.HandleRefs(h); got != 1 {
		t.Fatalf("fresh function refs = %d", got)
	}
	if err := cls.AddMethod("m", fn); err != nil {
		t.Fatal(err)
	}
	if fn.Handle() != 0 {
		t.Fatal("AddMethod should detach the function wrapper")
	}
	if got := capi.HandleRefs(h); got != -1 {
		t.Fatalf("consumed function refs = %d, want reclaimed", got)
	}
}

func TestCallbackErrorContained(t *testing.T) {
	e := newTestEngine(t)

	if err := e.RegisterFunc("boom", func(args []Value, this Value) (Value, error) {
		return Null(), errors.New("kaput")
	}); err != nil {
		t.Fatal(err)
	}

	got, err := e.Run("boom()")
	if err != nil {
		t.Fatalf("Run itself must not fail: %v", err)
	}
	if !strings.HasPrefix(got, "Error: ") || !strings.Contains(got, "kaput") {
		t.Fatalf("contained failure = %q", got)
	}

	// The session stays usable after a contained failure.
	got, err = e.Run("1 + 1")
	if err != nil || got != "2" {
		t.Fatalf("follow-up run = %q, %v", got, err)
	}
}

func TestCallbackPanicContained(t *testing.T) {
	e := newTestEngine(t)

	if err := e.RegisterFunc("explode", func(args []Value, this Value) (Value, error) {
		panic("unexpected state")
	}); err != nil {
		t.Fatal(err)
	}

	got, err := e.Run("explode()")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.HasPrefix(got, "Error: ") || !strings.Contains(got, "unexpected state") {
		t.Fatalf("contained panic = %q", got)
	}
}

func TestRegisterEmptyName(t *testing.T) {
	e := newTestEngine(t)
	err := e.RegisterFunc("", func(args []Value, this Value) (Value, error) {
		return Null(), nil
	})
	if !errors.Is(err, ErrEmptyName) {
		t.Fatalf("want ErrEmptyName, got %v", err)
	}
}

func TestDeclareCopyKeepsCaller(t *testing.T) {
	e := newTestEngine(t)
	arr, err := e.NewArray()
	if err != nil {
		t.Fatal(err)
	}
	one := Number(1)
	if err := arr.Push(&one); err != nil {
		t.Fatal(err)
	}

	v := arr.Value()
	if err := e.DeclareCopy("a", v); err != nil {
		t.Fatal(err)
	}
	// The extra retain pairs with declare's consume: the caller keeps
	// both of its counts and the Value stays live.
	if v.Handle() == 0 {
		t.Fatal("DeclareCopy must not detach the caller's Value")
	}
	if got := capi.HandleRefs(arr.Handle()); got != 2 {
		t.Fatalf("refs after copy-declare = %d, want 2 (wrapper + value)", got)
	}

	got, err := e.Run("a.length")
	if err != nil || got != "1" {
		t.Fatalf("a.length = %q, %v", got, err)
	}

	v.Free()
	arr.Free()
}

func TestDeclareMovePrimitives(t *testing.T) {
	e := newTestEngine(t)
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"n", Number(2.5), "2.5"},
		{"b", Bool(true), "true"},
		{"s", String("hello"), "hello"},
		{"z", Null(), "null"},
	}
	for _, tc := range cases {
		v := tc.v
		if err := e.DeclareMove(tc.name, &v); err != nil {
			t.Fatalf("DeclareMove(%s): %v", tc.name, err)
		}
		if v.Kind() != KindNull {
			t.Fatalf("%s: moved-from value should be null", tc.name)
		}
		got, err := e.Run(tc.name)
		if err != nil || got != tc.want {
			t.Fatalf("%s = %q, %v; want %q", tc.name, got, err, tc.want)
		}
	}
}

func TestDeclareMoveContainerIdentity(t *testing.T) {
	e := newTestEngine(t)
	obj, err := e.NewObject()
	if err != nil {
		t.Fatal(err)
	}
	marker := Number(7)
	if err := obj.Set("m", &marker); err != nil {
		t.Fatal(err)
	}

	v := obj.Value()
	if err := e.DeclareMove("g", &v); err != nil {
		t.Fatal(err)
	}

	got, err := e.Run("g.m")
	if err != nil || got != "7" {
		t.Fatalf("g.m = %q, %v", got, err)
	}
	obj.Free()
}

func TestReentrantRunFromCallback(t *testing.T) {
	e := newTestEngine(t)

	if err := e.RegisterFunc("nested", func(args []Value, this Value) (Value, error) {
		out, err := e.Run("1 + 2")
		if err != nil {
			return Null(), err
		}
		return String(out), nil
	}); err != nil {
		t.Fatal(err)
	}

	got, err := e.Run("nested() + '!'")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "3!" {
		t.Fatalf("reentrant result = %q", got)
	}
}

func TestCallbackKeepingArgumentMustClone(t *testing.T) {
	e := newTestEngine(t)

	var kept Value
	if err := e.RegisterFunc("keep", func(args []Value, this Value) (Value, error) {
		// Delivered args belong to the call; cloning is the only way to
		// hold one past it.
		kept = args[0].Clone()
		return Null(), nil
	}); err != nil {
		t.Fatal(err)
	}

	arr, err := e.NewArray()
	if err != nil {
		t.Fatal(err)
	}
	av := arr.Value()
	if err := e.DeclareCopy("a", av); err != nil {
		t.Fatal(err)
	}
	av.Free()

	if _, err := e.Run("keep(a)"); err != nil {
		t.Fatal(err)
	}
	if kept.Kind() != KindArray || kept.Handle() != arr.Handle() {
		t.Fatalf("kept %s %d, want array %d", kept.Kind(), kept.Handle(), arr.Handle())
	}
	if got := capi.HandleRefs(arr.Handle()); got != 2 {
		t.Fatalf("refs with kept clone = %d, want 2", got)
	}
	kept.Free()
	arr.Free()
}

func TestCallbackReturnsHandle(t *testing.T) {
	e := newTestEngine(t)

	if err := e.RegisterFunc("makeList", func(args []Value, this Value) (Value, error) {
		arr, err := e.NewArray()
		if err != nil {
			return Null(), err
		}
		for _, a := range args {
			v := a.Clone()
			if err := arr.Push(&v); err != nil {
				return Null(), err
			}
		}
		// Returning the wrapper's count hands it to the script side.
		v := arr.Value()
		arr.Free()
		return v, nil
	}); err != nil {
		t.Fatal(err)
	}

	got, err := e.Run("var l = makeList(1, 2, 3); l.length")
	if err != nil || got != "3" {
		t.Fatalf("l.length = %q, %v", got, err)
	}
	got, err = e.Run("l[1]")
	if err != nil || got != "2" {
		t.Fatalf("l[1] = %q, %v", got, err)
	}
}

func TestCloseIdempotentAndFailsAfter(t *testing.T) {
	e, err := NewEngine()
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := e.Run("1"); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("Run after close: %v", err)
	}
	if err := e.RegisterFunc("f", nil); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("RegisterFunc after close: %v", err)
	}
	if _, err := e.NewArray(); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("NewArray after close: %v", err)
	}
	if err := e.DeclareCopy("x", Number(1)); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("DeclareCopy after close: %v", err)
	}
}

func TestStringArgumentDelivery(t *testing.T) {
	e := newTestEngine(t)

	if err := e.RegisterFunc("shout", func(args []Value, this Value) (Value, error) {
		return String(strings.ToUpper(args[0].AsText()) + "!"), nil
	}); err != nil {
		t.Fatal(err)
	}

	got, err := e.Run("shout('hey')")
	if err != nil || got != "HEY!" {
		t.Fatalf("shout = %q, %v", got, err)
	}
}
