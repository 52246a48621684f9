package minijs

import (
	"errors"
	"testing"

	"github.com/cryguy/minijs/internal/capi"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func TestArrayPushAndGet(t *testing.T) {
	e := newTestEngine(t)
	arr, err := e.NewArray()
	if err != nil {
		t.Fatal(err)
	}
	defer arr.Free()

	for _, v := range []Value{Number(1), Number(2), String("hi")} {
		if err := arr.Push(&v); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	if got := arr.Length(); got != 3 {
		t.Fatalf("Length = %d, want 3", got)
	}

	got, err := arr.Get(2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Kind() != KindString || got.AsText() != "hi" {
		t.Fatalf("Get(2) = %s %q", got.Kind(), got.AsText())
	}

	first, err := arr.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	if first.AsNumber(0) != 1 {
		t.Fatalf("Get(0) = %v", first.AsNumber(0))
	}

	oob, err := arr.Get(99)
	if err != nil {
		t.Fatal(err)
	}
	if oob.Kind() != KindNull {
		t.Fatalf("out of range Get = %s", oob.Kind())
	}
}

func TestArraySetConsumesHandle(t *testing.T) {
	e := newTestEngine(t)
	arr, err := e.NewArray()
	if err != nil {
		t.Fatal(err)
	}
	defer arr.Free()

	inner, err := e.NewObject()
	if err != nil {
		t.Fatal(err)
	}
	h := inner.Handle()
	v := inner.Value() // refs 2: wrapper + clone
	if err := arr.Set(0, &v); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v.Kind() != KindNull || v.Handle() != 0 {
		t.Fatal("consumed source should be observably null")
	}
	if got := capi.HandleRefs(h); got != 1 {
		t.Fatalf("refs after consuming set = %d, want 1 (wrapper's)", got)
	}

	// Reading it back borrows the same underlying object.
	back, err := arr.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	if back.Handle() != h {
		t.Fatalf("identity lost: %d != %d", back.Handle(), h)
	}
	inner.Free()
}

func TestBorrowedGetHoldsNoCount(t *testing.T) {
	e := newTestEngine(t)
	arr, err := e.NewArray()
	if err != nil {
		t.Fatal(err)
	}

	inner, err := e.NewObject()
	if err != nil {
		t.Fatal(err)
	}
	iv := inner.Detach()
	pv := HandleValue(KindObject, iv, false)
	if err := arr.Push(&pv); err != nil {
		t.Fatal(err)
	}

	borrowed, err := arr.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	if got := capi.HandleRefs(borrowed.Handle()); got != 0 {
		t.Fatalf("borrowed refs = %d, want 0", got)
	}

	// Releasing the container while the un-retained borrow is still in
	// scope must be safe: the borrow held no count to begin with, and
	// simply dropping it releases nothing.
	arr.Free()
	_ = borrowed
}

func TestAsArrayTypeMismatch(t *testing.T) {
	_, err := AsArray(Number(1))
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("want ErrTypeMismatch, got %v", err)
	}
}

func TestDetachedArrayFailsCleanly(t *testing.T) {
	e := newTestEngine(t)
	arr, err := e.NewArray()
	if err != nil {
		t.Fatal(err)
	}
	h := arr.Detach()
	defer capi.HandleRelease(h)

	if got := arr.Length(); got != 0 {
		t.Fatalf("detached Length = %d", got)
	}
	if _, err := arr.Get(0); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("Get: want ErrInvalidHandle, got %v", err)
	}
	v := Number(1)
	if err := arr.Push(&v); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("Push: want ErrInvalidHandle, got %v", err)
	}
	if err := arr.Set(0, &v); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("Set: want ErrInvalidHandle, got %v", err)
	}
}
