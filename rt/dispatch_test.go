package rt

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ---------------------------------------------------------------------------
// Resolution and dispatch tests
// ---------------------------------------------------------------------------

func TestInvokeOwnMethod(t *testing.T) {
	r := NewRuntime()
	c := mustDefine(t, r, "Greeter", "", map[string]Body{
		"greet": func(c *Call) (any, error) { return "hello", nil },
	})
	o := mustCreate(t, c, "g")

	got, err := o.Invoke("greet")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "hello" {
		t.Errorf("Invoke(greet) = %v, want %q", got, "hello")
	}
}

func TestInvokeInheritedMethod(t *testing.T) {
	r := NewRuntime()
	mustDefine(t, r, "Base", "", map[string]Body{
		"kind": func(c *Call) (any, error) { return "base", nil },
	})
	sub := mustDefine(t, r, "Sub", "Base", nil)
	o := mustCreate(t, sub, "s")

	got, err := o.Invoke("kind")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "base" {
		t.Errorf("Invoke(kind) = %v, want %q", got, "base")
	}
}

func TestMethodNotFound(t *testing.T) {
	r := NewRuntime()
	c := mustDefine(t, r, "Empty", "", nil)
	o := mustCreate(t, c, "e")

	_, err := o.Invoke("missing")
	if !errors.Is(err, ErrMethodNotFound) {
		t.Errorf("err = %v, want ErrMethodNotFound", err)
	}
}

func TestUnknownHandler(t *testing.T) {
	r := NewRuntime()
	c := mustDefine(t, r, "Catcher", "", map[string]Body{
		UnknownSelector: func(c *Call) (any, error) { return c.Args, nil },
	})
	o := mustCreate(t, c, "c")

	got, err := o.Invoke("missing", 1, 2)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	want := []any{"missing", 1, 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unknown handler args mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownHandlerInherited(t *testing.T) {
	r := NewRuntime()
	mustDefine(t, r, "Base", "", map[string]Body{
		UnknownSelector: func(c *Call) (any, error) { return c.Args[0], nil },
	})
	sub := mustDefine(t, r, "Sub", "Base", nil)
	o := mustCreate(t, sub, "s")

	got, err := o.Invoke("whatever")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "whatever" {
		t.Errorf("inherited unknown handler got selector %v, want %q", got, "whatever")
	}
}

func TestUnknownDoesNotInterceptBodyErrors(t *testing.T) {
	r := NewRuntime()
	boom := errors.New("boom")
	unknownCalled := false
	c := mustDefine(t, r, "C", "", map[string]Body{
		"explode": func(c *Call) (any, error) { return nil, boom },
		UnknownSelector: func(c *Call) (any, error) {
			unknownCalled = true
			return nil, nil
		},
	})
	o := mustCreate(t, c, "c")

	_, err := o.Invoke("explode")
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want the body's own error", err)
	}
	if unknownCalled {
		t.Error("unknown must intercept only the not-found condition")
	}
}

// ---------------------------------------------------------------------------
// Next: static chain continuation
// ---------------------------------------------------------------------------

func TestOverrideThenNextOrdering(t *testing.T) {
	r := NewRuntime()
	var log []string
	mustDefine(t, r, "Base", "", map[string]Body{
		"m": appendTo(&log, "m-base"),
	})
	derived := mustDefine(t, r, "Derived", "Base", map[string]Body{
		"m": func(c *Call) (any, error) {
			log = append(log, "m-derived")
			return c.Next()
		},
	})
	o := mustCreate(t, derived, "d")

	if _, err := o.Invoke("m"); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	want := []string{"m-derived", "m-base"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestNextResolvesFromDefiningClass(t *testing.T) {
	// Chain A ← B ← C. The receiver is a C, but Next inside B's body must
	// resolve into A only, never back into C's override.
	r := NewRuntime()
	var log []string
	mustDefine(t, r, "A", "", map[string]Body{
		"m": appendTo(&log, "a"),
	})
	mustDefine(t, r, "B", "A", map[string]Body{
		"m": func(c *Call) (any, error) {
			log = append(log, "b")
			return c.Next()
		},
	})
	cc := mustDefine(t, r, "C", "B", map[string]Body{
		"m": func(c *Call) (any, error) {
			log = append(log, "c")
			return c.Next()
		},
	})
	o := mustCreate(t, cc, "o")

	if _, err := o.Invoke("m"); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	want := []string{"c", "b", "a"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("chain order mismatch (-want +got):\n%s", diff)
	}
}

func TestNextWithoutSuperclass(t *testing.T) {
	r := NewRuntime()
	c := mustDefine(t, r, "Root", "", map[string]Body{
		"m": func(c *Call) (any, error) { return c.Next() },
	})
	o := mustCreate(t, c, "o")

	_, err := o.Invoke("m")
	if !errors.Is(err, ErrNoNextReceiver) {
		t.Errorf("err = %v, want ErrNoNextReceiver", err)
	}
}

func TestNextWithoutAncestorDefinition(t *testing.T) {
	r := NewRuntime()
	mustDefine(t, r, "Base", "", nil)
	sub := mustDefine(t, r, "Sub", "Base", map[string]Body{
		"only": func(c *Call) (any, error) { return c.Next() },
	})
	o := mustCreate(t, sub, "o")

	_, err := o.Invoke("only")
	if !errors.Is(err, ErrNoNextReceiver) {
		t.Errorf("err = %v, want ErrNoNextReceiver", err)
	}
}

// ---------------------------------------------------------------------------
// My: virtual dispatch
// ---------------------------------------------------------------------------

func TestMyDispatchesVirtually(t *testing.T) {
	// describe is defined only on the base class, but its My("label") call
	// must resolve from the receiver's concrete class, so the override wins.
	r := NewRuntime()
	mustDefine(t, r, "Base", "", map[string]Body{
		"describe": func(c *Call) (any, error) { return c.My("label") },
		"label":    func(c *Call) (any, error) { return "base", nil },
	})
	sub := mustDefine(t, r, "Sub", "Base", map[string]Body{
		"label": func(c *Call) (any, error) { return "sub", nil },
	})
	o := mustCreate(t, sub, "o")

	got, err := o.Invoke("describe")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "sub" {
		t.Errorf("My(label) = %v, want the concrete class's %q", got, "sub")
	}
}

// ---------------------------------------------------------------------------
// Call context accessors
// ---------------------------------------------------------------------------

func TestSelfReturnsHandle(t *testing.T) {
	r := NewRuntime()
	c := mustDefine(t, r, "C", "", map[string]Body{
		"whoami": func(c *Call) (any, error) { return c.Self(), nil },
	})
	o := mustCreate(t, c, "alice")

	got, err := o.Invoke("whoami")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "alice" {
		t.Errorf("Self() = %v, want %q", got, "alice")
	}
}

func TestIDStableAcrossRename(t *testing.T) {
	r := NewRuntime()
	c := mustDefine(t, r, "C", "", map[string]Body{
		"id": func(c *Call) (any, error) { return c.ID(), nil },
	})
	o := mustCreate(t, c, "before")

	id1, err := o.Invoke("id")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if err := o.Rename("after"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	id2, err := o.Invoke("id")
	if err != nil {
		t.Fatalf("Invoke after rename: %v", err)
	}
	if id1 != id2 {
		t.Errorf("internal identity changed across rename: %v != %v", id1, id2)
	}
	if id1 == "before" || id1 == "after" {
		t.Error("internal identity must be distinct from the external handle")
	}
}

func TestArgByParameterName(t *testing.T) {
	r := NewRuntime()
	c, err := r.DefineClass("Point", func(b *ClassBuilder) error {
		b.Method("moveTo", []string{"x", "y"}, func(c *Call) (any, error) {
			y, ok := c.Arg("y")
			if !ok {
				t.Error("Arg(y) should resolve")
			}
			return y, nil
		})
		return nil
	})
	if err != nil {
		t.Fatalf("DefineClass: %v", err)
	}
	o := mustCreate(t, c, "p")

	got, err := o.Invoke("moveTo", 3, 4)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != 4 {
		t.Errorf("Arg(y) = %v, want 4", got)
	}
}

func TestRuntimeInvokeByHandle(t *testing.T) {
	r := NewRuntime()
	c := mustDefine(t, r, "C", "", map[string]Body{
		"ping": func(c *Call) (any, error) { return "pong", nil },
	})
	mustCreate(t, c, "service")

	got, err := r.Invoke("service", "ping")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != "pong" {
		t.Errorf("Invoke(service, ping) = %v, want %q", got, "pong")
	}

	if _, err := r.Invoke("nobody", "ping"); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("err = %v, want ErrInvalidHandle", err)
	}
}
