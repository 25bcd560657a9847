package rt

import "testing"

// mustDefine registers a class, failing the test on error. Methods are
// declared with no parameter names; tests that need parameters call
// DefineClass directly.
func mustDefine(t *testing.T, r *Runtime, name, super string, methods map[string]Body) *Class {
	t.Helper()
	c, err := r.DefineClass(name, func(b *ClassBuilder) error {
		if super != "" {
			b.Superclass(super)
		}
		for selector, body := range methods {
			b.Method(selector, nil, body)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("DefineClass(%s): %v", name, err)
	}
	return c
}

// mustCreate instantiates a class under an explicit handle, failing the
// test on error.
func mustCreate(t *testing.T, c *Class, handle string, args ...any) *Object {
	t.Helper()
	o, err := c.Create(handle, args...)
	if err != nil {
		t.Fatalf("Create(%s, %q): %v", c.Name(), handle, err)
	}
	return o
}

// appendTo returns a body that records a marker and returns nil.
func appendTo(log *[]string, marker string) Body {
	return func(c *Call) (any, error) {
		*log = append(*log, marker)
		return nil, nil
	}
}
