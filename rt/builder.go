package rt

import "fmt"

// ---------------------------------------------------------------------------
// Class definition
// ---------------------------------------------------------------------------

// ClassBuilder collects the declarations made inside a definition block.
// Nothing a builder accumulates is visible to the runtime until
// DefineClass finalizes it; a failing block leaves no trace.
//
// The first failing declaration latches onto the builder and poisons it:
// later declarations become no-ops and DefineClass reports the latched
// error.
type ClassBuilder struct {
	rt      *Runtime
	name    string
	super   *Class
	methods map[string]*Method
	err     error
}

// Method declares a method. Redeclaring a selector inside the same block
// replaces the earlier declaration.
func (b *ClassBuilder) Method(name string, params []string, body Body) {
	if b.err != nil {
		return
	}
	b.methods[name] = &Method{name: name, params: params, body: body}
}

// Constructor declares the constructor. Sugar for Method("constructor", …).
func (b *ClassBuilder) Constructor(params []string, body Body) {
	b.Method("constructor", params, body)
}

// Destructor declares the destructor. Sugar for Method("destructor", nil, …).
func (b *ClassBuilder) Destructor(body Body) {
	b.Method("destructor", nil, body)
}

// Superclass declares the single superclass by name. Declaring a second
// superclass latches ErrMultipleSuperclass; naming an unregistered class
// latches ErrUnknownSuperclass.
func (b *ClassBuilder) Superclass(name string) {
	if b.err != nil {
		return
	}
	if b.super != nil {
		b.err = fmt.Errorf("class %s: %w", b.name, ErrMultipleSuperclass)
		return
	}
	super := b.rt.Class(name)
	if super == nil {
		b.err = fmt.Errorf("class %s: superclass %q: %w", b.name, name, ErrUnknownSuperclass)
		return
	}
	b.super = super
}

// Err returns the latched builder error, if any.
func (b *ClassBuilder) Err() error { return b.err }

// DefineClass evaluates a definition block against a fresh builder and, on
// success, publishes the finished class. The whole call is all-or-nothing:
// if the block returns an error or any declaration latched one, no registry
// entry and no subclass back-reference survive.
func (rt *Runtime) DefineClass(name string, def func(b *ClassBuilder) error) (*Class, error) {
	if rt.Class(name) != nil {
		return nil, fmt.Errorf("define class %s: %w", name, ErrDuplicateClass)
	}

	b := &ClassBuilder{
		rt:      rt,
		name:    name,
		methods: make(map[string]*Method),
	}
	if def != nil {
		if err := def(b); err != nil {
			return nil, fmt.Errorf("define class %s: %w", name, err)
		}
	}
	if b.err != nil {
		return nil, fmt.Errorf("define class %s: %w", name, b.err)
	}

	c := &Class{
		rt:         rt,
		name:       name,
		super:      b.super,
		methods:    b.methods,
		subclasses: make(map[string]*Class),
	}
	for _, m := range c.methods {
		m.class = c
	}

	rt.mu.Lock()
	if _, taken := rt.classes[name]; taken {
		rt.mu.Unlock()
		return nil, fmt.Errorf("define class %s: %w", name, ErrDuplicateClass)
	}
	if c.super != nil && rt.classes[c.super.name] != c.super {
		rt.mu.Unlock()
		return nil, fmt.Errorf("define class %s: superclass %q: %w", name, c.super.name, ErrUnknownSuperclass)
	}
	rt.classSeq++
	c.seq = rt.classSeq
	rt.classes[name] = c
	if c.super != nil {
		c.super.subclasses[name] = c
	}
	rt.mu.Unlock()

	rt.log.Debugf("defined class %s (super=%s, %d methods)", name, superName(c), len(c.methods))
	return c, nil
}

func superName(c *Class) string {
	if c.super == nil {
		return "none"
	}
	return c.super.name
}
