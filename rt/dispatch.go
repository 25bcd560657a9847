package rt

import "fmt"

// ---------------------------------------------------------------------------
// Method resolution
// ---------------------------------------------------------------------------

// UnknownSelector is the fallback handler selector. When dispatch finds no
// method for a selector anywhere on the chain, it resolves this selector
// instead and calls it with the original selector prepended to the args.
const UnknownSelector = "unknown"

// locate finds a method by selector, walking the single-inheritance chain
// from c toward the root. Returns nil if no class on the chain defines it.
func locate(c *Class, selector string) *Method {
	for cur := c; cur != nil; cur = cur.super {
		if m := cur.lookupLocal(selector); m != nil {
			return m
		}
	}
	return nil
}

// dispatch implements the send contract: resolve from the receiver's
// concrete class, fall back to the unknown handler, or fail. Errors from
// method bodies propagate unmodified; the unknown fallback intercepts only
// the not-found condition, never a body's own error.
func (rt *Runtime) dispatch(o *Object, selector string, args []any) (any, error) {
	if m := locate(o.class, selector); m != nil {
		return rt.callMethod(o, m, args)
	}
	if m := locate(o.class, UnknownSelector); m != nil {
		fallback := make([]any, 0, len(args)+1)
		fallback = append(fallback, selector)
		fallback = append(fallback, args...)
		return rt.callMethod(o, m, fallback)
	}
	return nil, fmt.Errorf("%s does not understand %q: %w", o.class.name, selector, ErrMethodNotFound)
}

// lifecycleDispatch is dispatch for constructor/destructor sends, where a
// chain that defines neither the selector nor an unknown handler is a
// legal no-op rather than ErrMethodNotFound.
func (rt *Runtime) lifecycleDispatch(o *Object, selector string, args []any) error {
	m := locate(o.class, selector)
	if m == nil {
		if m = locate(o.class, UnknownSelector); m == nil {
			return nil
		}
		fallback := make([]any, 0, len(args)+1)
		fallback = append(fallback, selector)
		fallback = append(fallback, args...)
		args = fallback
	}
	_, err := rt.callMethod(o, m, args)
	return err
}

// callMethod runs a resolved method body with a fresh dispatch context.
// No runtime lock is held here: bodies re-enter the runtime freely.
func (rt *Runtime) callMethod(o *Object, m *Method, args []any) (any, error) {
	return m.body(&Call{rt: rt, receiver: o, method: m, Args: args})
}

// ---------------------------------------------------------------------------
// Dispatch context
// ---------------------------------------------------------------------------

// Call is the dispatch context passed to every method body. It carries the
// receiver and the currently executing method, whose defining class is the
// resolution root for Next. These are the only primitives available inside
// a body; everything else goes through the receiver's public API.
type Call struct {
	// Args are the arguments of the current send. For an unknown-handler
	// send, Args[0] is the original selector.
	Args []any

	rt       *Runtime
	receiver *Object
	method   *Method
}

// Method returns the selector of the currently executing method.
func (c *Call) Method() string { return c.method.name }

// Receiver returns the receiver object.
func (c *Call) Receiver() *Object { return c.receiver }

// Self returns the receiver's current external handle. A rename performed
// while this method is in flight is observed by later Self calls.
func (c *Call) Self() string { return c.receiver.Handle() }

// ID returns the receiver's stable internal identity, which never changes
// across renames.
func (c *Call) ID() string { return c.receiver.ID() }

// Arg returns the argument bound to a declared parameter name.
func (c *Call) Arg(name string) (any, bool) {
	for i, p := range c.method.params {
		if p == name && i < len(c.Args) {
			return c.Args[i], true
		}
	}
	return nil, false
}

// My performs a virtual send to the receiver: resolution starts at the
// receiver's concrete class regardless of which class defines the body
// making the call, so overrides on the concrete class win.
func (c *Call) My(selector string, args ...any) (any, error) {
	return c.rt.dispatch(c.receiver, selector, args)
}

// Next continues the current method into the superclass chain of its
// DEFINING class, not the receiver's concrete class. It fails with
// ErrNoNextReceiver when the defining class has no superclass or no
// ancestor defines the same selector. Chaining never happens implicitly;
// a body that wants its ancestor's behavior must call Next itself.
func (c *Call) Next(args ...any) (any, error) {
	defining := c.method.class
	if defining.super == nil {
		return nil, fmt.Errorf("%s.%s: %w", defining.name, c.method.name, ErrNoNextReceiver)
	}
	m := locate(defining.super, c.method.name)
	if m == nil {
		return nil, fmt.Errorf("%s.%s: no ancestor defines %q: %w",
			defining.name, c.method.name, c.method.name, ErrNoNextReceiver)
	}
	return c.rt.callMethod(c.receiver, m, args)
}

// Var binds one named instance variable into this body's scope. The
// binding reads and writes through to the receiver's store.
func (c *Call) Var(name string) *Var {
	return &Var{store: c.receiver.vars, name: name}
}

// Get reads an instance variable of the receiver.
func (c *Call) Get(name string) (any, error) { return c.receiver.vars.Get(name) }

// Set writes an instance variable of the receiver.
func (c *Call) Set(name string, value any) { c.receiver.vars.Set(name, value) }
