package rt

// ---------------------------------------------------------------------------
// Class: descriptor and hierarchy helpers
// ---------------------------------------------------------------------------

// Class is a named method table with at most one superclass.
//
// A Class is immutable once DefineClass publishes it, with one exception:
// the set of direct-subclass back-references grows as later definitions
// name this class as their superclass. Back-references are non-owning;
// they exist only so a class-level destroy can cascade downward.
type Class struct {
	rt    *Runtime
	name  string
	super *Class
	seq   uint64 // definition order, used to keep cascades deterministic

	// Frozen after DefineClass; dispatch reads it without locking.
	methods map[string]*Method

	// Direct subclasses by name. Guarded by rt.mu.
	subclasses map[string]*Class
}

// Method binds a selector to a host callable together with the class that
// defines it. The defining class is what Call.Next resolves from; it is
// threaded here explicitly rather than recovered from the call stack.
type Method struct {
	name   string
	params []string
	class  *Class
	body   Body
}

// Body is a method implementation. It receives the dispatch context for
// the current send and returns the method's result.
type Body func(c *Call) (any, error)

// Name returns the selector this method is bound to.
func (m *Method) Name() string { return m.name }

// Params returns the declared parameter names.
func (m *Method) Params() []string { return m.params }

// Class returns the class that defines this method.
func (m *Method) Class() *Class { return m.class }

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Super returns the superclass, or nil for a root class.
func (c *Class) Super() *Class { return c.super }

// lookupLocal finds a method in this class's own table only.
func (c *Class) lookupLocal(selector string) *Method {
	return c.methods[selector]
}

// HasMethod returns true if this class (not superclasses) defines selector.
func (c *Class) HasMethod(selector string) bool {
	return c.lookupLocal(selector) != nil
}

// Ancestors returns all superclasses from immediate parent to root.
func (c *Class) Ancestors() []*Class {
	var result []*Class
	for cur := c.super; cur != nil; cur = cur.super {
		result = append(result, cur)
	}
	return result
}

// IsSubclassOf returns true if c is other or a descendant of other.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.super {
		if cur == other {
			return true
		}
	}
	return false
}

// Depth returns the inheritance depth (0 for a root class).
func (c *Class) Depth() int {
	depth := 0
	for cur := c.super; cur != nil; cur = cur.super {
		depth++
	}
	return depth
}

// Subclasses returns the direct subclasses in definition order.
func (c *Class) Subclasses() []*Class {
	c.rt.mu.RLock()
	defer c.rt.mu.RUnlock()
	return sortedBySeq(c.subclasses)
}

// Create instantiates this class under an explicit handle and runs the
// constructor chain.
func (c *Class) Create(handle string, args ...any) (*Object, error) {
	return c.rt.create(c, handle, args)
}

// New instantiates this class under a generated handle.
func (c *Class) New(args ...any) (*Object, error) {
	return c.rt.newObject(c, args)
}

// Destroy removes this class, its direct instances, and recursively all
// subclasses with their instances. See Runtime.destroyClass for ordering.
func (c *Class) Destroy() error {
	return c.rt.destroyClass(c)
}

// String implements the Stringer interface.
func (c *Class) String() string { return c.name }
