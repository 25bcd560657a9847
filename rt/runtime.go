package rt

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Runtime
// ---------------------------------------------------------------------------

// Runtime owns the class registry, the handle table, and the object
// identity table. All map mutations happen under rt.mu; no lock is ever
// held while a user method body runs, since bodies re-enter the runtime
// through My, Next, and the destroy cascade.
type Runtime struct {
	mu      sync.RWMutex
	classes map[string]*Class
	handles map[string]*Object // external handle → object (injective)
	objects map[string]*Object // internal identity → object

	classSeq uint64 // guarded by mu
	objSeq   uint64 // guarded by mu

	// Counter for New-generated handles. Process-scoped per runtime,
	// never reset.
	nextHandle atomic.Uint64

	log commonlog.Logger
}

// NewRuntime creates an empty runtime.
func NewRuntime() *Runtime {
	return &Runtime{
		classes: make(map[string]*Class),
		handles: make(map[string]*Object),
		objects: make(map[string]*Object),
		log:     commonlog.GetLogger("trashtalk.rt"),
	}
}

// Class finds a registered class by name. Returns nil if not registered.
func (rt *Runtime) Class(name string) *Class {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.classes[name]
}

// Classes returns all registered classes in definition order.
func (rt *Runtime) Classes() []*Class {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return sortedBySeq(rt.classes)
}

// Object finds a live object by its current external handle.
func (rt *Runtime) Object(handle string) (*Object, error) {
	rt.mu.RLock()
	o := rt.handles[handle]
	rt.mu.RUnlock()
	if o == nil {
		return nil, fmt.Errorf("object %q: %w", handle, ErrInvalidHandle)
	}
	return o, nil
}

// ObjectByID finds a live object by its stable internal identity.
func (rt *Runtime) ObjectByID(id string) (*Object, error) {
	rt.mu.RLock()
	o := rt.objects[id]
	rt.mu.RUnlock()
	if o == nil {
		return nil, fmt.Errorf("object id %q: %w", id, ErrInvalidHandle)
	}
	return o, nil
}

// Invoke performs a send to the object currently bound to handle.
func (rt *Runtime) Invoke(handle, selector string, args ...any) (any, error) {
	o, err := rt.Object(handle)
	if err != nil {
		return nil, err
	}
	return o.Invoke(selector, args...)
}

// ---------------------------------------------------------------------------
// Object lifecycle
// ---------------------------------------------------------------------------

// create allocates an object under an explicit handle and runs the
// constructor chain. A constructor failure deallocates everything and
// reports ErrConstructorFailure with the original error still reachable
// through errors.Is.
func (rt *Runtime) create(c *Class, handle string, args []any) (*Object, error) {
	if handle == "" {
		return nil, fmt.Errorf("create %s: empty handle: %w", c.name, ErrInvalidHandle)
	}

	o := allocObject(rt, c, handle)

	rt.mu.Lock()
	if rt.classes[c.name] != c {
		rt.mu.Unlock()
		return nil, fmt.Errorf("create: class %s destroyed: %w", c.name, ErrInvalidHandle)
	}
	if _, taken := rt.handles[handle]; taken {
		rt.mu.Unlock()
		return nil, fmt.Errorf("create %s as %q: %w", c.name, handle, ErrDuplicateHandle)
	}
	rt.objSeq++
	o.seq = rt.objSeq
	rt.handles[handle] = o
	rt.objects[o.id] = o
	rt.mu.Unlock()

	if err := rt.lifecycleDispatch(o, "constructor", args); err != nil {
		rt.mu.Lock()
		delete(rt.handles, o.handle)
		delete(rt.objects, o.id)
		o.destroyed = true
		rt.mu.Unlock()
		o.vars.clear()
		return nil, fmt.Errorf("%w: %w", ErrConstructorFailure, err)
	}

	rt.log.Debugf("created %s as %q (%s)", c.name, handle, o.id)
	return o, nil
}

// newObject is create with a generated handle. Generated handles come from
// a monotonic counter and skip names already taken by explicit creates;
// the counter never restarts, so no generated name repeats.
func (rt *Runtime) newObject(c *Class, args []any) (*Object, error) {
	for {
		handle := fmt.Sprintf("obj%d", rt.nextHandle.Add(1))
		o, err := rt.create(c, handle, args)
		if errors.Is(err, ErrDuplicateHandle) {
			continue
		}
		return o, err
	}
}

// destroyObject runs the destructor chain and removes the object. The
// teardown always completes; a destructor error is returned afterwards,
// never swallowed and never allowed to leave the object half-alive.
func (rt *Runtime) destroyObject(o *Object) error {
	rt.mu.Lock()
	if o.destroyed || o.dying {
		handle := o.handle
		rt.mu.Unlock()
		return fmt.Errorf("destroy %q: %w", handle, ErrInvalidHandle)
	}
	o.dying = true
	rt.mu.Unlock()

	derr := rt.lifecycleDispatch(o, "destructor", nil)

	rt.mu.Lock()
	handle := o.handle
	delete(rt.handles, o.handle)
	delete(rt.objects, o.id)
	o.destroyed = true
	rt.mu.Unlock()
	o.vars.clear()

	rt.log.Debugf("destroyed %q (%s)", handle, o.id)
	return derr
}

// renameObject atomically rebinds the external handle. The empty string is
// shorthand for destroy. Renaming onto a handle bound to another live
// object fails; the handle→identity mapping stays injective.
func (rt *Runtime) renameObject(o *Object, newHandle string) error {
	if newHandle == "" {
		return rt.destroyObject(o)
	}

	rt.mu.Lock()
	if o.destroyed {
		rt.mu.Unlock()
		return fmt.Errorf("rename: %w", ErrInvalidHandle)
	}
	if cur, taken := rt.handles[newHandle]; taken {
		rt.mu.Unlock()
		if cur == o {
			return nil
		}
		return fmt.Errorf("rename to %q: %w", newHandle, ErrDuplicateHandle)
	}
	old := o.handle
	delete(rt.handles, old)
	o.handle = newHandle
	rt.handles[newHandle] = o
	rt.mu.Unlock()

	rt.log.Debugf("renamed %q to %q (%s)", old, newHandle, o.id)
	return nil
}

// ---------------------------------------------------------------------------
// Class-level destruction cascade
// ---------------------------------------------------------------------------

// destroyClass removes a class, its direct instances, and recursively all
// subclasses with their instances. Order at each level: direct instances
// first, then subclasses, then the registry entry. Destructor errors are
// collected and joined; the cascade never stops partway.
func (rt *Runtime) destroyClass(c *Class) error {
	rt.mu.Lock()
	if rt.classes[c.name] != c {
		rt.mu.Unlock()
		return fmt.Errorf("destroy class %s: %w", c.name, ErrInvalidHandle)
	}
	rt.mu.Unlock()

	var errs []error
	for _, o := range rt.instancesOf(c) {
		if err := rt.destroyObject(o); err != nil {
			errs = append(errs, err)
		}
	}
	for _, sub := range c.Subclasses() {
		if err := rt.destroyClass(sub); err != nil {
			errs = append(errs, err)
		}
	}

	rt.mu.Lock()
	delete(rt.classes, c.name)
	if c.super != nil {
		delete(c.super.subclasses, c.name)
	}
	c.methods = nil
	rt.mu.Unlock()

	rt.log.Debugf("destroyed class %s", c.name)
	return errors.Join(errs...)
}

// instancesOf snapshots the live objects whose owning class is exactly c
// (not a subclass), in creation order.
func (rt *Runtime) instancesOf(c *Class) []*Object {
	rt.mu.RLock()
	var result []*Object
	for _, o := range rt.objects {
		if o.class == c {
			result = append(result, o)
		}
	}
	rt.mu.RUnlock()
	sort.Slice(result, func(i, j int) bool { return result[i].seq < result[j].seq })
	return result
}

// sortedBySeq returns a class map's values in definition order.
func sortedBySeq(classes map[string]*Class) []*Class {
	result := make([]*Class, 0, len(classes))
	for _, c := range classes {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].seq < result[j].seq })
	return result
}
