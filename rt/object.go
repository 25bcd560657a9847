package rt

import (
	"fmt"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Object
// ---------------------------------------------------------------------------

// Object is a live instance: a stable internal identity, a mutable
// external handle, an owning class, and a private variable store.
//
// The identity is assigned once at creation and never changes; the handle
// is what callers invoke through and may be renamed at any time. Dispatch
// correctness depends only on the identity, never on the handle.
type Object struct {
	rt    *Runtime
	id    string
	class *Class
	vars  *VarStore
	seq   uint64 // creation order, used to keep cascades deterministic

	// Guarded by rt.mu.
	handle    string
	destroyed bool
	dying     bool
}

func allocObject(rt *Runtime, class *Class, handle string) *Object {
	return &Object{
		rt:     rt,
		id:     uuid.NewString(),
		class:  class,
		vars:   newVarStore(),
		handle: handle,
	}
}

// ID returns the stable internal identity.
func (o *Object) ID() string { return o.id }

// Class returns the owning class.
func (o *Object) Class() *Class { return o.class }

// Vars returns the object's instance variable store.
func (o *Object) Vars() *VarStore { return o.vars }

// Handle returns the current external handle.
func (o *Object) Handle() string {
	o.rt.mu.RLock()
	defer o.rt.mu.RUnlock()
	return o.handle
}

// Alive reports whether the object has not been destroyed. An object
// running its destructor still counts as alive.
func (o *Object) Alive() bool {
	o.rt.mu.RLock()
	defer o.rt.mu.RUnlock()
	return !o.destroyed
}

// Invoke performs a send to this object under the dispatch contract:
// resolution from the concrete class, unknown fallback, ErrMethodNotFound
// otherwise. Invoking a destroyed object fails with ErrInvalidHandle.
func (o *Object) Invoke(selector string, args ...any) (any, error) {
	if !o.Alive() {
		return nil, fmt.Errorf("invoke %q on destroyed object: %w", selector, ErrInvalidHandle)
	}
	return o.rt.dispatch(o, selector, args)
}

// Destroy runs the destructor chain and removes the object. Destroying an
// already-destroyed object fails with ErrInvalidHandle.
func (o *Object) Destroy() error {
	return o.rt.destroyObject(o)
}

// Rename atomically replaces the external handle. The old handle is
// invalid from that point on. Renaming to the empty string destroys the
// object instead.
func (o *Object) Rename(newHandle string) error {
	return o.rt.renameObject(o, newHandle)
}

// String implements the Stringer interface.
func (o *Object) String() string {
	return fmt.Sprintf("%s(%s)", o.Handle(), o.class.name)
}
