package rt

import (
	"fmt"
	"sort"
	"sync"
)

// ---------------------------------------------------------------------------
// Instance variable store
// ---------------------------------------------------------------------------

// VarStore holds one object's instance variables. Each object owns exactly
// one store; stores are never shared between objects.
type VarStore struct {
	mu   sync.RWMutex
	vars map[string]any
}

func newVarStore() *VarStore {
	return &VarStore{vars: make(map[string]any)}
}

// Get returns the value of an instance variable. Reading a variable that
// has never been set is an error, not a nil read.
func (s *VarStore) Get(name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	if !ok {
		return nil, fmt.Errorf("variable %q: %w", name, ErrUndefinedVariable)
	}
	return v, nil
}

// Set stores the value of an instance variable, creating it if needed.
func (s *VarStore) Set(name string, value any) {
	s.mu.Lock()
	if s.vars == nil {
		s.vars = make(map[string]any)
	}
	s.vars[name] = value
	s.mu.Unlock()
}

// Unset removes an instance variable. Removing an absent name is a no-op.
func (s *VarStore) Unset(name string) {
	s.mu.Lock()
	delete(s.vars, name)
	s.mu.Unlock()
}

// Has returns true if the variable has been set.
func (s *VarStore) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.vars[name]
	return ok
}

// Names returns all set variable names, sorted.
func (s *VarStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of set variables.
func (s *VarStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vars)
}

// clear drops all variables. Called once, during object teardown.
func (s *VarStore) clear() {
	s.mu.Lock()
	s.vars = nil
	s.mu.Unlock()
}

// ---------------------------------------------------------------------------
// Variable bindings
// ---------------------------------------------------------------------------

// Var is a live binding of one named instance variable into a method
// body's local scope. Reads and writes go straight through to the store,
// so a binding observes mutations made by other methods on the receiver.
type Var struct {
	store *VarStore
	name  string
}

// Name returns the bound variable name.
func (v *Var) Name() string { return v.name }

// Get reads the current value through the binding.
func (v *Var) Get() (any, error) { return v.store.Get(v.name) }

// Set writes through the binding.
func (v *Var) Set(value any) { v.store.Set(v.name, value) }
