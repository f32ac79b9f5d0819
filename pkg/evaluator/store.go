package evaluator

import (
	"fmt"

	"github.com/s0lang/s0/pkg/diagnostics"
)

// ScopeID identifies a scope in a Store. Ids are stable for the life of
// the store and never reused. The zero value is NoScope.
type ScopeID int

// NoScope is the absent-parent marker; it is never a valid scope id.
const NoScope ScopeID = 0

// Scope owns a set of local bindings and a parent link by id. The parent
// link is a lookup relation, never ownership: many scopes may share one
// parent, and a scope knows nothing about its children.
type Scope struct {
	id     ScopeID
	parent ScopeID
	vars   map[string]S0Value
}

// ID returns the scope's id in its store.
func (sc *Scope) ID() ScopeID {
	return sc.id
}

// Parent returns the parent scope id, or NoScope for the root.
func (sc *Scope) Parent() ScopeID {
	return sc.parent
}

// Get reads a local binding. It never consults the parent chain.
func (sc *Scope) Get(name string) (S0Value, bool) {
	val, ok := sc.vars[name]
	return val, ok
}

// Set writes a local binding, overwriting any previous value. It writes
// only into this scope, never an ancestor.
func (sc *Scope) Set(name string, val S0Value) {
	sc.vars[name] = val
}

// Has reports whether the scope binds name locally.
func (sc *Scope) Has(name string) bool {
	_, ok := sc.vars[name]
	return ok
}

// Names returns the locally bound names in unspecified order.
func (sc *Scope) Names() []string {
	names := make([]string, 0, len(sc.vars))
	for name := range sc.vars {
		names = append(names, name)
	}
	return names
}

// Store is an arena of scopes addressed by ScopeID. Closures capture
// scopes by id, which decouples a scope's lifetime from the call frame
// that created it: the frame returns, the id stays valid. Scopes are
// never collected.
type Store struct {
	scopes map[ScopeID]*Scope
	next   ScopeID
}

// NewStore creates an empty scope store.
func NewStore() *Store {
	return &Store{
		scopes: make(map[ScopeID]*Scope),
		next:   1,
	}
}

// NewScope allocates a new empty scope with the given parent and returns
// its id. A NoScope parent makes a root. NewScope cannot fail; parent
// chains stay acyclic because only existing ids (or NoScope) are linked.
func (s *Store) NewScope(parent ScopeID) ScopeID {
	id := s.next
	s.next++
	s.scopes[id] = &Scope{
		id:     id,
		parent: parent,
		vars:   make(map[string]S0Value),
	}
	return id
}

// Resolve returns the scope for an id. An unknown id is an integrity
// violation: it cannot occur while ids are only obtained from NewScope.
func (s *Store) Resolve(id ScopeID) (*Scope, error) {
	sc, ok := s.scopes[id]
	if !ok {
		return nil, &S0RuntimeError{
			Code:    diagnostics.EBadScope,
			Message: fmt.Sprintf("invalid scope id %d", id),
		}
	}
	return sc, nil
}

// Owner walks the parent chain from id toward the root and returns the
// id of the nearest scope whose local bindings contain name. The second
// return is false when no ancestor (including the root) binds it.
func (s *Store) Owner(id ScopeID, name string) (ScopeID, bool, error) {
	for cur := id; cur != NoScope; {
		sc, err := s.Resolve(cur)
		if err != nil {
			return NoScope, false, err
		}
		if sc.Has(name) {
			return cur, true, nil
		}
		cur = sc.parent
	}
	return NoScope, false, nil
}

// Len returns the number of scopes in the store.
func (s *Store) Len() int {
	return len(s.scopes)
}

// NewRootScope creates a root scope seeded with one native-procedure
// binding per name plus the given numeric constants.
func NewRootScope(store *Store, natives []string, constants map[string]float64) ScopeID {
	id := store.NewScope(NoScope)
	sc := store.scopes[id]
	for _, name := range natives {
		sc.Set(name, NewNative(name))
	}
	for name, val := range constants {
		sc.Set(name, NewNumber(val))
	}
	return id
}
