package scope

import (
	"github.com/NunaInc/nudl-analysis/status"
)

// ChildStore is a name store that is also addressable as a named object
// under its own parent — modules, function groups, type member stores,
// and nested scopes all satisfy this.
type ChildStore interface {
	NamedObject
	NameStore
}

// NameStore maps simple identifiers to named objects, per §3 ("Name
// stores"). It exposes the uniform lookup building blocks and the tree
// operations used to compose stores into the scope/module hierarchy.
type NameStore interface {
	HasName(name string) bool
	GetName(name string) (NamedObject, bool)
	AddName(name string, obj NamedObject) *status.Status
	AddChildStore(name string, child ChildStore) *status.Status
	AddOwnedChildStore(name string, child ChildStore) *status.Status
	DefinedNames() []string
}

// BasicStore is the tree-node implementation of NameStore: an ordered
// map from simple identifier to NamedObject, with an explicit
// owned-vs-referenced distinction for children (§3, §5 "Resource
// ownership").
type BasicStore struct {
	children map[string]NamedObject
	owned    map[string]bool
	order    []string
}

// NewBasicStore returns an empty store.
func NewBasicStore() *BasicStore {
	return &BasicStore{
		children: make(map[string]NamedObject),
		owned:    make(map[string]bool),
	}
}

func (s *BasicStore) HasName(name string) bool {
	_, ok := s.children[name]
	return ok
}

func (s *BasicStore) GetName(name string) (NamedObject, bool) {
	obj, ok := s.children[name]
	return obj, ok
}

// AddName enforces the name-uniqueness invariant (§8 property 1): two
// distinct objects may never share an identifier directly in one store.
func (s *BasicStore) AddName(name string, obj NamedObject) *status.Status {
	if s.children == nil {
		s.children = make(map[string]NamedObject)
	}
	if _, exists := s.children[name]; exists {
		return status.Newf(status.CodeAlreadyExists, "name %q already defined in this scope", name)
	}
	s.children[name] = obj
	s.order = append(s.order, name)
	return nil
}

// AddChildStore registers child under name without taking ownership
// (e.g. an aliased import: the imported module's scope is owned by its
// own Environment, not by the importing module).
func (s *BasicStore) AddChildStore(name string, child ChildStore) *status.Status {
	return s.AddName(name, child)
}

// AddOwnedChildStore registers child under name and marks it owned, so
// that teardown order (§9) knows this store is responsible for
// destroying it.
func (s *BasicStore) AddOwnedChildStore(name string, child ChildStore) *status.Status {
	if st := s.AddName(name, child); st != nil {
		return st
	}
	if s.owned == nil {
		s.owned = make(map[string]bool)
	}
	s.owned[name] = true
	return nil
}

// IsOwned reports whether the child registered under name is owned by
// this store.
func (s *BasicStore) IsOwned(name string) bool {
	return s.owned[name]
}

// DefinedNames returns the identifiers defined directly in this store,
// in declaration order.
func (s *BasicStore) DefinedNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
