package types

import (
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/status"
)

// RegistrationCallback is invoked each time a type is added to a Store,
// used by the module driver to auto-generate struct constructors
// (§4.3, §4.7).
type RegistrationCallback func(name string, t *Spec)

// Store is one node of the type-store tree mirroring the scope tree
// (§4.3, C3). Each Store holds type descriptors registered under simple
// names, and may alias another Store's registrations.
type Store struct {
	parent    *Store
	children  map[string]*Store
	types     map[string]*Spec
	alias     *Store
	callbacks []RegistrationCallback
}

// NewStore creates a root type store (no parent).
func NewStore() *Store {
	return &Store{children: map[string]*Store{}, types: map[string]*Spec{}}
}

// NewChild creates a sub-store nested under s, mirroring a child scope.
func (s *Store) NewChild(name string) *Store {
	child := &Store{parent: s, children: map[string]*Store{}, types: map[string]*Spec{}}
	s.children[name] = child
	return child
}

// AddRegistrationCallback registers fn to be invoked whenever a type is
// declared directly in s (not in a descendant).
func (s *Store) AddRegistrationCallback(fn RegistrationCallback) {
	s.callbacks = append(s.callbacks, fn)
}

// AddAlias makes newScope's lookups fall through to origScope's
// registrations when not found locally (§4.3).
func (s *Store) AddAlias(origScope *Store) {
	s.alias = origScope
}

// DeclareType registers spec under name in s. Re-declaring the same name
// with a structurally different descriptor is an already-exists error;
// re-declaring with an IsEqual descriptor is idempotent.
func (s *Store) DeclareType(name string, spec *Spec) *status.Status {
	if existing, ok := s.types[name]; ok {
		if existing.IsEqual(spec) {
			return nil
		}
		return status.Newf(status.CodeAlreadyExists, "type %q already declared as %s, cannot redeclare as %s", name, existing, spec)
	}
	s.types[name] = spec
	for _, cb := range s.callbacks {
		cb(name, spec)
	}
	return nil
}

// lookupLocal checks only this store (and its alias chain), not
// ancestors.
func (s *Store) lookupLocal(name string) (*Spec, bool) {
	if t, ok := s.types[name]; ok {
		return t, true
	}
	if s.alias != nil {
		return s.alias.lookupLocal(name)
	}
	return nil, false
}

// FindType implements scope.TypeLookup: a bare-name lookup walking from
// s up through ancestor stores, used by (*scope.Scope).FindName step 5.
// lookupScope is accepted for interface compatibility but the type tree
// is walked structurally (parent chain) rather than by name, since a
// Store's position already mirrors its owning scope.
func (s *Store) FindType(_ scope.ScopeName, name string) (scope.TypeSpec, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.lookupLocal(name); ok {
			return t, true
		}
	}
	return nil, false
}

// Resolve parses a type-AST-shaped request into a concrete descriptor:
// it resolves the identifier leaf by simple-name lookup (restricted to
// type kinds, per §4.1 step 5 semantics) and applies Bind for any
// template arguments. This is the up-front, non-identifier-resolving
// half of §4.3's FindType(lookup_scope, type-AST); identifier
// resolution through the full scope-name lookup chain (§4.1) is
// performed by the caller (package module) via scope.Scope.FindName,
// which falls back to FindType for the final type-store step.
func (s *Store) Resolve(name string, args []Param) (*Spec, *status.Status) {
	base, ok := s.FindType(scope.RootScopeName, name)
	if !ok {
		return nil, status.NotFound("type " + name + " not found")
	}
	spec := base.(*Spec)
	if len(args) == 0 {
		return spec, nil
	}
	return spec.Bind(args)
}
