package scope

import (
	"fmt"
	"sort"

	"github.com/NunaInc/nudl-analysis/status"
)

// Expression is the minimal contract a scope needs from the program-text
// nodes it owns (§3 "Scopes": "a list of expressions"). The full
// expression tree lives in package expr; scope only needs to hold and
// enumerate it, never to negotiate its type.
type Expression interface {
	DebugString() string
}

// TypeLookup is the minimal contract a scope needs from its type store
// (§4.1 step 5: "try the type store for a matching type"). The full type
// store lives in package types.
type TypeLookup interface {
	FindType(lookupScope ScopeName, name string) (TypeSpec, bool)
}

// Scope is a name store with lifecycle, per §3 ("Scopes"): it owns its
// VarBase definitions and nested sub-scopes, tracks its expressions in
// program order, and knows its built-in scope, enclosing module, and
// type store.
type Scope struct {
	*BasicStore

	name        string
	kind        Kind
	scopeName   ScopeName
	parent      *Scope
	parentStore NameStore
	builtin     *Scope
	module      *Scope
	typeStore   TypeLookup

	expressions []Expression

	localSeq   int
	bindingSeq map[string]int
}

// NewScope creates a scope named scopeName, nested under parent (nil for
// the outermost Environment scope). kind records what kind of scope this
// is (KindModule, KindFunction, KindLambda, KindScope for a plain block).
func NewScope(name string, kind Kind, scopeName ScopeName, parent *Scope) *Scope {
	s := &Scope{
		BasicStore: NewBasicStore(),
		name:       name,
		kind:       kind,
		scopeName:  scopeName,
		parent:     parent,
		bindingSeq: make(map[string]int),
	}
	if parent != nil {
		s.builtin = parent.builtin
		s.parentStore = parent
		if parent.kind == KindModule || kind == KindModule {
			// A module scope is its own "nearest ancestor that is a
			// module" only once kind==KindModule is set below; the
			// general case inherits the parent's module pointer.
		}
		s.module = parent.module
		s.typeStore = parent.typeStore
	}
	if kind == KindModule {
		s.module = s
	}
	return s
}

// SetAsBuiltin marks s as the built-in scope consulted by §4.1 step 4.
func (s *Scope) SetAsBuiltin() { s.builtin = s }

// SetTypeStore attaches the type store consulted by §4.1 step 5.
func (s *Scope) SetTypeStore(ts TypeLookup) { s.typeStore = ts }

func (s *Scope) Name() string         { return s.name }
func (s *Scope) FullName() ScopedName { return ScopedName{Scope: s.parentScopeName(), Name: s.name} }
func (s *Scope) Kind() Kind           { return s.kind }
func (s *Scope) TypeSpec() TypeSpec   { return nil }
func (s *Scope) ParentStore() NameStore {
	if s.parentStore != nil {
		return s.parentStore
	}
	return nil
}

func (s *Scope) parentScopeName() ScopeName {
	if s.parent == nil {
		return RootScopeName
	}
	return s.parent.scopeName
}

// ScopeName returns this scope's hierarchical name.
func (s *Scope) ScopeName() ScopeName { return s.scopeName }

// Module returns the nearest ancestor scope that is a module (§3).
func (s *Scope) Module() *Scope { return s.module }

// Builtin returns the module's built-in scope, or nil if none was set.
func (s *Scope) Builtin() *Scope { return s.builtin }

// Parent returns the lexically enclosing scope, or nil at the root.
func (s *Scope) Parent() *Scope { return s.parent }

// AddExpression appends e to this scope's program text, in order.
func (s *Scope) AddExpression(e Expression) {
	s.expressions = append(s.expressions, e)
}

// Expressions returns this scope's program text, in declaration order.
func (s *Scope) Expressions() []Expression {
	out := make([]Expression, len(s.expressions))
	copy(out, s.expressions)
	return out
}

// NextLocalName generates a unique local identifier with the given
// prefix (used for anonymous lambdas and nested block scopes), unique
// per module (§4.1).
func (s *Scope) NextLocalName(prefix string) string {
	owner := s
	if s.module != nil {
		owner = s.module
	}
	owner.localSeq++
	return fmt.Sprintf("%s_%d", prefix, owner.localSeq)
}

// NextBindingName generates a unique specialization name for fnName,
// unique per module (§4.1, §4.5 "Specialization synthesis").
func (s *Scope) NextBindingName(fnName string) string {
	owner := s
	if s.module != nil {
		owner = s.module
	}
	owner.bindingSeq[fnName]++
	return fmt.Sprintf("%s__bind_%d", fnName, owner.bindingSeq[fnName])
}

// FindName implements the §4.1 lookup algorithm. lookupScope is the name
// of the caller's scope (usually s.scopeName, but function specializations
// pass their own); scoped is the name being resolved.
func (s *Scope) FindName(lookupScope ScopeName, scoped ScopedName) (NamedObject, *status.Status) {
	var tried []string

	// Step 1: direct lookup when the scope-prefix is empty.
	if scoped.Scope.IsEmpty() {
		if obj, ok := s.GetName(scoped.Name); ok && s.accessible(lookupScope, obj) {
			return obj, nil
		}
	}

	// Step 2: candidate compound names from successively shorter
	// prefixes of lookupScope.
	root := s.root()
	for _, prefix := range lookupScope.Prefixes() {
		if len(prefix.Function) > 0 && len(scoped.Scope.Module) > 0 {
			// "Prefixes containing function-name components are
			// skipped when the target scope-prefix begins with a
			// module component."
			continue
		}
		candidate := prefix.Join(scoped.Scope)
		if obj, ok := navigate(root, candidate, scoped.Name); ok {
			if s.accessible(lookupScope, obj) {
				return obj, nil
			}
		}
		tried = append(tried, candidate.String()+"."+scoped.Name)
	}

	// Step 4: retry in the built-in scope with an empty lookup-scope.
	if s.builtin != nil && s.builtin != s {
		if obj, st := s.builtin.FindName(RootScopeName, scoped); st.Ok() {
			return obj, nil
		}
	}

	// Step 5: if the scope-prefix has no function components, try the
	// type store.
	if !scoped.Scope.HasFunctionComponents() && s.typeStore != nil {
		if t, ok := s.typeStore.FindType(scoped.Scope, scoped.Name); ok {
			return &typeNamedObject{name: scoped.Name, full: scoped, t: t}, nil
		}
	}

	// Step 6: accumulated not-found with closest-name alternatives.
	return nil, status.NotFound(
		fmt.Sprintf("name %q not found (tried: %v)", scoped.String(), tried),
		s.closestNames(scoped.Name, 3)...,
	)
}

// accessible implements §4.1 step 3: an object that lives inside a
// function body other than the one enclosing lookupScope is invisible.
func (s *Scope) accessible(lookupScope ScopeName, obj NamedObject) bool {
	owner, ok := obj.(interface{ ownerScopeName() ScopeName })
	if !ok {
		return true
	}
	ownerName := owner.ownerScopeName()
	if len(ownerName.Function) == 0 {
		return true
	}
	// Visible if the owning function path is a prefix of (or equal to)
	// the lookup scope's function path -- i.e. we are inside, or are,
	// that very function.
	if len(lookupScope.Function) < len(ownerName.Function) {
		return false
	}
	for i, part := range ownerName.Function {
		if lookupScope.Function[i] != part {
			return false
		}
	}
	return true
}

// root walks up to the outermost scope.
func (s *Scope) root() *Scope {
	r := s
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// navigate resolves a compound ScopeName starting at root, descending
// through child NameStores by simple identifier, then fetches the final
// identifier from the resulting store.
func navigate(root *Scope, name ScopeName, finalName string) (NamedObject, bool) {
	var cur NameStore = root
	for _, part := range name.Module {
		obj, ok := cur.GetName(part)
		if !ok {
			return nil, false
		}
		next, ok := obj.(NameStore)
		if !ok {
			return nil, false
		}
		cur = next
	}
	for _, part := range name.Function {
		obj, ok := cur.GetName(part)
		if !ok {
			return nil, false
		}
		next, ok := obj.(NameStore)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur.GetName(finalName)
}

// closestNames returns up to limit sibling identifiers in s closest to
// target by Levenshtein distance, for the §4.1 step 6 "did you mean"
// diagnostic (supplemented from original_source's NameStore::FindName
// suggestion behavior).
func (s *Scope) closestNames(target string, limit int) []string {
	type scored struct {
		name string
		dist int
	}
	var candidates []scored
	for _, n := range s.DefinedNames() {
		candidates = append(candidates, scored{n, levenshtein(target, n)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
	var out []string
	for i, c := range candidates {
		if i >= limit || c.dist > max(3, len(target)/2) {
			break
		}
		out = append(out, c.name)
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// typeNamedObject adapts a bare TypeSpec found via the type-store
// fallback (step 5) into a NamedObject, so FindName always returns a
// uniform result.
type typeNamedObject struct {
	name string
	full ScopedName
	t    TypeSpec
}

func (t *typeNamedObject) Name() string           { return t.name }
func (t *typeNamedObject) FullName() ScopedName   { return t.full }
func (t *typeNamedObject) Kind() Kind             { return KindType }
func (t *typeNamedObject) TypeSpec() TypeSpec     { return t.t }
func (t *typeNamedObject) ParentStore() NameStore { return nil }
