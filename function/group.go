package function

import (
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// Group is the set of functions sharing one simple name (§4.5 "Function
// group addition"): overloads for a plain name, or methods/constructors
// dispatched on a receiver type when isMethodGroup is set.
type Group struct {
	name          string
	scopeName     scope.ScopeName
	isMethodGroup bool
	members       []*Function
	groupType     *types.Spec
	parentStore   scope.NameStore
}

// NewGroup creates an empty function group.
func NewGroup(name string, scopeName scope.ScopeName, isMethodGroup bool) *Group {
	return &Group{name: name, scopeName: scopeName, isMethodGroup: isMethodGroup}
}

// --- scope.NamedObject ---

func (g *Group) Name() string               { return g.name }
func (g *Group) FullName() scope.ScopedName { return scope.ScopedName{Scope: g.scopeName, Name: g.name} }
func (g *Group) Kind() scope.Kind {
	if g.isMethodGroup {
		return scope.KindMethodGroup
	}
	return scope.KindFunctionGroup
}
func (g *Group) TypeSpec() scope.TypeSpec {
	if g.groupType == nil {
		return nil
	}
	return g.groupType
}
func (g *Group) ParentStore() scope.NameStore    { return g.parentStore }
func (g *Group) SetParentStore(s scope.NameStore) { g.parentStore = s }

// Members returns the group's functions in addition order.
func (g *Group) Members() []*Function {
	out := make([]*Function, len(g.members))
	copy(out, g.members)
	return out
}

// Add implements §4.5 "Function group addition": rejects a signature
// collision, rejects a non-method function joining a method group,
// restricts MainFunction to an empty group, and recomputes the group's
// Union signature type.
func (g *Group) Add(f *Function) *status.Status {
	for _, m := range g.members {
		if m.ConcreteType().IsEqual(f.ConcreteType()) {
			return status.Newf(status.CodeAlreadyExists,
				"function %q already has a member with signature %s", g.name, f.ConcreteType())
		}
	}
	if g.isMethodGroup && !scope.IsMethodKind(f.Kind()) {
		return status.Newf(status.CodeInvalidArgument,
			"%q is a method group; %s is not a method or constructor", g.name, f.Kind())
	}
	if f.Kind() == scope.KindMainFunction && len(g.members) > 0 {
		return status.New(status.CodeAlreadyExists, "a main function can only be added to an empty group")
	}
	g.members = append(g.members, f)
	f.SetParentStore(asMemberStore(g))
	g.recomputeType()
	return nil
}

func (g *Group) recomputeType() {
	sigs := make([]*types.Spec, len(g.members))
	for i, m := range g.members {
		sigs[i] = m.ConcreteType()
	}
	g.groupType = types.NewUnion(sigs...)
}

// FindSignature returns the member whose concrete type equals sig, per
// the §8 round-trip property ("AddFunction followed by FindSignature
// using the added signature returns the added function").
func (g *Group) FindSignature(sig *types.Spec) (*Function, bool) {
	for _, m := range g.members {
		if m.ConcreteType().IsEqual(sig) {
			return m, true
		}
	}
	return nil, false
}

// memberStoreAdapter lets a Group stand in as the scope.NameStore a
// Function's ParentStore points back to, without Group itself needing
// to support arbitrary name registration (its only "names" are its
// member signatures, addressed via FindSignature, not simple strings).
type memberStoreAdapter struct{ g *Group }

func asMemberStore(g *Group) scope.NameStore { return memberStoreAdapter{g} }

func (m memberStoreAdapter) HasName(name string) bool { return false }
func (m memberStoreAdapter) GetName(name string) (scope.NamedObject, bool) {
	return nil, false
}
func (m memberStoreAdapter) AddName(name string, obj scope.NamedObject) *status.Status {
	return status.Internal("function groups are not addressed by simple name, only by signature")
}
func (m memberStoreAdapter) AddChildStore(name string, child scope.ChildStore) *status.Status {
	return m.AddName(name, child)
}
func (m memberStoreAdapter) AddOwnedChildStore(name string, child scope.ChildStore) *status.Status {
	return m.AddName(name, child)
}
func (m memberStoreAdapter) DefinedNames() []string { return nil }
