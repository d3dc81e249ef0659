package scope

// TypeSpec is the minimal contract a type descriptor must satisfy to be
// attached to a named object. The full TypeSpec implementation lives in
// package types; this interface exists only so package scope never has
// to import it (types imports scope, not the other way around).
type TypeSpec interface {
	// TypeName is the type's simple or qualified display name (e.g.
	// "Int", "Array<Int>").
	TypeName() string
	String() string
}

// NamedObject is the capability every addressable entity in the analyzer
// implements, per §3 ("Named objects").
type NamedObject interface {
	Name() string
	FullName() ScopedName
	Kind() Kind
	TypeSpec() TypeSpec
	ParentStore() NameStore
}

// Object is a small, embeddable NamedObject implementation used directly
// for variables, parameters, arguments and fields, and embedded by the
// richer objects defined in other packages (functions, types, scopes).
type Object struct {
	name     string
	full     ScopedName
	kind     Kind
	typeSpec TypeSpec
	parent   NameStore
}

// NewObject builds a plain named object. scopeName is the scope the
// object is defined in; its ScopedName is derived from scopeName+name.
func NewObject(name string, kind Kind, t TypeSpec, parent NameStore, scopeName ScopeName) *Object {
	return &Object{
		name:     name,
		full:     ScopedName{Scope: scopeName, Name: name},
		kind:     kind,
		typeSpec: t,
		parent:   parent,
	}
}

func (o *Object) Name() string             { return o.name }
func (o *Object) FullName() ScopedName     { return o.full }
func (o *Object) Kind() Kind               { return o.kind }
func (o *Object) TypeSpec() TypeSpec       { return o.typeSpec }
func (o *Object) ParentStore() NameStore   { return o.parent }
func (o *Object) SetTypeSpec(t TypeSpec)   { o.typeSpec = t }
func (o *Object) SetParentStore(p NameStore) { o.parent = p }

// ownerScopeName exposes the scope this object was defined in, so
// (*Scope).accessible can tell whether a var-kind object belongs to a
// function body other than the one currently being resolved (§4.1 step
// 3).
func (o *Object) ownerScopeName() ScopeName { return o.full.Scope }
