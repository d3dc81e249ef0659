package types

import (
	"strconv"
	"strings"

	"github.com/NunaInc/nudl-analysis/scope"
)

// Param is one template parameter of a type: either a nested type
// descriptor or an integer literal (for types like Decimal<10,2>), per
// §3 ("an ordered list of parameters (other type descriptors or integer
// values)").
type Param struct {
	Type *Spec
	Int  *int
}

// TParam wraps a type as a Param.
func TParam(t *Spec) Param { return Param{Type: t} }

// IParam wraps an integer literal as a Param.
func IParam(v int) Param { v2 := v; return Param{Int: &v2} }

// IsInt reports whether p is an integer parameter.
func (p Param) IsInt() bool { return p.Int != nil }

func (p Param) String() string {
	if p.IsInt() {
		return strconv.Itoa(*p.Int)
	}
	if p.Type == nil {
		return "?"
	}
	return p.Type.String()
}

// Field is one member of a struct type (§3 "Struct types").
type Field struct {
	Name string
	Type *Spec
}

// Spec is a type descriptor (§3 "Type descriptors (TypeSpec)"). A zero
// Spec is never valid; use the constructors in this package.
type Spec struct {
	id          ID
	name        string
	scopeName   scope.ScopeName
	resultType  *Spec
	parameters  []Param
	memberStore *scope.BasicStore

	local     bool
	localName string
	bound     *Spec

	fields []Field
}

// New builds a non-parametric, non-local type descriptor (e.g. a basic
// scalar, or the bare constructor for a parametric family before Bind).
func New(id ID, name string) *Spec {
	return &Spec{id: id, name: name, memberStore: scope.NewBasicStore()}
}

// NewParametric builds a type descriptor with result type and ordered
// parameters (Array<E>, Map<K,V>, Function<R(A...)>, Union<...>, ...).
func NewParametric(id ID, name string, result *Spec, params ...Param) *Spec {
	return &Spec{id: id, name: name, resultType: result, parameters: params, memberStore: scope.NewBasicStore()}
}

// NewLocal builds a local type-parameter variable ({T} or {T : Bound}),
// per §3 ("Local type parameters"). A nil bound defaults to Any.
func NewLocal(name string, bound *Spec) *Spec {
	if bound == nil {
		bound = Builtin(Any)
	}
	return &Spec{id: Unknown, name: name, local: true, localName: name, bound: bound, memberStore: scope.NewBasicStore()}
}

// NewStruct builds a struct type with the given ordered fields; default
// object/copy constructors are registered onto its member store by the
// module driver at declaration time (§4.7), not here.
func NewStruct(name string, scopeName scope.ScopeName, fields []Field) *Spec {
	return &Spec{id: Struct, name: name, scopeName: scopeName, fields: fields, memberStore: scope.NewBasicStore()}
}

// NewUnion builds Union<members...>, collapsing a single member to
// itself and flattening nested unions, matching §4.5 rule 3's
// group-type construction ("Union<sig_1,…,sig_k>").
func NewUnion(members ...*Spec) *Spec {
	var flat []*Spec
	for _, m := range members {
		if m == nil {
			continue
		}
		if m.id == Union {
			for _, p := range m.parameters {
				flat = append(flat, p.Type)
			}
			continue
		}
		flat = append(flat, m)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	params := make([]Param, len(flat))
	for i, m := range flat {
		params[i] = TParam(m)
	}
	return NewParametric(Union, "Union", nil, params...)
}

// NewNullable builds Nullable<T>, defined as Union<T, Null> (§4.2).
func NewNullable(t *Spec) *Spec {
	return NewUnion(t, Builtin(Null))
}

// Builtin returns a cached singleton for a non-parametric built-in kind.
func Builtin(id ID) *Spec {
	if s, ok := builtinCache[id]; ok {
		return s
	}
	s := New(id, id.String())
	builtinCache[id] = s
	return s
}

var builtinCache = map[ID]*Spec{}

// --- accessors ---

func (t *Spec) ID() ID                   { return t.id }
func (t *Spec) Parameters() []Param      { return t.parameters }
func (t *Spec) ResultType() *Spec        { return t.resultType }
func (t *Spec) Fields() []Field          { return t.fields }
func (t *Spec) IsLocal() bool            { return t.local }
func (t *Spec) LocalName() string        { return t.localName }
func (t *Spec) Bound() *Spec             { return t.bound }
func (t *Spec) MemberStore() *scope.BasicStore { return t.memberStore }
func (t *Spec) ScopeName() scope.ScopeName     { return t.scopeName }

// IsAbstract reports whether t still has unresolved parameters: it is a
// local type itself, or any parameter (recursively) is.
func (t *Spec) IsAbstract() bool {
	if t.local {
		return true
	}
	for _, p := range t.parameters {
		if !p.IsInt() && p.Type != nil && p.Type.IsAbstract() {
			return true
		}
	}
	if t.resultType != nil && t.resultType.IsAbstract() {
		return true
	}
	return false
}

// IsBound is the complement of IsAbstract (§3 "Types are bound when all
// their parameters are concretely resolved; otherwise abstract.").
func (t *Spec) IsBound() bool { return !t.IsAbstract() }

// Clone returns a shallow copy of t that shares the member store (per
// §3 "Types may be Clone'd; clones share the member store but can be
// separately mutated for parameter binding") but owns its own parameter
// slice so that Bind on the clone never mutates t.
func (t *Spec) Clone() *Spec {
	out := *t
	out.parameters = make([]Param, len(t.parameters))
	copy(out.parameters, t.parameters)
	return &out
}

// IsEqual reports structural equality: same outer id/name, same result
// type, same parameters pairwise, same local-name/bound if local.
func (t *Spec) IsEqual(o *Spec) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	if t.local || o.local {
		return t.local == o.local && t.localName == o.localName
	}
	if t.id != o.id || t.name != o.name {
		return false
	}
	if (t.resultType == nil) != (o.resultType == nil) {
		return false
	}
	if t.resultType != nil && !t.resultType.IsEqual(o.resultType) {
		return false
	}
	if len(t.parameters) != len(o.parameters) {
		return false
	}
	for i := range t.parameters {
		a, b := t.parameters[i], o.parameters[i]
		if a.IsInt() != b.IsInt() {
			return false
		}
		if a.IsInt() {
			if *a.Int != *b.Int {
				return false
			}
			continue
		}
		if !a.Type.IsEqual(b.Type) {
			return false
		}
	}
	return true
}

// TypeName implements scope.TypeSpec.
func (t *Spec) TypeName() string { return t.name }

// String renders t in NuDL type syntax, e.g. "Array<Int>",
// "Function<Int(Int,Int)>", "{T : Numeric}". A two-member Union whose
// second member is Null renders as "Nullable<T>".
func (t *Spec) String() string {
	if t.local {
		if t.bound != nil && t.bound.id != Any {
			return "{" + t.localName + " : " + t.bound.String() + "}"
		}
		return "{" + t.localName + "}"
	}
	if t.id == Function {
		args := make([]string, len(t.parameters))
		for i, p := range t.parameters {
			args[i] = p.String()
		}
		result := "Unknown"
		if t.resultType != nil {
			result = t.resultType.String()
		}
		return "Function<" + result + "(" + strings.Join(args, ",") + ")>"
	}
	if len(t.parameters) == 0 {
		return t.name
	}
	if t.id == Union && len(t.parameters) == 2 && t.parameters[1].Type != nil && t.parameters[1].Type.id == Null {
		return "Nullable<" + t.parameters[0].String() + ">"
	}
	parts := make([]string, len(t.parameters))
	for i, p := range t.parameters {
		parts[i] = p.String()
	}
	return t.name + "<" + strings.Join(parts, ",") + ">"
}

// --- scope.NamedObject ---

func (t *Spec) Name() string                 { return t.name }
func (t *Spec) FullName() scope.ScopedName   { return scope.ScopedName{Scope: t.scopeName, Name: t.name} }
func (t *Spec) Kind() scope.Kind             { return scope.KindType }
func (t *Spec) TypeSpec() scope.TypeSpec     { return t }
func (t *Spec) ParentStore() scope.NameStore { return nil }
