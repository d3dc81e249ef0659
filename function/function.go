// Package function implements functions and function groups (§4.5, C5):
// overload sets, method/constructor registration on type member stores,
// specialization synthesis for generic functions, and the result-type
// negotiation rules that mix return/yield/pass across a function body.
package function

import (
	"strings"

	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// Argument is one formal parameter, declared (possibly abstract) or
// concrete (once part of a specialization).
type Argument struct {
	Name    string
	Type    *types.Spec
	Default *ast.Expr
}

// Function is one function instance: either the generic template built
// from a FunctionDef, or a specialization produced by binding concrete
// argument types to a template (§4.5 "Specialization synthesis").
type Function struct {
	name      string
	scopeName scope.ScopeName
	kind      scope.Kind
	args      []Argument

	declaredResult *types.Spec
	concreteType   *types.Spec

	funcScope *scope.Scope
	body      *ast.Expr
	native    map[string]string

	bodyAnalyzed bool

	isSpecialization bool
	specializationOf *Function
	specializations  map[string]*Function
	failed           map[string]*status.Status

	sawReturn, sawYield, sawPass bool
	observed                     []*types.Spec

	parentStore scope.NameStore
}

// New builds a function template. declaredResult may be nil or abstract
// (containing local type parameters); body is nil for a native function.
func New(name string, kind scope.Kind, scopeName scope.ScopeName, args []Argument, declaredResult *types.Spec, body *ast.Expr, native map[string]string) *Function {
	f := &Function{
		name:           name,
		scopeName:      scopeName,
		kind:           kind,
		args:           args,
		declaredResult: declaredResult,
		body:           body,
		native:         native,
	}
	f.UpdateFunctionType()
	return f
}

// --- scope.NamedObject ---

func (f *Function) Name() string               { return f.name }
func (f *Function) FullName() scope.ScopedName { return scope.ScopedName{Scope: f.scopeName, Name: f.name} }
func (f *Function) Kind() scope.Kind           { return f.kind }
func (f *Function) TypeSpec() scope.TypeSpec   { return f.concreteType }
func (f *Function) ParentStore() scope.NameStore {
	return f.parentStore
}

// SetParentStore records the store f was registered into (its function
// group, or a type member store for methods/constructors).
func (f *Function) SetParentStore(s scope.NameStore) { f.parentStore = s }

// --- accessors ---

func (f *Function) Args() []Argument            { return f.args }
func (f *Function) DeclaredResultType() *types.Spec { return f.declaredResult }
func (f *Function) ConcreteType() *types.Spec   { return f.concreteType }
func (f *Function) FuncScope() *scope.Scope     { return f.funcScope }
func (f *Function) SetFuncScope(s *scope.Scope) { f.funcScope = s }
func (f *Function) Body() *ast.Expr             { return f.body }
func (f *Function) IsNative() bool              { return f.body == nil }
func (f *Function) Native() map[string]string   { return f.native }
func (f *Function) BodyAnalyzed() bool          { return f.bodyAnalyzed }
func (f *Function) SetBodyAnalyzed(v bool)      { f.bodyAnalyzed = v }
func (f *Function) IsSpecialization() bool      { return f.isSpecialization }
func (f *Function) SpecializationOf() *Function { return f.specializationOf }
func (f *Function) ScopeName() scope.ScopeName  { return f.scopeName }

// IsAbstract reports whether f still has unresolved argument or result
// types and therefore cannot be called directly without specialization.
func (f *Function) IsAbstract() bool {
	return f.concreteType.IsAbstract()
}

// Signature renders the (A1,A2,...) argument-type signature string used
// to key specializations (§4.5 "Specialization synthesis").
func Signature(argTypes []*types.Spec) string {
	parts := make([]string, len(argTypes))
	for i, t := range argTypes {
		if t == nil {
			parts[i] = "?"
			continue
		}
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// UpdateFunctionType rebuilds f.concreteType from its current args and
// declared/inferred result type, per §4.5's "the function's type is then
// rebuilt via UpdateFunctionType".
func (f *Function) UpdateFunctionType() {
	params := make([]types.Param, len(f.args))
	for i, a := range f.args {
		params[i] = types.TParam(a.Type)
	}
	f.concreteType = types.NewParametric(types.Function, "Function", f.declaredResult, params...)
}
