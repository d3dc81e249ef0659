// Package module implements the module driver (§4.7, C7): it walks a
// module's top-level elements in declaration order, wiring imports,
// schema and type definitions, function definitions, and module-level
// assignments into the scope/type-store/function machinery built by
// packages scope, types, function, and binding, accumulating errors
// across elements rather than failing fast.
package module

import (
	"strings"

	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/binding"
	"github.com/NunaInc/nudl-analysis/expr"
	"github.com/NunaInc/nudl-analysis/function"
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// Reserved back-end hook names for synthesized struct constructors
// (§6 "Reserved names").
const (
	ReservedObjectConstructor = "__struct_object_constructor__"
	ReservedCopyConstructor   = "__struct_copy_constructor__"
)

// Environment is the outermost owner (§9 "Cyclic graphs": "the
// outermost Environment owns the top scope and type store"): the
// built-in scope every module's name lookup falls back to, the root of
// the type-store tree each module's sub-store nests under, and the
// shared Binder/Resolver wired into every negotiation context. Store is
// assigned once, after both the Environment and its ModuleStore exist
// (they are mutually referential): `env := NewEnvironment();
// env.Store = module.NewMemoryStore(env)`.
type Environment struct {
	Builtin  *scope.Scope
	Types    *types.Store
	Binder   *binding.Binder
	Resolver Resolver
	Store    ModuleStore

	// PragmaHandler, when set, becomes the default PragmaHandler of every
	// module analyzed against this environment; a module may still
	// override its own after Analyze returns.
	PragmaHandler func(name string, args []string) *status.Status
}

// NewEnvironment creates an Environment whose root type store declares
// every built-in type kind under its name (Int, String, Array, ...) and
// whose built-in scope holds no other names. Callers must still assign
// Store before analyzing any module that imports another.
func NewEnvironment() *Environment {
	root := scope.NewScope("", scope.KindScope, scope.RootScopeName, nil)
	root.SetAsBuiltin()
	ts := types.NewStore()
	for id := types.Any; id <= types.Generator; id++ {
		_ = ts.DeclareType(id.String(), types.Builtin(id))
	}
	root.SetTypeStore(ts)
	return &Environment{Builtin: root, Types: ts, Binder: binding.New()}
}

var _ expr.TypeResolver = Resolver{}

// AnalyzeModule drives path as the top-level (non-imported) module
// being analyzed.
func (env *Environment) AnalyzeModule(path, filePath string, src *ast.Module) (*Module, *status.Status) {
	return Analyze(env, path, filePath, src, nil)
}

// Module is one analyzed NuDL module: a scope (for its module-level
// names) paired with its own type-store sub-node, the struct types it
// declared, its optional main function, and an optional pragma handler
// (§3 "Modules").
type Module struct {
	*scope.Scope

	Env      *Environment
	Path     string
	FilePath string
	Types    *types.Store
	Structs  map[string]*types.Spec
	Main     *function.Function

	// PragmaHandler, when set, implements the module's diagnostic
	// toggles (§9 "Global mutable state": "pass these through the
	// pragma handler attached to a module").
	PragmaHandler func(name string, args []string) *status.Status

	ctorErr *status.Status
}

func newModule(env *Environment, path, filePath string) *Module {
	scopeName := scope.ScopeName{Module: strings.Split(path, ".")}
	s := scope.NewScope(path, scope.KindModule, scopeName, env.Builtin)
	ts := env.Types.NewChild(path)
	s.SetTypeStore(ts)

	m := &Module{
		Scope:         s,
		Env:           env,
		Path:          path,
		FilePath:      filePath,
		Types:         ts,
		Structs:       map[string]*types.Spec{},
		PragmaHandler: env.PragmaHandler,
	}
	ts.AddRegistrationCallback(m.onTypeDeclared)
	return m
}

// onTypeDeclared synthesizes the default object and copy constructors
// for a newly declared struct type (§4.7 "Schema"). It is idempotent
// against a type-def clone sharing the original struct's member store
// (§3: "clones share the member store"): constructors are only
// synthesized once per member store.
func (m *Module) onTypeDeclared(_ string, t *types.Spec) {
	if t.ID() != types.Struct {
		return
	}
	if t.MemberStore().HasName(function.ReservedInit) {
		return
	}
	if st := m.synthesizeConstructors(t); st != nil {
		m.ctorErr = status.Join(m.ctorErr, st)
	}
}

func (m *Module) synthesizeConstructors(t *types.Spec) *status.Status {
	objArgs := make([]function.Argument, len(t.Fields()))
	for i, f := range t.Fields() {
		objArgs[i] = function.Argument{Name: f.Name, Type: f.Type}
	}
	objCtor := function.New(function.ReservedInit, scope.KindConstructor, t.ScopeName(), objArgs, t, nil,
		map[string]string{"go": ReservedObjectConstructor})
	if st := function.ValidateConstructor(objCtor, t); st != nil {
		return st
	}
	if st := function.RegisterConstructor(objCtor, t); st != nil {
		return st
	}

	copyCtor := function.New(function.ReservedInit, scope.KindConstructor, t.ScopeName(),
		[]function.Argument{{Name: "other", Type: t}}, t, nil,
		map[string]string{"go": ReservedCopyConstructor})
	if st := function.ValidateConstructor(copyCtor, t); st != nil {
		return st
	}
	return function.RegisterConstructor(copyCtor, t)
}

// addToModuleGroup registers f under its simple name in m's own name
// store, creating the function group on first use, mirroring
// function.RegisterMethod/RegisterConstructor's member-store pattern
// but targeting a module's own names (§4.5 "Function group addition").
func (m *Module) addToModuleGroup(f *function.Function) *status.Status {
	existing, ok := m.GetName(f.Name())
	var group *function.Group
	if ok {
		group, ok = existing.(*function.Group)
		if !ok {
			return status.Newf(status.CodeAlreadyExists, "%s is already defined as a non-function member", f.Name())
		}
	} else {
		group = function.NewGroup(f.Name(), m.ScopeName(), false)
		if st := m.AddName(f.Name(), group); st != nil {
			return st
		}
	}
	return group.Add(f)
}
