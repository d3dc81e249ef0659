package module

import (
	"strings"

	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/expr"
	"github.com/NunaInc/nudl-analysis/function"
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// Analyze drives §4.7: it walks src's top-level elements in order,
// dispatching each to its handler and merging errors across elements so
// that one failing definition does not hide the diagnostics of later
// ones (§7). importChain is the dotted path of modules currently being
// analyzed, from the outermost import down to path, used for cycle
// detection by the ModuleStore collaborator; it is empty for the
// top-level module.
func Analyze(env *Environment, path, filePath string, src *ast.Module, importChain []string) (*Module, *status.Status) {
	m := newModule(env, path, filePath)
	chain := append(append([]string{}, importChain...), path)

	var all *status.Status
	for _, el := range src.Elements {
		var st *status.Status
		switch el.Kind {
		case ast.ExprImport:
			st = m.handleImport(el, chain)
		case ast.ExprSchemaDef:
			st = m.handleSchemaDef(el)
		case ast.ExprFunctionDef:
			st = m.handleFunctionDef(el)
		case ast.ExprAssignment:
			st = m.handleAssignment(el)
		case ast.ExprTypeDef:
			st = m.handleTypeDef(el)
		case ast.ExprPragma:
			st = m.handlePragma(el)
		case ast.ExprNop:
			// no-op, per §6's closed element sum.
		default:
			st = status.Newf(status.CodeInvalidArgument, "unsupported top-level element kind %d", el.Kind)
		}
		all = status.Join(all, st)
	}
	return m, all
}

func lastSegment(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}

// handleImport resolves el's target module through the environment's
// ModuleStore and adds it as an (unowned) child store under its local
// or aliased name, registering a type-store alias when aliased (§4.7
// "Import").
func (m *Module) handleImport(el *ast.Expr, importChain []string) *status.Status {
	for _, p := range importChain {
		if p == el.ImportModule {
			return status.Newf(status.CodeInvalidArgument,
				"import cycle: %s re-enters %q", strings.Join(importChain, " -> "), el.ImportModule)
		}
	}
	if m.Env.Store == nil {
		return status.Internal("no module store collaborator configured on the environment")
	}
	imported, st := m.Env.Store.ImportModule(el.ImportModule, importChain)
	if st != nil {
		return st
	}

	defaultLocal := lastSegment(el.ImportModule)
	local := el.ImportLocal
	if local == "" {
		local = defaultLocal
	}
	if st := m.AddChildStore(local, imported); st != nil {
		return st
	}
	if el.ImportLocal != "" && el.ImportLocal != defaultLocal {
		m.Types.AddAlias(imported.Types)
	}
	return nil
}

// handleSchemaDef validates el's name and fields, resolves each field's
// type, and registers the struct in the module's type sub-store,
// triggering onTypeDeclared's constructor synthesis (§4.7 "Schema").
func (m *Module) handleSchemaDef(el *ast.Expr) *status.Status {
	if el.SchemaName == "" {
		return status.New(status.CodeInvalidArgument, "schema definition requires a name")
	}
	seen := map[string]bool{}
	fields := make([]types.Field, len(el.SchemaFields))
	var errs []*status.Status
	for i, fd := range el.SchemaFields {
		if fd.Name == "" {
			errs = append(errs, status.Newf(status.CodeInvalidArgument, "schema %s: field %d requires a name", el.SchemaName, i))
			continue
		}
		if seen[fd.Name] {
			errs = append(errs, status.Newf(status.CodeAlreadyExists, "schema %s: duplicate field %q", el.SchemaName, fd.Name))
			continue
		}
		seen[fd.Name] = true
		ft, st := ResolveTypeExpr(m.Scope, fd.Type)
		if st != nil {
			errs = append(errs, st)
			continue
		}
		fields[i] = types.Field{Name: fd.Name, Type: ft}
	}
	if st := status.Join(errs...); st != nil {
		return st
	}

	spec := types.NewStruct(el.SchemaName, m.ScopeName(), fields)
	m.ctorErr = nil
	if st := m.Types.DeclareType(el.SchemaName, spec); st != nil {
		return st
	}
	if m.ctorErr != nil {
		return m.ctorErr
	}
	m.Structs[el.SchemaName] = spec
	return nil
}

// handleFunctionDef builds the function from el and adds it to the
// appropriate group (method/constructor member store, module-level
// group, or the reserved main-function slot), analyzing its body
// immediately when every argument type is already concrete (§4.7
// "Function definition").
func (m *Module) handleFunctionDef(el *ast.Expr) *status.Status {
	args := make([]function.Argument, len(el.FuncArgs))
	concrete := true
	var errs []*status.Status
	for i, ad := range el.FuncArgs {
		var at *types.Spec
		if ad.Type != nil {
			t, st := ResolveTypeExpr(m.Scope, ad.Type)
			if st != nil {
				errs = append(errs, st)
				continue
			}
			at = t
		} else {
			at = types.NewLocal(m.NextLocalName(el.FuncName+"_"+ad.Name), nil)
		}
		if at.IsAbstract() {
			concrete = false
		}
		args[i] = function.Argument{Name: ad.Name, Type: at, Default: ad.Default}
	}
	var declaredResult *types.Spec
	if el.FuncResultType != nil {
		rt, st := ResolveTypeExpr(m.Scope, el.FuncResultType)
		if st != nil {
			errs = append(errs, st)
		} else {
			declaredResult = rt
		}
	}
	if st := status.Join(errs...); st != nil {
		return st
	}

	var body *ast.Expr
	if el.FuncNative == nil {
		body = &ast.Expr{Kind: ast.ExprBlock, Statements: el.FuncBody}
	}
	f := function.New(el.FuncName, functionKindOf(el.FuncKind), m.ScopeName(), args, declaredResult, body, el.FuncNative)

	switch el.FuncKind {
	case ast.FuncMethod:
		if len(args) == 0 {
			return status.Newf(status.CodeInvalidArgument, "method %s must declare a receiver argument", el.FuncName)
		}
		if st := function.RegisterMethod(f, args[0].Type); st != nil {
			return st
		}
	case ast.FuncConstructor:
		if declaredResult == nil {
			return status.Newf(status.CodeInvalidArgument, "constructor %s must declare a result type", el.FuncName)
		}
		if st := function.ValidateConstructor(f, declaredResult); st != nil {
			return st
		}
		if st := function.RegisterConstructor(f, declaredResult); st != nil {
			return st
		}
	case ast.FuncMain:
		if st := function.ValidateMain(f); st != nil {
			return st
		}
		if m.Main != nil {
			return status.New(status.CodeAlreadyExists, "module already has a main function")
		}
		if st := m.addToModuleGroup(f); st != nil {
			return st
		}
		m.Main = f
	default:
		if st := m.addToModuleGroup(f); st != nil {
			return st
		}
	}

	if f.IsNative() {
		f.SetBodyAnalyzed(true)
		return nil
	}
	if !concrete {
		// Body analysis deferred to the function's first specialization
		// (§4.5 "Specialization synthesis").
		return nil
	}

	funcScopeName := m.ScopeName().WithFunction(f.Name())
	fscope := scope.NewScope(f.Name(), f.Kind(), funcScopeName, m.Scope)
	for _, a := range f.Args() {
		obj := scope.NewObject(a.Name, scope.KindArgument, a.Type, fscope, funcScopeName)
		if st := fscope.AddName(a.Name, obj); st != nil {
			return st
		}
	}
	f.SetFuncScope(fscope)

	ctx := &expr.Context{Scope: fscope, Binder: m.Env.Binder, Resolver: m.Env.Resolver}
	return m.Env.Binder.AnalyzeBody(ctx, f)
}

func functionKindOf(k ast.FunctionKind) scope.Kind {
	switch k {
	case ast.FuncMethod:
		return scope.KindMethod
	case ast.FuncConstructor:
		return scope.KindConstructor
	case ast.FuncMain:
		return scope.KindMainFunction
	case ast.FuncLambda:
		return scope.KindLambda
	default:
		return scope.KindFunction
	}
}

// handleAssignment negotiates a module-level assignment exactly as any
// other assignment (§4.7 "Module-level assignment" defers to §4.4); the
// `param` qualifier producing a Parameter rather than a Variable is
// already implemented by negotiateAssignment.
func (m *Module) handleAssignment(el *ast.Expr) *status.Status {
	ctx := &expr.Context{Scope: m.Scope, Binder: m.Env.Binder, Resolver: m.Env.Resolver}
	_, st := expr.Build(m.Scope, el).NegotiateType(ctx, nil)
	return st
}

// handleTypeDef resolves el's right-hand type expression, clones it as
// a type scoped to this module, and registers the alias (§4.7 "Type
// definition").
func (m *Module) handleTypeDef(el *ast.Expr) *status.Status {
	if el.TypeDefName == "" {
		return status.New(status.CodeInvalidArgument, "type definition requires a name")
	}
	base, st := ResolveTypeExpr(m.Scope, el.TypeDefExpr)
	if st != nil {
		return st
	}
	clone := base.Clone()
	m.ctorErr = nil
	if st := m.Types.DeclareType(el.TypeDefName, clone); st != nil {
		return st
	}
	if m.ctorErr != nil {
		return m.ctorErr
	}
	if clone.ID() == types.Struct {
		m.Structs[el.TypeDefName] = clone
	}
	return nil
}

// handlePragma dispatches to the module's pragma handler, if any,
// without altering program semantics (§4.7 "Pragma").
func (m *Module) handlePragma(el *ast.Expr) *status.Status {
	if m.PragmaHandler == nil {
		return nil
	}
	return m.PragmaHandler(el.PragmaName, el.PragmaArgs)
}
