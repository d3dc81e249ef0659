package binding_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/binding"
	"github.com/NunaInc/nudl-analysis/expr"
	"github.com/NunaInc/nudl-analysis/function"
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/types"
)

func newModuleScope() *scope.Scope {
	s := scope.NewScope("m", scope.KindModule, scope.ScopeName{Module: []string{"m"}}, nil)
	s.SetAsBuiltin()
	return s
}

func intLit(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLiteral, Literal: &ast.Literal{Kind: ast.LitInt, Int: v}}
}

func callOf(name string, args ...*ast.Expr) *ast.Expr {
	callArgs := make([]ast.CallArgument, len(args))
	for i, a := range args {
		callArgs[i] = ast.CallArgument{Expr: a}
	}
	return &ast.Expr{Kind: ast.ExprFunctionCall, CallIdentifier: []string{name}, CallArgs: callArgs}
}

func addFunction(t *testing.T, s *scope.Scope, f *function.Function) {
	t.Helper()
	g, ok := s.GetName(f.Name())
	if !ok {
		g = function.NewGroup(f.Name(), s.ScopeName(), false)
		require.Nil(t, s.AddName(f.Name(), g))
	}
	require.Nil(t, g.(*function.Group).Add(f))
}

func TestBindCallResolvesSingleOverload(t *testing.T) {
	s := newModuleScope()
	f := function.New("double", scope.KindFunction, s.ScopeName(),
		[]function.Argument{{Name: "x", Type: types.Builtin(types.Int)}}, types.Builtin(types.Int), nil, map[string]string{"go": "double"})
	addFunction(t, s, f)

	b := binding.New()
	ctx := &expr.Context{Scope: s, Binder: b}
	ty, st := b.BindCall(ctx, callOf("double", intLit(3)), nil)
	require.Nil(t, st)
	assert.Equal(t, "Function<Int(Int)>", ty.String())
}

func TestBindCallSelectsMostSpecificOverload(t *testing.T) {
	s := newModuleScope()
	f1 := function.New("f", scope.KindFunction, s.ScopeName(),
		[]function.Argument{{Name: "x", Type: types.Builtin(types.Numeric)}}, types.Builtin(types.String), nil, map[string]string{"go": "f1"})
	f2 := function.New("f", scope.KindFunction, s.ScopeName(),
		[]function.Argument{{Name: "x", Type: types.Builtin(types.Int)}}, types.Builtin(types.Int), nil, map[string]string{"go": "f2"})
	addFunction(t, s, f1)
	addFunction(t, s, f2)

	b := binding.New()
	ctx := &expr.Context{Scope: s, Binder: b}
	bnd, st := b.Bind(ctx, callOf("f", intLit(3)), nil)
	require.Nil(t, st)
	assert.Same(t, f2, bnd.Func)
}

func TestBindCallMissingArgumentUsesDefault(t *testing.T) {
	s := newModuleScope()
	f := function.New("g", scope.KindFunction, s.ScopeName(),
		[]function.Argument{{Name: "x", Type: types.Builtin(types.Int), Default: intLit(7)}}, types.Builtin(types.Int), nil, map[string]string{"go": "g"})
	addFunction(t, s, f)

	b := binding.New()
	ctx := &expr.Context{Scope: s, Binder: b}
	bnd, st := b.Bind(ctx, callOf("g"), nil)
	require.Nil(t, st)
	require.Len(t, bnd.CallArgs, 1)
	assert.Equal(t, int64(7), bnd.CallArgs[0].Literal.Int)
}

func TestBindCallMissingArgumentWithoutDefaultFails(t *testing.T) {
	s := newModuleScope()
	f := function.New("g", scope.KindFunction, s.ScopeName(),
		[]function.Argument{{Name: "x", Type: types.Builtin(types.Int)}}, types.Builtin(types.Int), nil, map[string]string{"go": "g"})
	addFunction(t, s, f)

	b := binding.New()
	ctx := &expr.Context{Scope: s, Binder: b}
	_, st := b.Bind(ctx, callOf("g"), nil)
	require.False(t, st.Ok())
}

func TestBindCallRejectsUnconsumedArgument(t *testing.T) {
	s := newModuleScope()
	f := function.New("g", scope.KindFunction, s.ScopeName(),
		[]function.Argument{{Name: "x", Type: types.Builtin(types.Int)}}, types.Builtin(types.Int), nil, map[string]string{"go": "g"})
	addFunction(t, s, f)

	b := binding.New()
	ctx := &expr.Context{Scope: s, Binder: b}
	_, st := b.Bind(ctx, callOf("g", intLit(1), intLit(2)), nil)
	require.False(t, st.Ok())
}

func TestBindCallSpecializesGenericTemplate(t *testing.T) {
	s := newModuleScope()
	localT := types.NewLocal("T", nil)
	body := &ast.Expr{Kind: ast.ExprBlock, Statements: []*ast.Expr{
		{Kind: ast.ExprFunctionResult, ResultKind: ast.ResultReturn, ResultValue: &ast.Expr{
			Kind: ast.ExprIdentifier, Identifier: []string{"x"},
		}},
	}}
	tmpl := function.New("id", scope.KindFunction, s.ScopeName(),
		[]function.Argument{{Name: "x", Type: localT}}, localT, body, nil)
	tmpl.SetFuncScope(s)
	addFunction(t, s, tmpl)

	b := binding.New()
	ctx := &expr.Context{Scope: s, Binder: b}
	bnd, st := b.Bind(ctx, callOf("id", intLit(3)), nil)
	require.Nil(t, st)
	require.NotNil(t, bnd.Func)
	assert.True(t, bnd.Func.IsSpecialization())
	assert.Equal(t, "Int", bnd.Func.ConcreteType().ResultType().String())
	assert.Len(t, tmpl.Specializations(), 1)

	bnd2, st := b.Bind(ctx, callOf("id", intLit(5)), nil)
	require.Nil(t, st)
	assert.Same(t, bnd.Func, bnd2.Func)
	assert.Len(t, tmpl.Specializations(), 1)
}

func TestBindCallAmbiguousOverloadsFails(t *testing.T) {
	s := newModuleScope()
	localA := types.NewLocal("A", nil)
	localB := types.NewLocal("B", nil)
	f1 := function.New("h", scope.KindFunction, s.ScopeName(),
		[]function.Argument{{Name: "x", Type: localA}}, types.Builtin(types.Int), nil, map[string]string{"go": "h1"})
	f2 := function.New("h", scope.KindFunction, s.ScopeName(),
		[]function.Argument{{Name: "x", Type: localB}}, types.Builtin(types.String), nil, map[string]string{"go": "h2"})
	addFunction(t, s, f1)
	addFunction(t, s, f2)

	b := binding.New()
	ctx := &expr.Context{Scope: s, Binder: b}
	_, st := b.Bind(ctx, callOf("h", intLit(3)), nil)
	require.False(t, st.Ok())
}

func TestBindCallUnknownFunctionFails(t *testing.T) {
	s := newModuleScope()
	b := binding.New()
	ctx := &expr.Context{Scope: s, Binder: b}
	_, st := b.Bind(ctx, callOf("nope", intLit(1)), nil)
	require.False(t, st.Ok())
}
