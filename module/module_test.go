package module_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/function"
	"github.com/NunaInc/nudl-analysis/module"
	"github.com/NunaInc/nudl-analysis/status"
)

func intType() *ast.TypeExpr { return &ast.TypeExpr{Name: "Int"} }

func intLit(v int64) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLiteral, Literal: &ast.Literal{Kind: ast.LitInt, Int: v}}
}

func ident(name string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprIdentifier, Identifier: []string{name}}
}

func add(a, b *ast.Expr) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprOperator, Operator: "+", Operands: []*ast.Expr{a, b}}
}

func dottedCall(parts []string, args ...*ast.Expr) *ast.Expr {
	callArgs := make([]ast.CallArgument, len(args))
	for i, a := range args {
		callArgs[i] = ast.CallArgument{Expr: a}
	}
	return &ast.Expr{Kind: ast.ExprFunctionCall, CallIdentifier: parts, CallArgs: callArgs}
}

func newEnv() *module.Environment {
	env := module.NewEnvironment()
	env.Store = module.NewMemoryStore(env)
	return env
}

func TestModuleLevelAssignment(t *testing.T) {
	env := newEnv()
	src := &ast.Module{Path: "m", Elements: []*ast.Expr{
		{Kind: ast.ExprAssignment, AssignName: "x", AssignType: intType(), AssignValue: intLit(3)},
	}}
	m, st := env.AnalyzeModule("m", "", src)
	require.Nil(t, st)
	obj, ok := m.GetName("x")
	require.True(t, ok)
	assert.Equal(t, "Int", obj.TypeSpec().(interface{ String() string }).String())
}

func TestFunctionDefAnalyzesConcreteBodyImmediately(t *testing.T) {
	env := newEnv()
	body := []*ast.Expr{
		{Kind: ast.ExprFunctionResult, ResultKind: ast.ResultReturn, ResultValue: add(ident("x"), intLit(1))},
	}
	src := &ast.Module{Path: "A", Elements: []*ast.Expr{
		{Kind: ast.ExprFunctionDef, FuncName: "g", FuncKind: ast.FuncPlain,
			FuncArgs: []ast.ArgumentDecl{{Name: "x", Type: intType()}}, FuncBody: body},
	}}
	m, st := env.AnalyzeModule("A", "", src)
	require.Nil(t, st)
	g, ok := m.GetName("g")
	require.True(t, ok)
	group, ok := g.(*function.Group)
	require.True(t, ok)
	require.Len(t, group.Members(), 1)
	assert.True(t, group.Members()[0].BodyAnalyzed())
	assert.Equal(t, "Int", group.Members()[0].ConcreteType().ResultType().String())
}

func TestSchemaDefSynthesizesConstructors(t *testing.T) {
	env := newEnv()
	src := &ast.Module{Path: "s", Elements: []*ast.Expr{
		{Kind: ast.ExprSchemaDef, SchemaName: "Point", SchemaFields: []ast.FieldDecl{
			{Name: "x", Type: intType()}, {Name: "y", Type: intType()},
		}},
	}}
	m, st := env.AnalyzeModule("s", "", src)
	require.Nil(t, st)
	point, ok := m.Structs["Point"]
	require.True(t, ok)
	ctor, ok := point.MemberStore().GetName(function.ReservedInit)
	require.True(t, ok)
	group, ok := ctor.(*function.Group)
	require.True(t, ok)
	require.Len(t, group.Members(), 2) // object constructor + copy constructor
}

func TestSchemaDefRejectsDuplicateField(t *testing.T) {
	env := newEnv()
	src := &ast.Module{Path: "s", Elements: []*ast.Expr{
		{Kind: ast.ExprSchemaDef, SchemaName: "Bad", SchemaFields: []ast.FieldDecl{
			{Name: "x", Type: intType()}, {Name: "x", Type: intType()},
		}},
	}}
	_, st := env.AnalyzeModule("s", "", src)
	require.False(t, st.Ok())
}

func TestTopLevelErrorsAccumulateAcrossElements(t *testing.T) {
	env := newEnv()
	src := &ast.Module{Path: "m", Elements: []*ast.Expr{
		{Kind: ast.ExprAssignment, AssignName: "bad", AssignValue: ident("nope")},
		{Kind: ast.ExprAssignment, AssignName: "y", AssignValue: intLit(1)},
	}}
	m, st := env.AnalyzeModule("m", "", src)
	require.False(t, st.Ok())
	_, ok := m.GetName("y")
	assert.True(t, ok, "later definitions must still be processed after an earlier failure")
}

func TestPragmaIsANoOpWithoutAHandler(t *testing.T) {
	env := newEnv()
	src := &ast.Module{Path: "m", Elements: []*ast.Expr{
		{Kind: ast.ExprPragma, PragmaName: "log_bindings", PragmaArgs: []string{"on"}},
	}}
	built, st := env.AnalyzeModule("m", "", src)
	require.Nil(t, st)
	assert.Nil(t, built.PragmaHandler)
}

func TestPragmaDispatchesToHandler(t *testing.T) {
	env := newEnv()
	var seenName string
	var seenArgs []string
	env.PragmaHandler = func(name string, args []string) *status.Status {
		seenName, seenArgs = name, args
		return nil
	}
	src := &ast.Module{Path: "m", Elements: []*ast.Expr{
		{Kind: ast.ExprPragma, PragmaName: "log_bindings", PragmaArgs: []string{"on"}},
	}}
	_, st := env.AnalyzeModule("m", "", src)
	require.Nil(t, st)
	assert.Equal(t, "log_bindings", seenName)
	assert.Equal(t, []string{"on"}, seenArgs)
}

func TestImportAcrossModulesScenarioSix(t *testing.T) {
	env := newEnv()
	store := env.Store.(*module.MemoryStore)

	aBody := []*ast.Expr{
		{Kind: ast.ExprFunctionResult, ResultKind: ast.ResultReturn, ResultValue: add(ident("x"), intLit(1))},
	}
	store.SetModuleCode("A", &ast.Module{Path: "A", Elements: []*ast.Expr{
		{Kind: ast.ExprFunctionDef, FuncName: "g", FuncKind: ast.FuncPlain,
			FuncArgs: []ast.ArgumentDecl{{Name: "x", Type: intType()}}, FuncBody: aBody},
	}})

	bSrc := &ast.Module{Path: "B", Elements: []*ast.Expr{
		{Kind: ast.ExprImport, ImportModule: "A"},
		{Kind: ast.ExprAssignment, AssignName: "y", AssignValue: dottedCall([]string{"A", "g"}, intLit(10))},
	}}
	b, st := env.AnalyzeModule("B", "", bSrc)
	require.Nil(t, st)

	aObj, ok := b.GetName("A")
	require.True(t, ok, "A must appear in B's child stores under name \"A\"")
	aMod, ok := aObj.(*module.Module)
	require.True(t, ok)

	g, ok := aMod.GetName("g")
	require.True(t, ok)
	group := g.(*function.Group)
	require.Len(t, group.Members(), 1)
	assert.Equal(t, "Int", group.Members()[0].ConcreteType().ResultType().String())

	y, ok := b.GetName("y")
	require.True(t, ok)
	assert.Equal(t, "Int", y.TypeSpec().(interface{ String() string }).String())

	// A second importer calling g with the same concrete argument type
	// binds to the existing member: g takes a concrete Int, so no
	// specialization is synthesized and the group keeps one member.
	b2Src := &ast.Module{Path: "B2", Elements: []*ast.Expr{
		{Kind: ast.ExprImport, ImportModule: "A"},
		{Kind: ast.ExprAssignment, AssignName: "z", AssignValue: dottedCall([]string{"A", "g"}, intLit(20))},
	}}
	_, st = env.AnalyzeModule("B2", "", b2Src)
	require.Nil(t, st)
	assert.Len(t, group.Members(), 1)
}

func TestImportCycleIsRejected(t *testing.T) {
	env := newEnv()
	store := env.Store.(*module.MemoryStore)
	aSrc := &ast.Module{Path: "A", Elements: []*ast.Expr{
		{Kind: ast.ExprImport, ImportModule: "B"},
	}}
	store.SetModuleCode("A", aSrc)
	store.SetModuleCode("B", &ast.Module{Path: "B", Elements: []*ast.Expr{
		{Kind: ast.ExprImport, ImportModule: "A"},
	}})
	_, st := env.AnalyzeModule("A", "", aSrc)
	require.False(t, st.Ok())
}
