package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/expr"
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/status"
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

func strLit(v string) *ast.Expr {
	return &ast.Expr{Kind: ast.ExprLiteral, Literal: &ast.Literal{Kind: ast.LitString, Str: v}}
}

func TestLiteralNegotiatesBareType(t *testing.T) {
	s := newModuleScope()
	n := expr.Build(s, intLit(3))
	ty, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.Nil(t, st)
	assert.Equal(t, "Int", ty.String())
}

func TestLiteralWidensToHint(t *testing.T) {
	s := newModuleScope()
	n := expr.Build(s, intLit(3))
	ty, st := n.NegotiateType(&expr.Context{Scope: s}, types.Builtin(types.Numeric))
	require.Nil(t, st)
	assert.Equal(t, "Numeric", ty.String())
}

func TestLiteralRejectsIncompatibleHint(t *testing.T) {
	s := newModuleScope()
	n := expr.Build(s, intLit(3))
	_, st := n.NegotiateType(&expr.Context{Scope: s}, types.Builtin(types.String))
	require.False(t, st.Ok())
}

func TestNegotiateTypeIsMemoizedForSameHint(t *testing.T) {
	s := newModuleScope()
	n := expr.Build(s, intLit(3))
	ctx := &expr.Context{Scope: s}
	a, st := n.NegotiateType(ctx, nil)
	require.Nil(t, st)
	b, st := n.NegotiateType(ctx, nil)
	require.Nil(t, st)
	assert.Same(t, a, b)
}

func TestArrayDefWidensToCommonAncestor(t *testing.T) {
	s := newModuleScope()
	src := &ast.Expr{Kind: ast.ExprArrayDef, Elements: []*ast.Expr{intLit(1), intLit(2)}}
	n := expr.Build(s, src)
	ty, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.Nil(t, st)
	assert.Equal(t, "Array<Int>", ty.String())
}

func TestArrayDefElementsWidenAgainstEachOther(t *testing.T) {
	s := newModuleScope()
	arr := &ast.Expr{Kind: ast.ExprArrayDef, Elements: []*ast.Expr{
		intLit(1),
		{Kind: ast.ExprLiteral, Literal: &ast.Literal{Kind: ast.LitFloat, Float: 2.5}},
	}}
	n := expr.Build(s, arr)
	ty, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.Nil(t, st)
	assert.Equal(t, types.Union, ty.Parameters()[0].Type.ID())
}

func TestMapDefNegotiatesKeyAndValue(t *testing.T) {
	s := newModuleScope()
	m := &ast.Expr{Kind: ast.ExprMapDef, Entries: []ast.MapEntry{
		{Key: strLit("a"), Value: intLit(1)},
	}}
	n := expr.Build(s, m)
	ty, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.Nil(t, st)
	assert.Equal(t, "Map<String,Int>", ty.String())
}

func TestEmptyStructRequiresHint(t *testing.T) {
	s := newModuleScope()
	n := expr.Build(s, &ast.Expr{Kind: ast.ExprEmptyStruct})
	_, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.False(t, st.Ok())
}

func TestEmptyStructAcceptsIterableHint(t *testing.T) {
	s := newModuleScope()
	n := expr.Build(s, &ast.Expr{Kind: ast.ExprEmptyStruct})
	hint := types.NewParametric(types.Array, "Array", nil, types.TParam(types.Builtin(types.String)))
	ty, st := n.NegotiateType(&expr.Context{Scope: s}, hint)
	require.Nil(t, st)
	assert.True(t, ty.IsEqual(hint))
}

func TestIfConditionMustBeBool(t *testing.T) {
	s := newModuleScope()
	ifExpr := &ast.Expr{Kind: ast.ExprIf, Branches: []ast.IfBranch{
		{Condition: intLit(1), Body: intLit(2)},
		{Condition: nil, Body: intLit(3)},
	}}
	n := expr.Build(s, ifExpr)
	_, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.False(t, st.Ok())
}

func TestIfWithBoolConditionNegotiatesUnknown(t *testing.T) {
	s := newModuleScope()
	boolLit := &ast.Expr{Kind: ast.ExprLiteral, Literal: &ast.Literal{Kind: ast.LitBool, Bool: true}}
	ifExpr := &ast.Expr{Kind: ast.ExprIf, Branches: []ast.IfBranch{
		{Condition: boolLit, Body: intLit(2)},
		{Condition: nil, Body: intLit(3)},
	}}
	n := expr.Build(s, ifExpr)
	ty, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.Nil(t, st)
	assert.Equal(t, types.Unknown, ty.ID())
}

func TestContainsFunctionExitRequiresTrailingElse(t *testing.T) {
	ret := &ast.Expr{Kind: ast.ExprFunctionResult, ResultKind: ast.ResultReturn, ResultValue: intLit(1)}
	ifExpr := &ast.Expr{Kind: ast.ExprIf, Branches: []ast.IfBranch{
		{Condition: intLit(1), Body: ret},
	}}
	s := newModuleScope()
	n := expr.Build(s, ifExpr)
	assert.False(t, n.ContainsFunctionExit())
}

func TestContainsFunctionExitTrueWhenAllBranchesExit(t *testing.T) {
	ret1 := &ast.Expr{Kind: ast.ExprFunctionResult, ResultKind: ast.ResultReturn, ResultValue: intLit(1)}
	ret2 := &ast.Expr{Kind: ast.ExprFunctionResult, ResultKind: ast.ResultReturn, ResultValue: intLit(2)}
	ifExpr := &ast.Expr{Kind: ast.ExprIf, Branches: []ast.IfBranch{
		{Condition: intLit(1), Body: ret1},
		{Condition: nil, Body: ret2},
	}}
	s := newModuleScope()
	n := expr.Build(s, ifExpr)
	assert.True(t, n.ContainsFunctionExit())
}

func TestBlockTypeIsLastStatement(t *testing.T) {
	s := newModuleScope()
	block := &ast.Expr{Kind: ast.ExprBlock, Statements: []*ast.Expr{intLit(1), strLit("x")}}
	n := expr.Build(s, block)
	ty, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.Nil(t, st)
	assert.Equal(t, "String", ty.String())
}

func TestIndexIntoArrayRequiresIntDomain(t *testing.T) {
	s := newModuleScope()
	arr := &ast.Expr{Kind: ast.ExprArrayDef, Elements: []*ast.Expr{intLit(1)}}
	idx := &ast.Expr{Kind: ast.ExprIndex, IndexObject: arr, IndexValue: strLit("x")}
	n := expr.Build(s, idx)
	_, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.False(t, st.Ok())
}

func TestIndexIntoArrayYieldsElementType(t *testing.T) {
	s := newModuleScope()
	arr := &ast.Expr{Kind: ast.ExprArrayDef, Elements: []*ast.Expr{intLit(1)}}
	idx := &ast.Expr{Kind: ast.ExprIndex, IndexObject: arr, IndexValue: intLit(0)}
	n := expr.Build(s, idx)
	ty, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.Nil(t, st)
	assert.Equal(t, "Int", ty.String())
}

func TestTupleIndexRequiresLiteralInt(t *testing.T) {
	s := newModuleScope()
	tup := &ast.Expr{Kind: ast.ExprTupleDef, Elements: []*ast.Expr{intLit(1), strLit("a")}}
	idx := &ast.Expr{Kind: ast.ExprTupleIndex, IndexObject: tup, IndexValue: strLit("bad")}
	n := expr.Build(s, idx)
	_, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.False(t, st.Ok())
}

func TestTupleIndexYieldsPositionalType(t *testing.T) {
	s := newModuleScope()
	tup := &ast.Expr{Kind: ast.ExprTupleDef, Elements: []*ast.Expr{intLit(1), strLit("a")}}
	idx := &ast.Expr{Kind: ast.ExprTupleIndex, IndexObject: tup, IndexValue: intLit(1)}
	n := expr.Build(s, idx)
	ty, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.Nil(t, st)
	assert.Equal(t, "String", ty.String())
}

func TestIdentifierResolvesThroughScope(t *testing.T) {
	s := newModuleScope()
	obj := scope.NewObject("count", scope.KindVariable, types.Builtin(types.Int), s, s.ScopeName())
	require.Nil(t, s.AddName("count", obj))

	id := &ast.Expr{Kind: ast.ExprIdentifier, Identifier: []string{"count"}}
	n := expr.Build(s, id)
	ty, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.Nil(t, st)
	assert.Equal(t, "Int", ty.String())
	assert.Equal(t, "count", n.Named.Name())
}

func TestIdentifierNotFoundSuggestsClosest(t *testing.T) {
	s := newModuleScope()
	obj := scope.NewObject("count", scope.KindVariable, types.Builtin(types.Int), s, s.ScopeName())
	require.Nil(t, s.AddName("count", obj))

	id := &ast.Expr{Kind: ast.ExprIdentifier, Identifier: []string{"coutn"}}
	n := expr.Build(s, id)
	_, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.False(t, st.Ok())
	assert.Contains(t, st.Error(), "count")
}

func TestAssignmentRegistersVariableInScope(t *testing.T) {
	s := newModuleScope()
	assign := &ast.Expr{Kind: ast.ExprAssignment, AssignName: "x", AssignValue: intLit(5)}
	n := expr.Build(s, assign)
	ty, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.Nil(t, st)
	assert.Equal(t, "Int", ty.String())
	assert.True(t, s.HasName("x"))
}

func TestLambdaNegotiatesAgainstFunctionHint(t *testing.T) {
	s := newModuleScope()
	body := &ast.Expr{Kind: ast.ExprIdentifier, Identifier: []string{"x"}}
	lambda := &ast.Expr{
		Kind:       ast.ExprLambda,
		LambdaArgs: []ast.ArgumentDecl{{Name: "x"}},
		LambdaBody: body,
	}
	n := expr.Build(s, lambda)
	hint := types.NewParametric(types.Function, "Function", types.Builtin(types.Int), types.TParam(types.Builtin(types.Int)))
	ty, st := n.NegotiateType(&expr.Context{Scope: s}, hint)
	require.Nil(t, st)
	assert.Equal(t, "Function<Int(Int)>", ty.String())
}

func TestLambdaWithoutFunctionHintFails(t *testing.T) {
	s := newModuleScope()
	lambda := &ast.Expr{
		Kind:       ast.ExprLambda,
		LambdaArgs: []ast.ArgumentDecl{{Name: "x"}},
		LambdaBody: intLit(1),
	}
	n := expr.Build(s, lambda)
	_, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.False(t, st.Ok())
}

// stubBinder is a minimal CallBinder used to exercise the expr.ExprFunctionCall
// dispatch without depending on package binding.
type stubBinder struct {
	result *types.Spec
	err    *status.Status
}

func (b *stubBinder) BindCall(ctx *expr.Context, call *ast.Expr, hint *types.Spec) (*types.Spec, *status.Status) {
	if b.err != nil {
		return nil, b.err
	}
	return b.result, nil
}

func TestFunctionCallDelegatesToBinder(t *testing.T) {
	s := newModuleScope()
	call := &ast.Expr{Kind: ast.ExprFunctionCall, CallIdentifier: []string{"f"}}
	n := expr.Build(s, call)
	binder := &stubBinder{result: types.Builtin(types.Bool)}
	ty, st := n.NegotiateType(&expr.Context{Scope: s, Binder: binder}, nil)
	require.Nil(t, st)
	assert.Equal(t, "Bool", ty.String())
}

func TestFunctionCallWithoutBinderIsInternalError(t *testing.T) {
	s := newModuleScope()
	call := &ast.Expr{Kind: ast.ExprFunctionCall, CallIdentifier: []string{"f"}}
	n := expr.Build(s, call)
	_, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.False(t, st.Ok())
	assert.Equal(t, status.CodeInternal, st.Code)
}

func TestWithExpressionIsUnimplemented(t *testing.T) {
	s := newModuleScope()
	n := expr.Build(s, &ast.Expr{Kind: ast.ExprWith})
	_, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.False(t, st.Ok())
	assert.Equal(t, status.CodeUnimplemented, st.Code)
}

func TestCloneProducesIndependentCache(t *testing.T) {
	s := newModuleScope()
	n := expr.Build(s, intLit(3))
	_, st := n.NegotiateType(&expr.Context{Scope: s}, nil)
	require.Nil(t, st)

	clone := n.Clone(nil)
	assert.NotSame(t, n, clone)
	ty, st := clone.NegotiateType(&expr.Context{Scope: s}, nil)
	require.Nil(t, st)
	assert.Equal(t, "Int", ty.String())
}
