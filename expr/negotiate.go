package expr

import (
	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// NegotiateType computes n's type against hint (nil meaning "no
// expectation"), memoizing the result per (node, hint) as required by
// §4.4: a repeated call with an equal hint returns the cached type
// without re-running negotiation or allocating. Re-entrant negotiation
// of a node already on the call stack (possible for self-referential
// function bodies) returns Unknown rather than recursing forever, per
// §9's fixpoint guidance.
func (n *Node) NegotiateType(ctx *Context, hint *types.Spec) (*types.Spec, *status.Status) {
	if n == nil {
		return types.Builtin(types.Unknown), nil
	}
	if n.negotiating {
		return types.Builtin(types.Unknown), nil
	}
	if n.cachedType != nil && hintsEqual(n.cachedHint, hint) {
		return n.cachedType, nil
	}

	n.negotiating = true
	t, st := n.negotiate(ctx, hint)
	n.negotiating = false
	if st != nil {
		return nil, st
	}
	n.cachedType = t
	n.cachedHint = hint
	return t, nil
}

func hintsEqual(a, b *types.Spec) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.IsEqual(b)
}

func (n *Node) negotiate(ctx *Context, hint *types.Spec) (*types.Spec, *status.Status) {
	src := n.Source
	switch src.Kind {
	case ast.ExprLiteral:
		return n.negotiateLiteral(hint)
	case ast.ExprIdentifier:
		return n.negotiateIdentifier(ctx)
	case ast.ExprEmptyStruct:
		return n.negotiateEmptyStruct(hint)
	case ast.ExprArrayDef:
		return n.negotiateArrayDef(ctx, hint)
	case ast.ExprMapDef:
		return n.negotiateMapDef(ctx, hint)
	case ast.ExprTupleDef:
		return n.negotiateTupleDef(ctx, hint)
	case ast.ExprIndex, ast.ExprTupleIndex:
		return n.negotiateIndex(ctx)
	case ast.ExprIf:
		return n.negotiateIf(ctx)
	case ast.ExprBlock:
		return n.negotiateBlock(ctx, hint)
	case ast.ExprLambda:
		return n.negotiateLambda(ctx, hint)
	case ast.ExprDotAccess:
		return n.negotiateDotAccess(ctx)
	case ast.ExprFunctionCall:
		if ctx.Binder == nil {
			return nil, status.Internal("no call binder wired into negotiation context")
		}
		return ctx.Binder.BindCall(ctx, src, hint)
	case ast.ExprAssignment:
		return n.negotiateAssignment(ctx)
	case ast.ExprFunctionResult:
		return n.negotiateResult(ctx)
	case ast.ExprOperator:
		return n.negotiateOperator(ctx, hint)
	case ast.ExprNop:
		return types.Builtin(types.Unknown), nil
	case ast.ExprPragma, ast.ExprImport, ast.ExprFunctionDef, ast.ExprSchemaDef, ast.ExprTypeDef:
		return nil, status.Internal("top-level element kind reached expression negotiation; package module must handle it directly")
	case ast.ExprWith:
		return nil, status.New(status.CodeUnimplemented, "with-expression is reserved and not yet implemented")
	default:
		return nil, status.Newf(status.CodeUnimplemented, "unsupported expression kind %d", src.Kind)
	}
}

func (n *Node) negotiateLiteral(hint *types.Spec) (*types.Spec, *status.Status) {
	lit := n.Source.Literal
	var declared *types.Spec
	switch lit.Kind {
	case ast.LitNull:
		declared = types.Builtin(types.Null)
	case ast.LitBool:
		declared = types.Builtin(types.Bool)
	case ast.LitInt:
		declared = types.Builtin(types.Int)
	case ast.LitFloat:
		declared = types.Builtin(types.Float64)
	case ast.LitString:
		declared = types.Builtin(types.String)
	case ast.LitBytes:
		declared = types.Builtin(types.Bytes)
	default:
		declared = types.Builtin(types.Unknown)
	}
	if hint == nil {
		return declared, nil
	}
	if hint.IsAncestorOf(declared) || hint.IsConvertibleFrom(declared) {
		return hint, nil
	}
	return nil, status.TypeMismatch("literal", hint.String(), declared.String())
}

func (n *Node) negotiateIdentifier(ctx *Context) (*types.Spec, *status.Status) {
	name := scope.Simple(n.Source.Identifier[len(n.Source.Identifier)-1])
	if len(n.Source.Identifier) > 1 {
		name = scope.ScopedName{
			Scope: scope.ScopeName{Module: n.Source.Identifier[:len(n.Source.Identifier)-1]},
			Name:  n.Source.Identifier[len(n.Source.Identifier)-1],
		}
	}
	obj, st := ctx.Scope.FindName(ctx.Scope.ScopeName(), name)
	if !st.Ok() {
		return nil, st
	}
	n.Named = obj
	ts := obj.TypeSpec()
	if ts == nil {
		return types.Builtin(types.Unknown), nil
	}
	return ts.(*types.Spec), nil
}

func (n *Node) negotiateEmptyStruct(hint *types.Spec) (*types.Spec, *status.Status) {
	if hint == nil {
		return nil, status.New(status.CodeInvalidArgument, "empty struct literal [] requires a type hint")
	}
	iterable := types.NewParametric(types.Iterable, "Iterable", nil)
	if !iterable.IsAncestorOf(hint) {
		return nil, status.TypeMismatch("empty struct literal", "Iterable<...>", hint.String())
	}
	return hint, nil
}

func (n *Node) negotiateArrayDef(ctx *Context, hint *types.Spec) (*types.Spec, *status.Status) {
	var candidate *types.Spec
	if hint != nil && len(hint.Parameters()) > 0 {
		candidate = hint.Parameters()[0].Type
	}
	for _, c := range n.Children {
		childHint := candidate
		t, st := c.NegotiateType(ctx, childHint)
		if st != nil {
			return nil, st
		}
		candidate = widen(candidate, t)
	}
	if candidate == nil {
		candidate = types.Builtin(types.Any)
	}
	outerID, outerName := types.Array, "Array"
	if hint != nil && (hint.ID() == types.Set) {
		outerID, outerName = types.Set, "Set"
	}
	return types.NewParametric(outerID, outerName, nil, types.TParam(candidate)), nil
}

func (n *Node) negotiateMapDef(ctx *Context, hint *types.Spec) (*types.Spec, *status.Status) {
	var keyCand, valCand *types.Spec
	if hint != nil && len(hint.Parameters()) == 2 {
		keyCand, valCand = hint.Parameters()[0].Type, hint.Parameters()[1].Type
	}
	for i, c := range n.Children {
		if i%2 == 0 {
			t, st := c.NegotiateType(ctx, keyCand)
			if st != nil {
				return nil, st
			}
			keyCand = widen(keyCand, t)
		} else {
			t, st := c.NegotiateType(ctx, valCand)
			if st != nil {
				return nil, st
			}
			valCand = widen(valCand, t)
		}
	}
	if keyCand == nil {
		keyCand = types.Builtin(types.Any)
	}
	if valCand == nil {
		valCand = types.Builtin(types.Any)
	}
	return types.NewParametric(types.Map, "Map", nil, types.TParam(keyCand), types.TParam(valCand)), nil
}

func (n *Node) negotiateTupleDef(ctx *Context, hint *types.Spec) (*types.Spec, *status.Status) {
	params := make([]types.Param, len(n.Children))
	for i, c := range n.Children {
		var childHint *types.Spec
		if hint != nil && i < len(hint.Parameters()) {
			childHint = hint.Parameters()[i].Type
		}
		t, st := c.NegotiateType(ctx, childHint)
		if st != nil {
			return nil, st
		}
		params[i] = types.TParam(t)
	}
	return types.NewParametric(types.Tuple, "Tuple", nil, params...), nil
}

func (n *Node) negotiateIndex(ctx *Context) (*types.Spec, *status.Status) {
	objType, st := n.Children[0].NegotiateType(ctx, nil)
	if st != nil {
		return nil, st
	}
	if n.Source.Kind == ast.ExprTupleIndex {
		idxNode := n.Children[1]
		if idxNode.Source.Kind != ast.ExprLiteral || idxNode.Source.Literal.Kind != ast.LitInt {
			return nil, status.New(status.CodeInvalidArgument, "tuple index requires a compile-time integer literal")
		}
		i := int(idxNode.Source.Literal.Int)
		if i < 0 || i >= len(objType.Parameters()) {
			return nil, status.Newf(status.CodeInvalidArgument, "tuple index %d out of range for %s", i, objType)
		}
		return objType.Parameters()[i].Type, nil
	}
	domain := types.IndexTypeOf(objType)
	if domain == nil {
		return nil, status.Newf(status.CodeInvalidArgument, "%s is not indexable", objType)
	}
	if _, st := n.Children[1].NegotiateType(ctx, domain); st != nil {
		return nil, st
	}
	codomain := types.IndexedTypeOf(objType)
	if codomain == nil {
		return nil, status.Newf(status.CodeInvalidArgument, "%s is not indexable", objType)
	}
	return codomain, nil
}

func (n *Node) negotiateIf(ctx *Context) (*types.Spec, *status.Status) {
	boolType := types.Builtin(types.Bool)
	idx := 0
	for _, b := range n.Source.Branches {
		if b.Condition != nil {
			cond := n.Children[idx]
			idx++
			ct, st := cond.NegotiateType(ctx, boolType)
			if st != nil {
				return nil, st
			}
			if !boolType.IsEqual(ct) && !boolType.IsAncestorOf(ct) {
				return nil, status.TypeMismatch("if condition", "Bool", ct.String())
			}
		}
		if idx >= len(n.Children) {
			break
		}
		body := n.Children[idx]
		idx++
		if _, st := body.NegotiateType(ctx, nil); st != nil {
			return nil, st
		}
	}
	return types.Builtin(types.Unknown), nil
}

func (n *Node) negotiateBlock(ctx *Context, hint *types.Spec) (*types.Spec, *status.Status) {
	if len(n.Children) == 0 {
		return types.Builtin(types.Unknown), nil
	}
	for _, c := range n.Children[:len(n.Children)-1] {
		if _, st := c.NegotiateType(ctx, nil); st != nil {
			return nil, st
		}
	}
	return n.Children[len(n.Children)-1].NegotiateType(ctx, hint)
}

func (n *Node) negotiateLambda(ctx *Context, hint *types.Spec) (*types.Spec, *status.Status) {
	if hint == nil || hint.ID() != types.Function {
		return nil, status.New(status.CodeInvalidArgument, "lambda requires a Function type hint to negotiate against")
	}
	params := hint.Parameters()
	if len(params) != len(n.Source.LambdaArgs) {
		return nil, status.Newf(status.CodeInvalidArgument,
			"lambda expects %d argument(s), hint provides %d", len(n.Source.LambdaArgs), len(params))
	}
	lambdaScope := scope.NewScope(ctx.Scope.NextLocalName("lambda"), scope.KindLambda,
		ctx.Scope.ScopeName().WithFunction("lambda"), ctx.Scope)
	for i, a := range n.Source.LambdaArgs {
		argType := params[i].Type
		obj := scope.NewObject(a.Name, scope.KindArgument, argType, lambdaScope, lambdaScope.ScopeName())
		if st := lambdaScope.AddName(a.Name, obj); st != nil {
			return nil, st
		}
	}
	body := Build(lambdaScope, n.Source.LambdaBody)
	bodyCtx := &Context{Scope: lambdaScope, Binder: ctx.Binder, Resolver: ctx.Resolver}
	resultHint := hint.ResultType()
	resultType, st := body.NegotiateType(bodyCtx, resultHint)
	if st != nil {
		return nil, st
	}
	if resultHint != nil && !resultHint.IsAncestorOf(resultType) {
		return nil, status.TypeMismatch("lambda result", resultHint.String(), resultType.String())
	}
	argParams := make([]types.Param, len(params))
	copy(argParams, params)
	return types.NewParametric(types.Function, "Function", resultType, argParams...), nil
}

func (n *Node) negotiateDotAccess(ctx *Context) (*types.Spec, *status.Status) {
	leftType, st := n.Children[0].NegotiateType(ctx, nil)
	if st != nil {
		return nil, st
	}
	for _, f := range leftType.Fields() {
		if f.Name == n.Source.DotName {
			return f.Type, nil
		}
	}
	obj, ok := leftType.MemberStore().GetName(n.Source.DotName)
	if !ok {
		return nil, status.NotFound(leftType.String() + " has no member " + n.Source.DotName)
	}
	n.Named = obj
	ts := obj.TypeSpec()
	if ts == nil {
		return types.Builtin(types.Unknown), nil
	}
	return ts.(*types.Spec), nil
}

func (n *Node) negotiateAssignment(ctx *Context) (*types.Spec, *status.Status) {
	var hint *types.Spec
	if n.Source.AssignType != nil && ctx.Resolver != nil {
		t, st := ctx.Resolver.ResolveTypeExpr(ctx.Scope, n.Source.AssignType)
		if st != nil {
			return nil, st
		}
		hint = t
	}
	valueNode := n.Children[len(n.Children)-1]
	valueType, st := valueNode.NegotiateType(ctx, hint)
	if st != nil {
		return nil, st
	}
	finalType := valueType
	if hint != nil {
		if !hint.IsAncestorOf(valueType) {
			return nil, status.TypeMismatch("assignment to "+n.Source.AssignName, hint.String(), valueType.String())
		}
		finalType = hint
	}
	kind := scope.KindVariable
	if n.Source.AssignQualifier == "param" {
		kind = scope.KindParameter
	}
	obj := scope.NewObject(n.Source.AssignName, kind, finalType, ctx.Scope, ctx.Scope.ScopeName())
	if st := ctx.Scope.AddName(n.Source.AssignName, obj); st != nil {
		return nil, st
	}
	n.Named = obj
	return finalType, nil
}

func (n *Node) negotiateResult(ctx *Context) (*types.Spec, *status.Status) {
	if n.Source.ResultValue == nil {
		return types.Builtin(types.Null), nil
	}
	return n.Children[0].NegotiateType(ctx, nil)
}

// negotiateOperator resolves a binary/unary/ternary operator by
// dispatching to the reserved dunder method on the left operand's type
// member store (§6 "Operators").
func (n *Node) negotiateOperator(ctx *Context, hint *types.Spec) (*types.Spec, *status.Status) {
	if len(n.Children) == 0 {
		return nil, status.Newf(status.CodeInvalidArgument, "operator %s has no operands", n.Source.Operator)
	}
	leftType, st := n.Children[0].NegotiateType(ctx, nil)
	if st != nil {
		return nil, st
	}
	methodName, ok := operatorMethods[n.Source.Operator]
	if !ok {
		return nil, status.Newf(status.CodeUnimplemented, "unsupported operator %q", n.Source.Operator)
	}
	obj, ok := leftType.MemberStore().GetName(methodName)
	if !ok {
		return nil, status.NotFound(leftType.String() + " has no operator " + n.Source.Operator + " (" + methodName + ")")
	}
	n.Named = obj
	ts := obj.TypeSpec()
	if ts == nil {
		return types.Builtin(types.Unknown), nil
	}
	return ts.(*types.Spec), nil
}

// operatorMethods maps the §6 reserved binary/unary operator strings to
// their dunder method names.
var operatorMethods = map[string]string{
	"+": "__add__", "-": "__sub__", "*": "__mul__", "/": "__div__", "%": "__mod__",
	"<<": "__lshift__", ">>": "__rshift__",
	"<": "__lt__", ">": "__gt__", "<=": "__le__", ">=": "__ge__",
	"==": "__eq__", "!=": "__ne__",
	"&": "__and__", "^": "__xor__", "|": "__or__",
	"and": "__logand__", "or": "__logor__", "xor": "__logxor__",
	"~": "__invert__", "not": "__not__",
	"between": "__between__",
}

// widen implements the running-candidate widening step shared by array
// and map literal negotiation (§4.4 "Array def"/"Map def"): the running
// candidate grows to cover each newly-seen element type, falling back to
// a union when neither is an ancestor of the other.
func widen(candidate, next *types.Spec) *types.Spec {
	if candidate == nil {
		return next
	}
	if candidate.IsAncestorOf(next) {
		return candidate
	}
	if next.IsAncestorOf(candidate) {
		return next
	}
	return types.NewUnion(candidate, next)
}
