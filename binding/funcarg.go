package binding

import (
	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/expr"
	"github.com/NunaInc/nudl-analysis/function"
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// bindFunctionArgument implements §4.6's function-typed-parameter case:
// the call argument is negotiated against the (partially rebound)
// declared function type as its hint. A lambda negotiates directly
// (§4.4's lambda rule already does the rebind-and-materialize work). An
// identifier or dot-access naming an existing function or function
// group is resolved and, if its signature still needs specializing
// against the hint's concrete argument types, is specialized here; the
// argument's resolved named-object is then rewritten to the concrete
// specialization (the returned rewrite is non-nil only in that case).
func (b *Binder) bindFunctionArgument(ctx *expr.Context, argExpr *ast.Expr, hint *types.Spec) (*types.Spec, *Binding, scope.NamedObject, *status.Status) {
	if argExpr.Kind == ast.ExprLambda {
		n := expr.Build(ctx.Scope, argExpr)
		t, st := n.NegotiateType(ctx, hint)
		if st != nil {
			return nil, nil, nil, st
		}
		return t, nil, nil, nil
	}

	n := expr.Build(ctx.Scope, argExpr)
	if _, st := n.NegotiateType(ctx, nil); st != nil {
		return nil, nil, nil, st
	}
	if n.Named == nil {
		return nil, nil, nil, status.New(status.CodeInvalidArgument,
			"function-typed argument must name a function, function group, or lambda")
	}

	hintArgTypes := make([]*types.Spec, 0, len(hint.Parameters()))
	for _, p := range hint.Parameters() {
		hintArgTypes = append(hintArgTypes, p.Type)
	}

	switch named := n.Named.(type) {
	case *function.Group:
		member, ok := selectBySignature(named.Members(), hintArgTypes)
		if !ok {
			return nil, nil, nil, status.Newf(status.CodeInvalidArgument,
				"no member of %q matches the expected signature %s", named.Name(), hint)
		}
		spec, st := b.specializeAgainst(ctx, member, hintArgTypes)
		if st != nil {
			return nil, nil, nil, st
		}
		n.Named = spec
		return spec.ConcreteType(), &Binding{Func: spec, Type: spec.ConcreteType()}, spec, nil

	case *function.Function:
		spec, st := b.specializeAgainst(ctx, named, hintArgTypes)
		if st != nil {
			return nil, nil, nil, st
		}
		sub := &Binding{Func: spec, Type: spec.ConcreteType()}
		if spec != named {
			n.Named = spec
			return spec.ConcreteType(), sub, spec, nil
		}
		return spec.ConcreteType(), sub, nil, nil

	default:
		ts, ok := namedObjectType(n.Named)
		if !ok || ts.ID() != types.Function {
			return nil, nil, nil, status.New(status.CodeInvalidArgument,
				"function-typed argument does not name a function")
		}
		return ts, nil, nil, nil
	}
}

// selectBySignature picks the group member whose arity matches
// wantArgTypes; when several match, the most specific by argument-type
// ancestry wins (mirrors the group matching-set rule used for ordinary
// calls, simplified to arity since the hint's argument types are
// already concrete).
func selectBySignature(members []*function.Function, wantArgTypes []*types.Spec) (*function.Function, bool) {
	var candidates []*function.Function
	for _, m := range members {
		if len(m.Args()) == len(wantArgTypes) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil, false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if moreSpecificSignature(c, best) {
			best = c
		}
	}
	return best, true
}

func moreSpecificSignature(a, b *function.Function) bool {
	aArgs, bArgs := a.Args(), b.Args()
	for i := range aArgs {
		if aArgs[i].Type == nil || bArgs[i].Type == nil {
			continue
		}
		if bArgs[i].Type.IsAncestorOf(aArgs[i].Type) && !aArgs[i].Type.IsAncestorOf(bArgs[i].Type) {
			return true
		}
	}
	return false
}
