// Package binding implements the call-site binding engine (§4.6, C6):
// resolving a function-call expression's callee, matching its actual
// arguments against a function group's members, rebinding local type
// parameters, and synthesizing specializations for generic templates.
// It implements expr.CallBinder, closing the one cycle the rest of the
// package graph leaves open (expr needs a binder; the binder needs expr
// to analyze specialization bodies).
package binding

import (
	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/expr"
	"github.com/NunaInc/nudl-analysis/function"
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// Binding is the record produced by resolving one call expression (§4.6):
// the specialized function (if the callee was a template), the concrete
// argument types and call expressions (defaults filled in), any
// per-argument sub-bindings for function-typed parameters, the concrete
// function type of the call, and the dotted name used to reach the
// callee.
type Binding struct {
	Func     *function.Function
	ArgTypes []*types.Spec
	CallArgs []*ast.Expr

	SubBindings map[string]*Binding

	Type    *types.Spec
	Callers []string

	// RewrittenArgs records, per argument name, the concrete
	// specialization a function-typed argument's named-object was
	// rewritten to point at (§9 open question: when a call argument
	// names a generic function or group and binding it against the
	// parameter's hint specializes it further, the argument's resolved
	// reference is mutated in place rather than silently left pointing
	// at the unspecialized template).
	RewrittenArgs map[string]scope.NamedObject
}

// Binder implements expr.CallBinder. It is stateless: every method
// receives the full context (scope, resolver) it needs from the caller.
type Binder struct{}

// New returns a ready-to-use Binder.
func New() *Binder { return &Binder{} }

var _ expr.CallBinder = (*Binder)(nil)

// BindCall implements expr.CallBinder.
func (b *Binder) BindCall(ctx *expr.Context, call *ast.Expr, hint *types.Spec) (*types.Spec, *status.Status) {
	bnd, st := b.Bind(ctx, call, hint)
	if st != nil {
		return nil, st
	}
	return bnd.Type, nil
}

// Bind resolves call's callee and arguments and returns the full binding
// record, per §4.6.
func (b *Binder) Bind(ctx *expr.Context, call *ast.Expr, hint *types.Spec) (*Binding, *status.Status) {
	callee, callers, st := b.resolveCallee(ctx, call)
	if st != nil {
		return nil, st
	}
	switch c := callee.(type) {
	case *function.Group:
		bnd, st := b.selectMember(ctx, c.Members(), call.CallArgs)
		if st != nil {
			return nil, st
		}
		bnd.Callers = callers
		return bnd, nil
	case *function.Function:
		bnd, st := b.bindMember(ctx, c, call.CallArgs)
		if st != nil {
			return nil, st
		}
		bnd.Callers = callers
		return bnd, nil
	default:
		ts, ok := namedObjectType(callee)
		if !ok || ts.ID() != types.Function {
			return nil, status.Newf(status.CodeInvalidArgument, "%v is not callable", callers)
		}
		bnd, st := b.bindOpaqueValue(ctx, ts, call.CallArgs)
		if st != nil {
			return nil, st
		}
		bnd.Callers = callers
		return bnd, nil
	}
}

// resolveCallee finds the named object a call targets: a plain
// identifier (possibly dotted into a module), a left-expression (method
// call on a value), or a type-spec (constructor call), per §4.6 "the
// callee may be named by an identifier, a type-spec, or a
// left-expression".
func (b *Binder) resolveCallee(ctx *expr.Context, call *ast.Expr) (scope.NamedObject, []string, *status.Status) {
	switch {
	case len(call.CallIdentifier) > 0:
		name := dottedName(call.CallIdentifier)
		obj, st := ctx.Scope.FindName(ctx.Scope.ScopeName(), name)
		if st != nil {
			return nil, nil, st
		}
		return obj, call.CallIdentifier, nil

	case call.CallLeft != nil:
		n := expr.Build(ctx.Scope, call.CallLeft)
		if _, st := n.NegotiateType(ctx, nil); st != nil {
			return nil, nil, st
		}
		if n.Named == nil {
			return nil, nil, status.New(status.CodeInvalidArgument, "call target does not resolve to a function")
		}
		return n.Named, []string{"<expr>"}, nil

	case call.CallType != nil:
		if ctx.Resolver == nil {
			return nil, nil, status.Internal("no type resolver wired into binding context")
		}
		t, st := ctx.Resolver.ResolveTypeExpr(ctx.Scope, call.CallType)
		if st != nil {
			return nil, nil, st
		}
		obj, ok := t.MemberStore().GetName(function.ReservedInit)
		if !ok {
			return nil, nil, status.Newf(status.CodeNotFound, "%s has no constructor", t)
		}
		return obj, []string{t.String(), function.ReservedInit}, nil

	default:
		return nil, nil, status.New(status.CodeInvalidArgument,
			"function call has no identifier, left-expression, or type target")
	}
}

func dottedName(parts []string) scope.ScopedName {
	if len(parts) == 1 {
		return scope.Simple(parts[0])
	}
	return scope.ScopedName{
		Scope: scope.ScopeName{Module: parts[:len(parts)-1]},
		Name:  parts[len(parts)-1],
	}
}

func namedObjectType(obj scope.NamedObject) (*types.Spec, bool) {
	ts := obj.TypeSpec()
	if ts == nil {
		return nil, false
	}
	s, ok := ts.(*types.Spec)
	return s, ok
}

// bindOpaqueValue binds a call against a bare function-typed value (a
// parameter or variable holding a function, not a template): there is
// no specialization to synthesize, only a structural argument check
// against the value's own (already concrete) type.
func (b *Binder) bindOpaqueValue(ctx *expr.Context, ts *types.Spec, callArgs []ast.CallArgument) (*Binding, *status.Status) {
	params := ts.Parameters()
	if len(callArgs) != len(params) {
		return nil, status.Newf(status.CodeInvalidArgument,
			"expects %d argument(s), got %d", len(params), len(callArgs))
	}
	argTypes := make([]*types.Spec, len(params))
	exprs := make([]*ast.Expr, len(params))
	for i, p := range params {
		n := expr.Build(ctx.Scope, callArgs[i].Expr)
		callType, st := n.NegotiateType(ctx, p.Type)
		if st != nil {
			return nil, st
		}
		argTypes[i] = callType
		exprs[i] = callArgs[i].Expr
	}
	return &Binding{ArgTypes: argTypes, CallArgs: exprs, Type: ts}, nil
}
