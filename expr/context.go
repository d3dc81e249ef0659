// Package expr implements the expression tree and lazy type negotiation
// described in §4.4 (C4): every node computes its type on first demand,
// memoized per (node, hint), and may trigger type-store lookups,
// overload resolution, and argument binding along the way.
package expr

import (
	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// CallBinder is the minimal contract package expr needs from the
// function/binding engine (C5/C6) to negotiate a function-call
// expression. Concrete implementations live in package binding; expr
// never imports it, breaking what would otherwise be an import cycle
// (binding depends on expr and function, both of which a naive call
// negotiation would need to reach back into).
type CallBinder interface {
	// BindCall resolves call (an *ast.Expr of kind ExprFunctionCall)
	// against the current scope and returns the concrete type of the
	// call expression.
	BindCall(ctx *Context, call *ast.Expr, hint *types.Spec) (*types.Spec, *status.Status)
}

// TypeResolver is the minimal contract expr needs to turn an ast.TypeExpr
// into a concrete types.Spec, implemented by package module (which
// drives scope.FindName + types.Spec.Bind together, per §4.3).
type TypeResolver interface {
	ResolveTypeExpr(s *scope.Scope, t *ast.TypeExpr) (*types.Spec, *status.Status)
}

// Context carries the per-negotiation dependencies a Node needs: the
// scope it lives in (which reaches the type store), and the late-bound call binder /
// type resolver supplied by the module driver once the full pipeline is
// wired together.
type Context struct {
	Scope    *scope.Scope
	Binder   CallBinder
	Resolver TypeResolver
}
