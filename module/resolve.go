package module

import (
	"strings"

	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// ResolveTypeExpr turns a type-AST node into a concrete descriptor
// (§4.3's FindType(lookup_scope, type-AST)): a local type becomes a
// types.Local (recursively resolving its bound), and an identifier is
// resolved by name through s's full lookup chain (§4.1) and then, if it
// carries template arguments, Bound against them.
func ResolveTypeExpr(s *scope.Scope, t *ast.TypeExpr) (*types.Spec, *status.Status) {
	if t == nil {
		return nil, nil
	}
	if t.Local {
		var bound *types.Spec
		if t.Bound != nil {
			b, st := ResolveTypeExpr(s, t.Bound)
			if st != nil {
				return nil, st
			}
			bound = b
		}
		return types.NewLocal(t.Name, bound), nil
	}

	obj, st := s.FindName(s.ScopeName(), scopedNameOf(t.Name))
	if !st.Ok() {
		return nil, st
	}
	ts := obj.TypeSpec()
	if ts == nil {
		return nil, status.Newf(status.CodeInvalidArgument, "%s does not name a type", t.Name)
	}
	base, ok := ts.(*types.Spec)
	if !ok {
		return nil, status.Internal("type-store entry is not a *types.Spec")
	}
	if len(t.Params) == 0 {
		return base, nil
	}
	params := make([]types.Param, len(t.Params))
	for i, p := range t.Params {
		if p.Int != nil {
			params[i] = types.IParam(*p.Int)
			continue
		}
		pt, st := ResolveTypeExpr(s, p.Type)
		if st != nil {
			return nil, st
		}
		params[i] = types.TParam(pt)
	}
	return base.Bind(params)
}

// scopedNameOf splits a possibly dotted type name into a ScopedName,
// matching how expr.negotiateIdentifier resolves dotted identifiers.
func scopedNameOf(name string) scope.ScopedName {
	parts := strings.Split(name, ".")
	if len(parts) == 1 {
		return scope.Simple(name)
	}
	return scope.ScopedName{
		Scope: scope.ScopeName{Module: parts[:len(parts)-1]},
		Name:  parts[len(parts)-1],
	}
}

// Resolver adapts ResolveTypeExpr to expr.TypeResolver. It carries no
// state: every call resolves purely against the scope it is given.
type Resolver struct{}

func (Resolver) ResolveTypeExpr(s *scope.Scope, t *ast.TypeExpr) (*types.Spec, *status.Status) {
	return ResolveTypeExpr(s, t)
}
