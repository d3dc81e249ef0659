package binding

import (
	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/expr"
	"github.com/NunaInc/nudl-analysis/function"
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// bindMember implements §4.6's per-parameter binding loop against one
// candidate function (template or already-concrete): arguments are
// matched to formal parameters in declared order (by name, else by
// position), defaults are filled in for omitted arguments, each
// non-function parameter is bound via the rebinder pre-pass, and each
// function-typed parameter recurses into its own sub-binding. No
// varargs: every call argument must be consumed.
func (b *Binder) bindMember(ctx *expr.Context, member *function.Function, callArgs []ast.CallArgument) (*Binding, *status.Status) {
	args := member.Args()
	rebinder := types.NewRebinder()

	concreteArgTypes := make([]*types.Spec, len(args))
	resolvedExprs := make([]*ast.Expr, len(args))
	subBindings := map[string]*Binding{}
	rewritten := map[string]scope.NamedObject{}
	consumed := make([]bool, len(callArgs))

	for i, decl := range args {
		idx := matchArgument(callArgs, consumed, decl.Name)
		var argExpr *ast.Expr
		if idx >= 0 {
			consumed[idx] = true
			argExpr = callArgs[idx].Expr
		} else if decl.Default != nil {
			argExpr = decl.Default
		} else {
			return nil, status.Newf(status.CodeInvalidArgument, "%s: missing argument %q", member.Name(), decl.Name)
		}
		resolvedExprs[i] = argExpr

		if decl.Type != nil && decl.Type.ID() == types.Function {
			hint := rebinder.RebuildType(decl.Type)
			concreteFn, sub, rw, st := b.bindFunctionArgument(ctx, argExpr, hint)
			if st != nil {
				return nil, st
			}
			if st := rebinder.ProcessType(decl.Type, concreteFn); st != nil {
				return nil, st
			}
			concreteArgTypes[i] = concreteFn
			if sub != nil {
				subBindings[decl.Name] = sub
			}
			if rw != nil {
				rewritten[decl.Name] = rw
			}
			continue
		}

		hint := decl.Type
		if decl.Type != nil {
			hint = rebinder.RebuildType(decl.Type)
			if _, seen := rebinder.Resolved()[decl.Type.LocalName()]; decl.Type.IsLocal() && !seen {
				// An unresolved local name offers no expectation yet; the
				// argument's own type is what ProcessType records for it.
				hint = nil
			}
		}
		n := expr.Build(ctx.Scope, argExpr)
		callType, st := n.NegotiateType(ctx, hint)
		if st != nil {
			return nil, st
		}
		if decl.Type != nil {
			if st := rebinder.ProcessType(decl.Type, callType); st != nil {
				return nil, st
			}
		}
		concreteArgType := callType
		if decl.Type != nil {
			concreteArgType = rebinder.RebuildType(decl.Type)
		}
		if !concreteArgType.IsAncestorOf(callType) && !callType.IsAncestorOf(concreteArgType) {
			return nil, status.TypeMismatch(member.Name()+" argument "+decl.Name, concreteArgType.String(), callType.String())
		}
		concreteArgTypes[i] = concreteArgType
	}

	for j, ok := range consumed {
		if !ok {
			return nil, status.Newf(status.CodeInvalidArgument,
				"%s: unexpected argument at position %d (no varargs)", member.Name(), j)
		}
	}

	target, st := b.specializeAgainst(ctx, member, concreteArgTypes)
	if st != nil {
		return nil, st
	}

	result := target.ConcreteType().ResultType()
	concreteType := types.NewParametric(types.Function, "Function", result, paramsOf(concreteArgTypes)...)

	return &Binding{
		Func:          target,
		ArgTypes:      concreteArgTypes,
		CallArgs:      resolvedExprs,
		SubBindings:   subBindings,
		Type:          concreteType,
		RewrittenArgs: rewritten,
	}, nil
}

// specializeAgainst returns member itself when it is already concrete,
// or finds/creates and (if new) analyzes the specialization matching
// concreteArgTypes, per §4.5 "Specialization synthesis".
func (b *Binder) specializeAgainst(ctx *expr.Context, member *function.Function, concreteArgTypes []*types.Spec) (*function.Function, *status.Status) {
	if !member.IsAbstract() {
		return member, nil
	}
	spec, isNew, st := member.FindOrCreateSpecialization(concreteArgTypes, func() string {
		return ctx.Scope.NextBindingName(member.Name())
	})
	if st != nil {
		return nil, st
	}
	if isNew && !spec.IsNative() {
		if st := b.analyzeSpecializationBody(ctx, member, spec); st != nil {
			return nil, st
		}
	}
	return spec, nil
}

func matchArgument(callArgs []ast.CallArgument, consumed []bool, name string) int {
	for j, ca := range callArgs {
		if consumed[j] || ca.Name == "" {
			continue
		}
		if ca.Name == name {
			return j
		}
	}
	for j, ca := range callArgs {
		if consumed[j] || ca.Name != "" {
			continue
		}
		return j
	}
	return -1
}

func paramsOf(argTypes []*types.Spec) []types.Param {
	out := make([]types.Param, len(argTypes))
	for i, t := range argTypes {
		out[i] = types.TParam(t)
	}
	return out
}

// analyzeSpecializationBody builds a function scope for a freshly
// synthesized specialization, registers its concrete arguments, and
// negotiates its (shared-by-reference) body, registering each
// return/yield/pass it observes before completing the specialization's
// result-type inference (§4.5 "Specialization synthesis").
func (b *Binder) analyzeSpecializationBody(ctx *expr.Context, template, spec *function.Function) *status.Status {
	parent := template.FuncScope()
	if parent == nil {
		parent = ctx.Scope
	}
	specScopeName := template.ScopeName().WithFunction(spec.Name())
	specScope := scope.NewScope(spec.Name(), spec.Kind(), specScopeName, parent)

	for _, a := range spec.Args() {
		obj := scope.NewObject(a.Name, scope.KindArgument, a.Type, specScope, specScopeName)
		if st := specScope.AddName(a.Name, obj); st != nil {
			template.FailSpecialization(spec, st)
			return st
		}
	}
	spec.SetFuncScope(specScope)

	bodyCtx := &expr.Context{Scope: specScope, Binder: b, Resolver: ctx.Resolver}
	body := expr.Build(specScope, spec.Body())
	if _, st := body.NegotiateType(bodyCtx, nil); st != nil {
		template.FailSpecialization(spec, st)
		return st
	}

	var regErr *status.Status
	body.VisitExpressions(func(n *expr.Node) bool {
		if regErr != nil {
			return false
		}
		if n.Source.Kind == ast.ExprFunctionResult {
			if st := spec.RegisterResult(n.Source.ResultKind, n.CachedType()); st != nil {
				regErr = st
				return false
			}
		}
		return true
	})
	if regErr != nil {
		template.FailSpecialization(spec, regErr)
		return regErr
	}

	if st := template.CompleteSpecialization(spec); st != nil {
		return st
	}
	return nil
}
