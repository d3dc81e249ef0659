package binding

import (
	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/expr"
	"github.com/NunaInc/nudl-analysis/function"
	"github.com/NunaInc/nudl-analysis/status"
)

// AnalyzeBody negotiates f's body against the function scope already
// built and populated with its (concrete) argument objects, registers
// every observed return/yield/pass, and completes f's result-type
// inference. Package module calls this directly for a top-level
// function definition whose argument types are concrete from the start
// (§4.7: "If all argument types are concrete, the body is analyzed
// immediately"); analyzeSpecializationBody does the equivalent for a
// synthesized specialization.
func (b *Binder) AnalyzeBody(ctx *expr.Context, f *function.Function) *status.Status {
	if f.IsNative() {
		f.SetBodyAnalyzed(true)
		return nil
	}
	bodyCtx := &expr.Context{Scope: f.FuncScope(), Binder: b, Resolver: ctx.Resolver}
	body := expr.Build(f.FuncScope(), f.Body())
	if _, st := body.NegotiateType(bodyCtx, nil); st != nil {
		return st
	}

	var regErr *status.Status
	body.VisitExpressions(func(n *expr.Node) bool {
		if regErr != nil {
			return false
		}
		if n.Source.Kind == ast.ExprFunctionResult {
			if st := f.RegisterResult(n.Source.ResultKind, n.CachedType()); st != nil {
				regErr = st
				return false
			}
		}
		return true
	})
	if regErr != nil {
		return regErr
	}
	return f.CompleteBody()
}
