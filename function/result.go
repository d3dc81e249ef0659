package function

import (
	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// RegisterResult records one return/yield/pass expression's kind and
// type, enforcing that return and yield never coexist in the same
// function (§4.5 "Result negotiation").
func (f *Function) RegisterResult(kind ast.ResultKind, t *types.Spec) *status.Status {
	switch kind {
	case ast.ResultReturn:
		if f.sawYield {
			return status.New(status.CodeFailedPrecondition, "function mixes return with yield")
		}
		f.sawReturn = true
	case ast.ResultYield:
		if f.sawReturn {
			return status.New(status.CodeFailedPrecondition, "function mixes yield with return")
		}
		f.sawYield = true
	case ast.ResultPass:
		f.sawPass = true
	}
	if t != nil {
		f.observed = append(f.observed, t)
	}
	return nil
}

// InferResultType computes the function's effective result type from
// the registered returns/yields (§4.5 "Result negotiation"):
//   - a declared, bound result type must be an ancestor of every
//     observed result; it is returned unchanged.
//   - an undeclared or abstract result is inferred as the most specific
//     type convertible from every observed result, widening a bare Null
//     alongside a non-null type into Nullable<T>.
//   - yield/pass without an explicit return lifts the result into
//     Generator<T>.
func (f *Function) InferResultType() (*types.Spec, *status.Status) {
	if f.declaredResult != nil && f.declaredResult.IsBound() {
		for _, o := range f.observed {
			if !f.declaredResult.IsAncestorOf(o) {
				return nil, status.TypeMismatch("function result", f.declaredResult.String(), o.String())
			}
		}
		return f.wrapGenerator(f.declaredResult), nil
	}

	var candidate *types.Spec
	sawNull := false
	for _, o := range f.observed {
		if o.ID() == types.Null {
			sawNull = true
			continue
		}
		widened, ok := widenResult(candidate, o)
		if !ok {
			return nil, status.TypeMismatch("function result", candidate.String(), o.String())
		}
		candidate = widened
	}
	if candidate == nil {
		if sawNull {
			candidate = types.Builtin(types.Null)
		} else {
			candidate = types.Builtin(types.Unknown)
		}
	} else if sawNull {
		candidate = types.NewNullable(candidate)
	}
	return f.wrapGenerator(candidate), nil
}

// wrapGenerator lifts t into Generator<T> when the function body used
// yield/pass without an explicit return (§9 "Coroutines / iterators").
func (f *Function) wrapGenerator(t *types.Spec) *types.Spec {
	if !f.sawYield && !f.sawPass {
		return t
	}
	if f.sawReturn {
		return t
	}
	return types.NewParametric(types.Generator, "Generator", nil, types.TParam(t))
}

// widenResult grows candidate to cover next via ancestry or numeric
// widening only; two results that are mutually inconvertible (e.g. Int
// and String) report failure rather than silently forming a Union,
// since an undeclared result type must converge on one concrete type.
func widenResult(candidate, next *types.Spec) (*types.Spec, bool) {
	if candidate == nil {
		return next, true
	}
	if candidate.IsConvertibleFrom(next) {
		return candidate, true
	}
	if next.IsConvertibleFrom(candidate) {
		return next, true
	}
	return nil, false
}
