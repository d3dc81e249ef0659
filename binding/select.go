package binding

import (
	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/expr"
	"github.com/NunaInc/nudl-analysis/function"
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// selectMember implements §4.5 "Group signature selection": attempt to
// bind every candidate member, keep the matching set (dropping any
// attempt whose signature is a strict ancestor of another surviving
// attempt's, since the more specific overload always wins), and require
// the matching set to narrow to exactly one winner.
func (b *Binder) selectMember(ctx *expr.Context, candidates []*function.Function, callArgs []ast.CallArgument) (*Binding, *status.Status) {
	type attempt struct {
		fn  *function.Function
		bnd *Binding
	}
	var attempts []attempt
	var errs []*status.Status
	for _, cand := range candidates {
		bnd, st := b.bindMember(ctx, cand, callArgs)
		if st != nil {
			errs = append(errs, st)
			continue
		}
		attempts = append(attempts, attempt{cand, bnd})
	}
	if len(attempts) == 0 {
		return nil, status.Join(errs...)
	}
	if len(attempts) == 1 {
		return attempts[0].bnd, nil
	}

	keep := make([]bool, len(attempts))
	for i := range attempts {
		keep[i] = true
	}
	for i := range attempts {
		for j := range attempts {
			if i == j || !keep[i] || !keep[j] {
				continue
			}
			ai, aj := attempts[i].bnd.ArgTypes, attempts[j].bnd.ArgTypes
			if argsAncestor(ai, aj) && !argsAncestor(aj, ai) {
				keep[i] = false
			}
		}
	}

	var winners []attempt
	for i, a := range attempts {
		if keep[i] {
			winners = append(winners, a)
		}
	}
	if len(winners) == 0 {
		winners = attempts
	}
	if len(winners) == 1 {
		return winners[0].bnd, nil
	}

	best := winners[0]
	ambiguous := false
	for _, w := range winners[1:] {
		bt, wt := best.fn.ConcreteType(), w.fn.ConcreteType()
		switch {
		case bt.IsAncestorOf(wt) && !wt.IsAncestorOf(bt):
			best = w
		case wt.IsAncestorOf(bt) && !bt.IsAncestorOf(wt):
			// best stays more specific
		default:
			ambiguous = true
		}
	}
	if ambiguous {
		return nil, status.Newf(status.CodeInvalidArgument,
			"ambiguous call: %d overloads match", len(winners))
	}
	return best.bnd, nil
}

// argsAncestor reports whether every argument type in a is an ancestor
// of the argument type at the same position in b.
func argsAncestor(a, b []*types.Spec) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].IsAncestorOf(b[i]) {
			return false
		}
	}
	return true
}
