package types

import (
	"github.com/NunaInc/nudl-analysis/status"
)

// Bind fills every parametric slot of t with a concrete argument, per
// §4.2 ("Type binding"). Binding fails if argument counts mismatch or a
// supplied type is not a descendant of the slot's bound; local-type
// parameters that recur across slots are unified (equal, or related by
// ancestor, keeping the more specific type).
func (t *Spec) Bind(args []Param) (*Spec, *status.Status) {
	if len(args) != len(t.parameters) {
		return nil, status.Newf(status.CodeInvalidArgument,
			"type %s expects %d parameter(s), got %d", t.name, len(t.parameters), len(args))
	}
	out := t.Clone()
	local := map[string]*Spec{}

	for i, slot := range t.parameters {
		arg := args[i]
		switch {
		case slot.IsInt():
			if !arg.IsInt() {
				return nil, status.Newf(status.CodeInvalidArgument,
					"type %s parameter %d expects an integer, got %s", t.name, i, arg.String())
			}
			out.parameters[i] = arg

		case slot.Type != nil && slot.Type.local:
			if arg.Type == nil {
				return nil, status.Newf(status.CodeInvalidArgument,
					"type %s parameter %d expects a type, got integer", t.name, i)
			}
			bound := slot.Type.bound
			if bound != nil && bound.id != Any && !bound.IsAncestorOf(arg.Type) {
				return nil, status.Newf(status.CodeInvalidArgument,
					"type %s parameter %d: %s is not a descendant of bound %s", t.name, i, arg.Type, bound)
			}
			name := slot.Type.localName
			merged := arg.Type
			if prev, ok := local[name]; ok {
				m, ok2 := unifyMostSpecific(prev, arg.Type)
				if !ok2 {
					return nil, status.Newf(status.CodeInvalidArgument,
						"local type {%s} unifies %s and %s, which are unrelated", name, prev, arg.Type)
				}
				merged = m
			}
			local[name] = merged

		default:
			if arg.Type == nil {
				return nil, status.Newf(status.CodeInvalidArgument,
					"type %s parameter %d expects a type, got integer", t.name, i)
			}
			if slot.Type != nil && !slot.Type.IsAncestorOf(arg.Type) {
				return nil, status.Newf(status.CodeInvalidArgument,
					"type %s parameter %d: %s is not a descendant of %s", t.name, i, arg.Type, slot.Type)
			}
			out.parameters[i] = TParam(arg.Type)
		}
	}

	// Second pass: apply the unified local-name bindings to every slot
	// that referenced that name, so repeats all agree with the final,
	// most-specific resolution.
	for i, slot := range t.parameters {
		if slot.Type != nil && slot.Type.local {
			out.parameters[i] = TParam(local[slot.Type.localName])
		}
	}
	return out, nil
}

// unifyMostSpecific implements the local-type unification rule shared by
// Bind and Rebinder: two supplied types for the same local name must be
// equal or related by ancestor; the more specific of the two is kept.
func unifyMostSpecific(a, b *Spec) (*Spec, bool) {
	if a.IsEqual(b) {
		return a, true
	}
	if a.IsAncestorOf(b) {
		return b, true
	}
	if b.IsAncestorOf(a) {
		return a, true
	}
	return nil, false
}

// Rebinder is the §4.2 "Local-name rebinder": during function-call
// binding it records local-name → concrete-type resolutions and
// rebuilds abstract types by substituting those resolutions throughout a
// structural walk.
type Rebinder struct {
	resolved map[string]*Spec
}

// NewRebinder returns an empty rebinder for one call-site binding.
func NewRebinder() *Rebinder {
	return &Rebinder{resolved: map[string]*Spec{}}
}

// Resolved returns the local-name → concrete-type map accumulated so
// far, for diagnostics and for the binding engine's result-type
// reconstruction.
func (r *Rebinder) Resolved() map[string]*Spec {
	out := make(map[string]*Spec, len(r.resolved))
	for k, v := range r.resolved {
		out[k] = v
	}
	return out
}

// ProcessType walks declared (which may contain local-type occurrences)
// alongside concrete, recording or verifying each local-name binding it
// encounters. declared and concrete must have the same shape except
// where declared has a local type; a shape mismatch is a binding
// failure.
func (r *Rebinder) ProcessType(declared, concrete *Spec) *status.Status {
	if declared == nil || concrete == nil {
		return status.New(status.CodeInvalidArgument, "cannot process a nil type")
	}
	if declared.local {
		bound := declared.bound
		if bound != nil && bound.id != Any && !bound.IsAncestorOf(concrete) {
			return status.Newf(status.CodeInvalidArgument,
				"local type {%s : %s} cannot bind %s", declared.localName, bound, concrete)
		}
		if prev, ok := r.resolved[declared.localName]; ok {
			merged, ok2 := unifyMostSpecific(prev, concrete)
			if !ok2 {
				return status.Newf(status.CodeInvalidArgument,
					"local type {%s} unifies %s and %s, which are unrelated", declared.localName, prev, concrete)
			}
			r.resolved[declared.localName] = merged
		} else {
			r.resolved[declared.localName] = concrete
		}
		return nil
	}
	if declared.id == Function && concrete.id == Function {
		if len(declared.parameters) != len(concrete.parameters) {
			return status.Newf(status.CodeInvalidArgument, "function arity mismatch: %s vs %s", declared, concrete)
		}
		for i := range declared.parameters {
			if declared.parameters[i].IsInt() {
				continue
			}
			if st := r.ProcessType(declared.parameters[i].Type, concrete.parameters[i].Type); st != nil {
				return st
			}
		}
		if declared.resultType != nil && concrete.resultType != nil {
			return r.ProcessType(declared.resultType, concrete.resultType)
		}
		return nil
	}
	// Generic recursive descent through matching parameter positions
	// when the outer shape lines up (e.g. Array<{T}> vs Array<Int>).
	if declared.id == concrete.id && len(declared.parameters) == len(concrete.parameters) {
		for i := range declared.parameters {
			if declared.parameters[i].IsInt() || concrete.parameters[i].IsInt() {
				continue
			}
			if declared.parameters[i].Type == nil || concrete.parameters[i].Type == nil {
				continue
			}
			if st := r.ProcessType(declared.parameters[i].Type, concrete.parameters[i].Type); st != nil {
				return st
			}
		}
		return nil
	}
	// declared has no local occurrences reachable here and the shapes
	// don't line up positionally: fall back to an ancestor check, which
	// is the general compatibility requirement for a non-generic slot.
	if !declared.IsAncestorOf(concrete) {
		return status.Newf(status.CodeInvalidArgument, "%s is not compatible with %s", concrete, declared)
	}
	return nil
}

// RebuildType performs a structural walk over abstract, substituting
// every local-type occurrence with its recorded concrete replacement,
// and returns the resulting concrete type. A local name with no
// recorded resolution is replaced by its bound (Any for an unconstrained
// type parameter).
func (r *Rebinder) RebuildType(abstract *Spec) *Spec {
	if abstract == nil {
		return nil
	}
	if abstract.local {
		if resolved, ok := r.resolved[abstract.localName]; ok {
			return resolved
		}
		if abstract.bound != nil {
			return abstract.bound
		}
		return Builtin(Any)
	}
	if !abstract.IsAbstract() {
		return abstract
	}
	out := abstract.Clone()
	for i, p := range abstract.parameters {
		if p.IsInt() {
			continue
		}
		out.parameters[i] = TParam(r.RebuildType(p.Type))
	}
	if abstract.resultType != nil {
		out.resultType = r.RebuildType(abstract.resultType)
	}
	return out
}
