package function

import (
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// FindOrCreateSpecialization implements §4.5 "Specialization synthesis":
// a call with concrete argument types argTypes either reuses an
// existing specialization with the matching signature, or creates a new
// function instance in the same parent with a freshly generated name,
// arguments copied and typed with the concrete argTypes, and its body
// shared by reference to the template's un-analyzed AST block.
// newName is invoked only when a new specialization is actually needed
// (it should come from Scope.NextBindingName).
//
// The caller is responsible for analyzing the returned specialization's
// body (when isNew is true and it has one) and then calling
// CompleteSpecialization or FailSpecialization.
func (f *Function) FindOrCreateSpecialization(argTypes []*types.Spec, newName func() string) (spec *Function, isNew bool, st *status.Status) {
	sig := Signature(argTypes)
	if f.specializations == nil {
		f.specializations = make(map[string]*Function)
	}
	if f.failed == nil {
		f.failed = make(map[string]*status.Status)
	}
	if existing, ok := f.specializations[sig]; ok {
		return existing, false, nil
	}
	if prevErr, ok := f.failed[sig]; ok {
		return nil, false, prevErr
	}
	if len(argTypes) != len(f.args) {
		return nil, false, status.Newf(status.CodeInvalidArgument,
			"%s expects %d argument(s), got %d", f.name, len(f.args), len(argTypes))
	}

	args := make([]Argument, len(f.args))
	for i, a := range f.args {
		args[i] = Argument{Name: a.Name, Type: argTypes[i], Default: a.Default}
	}

	spec = &Function{
		name:             newName(),
		scopeName:        f.scopeName,
		kind:             f.kind,
		args:             args,
		declaredResult:   f.declaredResult,
		body:             f.body,
		native:           f.native,
		isSpecialization: true,
		specializationOf: f,
	}
	spec.UpdateFunctionType()
	f.specializations[sig] = spec
	return spec, true, nil
}

// CompleteSpecialization finalizes spec after its body has been
// analyzed: its result type is refined per §4.5 "Result negotiation"
// and its function type rebuilt.
func (f *Function) CompleteSpecialization(spec *Function) *status.Status {
	sig := specializationSignature(spec)
	resultType, st := spec.InferResultType()
	if st != nil {
		delete(f.specializations, sig)
		f.failed[sig] = st
		return st
	}
	spec.declaredResult = resultType
	spec.UpdateFunctionType()
	spec.bodyAnalyzed = true
	return nil
}

// CompleteBody finalizes f after its own body has been analyzed
// directly, with no specialization involved: used for a top-level
// function definition whose argument types were already concrete, so
// analysis ran immediately instead of being deferred (§4.7). Mirrors
// CompleteSpecialization without touching the specialization cache.
func (f *Function) CompleteBody() *status.Status {
	resultType, st := f.InferResultType()
	if st != nil {
		return st
	}
	f.declaredResult = resultType
	f.UpdateFunctionType()
	f.bodyAnalyzed = true
	return nil
}

// FailSpecialization records that analyzing spec's body failed, moving
// it out of the reusable cache and into the retained failure set (§5
// "failed specializations ... retained for orderly teardown").
func (f *Function) FailSpecialization(spec *Function, cause *status.Status) {
	sig := specializationSignature(spec)
	delete(f.specializations, sig)
	f.failed[sig] = cause
}

func specializationSignature(spec *Function) string {
	argTypes := make([]*types.Spec, len(spec.args))
	for i, a := range spec.args {
		argTypes[i] = a.Type
	}
	return Signature(argTypes)
}

// Specializations returns the template's cached specializations, in no
// particular order.
func (f *Function) Specializations() []*Function {
	out := make([]*Function, 0, len(f.specializations))
	for _, s := range f.specializations {
		out = append(out, s)
	}
	return out
}
