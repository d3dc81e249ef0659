package function

import (
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/status"
	"github.com/NunaInc/nudl-analysis/types"
)

// ValidateConstructor enforces §4.5's constructor rule: a constructor's
// result type must equal constructedType and may not be a union type.
func ValidateConstructor(f *Function, constructedType *types.Spec) *status.Status {
	if f.Kind() != scope.KindConstructor {
		return nil
	}
	if f.declaredResult == nil || !f.declaredResult.IsEqual(constructedType) {
		return status.Newf(status.CodeInvalidArgument,
			"constructor %s must return %s", f.name, constructedType)
	}
	if f.declaredResult.ID() == types.Union {
		return status.Newf(status.CodeInvalidArgument, "constructor %s cannot return a union type", f.name)
	}
	return nil
}

// ValidateMain enforces §4.5's main-function rule: no arguments and a
// non-native body.
func ValidateMain(f *Function) *status.Status {
	if f.Kind() != scope.KindMainFunction {
		return nil
	}
	if len(f.args) != 0 {
		return status.New(status.CodeInvalidArgument, "main function must have no arguments")
	}
	if f.IsNative() {
		return status.New(status.CodeInvalidArgument, "main function must have a non-native body")
	}
	return nil
}

// ValidateLambdaDefaults enforces §4.5's lambda rule: the argument count
// must equal the default-value count, i.e. either no argument has a
// default or every one does.
func ValidateLambdaDefaults(args []Argument) *status.Status {
	defaults := 0
	for _, a := range args {
		if a.Default != nil {
			defaults++
		}
	}
	if defaults != 0 && defaults != len(args) {
		return status.Newf(status.CodeInvalidArgument,
			"lambda argument count (%d) must equal its default-value count (%d)", len(args), defaults)
	}
	return nil
}

// ValidateRebindTarget enforces §4.5's "rebinding a non-basic typed
// argument is forbidden" rule: only a bare local type parameter (or one
// whose only abstractness comes from its own local name, not a nested
// structural parameter) may be rebound during argument binding.
func ValidateRebindTarget(declared *types.Spec) *status.Status {
	if declared.IsLocal() {
		return nil
	}
	if !declared.IsAbstract() {
		return nil
	}
	for _, p := range declared.Parameters() {
		if p.Type != nil && p.Type.IsAbstract() && !p.Type.IsLocal() {
			return status.Newf(status.CodeFailedPrecondition,
				"rebinding non-basic typed argument %s is forbidden", declared)
		}
	}
	return nil
}
