package scope

// Kind is the closed named-object kind enumeration from §3 ("Named
// objects"). Every addressable entity in the analyzer reports exactly one
// Kind.
type Kind int

const (
	KindUnknown Kind = iota
	KindVariable
	KindParameter
	KindArgument
	KindField
	KindScope
	KindFunction
	KindMethod
	KindConstructor
	KindMainFunction
	KindLambda
	KindFunctionGroup
	KindMethodGroup
	KindModule
	KindType
	KindTypeMemberStore
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindParameter:
		return "parameter"
	case KindArgument:
		return "argument"
	case KindField:
		return "field"
	case KindScope:
		return "scope"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindMainFunction:
		return "main-function"
	case KindLambda:
		return "lambda"
	case KindFunctionGroup:
		return "function-group"
	case KindMethodGroup:
		return "method-group"
	case KindModule:
		return "module"
	case KindType:
		return "type"
	case KindTypeMemberStore:
		return "type-member-store"
	default:
		return "unknown"
	}
}

// IsScopeKind reports whether k denotes an entity that is itself a name
// store / scope.
func IsScopeKind(k Kind) bool {
	switch k {
	case KindScope, KindModule, KindFunctionGroup, KindMethodGroup, KindTypeMemberStore,
		KindFunction, KindMethod, KindConstructor, KindMainFunction, KindLambda:
		return true
	default:
		return false
	}
}

// IsFunctionKind reports whether k denotes a callable function instance
// (as opposed to a function group or a variable).
func IsFunctionKind(k Kind) bool {
	switch k {
	case KindFunction, KindMethod, KindConstructor, KindMainFunction, KindLambda:
		return true
	default:
		return false
	}
}

// IsMethodKind reports whether k denotes a function dispatched on a
// receiver type (method or constructor).
func IsMethodKind(k Kind) bool {
	return k == KindMethod || k == KindConstructor
}

// IsVarKind reports whether k denotes a value-holding named object.
func IsVarKind(k Kind) bool {
	switch k {
	case KindVariable, KindParameter, KindArgument, KindField:
		return true
	default:
		return false
	}
}
