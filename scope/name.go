package scope

import "strings"

// ScopeName is an ordered sequence of module-path components followed by
// function-path components under that module, per §3 ("Names"). Equality
// and prefix/suffix operations are structural.
type ScopeName struct {
	Module   []string
	Function []string
}

// RootScopeName is the empty scope name: no module, no function.
var RootScopeName = ScopeName{}

// IsEmpty reports whether n has no module or function components.
func (n ScopeName) IsEmpty() bool {
	return len(n.Module) == 0 && len(n.Function) == 0
}

// HasFunctionComponents reports whether n descends into a function body.
func (n ScopeName) HasFunctionComponents() bool {
	return len(n.Function) > 0
}

// WithModule returns a copy of n with an extra module-path component
// appended.
func (n ScopeName) WithModule(part string) ScopeName {
	out := n.clone()
	out.Module = append(out.Module, part)
	return out
}

// WithFunction returns a copy of n with an extra function-path component
// appended.
func (n ScopeName) WithFunction(part string) ScopeName {
	out := n.clone()
	out.Function = append(out.Function, part)
	return out
}

func (n ScopeName) clone() ScopeName {
	out := ScopeName{
		Module:   make([]string, len(n.Module)),
		Function: make([]string, len(n.Function)),
	}
	copy(out.Module, n.Module)
	copy(out.Function, n.Function)
	return out
}

// Equal reports structural equality.
func (n ScopeName) Equal(o ScopeName) bool {
	return stringsEqual(n.Module, o.Module) && stringsEqual(n.Function, o.Function)
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Join concatenates n (as a prefix) with suffix's module and function
// components, in order: n's module components, suffix's module
// components, n's function components, suffix's function components.
// This matches §4.1 step 2's "prepend a prefix of lookup_scope to the
// scope-prefix of scoped_name": module context always precedes function
// context.
func (n ScopeName) Join(suffix ScopeName) ScopeName {
	out := ScopeName{
		Module:   append(append([]string{}, n.Module...), suffix.Module...),
		Function: append(append([]string{}, n.Function...), suffix.Function...),
	}
	return out
}

// Prefixes returns n itself followed by every successively shorter
// prefix down to (and including) the empty name, used by §4.1 step 2's
// candidate-compound-name search. Function components shrink before
// module components, since a function path is always the innermost.
func (n ScopeName) Prefixes() []ScopeName {
	out := make([]ScopeName, 0, len(n.Module)+len(n.Function)+1)
	out = append(out, n)
	for i := len(n.Function); i > 0; i-- {
		var fn []string
		if i > 1 {
			fn = n.Function[:i-1]
		}
		out = append(out, ScopeName{Module: n.Module, Function: fn})
	}
	for i := len(n.Module); i > 0; i-- {
		out = append(out, ScopeName{Module: n.Module[:i-1]})
	}
	return out
}

// String renders n as a dotted path, module components then function
// components.
func (n ScopeName) String() string {
	parts := append(append([]string{}, n.Module...), n.Function...)
	return strings.Join(parts, ".")
}

// ScopedName pairs a (possibly empty) ScopeName with a trailing simple
// identifier, per §3.
type ScopedName struct {
	Scope ScopeName
	Name  string
}

// Equal reports structural equality.
func (s ScopedName) Equal(o ScopedName) bool {
	return s.Scope.Equal(o.Scope) && s.Name == o.Name
}

// String renders s as a dotted path.
func (s ScopedName) String() string {
	if s.Scope.IsEmpty() {
		return s.Name
	}
	return s.Scope.String() + "." + s.Name
}

// Simple builds a ScopedName with an empty scope prefix, i.e. a bare
// identifier resolved in the current scope.
func Simple(name string) ScopedName {
	return ScopedName{Name: name}
}
