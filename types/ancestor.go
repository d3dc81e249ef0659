package types

// elemParam returns the single element-type parameter of an
// Iterable/Container/Array/Set/Generator descriptor, or nil if t has no
// parameters (the bare, unparameterized constructor, which ancestors
// everything of its own family).
func (t *Spec) elemParam() *Spec {
	if len(t.parameters) == 0 {
		return nil
	}
	return t.parameters[0].Type
}

// keyValueAsTuple views a Map<K,V> as Tuple<K,V>, per §4.2's rule that
// Iterable/Container see a map as an iterable of key-value tuples.
func (t *Spec) keyValueAsTuple() *Spec {
	if len(t.parameters) != 2 {
		return NewParametric(Tuple, "Tuple")
	}
	return NewParametric(Tuple, "Tuple", nil, t.parameters[0], t.parameters[1])
}

// paramAncestor compares one pair of aligned template parameters for the
// pointwise case of §4.2 ("For identical outer constructors, parameters
// are compared pointwise").
func paramAncestor(a, b Param) bool {
	if a.IsInt() != b.IsInt() {
		return false
	}
	if a.IsInt() {
		return *a.Int == *b.Int
	}
	if a.Type == nil || b.Type == nil {
		return a.Type == b.Type
	}
	return a.Type.IsAncestorOf(b.Type)
}

// IsAncestorOf implements the §4.2 subtype relation. It is reflexive and
// transitive by construction: every case either delegates to IsEqual,
// recurses into strictly smaller subtrees, or consults the fixed rule
// table below.
func (t *Spec) IsAncestorOf(o *Spec) bool {
	if t == nil || o == nil {
		return false
	}
	if t == o || t.IsEqual(o) {
		return true
	}
	if t.local {
		return t.bound.IsAncestorOf(o)
	}

	switch t.id {
	case Any:
		return true
	case Numeric:
		return IsNumeric(o.id) || o.id == Numeric || o.id == Integral
	case Integral:
		return IsIntegral(o.id) || o.id == Integral
	case Iterable, Container:
		elem := t.elemParam()
		switch o.id {
		case Array, Set, Generator:
			return elem == nil || elem.IsAncestorOf(o.elemParam())
		case Map:
			if t.id == Container && len(t.parameters) != 0 {
				// Container<T> is never literally an ancestor of Map
				// unless T matches the Tuple<K,V> view exactly.
			}
			if elem == nil {
				return true
			}
			return elem.IsAncestorOf(o.keyValueAsTuple())
		default:
			return false
		}
	case Union:
		for _, p := range t.parameters {
			if p.Type != nil && p.Type.IsAncestorOf(o) {
				return true
			}
		}
		return false
	case Function:
		return t.isFunctionAncestorOf(o)
	}

	// Identical-outer-constructor case.
	if t.id != o.id || t.name != o.name {
		return false
	}
	if t.IsBound() && o.IsAbstract() {
		// "A bound type is never an ancestor of an abstract type with
		// the same constructor."
		return false
	}
	if len(t.parameters) != len(o.parameters) {
		return false
	}
	for i := range t.parameters {
		if !paramAncestor(t.parameters[i], o.parameters[i]) {
			return false
		}
	}
	if (t.resultType == nil) != (o.resultType == nil) {
		return false
	}
	if t.resultType != nil && !t.resultType.IsAncestorOf(o.resultType) {
		return false
	}
	return true
}

// isFunctionAncestorOf implements the contravariant-argument /
// covariant-result Function rule from §4.2.
func (t *Spec) isFunctionAncestorOf(o *Spec) bool {
	if o.id != Function {
		return false
	}
	if len(t.parameters) != len(o.parameters) {
		return false
	}
	for i := range t.parameters {
		a, b := t.parameters[i].Type, o.parameters[i].Type
		if a == nil || b == nil {
			return false
		}
		if !b.IsAncestorOf(a) {
			return false
		}
	}
	if t.resultType == nil || o.resultType == nil {
		return t.resultType == o.resultType
	}
	return t.resultType.IsAncestorOf(o.resultType)
}

// IsConvertibleFrom implements §4.2 ("Convertibility"): ancestry, or a
// permitted numeric-widening conversion.
func (t *Spec) IsConvertibleFrom(o *Spec) bool {
	if t == nil || o == nil {
		return false
	}
	if t.IsAncestorOf(o) {
		return true
	}
	if IsNumeric(t.id) && IsNumeric(o.id) && widensTo(o.id, t.id) {
		return true
	}
	return false
}
