// Package types implements the NuDL type system (§4.2, C2) and the type
// store (§4.3, C3): type descriptors, the subtype/convertibility
// relation, parametric binding with local-type unification, and the
// per-scope tree of type registries.
package types

// ID is the closed type-kind enumeration from §3 ("Type descriptors").
type ID int

const (
	Unknown ID = iota
	Any
	Null
	Numeric
	Int
	Int8
	Int16
	Int32
	UInt
	UInt8
	UInt16
	UInt32
	String
	Bytes
	Bool
	Float32
	Float64
	Date
	Datetime
	TimeInterval
	Timestamp
	Decimal
	Iterable
	Array
	Tuple
	Set
	Map
	Struct
	Function
	Union
	Nullable
	Dataset
	TypeKind
	Module
	Integral
	Container
	Generator
)

var idNames = map[ID]string{
	Unknown: "Unknown", Any: "Any", Null: "Null", Numeric: "Numeric",
	Int: "Int", Int8: "Int8", Int16: "Int16", Int32: "Int32",
	UInt: "UInt", UInt8: "UInt8", UInt16: "UInt16", UInt32: "UInt32",
	String: "String", Bytes: "Bytes", Bool: "Bool",
	Float32: "Float32", Float64: "Float64",
	Date: "Date", Datetime: "Datetime", TimeInterval: "TimeInterval",
	Timestamp: "Timestamp", Decimal: "Decimal",
	Iterable: "Iterable", Array: "Array", Tuple: "Tuple", Set: "Set", Map: "Map",
	Struct: "Struct", Function: "Function", Union: "Union", Nullable: "Nullable",
	Dataset: "Dataset", TypeKind: "Type", Module: "Module",
	Integral: "Integral", Container: "Container", Generator: "Generator",
}

func (id ID) String() string {
	if n, ok := idNames[id]; ok {
		return n
	}
	return "Unknown"
}

// numericLeaves are the concrete (non-umbrella) numeric kinds.
var numericLeaves = map[ID]bool{
	Int: true, Int8: true, Int16: true, Int32: true,
	UInt: true, UInt8: true, UInt16: true, UInt32: true,
	Float32: true, Float64: true,
}

// integralLeaves are the concrete integer kinds (signed and unsigned).
var integralLeaves = map[ID]bool{
	Int: true, Int8: true, Int16: true, Int32: true,
	UInt: true, UInt8: true, UInt16: true, UInt32: true,
}

// IsNumeric reports whether id is a concrete numeric leaf kind.
func IsNumeric(id ID) bool { return numericLeaves[id] }

// IsIntegral reports whether id is a concrete integer leaf kind.
func IsIntegral(id ID) bool { return integralLeaves[id] }

// widenEdges is the direct-widening adjacency table referenced by §4.2
// ("Convertibility"): Int8→Int16→Int32→Int; unsigned analogously;
// integrals → Float32 → Float64.
var widenEdges = map[ID][]ID{
	Int8:    {Int16},
	Int16:   {Int32},
	Int32:   {Int},
	UInt8:   {UInt16},
	UInt16:  {UInt32},
	UInt32:  {UInt},
	Int:     {Float32},
	UInt:    {Float32},
	Float32: {Float64},
}

// widensTo reports whether to is reachable from from via zero or more
// direct-widening edges (i.e. a value of kind `from` may be implicitly
// widened to kind `to`).
func widensTo(from, to ID) bool {
	if from == to {
		return true
	}
	seen := map[ID]bool{from: true}
	queue := []ID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range widenEdges[cur] {
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}
