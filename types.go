package datamodel

import (
	"reflect"
	"strings"
)

// Kind discriminates TypeNode variants.
type Kind int

const (
	KindPrimitive Kind = iota
	KindOptional
	KindUnion
	KindList
	KindDict
	KindTuple
	KindSet
	KindModelRef
	KindAny
	KindClassVar
	KindCustom
)

// PrimKind enumerates primitive type kinds.
type PrimKind int

const (
	PrimInt PrimKind = iota
	PrimFloat
	PrimStr
	PrimBool
	PrimTime
	PrimBytes
)

// TypeNode is the recursive tagged-union description of a declared type. Nodes
// are immutable once a model has been registered. Model references are held by
// name and resolved during Registry.Register, so self-referential declarations
// never form an inline cycle.
type TypeNode struct {
	Kind Kind
	Prim PrimKind    // KindPrimitive
	Elem *TypeNode   // KindOptional, KindList, KindSet, KindClassVar
	Key  *TypeNode   // KindDict
	Val  *TypeNode   // KindDict
	Args []*TypeNode // KindUnion (ordered candidates), KindTuple (fixed members)
	Ref  string      // KindModelRef: model name
	RT   reflect.Type // KindCustom: concrete Go target type

	// model and schema are filled in for KindModelRef when the owning registry
	// resolves forward references.
	model  *ModelType
	schema *Schema
}

// Int declares the integer primitive.
func Int() *TypeNode { return &TypeNode{Kind: KindPrimitive, Prim: PrimInt} }

// Float declares the float primitive. Integer input widens to float; this is
// the only implicit cross-type coercion the engine performs.
func Float() *TypeNode { return &TypeNode{Kind: KindPrimitive, Prim: PrimFloat} }

// Str declares the string primitive.
func Str() *TypeNode { return &TypeNode{Kind: KindPrimitive, Prim: PrimStr} }

// Bool declares the boolean primitive.
func Bool() *TypeNode { return &TypeNode{Kind: KindPrimitive, Prim: PrimBool} }

// Time declares the time.Time primitive. Strings and epoch numbers convert via
// the deserializer registry, not the primitive matcher.
func Time() *TypeNode { return &TypeNode{Kind: KindPrimitive, Prim: PrimTime} }

// Bytes declares the byte-slice primitive.
func Bytes() *TypeNode { return &TypeNode{Kind: KindPrimitive, Prim: PrimBytes} }

// Any accepts any value unchanged.
func Any() *TypeNode { return &TypeNode{Kind: KindAny} }

// OptionalOf wraps inner; nil passes trivially, everything else delegates.
func OptionalOf(inner *TypeNode) *TypeNode {
	return &TypeNode{Kind: KindOptional, Elem: inner}
}

// UnionOf declares an ordered union. Candidates are tried strictly in the
// declared order and the first full match wins, without backtracking.
func UnionOf(candidates ...*TypeNode) *TypeNode {
	return &TypeNode{Kind: KindUnion, Args: candidates}
}

// ListOf declares a homogeneous list.
func ListOf(elem *TypeNode) *TypeNode { return &TypeNode{Kind: KindList, Elem: elem} }

// DictOf declares a homogeneous mapping.
func DictOf(key, val *TypeNode) *TypeNode {
	return &TypeNode{Kind: KindDict, Key: key, Val: val}
}

// TupleOf declares a fixed-arity heterogeneous tuple.
func TupleOf(members ...*TypeNode) *TypeNode {
	return &TypeNode{Kind: KindTuple, Args: members}
}

// SetOf declares a homogeneous set. Error reports use insertion order since
// sets have no stable index.
func SetOf(elem *TypeNode) *TypeNode { return &TypeNode{Kind: KindSet, Elem: elem} }

// Ref declares a reference to a model type by name. The name resolves against
// the registry the model is registered in (two-pass, so forward and
// self-references are fine).
func Ref(name string) *TypeNode { return &TypeNode{Kind: KindModelRef, Ref: name} }

// Typed declares a field holding an arbitrary Go type, identified by the
// runtime type of sample. Values of that exact type pass through; anything
// else must arrive via a registered deserializer targeting the type.
func Typed(sample any) *TypeNode {
	return &TypeNode{Kind: KindCustom, RT: reflect.TypeOf(sample)}
}

// ClassVarOf marks a class-level attribute type. ClassVar attributes live on
// the model type, not on instances, and are declared via ModelBuilder.ClassAttr.
func ClassVarOf(inner *TypeNode) *TypeNode {
	return &TypeNode{Kind: KindClassVar, Elem: inner}
}

// String renders the declared type for error messages and diagnostics.
func (t *TypeNode) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindPrimitive:
		return t.Prim.String()
	case KindOptional:
		return "Optional[" + t.Elem.String() + "]"
	case KindUnion:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return "Union[" + strings.Join(parts, ", ") + "]"
	case KindList:
		return "List[" + t.Elem.String() + "]"
	case KindDict:
		return "Dict[" + t.Key.String() + ", " + t.Val.String() + "]"
	case KindTuple:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return "Tuple[" + strings.Join(parts, ", ") + "]"
	case KindSet:
		return "Set[" + t.Elem.String() + "]"
	case KindModelRef:
		return t.Ref
	case KindAny:
		return "Any"
	case KindClassVar:
		return "ClassVar[" + t.Elem.String() + "]"
	case KindCustom:
		if t.RT != nil {
			return t.RT.String()
		}
		return "<custom>"
	}
	return "<unknown>"
}

func (p PrimKind) String() string {
	switch p {
	case PrimInt:
		return "int"
	case PrimFloat:
		return "float"
	case PrimStr:
		return "str"
	case PrimBool:
		return "bool"
	case PrimTime:
		return "time"
	case PrimBytes:
		return "bytes"
	}
	return "<unknown>"
}
