package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindVoid is the type of computations that produce no value.
	KindVoid
	// KindNoReturn is the type of computations that never complete.
	KindNoReturn
	KindBool
	KindInt
	KindUint
	KindPointer
	KindFn
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindNoReturn:
		return "noreturn"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindPointer:
		return "pointer"
	case KindFn:
		return "fn"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integer types.
type Width uint8

const (
	// WidthPtr means "as wide as a pointer on the active target".
	WidthPtr Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Type is the interned representation of one semantic type.
type Type struct {
	Kind  Kind
	Width Width  // integers only
	Elem  TypeID // pointers only
	Fn    int32  // index into the interner's signature table, -1 otherwise
}

// Signature describes a function type.
type Signature struct {
	Params []TypeID
	Result TypeID
}
