// Package ir defines the typed intermediate representation consumed by
// the code-generation backend. Upstream analysis produces it with
// instruction order already satisfying def-before-use; the backend only
// reads it and attaches per-declaration results.
package ir

import (
	"lumen/internal/source"
	"lumen/internal/types"
)

// Op enumerates instruction kinds.
type Op uint8

const (
	// OpInvalid is the zero value and never appears in a valid body.
	OpInvalid Op = iota
	// OpCall calls a directly referenced declaration.
	OpCall
	// OpRet returns a value from the enclosing function.
	OpRet
	// OpRetVoid returns from a void function.
	OpRetVoid
	// OpUnreachable marks an unreachable point.
	OpUnreachable
	// OpNot is bitwise/logical complement.
	OpNot
	// OpParam binds the next function parameter to a mutable local slot.
	OpParam
	// OpAlloca allocates an uninitialized stack slot for its pointee type.
	OpAlloca
	// OpStore writes a value through a pointer.
	OpStore
	// OpLoad reads a value through a pointer.
	OpLoad
	// OpBreakpoint traps into the debugger.
	OpBreakpoint
	// OpDbgStmt marks a source statement boundary for debug info.
	OpDbgStmt
	// OpAdd is integer addition. The reader accepts it; the backend does
	// not lower it yet.
	OpAdd
)

func (op Op) String() string {
	switch op {
	case OpCall:
		return "call"
	case OpRet:
		return "ret"
	case OpRetVoid:
		return "retvoid"
	case OpUnreachable:
		return "unreachable"
	case OpNot:
		return "not"
	case OpParam:
		return "param"
	case OpAlloca:
		return "alloca"
	case OpStore:
		return "store"
	case OpLoad:
		return "load"
	case OpBreakpoint:
		return "breakpoint"
	case OpDbgStmt:
		return "dbgstmt"
	case OpAdd:
		return "add"
	default:
		return "invalid"
	}
}

// IsTerminator reports whether the op ends a block.
func (op Op) IsTerminator() bool {
	switch op {
	case OpRet, OpRetVoid, OpUnreachable:
		return true
	default:
		return false
	}
}

// ConstKind enumerates inline constant kinds.
type ConstKind uint8

const (
	// ConstUndef is an explicitly undefined value of some type.
	ConstUndef ConstKind = iota
	// ConstBool is a boolean literal.
	ConstBool
	// ConstInt is an integer literal. The reader accepts it; the backend
	// does not materialize it yet.
	ConstInt
)

// Const is a constant embedded directly in an operand.
type Const struct {
	Kind ConstKind
	Type types.TypeID
	Bool bool
	Int  int64
}

// OperandKind distinguishes the two ways an operand can be denoted.
type OperandKind uint8

const (
	// OperandInstr references another instruction by identity.
	OperandInstr OperandKind = iota
	// OperandConst embeds an inline constant.
	OperandConst
)

// Operand is a reference to another instruction's result or an inline
// constant.
type Operand struct {
	Kind  OperandKind
	Instr *Instr
	Const Const
}

// InstrRef makes an operand referencing ins.
func InstrRef(ins *Instr) Operand {
	return Operand{Kind: OperandInstr, Instr: ins}
}

// ConstRef makes an operand embedding c.
func ConstRef(c Const) Operand {
	return Operand{Kind: OperandConst, Const: c}
}

// Instr is one immutable IR instruction. Identity is significant: two
// structurally identical instructions are distinct values if they are
// distinct objects in a body.
type Instr struct {
	Op     Op
	Result types.TypeID // NoTypeID for side-effect-only instructions
	Span   source.Span
	Args   []Operand
	Callee *Decl        // OpCall only; nil means an indirect callee
	Elem   types.TypeID // OpAlloca pointee
	Name   string       // optional %name from the source form
}

// DeclState tracks what the backend concluded about a declaration.
type DeclState uint8

const (
	// DeclPending means the declaration has not been lowered yet.
	DeclPending DeclState = iota
	// DeclLowered means lowering completed.
	DeclLowered
	// DeclCodegenFailed means lowering failed and a diagnostic was filed.
	DeclCodegenFailed
)

// Decl is one top-level declaration. A nil Body marks an external
// declaration with no definition in this unit.
type Decl struct {
	Name  string
	Type  types.TypeID // always a fn type in the current feature set
	Span  source.Span
	Body  []*Instr
	State DeclState
}

// IsFunctionBody reports whether the declaration carries a lowerable body.
func (d *Decl) IsFunctionBody() bool {
	return d.Body != nil
}

// Program is one compilation unit's worth of declarations, in source order.
type Program struct {
	Decls  []*Decl
	ByName map[string]*Decl
	Types  *types.Interner
}

// NewProgram creates an empty program backed by the given interner.
func NewProgram(tin *types.Interner) *Program {
	return &Program{
		ByName: make(map[string]*Decl),
		Types:  tin,
	}
}

// Add appends a declaration. Returns false if the name is already taken.
func (p *Program) Add(d *Decl) bool {
	if _, ok := p.ByName[d.Name]; ok {
		return false
	}
	p.Decls = append(p.Decls, d)
	p.ByName[d.Name] = d
	return true
}
