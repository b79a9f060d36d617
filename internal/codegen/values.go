package codegen

import (
	"tinygo.org/x/go-llvm"

	"lumen/internal/ir"
	"lumen/internal/source"
)

// resolve turns an operand into the backend value it denotes. Inline
// constants are materialized on the spot; instruction references are
// looked up in the current function's resolution table, where a miss
// means either a missing lowering rule for the producer or a
// cross-function reference we do not support yet.
func (fg *funcGen) resolve(op ir.Operand, span source.Span) (llvm.Value, error) {
	switch op.Kind {
	case ir.OperandConst:
		return fg.g.lowerConst(op.Const, span)
	case ir.OperandInstr:
		if v, ok := fg.values[op.Instr]; ok {
			return v, nil
		}
		what := "instruction " + op.Instr.Op.String()
		if op.Instr.Name != "" {
			what = "%" + op.Instr.Name
		}
		return llvm.Value{}, unresolvedValue(span, what)
	default:
		return llvm.Value{}, unresolvedValue(span, "operand")
	}
}

// lowerConst materializes an inline constant. Undef maps to the
// backend's undefined-value sentinel; booleans map to all-ones/all-zero
// patterns of a 1-bit integer.
func (g *Generator) lowerConst(c ir.Const, span source.Span) (llvm.Value, error) {
	switch c.Kind {
	case ir.ConstUndef:
		t, err := g.lowerValueType(c.Type, span)
		if err != nil {
			return llvm.Value{}, err
		}
		return llvm.Undef(t), nil
	case ir.ConstBool:
		t := g.ctx.Int1Type()
		if c.Bool {
			return llvm.ConstAllOnes(t), nil
		}
		return llvm.ConstNull(t), nil
	default:
		return llvm.Value{}, unsupportedConstant(span, c.Kind)
	}
}

// ResolveFunction returns the backend function object for a declaration,
// creating it on first use. The declaration name is the sole cache key:
// a hit returns the existing object unconditionally, which is what keeps
// incremental re-lowering from declaring duplicate symbols. Signature
// changes between passes are not detected; callers needing a changed
// signature must start a fresh Generator.
func (g *Generator) ResolveFunction(d *ir.Decl) (llvm.Value, error) {
	if fn := g.mod.NamedFunction(d.Name); !fn.IsNil() {
		return fn, nil
	}

	sig, ok := g.types.Signature(d.Type)
	if !ok {
		return llvm.Value{}, unsupportedType(d.Span, g.types.String(d.Type))
	}
	fnType, err := g.lowerFnType(sig, d.Span)
	if err != nil {
		return llvm.Value{}, err
	}
	fn := llvm.AddFunction(g.mod, d.Name, fnType)
	if g.isNoReturn(sig.Result) {
		attr := g.ctx.CreateEnumAttribute(llvm.AttributeKindID("noreturn"), 0)
		fn.AddFunctionAttr(attr)
	}
	return fn, nil
}

// debugTrap returns the backend's trap intrinsic, declaring it on first
// use.
func (g *Generator) debugTrap() llvm.Value {
	const name = "llvm.debugtrap"
	if fn := g.mod.NamedFunction(name); !fn.IsNil() {
		return fn
	}
	fnType := llvm.FunctionType(g.ctx.VoidType(), nil, false)
	return llvm.AddFunction(g.mod, name, fnType)
}

func (g *Generator) debugTrapType() llvm.Type {
	return llvm.FunctionType(g.ctx.VoidType(), nil, false)
}
