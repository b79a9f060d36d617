package codegen

import (
	"tinygo.org/x/go-llvm"

	"lumen/internal/ir"
)

// handler lowers one instruction. It returns the produced backend value
// and whether a value was produced at all; side-effect-only instructions
// produce nothing.
type handler func(fg *funcGen, ins *ir.Instr) (llvm.Value, bool, error)

func defaultHandlers() map[ir.Op]handler {
	return map[ir.Op]handler{
		ir.OpCall:        (*funcGen).lowerCall,
		ir.OpRet:         (*funcGen).lowerRet,
		ir.OpRetVoid:     (*funcGen).lowerRetVoid,
		ir.OpUnreachable: (*funcGen).lowerUnreachable,
		ir.OpNot:         (*funcGen).lowerNot,
		ir.OpParam:       (*funcGen).lowerParam,
		ir.OpAlloca:      (*funcGen).lowerAlloca,
		ir.OpStore:       (*funcGen).lowerStore,
		ir.OpLoad:        (*funcGen).lowerLoad,
		ir.OpBreakpoint:  (*funcGen).lowerBreakpoint,
		ir.OpDbgStmt:     (*funcGen).lowerDbgStmt,
	}
}

// funcGen is the per-function lowering state. It exists for exactly one
// (re)generation pass of one declaration body and is discarded after.
type funcGen struct {
	g    *Generator
	decl *ir.Decl
	fn   llvm.Value

	// values maps IR instruction identity to the backend value it
	// produced during this pass. Reset, never reused, between passes.
	values    map[*ir.Instr]llvm.Value
	params    []llvm.Value
	nextParam int
}

// LowerDecl (re)generates the body of one declaration into the module.
// Declarations without bodies have nothing to lower. A returned *Failure
// is scoped to this declaration: the declaration is marked failed and
// the rest of the module is untouched, so compilation of other
// declarations can continue.
func (g *Generator) LowerDecl(d *ir.Decl) error {
	if !d.IsFunctionBody() {
		return nil
	}
	fn, err := g.ResolveFunction(d)
	if err != nil {
		d.State = ir.DeclCodegenFailed
		return err
	}

	fg := &funcGen{
		g:      g,
		decl:   d,
		fn:     fn,
		values: make(map[*ir.Instr]llvm.Value, len(d.Body)),
	}
	fg.reset()

	for _, ins := range d.Body {
		h, ok := g.handlers[ins.Op]
		if !ok {
			d.State = ir.DeclCodegenFailed
			return notYetImplemented(ins.Span, ins.Op)
		}
		v, produced, err := h(fg, ins)
		if err != nil {
			d.State = ir.DeclCodegenFailed
			return err
		}
		if produced {
			fg.values[ins] = v
		}
	}
	d.State = ir.DeclLowered
	return nil
}

// reset prepares the backend function for a fresh body: any basic blocks
// left from a previous pass are discarded, a new entry block is created
// and the builder cursor moves there, and the parameter array is
// recaptured with the parameter cursor at zero. This is what makes
// re-lowering an already-compiled declaration idempotent.
func (fg *funcGen) reset() {
	for bb := fg.fn.FirstBasicBlock(); !bb.IsNil(); bb = fg.fn.FirstBasicBlock() {
		bb.EraseFromParent()
	}
	entry := fg.g.ctx.AddBasicBlock(fg.fn, "entry")
	fg.g.builder.SetInsertPointAtEnd(entry)
	fg.params = fg.fn.Params()
	fg.nextParam = 0
}

func (fg *funcGen) lowerCall(ins *ir.Instr) (llvm.Value, bool, error) {
	if ins.Callee == nil {
		return llvm.Value{}, false, unsupportedIndirectCall(ins.Span)
	}
	callee, err := fg.g.ResolveFunction(ins.Callee)
	if err != nil {
		return llvm.Value{}, false, err
	}
	sig, ok := fg.g.types.Signature(ins.Callee.Type)
	if !ok {
		return llvm.Value{}, false, unsupportedType(ins.Span, fg.g.types.String(ins.Callee.Type))
	}
	fnType, err := fg.g.lowerFnType(sig, ins.Span)
	if err != nil {
		return llvm.Value{}, false, err
	}

	args := make([]llvm.Value, 0, len(ins.Args))
	for _, a := range ins.Args {
		v, err := fg.resolve(a, ins.Span)
		if err != nil {
			return llvm.Value{}, false, err
		}
		args = append(args, v)
	}

	name := ""
	if !fg.g.isVoidLike(sig.Result) {
		name = "call"
	}
	call := fg.g.builder.CreateCall(fnType, callee, args, name)
	if fg.g.isNoReturn(sig.Result) {
		fg.g.builder.CreateUnreachable()
		return llvm.Value{}, false, nil
	}
	if fg.g.isVoidLike(sig.Result) {
		return llvm.Value{}, false, nil
	}
	return call, true, nil
}

func (fg *funcGen) lowerRet(ins *ir.Instr) (llvm.Value, bool, error) {
	v, err := fg.resolve(ins.Args[0], ins.Span)
	if err != nil {
		return llvm.Value{}, false, err
	}
	fg.g.builder.CreateRet(v)
	return llvm.Value{}, false, nil
}

func (fg *funcGen) lowerRetVoid(*ir.Instr) (llvm.Value, bool, error) {
	fg.g.builder.CreateRetVoid()
	return llvm.Value{}, false, nil
}

func (fg *funcGen) lowerUnreachable(*ir.Instr) (llvm.Value, bool, error) {
	fg.g.builder.CreateUnreachable()
	return llvm.Value{}, false, nil
}

func (fg *funcGen) lowerNot(ins *ir.Instr) (llvm.Value, bool, error) {
	v, err := fg.resolve(ins.Args[0], ins.Span)
	if err != nil {
		return llvm.Value{}, false, err
	}
	return fg.g.builder.CreateNot(v, "not"), true, nil
}

// lowerParam binds the next parameter to a fresh stack slot and yields
// the loaded value. The store/load round trip keeps parameters
// representable like any other mutable local.
func (fg *funcGen) lowerParam(ins *ir.Instr) (llvm.Value, bool, error) {
	if fg.nextParam >= len(fg.params) {
		return llvm.Value{}, false, unresolvedValue(ins.Span, "next parameter")
	}
	param := fg.params[fg.nextParam]
	fg.nextParam++

	t, err := fg.g.lowerValueType(ins.Result, ins.Span)
	if err != nil {
		return llvm.Value{}, false, err
	}
	slot := fg.g.builder.CreateAlloca(t, "param")
	fg.g.builder.CreateStore(param, slot)
	return fg.g.builder.CreateLoad(t, slot, "param.load"), true, nil
}

// lowerAlloca yields an uninitialized stack slot for the pointee type
// recorded on the instruction. A non-pointer result type here is a
// producer defect caught by ir.Validate, not a recoverable condition.
func (fg *funcGen) lowerAlloca(ins *ir.Instr) (llvm.Value, bool, error) {
	t, err := fg.g.lowerValueType(ins.Elem, ins.Span)
	if err != nil {
		return llvm.Value{}, false, err
	}
	name := ins.Name
	if name == "" {
		name = "local"
	}
	return fg.g.builder.CreateAlloca(t, name), true, nil
}

func (fg *funcGen) lowerStore(ins *ir.Instr) (llvm.Value, bool, error) {
	val, err := fg.resolve(ins.Args[0], ins.Span)
	if err != nil {
		return llvm.Value{}, false, err
	}
	ptr, err := fg.resolve(ins.Args[1], ins.Span)
	if err != nil {
		return llvm.Value{}, false, err
	}
	fg.g.builder.CreateStore(val, ptr)
	return llvm.Value{}, false, nil
}

func (fg *funcGen) lowerLoad(ins *ir.Instr) (llvm.Value, bool, error) {
	ptr, err := fg.resolve(ins.Args[0], ins.Span)
	if err != nil {
		return llvm.Value{}, false, err
	}
	t, err := fg.g.lowerValueType(ins.Result, ins.Span)
	if err != nil {
		return llvm.Value{}, false, err
	}
	return fg.g.builder.CreateLoad(t, ptr, "load"), true, nil
}

func (fg *funcGen) lowerBreakpoint(*ir.Instr) (llvm.Value, bool, error) {
	trap := fg.g.debugTrap()
	fg.g.builder.CreateCall(fg.g.debugTrapType(), trap, nil, "")
	return llvm.Value{}, false, nil
}

// lowerDbgStmt is a no-op for now. Debug info emission is deferred work.
func (fg *funcGen) lowerDbgStmt(*ir.Instr) (llvm.Value, bool, error) {
	return llvm.Value{}, false, nil
}
