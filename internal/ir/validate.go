package ir

import (
	"errors"
	"fmt"

	"lumen/internal/types"
)

// Validate checks program invariants the backend relies on: every
// operand reference resolves to an earlier instruction of the same body
// (def-before-use), terminators end the body, and per-op shape rules
// hold. Returns a joined error listing every violation.
func Validate(p *Program) error {
	if p == nil {
		return nil
	}
	var errs []error
	for _, d := range p.Decls {
		if d == nil || !d.IsFunctionBody() {
			continue
		}
		if err := validateBody(p.Types, d); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", d.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateBody(tin *types.Interner, d *Decl) error {
	var errs []error
	seen := make(map[*Instr]struct{}, len(d.Body))
	terminated := false

	for i, ins := range d.Body {
		if ins == nil {
			errs = append(errs, fmt.Errorf("instruction %d is nil", i))
			continue
		}
		if terminated {
			errs = append(errs, fmt.Errorf("instruction %d (%s) after terminator", i, ins.Op))
		}
		for ai, arg := range ins.Args {
			if arg.Kind != OperandInstr {
				continue
			}
			if arg.Instr == nil {
				errs = append(errs, fmt.Errorf("instruction %d (%s): operand %d is nil", i, ins.Op, ai))
				continue
			}
			if _, ok := seen[arg.Instr]; !ok {
				errs = append(errs, fmt.Errorf("instruction %d (%s): operand %d used before definition", i, ins.Op, ai))
			}
		}
		if err := validateShape(tin, ins); err != nil {
			errs = append(errs, fmt.Errorf("instruction %d: %w", i, err))
		}
		seen[ins] = struct{}{}
		if ins.Op.IsTerminator() {
			terminated = true
		}
	}

	if !terminated {
		errs = append(errs, errors.New("body has no terminator"))
	}
	return errors.Join(errs...)
}

func validateShape(tin *types.Interner, ins *Instr) error {
	switch ins.Op {
	case OpCall:
		if ins.Callee == nil {
			return errors.New("call has no direct callee")
		}
	case OpRet, OpNot, OpLoad:
		if len(ins.Args) != 1 {
			return fmt.Errorf("%s wants 1 operand, has %d", ins.Op, len(ins.Args))
		}
	case OpStore:
		if len(ins.Args) != 2 {
			return fmt.Errorf("store wants 2 operands, has %d", len(ins.Args))
		}
	case OpAlloca:
		t, ok := tin.Lookup(ins.Result)
		if !ok || t.Kind != types.KindPointer || t.Elem != ins.Elem {
			return errors.New("alloca result type is not a pointer to its pointee")
		}
	case OpRetVoid, OpUnreachable, OpParam, OpBreakpoint, OpDbgStmt:
		// No shape constraints beyond the common ones.
	case OpAdd:
		if len(ins.Args) != 2 {
			return fmt.Errorf("add wants 2 operands, has %d", len(ins.Args))
		}
	default:
		return fmt.Errorf("unknown op %d", uint8(ins.Op))
	}
	return nil
}
