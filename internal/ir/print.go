package ir

import (
	"fmt"
	"io"
	"strings"

	"lumen/internal/types"
)

// DumpProgram writes a canonical textual form of the program. The output
// is deterministic for a given program and doubles as the content that
// gets hashed for incremental build decisions.
func DumpProgram(w io.Writer, p *Program) error {
	if w == nil || p == nil {
		return nil
	}
	for i, d := range p.Decls {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := dumpDecl(w, p.Types, d); err != nil {
			return err
		}
	}
	return nil
}

// DumpDecl writes the canonical textual form of a single declaration.
func DumpDecl(w io.Writer, tin *types.Interner, d *Decl) error {
	return dumpDecl(w, tin, d)
}

func dumpDecl(w io.Writer, tin *types.Interner, d *Decl) error {
	if d == nil {
		return nil
	}
	sig, ok := tin.Signature(d.Type)
	if !ok {
		_, err := fmt.Fprintf(w, "decl @%s <non-function %s>\n", d.Name, tin.String(d.Type))
		return err
	}
	params := make([]string, 0, len(sig.Params))
	for _, pt := range sig.Params {
		params = append(params, tin.String(pt))
	}
	header := fmt.Sprintf("@%s(%s) %s", d.Name, strings.Join(params, ", "), tin.String(sig.Result))

	if !d.IsFunctionBody() {
		_, err := fmt.Fprintf(w, "decl %s\n", header)
		return err
	}

	if _, err := fmt.Fprintf(w, "fn %s {\n", header); err != nil {
		return err
	}
	names := make(map[*Instr]string, len(d.Body))
	for i, ins := range d.Body {
		names[ins] = fmt.Sprintf("%%%d", i)
		if _, err := fmt.Fprintf(w, "  %s\n", formatInstr(tin, names, ins)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func formatInstr(tin *types.Interner, names map[*Instr]string, ins *Instr) string {
	if ins == nil {
		return "<nil>"
	}
	var b strings.Builder
	if ins.Result != types.NoTypeID {
		fmt.Fprintf(&b, "%s = ", names[ins])
	}
	b.WriteString(ins.Op.String())
	switch ins.Op {
	case OpCall:
		callee := "<indirect>"
		if ins.Callee != nil {
			callee = "@" + ins.Callee.Name
		}
		fmt.Fprintf(&b, " %s(%s)", callee, formatArgs(tin, names, ins.Args))
	case OpAlloca:
		fmt.Fprintf(&b, " %s", tin.String(ins.Elem))
	case OpRetVoid, OpUnreachable, OpBreakpoint, OpDbgStmt, OpParam:
		// No operands.
	default:
		if len(ins.Args) > 0 {
			fmt.Fprintf(&b, " %s", formatArgs(tin, names, ins.Args))
		}
	}
	if ins.Result != types.NoTypeID {
		fmt.Fprintf(&b, " : %s", tin.String(ins.Result))
	}
	return b.String()
}

func formatArgs(tin *types.Interner, names map[*Instr]string, args []Operand) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, formatOperand(tin, names, a))
	}
	return strings.Join(parts, ", ")
}

func formatOperand(tin *types.Interner, names map[*Instr]string, a Operand) string {
	switch a.Kind {
	case OperandInstr:
		if name, ok := names[a.Instr]; ok {
			return name
		}
		return "%?"
	case OperandConst:
		switch a.Const.Kind {
		case ConstUndef:
			return fmt.Sprintf("undef:%s", tin.String(a.Const.Type))
		case ConstBool:
			return fmt.Sprintf("%t", a.Const.Bool)
		case ConstInt:
			return fmt.Sprintf("%d:%s", a.Const.Int, tin.String(a.Const.Type))
		}
	}
	return "<?>"
}
