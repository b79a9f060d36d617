package irtext_test

import (
	"testing"

	"lumen/internal/diag"
	"lumen/internal/ir"
	"lumen/internal/irtext"
	"lumen/internal/source"
	"lumen/internal/types"
)

func parse(t *testing.T, src string) (*ir.Program, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.Add("test.lir", []byte(src))
	tin := types.NewInterner()
	bag := diag.NewBag(16)
	prog := irtext.ParseFile(fs.Get(id), tin, bag)
	return prog, bag
}

func TestParseProgram(t *testing.T) {
	prog, bag := parse(t, `
# runtime entry points
decl @exit(i32) noreturn

fn @main() bool {
  %slot = alloca bool
  store true, %slot
  %v = load %slot : bool
  ret %v
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	if len(prog.Decls) != 2 {
		t.Fatalf("got %d decls, want 2", len(prog.Decls))
	}

	exit := prog.ByName["exit"]
	if exit == nil || exit.IsFunctionBody() {
		t.Fatal("exit must be a bodyless declaration")
	}
	sig, ok := prog.Types.Signature(exit.Type)
	if !ok || len(sig.Params) != 1 || prog.Types.String(sig.Result) != "noreturn" {
		t.Fatalf("exit signature wrong: %+v", sig)
	}

	main := prog.ByName["main"]
	if main == nil || !main.IsFunctionBody() {
		t.Fatal("main must have a body")
	}
	ops := []ir.Op{ir.OpAlloca, ir.OpStore, ir.OpLoad, ir.OpRet}
	if len(main.Body) != len(ops) {
		t.Fatalf("body length = %d, want %d", len(main.Body), len(ops))
	}
	for i, want := range ops {
		if main.Body[i].Op != want {
			t.Errorf("body[%d].Op = %s, want %s", i, main.Body[i].Op, want)
		}
	}

	// The store's second operand must reference the alloca by identity.
	store := main.Body[1]
	if store.Args[1].Kind != ir.OperandInstr || store.Args[1].Instr != main.Body[0] {
		t.Error("store destination does not reference the alloca instruction")
	}

	if err := ir.Validate(prog); err != nil {
		t.Errorf("parsed program does not validate: %v", err)
	}
}

func TestParseCallForms(t *testing.T) {
	prog, bag := parse(t, `
decl @exit(i32) noreturn
decl @flag() bool

fn @main() void {
  %b = call @flag()
  %n = not %b : bool
  call @exit(0:i32)
  unreachable
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", bag.Items())
	}
	body := prog.ByName["main"].Body
	if body[0].Op != ir.OpCall || body[0].Callee != prog.ByName["flag"] {
		t.Error("direct callee not resolved by identity")
	}
	if body[0].Result == types.NoTypeID {
		t.Error("call of bool-returning function must have a result type")
	}
	if body[2].Result != types.NoTypeID {
		t.Error("call of noreturn function must not yield a resolvable value")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"unknown_toplevel", "frobnicate\n", diag.IRUnexpectedToken},
		{"bad_type", "decl @f() zorble\n", diag.IRBadType},
		{"duplicate", "decl @f() void\ndecl @f() void\n", diag.IRDuplicateDecl},
		{"undefined_value", "fn @f() void {\n  ret %nope\n}\n", diag.IRUnknownValue},
		{"undeclared_callee", "fn @f() void {\n  call @ghost()\n  ret\n}\n", diag.IRUnknownValue},
		{"bad_literal", "fn @f() void {\n  store wat, wat\n}\n", diag.IRBadLiteral},
		{"unclosed_function", "fn @f() void {\n  ret\n", diag.IRMissingBody},
		{"missing_result_type", "fn @f(bool) void {\n  %p = param\n  ret\n}\n", diag.IRBadType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := parse(t, tt.src)
			if !bag.HasErrors() {
				t.Fatal("expected a diagnostic")
			}
			found := false
			for _, d := range bag.Items() {
				if d.Code == tt.code {
					found = true
					if d.Primary.Empty() && tt.name != "unclosed_function" {
						t.Errorf("diagnostic has an empty span: %+v", d)
					}
				}
			}
			if !found {
				t.Errorf("no diagnostic with code %s in %+v", tt.code, bag.Items())
			}
		})
	}
}

func TestParseIsolatesBadLines(t *testing.T) {
	prog, bag := parse(t, `
decl @f() zorble
decl @g() void
`)
	if !bag.HasErrors() {
		t.Fatal("expected a diagnostic for the bad line")
	}
	if prog.ByName["g"] == nil {
		t.Error("a bad line must not stop parsing of later declarations")
	}
}
