// Package irtext reads the line-oriented textual form of the typed IR.
// It stands in for the upstream analysis pipeline: the programs it
// produces satisfy the same contract (typed declarations, instruction
// order satisfying def-before-use) that a real frontend would guarantee.
//
// Form:
//
//	# comment
//	decl @exit(i32) noreturn
//	fn @main() void {
//	  %slot = alloca bool
//	  store true, %slot
//	  %v = load %slot : bool
//	  ret %v
//	}
package irtext

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"lumen/internal/diag"
	"lumen/internal/ir"
	"lumen/internal/source"
	"lumen/internal/types"
)

type parser struct {
	file *source.File
	tin  *types.Interner
	prog *ir.Program
	bag  *diag.Bag

	cur    *ir.Decl           // function currently being read, nil at top level
	locals map[string]*ir.Instr
}

// ParseFile reads one file into a fresh program. Syntax problems become
// diagnostics in the bag; parsing continues on the next line so one bad
// construct reports once without hiding the rest.
func ParseFile(f *source.File, tin *types.Interner, bag *diag.Bag) *ir.Program {
	prog := ir.NewProgram(tin)
	ParseInto(f, prog, bag)
	return prog
}

// ParseInto reads one file into an existing program, so a multi-file
// unit shares one declaration namespace.
func ParseInto(f *source.File, prog *ir.Program, bag *diag.Bag) {
	p := &parser{
		file: f,
		tin:  prog.Types,
		prog: prog,
		bag:  bag,
	}
	p.run()
}

func (p *parser) run() {
	content := p.file.Content
	offset := 0
	for offset <= len(content) {
		end := offset
		for end < len(content) && content[end] != '\n' {
			end++
		}
		p.line(string(content[offset:end]), offset)
		if end >= len(content) {
			break
		}
		offset = end + 1
	}
	if p.cur != nil {
		p.errorf(p.cur.Span, diag.IRMissingBody, "function @%s has no closing brace", p.cur.Name)
		p.cur = nil
	}
}

func (p *parser) span(offset, length int) source.Span {
	start, err := safecast.Conv[uint32](offset)
	if err != nil {
		panic(fmt.Errorf("offset overflow: %w", err))
	}
	span := source.Span{File: p.file.ID, Start: start, End: start}
	if length > 0 {
		span.End = start + uint32(length) //nolint:gosec // bounded by file size
	}
	return span
}

func (p *parser) errorf(span source.Span, code diag.Code, format string, args ...any) {
	p.bag.Add(diag.NewError(code, span, fmt.Sprintf(format, args...)))
}

func (p *parser) line(raw string, offset int) {
	text := raw
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}
	// Span covers the meaningful part of the line.
	lead := strings.Index(text, trimmed)
	span := p.span(offset+lead, len(trimmed))

	switch {
	case p.cur != nil:
		p.bodyLine(trimmed, span)
	case strings.HasPrefix(trimmed, "decl "):
		p.declLine(strings.TrimPrefix(trimmed, "decl "), span, false)
	case strings.HasPrefix(trimmed, "fn "):
		p.declLine(strings.TrimPrefix(trimmed, "fn "), span, true)
	default:
		p.errorf(span, diag.IRUnexpectedToken, "expected 'decl' or 'fn', got %q", firstWord(trimmed))
	}
}

// declLine reads "@name(T, ...) Tret" with an optional trailing "{" for
// definitions.
func (p *parser) declLine(rest string, span source.Span, hasBody bool) {
	rest = strings.TrimSpace(rest)
	if hasBody {
		if !strings.HasSuffix(rest, "{") {
			p.errorf(span, diag.IRUnexpectedToken, "function definition must end with '{'")
			return
		}
		rest = strings.TrimSpace(strings.TrimSuffix(rest, "{"))
	}
	if !strings.HasPrefix(rest, "@") {
		p.errorf(span, diag.IRUnexpectedToken, "declaration name must start with '@'")
		return
	}
	open := strings.IndexByte(rest, '(')
	closing := strings.LastIndexByte(rest, ')')
	if open < 0 || closing < open {
		p.errorf(span, diag.IRUnexpectedToken, "malformed parameter list")
		return
	}
	name := rest[1:open]
	if name == "" {
		p.errorf(span, diag.IRUnexpectedToken, "empty declaration name")
		return
	}

	var params []types.TypeID
	paramList := strings.TrimSpace(rest[open+1 : closing])
	if paramList != "" {
		for _, part := range strings.Split(paramList, ",") {
			id, ok := p.parseType(strings.TrimSpace(part), span)
			if !ok {
				return
			}
			params = append(params, id)
		}
	}
	retStr := strings.TrimSpace(rest[closing+1:])
	if retStr == "" {
		p.errorf(span, diag.IRBadType, "missing return type for @%s", name)
		return
	}
	ret, ok := p.parseType(retStr, span)
	if !ok {
		return
	}

	d := &ir.Decl{
		Name: name,
		Type: p.tin.Fn(params, ret),
		Span: span,
	}
	if hasBody {
		d.Body = make([]*ir.Instr, 0, 8)
	}
	if !p.prog.Add(d) {
		p.errorf(span, diag.IRDuplicateDecl, "duplicate declaration @%s", name)
		return
	}
	if hasBody {
		p.cur = d
		p.locals = make(map[string]*ir.Instr)
	}
}

func (p *parser) bodyLine(trimmed string, span source.Span) {
	if trimmed == "}" {
		p.cur = nil
		p.locals = nil
		return
	}

	var resultName string
	rhs := trimmed
	if lhs, rest, ok := strings.Cut(trimmed, "="); ok && strings.HasPrefix(strings.TrimSpace(lhs), "%") {
		resultName = strings.TrimPrefix(strings.TrimSpace(lhs), "%")
		rhs = strings.TrimSpace(rest)
	}

	// A trailing " : T" names the result type.
	var resultType types.TypeID
	if body, suffix, ok := cutLast(rhs, " : "); ok {
		id, okT := p.parseType(strings.TrimSpace(suffix), span)
		if !okT {
			return
		}
		resultType = id
		rhs = strings.TrimSpace(body)
	}

	op, rest, _ := strings.Cut(rhs, " ")
	rest = strings.TrimSpace(rest)

	ins := &ir.Instr{Span: span, Name: resultName, Result: resultType}
	ok := false
	switch op {
	case "call":
		ok = p.parseCall(ins, rest, span)
	case "ret":
		if rest == "" {
			ins.Op = ir.OpRetVoid
			ok = true
		} else {
			ins.Op = ir.OpRet
			ok = p.parseOperands(ins, rest, span, 1)
		}
	case "retvoid":
		ins.Op = ir.OpRetVoid
		ok = rest == ""
	case "unreachable", "breakpoint", "dbgstmt":
		ins.Op = map[string]ir.Op{
			"unreachable": ir.OpUnreachable,
			"breakpoint":  ir.OpBreakpoint,
			"dbgstmt":     ir.OpDbgStmt,
		}[op]
		ok = rest == ""
	case "not":
		ins.Op = ir.OpNot
		ok = p.parseOperands(ins, rest, span, 1)
	case "param":
		ins.Op = ir.OpParam
		ok = rest == ""
	case "alloca":
		ins.Op = ir.OpAlloca
		elem, okT := p.parseType(rest, span)
		if okT {
			ins.Elem = elem
			ins.Result = p.tin.Pointer(elem)
			ok = true
		}
	case "store":
		ins.Op = ir.OpStore
		ok = p.parseOperands(ins, rest, span, 2)
	case "load":
		ins.Op = ir.OpLoad
		ok = p.parseOperands(ins, rest, span, 1)
	case "add":
		ins.Op = ir.OpAdd
		ok = p.parseOperands(ins, rest, span, 2)
	default:
		p.errorf(span, diag.IRUnexpectedToken, "unknown instruction %q", op)
		return
	}
	if !ok {
		return
	}

	if needsResultType(ins) && ins.Result == types.NoTypeID {
		p.errorf(span, diag.IRBadType, "%s needs a ': <type>' result annotation", op)
		return
	}
	p.cur.Body = append(p.cur.Body, ins)
	if resultName != "" {
		p.locals[resultName] = ins
	}
}

func needsResultType(ins *ir.Instr) bool {
	switch ins.Op {
	case ir.OpNot, ir.OpParam, ir.OpLoad, ir.OpAdd:
		return true
	default:
		return false
	}
}

// parseCall reads "@callee(arg, ...)". The callee must already be
// declared: the upstream contract is that cross-declaration references
// are by identity, not by late-bound name.
func (p *parser) parseCall(ins *ir.Instr, rest string, span source.Span) bool {
	ins.Op = ir.OpCall
	if !strings.HasPrefix(rest, "@") {
		p.errorf(span, diag.IRUnexpectedToken, "call target must be a @declaration")
		return false
	}
	open := strings.IndexByte(rest, '(')
	closing := strings.LastIndexByte(rest, ')')
	if open < 0 || closing < open {
		p.errorf(span, diag.IRUnexpectedToken, "malformed call argument list")
		return false
	}
	name := rest[1:open]
	callee, okD := p.prog.ByName[name]
	if !okD {
		p.errorf(span, diag.IRUnknownValue, "call of undeclared @%s", name)
		return false
	}
	ins.Callee = callee

	argList := strings.TrimSpace(rest[open+1 : closing])
	if argList != "" {
		for _, part := range strings.Split(argList, ",") {
			arg, okA := p.parseOperand(strings.TrimSpace(part), span)
			if !okA {
				return false
			}
			ins.Args = append(ins.Args, arg)
		}
	}

	if sig, okS := p.tin.Signature(callee.Type); okS && ins.Result == types.NoTypeID {
		ins.Result = resultOrNone(p.tin, sig.Result)
	}
	return true
}

// resultOrNone maps void-like callee results to "no resolvable value".
func resultOrNone(tin *types.Interner, id types.TypeID) types.TypeID {
	t, ok := tin.Lookup(id)
	if !ok || t.Kind == types.KindVoid || t.Kind == types.KindNoReturn {
		return types.NoTypeID
	}
	return id
}

func (p *parser) parseOperands(ins *ir.Instr, rest string, span source.Span, want int) bool {
	parts := strings.Split(rest, ",")
	if len(parts) != want || rest == "" {
		p.errorf(span, diag.IRUnexpectedToken, "%s wants %d operand(s)", ins.Op, want)
		return false
	}
	for _, part := range parts {
		arg, ok := p.parseOperand(strings.TrimSpace(part), span)
		if !ok {
			return false
		}
		ins.Args = append(ins.Args, arg)
	}
	return true
}

func (p *parser) parseOperand(s string, span source.Span) (ir.Operand, bool) {
	switch {
	case strings.HasPrefix(s, "%"):
		ins, ok := p.locals[strings.TrimPrefix(s, "%")]
		if !ok {
			p.errorf(span, diag.IRUnknownValue, "use of undefined value %s", s)
			return ir.Operand{}, false
		}
		return ir.InstrRef(ins), true
	case s == "true", s == "false":
		return ir.ConstRef(ir.Const{Kind: ir.ConstBool, Type: p.tin.Bool(), Bool: s == "true"}), true
	case strings.HasPrefix(s, "undef:"):
		id, ok := p.parseType(strings.TrimPrefix(s, "undef:"), span)
		if !ok {
			return ir.Operand{}, false
		}
		return ir.ConstRef(ir.Const{Kind: ir.ConstUndef, Type: id}), true
	default:
		lit, typeStr, ok := cutLast(s, ":")
		if !ok {
			p.errorf(span, diag.IRBadLiteral, "cannot read operand %q", s)
			return ir.Operand{}, false
		}
		n, err := strconv.ParseInt(strings.TrimSpace(lit), 10, 64)
		if err != nil {
			p.errorf(span, diag.IRBadLiteral, "bad integer literal %q", lit)
			return ir.Operand{}, false
		}
		id, okT := p.parseType(strings.TrimSpace(typeStr), span)
		if !okT {
			return ir.Operand{}, false
		}
		return ir.ConstRef(ir.Const{Kind: ir.ConstInt, Type: id, Int: n}), true
	}
}

var namedTypes = map[string]func(*types.Interner) types.TypeID{
	"void":     (*types.Interner).Void,
	"noreturn": (*types.Interner).NoReturn,
	"bool":     (*types.Interner).Bool,
}

var intWidths = map[string]types.Width{
	"8":    types.Width8,
	"16":   types.Width16,
	"32":   types.Width32,
	"64":   types.Width64,
	"size": types.WidthPtr,
}

func (p *parser) parseType(s string, span source.Span) (types.TypeID, bool) {
	if strings.HasPrefix(s, "*") {
		elem, ok := p.parseType(strings.TrimPrefix(s, "*"), span)
		if !ok {
			return types.NoTypeID, false
		}
		return p.tin.Pointer(elem), true
	}
	if mk, ok := namedTypes[s]; ok {
		return mk(p.tin), true
	}
	if len(s) > 1 && (s[0] == 'i' || s[0] == 'u') {
		if w, ok := intWidths[s[1:]]; ok {
			if s[0] == 'i' {
				return p.tin.Int(w), true
			}
			return p.tin.Uint(w), true
		}
	}
	p.errorf(span, diag.IRBadType, "unknown type %q", s)
	return types.NoTypeID, false
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func firstWord(s string) string {
	word, _, _ := strings.Cut(s, " ")
	return word
}
