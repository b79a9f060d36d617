package codegen

import (
	"tinygo.org/x/go-llvm"

	"lumen/internal/source"
	"lumen/internal/types"
)

// lowerType maps a semantic type to a backend type. Void and noreturn
// both lower to the backend's void; booleans are 1-bit integers; integer
// widths come from the active target's data model when pointer-sized.
// Every other kind is the designed extension point and fails with an
// UnsupportedType failure at the given span.
func (g *Generator) lowerType(id types.TypeID, span source.Span) (llvm.Type, error) {
	t, ok := g.types.Lookup(id)
	if !ok {
		return llvm.Type{}, unsupportedType(span, "<none>")
	}
	switch t.Kind {
	case types.KindVoid, types.KindNoReturn:
		return g.ctx.VoidType(), nil
	case types.KindBool:
		return g.ctx.Int1Type(), nil
	case types.KindInt, types.KindUint:
		return g.ctx.IntType(g.intBits(t.Width)), nil
	case types.KindPointer:
		elem, err := g.lowerValueType(t.Elem, span)
		if err != nil {
			return llvm.Type{}, err
		}
		return llvm.PointerType(elem, 0), nil
	default:
		return llvm.Type{}, unsupportedType(span, g.types.String(id))
	}
}

// lowerValueType is lowerType for positions that must hold a storable
// value; void-like results degrade to i8.
func (g *Generator) lowerValueType(id types.TypeID, span source.Span) (llvm.Type, error) {
	t, err := g.lowerType(id, span)
	if err != nil {
		return llvm.Type{}, err
	}
	if t.TypeKind() == llvm.VoidTypeKind {
		return g.ctx.Int8Type(), nil
	}
	return t, nil
}

func (g *Generator) intBits(w types.Width) int {
	if w == types.WidthPtr {
		return g.ptrBits
	}
	return int(w)
}

// isNoReturn reports whether a semantic type denotes a computation that
// never completes.
func (g *Generator) isNoReturn(id types.TypeID) bool {
	t, ok := g.types.Lookup(id)
	return ok && t.Kind == types.KindNoReturn
}

func (g *Generator) isVoidLike(id types.TypeID) bool {
	t, ok := g.types.Lookup(id)
	if !ok {
		return true
	}
	return t.Kind == types.KindVoid || t.Kind == types.KindNoReturn
}

// lowerFnType builds the backend function type for a declaration
// signature.
func (g *Generator) lowerFnType(sig types.Signature, span source.Span) (llvm.Type, error) {
	params := make([]llvm.Type, 0, len(sig.Params))
	for _, p := range sig.Params {
		pt, err := g.lowerType(p, span)
		if err != nil {
			return llvm.Type{}, err
		}
		params = append(params, pt)
	}
	ret, err := g.lowerType(sig.Result, span)
	if err != nil {
		return llvm.Type{}, err
	}
	return llvm.FunctionType(ret, params, false), nil
}
