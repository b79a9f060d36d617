package types

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
)

// Interner deduplicates types and hands out stable TypeIDs. The zero ID
// is reserved for "no type".
type Interner struct {
	list []Type
	idx  map[Type]TypeID
	sigs []Signature
}

// NewInterner creates an interner with the ID 0 slot reserved.
func NewInterner() *Interner {
	in := &Interner{
		list: make([]Type, 1, 32),
		idx:  make(map[Type]TypeID, 32),
	}
	in.list[0] = Type{Kind: KindInvalid, Fn: -1}
	return in
}

func (in *Interner) intern(t Type) TypeID {
	if id, ok := in.idx[t]; ok {
		return id
	}
	slot, err := safecast.Conv[uint32](len(in.list))
	if err != nil {
		panic(fmt.Errorf("type table overflow: %w", err))
	}
	id := TypeID(slot)
	in.list = append(in.list, t)
	in.idx[t] = id
	return id
}

// Lookup returns the interned type for id.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.list) {
		return Type{}, false
	}
	return in.list[id], true
}

func (in *Interner) Void() TypeID     { return in.intern(Type{Kind: KindVoid, Fn: -1}) }
func (in *Interner) NoReturn() TypeID { return in.intern(Type{Kind: KindNoReturn, Fn: -1}) }
func (in *Interner) Bool() TypeID     { return in.intern(Type{Kind: KindBool, Fn: -1}) }

func (in *Interner) Int(w Width) TypeID {
	return in.intern(Type{Kind: KindInt, Width: w, Fn: -1})
}

func (in *Interner) Uint(w Width) TypeID {
	return in.intern(Type{Kind: KindUint, Width: w, Fn: -1})
}

func (in *Interner) Pointer(elem TypeID) TypeID {
	return in.intern(Type{Kind: KindPointer, Elem: elem, Fn: -1})
}

// Fn interns a function type. Signatures are compared structurally.
func (in *Interner) Fn(params []TypeID, result TypeID) TypeID {
	for i, sig := range in.sigs {
		if sig.Result != result || len(sig.Params) != len(params) {
			continue
		}
		same := true
		for j := range params {
			if sig.Params[j] != params[j] {
				same = false
				break
			}
		}
		if same {
			return in.intern(Type{Kind: KindFn, Fn: int32(i)}) //nolint:gosec // sig table is small
		}
	}
	in.sigs = append(in.sigs, Signature{Params: append([]TypeID(nil), params...), Result: result})
	return in.intern(Type{Kind: KindFn, Fn: int32(len(in.sigs) - 1)}) //nolint:gosec // sig table is small
}

// Signature returns the parameter and result types of a function type.
func (in *Interner) Signature(id TypeID) (Signature, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindFn || t.Fn < 0 || int(t.Fn) >= len(in.sigs) {
		return Signature{}, false
	}
	return in.sigs[t.Fn], true
}

// String renders a type for diagnostics.
func (in *Interner) String(id TypeID) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<none>"
	}
	switch t.Kind {
	case KindVoid, KindNoReturn, KindBool:
		return t.Kind.String()
	case KindInt:
		if t.Width == WidthPtr {
			return "isize"
		}
		return fmt.Sprintf("i%d", t.Width)
	case KindUint:
		if t.Width == WidthPtr {
			return "usize"
		}
		return fmt.Sprintf("u%d", t.Width)
	case KindPointer:
		return "*" + in.String(t.Elem)
	case KindFn:
		sig, ok := in.Signature(id)
		if !ok {
			return "fn(?)"
		}
		parts := make([]string, 0, len(sig.Params))
		for _, p := range sig.Params {
			parts = append(parts, in.String(p))
		}
		return fmt.Sprintf("fn(%s) %s", strings.Join(parts, ", "), in.String(sig.Result))
	default:
		return t.Kind.String()
	}
}
