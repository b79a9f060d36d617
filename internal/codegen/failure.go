package codegen

import (
	"errors"
	"fmt"

	"lumen/internal/diag"
	"lumen/internal/ir"
	"lumen/internal/source"
)

// Fatal faults. These abort the whole compilation and never attach to a
// single declaration.
var (
	// ErrInvalidTarget means the backend rejected a triple our resolver
	// produced. Triple resolution and target lookup must agree by
	// construction, so this is a defect in the compiler, not user input.
	ErrInvalidTarget = errors.New("internal compiler defect: backend rejected resolved target triple")
	// ErrVerification means the module we built is structurally invalid.
	ErrVerification = errors.New("internal compiler defect: generated module failed verification")
	// ErrEmit means object emission failed.
	ErrEmit = errors.New("object emission failed")
)

// Failure is a per-declaration lowering fault. It terminates lowering of
// the declaration it occurred in and nothing else; the driver turns it
// into exactly one diagnostic at its source location.
type Failure struct {
	Code    diag.Code
	Span    source.Span
	Message string
}

func (f *Failure) Error() string {
	return f.Message
}

// Diagnostic renders the failure as the declaration's single diagnostic.
func (f *Failure) Diagnostic() diag.Diagnostic {
	return diag.NewError(f.Code, f.Span, f.Message)
}

func notYetImplemented(span source.Span, op ir.Op) *Failure {
	return &Failure{
		Code:    diag.GenNotYetImplemented,
		Span:    span,
		Message: fmt.Sprintf("instruction %q is not lowerable yet", op),
	}
}

func unsupportedType(span source.Span, desc string) *Failure {
	return &Failure{
		Code:    diag.GenUnsupportedType,
		Span:    span,
		Message: fmt.Sprintf("type %s cannot be lowered yet", desc),
	}
}

func unsupportedConstant(span source.Span, kind ir.ConstKind) *Failure {
	return &Failure{
		Code:    diag.GenUnsupportedConstant,
		Span:    span,
		Message: fmt.Sprintf("constant kind %d cannot be materialized yet", kind),
	}
}

func unresolvedValue(span source.Span, what string) *Failure {
	return &Failure{
		Code:    diag.GenUnresolvedValue,
		Span:    span,
		Message: fmt.Sprintf("no lowered value for %s", what),
	}
}

func unsupportedIndirectCall(span source.Span) *Failure {
	return &Failure{
		Code:    diag.GenUnsupportedIndirectCall,
		Span:    span,
		Message: "only direct calls to known declarations are supported",
	}
}
