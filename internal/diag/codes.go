package diag

import "fmt"

// Code identifies a diagnostic kind. Blocks of one thousand are reserved
// per pipeline stage so codes stay stable as stages grow.
type Code uint16

const (
	UnknownCode Code = 0

	// IR reader (the upstream producer's stand-in).
	IRInfo            Code = 1000
	IRUnexpectedToken Code = 1001
	IRBadType         Code = 1002
	IRBadLiteral      Code = 1003
	IRUnknownValue    Code = 1004
	IRDuplicateDecl   Code = 1005
	IRMissingBody     Code = 1006

	// Code generation.
	GenInfo                    Code = 7000
	GenNotYetImplemented       Code = 7001
	GenUnsupportedType         Code = 7002
	GenUnsupportedConstant     Code = 7003
	GenUnresolvedValue         Code = 7004
	GenUnsupportedIndirectCall Code = 7005

	// Fatal backend faults (setup and finalization).
	GenInvalidTarget     Code = 7100
	GenVerificationError Code = 7101
	GenEmitError         Code = 7102
)

func (c Code) String() string {
	return fmt.Sprintf("LM%04d", uint16(c))
}
