package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	// SevError is for errors in the program being compiled.
	SevError
	// SevInternal is for defects in the compiler itself. Internal
	// diagnostics use distinct wording so they are never mistaken for
	// something the user's source can fix.
	SevInternal
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	case SevInternal:
		return "INTERNAL"
	}
	return "UNKNOWN"
}
