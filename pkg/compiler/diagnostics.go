package compiler

import "fmt"

// DiagKind classifies a diagnostic. None of these aborts translation; the
// end state of a run is always a quadruple stream plus the full list.
type DiagKind int

const (
	SyntaxError          DiagKind = iota // token outside the active SELECT set
	DuplicateDeclaration                 // re-declaration in the same scope
	UndeclaredVariable                   // identifier with no visible symbol
	TypeIncompatible                     // store point violates the type policy
	ShadowedDeclaration                  // inner declaration hides an outer one
)

var diagKindNames = [...]string{
	SyntaxError:          "SyntaxError",
	DuplicateDeclaration: "DuplicateDeclaration",
	UndeclaredVariable:   "UndeclaredVariable",
	TypeIncompatible:     "TypeIncompatible",
	ShadowedDeclaration:  "ShadowedDeclaration",
}

func (k DiagKind) String() string {
	if int(k) >= 0 && int(k) < len(diagKindNames) {
		return diagKindNames[k]
	}
	return fmt.Sprintf("DiagKind(%d)", int(k))
}

// Informational reports whether the kind is a note rather than an error.
func (k DiagKind) Informational() bool {
	return k == ShadowedDeclaration
}

// Diagnostic is one recorded finding, ordered by emission.
type Diagnostic struct {
	Kind    DiagKind
	Message string
	Line    int
	Col     int
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d, col %d: %s: %s", d.Line, d.Col, d.Kind, d.Message)
}
