package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// VarType is a declared variable's primitive type.
type VarType int

const (
	TypeUnknown VarType = iota // undeclared identifier / recovery
	TypeInt
	TypeFloat
	TypeDouble
	TypeChar
)

var typeNames = [...]string{
	TypeUnknown: "unknown",
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeDouble:  "double",
	TypeChar:    "char",
}

func (t VarType) String() string {
	if int(t) >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("VarType(%d)", int(t))
}

// TypeFromKeyword maps a type keyword lexeme to its VarType.
func TypeFromKeyword(kw string) VarType {
	switch kw {
	case "int":
		return TypeInt
	case "float":
		return TypeFloat
	case "double":
		return TypeDouble
	case "char":
		return TypeChar
	}
	return TypeUnknown
}

// Assignable is the fixed compatibility policy applied at the three store
// points (declaration initializer, assignment, compound assignment):
//   - int, float and double are mutually assignable
//   - char accepts only char
//   - int additionally accepts char (silent widening)
//   - unknown on either side is compatible, so one undeclared variable does
//     not cascade into type diagnostics
func Assignable(dst, src VarType) bool {
	if dst == TypeUnknown || src == TypeUnknown {
		return true
	}
	if dst == TypeChar {
		return src == TypeChar
	}
	if src == TypeChar {
		return dst == TypeInt
	}
	return true
}

// Symbol is one declared name. Re-declaring a name in an inner scope makes a
// new Symbol; nothing ever mutates an existing one.
type Symbol struct {
	Name  string
	Type  VarType
	Depth int // 0 is the global scope
	Line  int // declaration site
	Col   int
}

// DeclareResult classifies the outcome of a declaration.
type DeclareResult int

const (
	DeclOK        DeclareResult = iota
	DeclShadows                 // visible in an outer scope; informational
	DeclDuplicate               // already in the innermost scope; first wins
)

// SymbolTable is a stack of lexical scopes. The table starts with the global
// scope, which is never popped.
type SymbolTable struct {
	scopes []map[string]Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{scopes: []map[string]Symbol{make(map[string]Symbol)}}
}

// Depth returns the current nesting depth; the global scope is depth 0.
func (st *SymbolTable) Depth() int {
	return len(st.scopes) - 1
}

func (st *SymbolTable) EnterScope() {
	st.scopes = append(st.scopes, make(map[string]Symbol))
}

// ExitScope drops the innermost scope's mappings. The symbols themselves are
// not destroyed; anything still holding one keeps a valid value, it just
// stops being reachable by Lookup.
func (st *SymbolTable) ExitScope() {
	if len(st.scopes) > 1 {
		st.scopes = st.scopes[:len(st.scopes)-1]
	}
}

// Declare adds name to the innermost scope and returns the effective symbol.
// On DeclDuplicate the returned symbol is the existing declaration (the new
// one is ignored); on DeclShadows the new symbol was added and hides the
// outer one until the scope exits.
func (st *SymbolTable) Declare(name string, t VarType, line, col int) (Symbol, DeclareResult) {
	current := st.scopes[len(st.scopes)-1]
	if existing, ok := current[name]; ok {
		return existing, DeclDuplicate
	}

	sym := Symbol{Name: name, Type: t, Depth: st.Depth(), Line: line, Col: col}
	current[name] = sym

	for i := len(st.scopes) - 2; i >= 0; i-- {
		if _, ok := st.scopes[i][name]; ok {
			return sym, DeclShadows
		}
	}
	return sym, DeclOK
}

// Lookup searches scopes innermost to outermost.
func (st *SymbolTable) Lookup(name string) (Symbol, bool) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if sym, ok := st.scopes[i][name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// String returns a deterministically ordered dump of the active scopes.
func (st *SymbolTable) String() string {
	var sb strings.Builder
	for depth, scope := range st.scopes {
		if depth == 0 {
			sb.WriteString("Scope 0 (global):\n")
		} else {
			fmt.Fprintf(&sb, "Scope %d:\n", depth)
		}
		if len(scope) == 0 {
			sb.WriteString("  (empty)\n")
			continue
		}
		names := make([]string, 0, len(scope))
		for name := range scope {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			sym := scope[name]
			fmt.Fprintf(&sb, "  %-20s %-8s declared line %d, col %d\n", name, sym.Type, sym.Line, sym.Col)
		}
	}
	return sb.String()
}
