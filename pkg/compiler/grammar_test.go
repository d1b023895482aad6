package compiler

import (
	"reflect"
	"strings"
	"testing"
)

func TestDefaultGrammarIsLL1(t *testing.T) {
	g := DefaultGrammar()
	sets := g.ComputeSets()
	if conflicts := g.Validate(sets); len(conflicts) != 0 {
		for _, c := range conflicts {
			t.Errorf("conflict: %s", c)
		}
	}
}

func TestFirstSets(t *testing.T) {
	g := DefaultGrammar()
	sets := g.ComputeSets()

	tests := []struct {
		nt   string
		want []string
	}{
		{"Type", []string{"char", "double", "float", "int"}},
		{"IncDecOp", []string{"++", "--"}},
		{"RelOp", []string{"!=", "<", "<=", "==", ">", ">="}},
		{"Expr", []string{"!", "(", "+", "-", "CHAR", "IDENT", "NUM"}},
		{"Primary", []string{"(", "CHAR", "IDENT", "NUM"}},
		{"ForStmt", []string{"for"}},
		{"Block", []string{"{"}},
	}
	for _, tt := range tests {
		t.Run(tt.nt, func(t *testing.T) {
			if got := sets.First[tt.nt].sorted(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FIRST(%s) = %v, want %v", tt.nt, got, tt.want)
			}
		})
	}
}

func TestFollowSets(t *testing.T) {
	g := DefaultGrammar()
	sets := g.ComputeSets()

	if !sets.Follow["Program"]["EOF"] {
		t.Error("FOLLOW(Program) missing EOF")
	}
	for _, term := range []string{";", ")"} {
		if !sets.Follow["Expr"][term] {
			t.Errorf("FOLLOW(Expr) missing %q", term)
		}
	}
	// StmtList closes at end of input or end of block.
	for _, term := range []string{"EOF", "}"} {
		if !sets.Follow["StmtList"][term] {
			t.Errorf("FOLLOW(StmtList) missing %q", term)
		}
	}
	// ForInitOpt and ForCondOpt end at ";", ForIterOpt at ")".
	if !sets.Follow["ForInitOpt"][";"] {
		t.Error(`FOLLOW(ForInitOpt) missing ";"`)
	}
	if !sets.Follow["ForIterOpt"][")"] {
		t.Error(`FOLLOW(ForIterOpt) missing ")"`)
	}
}

func TestSelectSets(t *testing.T) {
	g := DefaultGrammar()
	sets := g.ComputeSets()

	// The epsilon production of StmtList selects on FOLLOW(StmtList).
	eps := sets.SelectSet("StmtList")
	for _, term := range []string{"EOF", "}"} {
		if !eps[term] {
			t.Errorf("SELECT(StmtList -> ε) missing %q", term)
		}
	}
	if eps["int"] {
		t.Error(`SELECT(StmtList -> ε) should not contain "int"`)
	}

	decl := sets.SelectSet("Stmt", "DeclStmt", ";")
	if got, want := decl.sorted(), []string{"char", "double", "float", "int"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SELECT(Stmt -> DeclStmt ;) = %v, want %v", got, want)
	}
}

func TestValidateDetectsConflict(t *testing.T) {
	g := &Grammar{
		Start: "S",
		Productions: map[string][]Production{
			"S": {{"a"}, {"a", "b"}},
		},
	}
	conflicts := g.Validate(g.ComputeSets())
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(conflicts))
	}
	if got := conflicts[0].Overlap; !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("overlap = %v, want [a]", got)
	}
}

func TestEpsilonChainFirst(t *testing.T) {
	// A -> B C; B -> b | ε; C -> c. FIRST(A) must include both b and c.
	g := &Grammar{
		Start: "A",
		Productions: map[string][]Production{
			"A": {{"B", "C"}},
			"B": {{"b"}, {}},
			"C": {{"c"}},
		},
	}
	sets := g.ComputeSets()
	if got, want := sets.First["A"].sorted(), []string{"b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("FIRST(A) = %v, want %v", got, want)
	}
	if !sets.Follow["B"]["c"] {
		t.Error("FOLLOW(B) missing c")
	}
}

func TestFormatSets(t *testing.T) {
	g := DefaultGrammar()
	out := FormatSets(g, g.ComputeSets())
	for _, want := range []string{"[FIRST]", "[FOLLOW]", "[SELECT]", "FIRST(Expr)", "SELECT(StmtList -> ε)"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatSets missing %q", want)
		}
	}
}
