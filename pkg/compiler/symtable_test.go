package compiler

import (
	"strings"
	"testing"
)

func TestDeclareAndLookup(t *testing.T) {
	st := NewSymbolTable()

	sym, res := st.Declare("x", TypeInt, 1, 5)
	if res != DeclOK {
		t.Fatalf("Declare(x) = %v, want DeclOK", res)
	}
	if sym.Type != TypeInt || sym.Depth != 0 || sym.Line != 1 || sym.Col != 5 {
		t.Errorf("unexpected symbol: %+v", sym)
	}

	got, ok := st.Lookup("x")
	if !ok || got != sym {
		t.Errorf("Lookup(x) = %+v, %v", got, ok)
	}
	if _, ok := st.Lookup("y"); ok {
		t.Error("Lookup(y) found an undeclared name")
	}
}

func TestDeclareDuplicateKeepsFirst(t *testing.T) {
	st := NewSymbolTable()
	first, _ := st.Declare("x", TypeInt, 1, 1)

	sym, res := st.Declare("x", TypeFloat, 2, 1)
	if res != DeclDuplicate {
		t.Fatalf("redeclare = %v, want DeclDuplicate", res)
	}
	if sym != first {
		t.Errorf("duplicate returned %+v, want the original %+v", sym, first)
	}
	if got, _ := st.Lookup("x"); got.Type != TypeInt {
		t.Errorf("Lookup(x).Type = %v, want int", got.Type)
	}
}

func TestShadowing(t *testing.T) {
	st := NewSymbolTable()
	st.Declare("x", TypeInt, 1, 1)

	st.EnterScope()
	sym, res := st.Declare("x", TypeChar, 2, 3)
	if res != DeclShadows {
		t.Fatalf("inner declare = %v, want DeclShadows", res)
	}
	if sym.Depth != 1 || sym.Type != TypeChar {
		t.Errorf("inner symbol: %+v", sym)
	}
	if got, _ := st.Lookup("x"); got.Type != TypeChar {
		t.Errorf("Lookup in inner scope = %v, want char", got.Type)
	}

	st.ExitScope()
	if got, _ := st.Lookup("x"); got.Type != TypeInt {
		t.Errorf("Lookup after exit = %v, want int", got.Type)
	}
}

func TestScopeExitDropsNames(t *testing.T) {
	st := NewSymbolTable()
	st.EnterScope()
	st.Declare("local", TypeInt, 1, 1)
	st.ExitScope()
	if _, ok := st.Lookup("local"); ok {
		t.Error("name survived scope exit")
	}
}

func TestGlobalScopeNeverPops(t *testing.T) {
	st := NewSymbolTable()
	st.Declare("g", TypeInt, 1, 1)
	st.ExitScope()
	st.ExitScope()
	if st.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", st.Depth())
	}
	if _, ok := st.Lookup("g"); !ok {
		t.Error("global lost after excess ExitScope calls")
	}
}

func TestAssignable(t *testing.T) {
	tests := []struct {
		dst, src VarType
		want     bool
	}{
		{TypeInt, TypeInt, true},
		{TypeInt, TypeFloat, true},
		{TypeInt, TypeDouble, true},
		{TypeFloat, TypeInt, true},
		{TypeDouble, TypeFloat, true},
		{TypeChar, TypeChar, true},
		{TypeChar, TypeInt, false},
		{TypeChar, TypeFloat, false},
		{TypeInt, TypeChar, true},
		{TypeFloat, TypeChar, false},
		{TypeDouble, TypeChar, false},
		{TypeUnknown, TypeChar, true},
		{TypeChar, TypeUnknown, true},
	}
	for _, tt := range tests {
		if got := Assignable(tt.dst, tt.src); got != tt.want {
			t.Errorf("Assignable(%v, %v) = %v, want %v", tt.dst, tt.src, got, tt.want)
		}
	}
}

func TestSymbolTableString(t *testing.T) {
	st := NewSymbolTable()
	st.Declare("beta", TypeInt, 1, 1)
	st.Declare("alpha", TypeFloat, 2, 1)
	out := st.String()
	if !strings.Contains(out, "Scope 0 (global):") {
		t.Errorf("missing global header:\n%s", out)
	}
	if strings.Index(out, "alpha") > strings.Index(out, "beta") {
		t.Errorf("names not sorted:\n%s", out)
	}
}
