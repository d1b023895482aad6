package compiler

import (
	"reflect"
	"testing"

	"goquad/pkg/lexer"
)

func TestNormalize(t *testing.T) {
	lx, err := lexer.New()
	if err != nil {
		t.Fatal(err)
	}
	tokens := Normalize(lx.Analyze("int x = 10; x < 'a';"), true)

	var terminals []string
	for _, tok := range tokens {
		terminals = append(terminals, tok.Terminal)
	}
	want := []string{"int", "IDENT", "=", "NUM", ";", "IDENT", "<", "CHAR", ";", "EOF"}
	if !reflect.DeepEqual(terminals, want) {
		t.Errorf("terminals = %v, want %v", terminals, want)
	}

	// Lexemes and raw types survive normalization.
	if tokens[1].Lexeme != "x" || tokens[3].Lexeme != "10" {
		t.Errorf("lexemes lost: %+v", tokens)
	}
	if tokens[3].RawType != lexer.INTEGER {
		t.Errorf("RawType = %v, want INTEGER", tokens[3].RawType)
	}
}

func TestNormalizeDropsErrors(t *testing.T) {
	lx, err := lexer.New()
	if err != nil {
		t.Fatal(err)
	}
	raw := lx.Analyze("x @@@ y")

	dropped := Normalize(raw, true)
	if len(dropped) != 3 { // IDENT IDENT EOF
		t.Errorf("dropped = %v", dropped)
	}
	kept := Normalize(raw, false)
	if len(kept) != 4 || kept[1].Terminal != "ERROR" {
		t.Errorf("kept = %v", kept)
	}
}

func TestNormalizeEOFPosition(t *testing.T) {
	tokens := Normalize([]lexer.Token{
		{Type: lexer.IDENTIFIER, Lexeme: "ab", Line: 3, Col: 5},
	}, true)
	eof := tokens[len(tokens)-1]
	if eof.Terminal != "EOF" || eof.Line != 3 || eof.Col != 7 {
		t.Errorf("EOF sentinel = %+v", eof)
	}

	empty := Normalize(nil, true)
	if len(empty) != 1 || empty[0].Terminal != "EOF" || empty[0].Line != 1 || empty[0].Col != 1 {
		t.Errorf("empty input sentinel = %+v", empty)
	}
}

func TestTokenStreamCursor(t *testing.T) {
	s := NewTokenStream(Normalize([]lexer.Token{
		{Type: lexer.IDENTIFIER, Lexeme: "a", Line: 1, Col: 1},
		{Type: lexer.OPERATOR, Lexeme: "=", Line: 1, Col: 3},
		{Type: lexer.INTEGER, Lexeme: "1", Line: 1, Col: 5},
	}, true))

	if s.Peek(0).Terminal != "IDENT" || s.Peek(1).Terminal != "=" {
		t.Fatalf("Peek: %v %v", s.Peek(0), s.Peek(1))
	}
	if tok := s.Advance(); tok.Terminal != "IDENT" {
		t.Errorf("Advance = %v", tok)
	}
	if s.Index() != 1 {
		t.Errorf("Index = %d", s.Index())
	}

	// Peeking past the end sticks at EOF; Advance never moves beyond it.
	if s.Peek(10).Terminal != "EOF" {
		t.Errorf("far Peek = %v", s.Peek(10))
	}
	for i := 0; i < 10; i++ {
		s.Advance()
	}
	if !s.AtEnd() {
		t.Error("not at end after draining")
	}
	if s.Peek(0).Terminal != "EOF" {
		t.Errorf("end token = %v", s.Peek(0))
	}

	// SetIndex rewinds; out-of-range values clamp.
	s.SetIndex(1)
	if s.Peek(0).Terminal != "=" {
		t.Errorf("after rewind = %v", s.Peek(0))
	}
	s.SetIndex(-5)
	if s.Index() != 0 {
		t.Errorf("clamped low = %d", s.Index())
	}
	s.SetIndex(100)
	if s.Peek(0).Terminal != "EOF" {
		t.Errorf("clamped high = %v", s.Peek(0))
	}
}
