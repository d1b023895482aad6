package lexer

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	KEYWORD    // reserved word ("int", "for", ...)
	IDENTIFIER // variable name
	INTEGER    // decimal integer literal
	FLOAT      // decimal literal with a fractional part
	CHARACTER  // character literal 'c'
	STRING     // string literal "..."
	OPERATOR   // arithmetic / relational / assignment operator
	DELIMITER  // bracket or punctuation
	ERROR      // unrecognized input; the scanner records it and keeps going
)

var tokenNames = [...]string{
	EOF:        "EOF",
	KEYWORD:    "KEYWORD",
	IDENTIFIER: "IDENTIFIER",
	INTEGER:    "INTEGER",
	FLOAT:      "FLOAT",
	CHARACTER:  "CHARACTER",
	STRING:     "STRING",
	OPERATOR:   "OPERATOR",
	DELIMITER:  "DELIMITER",
	ERROR:      "ERROR",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
	Col    int    // 1-based source column
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d, col %d", t.Type, t.Lexeme, t.Line, t.Col)
}
