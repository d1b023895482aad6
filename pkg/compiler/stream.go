package compiler

import "goquad/pkg/lexer"

// SyntaxToken is a lexer token normalized to the grammar's terminal
// vocabulary: keywords, operators and delimiters keep their lexeme as the
// terminal; identifiers and literals collapse to IDENT / NUM / CHAR.
type SyntaxToken struct {
	Terminal string
	Lexeme   string
	Line     int
	Col      int
	RawType  lexer.TokenType
}

// Normalize maps raw lexer tokens to syntax tokens and appends the EOF
// sentinel. ERROR tokens are dropped when dropErrors is set; the lexical
// report has already accounted for them.
func Normalize(tokens []lexer.Token, dropErrors bool) []SyntaxToken {
	out := make([]SyntaxToken, 0, len(tokens)+1)
	for _, tok := range tokens {
		if dropErrors && tok.Type == lexer.ERROR {
			continue
		}
		out = append(out, SyntaxToken{
			Terminal: terminalFor(tok),
			Lexeme:   tok.Lexeme,
			Line:     tok.Line,
			Col:      tok.Col,
			RawType:  tok.Type,
		})
	}

	eofLine, eofCol := 1, 1
	if len(out) > 0 {
		last := out[len(out)-1]
		eofLine = last.Line
		width := len([]rune(last.Lexeme))
		if width < 1 {
			width = 1
		}
		eofCol = last.Col + width
	}
	return append(out, SyntaxToken{Terminal: "EOF", Line: eofLine, Col: eofCol, RawType: lexer.EOF})
}

func terminalFor(tok lexer.Token) string {
	switch tok.Type {
	case lexer.KEYWORD, lexer.OPERATOR, lexer.DELIMITER:
		return tok.Lexeme
	case lexer.IDENTIFIER:
		return "IDENT"
	case lexer.INTEGER, lexer.FLOAT:
		return "NUM"
	case lexer.CHARACTER:
		return "CHAR"
	case lexer.STRING:
		return "STRING"
	case lexer.ERROR:
		return "ERROR"
	}
	return tok.Type.String()
}

// TokenStream is a read-only cursor over a normalized token slice. Peeking
// past the end returns the trailing EOF sentinel; Advance never moves past
// the final token. SetIndex allows the for-loop linearizer to rewind to a
// recorded position.
type TokenStream struct {
	tokens []SyntaxToken
	i      int
}

func NewTokenStream(tokens []SyntaxToken) *TokenStream {
	if len(tokens) == 0 {
		tokens = []SyntaxToken{{Terminal: "EOF", Line: 1, Col: 1}}
	}
	return &TokenStream{tokens: tokens}
}

// Peek returns the token k positions ahead without moving the cursor.
func (s *TokenStream) Peek(k int) SyntaxToken {
	idx := s.i + k
	if idx < 0 {
		idx = 0
	}
	if idx >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[idx]
}

// Advance returns the current token and moves to the next one.
func (s *TokenStream) Advance() SyntaxToken {
	tok := s.Peek(0)
	if s.i < len(s.tokens)-1 {
		s.i++
	}
	return tok
}

func (s *TokenStream) AtEnd() bool {
	return s.Peek(0).Terminal == "EOF"
}

func (s *TokenStream) Index() int {
	return s.i
}

func (s *TokenStream) SetIndex(i int) {
	if i < 0 {
		i = 0
	}
	if i > len(s.tokens)-1 {
		i = len(s.tokens) - 1
	}
	s.i = i
}
