package lexer

import (
	"fmt"
	"strings"
)

const (
	lowerLetters = "abcdefghijklmnopqrstuvwxyz"
	upperLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits       = "0123456789"
)

// charClass renders a set of literal characters as an alternation group in
// the pattern dialect, escaping the dialect's metacharacters.
func charClass(chars string) string {
	parts := make([]string, 0, len(chars))
	for _, ch := range chars {
		if isRegexOperator(ch) || ch == '\\' {
			parts = append(parts, `\`+string(ch))
		} else {
			parts = append(parts, string(ch))
		}
	}
	return "(" + strings.Join(parts, "|") + ")"
}

// tokenPattern pairs a token class with its pattern. Order matters twice:
// classes are tried in slice order, and on equal match length the earlier
// class wins (KEYWORD must precede IDENTIFIER).
type tokenPattern struct {
	Type    TokenType
	Pattern string
}

func tokenPatterns() []tokenPattern {
	letter := charClass(lowerLetters + upperLetters + "_")
	alnum := charClass(lowerLetters + upperLetters + "_" + digits)
	digit := charClass(digits)
	nonzero := charClass(digits[1:])

	return []tokenPattern{
		{KEYWORD, "do|int|float|double|char|if|else|while|for|return|void|main"},
		{IDENTIFIER, letter + alnum + "*"},
		{INTEGER, nonzero + digit + "*|0"},
		{FLOAT, digit + digit + "*." + digit + digit + "*"},
		{OPERATOR, `==|!=|<=|>=|&&|\|\||++|--|+=|-=|\*=|/=|+|-|\*|/|=|>|<|!`},
		{DELIMITER, `\(|\)|{|}|[|]|;|,|:`},
	}
}

type tokenDFA struct {
	typ     TokenType
	pattern string
	dfa     *DFA
}

// Lexer scans source text with one minimized DFA per token class.
type Lexer struct {
	dfas []tokenDFA
}

// New compiles every token pattern through the regex -> NFA -> DFA ->
// minimized DFA pipeline.
func New() (*Lexer, error) {
	var dfas []tokenDFA
	for _, tp := range tokenPatterns() {
		frag, err := buildNFA(tp.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling %s pattern: %w", tp.Type, err)
		}
		dfas = append(dfas, tokenDFA{typ: tp.Type, pattern: tp.Pattern, dfa: nfaToDFA(frag).minimize()})
	}
	return &Lexer{dfas: dfas}, nil
}

// DumpPatterns renders every token class's pattern and minimized DFA
// transition table for the report writer.
func (l *Lexer) DumpPatterns() string {
	var sb strings.Builder
	sb.WriteString("token patterns and DFAs\n")
	for _, td := range l.dfas {
		sb.WriteString("----------------------------------------\n")
		fmt.Fprintf(&sb, "token class: %s\n", td.typ)
		fmt.Fprintf(&sb, "pattern: %s\n", td.pattern)
		sb.WriteString(td.dfa.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Analyze scans src to the end and returns every token, including ERROR
// tokens for unrecognized input. It never fails: lexical errors are the
// caller's to report, not the scanner's to abort on.
func (l *Lexer) Analyze(src string) []Token {
	runes := []rune(src)
	var tokens []Token
	pos, line, col := 0, 1, 1

	advanceBy := func(text string) {
		line, col = advancePosition(text, line, col)
		pos += len([]rune(text))
	}

	for pos < len(runes) {
		ch := runes[pos]

		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			advanceBy(string(ch))
			continue
		}

		if ch == '/' && pos+1 < len(runes) && runes[pos+1] == '/' {
			end := pos
			for end < len(runes) && runes[end] != '\n' {
				end++
			}
			advanceBy(string(runes[pos:end]))
			continue
		}
		if ch == '/' && pos+1 < len(runes) && runes[pos+1] == '*' {
			if end := blockCommentEnd(runes, pos); end >= 0 {
				advanceBy(string(runes[pos:end]))
			} else {
				// Unterminated: report the opener, then stop scanning;
				// everything after it is inside the comment.
				tokens = append(tokens, Token{Type: ERROR, Lexeme: "/*", Line: line, Col: col})
				break
			}
			continue
		}

		var tok Token
		switch {
		case ch == '"':
			tok = scanStringLiteral(runes, pos, line, col)
		case ch == '\'':
			tok = scanCharLiteral(runes, pos, line, col)
		default:
			tok = l.longestMatch(runes, pos, line, col)
		}
		if tok.Lexeme == "" {
			tok = errorToken(runes, pos, line, col)
		}
		tokens = append(tokens, tok)
		advanceBy(tok.Lexeme)
	}
	return tokens
}

// longestMatch tries every token DFA and keeps the strictly longest match;
// ties go to the earlier class. Returns a zero Token when nothing matches.
func (l *Lexer) longestMatch(src []rune, start, line, col int) Token {
	best := 0
	var bestType TokenType
	for _, td := range l.dfas {
		if n := td.dfa.longestPrefix(src, start); n > best {
			best = n
			bestType = td.typ
		}
	}
	if best == 0 {
		return Token{}
	}
	return Token{Type: bestType, Lexeme: string(src[start : start+best]), Line: line, Col: col}
}

// scanStringLiteral consumes a "..." literal with backslash escapes. An
// unterminated literal extends to the end of input and is still a STRING
// token; the parser's normalizer has no use for it either way.
func scanStringLiteral(src []rune, start, line, col int) Token {
	end := start + 1
	escaped := false
	for end < len(src) {
		ch := src[end]
		if escaped {
			escaped = false
		} else if ch == '\\' {
			escaped = true
		} else if ch == '"' {
			end++
			break
		}
		end++
	}
	return Token{Type: STRING, Lexeme: string(src[start:end]), Line: line, Col: col}
}

// scanCharLiteral consumes a 'c' or '\x' literal. Malformed literals fall
// back to the ERROR token recovery.
func scanCharLiteral(src []rune, start, line, col int) Token {
	i := start + 1
	if i >= len(src) || src[i] == '\'' {
		return Token{}
	}
	if src[i] == '\\' {
		i++
		if i >= len(src) {
			return Token{}
		}
	}
	i++
	if i >= len(src) || src[i] != '\'' {
		return Token{}
	}
	return Token{Type: CHARACTER, Lexeme: string(src[start : i+1]), Line: line, Col: col}
}

// errorToken swallows input up to the next whitespace or ';' so that one
// bad character does not shred the rest of the line into more errors.
func errorToken(src []rune, start, line, col int) Token {
	end := start + 1
	for end < len(src) {
		ch := src[end]
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == ';' {
			break
		}
		end++
	}
	return Token{Type: ERROR, Lexeme: string(src[start:end]), Line: line, Col: col}
}

// blockCommentEnd returns the index just past the closing "*/", or -1.
func blockCommentEnd(src []rune, start int) int {
	for i := start + 2; i+1 < len(src); i++ {
		if src[i] == '*' && src[i+1] == '/' {
			return i + 2
		}
	}
	return -1
}

func advancePosition(text string, line, col int) (int, int) {
	for _, ch := range text {
		if ch == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
