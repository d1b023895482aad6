package compiler

import "fmt"

// The parse report includes a textbook predictive-analysis table for each
// assignment statement, driven by the simplified expression grammar
//
//	S     -> id op Expr ;
//	Expr  -> Term ExprP
//	ExprP -> + Term ExprP | - Term ExprP | ε
//	Term  -> Factor TermP
//	TermP -> * Factor TermP | / Factor TermP | ε
//	Factor -> id | num | char | ( Expr )
//
// Each row records the production applied, the input analyzed so far, the
// lookahead, and the remaining input. Operators outside this grammar stop
// the table early; the rows built up to that point are still reported.

func stmtLexemes(tokens []SyntaxToken) string {
	var out string
	for _, tok := range tokens {
		if tok.Terminal != "EOF" {
			out += tok.Lexeme
		}
	}
	return out
}

func terminalKind(tok SyntaxToken) string {
	switch tok.Terminal {
	case "IDENT":
		return "id"
	case "NUM":
		return "num"
	case "CHAR":
		return "char"
	}
	return tok.Terminal
}

// assignAnalysisTable renders the table for one statement's token span, or
// nil when the span is not an assignment of the supported shape.
func assignAnalysisTable(stmtTokens []SyntaxToken) []string {
	if len(stmtTokens) < 4 {
		return nil
	}
	if stmtTokens[0].Terminal != "IDENT" || !assignOps[stmtTokens[1].Terminal] {
		return nil
	}

	end := -1
	for i, tok := range stmtTokens {
		if tok.Terminal == ";" {
			end = i
			break
		}
	}
	if end < 0 {
		return nil
	}
	stmtTokens = stmtTokens[:end+1]

	i := 0
	consumed := ""

	remaining := func() string {
		return stmtLexemes(stmtTokens[i:])
	}
	kind := func() string {
		if i >= len(stmtTokens) {
			return "EOF"
		}
		return terminalKind(stmtTokens[i])
	}
	consume := func() {
		consumed += stmtTokens[i].Lexeme
		i++
	}

	type row struct {
		prod, analyzed, lookahead, remaining string
	}
	var rows []row
	addRow := func(prod string) {
		lookahead := ""
		if i < len(stmtTokens) {
			lookahead = stmtTokens[i].Lexeme
		}
		rows = append(rows, row{prod, consumed, lookahead, remaining()})
	}

	addRow(fmt.Sprintf("S -> id %s Expr ;", stmtTokens[1].Lexeme))
	consume() // id
	consume() // assignment operator

	stack := []string{";", "Expr"}
	pop := func() string {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top
	}

loop:
	for len(stack) > 0 {
		top := pop()
		la := kind()

		switch top {
		case ";":
			if la != ";" {
				break loop
			}
			consume()
			addRow("match ;")
		case "Expr":
			addRow("Expr -> Term ExprP")
			stack = append(stack, "ExprP", "Term")
		case "ExprP":
			switch la {
			case "+", "-":
				addRow(fmt.Sprintf("ExprP -> %s Term ExprP", la))
				stack = append(stack, "ExprP", "Term", la)
			case ")", ";", "EOF":
				addRow("ExprP -> ε")
			default:
				break loop
			}
		case "Term":
			addRow("Term -> Factor TermP")
			stack = append(stack, "TermP", "Factor")
		case "TermP":
			switch la {
			case "*", "/":
				addRow(fmt.Sprintf("TermP -> %s Factor TermP", la))
				stack = append(stack, "TermP", "Factor", la)
			case "+", "-", ")", ";", "EOF":
				addRow("TermP -> ε")
			default:
				break loop
			}
		case "Factor":
			switch la {
			case "id", "num", "char":
				addRow("Factor -> " + la)
				consume()
			case "(":
				addRow("Factor -> ( Expr )")
				stack = append(stack, ")", "Expr", "(")
			default:
				break loop
			}
		case "+", "-", "*", "/", "(", ")":
			if la != top {
				break loop
			}
			consume()
		default:
			break loop
		}
	}

	out := []string{
		"",
		"predictive analysis: " + stmtLexemes(stmtTokens),
		"production | analyzed | lookahead | remaining",
	}
	for _, r := range rows {
		out = append(out, fmt.Sprintf("%-22s      %-10s      %-8s      %s",
			r.prod, r.analyzed, r.lookahead, r.remaining))
	}
	return append(out, "")
}
