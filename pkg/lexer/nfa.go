package lexer

import "fmt"

// The pattern dialect understood by buildNFA is deliberately small:
// alternation '|', Kleene star '*', grouping '()', implicit concatenation,
// and backslash escapes (\n \t \r, or \X for a literal metacharacter).
// Everything else is a literal character. Internally the builder uses '~'
// as the explicit concatenation operator while shunting to postfix.

// epsilon marks an NFA node whose outgoing edges are all ε-moves.
const epsilon rune = -1

// nfaNode either carries a single labelled transition (char != epsilon)
// or is an ε node. This mirrors the Thompson construction invariant that
// a node never mixes the two edge kinds.
type nfaNode struct {
	id   int
	char rune
	next []*nfaNode
}

// nfaFragment is a Thompson NFA with one start and one accepting node.
type nfaFragment struct {
	start *nfaNode
	end   *nfaNode
}

type nfaBuilder struct {
	nextID int
}

func (b *nfaBuilder) newNode() *nfaNode {
	b.nextID++
	return &nfaNode{id: b.nextID, char: epsilon}
}

// literal builds start --ch--> end.
func (b *nfaBuilder) literal(ch rune) nfaFragment {
	start := b.newNode()
	end := b.newNode()
	start.char = ch
	start.next = append(start.next, end)
	return nfaFragment{start: start, end: end}
}

func (b *nfaBuilder) alternate(x, y nfaFragment) nfaFragment {
	start := b.newNode()
	end := b.newNode()
	start.next = append(start.next, x.start, y.start)
	x.end.next = append(x.end.next, end)
	y.end.next = append(y.end.next, end)
	return nfaFragment{start: start, end: end}
}

// concatenate joins two fragments; fragment ends are always ε nodes, so the
// splice is a plain ε edge.
func concatenate(x, y nfaFragment) nfaFragment {
	x.end.next = append(x.end.next, y.start)
	return nfaFragment{start: x.start, end: y.end}
}

func (b *nfaBuilder) star(old nfaFragment) nfaFragment {
	start := b.newNode()
	end := b.newNode()
	start.next = append(start.next, end, old.start)
	old.end.next = append(old.end.next, old.start, end)
	return nfaFragment{start: start, end: end}
}

// rxToken is one element of the postfix form: either an operator
// (| ~ * as op==true) or a literal character.
type rxToken struct {
	op bool
	ch rune
}

func isRegexOperator(ch rune) bool {
	switch ch {
	case '|', '~', '*', '(', ')':
		return true
	}
	return false
}

func operatorPriority(op rune) int {
	switch op {
	case '*':
		return 3
	case '~':
		return 2
	case '|':
		return 1
	}
	return 0
}

func unescape(ch rune) rune {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	return ch
}

// infixToPostfix shunts the pattern to postfix, inserting the implicit
// concatenation operator between adjacent atoms.
func infixToPostfix(pattern string) ([]rxToken, error) {
	var output []rxToken
	var ops []rune

	// prev tracks the previous significant character so we know when an
	// implicit concatenation must be inserted; 0 means "start of pattern".
	var prev rune

	needsConcat := func() bool {
		return prev != 0 && (prev == ')' || prev == '*' || !isRegexOperator(prev))
	}
	pushConcat := func() {
		for len(ops) > 0 && operatorPriority(ops[len(ops)-1]) >= operatorPriority('~') {
			output = append(output, rxToken{op: true, ch: ops[len(ops)-1]})
			ops = ops[:len(ops)-1]
		}
		ops = append(ops, '~')
	}

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if ch == '\\' {
			if i+1 >= len(runes) {
				return nil, fmt.Errorf("pattern ends with a bare backslash: %q", pattern)
			}
			if needsConcat() {
				pushConcat()
			}
			output = append(output, rxToken{ch: unescape(runes[i+1])})
			prev = 'a' // an escape behaves like an ordinary character
			i++
			continue
		}

		if !isRegexOperator(ch) {
			if needsConcat() {
				pushConcat()
			}
			output = append(output, rxToken{ch: ch})
			prev = ch
			continue
		}

		switch ch {
		case '(':
			if needsConcat() {
				pushConcat()
			}
			ops = append(ops, '(')
		case ')':
			for len(ops) > 0 && ops[len(ops)-1] != '(' {
				output = append(output, rxToken{op: true, ch: ops[len(ops)-1]})
				ops = ops[:len(ops)-1]
			}
			if len(ops) == 0 {
				return nil, fmt.Errorf("unmatched ')' in pattern: %q", pattern)
			}
			ops = ops[:len(ops)-1] // drop '('
		default: // '|' or '*'
			for len(ops) > 0 && ops[len(ops)-1] != '(' &&
				operatorPriority(ops[len(ops)-1]) >= operatorPriority(ch) {
				output = append(output, rxToken{op: true, ch: ops[len(ops)-1]})
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, ch)
		}
		prev = ch
	}

	for len(ops) > 0 {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		if op == '(' {
			return nil, fmt.Errorf("unmatched '(' in pattern: %q", pattern)
		}
		output = append(output, rxToken{op: true, ch: op})
	}
	return output, nil
}

// buildNFA compiles a pattern to a Thompson NFA.
func buildNFA(pattern string) (nfaFragment, error) {
	if pattern == "" {
		return nfaFragment{}, fmt.Errorf("empty pattern")
	}
	postfix, err := infixToPostfix(pattern)
	if err != nil {
		return nfaFragment{}, err
	}

	b := &nfaBuilder{}
	var stack []nfaFragment
	pop := func() nfaFragment {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return f
	}

	for _, tok := range postfix {
		if !tok.op {
			stack = append(stack, b.literal(tok.ch))
			continue
		}
		switch tok.ch {
		case '|':
			if len(stack) < 2 {
				return nfaFragment{}, fmt.Errorf("missing operand for '|' in pattern: %q", pattern)
			}
			y, x := pop(), pop()
			stack = append(stack, b.alternate(x, y))
		case '~':
			if len(stack) < 2 {
				return nfaFragment{}, fmt.Errorf("missing operand for concatenation in pattern: %q", pattern)
			}
			y, x := pop(), pop()
			stack = append(stack, concatenate(x, y))
		case '*':
			if len(stack) == 0 {
				return nfaFragment{}, fmt.Errorf("missing operand for '*' in pattern: %q", pattern)
			}
			stack = append(stack, b.star(pop()))
		}
	}

	if len(stack) != 1 {
		return nfaFragment{}, fmt.Errorf("malformed pattern: %q", pattern)
	}
	return stack[0], nil
}
