package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// epsilonSymbol is only used for display; an empty production IS epsilon.
const epsilonSymbol = "ε"

// Production is the right-hand side of one grammar rule; the empty slice is ε.
type Production []string

func (p Production) String() string {
	if len(p) == 0 {
		return epsilonSymbol
	}
	return strings.Join(p, " ")
}

// key is the map-key form of a production: symbols joined by spaces, empty
// string for ε (so SelectSet's variadic call sites line up).
func (p Production) key() string {
	return strings.Join(p, " ")
}

// Grammar is an LL(1) grammar: any symbol that appears as a production key
// is a nonterminal, everything else (including "EOF") is a terminal.
type Grammar struct {
	Start       string
	Productions map[string][]Production

	// epsDerivable caches which nonterminals derive ε; filled by
	// computeFirst, read by firstOfSequence.
	epsDerivable map[string]bool
}

func (g *Grammar) IsNonterminal(sym string) bool {
	_, ok := g.Productions[sym]
	return ok
}

func (g *Grammar) nonterminals() []string {
	nts := make([]string, 0, len(g.Productions))
	for nt := range g.Productions {
		nts = append(nts, nt)
	}
	sort.Strings(nts)
	return nts
}

// Terminals returns every terminal referenced by the grammar, sorted.
func (g *Grammar) Terminals() []string {
	seen := make(map[string]bool)
	for _, prods := range g.Productions {
		for _, rhs := range prods {
			for _, sym := range rhs {
				if !g.IsNonterminal(sym) {
					seen[sym] = true
				}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// TerminalSet is a set of terminal symbols.
type TerminalSet map[string]bool

func (ts TerminalSet) sorted() []string {
	out := make([]string, 0, len(ts))
	for t := range ts {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

type prodKey struct {
	lhs string
	rhs string
}

// Sets holds the computed FIRST/FOLLOW/SELECT families. They are consulted
// by the translator to pick productions and by tests to prove the grammar
// is LL(1); they are never evaluated during translation.
type Sets struct {
	First   map[string]TerminalSet
	Follow  map[string]TerminalSet
	selects map[prodKey]TerminalSet
}

// SelectSet returns SELECT(lhs -> rhs...); pass no rhs symbols for ε.
func (s *Sets) SelectSet(lhs string, rhs ...string) TerminalSet {
	return s.selects[prodKey{lhs: lhs, rhs: strings.Join(rhs, " ")}]
}

// ComputeSets runs the standard fixpoint computations.
func (g *Grammar) ComputeSets() *Sets {
	first := g.computeFirst()
	follow := g.computeFollow(first)

	selects := make(map[prodKey]TerminalSet)
	for lhs, prods := range g.Productions {
		for _, rhs := range prods {
			sel := make(TerminalSet)
			firstRHS, canEps := g.firstOfSequence(rhs, first)
			for t := range firstRHS {
				sel[t] = true
			}
			if canEps {
				for t := range follow[lhs] {
					sel[t] = true
				}
			}
			selects[prodKey{lhs: lhs, rhs: rhs.key()}] = sel
		}
	}
	return &Sets{First: first, Follow: follow, selects: selects}
}

// computeFirst iterates to a fixpoint; epsilon membership is tracked with an
// internal marker that never leaks into the returned sets.
func (g *Grammar) computeFirst() map[string]TerminalSet {
	const eps = "\x00ε"

	first := make(map[string]TerminalSet, len(g.Productions))
	for nt := range g.Productions {
		first[nt] = make(TerminalSet)
	}

	add := func(set TerminalSet, sym string) bool {
		if set[sym] {
			return false
		}
		set[sym] = true
		return true
	}

	for changed := true; changed; {
		changed = false
		for lhs, prods := range g.Productions {
			for _, rhs := range prods {
				if len(rhs) == 0 {
					if add(first[lhs], eps) {
						changed = true
					}
					continue
				}
				allEps := true
				for _, sym := range rhs {
					if !g.IsNonterminal(sym) {
						if add(first[lhs], sym) {
							changed = true
						}
						allEps = false
						break
					}
					for t := range first[sym] {
						if t != eps && add(first[lhs], t) {
							changed = true
						}
					}
					if !first[sym][eps] {
						allEps = false
						break
					}
				}
				if allEps && add(first[lhs], eps) {
					changed = true
				}
			}
		}
	}

	out := make(map[string]TerminalSet, len(first))
	for nt, set := range first {
		clean := make(TerminalSet, len(set))
		for t := range set {
			if t != eps {
				clean[t] = true
			}
		}
		out[nt] = clean
	}
	g.epsDerivable = make(map[string]bool, len(first))
	for nt, set := range first {
		g.epsDerivable[nt] = set[eps]
	}
	return out
}

// firstOfSequence returns FIRST(seq) minus ε, plus whether seq derives ε.
func (g *Grammar) firstOfSequence(seq []string, first map[string]TerminalSet) (TerminalSet, bool) {
	out := make(TerminalSet)
	for _, sym := range seq {
		if !g.IsNonterminal(sym) {
			out[sym] = true
			return out, false
		}
		for t := range first[sym] {
			out[t] = true
		}
		if !g.epsDerivable[sym] {
			return out, false
		}
	}
	return out, true
}

func (g *Grammar) computeFollow(first map[string]TerminalSet) map[string]TerminalSet {
	follow := make(map[string]TerminalSet, len(g.Productions))
	for nt := range g.Productions {
		follow[nt] = make(TerminalSet)
	}
	follow[g.Start]["EOF"] = true

	for changed := true; changed; {
		changed = false
		for lhs, prods := range g.Productions {
			for _, rhs := range prods {
				for i, sym := range rhs {
					if !g.IsNonterminal(sym) {
						continue
					}
					beta := rhs[i+1:]
					firstBeta, betaEps := g.firstOfSequence(beta, first)
					for t := range firstBeta {
						if !follow[sym][t] {
							follow[sym][t] = true
							changed = true
						}
					}
					if betaEps {
						for t := range follow[lhs] {
							if !follow[sym][t] {
								follow[sym][t] = true
								changed = true
							}
						}
					}
				}
			}
		}
	}
	return follow
}

// Conflict reports two alternative productions of one nonterminal whose
// SELECT sets intersect, violating the LL(1) condition.
type Conflict struct {
	LHS     string
	A, B    Production
	Overlap []string
}

func (c Conflict) String() string {
	return fmt.Sprintf("SELECT(%s -> %s) ∩ SELECT(%s -> %s) = { %s }",
		c.LHS, c.A, c.LHS, c.B, strings.Join(c.Overlap, ", "))
}

// Validate proves (or disproves) parsing-table determinism: it returns every
// SELECT-set collision between alternatives of the same nonterminal.
func (g *Grammar) Validate(sets *Sets) []Conflict {
	var conflicts []Conflict
	for _, lhs := range g.nonterminals() {
		prods := g.Productions[lhs]
		for i := 0; i < len(prods); i++ {
			for j := i + 1; j < len(prods); j++ {
				a := sets.selects[prodKey{lhs, prods[i].key()}]
				b := sets.selects[prodKey{lhs, prods[j].key()}]
				var overlap []string
				for t := range a {
					if b[t] {
						overlap = append(overlap, t)
					}
				}
				if len(overlap) > 0 {
					sort.Strings(overlap)
					conflicts = append(conflicts, Conflict{LHS: lhs, A: prods[i], B: prods[j], Overlap: overlap})
				}
			}
		}
	}
	return conflicts
}

// FormatSets renders the three set families deterministically for reports.
func FormatSets(g *Grammar, sets *Sets) string {
	var sb strings.Builder
	sb.WriteString("LL(1) FIRST / FOLLOW / SELECT\n\n")

	sb.WriteString("[FIRST]\n")
	for _, nt := range g.nonterminals() {
		fmt.Fprintf(&sb, "FIRST(%s) = { %s }\n", nt, strings.Join(sets.First[nt].sorted(), ", "))
	}
	sb.WriteString("\n[FOLLOW]\n")
	for _, nt := range g.nonterminals() {
		fmt.Fprintf(&sb, "FOLLOW(%s) = { %s }\n", nt, strings.Join(sets.Follow[nt].sorted(), ", "))
	}
	sb.WriteString("\n[SELECT]\n")
	for _, nt := range g.nonterminals() {
		prods := append([]Production(nil), g.Productions[nt]...)
		sort.Slice(prods, func(i, j int) bool { return prods[i].String() < prods[j].String() })
		for _, rhs := range prods {
			sel := sets.selects[prodKey{nt, rhs.key()}]
			fmt.Fprintf(&sb, "SELECT(%s -> %s) = { %s }\n", nt, rhs, strings.Join(sel.sorted(), ", "))
		}
	}
	return sb.String()
}

// DefaultGrammar is the statement language this translator implements.
func DefaultGrammar() *Grammar {
	return &Grammar{
		Start: "Program",
		Productions: map[string][]Production{
			"Program":  {{"StmtList", "EOF"}},
			"StmtList": {{"Stmt", "StmtList"}, {}},
			"Stmt": {
				{"ForStmt"},
				{"Block"},
				{"DeclStmt", ";"},
				{";"},
				{"PrefixIncDec", ";"},
				{"IDENT", "IdStmtTail", ";"},
			},
			"Block":   {{"{", "StmtList", "}"}},
			"ForStmt": {{"for", "(", "ForInitOpt", ";", "ForCondOpt", ";", "ForIterOpt", ")", "Stmt"}},

			"ForInitOpt": {{"DeclStmt"}, {"PrefixIncDec"}, {"IDENT", "ForIdTail"}, {}},
			"ForCondOpt": {{"Expr"}, {}},
			"ForIterOpt": {{"PrefixIncDec"}, {"IDENT", "ForIdTail"}, {}},

			"DeclStmt":     {{"Type", "IDENT", "DeclInitOpt"}},
			"Type":         {{"int"}, {"float"}, {"double"}, {"char"}},
			"DeclInitOpt":  {{"=", "Expr"}, {}},
			"AssignOp":     {{"="}, {"+="}, {"-="}, {"*="}, {"/="}},
			"IncDecOp":     {{"++"}, {"--"}},
			"PrefixIncDec": {{"IncDecOp", "IDENT"}},
			"IdStmtTail":   {{"IncDecOp"}, {"AssignOp", "Expr"}},
			"ForIdTail":    {{"IncDecOp"}, {"AssignOp", "Expr"}},

			"Expr":    {{"AddExpr", "RelTail"}},
			"RelTail": {{"RelOp", "AddExpr", "RelTail"}, {}},
			"RelOp":   {{"<"}, {"<="}, {">"}, {">="}, {"=="}, {"!="}},
			"AddExpr": {{"MulExpr", "AddTail"}},
			"AddTail": {{"AddOp", "MulExpr", "AddTail"}, {}},
			"AddOp":   {{"+"}, {"-"}},
			"MulExpr": {{"Unary", "MulTail"}},
			"MulTail": {{"MulOp", "Unary", "MulTail"}, {}},
			"MulOp":   {{"*"}, {"/"}},
			"Unary":   {{"UnaryOp", "Unary"}, {"Primary"}},
			"UnaryOp": {{"+"}, {"-"}, {"!"}},
			"Primary": {{"IDENT"}, {"NUM"}, {"CHAR"}, {"(", "Expr", ")"}},
		},
	}
}
