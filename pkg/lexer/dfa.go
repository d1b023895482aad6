package lexer

import (
	"fmt"
	"sort"
	"strings"
)

// DFAState is one deterministic state; trans holds at most one target per
// input symbol.
type DFAState struct {
	id        int
	accepting bool
	trans     map[rune]*DFAState
}

// DFA is the deterministic automaton for one token pattern.
type DFA struct {
	start    *DFAState
	states   []*DFAState
	alphabet []rune // sorted
}

// collectNodes walks the fragment and indexes every reachable node by id.
func collectNodes(f nfaFragment) map[int]*nfaNode {
	nodes := make(map[int]*nfaNode)
	stack := []*nfaNode{f.start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := nodes[n.id]; seen {
			continue
		}
		nodes[n.id] = n
		stack = append(stack, n.next...)
	}
	return nodes
}

func alphabetOf(nodes map[int]*nfaNode) []rune {
	seen := make(map[rune]bool)
	for _, n := range nodes {
		if n.char != epsilon {
			seen[n.char] = true
		}
	}
	alphabet := make([]rune, 0, len(seen))
	for ch := range seen {
		alphabet = append(alphabet, ch)
	}
	sort.Slice(alphabet, func(i, j int) bool { return alphabet[i] < alphabet[j] })
	return alphabet
}

// epsilonClosure extends set with every node reachable through ε edges.
func epsilonClosure(nodes map[int]*nfaNode, set map[int]bool) map[int]bool {
	closure := make(map[int]bool, len(set))
	stack := make([]int, 0, len(set))
	for id := range set {
		closure[id] = true
		stack = append(stack, id)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := nodes[id]
		if n == nil || n.char != epsilon {
			continue
		}
		for _, nxt := range n.next {
			if !closure[nxt.id] {
				closure[nxt.id] = true
				stack = append(stack, nxt.id)
			}
		}
	}
	return closure
}

func moveOn(nodes map[int]*nfaNode, set map[int]bool, ch rune) map[int]bool {
	out := make(map[int]bool)
	for id := range set {
		n := nodes[id]
		if n != nil && n.char == ch {
			for _, nxt := range n.next {
				out[nxt.id] = true
			}
		}
	}
	return out
}

// setKey produces a canonical key for a set of NFA node ids.
func setKey(set map[int]bool) string {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	var sb strings.Builder
	for i, id := range ids {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d", id)
	}
	return sb.String()
}

// nfaToDFA runs the subset construction.
func nfaToDFA(f nfaFragment) *DFA {
	nodes := collectNodes(f)
	alphabet := alphabetOf(nodes)

	startSet := epsilonClosure(nodes, map[int]bool{f.start.id: true})
	start := &DFAState{id: 0, accepting: startSet[f.end.id], trans: make(map[rune]*DFAState)}

	states := []*DFAState{start}
	byKey := map[string]*DFAState{setKey(startSet): start}
	work := []map[int]bool{startSet}
	workStates := []*DFAState{start}

	for len(work) > 0 {
		cur, curState := work[0], workStates[0]
		work, workStates = work[1:], workStates[1:]

		for _, ch := range alphabet {
			moved := moveOn(nodes, cur, ch)
			if len(moved) == 0 {
				continue
			}
			next := epsilonClosure(nodes, moved)
			key := setKey(next)
			target, ok := byKey[key]
			if !ok {
				target = &DFAState{
					id:        len(states),
					accepting: next[f.end.id],
					trans:     make(map[rune]*DFAState),
				}
				states = append(states, target)
				byKey[key] = target
				work = append(work, next)
				workStates = append(workStates, target)
			}
			curState.trans[ch] = target
		}
	}

	return &DFA{start: start, states: states, alphabet: alphabet}
}

// minimize merges indistinguishable states by partition refinement: states
// start out split by acceptance, then a group splits whenever two of its
// members transition into different groups on some symbol.
func (d *DFA) minimize() *DFA {
	group := make(map[*DFAState]int, len(d.states))
	for _, s := range d.states {
		if s.accepting {
			group[s] = 1
		}
	}

	for {
		// Signature of a state under the current grouping.
		sig := func(s *DFAState) string {
			var sb strings.Builder
			fmt.Fprintf(&sb, "%d", group[s])
			for _, ch := range d.alphabet {
				if t, ok := s.trans[ch]; ok {
					fmt.Fprintf(&sb, "|%d", group[t])
				} else {
					sb.WriteString("|-")
				}
			}
			return sb.String()
		}

		next := make(map[*DFAState]int, len(d.states))
		bySig := make(map[string]int)
		for _, s := range d.states {
			key := sig(s)
			id, ok := bySig[key]
			if !ok {
				id = len(bySig)
				bySig[key] = id
			}
			next[s] = id
		}

		stable := true
		for _, s := range d.states {
			if next[s] != group[s] {
				stable = false
				break
			}
		}
		group = next
		if stable {
			break
		}
	}

	groupCount := 0
	for _, g := range group {
		if g+1 > groupCount {
			groupCount = g + 1
		}
	}

	states := make([]*DFAState, groupCount)
	for i := range states {
		states[i] = &DFAState{id: i, trans: make(map[rune]*DFAState)}
	}
	for _, s := range d.states {
		ns := states[group[s]]
		if s.accepting {
			ns.accepting = true
		}
		for ch, t := range s.trans {
			ns.trans[ch] = states[group[t]]
		}
	}

	return &DFA{
		start:    states[group[d.start]],
		states:   states,
		alphabet: append([]rune(nil), d.alphabet...),
	}
}

// longestPrefix runs the DFA over src starting at start and returns the
// length of the longest accepted prefix, or 0 if no prefix is accepted.
func (d *DFA) longestPrefix(src []rune, start int) int {
	state := d.start
	best := 0
	for i := start; i < len(src); i++ {
		next, ok := state.trans[src[i]]
		if !ok {
			break
		}
		state = next
		if state.accepting {
			best = i - start + 1
		}
	}
	return best
}

// String dumps the transition table in a deterministic order.
func (d *DFA) String() string {
	var sb strings.Builder
	sb.WriteString("DFA:\n")
	fmt.Fprintf(&sb, "start state: %d\n", d.start.id)

	var accepting []string
	states := append([]*DFAState(nil), d.states...)
	sort.Slice(states, func(i, j int) bool { return states[i].id < states[j].id })
	for _, s := range states {
		if s.accepting {
			accepting = append(accepting, fmt.Sprintf("%d", s.id))
		}
	}
	fmt.Fprintf(&sb, "accepting states: %s\n", strings.Join(accepting, " "))

	symbols := make([]string, len(d.alphabet))
	for i, ch := range d.alphabet {
		symbols[i] = printableSymbol(ch)
	}
	fmt.Fprintf(&sb, "alphabet: [%s]\n", strings.Join(symbols, " "))

	sb.WriteString("transitions:\n")
	for _, s := range states {
		for _, ch := range d.alphabet {
			if t, ok := s.trans[ch]; ok {
				fmt.Fprintf(&sb, "  %d --%s--> %d\n", s.id, printableSymbol(ch), t.id)
			}
		}
	}
	return sb.String()
}

func printableSymbol(ch rune) string {
	switch ch {
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	case 0:
		return `\0`
	}
	return string(ch)
}
