package compiler

import (
	"fmt"
	"strings"
)

// Quad is one quadruple: an operator, up to two arguments and a result.
// Empty fields print as "_".
type Quad struct {
	Op     string
	Arg1   string
	Arg2   string
	Result string
}

func (q Quad) String() string {
	return fmt.Sprintf("(%s, %s, %s, %s)", orBlank(q.Op), orBlank(q.Arg1), orBlank(q.Arg2), orBlank(q.Result))
}

func orBlank(s string) string {
	if s == "" {
		return "_"
	}
	return s
}

// ThreeAddress renders the quad as a line of three-address code.
func (q Quad) ThreeAddress() string {
	switch q.Op {
	case "label":
		return q.Result + ":"
	case "goto":
		return "goto " + q.Result
	case "ifFalse":
		return fmt.Sprintf("ifFalse %s goto %s", q.Arg1, q.Result)
	case "=":
		return fmt.Sprintf("%s = %s", q.Result, q.Arg1)
	case "!":
		return fmt.Sprintf("%s = ! %s", q.Result, q.Arg1)
	default:
		return fmt.Sprintf("%s = %s %s %s", q.Result, q.Arg1, q.Op, q.Arg2)
	}
}

// Emitter owns the growing quadruple stream and the temporary and label
// counters. Counters are per-run; a fresh Emitter restarts both at 1.
type Emitter struct {
	quads   []Quad
	trace   []string
	tempID  int
	labelID int
}

func NewEmitter() *Emitter {
	return &Emitter{}
}

// NewTemp returns the next temporary name: t1, t2, ...
func (e *Emitter) NewTemp() string {
	e.tempID++
	return fmt.Sprintf("t%d", e.tempID)
}

// NewLabel returns the next symbolic label: L1, L2, ...
func (e *Emitter) NewLabel() string {
	e.labelID++
	return fmt.Sprintf("L%d", e.labelID)
}

// Emit appends one quad and returns its index.
func (e *Emitter) Emit(op, arg1, arg2, result string) int {
	q := Quad{Op: op, Arg1: arg1, Arg2: arg2, Result: result}
	e.quads = append(e.quads, q)
	e.trace = append(e.trace, fmt.Sprintf("emit %3d: %s", len(e.quads)-1, q))
	return len(e.quads) - 1
}

func (e *Emitter) EmitLabel(label string) int {
	return e.Emit("label", "", "", label)
}

func (e *Emitter) EmitGoto(label string) int {
	return e.Emit("goto", "", "", label)
}

func (e *Emitter) EmitIfFalse(cond, label string) int {
	return e.Emit("ifFalse", cond, "", label)
}

// EmitGotoPending emits a goto whose target is not yet known; the caller
// backpatches the returned index later.
func (e *Emitter) EmitGotoPending() int {
	return e.Emit("goto", "", "", "")
}

// EmitIfFalsePending emits an ifFalse with an unresolved target.
func (e *Emitter) EmitIfFalsePending(cond string) int {
	return e.Emit("ifFalse", cond, "", "")
}

// Backpatch fills the result field of previously emitted jumps.
func (e *Emitter) Backpatch(indices []int, label string) {
	for _, i := range indices {
		if i >= 0 && i < len(e.quads) {
			e.quads[i].Result = label
			e.trace = append(e.trace, fmt.Sprintf("backpatch %3d -> %s", i, label))
		}
	}
}

// Quads returns the emitted stream in order.
func (e *Emitter) Quads() []Quad {
	return e.quads
}

// Trace returns the emission log, one line per emit or backpatch.
func (e *Emitter) Trace() []string {
	return e.trace
}

// QuadListing renders the numbered quadruple table.
func (e *Emitter) QuadListing() string {
	var sb strings.Builder
	sb.WriteString("quadruples\n")
	for i, q := range e.quads {
		fmt.Fprintf(&sb, "%3d: %s\n", i, q)
	}
	return sb.String()
}

// Listing renders the stream as three-address code, labels unindented.
func (e *Emitter) Listing() string {
	var sb strings.Builder
	sb.WriteString("three-address code\n")
	for _, q := range e.quads {
		if q.Op == "label" {
			sb.WriteString(q.ThreeAddress() + "\n")
		} else {
			sb.WriteString("    " + q.ThreeAddress() + "\n")
		}
	}
	return sb.String()
}
