package compiler

import (
	"reflect"
	"strings"
	"testing"
)

func TestQuadString(t *testing.T) {
	tests := []struct {
		q    Quad
		want string
	}{
		{Quad{Op: "=", Arg1: "0", Result: "i"}, "(=, 0, _, i)"},
		{Quad{Op: "+", Arg1: "i", Arg2: "1", Result: "t1"}, "(+, i, 1, t1)"},
		{Quad{Op: "label", Result: "L1"}, "(label, _, _, L1)"},
		{Quad{Op: "ifFalse", Arg1: "t1", Result: "L2"}, "(ifFalse, t1, _, L2)"},
		{Quad{Op: "goto", Result: "L1"}, "(goto, _, _, L1)"},
	}
	for _, tt := range tests {
		if got := tt.q.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestQuadThreeAddress(t *testing.T) {
	tests := []struct {
		q    Quad
		want string
	}{
		{Quad{Op: "label", Result: "L1"}, "L1:"},
		{Quad{Op: "goto", Result: "L1"}, "goto L1"},
		{Quad{Op: "ifFalse", Arg1: "t1", Result: "L2"}, "ifFalse t1 goto L2"},
		{Quad{Op: "=", Arg1: "t2", Result: "i"}, "i = t2"},
		{Quad{Op: "!", Arg1: "x", Result: "t1"}, "t1 = ! x"},
		{Quad{Op: "<", Arg1: "i", Arg2: "10", Result: "t1"}, "t1 = i < 10"},
		{Quad{Op: "+", Arg1: "a", Arg2: "b", Result: "t3"}, "t3 = a + b"},
	}
	for _, tt := range tests {
		if got := tt.q.ThreeAddress(); got != tt.want {
			t.Errorf("ThreeAddress() = %q, want %q", got, tt.want)
		}
	}
}

func TestEmitterCounters(t *testing.T) {
	e := NewEmitter()
	if got := e.NewTemp(); got != "t1" {
		t.Errorf("first temp = %q", got)
	}
	if got := e.NewTemp(); got != "t2" {
		t.Errorf("second temp = %q", got)
	}
	if got := e.NewLabel(); got != "L1" {
		t.Errorf("first label = %q", got)
	}
	if got := e.NewLabel(); got != "L2" {
		t.Errorf("second label = %q", got)
	}

	// Counters restart with a fresh emitter.
	if got := NewEmitter().NewTemp(); got != "t1" {
		t.Errorf("fresh emitter temp = %q", got)
	}
}

func TestEmitOrder(t *testing.T) {
	e := NewEmitter()
	e.Emit("=", "0", "", "i")
	e.EmitLabel("L1")
	e.EmitIfFalse("t1", "L2")
	e.EmitGoto("L1")

	got := make([]string, 0, len(e.Quads()))
	for _, q := range e.Quads() {
		got = append(got, q.String())
	}
	want := []string{
		"(=, 0, _, i)",
		"(label, _, _, L1)",
		"(ifFalse, t1, _, L2)",
		"(goto, _, _, L1)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("quads\n got %v\nwant %v", got, want)
	}
}

func TestBackpatch(t *testing.T) {
	e := NewEmitter()
	i := e.EmitIfFalsePending("t1")
	j := e.EmitGotoPending()
	e.Backpatch([]int{i, j}, "L9")

	quads := e.Quads()
	if quads[i].Result != "L9" || quads[j].Result != "L9" {
		t.Errorf("backpatch failed: %v", quads)
	}
}

// The same loop emitted with pre-allocated symbolic labels and with pending
// jumps resolved by Backpatch must produce identical streams.
func TestBackpatchMatchesSymbolicLabels(t *testing.T) {
	sym := NewEmitter()
	{
		lBegin := sym.NewLabel()
		lEnd := sym.NewLabel()
		sym.EmitLabel(lBegin)
		cond := sym.NewTemp()
		sym.Emit("<", "i", "10", cond)
		sym.EmitIfFalse(cond, lEnd)
		body := sym.NewTemp()
		sym.Emit("+", "i", "1", body)
		sym.Emit("=", body, "", "i")
		sym.EmitGoto(lBegin)
		sym.EmitLabel(lEnd)
	}

	bp := NewEmitter()
	{
		lBegin := bp.NewLabel()
		lEnd := bp.NewLabel()
		bp.EmitLabel(lBegin)
		cond := bp.NewTemp()
		bp.Emit("<", "i", "10", cond)
		exit := bp.EmitIfFalsePending(cond)
		body := bp.NewTemp()
		bp.Emit("+", "i", "1", body)
		bp.Emit("=", body, "", "i")
		back := bp.EmitGotoPending()
		bp.Backpatch([]int{back}, lBegin)
		bp.EmitLabel(lEnd)
		bp.Backpatch([]int{exit}, lEnd)
	}

	got := make([]string, 0, len(bp.Quads()))
	for _, q := range bp.Quads() {
		got = append(got, q.String())
	}
	want := make([]string, 0, len(sym.Quads()))
	for _, q := range sym.Quads() {
		want = append(want, q.String())
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("streams differ\n backpatched %v\n symbolic    %v", got, want)
	}
}

func TestListings(t *testing.T) {
	e := NewEmitter()
	e.EmitLabel("L1")
	e.Emit("+", "i", "1", "t1")

	if out := e.QuadListing(); !strings.Contains(out, "0: (label, _, _, L1)") {
		t.Errorf("QuadListing:\n%s", out)
	}
	out := e.Listing()
	if !strings.Contains(out, "L1:\n") || !strings.Contains(out, "    t1 = i + 1") {
		t.Errorf("Listing:\n%s", out)
	}
}
