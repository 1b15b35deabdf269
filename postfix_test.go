package main

import "testing"

func newTestInterp() *Interp {
	return &Interp{arena: newStringArena(), mod: &Module{}}
}

// T6: a hint that doesn't match the slot's actual element shape must be
// ignored in favor of the general evaluator, never trusted blindly.
func TestHintFallsBackOnShapeMismatch(t *testing.T) {
	in := newTestInterp()
	// Claims HintConstNoOp but actually holds a three-element "const op
	// const" shape; evalHint must reject it and evalGeneral must still compute
	// the right answer (3+4=7).
	slot := PostfixSlot{
		Hint: HintConstNoOp,
		Elems: []Elem{
			{Kind: ElemIntConst, IVal: 3},
			{Kind: ElemIntConst, IVal: 4},
			{Kind: ElemOperator, Op: '+'},
		},
	}
	in.mod.Postfix = []PostfixSlot{slot}
	r, err := in.evalPostfix(nil, 0)
	if err != nil {
		t.Fatalf("evalPostfix: %v", err)
	}
	if r.Kind != ResIntConst || r.IntVal != 7 {
		t.Fatalf("got %+v, want int 7", r)
	}
}

func TestHintLocalIntOpConstInt(t *testing.T) {
	in := newTestInterp()
	in.mod.Postfix = []PostfixSlot{{
		Hint: HintLocalIntOpConstInt,
		Elems: []Elem{
			{Kind: ElemLocalInt, IVal: 0},
			{Kind: ElemIntConst, IVal: 10},
			{Kind: ElemOperator, Op: '*'},
		},
	}}
	fr := &Frame{in: in, intBase: 0, intCount: 1}
	in.intStack = []int32{6}
	r, err := in.evalPostfix(fr, 0)
	if err != nil {
		t.Fatalf("evalPostfix: %v", err)
	}
	if r.IntVal != 60 {
		t.Fatalf("got %d, want 60", r.IntVal)
	}
}

func TestIntBinOpDivModTruncate(t *testing.T) {
	v, err := intBinOp(-7, 2, '/')
	if err != nil || v != -3 {
		t.Fatalf("-7 / 2 = %d, err=%v, want -3", v, err)
	}
	v, err = intBinOp(-7, 2, '%')
	if err != nil || v != -1 {
		t.Fatalf("-7 %% 2 = %d, err=%v, want -1", v, err)
	}
	v, err = intBinOp(1, 0, '/')
	if err != nil || v != 0 {
		t.Fatalf("division by zero should yield 0, got %d err=%v", v, err)
	}
}

// T5: an expression nesting deeper than maxExprStack must fault rather
// than overflow the fixed-capacity stack.
func TestExpressionStackOverflowFaults(t *testing.T) {
	in := newTestInterp()
	elems := make([]Elem, 0, maxExprStack+2)
	for i := 0; i < maxExprStack+1; i++ {
		elems = append(elems, Elem{Kind: ElemIntConst, IVal: 1})
	}
	in.mod.Postfix = []PostfixSlot{{Elems: elems}}
	_, err := in.evalPostfix(nil, 0)
	if err == nil {
		t.Fatalf("expected stack-overflow fault")
	}
}

func TestConcatTempSlotSwap(t *testing.T) {
	in := newTestInterp()
	tempIdx := in.arena.temp.newTempStringSlot([]byte("foo"))
	bSlot := in.arena.named.newStringSlot([]byte("bar"))
	a := Result{Kind: ResTempStringRef, Slot: tempIdx}
	b := Result{Kind: ResStringConstRef, Slot: bSlot}
	r, err := in.concat(nil, a, b)
	if err != nil {
		t.Fatalf("concat: %v", err)
	}
	if r.Kind != ResTempStringRef || r.Slot != tempIdx {
		t.Fatalf("expected concat to reuse the temp slot in place, got %+v", r)
	}
	if got := string(in.arena.temp.content(tempIdx)); got != "foobar" {
		t.Fatalf("got %q, want %q", got, "foobar")
	}
}
