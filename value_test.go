package main

import "testing"

func TestAtoiLenient(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"42", 42},
		{"-7", -7},
		{"+3", 3},
		{"abc", 0},
		{"12abc", 12},
		{"", 0},
	}
	for _, c := range cases {
		if got := atoiLenient([]byte(c.in)); got != c.want {
			t.Errorf("atoiLenient(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestIntValueCoercesStringConst(t *testing.T) {
	a := newStringArena()
	slot := a.named.newStringSlot([]byte("123"))
	in := &Interp{arena: a}
	v, err := in.intValue(nil, Result{Kind: ResStringConstRef, Slot: slot})
	if err != nil {
		t.Fatalf("intValue: %v", err)
	}
	if v != 123 {
		t.Fatalf("got %d, want 123", v)
	}
}

func TestIntValueOfByteArrayPtrIsZero(t *testing.T) {
	in := &Interp{}
	v, err := in.intValue(nil, Result{Kind: ResLocalByteArrayPtr})
	if err != nil {
		t.Fatalf("intValue: %v", err)
	}
	if v != 0 {
		t.Fatalf("got %d, want 0", v)
	}
}

func TestCompareResultsNumericVsString(t *testing.T) {
	in := &Interp{arena: newStringArena()}
	ok, err := in.compareResults(nil, intResult(3), intResult(5), CmpLt)
	if err != nil || !ok {
		t.Fatalf("3 < 5 should hold, err=%v ok=%v", err, ok)
	}

	aSlot := in.arena.named.newStringSlot([]byte("abc"))
	bSlot := in.arena.named.newStringSlot([]byte("abd"))
	ok, err = in.compareResults(nil,
		Result{Kind: ResStringConstRef, Slot: aSlot},
		Result{Kind: ResStringConstRef, Slot: bSlot},
		CmpLt)
	if err != nil || !ok {
		t.Fatalf(`"abc" < "abd" should hold, err=%v ok=%v`, err, ok)
	}
}

func TestResolveStringArrayIndexOutOfRange(t *testing.T) {
	in := &Interp{arena: newStringArena(), mod: &Module{Postfix: []PostfixSlot{{Elems: []Elem{{Kind: ElemIntConst, IVal: 5}}}}}}
	in.globals.StringArrays = []StringArray{{Slots: []int{0, 1}}}
	fr := &Frame{in: in, curLine: 10}
	_, _, err := in.resolveStringArrayIndex(fr, Result{Kind: ResGlobalStringArrayRef, VarIndex: 0, IndexSlot: 0})
	if err == nil {
		t.Fatalf("expected out-of-range fault")
	}
}
