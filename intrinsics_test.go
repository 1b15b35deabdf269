package main

import "testing"

// callIntrinsicForTest builds a trivial module+frame and FIP whose Argv
// are int-constant postfix slots, then invokes the named intrinsic.
func callIntrinsicForTest(t *testing.T, id int, args ...int32) *FIPRecord {
	t.Helper()
	in := newTestInterp()
	var postfix []PostfixSlot
	argv := make([]int, len(args))
	for i, a := range args {
		postfix = append(postfix, PostfixSlot{Elems: []Elem{{Kind: ElemIntConst, IVal: int(a)}}})
		argv[i] = i
	}
	in.mod.Postfix = postfix
	fip := &FIPRecord{FuncIdx: id, Argv: argv}
	if err := in.callIntrinsic(nil, fip); err != nil {
		t.Fatalf("callIntrinsic(%d): %v", id, err)
	}
	return fip
}

func TestBitCountAndTest(t *testing.T) {
	fip := callIntrinsicForTest(t, IBitCount, 0b1011)
	if fip.Ret != 3 {
		t.Fatalf("bit_count(0b1011) = %d, want 3", fip.Ret)
	}
	fip = callIntrinsicForTest(t, IBitTest, 0b0100, 2)
	if fip.Ret != 1 {
		t.Fatalf("bit_test(0b0100, 2) = %d, want 1", fip.Ret)
	}
	fip = callIntrinsicForTest(t, IBitSet, 0, 3)
	if fip.Ret != 0b1000 {
		t.Fatalf("bit_set(0,3) = %d, want 8", fip.Ret)
	}
	fip = callIntrinsicForTest(t, IBitClear, 0b1111, 1)
	if fip.Ret != 0b1101 {
		t.Fatalf("bit_clear(0b1111,1) = %d, want 0b1101", fip.Ret)
	}
}

func TestHardwareFamilyFaultsWhenUnimplemented(t *testing.T) {
	in := newTestInterp()
	fip := &FIPRecord{FuncIdx: IHwGpioRead, Argv: []int{}}
	err := in.callIntrinsic(nil, fip)
	if err == nil {
		t.Fatalf("expected a fault calling an unimplemented hardware intrinsic")
	}
}

func TestStrIndexOf(t *testing.T) {
	in := newTestInterp()
	hay := in.arena.named.newStringSlot([]byte("hello world"))
	needle := in.arena.named.newStringSlot([]byte("world"))
	in.mod.Postfix = []PostfixSlot{
		{Elems: []Elem{{Kind: ElemStrConst, IVal: hay}}},
		{Elems: []Elem{{Kind: ElemStrConst, IVal: needle}}},
	}
	fip := &FIPRecord{FuncIdx: IStrIndexOf, Argv: []int{0, 1}}
	if err := in.callIntrinsic(nil, fip); err != nil {
		t.Fatalf("callIntrinsic: %v", err)
	}
	if fip.Ret != 6 {
		t.Fatalf("str_index_of = %d, want 6", fip.Ret)
	}
}

func TestClampRange(t *testing.T) {
	cases := []struct {
		start, length, total, wantS, wantE int
	}{
		{0, 3, 5, 0, 3},
		{-2, 3, 5, 0, 3},
		{2, -1, 5, 2, 5},
		{10, 2, 5, 5, 5},
	}
	for _, c := range cases {
		s, e := clampRange(c.start, c.length, c.total)
		if s != c.wantS || e != c.wantE {
			t.Errorf("clampRange(%d,%d,%d) = (%d,%d), want (%d,%d)", c.start, c.length, c.total, s, e, c.wantS, c.wantE)
		}
	}
}
