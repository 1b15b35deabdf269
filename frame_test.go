package main

import "testing"

// T2: pushing and popping a frame must restore every shared bump-stack
// counter to its pre-call value, regardless of how much local state the
// frame used.
func TestPushPopFrameRestoresStackUsage(t *testing.T) {
	in := &Interp{arena: newStringArena()}
	fn := &FuncDef{
		LocalIntCount:         3,
		LocalByteCount:        2,
		LocalStringCount:      1,
		LocalIntArraySizes:    []int{4},
		LocalByteArraySizes:   []int{8},
		LocalStringArraySizes: []int{2},
	}

	preInt, preByte, preStr := in.intUsed, in.byteUsed, in.stringUsed
	preNamed := in.arena.named.used
	fr := in.pushFrame(fn, 0)

	if in.intUsed != preInt+3 || in.byteUsed != preByte+2 || in.stringUsed != preStr+1 {
		t.Fatalf("push did not bump stacks as expected: int=%d byte=%d str=%d", in.intUsed, in.byteUsed, in.stringUsed)
	}
	if len(fr.intArrays[0]) != 4 || len(fr.byteArrays[0]) != 8 || len(fr.stringArrays[0].Slots) != 2 {
		t.Fatalf("local array allocation sizes wrong")
	}
	// One named slot per string scalar plus one per local string-array
	// element (1 + 2 = 3 here) must have been bump-allocated (§3, T2).
	if in.arena.named.used != preNamed+3 {
		t.Fatalf("named pool used = %d, want %d", in.arena.named.used, preNamed+3)
	}

	fr.setLocalInt(0, 99)
	if fr.localInt(0) != 99 {
		t.Fatalf("localInt roundtrip failed")
	}

	in.popFrame(fr)
	if in.intUsed != preInt || in.byteUsed != preByte || in.stringUsed != preStr {
		t.Fatalf("pop did not restore stacks: int=%d byte=%d str=%d", in.intUsed, in.byteUsed, in.stringUsed)
	}
	if in.arena.named.used != preNamed {
		t.Fatalf("named pool used after pop = %d, want %d (scalar + array-element slots must all be retired)", in.arena.named.used, preNamed)
	}
}

// Nested push/pop (simulating recursive calls) must unwind in strict LIFO
// order even though all frames share the same backing stacks.
func TestNestedFramesUnwindInOrder(t *testing.T) {
	in := &Interp{arena: newStringArena()}
	fn := &FuncDef{LocalIntCount: 1}

	outer := in.pushFrame(fn, 0)
	outer.setLocalInt(0, 1)
	inner := in.pushFrame(fn, 0)
	inner.setLocalInt(0, 2)

	if outer.localInt(0) != 1 {
		t.Fatalf("outer frame's local was clobbered by inner push")
	}
	in.popFrame(inner)
	if in.intUsed != outer.intBase+outer.intCount {
		t.Fatalf("stack usage after popping inner should equal outer's extent")
	}
	in.popFrame(outer)
	if in.intUsed != 0 {
		t.Fatalf("stack usage after popping outer should be 0, got %d", in.intUsed)
	}
}
