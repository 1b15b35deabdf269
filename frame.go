package main

// Function frame manager (C5, §4.5). Per-type local scalars live on three
// shared, growable bump stacks owned by the Interp (mirroring spec.md's
// local_int_variable_stack / local_byte_variable_stack /
// local_string_variable_stack); a Frame only remembers its base offset and
// count into each. Because append() may reallocate the backing stack array,
// every access re-resolves (stackBase + offset) at the moment of use rather
// than caching a raw pointer — the "stack reallocation hazard" the spec
// calls out by name, and the one place the reference C implementation is
// explicitly fragile (§4.5, §9 Design Notes).
//
// Local arrays, by contrast, are allocated fresh per call and released by
// the garbage collector when the frame is dropped — spec.md's "per-call
// malloc/free" has no bump-stack discipline to replicate; a plain Go slice
// already gives the right lifetime.

const scalarStackGranularity = 32

// Frame is one activation record (§3 "Function activation frames").
type Frame struct {
	in      *Interp
	fn      *FuncDef
	fnIndex int

	intBase, intCount       int
	byteBase, byteCount     int
	stringBase, stringCount int

	intArrays    [][]int32
	byteArrays   [][]byte
	stringArrays []StringArray

	curLine int // statement line currently executing, for diagnostics
}

func (fr *Frame) localInt(i int) int32    { return fr.in.intStack[fr.intBase+i] }
func (fr *Frame) setLocalInt(i int, v int32) { fr.in.intStack[fr.intBase+i] = v }

func (fr *Frame) localByte(i int) byte    { return fr.in.byteStack[fr.byteBase+i] }
func (fr *Frame) setLocalByte(i int, v byte) { fr.in.byteStack[fr.byteBase+i] = v }

func (fr *Frame) localStringSlot(i int) int       { return fr.in.stringStack[fr.stringBase+i] }
func (fr *Frame) setLocalStringSlot(i int, slot int) { fr.in.stringStack[fr.stringBase+i] = slot }

// ensureIntStack grows the shared int-scalar stack so indices
// [base, base+count) are valid, in granularity-sized steps.
func (in *Interp) ensureIntStack(top int) {
	for len(in.intStack) < top {
		in.intStack = append(in.intStack, make([]int32, scalarStackGranularity)...)
	}
}

func (in *Interp) ensureByteStack(top int) {
	for len(in.byteStack) < top {
		in.byteStack = append(in.byteStack, make([]byte, scalarStackGranularity)...)
	}
}

func (in *Interp) ensureStringStack(top int) {
	for len(in.stringStack) < top {
		in.stringStack = append(in.stringStack, make([]int, scalarStackGranularity)...)
	}
}

// pushFrame allocates an activation record for fn: bump-allocates its
// scalar locals on the three shared stacks (zeroing ints/bytes, binding
// fresh empty named string slots), and mallocs its local array tables
// (§4.5 steps 1–2).
func (in *Interp) pushFrame(fn *FuncDef, fnIndex int) *Frame {
	fr := &Frame{in: in, fn: fn, fnIndex: fnIndex}

	fr.intBase = in.intUsed
	fr.intCount = fn.LocalIntCount
	in.ensureIntStack(fr.intBase + fr.intCount)
	for i := 0; i < fr.intCount; i++ {
		in.intStack[fr.intBase+i] = 0
	}
	in.intUsed += fr.intCount

	fr.byteBase = in.byteUsed
	fr.byteCount = fn.LocalByteCount
	in.ensureByteStack(fr.byteBase + fr.byteCount)
	for i := 0; i < fr.byteCount; i++ {
		in.byteStack[fr.byteBase+i] = 0
	}
	in.byteUsed += fr.byteCount

	fr.stringBase = in.stringUsed
	fr.stringCount = fn.LocalStringCount
	in.ensureStringStack(fr.stringBase + fr.stringCount)
	for i := 0; i < fr.stringCount; i++ {
		in.stringStack[fr.stringBase+i] = in.arena.named.newStringSlot(nil)
	}
	in.stringUsed += fr.stringCount

	fr.intArrays = make([][]int32, len(fn.LocalIntArraySizes))
	for i, size := range fn.LocalIntArraySizes {
		fr.intArrays[i] = make([]int32, size)
	}
	fr.byteArrays = make([][]byte, len(fn.LocalByteArraySizes))
	for i, size := range fn.LocalByteArraySizes {
		fr.byteArrays[i] = make([]byte, size)
	}
	fr.stringArrays = make([]StringArray, len(fn.LocalStringArraySizes))
	for i, size := range fn.LocalStringArraySizes {
		slots := make([]int, size)
		for j := range slots {
			slots[j] = in.arena.named.newStringSlot(nil)
		}
		fr.stringArrays[i] = StringArray{Slots: slots}
	}

	return fr
}

// popFrame releases a frame on every return path — normal return,
// interruption, or fatal-error unwind (§4.5 step 5, §5 "Resource
// acquisition discipline"). Callers invoke this via a deferred call so it
// always runs regardless of how the frame's execution ends.
func (in *Interp) popFrame(fr *Frame) {
	// Named-pool slots were bump-allocated for both the frame's string
	// scalars and every local string-array element, in that order and with
	// nothing else interleaved; both must be retired together to keep
	// named.used in step with the stack discipline (§3, T2).
	namedSlots := fr.stringCount
	for _, arr := range fr.stringArrays {
		namedSlots += len(arr.Slots)
	}
	in.arena.named.delStringSlots(namedSlots)
	in.intUsed -= fr.intCount
	in.byteUsed -= fr.byteCount
	in.stringUsed -= fr.stringCount
	// Local array buffers are simply dropped; Go's GC reclaims them, which
	// is the faithful analogue of the spec's per-call malloc/free (§4.5).
}
