package main

import (
	"bytes"
	"strconv"
)

// ResultKind is the tag of a dynamic expression result (§3 "Values
// (tagged)"). Tags drive every coercion the evaluator and executor perform.
type ResultKind int

const (
	ResIntConst ResultKind = iota
	ResStringConstRef
	ResTempStringRef
	ResLocalStringVarRef
	ResLocalStringArrayRef
	ResGlobalStringVarRef
	ResGlobalStringArrayRef
	ResLocalByteArrayPtr
	ResGlobalByteArrayPtr
)

// Result is the tagged result of evaluating any expression or sub-
// expression. Field usage depends on Kind:
//
//	ResIntConst             IntVal
//	ResStringConstRef       Slot (named-pool index)
//	ResTempStringRef        Slot (temp-pool index)
//	Res{Local,Global}StringVarRef   VarIndex (scalar var index)
//	Res{Local,Global}StringArrayRef VarIndex (array var index), IndexSlot (postfix slot for subscript)
//	Res{Local,Global}ByteArrayPtr   VarIndex (array var index) — whole-array pointer, no subscript
type Result struct {
	Kind      ResultKind
	IntVal    int32
	Slot      int
	VarIndex  int
	IndexSlot int
}

func intResult(v int32) Result { return Result{Kind: ResIntConst, IntVal: v} }

// isString reports whether a result is string-tagged (any kind but IntConst
// and the two byte-array-pointer kinds).
func (r Result) isString() bool {
	switch r.Kind {
	case ResIntConst, ResLocalByteArrayPtr, ResGlobalByteArrayPtr:
		return false
	default:
		return true
	}
}

// resolveStringArrayIndex evaluates the deferred subscript of a string
// array reference, bounds-checking it (§4.3 "Array-index ranges"; T3).
func (in *Interp) resolveStringArrayIndex(fr *Frame, r Result) (arr *StringArray, idx int, err error) {
	iv, err := in.evalPostfixInt(fr, r.IndexSlot)
	if err != nil {
		return nil, 0, err
	}
	idx = int(iv)
	if r.Kind == ResLocalStringArrayRef {
		arr = &fr.stringArrays[r.VarIndex]
	} else {
		arr = &in.globals.StringArrays[r.VarIndex]
	}
	if idx < 0 || idx >= len(arr.Slots) {
		return nil, 0, newFault(faultIndexOutOfRange, "string array index %d out of range [0,%d) at line %d", idx, len(arr.Slots), fr.curLine)
	}
	return arr, idx, nil
}

// namedSlotOf resolves a string-tagged result other than TempStringRef to
// its concrete named-pool slot index (a StringConstRef already carries it
// directly in Slot).
func (in *Interp) namedSlotOf(fr *Frame, r Result) (int, error) {
	switch r.Kind {
	case ResStringConstRef:
		return r.Slot, nil
	case ResLocalStringVarRef:
		return fr.localStringSlot(r.VarIndex), nil
	case ResGlobalStringVarRef:
		return in.globals.Strings[r.VarIndex], nil
	case ResLocalStringArrayRef, ResGlobalStringArrayRef:
		arr, idx, err := in.resolveStringArrayIndex(fr, r)
		if err != nil {
			return 0, err
		}
		return arr.Slots[idx], nil
	default:
		return 0, newFault(faultUnknownElement, "result kind %d has no named slot", r.Kind)
	}
}

// stringBytes materializes a result's string content as a byte slice,
// clearing any TempStringRef active flag as a side effect (per the
// get_argument_* helper contract of §4.7).
func (in *Interp) stringBytes(fr *Frame, r Result) ([]byte, error) {
	switch r.Kind {
	case ResIntConst:
		return []byte(strconv.FormatInt(int64(r.IntVal), 10)), nil
	case ResTempStringRef:
		b := append([]byte(nil), in.arena.temp.content(r.Slot)...)
		in.arena.temp.deactivate(r.Slot)
		return b, nil
	default:
		idx, err := in.namedSlotOf(fr, r)
		if err != nil {
			return nil, err
		}
		return in.arena.named.content(idx), nil
	}
}

// intValue coerces a result to a signed 32-bit integer (§4.3: "coerce both
// operands to integer"; §7: "a non-numeric string parses as zero — not an
// error").
func (in *Interp) intValue(fr *Frame, r Result) (int32, error) {
	if r.Kind == ResIntConst {
		return r.IntVal, nil
	}
	if r.Kind == ResLocalByteArrayPtr || r.Kind == ResGlobalByteArrayPtr {
		return 0, nil
	}
	b, err := in.stringBytes(fr, r)
	if err != nil {
		return 0, err
	}
	return int32(atoiLenient(b)), nil
}

// atoiLenient parses a leading signed decimal integer out of b, defaulting
// to zero for any non-numeric prefix (spec.md §7 policy).
func atoiLenient(b []byte) int64 {
	i := 0
	neg := false
	if i < len(b) && (b[i] == '+' || b[i] == '-') {
		neg = b[i] == '-'
		i++
	}
	var v int64
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		v = v*10 + int64(b[i]-'0')
		i++
	}
	if neg {
		v = -v
	}
	return v
}

// byteArrayPtr resolves a whole-array byte-buffer reference to its backing
// slice, for intrinsics that need raw buffer access (§4.7
// get_argument_byte_ptr).
func (in *Interp) byteArrayPtr(fr *Frame, r Result) ([]byte, error) {
	switch r.Kind {
	case ResLocalByteArrayPtr:
		return fr.byteArrays[r.VarIndex], nil
	case ResGlobalByteArrayPtr:
		return in.globals.ByteArrays[r.VarIndex].Values, nil
	default:
		return nil, newFault(faultUnknownElement, "result kind %d is not a byte-array pointer", r.Kind)
	}
}

// compareResults implements the If/While comparison semantics of §4.4: if
// either side is integer-tagged, both are coerced to integer and compared
// numerically; otherwise both are materialized to byte strings and compared
// with strict memcmp.
func (in *Interp) compareResults(fr *Frame, lhs, rhs Result, op CompareOp) (bool, error) {
	var cmp int
	if !lhs.isString() || !rhs.isString() {
		a, err := in.intValue(fr, lhs)
		if err != nil {
			return false, err
		}
		b, err := in.intValue(fr, rhs)
		if err != nil {
			return false, err
		}
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	} else {
		a, err := in.stringBytes(fr, lhs)
		if err != nil {
			return false, err
		}
		b, err := in.stringBytes(fr, rhs)
		if err != nil {
			return false, err
		}
		cmp = bytes.Compare(a, b)
	}
	switch op {
	case CmpEq:
		return cmp == 0, nil
	case CmpNeq:
		return cmp != 0, nil
	case CmpLt:
		return cmp < 0, nil
	case CmpLeq:
		return cmp <= 0, nil
	case CmpGt:
		return cmp > 0, nil
	case CmpGeq:
		return cmp >= 0, nil
	default:
		return false, newFault(faultUnknownElement, "unknown comparison operator %d", op)
	}
}
