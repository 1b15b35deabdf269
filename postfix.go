package main

// Postfix (reverse-Polish) expression evaluator (§4.3). Most slots carry a
// Hint recorded by the loader claiming a cheap fixed shape (bare constant,
// bare variable, or "var op var"/"var op const"); evalPostfix validates the
// hint against the slot's actual element list before trusting it and falls
// back to the general stack walk on any mismatch — the defensive posture
// spec.md's Design Notes call for explicitly, since a stale or malformed
// hint must never be trusted blindly.

// maxExprStack is the fixed capacity of the general evaluator's result
// stack (§4.3, T5): the loader rejects any slot whose nesting needs more.
const maxExprStack = 32

// evalPostfix evaluates postfix slot idx in the context of fr, returning
// its single remaining tagged result.
func (in *Interp) evalPostfix(fr *Frame, idx int) (Result, error) {
	slot := &in.mod.Postfix[idx]
	if slot.Hint != HintNone {
		if r, ok, err := in.evalHint(fr, slot); err != nil {
			return Result{}, err
		} else if ok {
			return r, nil
		}
		// Hint didn't match the slot's actual shape; fall through to the
		// general evaluator rather than trust a stale optimizer guess.
	}
	return in.evalGeneral(fr, slot)
}

// evalPostfixInt is a convenience wrapper for the common case of needing a
// plain integer (array subscripts, For/Repeat bounds).
func (in *Interp) evalPostfixInt(fr *Frame, idx int) (int32, error) {
	r, err := in.evalPostfix(fr, idx)
	if err != nil {
		return 0, err
	}
	return in.intValue(fr, r)
}

// evalHint attempts the fast path recorded for slot, returning ok=false if
// the element list doesn't actually have the claimed shape.
func (in *Interp) evalHint(fr *Frame, slot *PostfixSlot) (Result, bool, error) {
	e := slot.Elems
	switch slot.Hint {
	case HintConstNoOp:
		if len(e) == 1 && e[0].Kind == ElemIntConst {
			return intResult(int32(e[0].IVal)), true, nil
		}
	case HintLocalIntNoOp:
		if len(e) == 1 && e[0].Kind == ElemLocalInt {
			return intResult(fr.localInt(e[0].IVal)), true, nil
		}
	case HintGlobalIntNoOp:
		if len(e) == 1 && e[0].Kind == ElemGlobalInt {
			return intResult(in.globals.Ints[e[0].IVal]), true, nil
		}
	case HintLocalByteNoOp:
		if len(e) == 1 && e[0].Kind == ElemLocalByte {
			return intResult(int32(fr.localByte(e[0].IVal))), true, nil
		}
	case HintGlobalByteNoOp:
		if len(e) == 1 && e[0].Kind == ElemGlobalByte {
			return intResult(int32(in.globals.Bytes[e[0].IVal])), true, nil
		}
	case HintIntFuncNoOp, HintExtFuncNoOp:
		if len(e) == 1 && (e[0].Kind == ElemInternCall || e[0].Kind == ElemExternCall) {
			r, err := in.evalCallElem(fr, e[0])
			return r, err == nil, err
		}
	case HintLocalIntOpLocalInt:
		if len(e) == 3 && e[0].Kind == ElemLocalInt && e[1].Kind == ElemLocalInt && e[2].Kind == ElemOperator {
			a := fr.localInt(e[0].IVal)
			b := fr.localInt(e[1].IVal)
			r, err := in.applyIntOp(fr, a, b, e[2].Op)
			return r, err == nil, err
		}
	case HintLocalIntOpConstInt:
		if len(e) == 3 && e[0].Kind == ElemLocalInt && e[1].Kind == ElemIntConst && e[2].Kind == ElemOperator {
			a := fr.localInt(e[0].IVal)
			b := int32(e[1].IVal)
			r, err := in.applyIntOp(fr, a, b, e[2].Op)
			return r, err == nil, err
		}
	case HintGlobalIntOpGlobalInt:
		if len(e) == 3 && e[0].Kind == ElemGlobalInt && e[1].Kind == ElemGlobalInt && e[2].Kind == ElemOperator {
			a := in.globals.Ints[e[0].IVal]
			b := in.globals.Ints[e[1].IVal]
			r, err := in.applyIntOp(fr, a, b, e[2].Op)
			return r, err == nil, err
		}
	case HintGlobalIntOpConstInt:
		if len(e) == 3 && e[0].Kind == ElemGlobalInt && e[1].Kind == ElemIntConst && e[2].Kind == ElemOperator {
			a := in.globals.Ints[e[0].IVal]
			b := int32(e[1].IVal)
			r, err := in.applyIntOp(fr, a, b, e[2].Op)
			return r, err == nil, err
		}
	}
	return Result{}, false, nil
}

// applyIntOp reduces a binary operator over two integer operands for the
// hinted fast paths. The loader does not check which operator a hinted slot
// holds, so concatenation ('.') is handed to concat here, giving the same
// result as the general path.
func (in *Interp) applyIntOp(fr *Frame, a, b int32, op byte) (Result, error) {
	if op == '.' {
		return in.concat(fr, intResult(a), intResult(b))
	}
	v, err := intBinOp(a, b, op)
	if err != nil {
		return Result{}, err
	}
	return intResult(v), nil
}

// intBinOp implements the arithmetic/bitwise/shift operator set over plain
// int32 operands (§4.3): truncating division and modulo (Go's native
// behavior, matching the C reference's), and unsigned-width shifts for
// '<'/'>' reused as shift operators outside comparison context.
func intBinOp(a, b int32, op byte) (int32, error) {
	switch op {
	case '+':
		return a + b, nil
	case '-':
		return a - b, nil
	case '*':
		return a * b, nil
	case '/':
		if b == 0 {
			return 0, nil
		}
		return a / b, nil
	case '%':
		if b == 0 {
			return 0, nil
		}
		return a % b, nil
	case '&':
		return a & b, nil
	case '|':
		return a | b, nil
	case '^':
		return a ^ b, nil
	case '<':
		return int32(uint32(a) << uint32(b&31)), nil
	case '>':
		return int32(uint32(a) >> uint32(b&31)), nil
	default:
		return 0, newFault(faultUnknownElement, "unknown postfix operator %q", rune(op))
	}
}

// evalGeneral walks slot's full element list with a fixed-capacity result
// stack (§4.3, §9 Design Notes), used whenever no hint applies or a hint
// failed validation.
func (in *Interp) evalGeneral(fr *Frame, slot *PostfixSlot) (Result, error) {
	var stack [maxExprStack]Result
	sp := 0
	push := func(r Result) error {
		if sp >= maxExprStack {
			return newFault(faultUnknownElement, "expression stack overflow (depth > %d)", maxExprStack)
		}
		stack[sp] = r
		sp++
		return nil
	}
	pop := func() Result {
		sp--
		return stack[sp]
	}

	for _, e := range slot.Elems {
		switch e.Kind {
		case ElemIntConst:
			if err := push(intResult(int32(e.IVal))); err != nil {
				return Result{}, err
			}
		case ElemStrConst:
			if err := push(Result{Kind: ResStringConstRef, Slot: e.IVal}); err != nil {
				return Result{}, err
			}
		case ElemLocalInt:
			if err := push(intResult(fr.localInt(e.IVal))); err != nil {
				return Result{}, err
			}
		case ElemGlobalInt:
			if err := push(intResult(in.globals.Ints[e.IVal])); err != nil {
				return Result{}, err
			}
		case ElemLocalByte:
			if err := push(intResult(int32(fr.localByte(e.IVal)))); err != nil {
				return Result{}, err
			}
		case ElemGlobalByte:
			if err := push(intResult(int32(in.globals.Bytes[e.IVal]))); err != nil {
				return Result{}, err
			}
		case ElemLocalString:
			if err := push(Result{Kind: ResLocalStringVarRef, VarIndex: e.IVal}); err != nil {
				return Result{}, err
			}
		case ElemGlobalString:
			if err := push(Result{Kind: ResGlobalStringVarRef, VarIndex: e.IVal}); err != nil {
				return Result{}, err
			}
		case ElemLocalIntArrayElem:
			v, err := in.evalPostfixInt(fr, e.InnerSlot)
			if err != nil {
				return Result{}, err
			}
			iv, err := in.loadLocalIntArrayElem(fr, e.IVal, int(v))
			if err != nil {
				return Result{}, err
			}
			if err := push(intResult(iv)); err != nil {
				return Result{}, err
			}
		case ElemGlobalIntArrayElem:
			v, err := in.evalPostfixInt(fr, e.InnerSlot)
			if err != nil {
				return Result{}, err
			}
			iv, err := in.loadGlobalIntArrayElem(e.IVal, int(v), fr.curLine)
			if err != nil {
				return Result{}, err
			}
			if err := push(intResult(iv)); err != nil {
				return Result{}, err
			}
		case ElemLocalByteArrayElem:
			v, err := in.evalPostfixInt(fr, e.InnerSlot)
			if err != nil {
				return Result{}, err
			}
			bv, err := in.loadLocalByteArrayElem(fr, e.IVal, int(v))
			if err != nil {
				return Result{}, err
			}
			if err := push(intResult(int32(bv))); err != nil {
				return Result{}, err
			}
		case ElemGlobalByteArrayElem:
			v, err := in.evalPostfixInt(fr, e.InnerSlot)
			if err != nil {
				return Result{}, err
			}
			bv, err := in.loadGlobalByteArrayElem(e.IVal, int(v), fr.curLine)
			if err != nil {
				return Result{}, err
			}
			if err := push(intResult(int32(bv))); err != nil {
				return Result{}, err
			}
		case ElemLocalStringArrayElem:
			if err := push(Result{Kind: ResLocalStringArrayRef, VarIndex: e.IVal, IndexSlot: e.InnerSlot}); err != nil {
				return Result{}, err
			}
		case ElemGlobalStringArrayElem:
			if err := push(Result{Kind: ResGlobalStringArrayRef, VarIndex: e.IVal, IndexSlot: e.InnerSlot}); err != nil {
				return Result{}, err
			}
		case ElemLocalByteArrayPtr:
			if err := push(Result{Kind: ResLocalByteArrayPtr, VarIndex: e.IVal}); err != nil {
				return Result{}, err
			}
		case ElemGlobalByteArrayPtr:
			if err := push(Result{Kind: ResGlobalByteArrayPtr, VarIndex: e.IVal}); err != nil {
				return Result{}, err
			}
		case ElemInternCall, ElemExternCall:
			r, err := in.evalCallElem(fr, e)
			if err != nil {
				return Result{}, err
			}
			if err := push(r); err != nil {
				return Result{}, err
			}
		case ElemOperator:
			if sp < 2 {
				return Result{}, newFault(faultUnknownElement, "operator %q with fewer than 2 operands on stack", rune(e.Op))
			}
			b := pop()
			a := pop()
			r, err := in.reduceOperator(fr, a, b, e.Op)
			if err != nil {
				return Result{}, err
			}
			if err := push(r); err != nil {
				return Result{}, err
			}
		default:
			return Result{}, newFault(faultUnknownElement, "unknown postfix element kind %d", e.Kind)
		}
	}
	if sp != 1 {
		return Result{}, newFault(faultUnknownElement, "postfix expression left %d results on the stack, want 1", sp)
	}
	return stack[0], nil
}

// reduceOperator applies op to a, b: '.' is string concatenation whatever
// the operand tags; every other operator coerces both operands to integer
// (strings by lenient decimal parse) and applies integer arithmetic (§4.3).
func (in *Interp) reduceOperator(fr *Frame, a, b Result, op byte) (Result, error) {
	if op == '.' {
		return in.concat(fr, a, b)
	}
	av, err := in.intValue(fr, a)
	if err != nil {
		return Result{}, err
	}
	bv, err := in.intValue(fr, b)
	if err != nil {
		return Result{}, err
	}
	v, err := intBinOp(av, bv, op)
	if err != nil {
		return Result{}, err
	}
	return intResult(v), nil
}

// concat implements string concatenation with the temp-slot swap
// optimization (§9 Design Notes): when the left operand is already a
// TempStringRef, the right operand's bytes are appended to that temp slot
// in place and the same slot is returned. A TempStringRef on the right only
// is consumed (deactivated) and the result goes into a new temp slot.
func (in *Interp) concat(fr *Frame, a, b Result) (Result, error) {
	ab, err := in.stringBytes(fr, a)
	if err != nil {
		return Result{}, err
	}
	bb, err := in.stringBytes(fr, b)
	if err != nil {
		return Result{}, err
	}

	if a.Kind == ResTempStringRef {
		in.arena.temp.slots[a.Slot].active = true
		in.arena.temp.concatStr(a.Slot, bb)
		return Result{Kind: ResTempStringRef, Slot: a.Slot}, nil
	}

	joined := make([]byte, 0, len(ab)+len(bb))
	joined = append(joined, ab...)
	joined = append(joined, bb...)
	slot := in.arena.temp.newTempStringSlot(joined)
	return Result{Kind: ResTempStringRef, Slot: slot}, nil
}

// evalCallElem evaluates a nested call embedded inside a postfix expression
// (§4.4 "call-with-assign", §4.7): dispatches to a script function or an
// intrinsic through the shared FIP convention, and wraps the resulting
// value as the appropriate tagged Result.
func (in *Interp) evalCallElem(fr *Frame, e Elem) (Result, error) {
	fip := in.mod.FIPs[e.IVal]
	var retKind ReturnKind
	if e.Kind == ElemInternCall {
		if err := in.callScriptFunction(fr, fip); err != nil {
			return Result{}, err
		}
		retKind = in.mod.Funcs[fip.FuncIdx].Ret
	} else {
		if err := in.callIntrinsic(fr, fip); err != nil {
			return Result{}, err
		}
		retKind = intrinsicTable[fip.FuncIdx].ret
	}
	switch retKind {
	case RetString:
		return Result{Kind: ResTempStringRef, Slot: int(fip.Ret)}, nil
	default:
		return intResult(fip.Ret), nil
	}
}
