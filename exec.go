package main

// Statement executor (§4.4). Walks the flat statement table starting at a
// given index, following each Statement's precomputed Next/branch-target
// fields, until a Return is reached or a negative statement index is
// followed; an index past the end of the table is a fault. Grounded on backend_vm.go's fetch-decode-execute loop, adapted
// from bytecode op-codes to this IR's richer per-kind statement records.

// execFrom runs statements beginning at idx within fr until the function
// returns, yielding the return value (if any) as a tagged Result.
func (in *Interp) execFrom(fr *Frame, idx int) (Result, error) {
	for idx >= 0 {
		if err := in.pollBetweenStatements(); err != nil {
			return Result{}, err
		}
		if idx < 0 || idx >= len(in.mod.Stmts) {
			return Result{}, newFault(faultUnknownStatement, "statement index %d out of range", idx)
		}
		st := &in.mod.Stmts[idx]
		fr.curLine = st.Line
		in.stepCount++

		next, ret, done, err := in.execOne(fr, st, idx)
		if err != nil {
			return Result{}, err
		}
		if done {
			return ret, nil
		}
		idx = next
	}
	return Result{}, nil
}

// pollBetweenStatements checks the cooperative interruption flag and fires
// any due alarm callbacks (§5 "Cooperative interruption", C6). Alarms run
// by re-entering the executor on the current frame, exactly as a normal
// nested call would.
func (in *Interp) pollBetweenStatements() error {
	if in.interrupted {
		return errInterrupted
	}
	return in.alarms.poll()
}

// execOne executes a single statement, returning either the next statement
// index to run (done=false) or a final return value (done=true).
func (in *Interp) execOne(fr *Frame, st *Statement, idx int) (next int, ret Result, done bool, err error) {
	switch st.Type {
	case StmtIf:
		ok, err := in.evalCompare(fr, st)
		if err != nil {
			return 0, Result{}, false, err
		}
		if ok {
			return idx + 1, Result{}, false, nil
		}
		return st.FalseIdx, Result{}, false, nil

	case StmtEndIf:
		return st.Next, Result{}, false, nil

	case StmtWhile:
		ok, err := in.evalCompare(fr, st)
		if err != nil {
			return 0, Result{}, false, err
		}
		if ok {
			return idx + 1, Result{}, false, nil
		}
		return st.FalseIdx, Result{}, false, nil

	case StmtEndWhile:
		return st.Next, Result{}, false, nil

	case StmtFor:
		start, err := in.evalPostfixInt(fr, st.StartSlot)
		if err != nil {
			return 0, Result{}, false, err
		}
		stop, err := in.evalPostfixInt(fr, st.StopSlot)
		if err != nil {
			return 0, Result{}, false, err
		}
		step := int32(1)
		if st.StepSlot >= 0 {
			step, err = in.evalPostfixInt(fr, st.StepSlot)
			if err != nil {
				return 0, Result{}, false, err
			}
		}
		if err := in.setVar(fr, st.LoopVar, start); err != nil {
			return 0, Result{}, false, err
		}
		// Cache bounds on the EndFor record for the matched pair, per the
		// statically precomputed-target IR (§3 "Design Notes on
		// re-entrancy"): this is shared, non-re-entrant storage by design.
		end := &in.mod.Stmts[st.EndForIdx]
		end.CachedStop = stop
		end.CachedStep = step
		if loopDone(start, stop, step) {
			return st.ExitIdx, Result{}, false, nil
		}
		return idx + 1, Result{}, false, nil

	case StmtEndFor:
		forSt := &in.mod.Stmts[st.ForIdx]
		cur, err := in.getVarInt(fr, forSt.LoopVar)
		if err != nil {
			return 0, Result{}, false, err
		}
		cur += st.CachedStep
		if err := in.setVar(fr, forSt.LoopVar, cur); err != nil {
			return 0, Result{}, false, err
		}
		if loopDone(cur, st.CachedStop, st.CachedStep) {
			return st.Next, Result{}, false, nil
		}
		return st.BackIdx, Result{}, false, nil

	case StmtLoop:
		return idx + 1, Result{}, false, nil

	case StmtEndLoop:
		return st.Next, Result{}, false, nil

	case StmtRepeat:
		count, err := in.evalPostfixInt(fr, st.CountSlot)
		if err != nil {
			return 0, Result{}, false, err
		}
		end := &in.mod.Stmts[st.EndRepeatIdx]
		end.CachedCount = count
		if count <= 0 {
			return st.Next, Result{}, false, nil
		}
		return idx + 1, Result{}, false, nil

	case StmtEndRepeat:
		st.CachedCount--
		if st.CachedCount <= 0 {
			return st.Next, Result{}, false, nil
		}
		return st.BackIdx, Result{}, false, nil

	case StmtBreak:
		return st.Next, Result{}, false, nil

	case StmtContinue:
		return st.Next, Result{}, false, nil

	case StmtIncrement:
		cur, err := in.getVarInt(fr, st.Target)
		if err != nil {
			return 0, Result{}, false, err
		}
		if err := in.setVar(fr, st.Target, cur+st.Delta); err != nil {
			return 0, Result{}, false, err
		}
		return st.Next, Result{}, false, nil

	case StmtInternFunction:
		res, err := in.evalPostfix(fr, st.ExprSlot)
		if err != nil {
			return 0, Result{}, false, err
		}
		if st.HasAssign {
			if err := in.assignVar(fr, st.AssignTarget, res); err != nil {
				return 0, Result{}, false, err
			}
		} else if res.Kind == ResTempStringRef {
			// No target to hand the result to; discard it explicitly rather
			// than leaving the temp slot marked active (§4.4, T1).
			in.arena.temp.deactivate(res.Slot)
		}
		return st.Next, Result{}, false, nil

	case StmtReturn:
		if !st.HasValue {
			return 0, Result{}, true, nil
		}
		res, err := in.evalPostfix(fr, st.ValueSlot)
		if err != nil {
			return 0, Result{}, false, err
		}
		return 0, res, true, nil

	default:
		return 0, Result{}, false, newFault(faultUnknownStatement, "unknown statement type %d at line %d", st.Type, st.Line)
	}
}

// loopDone reports whether a For-style induction variable has crossed its
// stop bound, accounting for the step's sign (§4.4 "For"): a non-negative
// step counts up to (and including) stop; a negative step counts down.
func loopDone(cur, stop, step int32) bool {
	if step >= 0 {
		return cur > stop
	}
	return cur < stop
}

// evalCompare evaluates an If/While statement's comparison (§4.4, §4.3).
func (in *Interp) evalCompare(fr *Frame, st *Statement) (bool, error) {
	lhs, err := in.evalPostfix(fr, st.LHSSlot)
	if err != nil {
		return false, err
	}
	rhs, err := in.evalPostfix(fr, st.RHSSlot)
	if err != nil {
		return false, err
	}
	return in.compareResults(fr, lhs, rhs, st.CmpOp)
}

// getVarInt reads a scalar int/byte variable or array element by VarRef
// (§4.4 Increment/For loop-variable reads).
func (in *Interp) getVarInt(fr *Frame, v VarRef) (int32, error) {
	if v.IsArray {
		idx, err := in.evalPostfixInt(fr, v.IndexSlot)
		if err != nil {
			return 0, err
		}
		if v.Kind == KindByte {
			if v.Scope == ScopeLocal {
				b, err := in.loadLocalByteArrayElem(fr, v.Index, int(idx))
				return int32(b), err
			}
			b, err := in.loadGlobalByteArrayElem(v.Index, int(idx), fr.curLine)
			return int32(b), err
		}
		if v.Scope == ScopeLocal {
			return in.loadLocalIntArrayElem(fr, v.Index, int(idx))
		}
		return in.loadGlobalIntArrayElem(v.Index, int(idx), fr.curLine)
	}
	if v.Kind == KindByte {
		if v.Scope == ScopeLocal {
			return int32(fr.localByte(v.Index)), nil
		}
		return int32(in.globals.Bytes[v.Index]), nil
	}
	if v.Scope == ScopeLocal {
		return fr.localInt(v.Index), nil
	}
	return in.globals.Ints[v.Index], nil
}

// setVar writes a scalar int/byte variable or array element by VarRef.
func (in *Interp) setVar(fr *Frame, v VarRef, val int32) error {
	if v.IsArray {
		idx, err := in.evalPostfixInt(fr, v.IndexSlot)
		if err != nil {
			return err
		}
		if v.Kind == KindByte {
			return in.storeByteArrayElem(fr, v.Scope, v.Index, int(idx), byte(val))
		}
		return in.storeIntArrayElem(fr, v.Scope, v.Index, int(idx), val)
	}
	if v.Kind == KindByte {
		if v.Scope == ScopeLocal {
			fr.setLocalByte(v.Index, byte(val))
		} else {
			in.globals.Bytes[v.Index] = byte(val)
		}
		return nil
	}
	if v.Scope == ScopeLocal {
		fr.setLocalInt(v.Index, val)
	} else {
		in.globals.Ints[v.Index] = val
	}
	return nil
}

// assignVar performs a call-with-assign target write (§4.4): string
// targets copy bytes (with temp-slot swap when the source is a temp),
// int/byte targets coerce through intValue.
func (in *Interp) assignVar(fr *Frame, v VarRef, res Result) error {
	if v.Kind == KindString {
		return in.assignStringVar(fr, v, res)
	}
	iv, err := in.intValue(fr, res)
	if err != nil {
		return err
	}
	return in.setVar(fr, v, iv)
}

func (in *Interp) assignStringVar(fr *Frame, v VarRef, res Result) error {
	var dstSlot int
	if v.IsArray {
		idx, err := in.evalPostfixInt(fr, v.IndexSlot)
		if err != nil {
			return err
		}
		var arr *StringArray
		if v.Scope == ScopeLocal {
			arr = &fr.stringArrays[v.Index]
		} else {
			arr = &in.globals.StringArrays[v.Index]
		}
		if int(idx) < 0 || int(idx) >= len(arr.Slots) {
			return newFault(faultIndexOutOfRange, "string array index %d out of range [0,%d) at line %d", idx, len(arr.Slots), fr.curLine)
		}
		dstSlot = arr.Slots[idx]
	} else if v.Scope == ScopeLocal {
		dstSlot = fr.localStringSlot(v.Index)
	} else {
		dstSlot = in.globals.Strings[v.Index]
	}

	if res.Kind == ResTempStringRef {
		in.arena.swapNamedWithTemp(dstSlot, res.Slot)
		return nil
	}
	b, err := in.stringBytes(fr, res)
	if err != nil {
		return err
	}
	in.arena.named.copyStr(dstSlot, b)
	return nil
}

// loadLocalIntArrayElem / loadGlobalIntArrayElem / loadLocalByteArrayElem /
// loadGlobalByteArrayElem bounds-check and read one array element (§4.3
// "Array-index ranges", T3).
func (in *Interp) loadLocalIntArrayElem(fr *Frame, arrIdx, elemIdx int) (int32, error) {
	a := fr.intArrays[arrIdx]
	if elemIdx < 0 || elemIdx >= len(a) {
		return 0, newFault(faultIndexOutOfRange, "int array index %d out of range [0,%d) at line %d", elemIdx, len(a), fr.curLine)
	}
	return a[elemIdx], nil
}

func (in *Interp) loadGlobalIntArrayElem(arrIdx, elemIdx, line int) (int32, error) {
	a := in.globals.IntArrays[arrIdx].Values
	if elemIdx < 0 || elemIdx >= len(a) {
		return 0, newFault(faultIndexOutOfRange, "int array index %d out of range [0,%d) at line %d", elemIdx, len(a), line)
	}
	return a[elemIdx], nil
}

func (in *Interp) loadLocalByteArrayElem(fr *Frame, arrIdx, elemIdx int) (byte, error) {
	a := fr.byteArrays[arrIdx]
	if elemIdx < 0 || elemIdx >= len(a) {
		return 0, newFault(faultIndexOutOfRange, "byte array index %d out of range [0,%d) at line %d", elemIdx, len(a), fr.curLine)
	}
	return a[elemIdx], nil
}

func (in *Interp) loadGlobalByteArrayElem(arrIdx, elemIdx, line int) (byte, error) {
	a := in.globals.ByteArrays[arrIdx].Values
	if elemIdx < 0 || elemIdx >= len(a) {
		return 0, newFault(faultIndexOutOfRange, "byte array index %d out of range [0,%d) at line %d", elemIdx, len(a), line)
	}
	return a[elemIdx], nil
}

func (in *Interp) storeIntArrayElem(fr *Frame, scope VarScope, arrIdx, elemIdx int, val int32) error {
	var a []int32
	if scope == ScopeLocal {
		a = fr.intArrays[arrIdx]
	} else {
		a = in.globals.IntArrays[arrIdx].Values
	}
	if elemIdx < 0 || elemIdx >= len(a) {
		return newFault(faultIndexOutOfRange, "int array index %d out of range [0,%d) at line %d", elemIdx, len(a), fr.curLine)
	}
	a[elemIdx] = val
	return nil
}

func (in *Interp) storeByteArrayElem(fr *Frame, scope VarScope, arrIdx, elemIdx int, val byte) error {
	var a []byte
	if scope == ScopeLocal {
		a = fr.byteArrays[arrIdx]
	} else {
		a = in.globals.ByteArrays[arrIdx].Values
	}
	if elemIdx < 0 || elemIdx >= len(a) {
		return newFault(faultIndexOutOfRange, "byte array index %d out of range [0,%d) at line %d", elemIdx, len(a), fr.curLine)
	}
	a[elemIdx] = val
	return nil
}
