package main

import "testing"

// buildSumLoopModule hand-builds (no loader) a function summing integers
// 1..5 into local int 1 via a For loop, then returning it — exercising
// For/EndFor branch wiring and the CachedStop/CachedStep scratch fields.
func buildSumLoopModule() *Module {
	// postfix slots: 0 -> const 1 (start), 1 -> const 5 (stop), 2 -> local1+local0 (sum expr), 3 -> local1 (return value)
	postfix := []PostfixSlot{
		{Elems: []Elem{{Kind: ElemIntConst, IVal: 1}}},
		{Elems: []Elem{{Kind: ElemIntConst, IVal: 5}}},
		{Elems: []Elem{
			{Kind: ElemLocalInt, IVal: 1},
			{Kind: ElemLocalInt, IVal: 0},
			{Kind: ElemOperator, Op: '+'},
		}},
		{Elems: []Elem{{Kind: ElemLocalInt, IVal: 1}}},
	}

	// Statement layout:
	// 0: FOR start=0 stop=1 step=-1(none) loopVar=local int 0 endFor=2 exit=3
	// 1: CALL exprSlot=2 assign local int1 := sum   next=2 (body)
	// 2: ENDFOR forIdx=0 backIdx=1 next=3
	// 3: RETURN valueSlot=3
	stmts := []Statement{
		{
			Type: StmtFor, StartSlot: 0, StopSlot: 1, StepSlot: -1,
			LoopVar:   VarRef{Scope: ScopeLocal, Kind: KindInt, Index: 0},
			EndForIdx: 2, ExitIdx: 3,
		},
		{
			Type: StmtInternFunction, ExprSlot: 2, HasAssign: true,
			AssignTarget: VarRef{Scope: ScopeLocal, Kind: KindInt, Index: 1},
			Next:         2,
		},
		{Type: StmtEndFor, ForIdx: 0, BackIdx: 1, Next: 3},
		{Type: StmtReturn, HasValue: true, ValueSlot: 3},
	}

	fn := FuncDef{FirstStmt: 0, Ret: RetInt, LocalIntCount: 2}
	return &Module{Stmts: stmts, Postfix: postfix, Funcs: []FuncDef{fn}, MainFunc: 0}
}

func TestForLoopSumsToFifteen(t *testing.T) {
	mod := buildSumLoopModule()
	in := NewInterp(mod)
	fr := in.pushFrame(&mod.Funcs[0], 0)
	in.cur = fr
	ret, err := in.execFrom(fr, mod.Funcs[0].FirstStmt)
	in.popFrame(fr)
	if err != nil {
		t.Fatalf("execFrom: %v", err)
	}
	if ret.Kind != ResIntConst || ret.IntVal != 15 {
		t.Fatalf("got %+v, want int 15 (1+2+3+4+5)", ret)
	}
}

func TestIfBranchesOnComparison(t *testing.T) {
	postfix := []PostfixSlot{
		{Elems: []Elem{{Kind: ElemIntConst, IVal: 3}}},
		{Elems: []Elem{{Kind: ElemIntConst, IVal: 5}}},
		{Elems: []Elem{{Kind: ElemIntConst, IVal: 1}}},
		{Elems: []Elem{{Kind: ElemIntConst, IVal: 0}}},
	}
	stmts := []Statement{
		{Type: StmtIf, CmpOp: CmpLt, LHSSlot: 0, RHSSlot: 1, FalseIdx: 3},
		{Type: StmtReturn, HasValue: true, ValueSlot: 2},
		{Type: StmtEndIf, Next: 4},
		{Type: StmtReturn, HasValue: true, ValueSlot: 3},
	}
	fn := FuncDef{FirstStmt: 0, Ret: RetInt}
	mod := &Module{Stmts: stmts, Postfix: postfix, Funcs: []FuncDef{fn}, MainFunc: 0}
	in := NewInterp(mod)
	fr := in.pushFrame(&mod.Funcs[0], 0)
	in.cur = fr
	ret, err := in.execFrom(fr, 0)
	in.popFrame(fr)
	if err != nil {
		t.Fatalf("execFrom: %v", err)
	}
	if ret.IntVal != 1 {
		t.Fatalf("3 < 5 should take the true branch returning 1, got %+v", ret)
	}
}

func TestInterruptionStopsExecution(t *testing.T) {
	// An infinite Loop/EndLoop with no Break; interrupting mid-flight must
	// surface errInterrupted rather than hang.
	stmts := []Statement{
		{Type: StmtLoop, Next: 1},
		{Type: StmtEndLoop, Next: 0},
	}
	fn := FuncDef{FirstStmt: 0, Ret: RetVoid}
	mod := &Module{Stmts: stmts, Funcs: []FuncDef{fn}, MainFunc: 0}
	in := NewInterp(mod)
	fr := in.pushFrame(&mod.Funcs[0], 0)
	in.cur = fr
	in.interrupted = true
	_, err := in.execFrom(fr, 0)
	in.popFrame(fr)
	if !isInterrupted(err) {
		t.Fatalf("expected errInterrupted, got %v", err)
	}
}

// T1: a statement-position call whose string result is never assigned
// anywhere must still leave no temp slot marked active.
func TestDiscardedCallResultDeactivatesTempSlot(t *testing.T) {
	fip := &FIPRecord{FuncIdx: IStrToUpper, Argv: []int{1}}
	postfix := []PostfixSlot{
		{Elems: []Elem{{Kind: ElemExternCall, IVal: 0}}},
		{Elems: []Elem{{Kind: ElemStrConst, IVal: 0}}},
	}
	stmts := []Statement{
		{Type: StmtInternFunction, ExprSlot: 0, HasAssign: false, Next: 1},
		{Type: StmtReturn, HasValue: false},
	}
	fn := FuncDef{FirstStmt: 0, Ret: RetVoid}
	mod := &Module{Stmts: stmts, Postfix: postfix, FIPs: []*FIPRecord{fip}, Funcs: []FuncDef{fn}, MainFunc: 0,
		StringConsts: []string{"hi"}}
	in := NewInterp(mod)
	fr := in.pushFrame(&mod.Funcs[0], 0)
	in.cur = fr
	_, err := in.execFrom(fr, 0)
	in.popFrame(fr)
	if err != nil {
		t.Fatalf("execFrom: %v", err)
	}
	if active := in.arena.temp.allActive(); len(active) != 0 {
		t.Fatalf("expected no active temp slots after a discarded call result, got %v", active)
	}
}
