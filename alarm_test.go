package main

import "testing"

// buildNoOpFunc builds a trivial void function with no statements beyond
// an immediate return, suitable as an alarm callback target.
func buildNoOpFunc() *Module {
	stmts := []Statement{{Type: StmtReturn, HasValue: false}}
	fn := FuncDef{FirstStmt: 0, Ret: RetVoid}
	return &Module{Stmts: stmts, Funcs: []FuncDef{fn}, MainFunc: 0}
}

func TestAlarmWithCallbackFiresRepeatedly(t *testing.T) {
	mod := buildNoOpFunc()
	in := NewInterp(mod)
	fr := in.pushFrame(&mod.Funcs[0], 0)
	in.cur = fr
	defer in.popFrame(fr)

	slot, err := in.alarms.Set(10, 0)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	in.alarms.clock = 10
	if err := in.alarms.poll(); err != nil {
		t.Fatalf("poll: %v", err)
	}
	in.alarms.clock = 20
	if err := in.alarms.poll(); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if in.callCount != 2 {
		t.Fatalf("repeating alarm should have fired twice, got %d", in.callCount)
	}

	if err := in.alarms.Cancel(slot); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	in.alarms.clock = 30
	in.alarms.poll()
	if in.callCount != 2 {
		t.Fatalf("cancelled alarm should not fire again, got %d", in.callCount)
	}
}

// S6: an alarm armed with no callback latches its elapsed state until the
// script polls it with Check, which must also reset the latch.
func TestAlarmWithoutCallbackLatchesUntilChecked(t *testing.T) {
	mod := buildNoOpFunc()
	in := NewInterp(mod)
	fr := in.pushFrame(&mod.Funcs[0], 0)
	in.cur = fr
	defer in.popFrame(fr)

	slot, err := in.alarms.Set(100, noCallback)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if in.callCount != 0 {
		t.Fatalf("a callback-less alarm must never invoke a script function")
	}

	if fired, err := in.alarms.Check(slot); err != nil || fired {
		t.Fatalf("Check before elapsing: fired=%v err=%v, want false/nil", fired, err)
	}

	in.alarms.clock = 150
	if err := in.alarms.poll(); err != nil {
		t.Fatalf("poll: %v", err)
	}
	if in.callCount != 0 {
		t.Fatalf("a callback-less alarm must never invoke a script function, got callCount=%d", in.callCount)
	}

	fired, err := in.alarms.Check(slot)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !fired {
		t.Fatalf("Check should report the elapsed period")
	}
	fired, err = in.alarms.Check(slot)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if fired {
		t.Fatalf("Check should have reset the latch on the prior call")
	}
}

func TestAlarmSetReusesCancelledSlot(t *testing.T) {
	in := NewInterp(buildNoOpFunc())
	a, err := in.alarms.Set(10, noCallback)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := in.alarms.Cancel(a); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	b, err := in.alarms.Set(10, noCallback)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if b != a {
		t.Fatalf("Set should have reused the cancelled slot %d, got %d", a, b)
	}
}

func TestAlarmSetRejectsNonPositivePeriod(t *testing.T) {
	in := NewInterp(buildNoOpFunc())
	if _, err := in.alarms.Set(0, noCallback); err == nil {
		t.Fatalf("expected a fault for a non-positive period")
	}
}

func TestAlarmCheckRejectsInvalidSlot(t *testing.T) {
	in := NewInterp(buildNoOpFunc())
	if _, err := in.alarms.Check(0); err == nil {
		t.Fatalf("expected a fault for an unarmed slot")
	}
}
