package main

// Alarm scheduler (C6, §4.6 "Cooperative timers"). A small table of slots,
// each either idle or armed with a period and, optionally, a callback
// function index. Slots are polled once between every statement (never
// preemptively); a due slot with a callback invokes it by re-entering the
// executor on the current frame, exactly like any other nested call. A
// slot with no callback simply latches — it just remembers that its
// period elapsed until the script polls it with Check, per §4.6's "the
// slot simply 'latches' until the script polls check" rule. Grounded on
// the teacher's poll-driven scheduling in backend_vm.go's main fetch loop,
// which checks pending work between instructions rather than through any
// OS-level interrupt.

const maxAlarmSlots = 16

// noCallback marks an alarm slot with no associated function — it only
// latches for Check to observe.
const noCallback = -1

type alarmSlot struct {
	armed    bool
	periodMs int64
	nextFire int64
	funcIdx  int
	latched  bool
}

// alarmScheduler owns the alarm table and a monotonic clock. When now is
// set (main wires it to the wall clock in milliseconds) it supplies the
// time; when it is nil the clock field is used, which tests set directly
// to drive the scheduler deterministically.
type alarmScheduler struct {
	in    *Interp
	slots []alarmSlot
	now   func() int64
	clock int64
}

func newAlarmScheduler(in *Interp) *alarmScheduler {
	return &alarmScheduler{in: in}
}

func (a *alarmScheduler) nowMs() int64 {
	if a.now != nil {
		return a.now()
	}
	return a.clock
}

// Set arms a new alarm for periodMs milliseconds and returns the slot
// index it was given (§4.6 "set(period[, func]) → returns slot"). funcIdx
// of noCallback means no callback is invoked when the period elapses; the
// slot only latches for a later Check. A disarmed slot is reused before
// the table grows.
func (a *alarmScheduler) Set(periodMs int64, funcIdx int) (int, error) {
	if periodMs <= 0 {
		return 0, newFault(faultUnknownElement, "alarm period must be positive, got %d", periodMs)
	}
	slot := alarmSlot{
		armed:    true,
		periodMs: periodMs,
		nextFire: a.nowMs() + periodMs,
		funcIdx:  funcIdx,
	}
	for i := range a.slots {
		if !a.slots[i].armed {
			a.slots[i] = slot
			return i, nil
		}
	}
	if len(a.slots) >= maxAlarmSlots {
		return 0, newFault(faultIndexOutOfRange, "no free alarm slots (max %d)", maxAlarmSlots)
	}
	a.slots = append(a.slots, slot)
	return len(a.slots) - 1, nil
}

// Cancel disarms a slot without firing it (§4.6 "cancel_alarm"), freeing
// it for reuse by a later Set.
func (a *alarmScheduler) Cancel(slot int) error {
	if slot < 0 || slot >= len(a.slots) {
		return newFault(faultIndexOutOfRange, "alarm slot %d out of range [0,%d)", slot, len(a.slots))
	}
	a.slots[slot] = alarmSlot{}
	return nil
}

// Check reports whether slot has elapsed at least once since it was armed
// or last checked, resetting its latch (§4.6 "check(slot) → non-zero if
// period elapsed, and resets the start").
func (a *alarmScheduler) Check(slot int) (bool, error) {
	if slot < 0 || slot >= len(a.slots) || !a.slots[slot].armed {
		return false, newFault(faultIndexOutOfRange, "invalid alarm slot %d", slot)
	}
	s := &a.slots[slot]
	fired := s.latched
	s.latched = false
	return fired, nil
}

// ResetAll disarms every slot (used when a script's main function exits).
func (a *alarmScheduler) ResetAll() {
	a.slots = nil
}

// poll advances every armed slot against the current clock. A slot that has
// crossed one or more period boundaries since the last poll is latched and,
// if a callback is registered, the callback is invoked once (through the
// same FIP-call path a direct script call would use), however many
// boundaries were crossed (§4.6, §5 "polled between every statement"). A callback
// takes no arguments and returns no value; its FIP record is synthesized
// with an empty Argv.
func (a *alarmScheduler) poll() error {
	now := a.nowMs()
	for i := range a.slots {
		s := &a.slots[i]
		if !s.armed {
			continue
		}
		fired := false
		for now >= s.nextFire {
			s.nextFire += s.periodMs
			fired = true
		}
		if !fired {
			continue
		}
		s.latched = true
		if s.funcIdx == noCallback {
			continue
		}
		fip := &FIPRecord{FuncIdx: s.funcIdx}
		if err := a.in.callScriptFunction(a.in.cur, fip); err != nil {
			return err
		}
	}
	return nil
}
