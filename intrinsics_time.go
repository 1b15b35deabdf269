package main

import "time"

// Time/alarm intrinsic family (§4.6, §4.7, required). now_ms reads the
// real wall clock; the alarm scheduler keeps its own clock (alarm.go),
// which main.go wires to the same wall-clock source and tests set directly,
// without touching these bindings.

func init() {
	registerIntrinsic(ITimeNowMs, "time_now_ms", RetInt, 0, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		in.setReturnInt(fip, int32(time.Now().UnixMilli()))
		return nil
	})

	// alarm_set(period_ms[, func_idx]) arms a new slot and returns its index
	// (§4.6 "set"). The callback argument is optional; when omitted the
	// slot only latches for alarm_check to observe.
	registerIntrinsic(IAlarmSet, "alarm_set", RetInt, 1, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		period, err := in.argInt(fr, fip, 0)
		if err != nil {
			return err
		}
		funcIdx := noCallback
		if len(fip.Argv) > 1 {
			fi, err := in.argInt(fr, fip, 1)
			if err != nil {
				return err
			}
			funcIdx = int(fi)
		}
		slot, err := in.alarms.Set(int64(period), funcIdx)
		if err != nil {
			return err
		}
		in.setReturnInt(fip, int32(slot))
		return nil
	})

	// alarm_check(slot) reports non-zero if the period has elapsed since the
	// slot was armed or last checked, resetting the latch (§4.6 "check").
	registerIntrinsic(IAlarmCheck, "alarm_check", RetInt, 1, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		slot, err := in.argInt(fr, fip, 0)
		if err != nil {
			return err
		}
		fired, err := in.alarms.Check(int(slot))
		if err != nil {
			return err
		}
		if fired {
			in.setReturnInt(fip, 1)
		} else {
			in.setReturnInt(fip, 0)
		}
		return nil
	})

	registerIntrinsic(IAlarmCancel, "alarm_cancel", RetVoid, 1, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		slot, err := in.argInt(fr, fip, 0)
		if err != nil {
			return err
		}
		return in.alarms.Cancel(int(slot))
	})
}
