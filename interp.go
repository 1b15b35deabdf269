package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Interp is the whole running machine: the loaded module, the string arena,
// global storage, the three shared scalar bump stacks, the alarm scheduler,
// and the I/O and diagnostic surface intrinsics write through. Grounded on
// backend_vm.go's VM struct, which bundles its register file, memory, and
// syscall table the same way.
type Interp struct {
	mod     *Module
	arena   *stringArena
	globals Globals

	intStack    []int32
	intUsed     int
	byteStack   []byte
	byteUsed    int
	stringStack []int
	stringUsed  int

	cur *Frame

	alarms      *alarmScheduler
	interrupted bool

	files *fileTable

	stdin         io.Reader
	stdout        io.Writer
	stderr        io.Writer
	consoleReader *bufio.Reader

	trace     bool
	stepCount int64
	callCount int64
	callDepth int
}

// NewInterp constructs a machine over a loaded module, with default
// (real) I/O streams. Tests substitute stdin/stdout/stderr directly.
func NewInterp(mod *Module) *Interp {
	in := &Interp{
		mod:    mod,
		arena:  newStringArena(),
		files:  newFileTable(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	in.alarms = newAlarmScheduler(in)
	in.globals = cloneGlobalsLayout(mod)
	in.bindStringConsts()
	return in
}

// cloneGlobalsLayout allocates fresh backing storage for every global
// table described by the module, sized from the declarations the loader
// produced (§4.2 "global section").
func cloneGlobalsLayout(mod *Module) Globals {
	g := Globals{
		Ints:    make([]int32, len(mod.Globals.Ints)),
		Bytes:   make([]byte, len(mod.Globals.Bytes)),
		Strings: make([]int, len(mod.Globals.Strings)),

		IntArrays:    make([]IntArray, len(mod.Globals.IntArrays)),
		ByteArrays:   make([]ByteArray, len(mod.Globals.ByteArrays)),
		StringArrays: make([]StringArray, len(mod.Globals.StringArrays)),
	}
	for i, a := range mod.Globals.IntArrays {
		g.IntArrays[i] = IntArray{Values: make([]int32, len(a.Values))}
	}
	for i, a := range mod.Globals.ByteArrays {
		g.ByteArrays[i] = ByteArray{Values: make([]byte, len(a.Values))}
	}
	for i, a := range mod.Globals.StringArrays {
		g.StringArrays[i] = StringArray{Slots: make([]int, len(a.Slots))}
	}
	return g
}

// bindStringConsts interns every string literal the loader collected into
// the named pool once, up front, so every ResStringConstRef's Slot is
// stable for the life of the run (§4.1, §4.2).
func (in *Interp) bindStringConsts() {
	for i, sv := range in.mod.StringConsts {
		slot := in.arena.named.newStringSlot([]byte(sv))
		if slot != i {
			// The loader is expected to have reserved constants first, in
			// order, before any frame is pushed, so const i always lands in
			// named-pool slot i. A mismatch here means that invariant broke.
			panic("string constant pool slot drifted from declaration order")
		}
	}
}

// run executes the program's entry function with argv bound as its string
// parameters (§4.6 "Program entry"), returning the process exit code.
func (in *Interp) run(argv []string) int {
	fn := &in.mod.Funcs[in.mod.MainFunc]
	fr := in.pushFrame(fn, in.mod.MainFunc)
	in.bindMainArgs(fr, fn, argv)
	prevCur := in.cur
	in.cur = fr
	defer func() {
		in.popFrame(fr)
		in.cur = prevCur
		in.alarms.ResetAll()
	}()

	_, err := in.execFrom(fr, fn.FirstStmt)
	if err != nil {
		if isInterrupted(err) {
			fmt.Fprintln(in.stderr, errInterrupted.Error())
			return 1
		}
		fmt.Fprintln(in.stderr, "nic:", err.Error())
		return 1
	}
	return 0
}

// bindMainArgs binds command-line arguments to main's declared string
// parameters positionally, left over arguments are ignored and missing ones
// are bound empty (§4.6).
func (in *Interp) bindMainArgs(fr *Frame, fn *FuncDef, argv []string) {
	si := 0
	for _, a := range fn.Args {
		if a.Kind != KindString {
			continue
		}
		var text []byte
		if si < len(argv) {
			text = []byte(argv[si])
		}
		in.arena.named.copyStr(fr.localStringSlot(a.LocalIndex), text)
		si++
	}
}

// callScriptFunction invokes a nested NIC function via its FIP record,
// binding each declared argument from the evaluated postfix slot at the
// matching position (§4.5 "Call sequence", §4.7).
func (in *Interp) callScriptFunction(callerFr *Frame, fip *FIPRecord) error {
	in.callCount++
	in.callDepth++
	defer func() { in.callDepth-- }()

	fn := &in.mod.Funcs[fip.FuncIdx]
	if len(fn.Args) != len(fip.Argv) {
		return newFault(faultArgcMismatch, "function %d called with %d arguments, want %d", fip.FuncIdx, len(fip.Argv), len(fn.Args))
	}
	fr := in.pushFrame(fn, fip.FuncIdx)
	defer in.popFrame(fr)

	for i, a := range fn.Args {
		res, err := in.evalPostfix(callerFr, fip.Argv[i])
		if err != nil {
			return err
		}
		switch a.Kind {
		case KindInt:
			v, err := in.intValue(callerFr, res)
			if err != nil {
				return err
			}
			fr.setLocalInt(a.LocalIndex, v)
		case KindByte:
			v, err := in.intValue(callerFr, res)
			if err != nil {
				return err
			}
			fr.setLocalByte(a.LocalIndex, byte(v))
		case KindString:
			b, err := in.stringBytes(callerFr, res)
			if err != nil {
				return err
			}
			in.arena.named.copyStr(fr.localStringSlot(a.LocalIndex), b)
		}
	}

	prevCur := in.cur
	in.cur = fr
	ret, err := in.execFrom(fr, fn.FirstStmt)
	in.cur = prevCur
	if err != nil {
		return err
	}

	switch fn.Ret {
	case RetString:
		// fip.Ret must outlive fr's popFrame below, so the returned value is
		// always landed in a temp slot — copying if it wasn't one already
		// (§4.7 "Return value handoff").
		if ret.Kind == ResTempStringRef {
			fip.Ret = int32(ret.Slot)
		} else {
			b, err := in.stringBytes(fr, ret)
			if err != nil {
				return err
			}
			fip.Ret = int32(in.arena.temp.newTempStringSlot(b))
		}
	case RetInt, RetByte:
		v, err := in.intValue(fr, ret)
		if err != nil {
			return err
		}
		fip.Ret = v
	default:
		fip.Ret = 0
	}
	return nil
}
