package main

// Intrinsic dispatch table (C7, §4.7). Every intrinsic is a native Go
// function reached through the same FIP calling convention a script-to-
// script call uses: arguments are postfix slot indices evaluated against
// the caller's frame, and the result (if any) is written back into
// fip.Ret. Grounded on backend_vm.go's syscall table, which dispatches a
// numeric id to a Go closure the same way.

type intrinsicFn func(in *Interp, fr *Frame, fip *FIPRecord) error

type intrinsicDef struct {
	name string
	ret  ReturnKind
	argc int
	fn   intrinsicFn
}

// Required intrinsic ids (console, string, time/alarm, bit, file) are
// stable; FIP records in the IR name an intrinsic by this numeric index
// directly, and the loader performs no name lookup.
const (
	IConsolePrintInt = iota
	IConsolePrintStr
	IConsolePrintByte
	IConsoleReadLine
	IConsoleReadInt

	IStrLen
	IStrSub
	IStrIndexOf
	IStrToUpper
	IStrToLower
	IStrParseInt
	IStrCompare

	ITimeNowMs
	IAlarmSet
	IAlarmCheck
	IAlarmCancel

	IBitCount
	IBitTest
	IBitSet
	IBitClear

	IFileOpen
	IFileClose
	IFileReadLine
	IFileWriteStr
	IFileEOF

	IHwGpioRead
	IHwGpioWrite
	IHwAdcRead

	intrinsicCount
)

// intrinsicTable is populated by each family file's init(), indexed by the
// constants above. A nil fn marks an optional hardware-binding family left
// unimplemented on this host — calling it is a class-2 fault (§4.7
// "Optional families").
var intrinsicTable [intrinsicCount]intrinsicDef

func registerIntrinsic(id int, name string, ret ReturnKind, argc int, fn intrinsicFn) {
	intrinsicTable[id] = intrinsicDef{name: name, ret: ret, argc: argc, fn: fn}
}

// callIntrinsic resolves and invokes fip's native function against fr
// (§4.7).
func (in *Interp) callIntrinsic(fr *Frame, fip *FIPRecord) error {
	if fip.FuncIdx < 0 || fip.FuncIdx >= intrinsicCount {
		return newFault(faultUnknownStatement, "unknown intrinsic index %d", fip.FuncIdx)
	}
	def := intrinsicTable[fip.FuncIdx]
	if def.fn == nil {
		return newFault(faultUnknownStatement, "intrinsic %q is not available on this host", def.name)
	}
	if len(fip.Argv) < def.argc {
		return newFault(faultArgcMismatch, "intrinsic %q called with %d arguments, want %d", def.name, len(fip.Argv), def.argc)
	}
	return def.fn(in, fr, fip)
}

// argInt evaluates the i'th call argument and coerces it to int32 (§4.7
// get_argument_int).
func (in *Interp) argInt(fr *Frame, fip *FIPRecord, i int) (int32, error) {
	r, err := in.evalPostfix(fr, fip.Argv[i])
	if err != nil {
		return 0, err
	}
	return in.intValue(fr, r)
}

// argString evaluates the i'th call argument and materializes it as bytes
// (§4.7 get_argument_string).
func (in *Interp) argString(fr *Frame, fip *FIPRecord, i int) ([]byte, error) {
	r, err := in.evalPostfix(fr, fip.Argv[i])
	if err != nil {
		return nil, err
	}
	return in.stringBytes(fr, r)
}

// argBytePtr evaluates the i'th call argument as a whole byte-array buffer
// reference (§4.7 get_argument_byte_ptr).
func (in *Interp) argBytePtr(fr *Frame, fip *FIPRecord, i int) ([]byte, error) {
	r, err := in.evalPostfix(fr, fip.Argv[i])
	if err != nil {
		return nil, err
	}
	return in.byteArrayPtr(fr, r)
}

// setReturnInt / setReturnString write an intrinsic's result back through
// the shared FIP record (§4.7 "Return value handoff").
func (in *Interp) setReturnInt(fip *FIPRecord, v int32) { fip.Ret = v }

func (in *Interp) setReturnString(fip *FIPRecord, b []byte) {
	fip.Ret = int32(in.arena.temp.newTempStringSlot(b))
}
