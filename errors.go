package main

import "fmt"

// IRParseError reports a malformed IR file (§4.2, error class 1). Loading
// aborts on the first one; nothing is persisted.
type IRParseError struct {
	Line  int
	Token string
	Msg   string
}

func (e *IRParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("ir parse error at line %d (token %q): %s", e.Line, e.Token, e.Msg)
	}
	return fmt.Sprintf("ir parse error at line %d: %s", e.Line, e.Msg)
}

// faultKind enumerates the fatal runtime conditions of §7 error class 2,
// plus the cooperative interruption of class 4.
type faultKind int

const (
	faultIndexOutOfRange faultKind = iota
	faultUnknownStatement
	faultUnknownElement
	faultArgcMismatch
	faultInterrupted
)

// execFault is a fatal runtime error or interruption. It unwinds every
// activation frame on the way out (§5: "frames are released on every
// return path"), never a Go panic, matching the teacher's vm.exited flag
// propagation in backend_vm.go rather than panic/recover.
type execFault struct {
	kind faultKind
	msg  string
}

func (e *execFault) Error() string { return e.msg }

func newFault(kind faultKind, format string, args ...any) *execFault {
	return &execFault{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// errInterrupted is the sentinel returned when the cooperative interruption
// flag is observed between statements (§5, §7 class 4).
var errInterrupted = &execFault{kind: faultInterrupted, msg: "Interrupted"}

func isInterrupted(err error) bool {
	f, ok := err.(*execFault)
	return ok && f.kind == faultInterrupted
}

// warnf logs a class-3 runtime warning (soft invariant violation) to
// stderr and continues, matching the teacher's direct fmt.Fprintf-to-
// stderr diagnostics (no logging library appears anywhere in the pack).
func (in *Interp) warnf(format string, args ...any) {
	fmt.Fprintf(in.stderr, "nic: warning: "+format+"\n", args...)
}
