package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"
)

// CLI entry point. Grounded on the teacher's main.go: a manual os.Args
// scan (no flag library anywhere in the pack), usage text printed to
// stderr on misuse, fmt.Fprintf diagnostics throughout.

var verbose bool

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s [-v] <ir-file> [script-arg ...]\n", os.Args[0])
		os.Exit(1)
	}

	var irPath string
	var scriptArgs []string
	i := 1
	for i < len(os.Args) {
		switch {
		case os.Args[i] == "-v":
			verbose = true
			i++
		case irPath == "":
			irPath = os.Args[i]
			i++
		default:
			scriptArgs = append(scriptArgs, os.Args[i])
			i++
		}
	}
	if irPath == "" {
		fmt.Fprintf(os.Stderr, "usage: %s [-v] <ir-file> [script-arg ...]\n", os.Args[0])
		os.Exit(1)
	}

	f, err := os.Open(irPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nic: %v\n", err)
		os.Exit(1)
	}
	mod, err := LoadModule(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "nic: %v\n", err)
		os.Exit(1)
	}

	in := NewInterp(mod)
	in.trace = verbose
	in.alarms.now = func() int64 { return time.Now().UnixMilli() }

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	go func() {
		<-sigc
		in.interrupted = true
	}()

	code := in.run(scriptArgs)

	if verbose {
		fmt.Fprintf(os.Stderr, "nic: %d statements executed, %d calls, %d string pool slots (%d temp)\n",
			in.stepCount, in.callCount, in.arena.named.used, len(in.arena.temp.slots))
	}
	os.Exit(code)
}
