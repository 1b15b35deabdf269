package main

import (
	"bufio"
	"fmt"
	"strconv"
)

// Console intrinsic family (§4.7, required). Grounded on the teacher's
// direct os.Stdout/os.Stderr writes in main.go — no framework, just fmt.

func (in *Interp) consoleIn() *bufio.Reader {
	if in.consoleReader == nil {
		in.consoleReader = bufio.NewReader(in.stdin)
	}
	return in.consoleReader
}

func init() {
	registerIntrinsic(IConsolePrintInt, "console_print_int", RetVoid, 1, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		v, err := in.argInt(fr, fip, 0)
		if err != nil {
			return err
		}
		fmt.Fprint(in.stdout, v)
		return nil
	})

	registerIntrinsic(IConsolePrintStr, "console_print_str", RetVoid, 1, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		b, err := in.argString(fr, fip, 0)
		if err != nil {
			return err
		}
		in.stdout.Write(b)
		return nil
	})

	registerIntrinsic(IConsolePrintByte, "console_print_byte", RetVoid, 1, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		v, err := in.argInt(fr, fip, 0)
		if err != nil {
			return err
		}
		in.stdout.Write([]byte{byte(v)})
		return nil
	})

	registerIntrinsic(IConsoleReadLine, "console_read_line", RetString, 0, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		line, _ := in.consoleIn().ReadString('\n')
		for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
			line = line[:len(line)-1]
		}
		in.setReturnString(fip, []byte(line))
		return nil
	})

	registerIntrinsic(IConsoleReadInt, "console_read_int", RetInt, 0, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		line, _ := in.consoleIn().ReadString('\n')
		for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
			line = line[:len(line)-1]
		}
		v, err := strconv.ParseInt(line, 10, 32)
		if err != nil {
			v = 0
		}
		in.setReturnInt(fip, int32(v))
		return nil
	})
}
