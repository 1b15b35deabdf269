package main

import (
	"bufio"
	"os"
)

// File I/O intrinsic family (§4.7, required). fileTable maps script-level
// small integer handles to open *os.File plus a buffered reader for
// line-oriented reads, the same indirection backend_vm.go uses for its fd
// table rather than exposing raw OS file descriptors to script code.

type openFile struct {
	f  *os.File
	r  *bufio.Reader
	w  *bufio.Writer
}

type fileTable struct {
	files []*openFile // nil entries are free slots
}

func newFileTable() *fileTable { return &fileTable{} }

func (t *fileTable) open(path string, mode int32) (int, error) {
	var flags int
	switch mode {
	case 0: // read
		flags = os.O_RDONLY
	case 1: // write (truncate)
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case 2: // append
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return -1, newFault(faultUnknownElement, "unknown file mode %d", mode)
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return -1, newFault(faultUnknownElement, "file_open %q: %v", path, err)
	}
	of := &openFile{f: f}
	if mode == 0 {
		of.r = bufio.NewReader(f)
	} else {
		of.w = bufio.NewWriter(f)
	}
	for i, slot := range t.files {
		if slot == nil {
			t.files[i] = of
			return i, nil
		}
	}
	t.files = append(t.files, of)
	return len(t.files) - 1, nil
}

func (t *fileTable) get(handle int) (*openFile, error) {
	if handle < 0 || handle >= len(t.files) || t.files[handle] == nil {
		return nil, newFault(faultUnknownElement, "invalid file handle %d", handle)
	}
	return t.files[handle], nil
}

func (t *fileTable) close(handle int) error {
	of, err := t.get(handle)
	if err != nil {
		return err
	}
	if of.w != nil {
		of.w.Flush()
	}
	of.f.Close()
	t.files[handle] = nil
	return nil
}

func init() {
	registerIntrinsic(IFileOpen, "file_open", RetInt, 2, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		path, err := in.argString(fr, fip, 0)
		if err != nil {
			return err
		}
		mode, err := in.argInt(fr, fip, 1)
		if err != nil {
			return err
		}
		h, err := in.files.open(string(path), mode)
		if err != nil {
			in.warnf("%v", err)
			in.setReturnInt(fip, -1)
			return nil
		}
		in.setReturnInt(fip, int32(h))
		return nil
	})

	registerIntrinsic(IFileClose, "file_close", RetVoid, 1, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		h, err := in.argInt(fr, fip, 0)
		if err != nil {
			return err
		}
		return in.files.close(int(h))
	})

	registerIntrinsic(IFileReadLine, "file_read_line", RetString, 1, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		h, err := in.argInt(fr, fip, 0)
		if err != nil {
			return err
		}
		of, err := in.files.get(int(h))
		if err != nil {
			return err
		}
		if of.r == nil {
			in.warnf("file_read_line: handle %d is not open for reading", h)
			in.setReturnString(fip, nil)
			return nil
		}
		line, _ := of.r.ReadString('\n')
		for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
			line = line[:len(line)-1]
		}
		in.setReturnString(fip, []byte(line))
		return nil
	})

	registerIntrinsic(IFileWriteStr, "file_write_str", RetVoid, 2, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		h, err := in.argInt(fr, fip, 0)
		if err != nil {
			return err
		}
		b, err := in.argString(fr, fip, 1)
		if err != nil {
			return err
		}
		of, err := in.files.get(int(h))
		if err != nil {
			return err
		}
		if of.w == nil {
			in.warnf("file_write_str: handle %d is not open for writing", h)
			return nil
		}
		_, werr := of.w.Write(b)
		return werr
	})

	registerIntrinsic(IFileEOF, "file_eof", RetInt, 1, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		h, err := in.argInt(fr, fip, 0)
		if err != nil {
			return err
		}
		of, err := in.files.get(int(h))
		if err != nil {
			return err
		}
		if of.r == nil {
			in.setReturnInt(fip, 1)
			return nil
		}
		_, peekErr := of.r.Peek(1)
		if peekErr != nil {
			in.setReturnInt(fip, 1)
		} else {
			in.setReturnInt(fip, 0)
		}
		return nil
	})
}
