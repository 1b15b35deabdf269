package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Textual IR loader (C2, §4.2). The format is seven '#'-prefixed sections —
// strings, globals, functions, postfix slots, call-site (FIP) records,
// statements, and the main function index — each a header line followed by one record per line, fields
// space-separated. Grounded on the teacher's own line-oriented IR reader in
// frontend.go, which drives a single forward-only scanner the same way
// rather than building a full recursive-descent parser for something this
// regular.
//
// This is the implementer's own concrete tokenization of spec.md §4.2/§6,
// which names the sections and fields a loader must recognize without
// pinning an exact wire syntax; the scheme below is the one consistent
// choice this rewrite makes and sticks to end to end.

type irLoader struct {
	sc      *bufio.Scanner
	line    int
	mod     *Module
	pending *string // one line of lookahead, pushed back by unread
}

// LoadModule parses IR text into a Module, or returns an *IRParseError on
// the first malformed record (§7 error class 1: abort, nothing persisted).
func LoadModule(r io.Reader) (*Module, error) {
	ld := &irLoader{sc: bufio.NewScanner(r), mod: &Module{}}
	ld.sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	for {
		header, ok, err := ld.nextNonBlank()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch {
		case header == "#STRINGS":
			if err := ld.loadStrings(); err != nil {
				return nil, err
			}
		case header == "#GLOBALS":
			if err := ld.loadGlobals(); err != nil {
				return nil, err
			}
		case header == "#FUNCS":
			if err := ld.loadFuncs(); err != nil {
				return nil, err
			}
		case header == "#POSTFIX":
			if err := ld.loadPostfix(); err != nil {
				return nil, err
			}
		case header == "#FIPS":
			if err := ld.loadFIPs(); err != nil {
				return nil, err
			}
		case header == "#STMTS":
			if err := ld.loadStmts(); err != nil {
				return nil, err
			}
		case header == "#MAIN":
			idx, err := ld.readIntLine()
			if err != nil {
				return nil, err
			}
			ld.mod.MainFunc = idx
		default:
			return nil, &IRParseError{Line: ld.line, Token: header, Msg: "unrecognized section header"}
		}
	}

	if ld.mod.MainFunc < 0 || ld.mod.MainFunc >= len(ld.mod.Funcs) {
		return nil, &IRParseError{Line: ld.line, Msg: "main function index out of range"}
	}
	return ld.mod, nil
}

func (ld *irLoader) nextLine() (string, bool) {
	if ld.pending != nil {
		line := *ld.pending
		ld.pending = nil
		return line, true
	}
	for ld.sc.Scan() {
		ld.line++
		line := strings.TrimSpace(ld.sc.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		return line, true
	}
	return "", false
}

func (ld *irLoader) nextNonBlank() (string, bool, error) {
	line, ok := ld.nextLine()
	if !ok {
		return "", false, nil
	}
	return line, true, nil
}

func (ld *irLoader) readIntLine() (int, error) {
	line, ok := ld.nextLine()
	if !ok {
		return 0, &IRParseError{Line: ld.line, Msg: "expected a count line, got EOF"}
	}
	v, err := strconv.Atoi(line)
	if err != nil {
		return 0, &IRParseError{Line: ld.line, Token: line, Msg: "expected integer"}
	}
	return v, nil
}

// fieldCursor parses one line's space-separated fields left to right.
type fieldCursor struct {
	ld     *irLoader
	fields []string
	i      int
}

func (ld *irLoader) cursor(line string) *fieldCursor {
	return &fieldCursor{ld: ld, fields: strings.Fields(line)}
}

func (c *fieldCursor) next() (string, error) {
	if c.i >= len(c.fields) {
		return "", &IRParseError{Line: c.ld.line, Msg: "unexpected end of record, too few fields"}
	}
	tok := c.fields[c.i]
	c.i++
	return tok, nil
}

func (c *fieldCursor) int() (int, error) {
	tok, err := c.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &IRParseError{Line: c.ld.line, Token: tok, Msg: "expected integer"}
	}
	return v, nil
}

func (c *fieldCursor) byteVal() (byte, error) {
	tok, err := c.next()
	if err != nil {
		return 0, err
	}
	if len(tok) != 1 {
		return 0, &IRParseError{Line: c.ld.line, Token: tok, Msg: "expected single-character operator"}
	}
	return tok[0], nil
}

func (c *fieldCursor) varRef() (VarRef, error) {
	scope, err := c.int()
	if err != nil {
		return VarRef{}, err
	}
	kind, err := c.int()
	if err != nil {
		return VarRef{}, err
	}
	index, err := c.int()
	if err != nil {
		return VarRef{}, err
	}
	isArray, err := c.int()
	if err != nil {
		return VarRef{}, err
	}
	idxSlot, err := c.int()
	if err != nil {
		return VarRef{}, err
	}
	return VarRef{
		Scope:     VarScope(scope),
		Kind:      VarKind(kind),
		Index:     index,
		IsArray:   isArray != 0,
		IndexSlot: idxSlot,
	}, nil
}

func (ld *irLoader) errf(format string, args ...any) error {
	return &IRParseError{Line: ld.line, Msg: fmt.Sprintf(format, args...)}
}

// --- #STRINGS ---------------------------------------------------------

// loadStrings reads a count followed by that many quoted-string literal
// lines (backslash escapes: \n \t \\ \").
func (ld *irLoader) loadStrings() error {
	n, err := ld.readIntLine()
	if err != nil {
		return err
	}
	ld.mod.StringConsts = make([]string, n)
	for i := 0; i < n; i++ {
		line, ok := ld.nextLine()
		if !ok {
			return ld.errf("expected %d string literals, got %d", n, i)
		}
		s, err := unquoteIRString(line)
		if err != nil {
			return &IRParseError{Line: ld.line, Token: line, Msg: err.Error()}
		}
		ld.mod.StringConsts[i] = s
	}
	return nil
}

func unquoteIRString(tok string) (string, error) {
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return "", fmt.Errorf("string literal must be double-quoted")
	}
	inner := tok[1 : len(tok)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		if ch == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			default:
				b.WriteByte(inner[i])
			}
			continue
		}
		b.WriteByte(ch)
	}
	return b.String(), nil
}

// --- #GLOBALS -----------------------------------------------------------

// loadGlobals reads one line per global table: INT/BYTE/STR give a scalar
// count; *ARR lines give an array count followed by each array's size.
func (ld *irLoader) loadGlobals() error {
	for {
		line, ok := ld.nextLine()
		if !ok {
			return ld.errf("unterminated #GLOBALS section")
		}
		if strings.HasPrefix(line, "#") {
			ld.unread(line)
			return nil
		}
		c := ld.cursor(line)
		kind, err := c.next()
		if err != nil {
			return err
		}
		switch kind {
		case "INT":
			n, err := c.int()
			if err != nil {
				return err
			}
			ld.mod.Globals.Ints = make([]int32, n)
		case "BYTE":
			n, err := c.int()
			if err != nil {
				return err
			}
			ld.mod.Globals.Bytes = make([]byte, n)
		case "STR":
			n, err := c.int()
			if err != nil {
				return err
			}
			ld.mod.Globals.Strings = make([]int, n)
		case "INTARR":
			arrs, err := ld.readArraySizes(c)
			if err != nil {
				return err
			}
			ld.mod.Globals.IntArrays = make([]IntArray, len(arrs))
			for i, sz := range arrs {
				ld.mod.Globals.IntArrays[i] = IntArray{Values: make([]int32, sz)}
			}
		case "BYTEARR":
			arrs, err := ld.readArraySizes(c)
			if err != nil {
				return err
			}
			ld.mod.Globals.ByteArrays = make([]ByteArray, len(arrs))
			for i, sz := range arrs {
				ld.mod.Globals.ByteArrays[i] = ByteArray{Values: make([]byte, sz)}
			}
		case "STRARR":
			arrs, err := ld.readArraySizes(c)
			if err != nil {
				return err
			}
			ld.mod.Globals.StringArrays = make([]StringArray, len(arrs))
			for i, sz := range arrs {
				ld.mod.Globals.StringArrays[i] = StringArray{Slots: make([]int, sz)}
			}
		case "END":
			return nil
		default:
			return ld.errf("unknown global declaration kind %q", kind)
		}
	}
}

func (ld *irLoader) readArraySizes(c *fieldCursor) ([]int, error) {
	n, err := c.int()
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i := range out {
		sz, err := c.int()
		if err != nil {
			return nil, err
		}
		out[i] = sz
	}
	return out, nil
}

// unread lets a section reader peek one line past its own section and
// push it back for the dispatcher loop in LoadModule to see.
func (ld *irLoader) unread(line string) { ld.pending = &line }

// --- #FUNCS ---------------------------------------------------------------

func (ld *irLoader) loadFuncs() error {
	n, err := ld.readIntLine()
	if err != nil {
		return err
	}
	ld.mod.Funcs = make([]FuncDef, n)
	for i := 0; i < n; i++ {
		line, ok := ld.nextLine()
		if !ok {
			return ld.errf("expected FUNC record %d", i)
		}
		c := ld.cursor(line)
		tag, err := c.next()
		if err != nil || tag != "FUNC" {
			return ld.errf("expected FUNC record, got %q", line)
		}
		firstStmt, err := c.int()
		if err != nil {
			return err
		}
		retTok, err := c.next()
		if err != nil {
			return err
		}
		ret, err := parseReturnKind(retTok)
		if err != nil {
			return &IRParseError{Line: ld.line, Token: retTok, Msg: err.Error()}
		}
		argc, err := c.int()
		if err != nil {
			return err
		}
		fd := FuncDef{FirstStmt: firstStmt, Ret: ret, Args: make([]FuncArg, argc)}
		for a := 0; a < argc; a++ {
			kindTok, err := c.next()
			if err != nil {
				return err
			}
			kind, err := parseVarKind(kindTok)
			if err != nil {
				return &IRParseError{Line: ld.line, Token: kindTok, Msg: err.Error()}
			}
			idx, err := c.int()
			if err != nil {
				return err
			}
			fd.Args[a] = FuncArg{Kind: kind, LocalIndex: idx}
		}

		localsLine, ok := ld.nextLine()
		if !ok {
			return ld.errf("expected LOCALS record for function %d", i)
		}
		lc := ld.cursor(localsLine)
		if tag, _ := lc.next(); tag != "LOCALS" {
			return ld.errf("expected LOCALS record, got %q", localsLine)
		}
		if fd.LocalIntCount, err = lc.int(); err != nil {
			return err
		}
		if fd.LocalByteCount, err = lc.int(); err != nil {
			return err
		}
		if fd.LocalStringCount, err = lc.int(); err != nil {
			return err
		}

		for _, want := range []string{"LOCALINTARR", "LOCALBYTEARR", "LOCALSTRARR"} {
			line, ok := ld.nextLine()
			if !ok {
				return ld.errf("expected %s record for function %d", want, i)
			}
			lc := ld.cursor(line)
			tag, err := lc.next()
			if err != nil || tag != want {
				return ld.errf("expected %s record, got %q", want, line)
			}
			sizes, err := ld.readArraySizes(lc)
			if err != nil {
				return err
			}
			switch want {
			case "LOCALINTARR":
				fd.LocalIntArraySizes = sizes
			case "LOCALBYTEARR":
				fd.LocalByteArraySizes = sizes
			case "LOCALSTRARR":
				fd.LocalStringArraySizes = sizes
			}
		}

		ld.mod.Funcs[i] = fd
	}
	return nil
}

func parseReturnKind(tok string) (ReturnKind, error) {
	switch tok {
	case "void":
		return RetVoid, nil
	case "int":
		return RetInt, nil
	case "byte":
		return RetByte, nil
	case "string":
		return RetString, nil
	default:
		return 0, fmt.Errorf("unknown return kind %q", tok)
	}
}

func parseVarKind(tok string) (VarKind, error) {
	switch tok {
	case "i":
		return KindInt, nil
	case "b":
		return KindByte, nil
	case "s":
		return KindString, nil
	default:
		return 0, fmt.Errorf("unknown variable kind %q", tok)
	}
}

// --- #POSTFIX ---------------------------------------------------------

func (ld *irLoader) loadPostfix() error {
	n, err := ld.readIntLine()
	if err != nil {
		return err
	}
	ld.mod.Postfix = make([]PostfixSlot, n)
	for i := 0; i < n; i++ {
		line, ok := ld.nextLine()
		if !ok {
			return ld.errf("expected SLOT record %d", i)
		}
		c := ld.cursor(line)
		if tag, _ := c.next(); tag != "SLOT" {
			return ld.errf("expected SLOT record, got %q", line)
		}
		depth, err := c.int()
		if err != nil {
			return err
		}
		hint, err := c.int()
		if err != nil {
			return err
		}
		if depth > maxExprStack {
			return ld.errf("postfix slot %d depth %d exceeds maximum of %d", i, depth, maxExprStack)
		}
		slot := PostfixSlot{Depth: depth, Hint: Hint(hint), Elems: make([]Elem, depth)}
		for e := 0; e < depth; e++ {
			eLine, ok := ld.nextLine()
			if !ok {
				return ld.errf("expected element %d of postfix slot %d", e, i)
			}
			elem, err := ld.parseElem(eLine)
			if err != nil {
				return err
			}
			slot.Elems[e] = elem
		}
		ld.mod.Postfix[i] = slot
	}
	return nil
}

func (ld *irLoader) parseElem(line string) (Elem, error) {
	c := ld.cursor(line)
	tag, err := c.next()
	if err != nil {
		return Elem{}, err
	}
	switch tag {
	case "ic":
		v, err := c.int()
		return Elem{Kind: ElemIntConst, IVal: v}, err
	case "sc":
		v, err := c.int()
		return Elem{Kind: ElemStrConst, IVal: v}, err
	case "li":
		v, err := c.int()
		return Elem{Kind: ElemLocalInt, IVal: v}, err
	case "gi":
		v, err := c.int()
		return Elem{Kind: ElemGlobalInt, IVal: v}, err
	case "lb":
		v, err := c.int()
		return Elem{Kind: ElemLocalByte, IVal: v}, err
	case "gb":
		v, err := c.int()
		return Elem{Kind: ElemGlobalByte, IVal: v}, err
	case "ls":
		v, err := c.int()
		return Elem{Kind: ElemLocalString, IVal: v}, err
	case "gs":
		v, err := c.int()
		return Elem{Kind: ElemGlobalString, IVal: v}, err
	case "lia":
		idx, err := c.int()
		if err != nil {
			return Elem{}, err
		}
		inner, err := c.int()
		return Elem{Kind: ElemLocalIntArrayElem, IVal: idx, InnerSlot: inner}, err
	case "gia":
		idx, err := c.int()
		if err != nil {
			return Elem{}, err
		}
		inner, err := c.int()
		return Elem{Kind: ElemGlobalIntArrayElem, IVal: idx, InnerSlot: inner}, err
	case "lba":
		idx, err := c.int()
		if err != nil {
			return Elem{}, err
		}
		inner, err := c.int()
		return Elem{Kind: ElemLocalByteArrayElem, IVal: idx, InnerSlot: inner}, err
	case "gba":
		idx, err := c.int()
		if err != nil {
			return Elem{}, err
		}
		inner, err := c.int()
		return Elem{Kind: ElemGlobalByteArrayElem, IVal: idx, InnerSlot: inner}, err
	case "lsa":
		idx, err := c.int()
		if err != nil {
			return Elem{}, err
		}
		inner, err := c.int()
		return Elem{Kind: ElemLocalStringArrayElem, IVal: idx, InnerSlot: inner}, err
	case "gsa":
		idx, err := c.int()
		if err != nil {
			return Elem{}, err
		}
		inner, err := c.int()
		return Elem{Kind: ElemGlobalStringArrayElem, IVal: idx, InnerSlot: inner}, err
	case "lbp":
		v, err := c.int()
		return Elem{Kind: ElemLocalByteArrayPtr, IVal: v}, err
	case "gbp":
		v, err := c.int()
		return Elem{Kind: ElemGlobalByteArrayPtr, IVal: v}, err
	case "call":
		v, err := c.int()
		return Elem{Kind: ElemInternCall, IVal: v}, err
	case "ecall":
		v, err := c.int()
		return Elem{Kind: ElemExternCall, IVal: v}, err
	case "op":
		v, err := c.byteVal()
		return Elem{Kind: ElemOperator, Op: v}, err
	default:
		return Elem{}, ld.errf("unknown postfix element tag %q", tag)
	}
}

// --- #FIPS -----------------------------------------------------------

func (ld *irLoader) loadFIPs() error {
	n, err := ld.readIntLine()
	if err != nil {
		return err
	}
	ld.mod.FIPs = make([]*FIPRecord, n)
	for i := 0; i < n; i++ {
		line, ok := ld.nextLine()
		if !ok {
			return ld.errf("expected FIP record %d", i)
		}
		c := ld.cursor(line)
		funcIdx, err := c.int()
		if err != nil {
			return err
		}
		argc, err := c.int()
		if err != nil {
			return err
		}
		argv := make([]int, argc)
		for a := range argv {
			v, err := c.int()
			if err != nil {
				return err
			}
			argv[a] = v
		}
		ld.mod.FIPs[i] = &FIPRecord{FuncIdx: funcIdx, Argv: argv}
	}
	return nil
}

// --- #STMTS -----------------------------------------------------------

func (ld *irLoader) loadStmts() error {
	n, err := ld.readIntLine()
	if err != nil {
		return err
	}
	ld.mod.Stmts = make([]Statement, n)
	for i := 0; i < n; i++ {
		line, ok := ld.nextLine()
		if !ok {
			return ld.errf("expected statement record %d", i)
		}
		st, err := ld.parseStmt(line)
		if err != nil {
			return err
		}
		ld.mod.Stmts[i] = st
	}
	return nil
}

func (ld *irLoader) parseStmt(line string) (Statement, error) {
	c := ld.cursor(line)
	lineNo, err := c.int()
	if err != nil {
		return Statement{}, err
	}
	typeTok, err := c.next()
	if err != nil {
		return Statement{}, err
	}
	st := Statement{Line: lineNo}

	switch typeTok {
	case "IF":
		st.Type = StmtIf
		if st.CmpOp, err = c.cmpOp(); err != nil {
			return st, err
		}
		if st.LHSSlot, err = c.int(); err != nil {
			return st, err
		}
		if st.RHSSlot, err = c.int(); err != nil {
			return st, err
		}
		if st.FalseIdx, err = c.int(); err != nil {
			return st, err
		}
	case "ENDIF":
		st.Type = StmtEndIf
		if st.Next, err = c.int(); err != nil {
			return st, err
		}
	case "WHILE":
		st.Type = StmtWhile
		if st.CmpOp, err = c.cmpOp(); err != nil {
			return st, err
		}
		if st.LHSSlot, err = c.int(); err != nil {
			return st, err
		}
		if st.RHSSlot, err = c.int(); err != nil {
			return st, err
		}
		if st.FalseIdx, err = c.int(); err != nil {
			return st, err
		}
	case "ENDWHILE":
		st.Type = StmtEndWhile
		if st.Next, err = c.int(); err != nil {
			return st, err
		}
	case "FOR":
		st.Type = StmtFor
		if st.StartSlot, err = c.int(); err != nil {
			return st, err
		}
		if st.StopSlot, err = c.int(); err != nil {
			return st, err
		}
		if st.StepSlot, err = c.int(); err != nil {
			return st, err
		}
		if st.LoopVar, err = c.varRef(); err != nil {
			return st, err
		}
		if st.EndForIdx, err = c.int(); err != nil {
			return st, err
		}
		if st.ExitIdx, err = c.int(); err != nil {
			return st, err
		}
	case "ENDFOR":
		st.Type = StmtEndFor
		if st.ForIdx, err = c.int(); err != nil {
			return st, err
		}
		if st.BackIdx, err = c.int(); err != nil {
			return st, err
		}
		if st.Next, err = c.int(); err != nil {
			return st, err
		}
	case "LOOP":
		st.Type = StmtLoop
		if st.Next, err = c.int(); err != nil {
			return st, err
		}
	case "ENDLOOP":
		st.Type = StmtEndLoop
		if st.Next, err = c.int(); err != nil {
			return st, err
		}
	case "REPEAT":
		st.Type = StmtRepeat
		if st.CountSlot, err = c.int(); err != nil {
			return st, err
		}
		if st.EndRepeatIdx, err = c.int(); err != nil {
			return st, err
		}
		if st.Next, err = c.int(); err != nil {
			return st, err
		}
	case "ENDREPEAT":
		st.Type = StmtEndRepeat
		if st.BackIdx, err = c.int(); err != nil {
			return st, err
		}
		if st.Next, err = c.int(); err != nil {
			return st, err
		}
	case "BREAK":
		st.Type = StmtBreak
		if st.Next, err = c.int(); err != nil {
			return st, err
		}
	case "CONTINUE":
		st.Type = StmtContinue
		if st.Next, err = c.int(); err != nil {
			return st, err
		}
	case "INC":
		st.Type = StmtIncrement
		if st.Target, err = c.varRef(); err != nil {
			return st, err
		}
		delta, err := c.int()
		if err != nil {
			return st, err
		}
		st.Delta = int32(delta)
		if st.Next, err = c.int(); err != nil {
			return st, err
		}
	case "CALL":
		st.Type = StmtInternFunction
		if st.ExprSlot, err = c.int(); err != nil {
			return st, err
		}
		hasAssign, err := c.int()
		if err != nil {
			return st, err
		}
		st.HasAssign = hasAssign != 0
		if st.HasAssign {
			if st.AssignTarget, err = c.varRef(); err != nil {
				return st, err
			}
		}
		if st.Next, err = c.int(); err != nil {
			return st, err
		}
	case "RETURN":
		st.Type = StmtReturn
		hasValue, err := c.int()
		if err != nil {
			return st, err
		}
		st.HasValue = hasValue != 0
		if st.HasValue {
			if st.ValueSlot, err = c.int(); err != nil {
				return st, err
			}
		}
	default:
		return st, ld.errf("unknown statement type %q", typeTok)
	}
	return st, nil
}

func (c *fieldCursor) cmpOp() (CompareOp, error) {
	tok, err := c.next()
	if err != nil {
		return 0, err
	}
	switch tok {
	case "==":
		return CmpEq, nil
	case "!=":
		return CmpNeq, nil
	case "<":
		return CmpLt, nil
	case "<=":
		return CmpLeq, nil
	case ">":
		return CmpGt, nil
	case ">=":
		return CmpGeq, nil
	default:
		return 0, &IRParseError{Line: c.ld.line, Token: tok, Msg: "unknown comparison operator"}
	}
}
