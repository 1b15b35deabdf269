package main

import (
	"bytes"
)

// String intrinsic family (§4.7, required). Concatenation is handled by
// the postfix '.' operator (postfix.go); these cover the operations that
// need more than two operands or aren't expressible as a binary reduction.

func init() {
	registerIntrinsic(IStrLen, "str_len", RetInt, 1, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		b, err := in.argString(fr, fip, 0)
		if err != nil {
			return err
		}
		in.setReturnInt(fip, int32(len(b)))
		return nil
	})

	registerIntrinsic(IStrSub, "str_sub", RetString, 3, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		b, err := in.argString(fr, fip, 0)
		if err != nil {
			return err
		}
		start, err := in.argInt(fr, fip, 1)
		if err != nil {
			return err
		}
		length, err := in.argInt(fr, fip, 2)
		if err != nil {
			return err
		}
		s, e := clampRange(int(start), int(length), len(b))
		in.setReturnString(fip, b[s:e])
		return nil
	})

	registerIntrinsic(IStrIndexOf, "str_index_of", RetInt, 2, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		hay, err := in.argString(fr, fip, 0)
		if err != nil {
			return err
		}
		needle, err := in.argString(fr, fip, 1)
		if err != nil {
			return err
		}
		in.setReturnInt(fip, int32(bytes.Index(hay, needle)))
		return nil
	})

	registerIntrinsic(IStrToUpper, "str_to_upper", RetString, 1, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		b, err := in.argString(fr, fip, 0)
		if err != nil {
			return err
		}
		in.setReturnString(fip, bytes.ToUpper(b))
		return nil
	})

	registerIntrinsic(IStrToLower, "str_to_lower", RetString, 1, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		b, err := in.argString(fr, fip, 0)
		if err != nil {
			return err
		}
		in.setReturnString(fip, bytes.ToLower(b))
		return nil
	})

	registerIntrinsic(IStrParseInt, "str_parse_int", RetInt, 1, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		b, err := in.argString(fr, fip, 0)
		if err != nil {
			return err
		}
		in.setReturnInt(fip, int32(atoiLenient(b)))
		return nil
	})

	registerIntrinsic(IStrCompare, "str_compare", RetInt, 2, func(in *Interp, fr *Frame, fip *FIPRecord) error {
		a, err := in.argString(fr, fip, 0)
		if err != nil {
			return err
		}
		b, err := in.argString(fr, fip, 1)
		if err != nil {
			return err
		}
		in.setReturnInt(fip, int32(bytes.Compare(a, b)))
		return nil
	})
}

// clampRange bounds a (start, length) substring request into [0, total]
// (§4.7: out-of-range substring requests clamp rather than fault, matching
// the lenient-coercion policy of §7 for string-shaped intrinsics).
func clampRange(start, length, total int) (int, int) {
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + length
	if length < 0 || end > total {
		end = total
	}
	if end < start {
		end = start
	}
	return start, end
}
