package sanitize

// Repair scans input with a UTF-8 byte-class grammar. Well-formed sequences are
// copied unchanged. An invalid continuation byte 10xxxxxx becomes C2 10xxxxxx,
// any other invalid byte 11xxxxxx becomes C3 10xxxxxx, which is the UTF-8 form
// of the byte read as Latin-1.
func Repair(input []byte) []byte {
	out := make([]byte, 0, len(input)+len(input)/4)
	for i := 0; i < len(input); {
		if n := sequenceLen(input[i:]); n > 0 {
			out = append(out, input[i:i+n]...)
			i += n
			continue
		}

		b := input[i]
		if b < 0xC0 {
			out = append(out, 0xC2, b)
		} else {
			out = append(out, 0xC3, b-0x40)
		}
		i++
	}
	return out
}

// sequenceLen returns the length of the well-formed UTF-8 sequence at the
// start of p, or 0 if p does not start with one. Ranges follow Unicode
// table 3-7: overlong forms, surrogates and code points past U+10FFFF are
// rejected.
func sequenceLen(p []byte) int {
	b := p[0]
	switch {
	case b <= 0x7F:
		return 1
	case b >= 0xC2 && b <= 0xDF:
		if len(p) >= 2 && isCont(p[1]) {
			return 2
		}
	case b >= 0xE0 && b <= 0xEF:
		lo, hi := byte(0x80), byte(0xBF)
		if b == 0xE0 {
			lo = 0xA0
		} else if b == 0xED {
			hi = 0x9F
		}
		if len(p) >= 3 && p[1] >= lo && p[1] <= hi && isCont(p[2]) {
			return 3
		}
	case b >= 0xF0 && b <= 0xF4:
		lo, hi := byte(0x80), byte(0xBF)
		if b == 0xF0 {
			lo = 0x90
		} else if b == 0xF4 {
			hi = 0x8F
		}
		if len(p) >= 4 && p[1] >= lo && p[1] <= hi && isCont(p[2]) && isCont(p[3]) {
			return 4
		}
	}
	return 0
}

func isCont(b byte) bool {
	return b&0xC0 == 0x80
}
