package streamdecode

import "github.com/pbjson/streamdecode/internal/lexutil"

// stringScan resumes JSON string scanning (raw runs, escapes, and unicode
// escapes including surrogate pairs) across feed() boundaries. Grounded on
// upb/json/parser.c's string/escape/stringbody states (spec.md §4.3/§4.4),
// reimplemented as a hand-dispatched Go switch rather than simulated Ragel
// tables, per the task's explicit instruction (spec.md §9).
type stringScan struct {
	active bool

	escaping      bool // just consumed '\', awaiting the escape-type byte
	unicodeDigits int  // 0 when not mid \uXXXX; else one more than the hex digits collected so far
	unicodeVal    uint32

	// highSurrogate is non-zero while a high surrogate (\uD800-\uDBFF) is
	// waiting to be combined with an immediately following low surrogate
	// escape (spec.md §9 "Surrogate pairs": this repo implements the gap
	// the original left open).
	highSurrogate uint32
}

func (s *stringScan) begin() {
	*s = stringScan{active: true}
}

// advance scans buf[pos:] until the string's closing quote is found (and
// consumed) or buf is exhausted. Raw runs are captured via d.cap and
// flushed through d.mp; escape output is always pushed through d.mp with
// canAlias=false (it never matches the input bytes verbatim).
func (s *stringScan) advance(d *driverState, buf []byte, pos int) (newPos int, complete bool, err error) {
	for pos < len(buf) {
		if s.escaping {
			np, err := s.handleEscapeByte(d, buf, pos)
			if err != nil {
				return pos, false, err
			}
			pos = np
			continue
		}
		if s.unicodeDigits > 0 {
			np, err := s.handleHexDigit(d, buf, pos)
			if err != nil {
				return pos, false, err
			}
			pos = np
			continue
		}

		// Scanning a raw (unescaped) run: capture until '\\' or '"'.
		if !d.cap.isActive() {
			if err := d.cap.begin(pos); err != nil {
				return pos, false, err
			}
		}
		b := buf[pos]
		if s.highSurrogate != 0 && b != '\\' {
			// A high surrogate pairs only with an immediately following
			// \u low-surrogate escape; anything else interposed — a raw
			// character, the closing quote, a control byte — leaves it
			// unpaired.
			hs := s.highSurrogate
			s.highSurrogate = 0
			return pos, false, lexicalErrorf(buf[pos:], "unpaired UTF-16 surrogate %#04x", hs)
		}
		switch {
		case b == '"':
			if err := d.cap.end(d, &d.mp, buf, pos); err != nil {
				return pos, false, err
			}
			pos++
			s.active = false
			return pos, true, nil
		case b == '\\':
			if err := d.cap.end(d, &d.mp, buf, pos); err != nil {
				return pos, false, err
			}
			pos++
			s.escaping = true
		case lexutil.IsCtrl(b):
			return pos, false, lexicalErrorf(buf[pos:], "invalid control character in string")
		default:
			pos++
		}
	}
	return pos, false, nil
}

func (s *stringScan) handleEscapeByte(d *driverState, buf []byte, pos int) (int, error) {
	b := buf[pos]
	s.escaping = false
	if b != 'u' && s.highSurrogate != 0 {
		// Only a \u low-surrogate escape can pair with a pending high
		// surrogate; every other escape type leaves it unpaired.
		hs := s.highSurrogate
		s.highSurrogate = 0
		return pos, lexicalErrorf(buf[pos:], "unpaired UTF-16 surrogate %#04x", hs)
	}
	var lit byte
	switch b {
	case '"':
		lit = '"'
	case '\\':
		lit = '\\'
	case '/':
		lit = '/'
	case 'b':
		lit = '\b'
	case 'f':
		lit = '\f'
	case 'n':
		lit = '\n'
	case 'r':
		lit = '\r'
	case 't':
		lit = '\t'
	case 'u':
		s.unicodeDigits = 1
		s.unicodeVal = 0
		return pos + 1, nil
	default:
		return pos, lexicalErrorf(buf[pos:], "invalid escape character %q", b)
	}
	if err := d.mp.text(d, []byte{lit}, false); err != nil {
		return pos, err
	}
	return pos + 1, nil
}

func (s *stringScan) handleHexDigit(d *driverState, buf []byte, pos int) (int, error) {
	b := buf[pos]
	if !lexutil.IsHexDigit(b) {
		return pos, lexicalErrorf(buf[pos:], "invalid hex digit in \\u escape")
	}
	s.unicodeVal = s.unicodeVal<<4 | uint32(lexutil.HexVal(b))
	s.unicodeDigits++
	pos++
	if s.unicodeDigits <= 4 {
		return pos, nil
	}
	s.unicodeDigits = 0
	return pos, s.finishUnicodeEscape(d)
}

func (s *stringScan) finishUnicodeEscape(d *driverState) error {
	cp := s.unicodeVal

	if s.highSurrogate != 0 {
		if cp < 0xDC00 || cp > 0xDFFF {
			return lexicalErrorf(nil, "unpaired UTF-16 surrogate %#04x", s.highSurrogate)
		}
		combined := 0x10000 + (s.highSurrogate-0xD800)<<10 + (cp - 0xDC00)
		s.highSurrogate = 0
		return d.mp.text(d, encodeUTF8(combined), false)
	}

	if cp >= 0xD800 && cp <= 0xDBFF {
		s.highSurrogate = cp
		return nil
	}
	if cp >= 0xDC00 && cp <= 0xDFFF {
		return lexicalErrorf(nil, "unpaired UTF-16 surrogate %#04x", cp)
	}
	return d.mp.text(d, encodeUTF8(cp), false)
}

// encodeUTF8 emits 1-4 bytes per spec.md §4.4 (1 byte for <=U+007F, 2 for
// <=U+07FF, 3 for <=U+FFFF, 4 for combined surrogate pairs above U+FFFF).
func encodeUTF8(cp uint32) []byte {
	switch {
	case cp <= 0x7F:
		return []byte{byte(cp)}
	case cp <= 0x7FF:
		return []byte{
			byte(0xC0 | (cp >> 6)),
			byte(0x80 | (cp & 0x3F)),
		}
	case cp <= 0xFFFF:
		return []byte{
			byte(0xE0 | (cp >> 12)),
			byte(0x80 | ((cp >> 6) & 0x3F)),
			byte(0x80 | (cp & 0x3F)),
		}
	default:
		return []byte{
			byte(0xF0 | (cp >> 18)),
			byte(0x80 | ((cp >> 12) & 0x3F)),
			byte(0x80 | ((cp >> 6) & 0x3F)),
			byte(0x80 | (cp & 0x3F)),
		}
	}
}
