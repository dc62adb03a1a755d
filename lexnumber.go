package streamdecode

// numPhase tracks a bare JSON number's grammar position so scanning can
// suspend and resume across feed() boundaries (spec.md §4.3/§4.5).
type numPhase int

const (
	numSign        numPhase = iota // optional leading '-', then a digit is required
	numAfterMinus                  // just consumed the leading '-', a digit is required
	numIntZero                     // just consumed a leading '0'
	numIntDigits                   // consuming integer-part digits (terminal)
	numFracStart                   // just consumed '.', a digit is required
	numFracDigits                  // consuming fraction digits (terminal)
	numExpSign                     // just consumed 'e'/'E', optional sign then a digit required
	numExpStart                    // consumed exponent sign, a digit is required
	numExpDigits                   // consuming exponent digits (terminal)
)

type numberScan struct {
	active bool
	phase  numPhase
}

func (n *numberScan) begin() {
	n.active = true
	n.phase = numSign
}

func (n numPhase) terminal() bool {
	switch n {
	case numIntZero, numIntDigits, numFracDigits, numExpDigits:
		return true
	default:
		return false
	}
}

// advance consumes as much of buf as is still part of the number, stopping
// (without consuming) at the first byte that is not — the number's end is
// implicit, unlike a quoted string's. Returns the new cursor: a cursor
// short of len(buf) means a terminating byte was seen and the number
// ended; a cursor at len(buf) means the number may continue in the next
// buffer (or, at EOF, ends if finish accepts the phase).
func (n *numberScan) advance(buf []byte, pos int) (newPos int, err error) {
	for pos < len(buf) {
		b := buf[pos]
		switch n.phase {
		case numSign, numAfterMinus:
			switch {
			case b == '-' && n.phase == numSign:
				pos++
				n.phase = numAfterMinus // next must be a digit
			case b == '0':
				pos++
				n.phase = numIntZero
			case b >= '1' && b <= '9':
				pos++
				n.phase = numIntDigits
			default:
				return pos, lexicalErrorf(buf[pos:], "expected digit in number")
			}
		case numIntZero:
			switch {
			case b == '.':
				pos++
				n.phase = numFracStart
			case b == 'e' || b == 'E':
				pos++
				n.phase = numExpSign
			default:
				return pos, nil // number ends before b; b not consumed
			}
		case numIntDigits:
			switch {
			case b >= '0' && b <= '9':
				pos++
			case b == '.':
				pos++
				n.phase = numFracStart
			case b == 'e' || b == 'E':
				pos++
				n.phase = numExpSign
			default:
				return pos, nil
			}
		case numFracStart:
			if b >= '0' && b <= '9' {
				pos++
				n.phase = numFracDigits
			} else {
				return pos, lexicalErrorf(buf[pos:], "expected digit after decimal point")
			}
		case numFracDigits:
			switch {
			case b >= '0' && b <= '9':
				pos++
			case b == 'e' || b == 'E':
				pos++
				n.phase = numExpSign
			default:
				return pos, nil
			}
		case numExpSign:
			switch {
			case b == '+' || b == '-':
				pos++
				n.phase = numExpStart
			case b >= '0' && b <= '9':
				pos++
				n.phase = numExpDigits
			default:
				return pos, lexicalErrorf(buf[pos:], "expected digit in exponent")
			}
		case numExpStart:
			if b >= '0' && b <= '9' {
				pos++
				n.phase = numExpDigits
			} else {
				return pos, lexicalErrorf(buf[pos:], "expected digit in exponent")
			}
		case numExpDigits:
			if b >= '0' && b <= '9' {
				pos++
			} else {
				return pos, nil
			}
		}
	}
	return pos, nil
}

// finish is called at Driver.End() to confirm a suspended number ended in
// a valid terminal phase (i.e. EOF, not mid-grammar).
func (n *numberScan) finish() error {
	if n.active && !n.phase.terminal() {
		return lexicalErrorf(nil, "unexpected end of input inside a number")
	}
	n.active = false
	return nil
}
