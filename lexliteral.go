package streamdecode

// literalScan resumes matching one of the JSON grammar's fixed bare
// identifiers (true/false/null, and this parser's extensions
// Infinity/-Infinity) across feed() boundaries.
type literalScan struct {
	active bool
	target string
	pos    int
	// kind records what end-action to run once target is fully matched.
	kind literalKind
}

type literalKind int

const (
	literalTrue literalKind = iota
	literalFalse
	literalNull
	literalInfinity
	literalNegInfinity
)

var literalText = map[literalKind]string{
	literalTrue:        "true",
	literalFalse:       "false",
	literalNull:        "null",
	literalInfinity:    "Infinity",
	literalNegInfinity: "-Infinity",
}

func (l *literalScan) begin(kind literalKind) {
	l.active = true
	l.kind = kind
	l.target = literalText[kind]
	l.pos = 0
}

// advance consumes as much of buf as matches the remaining target text,
// returning the new cursor position and whether the literal is now fully
// matched. A mismatch is a LexicalError.
func (l *literalScan) advance(buf []byte, pos int) (newPos int, complete bool, err error) {
	for pos < len(buf) {
		if buf[pos] != l.target[l.pos] {
			return pos, false, lexicalErrorf(buf[pos:], "invalid literal, expected %q", l.target)
		}
		pos++
		l.pos++
		if l.pos == len(l.target) {
			l.active = false
			return pos, true, nil
		}
	}
	return pos, false, nil
}
