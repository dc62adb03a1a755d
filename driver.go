package streamdecode

import (
	"math"

	"github.com/hashicorp/go-hclog"
	"github.com/pbjson/streamdecode/internal/lexutil"
)

// wkKind tags what a completed scalar lexeme should become, for the cases
// where curField.Kind() alone isn't enough to say (spec.md §4.8).
type wkKind int

const (
	wkNone wkKind = iota
	wkSkip
	wkValueNull
	wkDuration
	wkTimestamp
)

// rootField is the "virtual root field" (DESIGN.md): modeling the document
// itself as a field of kind KindMessage lets beginValue's ordinary
// well-known-type rewrites (wrapper, Value, Struct, ListValue, Duration,
// Timestamp) apply uniformly to a bare top-level scalar/array document,
// without a second copy of that dispatch logic for the top level alone.
type rootField struct {
	root Message
}

func (r rootField) Kind() FieldKind                     { return KindMessage }
func (r rootField) IsRepeated() bool                     { return false }
func (r rootField) IsMap() bool                          { return false }
func (r rootField) Submessage() Message                  { return r.root }
func (r rootField) EnumValueByName(string) (int32, bool) { return 0, false }

// driverState is the decoder's complete resumable state (spec.md §3),
// pushed forward one buffer at a time by Feed.
type driverState struct {
	sink Sink
	opts Options
	log  hclog.Logger

	rootField rootField
	rootSub   SubFrame

	stack frameStack
	cap   capture
	mp    multipart

	lit literalScan
	num numberScan
	str stringScan

	expect expectState
	pos    int // offset of the token classifyToken just looked at, set immediately before each beginValue call

	// curField/curSub identify where a scalar value in progress (or a
	// string being member-name-resolved) is destined.
	curField  Field
	curSub    SubFrame
	curStrSub SubFrame
	curWK     wkKind
	curWKMsg  Message

	pendingMemberName bool

	pendingSkip bool
	skipActive  bool
	skipDepth   int

	err   *DecodeError
	ended bool
}

// Driver is the streaming proto3-JSON-to-protobuf decoder (spec.md §5/§6).
// It is fed bytes incrementally via Feed and finalized with End; it never
// blocks and never does its own I/O.
type Driver struct {
	st driverState
}

// Create begins decoding a document of message type root, emitting events
// to sink. See spec.md §6 for the Options this decoder recognizes.
func Create(root Message, sink Sink, opts Options) (*Driver, error) {
	p := &Driver{st: driverState{
		sink:      sink,
		opts:      opts,
		log:       opts.logger(),
		rootField: rootField{root: root},
		expect:    esDocValue,
	}}
	rootSub, err := sink.StartMsg(nil)
	if err != nil {
		return nil, err
	}
	p.st.rootSub = rootSub
	return p, nil
}

// Status returns the error that halted decoding, if any (spec.md §7). It
// returns nil while decoding is still in progress and has not failed.
func (p *Driver) Status() error {
	if p.st.err == nil {
		return nil
	}
	return p.st.err
}

// Feed consumes as much of buf as forms complete tokens, returning how many
// bytes were consumed. A return value less than len(buf) is not an error:
// it means the decoder needs more input before it can make further
// progress. That happens only when buf ends on a '-' that could start
// either "-123" or "-Infinity"; a token cut off mid-escape, mid-number or
// mid-literal is consumed in full and resumed by the next Feed — spec.md §5.
func (p *Driver) Feed(buf []byte) (int, error) {
	if p.st.err != nil {
		return 0, p.st.err
	}
	n, err := p.st.feed(buf)
	if err != nil {
		p.st.err = asDecodeError(err)
		return n, p.st.err
	}
	return n, nil
}

// End signals end of input. It fails if a value was left incomplete (an
// open container, an unterminated number/literal/string) — spec.md §5.
func (p *Driver) End() error {
	if p.st.err != nil {
		return p.st.err
	}
	if err := p.st.end(); err != nil {
		p.st.err = asDecodeError(err)
		return p.st.err
	}
	p.st.ended = true
	return nil
}

func asDecodeError(err error) *DecodeError {
	if de, ok := err.(*DecodeError); ok {
		return de
	}
	return internalErrorf("%s", err)
}

// feed is the per-buffer byte-cursor loop (spec.md §4.3): it resumes
// whichever low-level sub-scanner is active, or otherwise dispatches on the
// container-level expect state.
func (d *driverState) feed(buf []byte) (int, error) {
	pos := 0
	for pos < len(buf) {
		switch {
		case d.num.active:
			newPos, err := d.num.advance(buf, pos)
			if err != nil {
				return pos, err
			}
			pos = newPos
			if pos == len(buf) {
				// A number's end is implicit; running out of buffer here
				// doesn't mean the number ended, only that this feed() call
				// did. Spill what's captured so far before returning it.
				if err := d.cap.suspend(d, &d.mp, buf); err != nil {
					return pos, err
				}
				return pos, nil
			}
			d.num.active = false
			if err := d.finishCapturedNumber(buf, pos); err != nil {
				return pos, err
			}
			continue
		case d.lit.active:
			newPos, complete, err := d.lit.advance(buf, pos)
			if err != nil {
				return pos, err
			}
			pos = newPos
			if !complete {
				continue
			}
			if err := d.finishLiteral(); err != nil {
				return pos, err
			}
			continue
		case d.str.active:
			newPos, complete, err := d.str.advance(d, buf, pos)
			if err != nil {
				return pos, err
			}
			pos = newPos
			if !complete {
				// Same reasoning as the number case above: a capture left
				// open mid raw-run must be spilled before this buffer goes
				// away. A no-op if no capture is currently open (e.g.
				// suspended mid-escape, which holds no capture at all).
				if err := d.cap.suspend(d, &d.mp, buf); err != nil {
					return pos, err
				}
				return pos, nil
			}
			if err := d.finishString(); err != nil {
				return pos, err
			}
			continue
		}

		if d.skipActive {
			newPos, err := d.advanceSkip(buf, pos)
			if err != nil {
				return pos, err
			}
			if newPos == pos && !(d.num.active || d.lit.active || d.str.active) {
				return pos, nil
			}
			pos = newPos
			continue
		}

		b := buf[pos]
		if lexutil.IsWhitespace(b) {
			pos++
			continue
		}

		switch d.expect {
		case esDone:
			return pos, lexicalErrorf(buf[pos:], "unexpected trailing data")
		case esObjKeyOrEnd, esObjKey:
			switch b {
			case '"':
				pos++
				d.pendingMemberName = true
				if err := d.mp.startAccumulate(); err != nil {
					return pos, err
				}
				d.str.begin()
			case '}':
				if d.expect == esObjKey {
					return pos, lexicalErrorf(buf[pos:], "expected a member name")
				}
				pos++
				if err := d.closeObject(); err != nil {
					return pos, err
				}
			default:
				return pos, lexicalErrorf(buf[pos:], "expected a member name or '}'")
			}
		case esObjColon:
			if b != ':' {
				return pos, lexicalErrorf(buf[pos:], "expected ':'")
			}
			pos++
			if d.pendingSkip {
				d.pendingSkip = false
				d.skipActive = true
				d.skipDepth = 0
			} else {
				d.expect = esObjValue
			}
		case esObjValue:
			kind, needMore, err := classifyToken(buf, pos)
			if err != nil {
				return pos, err
			}
			if needMore {
				return pos, nil
			}
			d.pos = pos
			if err := d.beginValue(d.curField, d.curSub, kind, nil, false); err != nil {
				return pos, err
			}
			pos = advanceForToken(kind, pos)
		case esObjCommaOrEnd:
			switch b {
			case ',':
				pos++
				d.expect = esObjKey
			case '}':
				pos++
				if err := d.closeObject(); err != nil {
					return pos, err
				}
			default:
				return pos, lexicalErrorf(buf[pos:], "expected ',' or '}'")
			}
		case esArrValueOrEnd, esArrValue:
			if b == ']' {
				if d.expect == esArrValue {
					return pos, lexicalErrorf(buf[pos:], "expected an array element")
				}
				pos++
				if err := d.closeArray(); err != nil {
					return pos, err
				}
				break
			}
			top := d.stack.top()
			if top == nil {
				return pos, internalErrorf("array dispatch with an empty frame stack")
			}
			kind, needMore, err := classifyToken(buf, pos)
			if err != nil {
				return pos, err
			}
			if needMore {
				return pos, nil
			}
			d.pos = pos
			if err := d.beginValue(top.f, top.sub, kind, nil, false); err != nil {
				return pos, err
			}
			pos = advanceForToken(kind, pos)
		case esArrCommaOrEnd:
			switch b {
			case ',':
				pos++
				d.expect = esArrValue
			case ']':
				pos++
				if err := d.closeArray(); err != nil {
					return pos, err
				}
			default:
				return pos, lexicalErrorf(buf[pos:], "expected ',' or ']'")
			}
		case esDocValue:
			kind, needMore, err := classifyToken(buf, pos)
			if err != nil {
				return pos, err
			}
			if needMore {
				return pos, nil
			}
			d.pos = pos
			if err := d.beginValue(d.rootField, nil, kind, d.rootSub, true); err != nil {
				return pos, err
			}
			pos = advanceForToken(kind, pos)
		default:
			return pos, internalErrorf("unhandled expect state")
		}
	}
	return pos, nil
}

// advanceForToken consumes the single delimiter byte that precedes a
// sub-scanner taking over ('{', '[', the opening '"'); number and literal
// tokens are not pre-consumed, since their own scanners start matching at
// the token's first byte.
func advanceForToken(tok tokenKind, pos int) int {
	switch tok {
	case tokObj, tokArr, tokStr:
		return pos + 1
	default:
		return pos
	}
}

// end finalizes decoding at end of input (spec.md §5).
func (d *driverState) end() error {
	// Any capture still open here was necessarily suspended by feed() at
	// the last buffer boundary (suspend always runs before feed() returns
	// with a capture left active) — its bytes already reached mp, so there
	// is nothing left to spill. A capture active without ever having been
	// suspended cannot happen: feed() only returns with one active when it
	// ran out of buffer, and that path always suspends first.
	d.cap.reset()
	if d.num.active {
		if err := d.num.finish(); err != nil {
			return err
		}
		if err := d.finishCapturedNumber(nil, 0); err != nil {
			return err
		}
	}
	if d.lit.active || d.str.active {
		return lexicalErrorf(nil, "unexpected end of input mid-token")
	}
	if d.expect != esDone {
		return lexicalErrorf(nil, "unexpected end of input: document incomplete")
	}
	return nil
}

// finishCapturedNumber closes the number's capture (if a live buffer is
// still available; at End() there is none left to close against) and
// interprets the accumulated digits.
func (d *driverState) finishCapturedNumber(buf []byte, pos int) error {
	if d.cap.isActive() {
		if err := d.cap.end(d, &d.mp, buf, pos); err != nil {
			return err
		}
	}
	if d.skipActive {
		d.mp.end()
		if d.skipDepth == 0 {
			d.skipActive = false
			return d.skipValueCompleted()
		}
		return nil
	}
	text := append([]byte(nil), d.mp.accumulated()...)
	d.mp.end()
	return d.finishNumber(text, false)
}

func (d *driverState) finishNumber(text []byte, isQuoted bool) error {
	if err := parseNumber(text, d.curField, isQuoted, d.emitNum); err != nil {
		return err
	}
	return d.valueCompleted()
}

func (d *driverState) emitNum(kind FieldKind, nv numValue) error {
	switch kind {
	case KindInt32:
		return d.sink.PutInt32(d.curSub, d.curField, int32(nv.i64))
	case KindInt64:
		return d.sink.PutInt64(d.curSub, d.curField, nv.i64)
	case KindUint32:
		return d.sink.PutUint32(d.curSub, d.curField, uint32(nv.u64))
	case KindUint64:
		return d.sink.PutUint64(d.curSub, d.curField, nv.u64)
	case KindFloat:
		return d.sink.PutFloat(d.curSub, d.curField, float32(nv.f64))
	case KindDouble:
		return d.sink.PutDouble(d.curSub, d.curField, nv.f64)
	default:
		return internalErrorf("unexpected numeric field kind")
	}
}

func (d *driverState) finishLiteral() error {
	kind := d.lit.kind
	if d.skipActive {
		if d.skipDepth == 0 {
			d.skipActive = false
			return d.skipValueCompleted()
		}
		return nil
	}
	switch kind {
	case literalNull:
		if d.curWK == wkValueNull {
			if err := d.sink.PutEnum(d.curSub, d.curField, 0); err != nil {
				return err
			}
		}
		d.curWK = wkNone
		return d.valueCompleted()
	case literalTrue:
		if err := d.sink.PutBool(d.curSub, d.curField, true); err != nil {
			return err
		}
		return d.valueCompleted()
	case literalFalse:
		if err := d.sink.PutBool(d.curSub, d.curField, false); err != nil {
			return err
		}
		return d.valueCompleted()
	case literalInfinity:
		return d.finishFloatLiteral(math.Inf(1))
	case literalNegInfinity:
		return d.finishFloatLiteral(math.Inf(-1))
	default:
		return internalErrorf("unhandled literal kind")
	}
}

func (d *driverState) finishFloatLiteral(v float64) error {
	if err := putFloatRange(d.curField, v, d.emitNum); err != nil {
		return err
	}
	return d.valueCompleted()
}

func (d *driverState) finishString() error {
	if d.pendingMemberName {
		d.pendingMemberName = false
		name := append([]byte(nil), d.mp.accumulated()...)
		d.mp.end()
		return d.handleMemberNameComplete(name)
	}
	if d.skipActive {
		d.mp.end()
		if d.skipDepth == 0 {
			d.skipActive = false
			return d.skipValueCompleted()
		}
		return nil
	}
	switch d.curWK {
	case wkDuration:
		text := string(d.mp.accumulated())
		d.mp.end()
		sec, nanos, err := parseDuration(text)
		if err != nil {
			return err
		}
		return d.finishDurationOrTimestamp(sec, nanos)
	case wkTimestamp:
		text := string(d.mp.accumulated())
		d.mp.end()
		sec, nanos, err := parseTimestamp(text)
		if err != nil {
			return err
		}
		return d.finishDurationOrTimestamp(sec, nanos)
	}
	switch d.curField.Kind() {
	case KindString:
		d.mp.end()
		if err := d.sink.EndStr(d.curStrSub); err != nil {
			return err
		}
		return d.valueCompleted()
	case KindBytes:
		raw, err := decodeBase64(d.mp.accumulated())
		d.mp.end()
		if err != nil {
			return err
		}
		strSub, err := d.sink.StartStr(d.curSub, d.curField)
		if err != nil {
			return err
		}
		if err := d.sink.String(strSub, raw); err != nil {
			return err
		}
		if err := d.sink.EndStr(strSub); err != nil {
			return err
		}
		return d.valueCompleted()
	case KindEnum:
		name := string(d.mp.accumulated())
		d.mp.end()
		val, ok := d.curField.EnumValueByName(name)
		if !ok {
			return enumNameUnknownErrorf("enum", name)
		}
		if err := d.sink.PutEnum(d.curSub, d.curField, val); err != nil {
			return err
		}
		return d.valueCompleted()
	default:
		text := append([]byte(nil), d.mp.accumulated()...)
		d.mp.end()
		return d.finishNumber(text, true)
	}
}

func (d *driverState) finishDurationOrTimestamp(sec int64, nanos int32) error {
	secField, ok := d.curWKMsg.FieldByJSONName("seconds")
	if !ok {
		return internalErrorf("%s has no seconds field", d.curWKMsg.FullName())
	}
	nanosField, ok := d.curWKMsg.FieldByJSONName("nanos")
	if !ok {
		return internalErrorf("%s has no nanos field", d.curWKMsg.FullName())
	}
	if err := d.sink.PutInt64(d.curSub, secField, sec); err != nil {
		return err
	}
	if err := d.sink.PutInt32(d.curSub, nanosField, nanos); err != nil {
		return err
	}
	d.curWK = wkNone
	return d.valueCompleted()
}

// handleMemberNameComplete resolves a just-captured JSON object member
// name, either as a map key (spec.md §4.7), an ordinary field (spec.md
// §4.9), or — when unrecognized — an UnknownField error or a skipped
// subtree, depending on Options.IgnoreJSONUnknown (spec.md §4.10).
func (d *driverState) handleMemberNameComplete(name []byte) error {
	top := d.stack.top()
	if top == nil {
		return internalErrorf("member name resolved with no open object")
	}
	if top.isMap {
		return d.beginMapEntry(name)
	}
	field, ok := top.m.FieldByJSONName(string(name))
	if !ok {
		if d.opts.IgnoreJSONUnknown {
			d.log.Trace("skipping unknown member", "name", string(name))
			d.pendingSkip = true
			d.expect = esObjColon
			return nil
		}
		return unknownFieldErrorf(string(name))
	}
	d.curField = field
	d.curSub = top.sub
	d.expect = esObjColon
	return nil
}

// advanceSkip consumes a being-discarded JSON value's structure directly
// (spec.md §4.10), reusing the literal/number/string sub-scanners for leaf
// tokens so an unknown member's value is fully resumable across feed()
// calls just like any other value, without ever touching the Sink.
func (d *driverState) advanceSkip(buf []byte, pos int) (int, error) {
	for pos < len(buf) {
		b := buf[pos]
		switch {
		case lexutil.IsWhitespace(b):
			pos++
		case b == '{' || b == '[':
			d.skipDepth++
			pos++
		case b == '}' || b == ']':
			if d.skipDepth == 0 {
				return pos, lexicalErrorf(buf[pos:], "unbalanced closer while skipping a value")
			}
			d.skipDepth--
			pos++
			if d.skipDepth == 0 {
				d.skipActive = false
				return pos, d.skipValueCompleted()
			}
		case b == ':' || b == ',':
			pos++
		case b == '"':
			pos++
			if err := d.mp.startAccumulate(); err != nil {
				return pos, err
			}
			d.str.begin()
			return pos, nil
		case b == '-':
			if pos+1 >= len(buf) {
				return pos, nil
			}
			if buf[pos+1] == 'I' {
				d.lit.begin(literalNegInfinity)
				return pos, nil
			}
			d.num.begin()
			if err := d.mp.startAccumulate(); err != nil {
				return pos, err
			}
			if err := d.cap.begin(pos); err != nil {
				return pos, err
			}
			return pos, nil
		case b >= '0' && b <= '9':
			d.num.begin()
			if err := d.mp.startAccumulate(); err != nil {
				return pos, err
			}
			if err := d.cap.begin(pos); err != nil {
				return pos, err
			}
			return pos, nil
		case b == 't':
			d.lit.begin(literalTrue)
			return pos, nil
		case b == 'f':
			d.lit.begin(literalFalse)
			return pos, nil
		case b == 'n':
			d.lit.begin(literalNull)
			return pos, nil
		case b == 'I':
			d.lit.begin(literalInfinity)
			return pos, nil
		default:
			return pos, lexicalErrorf(buf[pos:], "unexpected character while skipping a value")
		}
	}
	return pos, nil
}

func (d *driverState) skipValueCompleted() error {
	d.curField = nil
	d.curSub = nil
	d.expect = esObjCommaOrEnd
	return nil
}
