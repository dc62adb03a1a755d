package streamdecode

// This file is the container-level half of the resumable state machine
// (spec.md §3/§4.3): token classification, the object/array lexical states,
// and the generic beginValue dispatch that wellknown.go and mapentry.go
// specialize. Grounded on upb/json/parser.c's top-level Ragel states
// (VALUE, OBJ_FIELD, OBJ_MID, ARR_MEMBER, ...), translated to a Go switch
// per the task's explicit instruction not to simulate Ragel tables.

// tokenKind classifies the next JSON lexeme by its leading byte(s), once
// enough input is available to be sure (spec.md §4.3 requires this repo
// never to guess across a feed() boundary).
type tokenKind int

const (
	tokObj tokenKind = iota
	tokArr
	tokStr
	tokNum
	tokLitTrue
	tokLitFalse
	tokLitNull
	tokLitInf
	tokLitNegInf
)

// classifyToken inspects buf[pos] (and, for '-', one byte of lookahead) to
// decide what kind of value is starting. needMore is true when buf does not
// yet hold enough bytes to tell '-123' apart from '-Infinity'; the caller
// must suspend without consuming anything in that case.
func classifyToken(buf []byte, pos int) (kind tokenKind, needMore bool, err error) {
	b := buf[pos]
	switch {
	case b == '{':
		return tokObj, false, nil
	case b == '[':
		return tokArr, false, nil
	case b == '"':
		return tokStr, false, nil
	case b == 't':
		return tokLitTrue, false, nil
	case b == 'f':
		return tokLitFalse, false, nil
	case b == 'n':
		return tokLitNull, false, nil
	case b == 'I':
		return tokLitInf, false, nil
	case b == '-':
		if pos+1 >= len(buf) {
			return 0, true, nil
		}
		if buf[pos+1] == 'I' {
			return tokLitNegInf, false, nil
		}
		return tokNum, false, nil
	case b >= '0' && b <= '9':
		return tokNum, false, nil
	default:
		return 0, false, lexicalErrorf(buf[pos:], "unexpected character %q starting a value", b)
	}
}

// expectState is what the container-level loop is waiting for next. Unlike
// spec.md §3's separate "FSM call stack", this repo folds each container's
// lexical position directly into this single field, restored from the new
// top frame's shape whenever a container closes (see valueCompleted) —
// an explicit simplification recorded in DESIGN.md.
type expectState int

const (
	esDocValue expectState = iota
	esObjKeyOrEnd
	esObjKey
	esObjColon
	esObjValue
	esObjCommaOrEnd
	esArrValueOrEnd
	esArrValue
	esArrCommaOrEnd
	esDone
)

// newSub opens the message-shaped Sink frame a value destined for field f
// should be written into, giving every message two handles the way
// driver.go's document root does: the document root gets its sub straight
// from the caller-supplied existing subframe (itself produced by
// Sink.StartMsg(nil) in Create); every other message attaches to its
// parent with StartSubMsg and then opens itself with StartMsg on that
// attachment, mirroring upb_json_parser's start_subobject/start_object
// pair (spec.md §4.7/§4.8, §8's startmsg/endmsg-pairing invariant). isRoot
// reports which case applied, so the pushed frame knows how to close.
func (d *driverState) newSub(parentSub SubFrame, f Field, existing SubFrame, haveExisting bool) (sub SubFrame, attachSub SubFrame, isRoot bool, err error) {
	if haveExisting {
		return existing, nil, true, nil
	}
	attachSub, err = d.sink.StartSubMsg(parentSub, f)
	if err != nil {
		return nil, nil, false, err
	}
	sub, err = d.sink.StartMsg(attachSub)
	if err != nil {
		return nil, nil, false, err
	}
	return sub, attachSub, false, nil
}

// endSub closes a message-shaped frame with whichever Sink calls match how
// it was opened: every message frame (root included) gets an EndMsg on its
// own sub, and every non-root one additionally gets an EndSubMsg closing
// the StartSubMsg attachment it opened through.
func (d *driverState) endSub(fr *frame) error {
	if err := d.sink.EndMsg(fr.sub); err != nil {
		return err
	}
	if fr.isRoot {
		return nil
	}
	return d.sink.EndSubMsg(fr.attachSub)
}

// pushObjectFrame opens an ordinary (non-map, non-well-known) submessage's
// JSON object body.
func (d *driverState) pushObjectFrame(msg Message, sub, attachSub SubFrame, isRoot bool) error {
	if err := d.pushFrame(frame{m: msg, sub: sub, attachSub: attachSub, isRoot: isRoot}); err != nil {
		return err
	}
	d.expect = esObjKeyOrEnd
	return nil
}

// beginValue is the single entry point for "a JSON value is expected here,
// and it is destined for field f within parentSub" — called for object
// member values, array elements, map entry values, and (via existing/
// haveExisting) the document root itself. null is intercepted first since
// it is valid for every field shape and usually means simple field absence.
func (d *driverState) beginValue(f Field, parentSub SubFrame, tok tokenKind, existing SubFrame, haveExisting bool) error {
	if tok == tokLitNull {
		return d.beginNullValue(f, parentSub, existing, haveExisting)
	}
	if f.IsMap() {
		if tok != tokObj {
			return typeMismatchErrorf("a map field requires a JSON object")
		}
		return d.pushMapFrame(parentSub, f)
	}
	// An array element arrives here with the array frame's own repeated
	// field, so the JSON-array requirement applies only outside an array.
	inArray := d.expect == esArrValueOrEnd || d.expect == esArrValue
	if f.IsRepeated() && !inArray {
		if tok != tokArr {
			return typeMismatchErrorf("a repeated field requires a JSON array")
		}
		seqSub, err := d.sink.StartSeq(parentSub)
		if err != nil {
			return err
		}
		if err := d.pushFrame(frame{isArr: true, f: f, sub: seqSub}); err != nil {
			return err
		}
		d.expect = esArrValueOrEnd
		return nil
	}
	if f.Kind() == KindMessage {
		return d.beginMessageValue(f, parentSub, tok, existing, haveExisting)
	}
	return d.beginScalarValue(f, parentSub, tok)
}

// beginNullValue consumes a JSON `null` literal. For an ordinary field this
// means field absence (spec.md §4.9): the value is simply skipped. The one
// exception is a field rewritten to google.protobuf.Value (spec.md §4.8),
// where `null` is itself meaningful and sets null_value.
func (d *driverState) beginNullValue(f Field, parentSub SubFrame, existing SubFrame, haveExisting bool) error {
	if f.Kind() == KindMessage && !f.IsMap() && !f.IsRepeated() {
		if msg := f.Submessage(); msg.IsValue() {
			sub, attachSub, isRoot, err := d.newSub(parentSub, f, existing, haveExisting)
			if err != nil {
				return err
			}
			if err := d.pushWrapperFrame(msg, sub, attachSub, isRoot); err != nil {
				return err
			}
			nullField, ok := msg.FieldByJSONName("nullValue")
			if !ok {
				return internalErrorf("Value has no nullValue field")
			}
			d.curWK = wkValueNull
			d.curField = nullField
			d.curSub = sub
			d.lit.begin(literalNull)
			return nil
		}
	}
	d.curWK = wkSkip
	d.lit.begin(literalNull)
	return nil
}

// beginScalarValue handles any non-message field's value.
func (d *driverState) beginScalarValue(f Field, parentSub SubFrame, tok tokenKind) error {
	d.curWK = wkNone
	d.curField = f
	d.curSub = parentSub
	return d.dispatchScalarToken(f, parentSub, tok)
}

// dispatchScalarToken starts whichever low-level sub-scanner the token
// calls for, having already validated/assigned curField and curSub.
func (d *driverState) dispatchScalarToken(f Field, parentSub SubFrame, tok tokenKind) error {
	switch tok {
	case tokStr:
		return d.beginStringValue(f, parentSub)
	case tokNum:
		switch f.Kind() {
		case KindInt32, KindInt64, KindUint32, KindUint64, KindFloat, KindDouble:
		default:
			return typeMismatchErrorf("a numeric value was given for a non-numeric field")
		}
		d.num.begin()
		if err := d.mp.startAccumulate(); err != nil {
			return err
		}
		if err := d.cap.begin(d.pos); err != nil {
			return err
		}
		return nil
	case tokLitTrue, tokLitFalse:
		if f.Kind() != KindBool {
			return typeMismatchErrorf("a boolean value was given for a non-bool field")
		}
		if tok == tokLitTrue {
			d.lit.begin(literalTrue)
		} else {
			d.lit.begin(literalFalse)
		}
		return nil
	case tokLitInf, tokLitNegInf:
		if f.Kind() != KindFloat && f.Kind() != KindDouble {
			return typeMismatchErrorf("Infinity is only valid for a float or double field")
		}
		if tok == tokLitInf {
			d.lit.begin(literalInfinity)
		} else {
			d.lit.begin(literalNegInfinity)
		}
		return nil
	default:
		return internalErrorf("unexpected token in a scalar context")
	}
}

// beginStringValue decides whether a string's content should stream
// straight to the sink (proto3 string fields) or must be fully accumulated
// before it can be interpreted (spec.md §4.2's two multipart consumer
// shapes; bytes/enum/quoted-number all need the complete text first).
func (d *driverState) beginStringValue(f Field, parentSub SubFrame) error {
	switch f.Kind() {
	case KindString:
		return d.startFieldString(f, parentSub)
	case KindBytes, KindEnum, KindInt32, KindInt64, KindUint32, KindUint64, KindFloat, KindDouble:
		return d.startAccumulateString()
	default:
		return typeMismatchErrorf("a string value was given for an unsupported field kind")
	}
}

func (d *driverState) startFieldString(f Field, parentSub SubFrame) error {
	strSub, err := d.sink.StartStr(parentSub, f)
	if err != nil {
		return err
	}
	d.curStrSub = strSub
	if err := d.mp.startPushEager(strSub, f); err != nil {
		return err
	}
	d.str.begin()
	return nil
}

func (d *driverState) startAccumulateString() error {
	if err := d.mp.startAccumulate(); err != nil {
		return err
	}
	d.str.begin()
	return nil
}

// closeObject handles a lexical '}'.
func (d *driverState) closeObject() error {
	top := d.stack.top()
	if top == nil || top.isArr {
		return lexicalErrorf(nil, "unexpected '}'")
	}
	d.popFrame()
	if top.isMap {
		if err := d.sink.EndSeq(top.sub); err != nil {
			return err
		}
	} else if err := d.endSub(top); err != nil {
		return err
	}
	return d.valueCompleted()
}

// closeArray handles a lexical ']'.
func (d *driverState) closeArray() error {
	top := d.stack.top()
	if top == nil || !top.isArr {
		return lexicalErrorf(nil, "unexpected ']'")
	}
	d.popFrame()
	if err := d.sink.EndSeq(top.sub); err != nil {
		return err
	}
	return d.valueCompleted()
}

// valueCompleted runs once a leaf value finishes (a scalar Put, or a
// container close that just ran). It unwinds any purely-semantic frames
// that have no lexical closer of their own (a single map entry, a
// well-known-type wrapper) and then restores expect from whatever
// lexically-real frame is left, or esDone if the document is finished.
func (d *driverState) valueCompleted() error {
	for {
		top := d.stack.top()
		if top == nil {
			d.expect = esDone
			return nil
		}
		if top.isMapEntry {
			d.popFrame()
			if err := d.endSub(top); err != nil {
				return err
			}
			continue
		}
		if top.isWKWrapper {
			d.popFrame()
			if err := d.endSub(top); err != nil {
				return err
			}
			continue
		}
		if top.isArr {
			d.expect = esArrCommaOrEnd
		} else {
			d.expect = esObjCommaOrEnd
		}
		return nil
	}
}
