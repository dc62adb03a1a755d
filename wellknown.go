package streamdecode

// This file implements the well-known-type rewrites of spec.md §4.8,
// grounded on upb/json/parser.c's start_wrapper_object/end_wrapper_object,
// start_value_object/end_value_object, start_structvalue_object,
// start_listvalue_object and start_subobject_full/end_subobject_full.
//
// upb drives these rewrites from its Ragel byte-classification states;
// this port drives them from beginValue's already-classified tokenKind, one
// switch per well-known shape, which is the same "decide from the token you
// already have" idiom fsm.go's generic dispatch uses everywhere else.

// wellKnownRewriteName names which §4.8 rewrite applies to msg, or ""
// for an ordinary message with no rewrite.
func wellKnownRewriteName(msg Message) string {
	switch {
	case msg.IsWrapper():
		return "wrapper"
	case msg.IsValue():
		return "value"
	case msg.IsStruct():
		return "struct"
	case msg.IsListValue():
		return "list-value"
	case msg.IsDuration():
		return "duration"
	case msg.IsTimestamp():
		return "timestamp"
	default:
		return ""
	}
}

// beginMessageValue handles a value destined for a KindMessage field,
// dispatching to the well-known-type rewrite that applies, or to ordinary
// submessage entry.
func (d *driverState) beginMessageValue(f Field, parentSub SubFrame, tok tokenKind, existing SubFrame, haveExisting bool) error {
	msg := f.Submessage()
	if rewrite := wellKnownRewriteName(msg); rewrite != "" {
		d.log.Debug("well-known-type rewrite", "type", msg.FullName(), "rewrite", rewrite)
	}
	switch {
	case msg.IsWrapper():
		return d.beginWrapperValue(f, msg, parentSub, tok, existing, haveExisting)
	case msg.IsValue():
		return d.beginAnyValue(f, msg, parentSub, tok, existing, haveExisting)
	case msg.IsStruct():
		if tok != tokObj {
			return typeMismatchErrorf("a Struct value requires a JSON object")
		}
		sub, attachSub, isRoot, err := d.newSub(parentSub, f, existing, haveExisting)
		if err != nil {
			return err
		}
		if err := d.pushWrapperFrame(msg, sub, attachSub, isRoot); err != nil {
			return err
		}
		return d.enterStructFields(sub, msg)
	case msg.IsListValue():
		if tok != tokArr {
			return typeMismatchErrorf("a ListValue requires a JSON array")
		}
		sub, attachSub, isRoot, err := d.newSub(parentSub, f, existing, haveExisting)
		if err != nil {
			return err
		}
		if err := d.pushWrapperFrame(msg, sub, attachSub, isRoot); err != nil {
			return err
		}
		return d.enterListValues(sub, msg)
	case msg.IsDuration():
		if tok != tokStr {
			return typeMismatchErrorf("a Duration value requires a JSON string")
		}
		sub, attachSub, isRoot, err := d.newSub(parentSub, f, existing, haveExisting)
		if err != nil {
			return err
		}
		if err := d.pushWrapperFrame(msg, sub, attachSub, isRoot); err != nil {
			return err
		}
		d.curWK = wkDuration
		d.curWKMsg = msg
		d.curSub = sub
		return d.startAccumulateString()
	case msg.IsTimestamp():
		if tok != tokStr {
			return typeMismatchErrorf("a Timestamp value requires a JSON string")
		}
		sub, attachSub, isRoot, err := d.newSub(parentSub, f, existing, haveExisting)
		if err != nil {
			return err
		}
		if err := d.pushWrapperFrame(msg, sub, attachSub, isRoot); err != nil {
			return err
		}
		d.curWK = wkTimestamp
		d.curWKMsg = msg
		d.curSub = sub
		return d.startAccumulateString()
	default:
		if tok != tokObj {
			return typeMismatchErrorf("a message value requires a JSON object")
		}
		sub, attachSub, isRoot, err := d.newSub(parentSub, f, existing, haveExisting)
		if err != nil {
			return err
		}
		return d.pushObjectFrame(msg, sub, attachSub, isRoot)
	}
}

// beginWrapperValue handles wrapperspb.{Double,Float,Int64,UInt64,Int32,
// UInt32,Bool,String,Bytes}Value, represented in JSON as the bare scalar
// that its "value" field holds (spec.md §4.8) — never as a JSON object.
func (d *driverState) beginWrapperValue(f Field, msg Message, parentSub SubFrame, tok tokenKind, existing SubFrame, haveExisting bool) error {
	if tok == tokObj || tok == tokArr {
		return typeMismatchErrorf("a wrapper value must be a JSON scalar")
	}
	sub, attachSub, isRoot, err := d.newSub(parentSub, f, existing, haveExisting)
	if err != nil {
		return err
	}
	if err := d.pushWrapperFrame(msg, sub, attachSub, isRoot); err != nil {
		return err
	}
	valueField, ok := msg.FieldByJSONName("value")
	if !ok {
		return internalErrorf("wrapper message %s has no value field", msg.FullName())
	}
	d.curWK = wkNone
	d.curField = valueField
	d.curSub = sub
	return d.dispatchScalarToken(valueField, sub, tok)
}

// beginAnyValue handles google.protobuf.Value, whose JSON representation
// determines which of its six oneof members gets set (spec.md §4.8).
func (d *driverState) beginAnyValue(f Field, msg Message, parentSub SubFrame, tok tokenKind, existing SubFrame, haveExisting bool) error {
	sub, attachSub, isRoot, err := d.newSub(parentSub, f, existing, haveExisting)
	if err != nil {
		return err
	}
	if err := d.pushWrapperFrame(msg, sub, attachSub, isRoot); err != nil {
		return err
	}

	switch tok {
	case tokObj:
		structField, ok := msg.FieldByJSONName("structValue")
		if !ok {
			return internalErrorf("Value has no structValue field")
		}
		sattach, err := d.sink.StartSubMsg(sub, structField)
		if err != nil {
			return err
		}
		ssub, err := d.sink.StartMsg(sattach)
		if err != nil {
			return err
		}
		if err := d.pushWrapperFrame(structField.Submessage(), ssub, sattach, false); err != nil {
			return err
		}
		return d.enterStructFields(ssub, structField.Submessage())
	case tokArr:
		listField, ok := msg.FieldByJSONName("listValue")
		if !ok {
			return internalErrorf("Value has no listValue field")
		}
		lattach, err := d.sink.StartSubMsg(sub, listField)
		if err != nil {
			return err
		}
		lsub, err := d.sink.StartMsg(lattach)
		if err != nil {
			return err
		}
		if err := d.pushWrapperFrame(listField.Submessage(), lsub, lattach, false); err != nil {
			return err
		}
		return d.enterListValues(lsub, listField.Submessage())
	case tokStr:
		strField, ok := msg.FieldByJSONName("stringValue")
		if !ok {
			return internalErrorf("Value has no stringValue field")
		}
		d.curWK = wkNone
		d.curField = strField
		d.curSub = sub
		return d.dispatchScalarToken(strField, sub, tok)
	case tokNum, tokLitInf, tokLitNegInf:
		numField, ok := msg.FieldByJSONName("numberValue")
		if !ok {
			return internalErrorf("Value has no numberValue field")
		}
		d.curWK = wkNone
		d.curField = numField
		d.curSub = sub
		return d.dispatchScalarToken(numField, sub, tok)
	case tokLitTrue, tokLitFalse:
		boolField, ok := msg.FieldByJSONName("boolValue")
		if !ok {
			return internalErrorf("Value has no boolValue field")
		}
		d.curWK = wkNone
		d.curField = boolField
		d.curSub = sub
		return d.dispatchScalarToken(boolField, sub, tok)
	default:
		return internalErrorf("unexpected token classifying a google.protobuf.Value")
	}
}

// enterStructFields redirects a Struct's own '{...}' body onto its "fields"
// map<string, Value>, exactly as upb's start_structvalue_object does: a
// Struct IS its fields map, as far as the JSON grammar is concerned.
func (d *driverState) enterStructFields(structSub SubFrame, structMsg Message) error {
	fieldsField, ok := structMsg.FieldByJSONName("fields")
	if !ok {
		return internalErrorf("Struct has no fields field")
	}
	return d.pushMapFrame(structSub, fieldsField)
}

// enterListValues redirects a ListValue's own '[...]' body onto its
// "values" repeated Value field, mirroring enterStructFields for arrays.
func (d *driverState) enterListValues(listSub SubFrame, listMsg Message) error {
	valuesField, ok := listMsg.FieldByJSONName("values")
	if !ok {
		return internalErrorf("ListValue has no values field")
	}
	seqSub, err := d.sink.StartSeq(listSub)
	if err != nil {
		return err
	}
	if err := d.pushFrame(frame{isArr: true, f: valuesField, sub: seqSub}); err != nil {
		return err
	}
	d.expect = esArrValueOrEnd
	return nil
}

// pushWrapperFrame records a transparent wrapper frame (see frame.isWKWrapper)
// so valueCompleted closes it automatically once its content is done.
func (d *driverState) pushWrapperFrame(msg Message, sub, attachSub SubFrame, isRoot bool) error {
	return d.pushFrame(frame{m: msg, sub: sub, attachSub: attachSub, isWKWrapper: true, isRoot: isRoot})
}
