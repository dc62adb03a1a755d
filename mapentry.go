package streamdecode

// This file implements proto3 map-field JSON choreography (spec.md §4.7),
// grounded on upb/json/parser.c's is_map/is_mapentry frame handling: a map
// field's JSON object is parsed with ordinary object grammar, but each
// member becomes one mapentry submessage (key from the JSON member name,
// value from the following JSON value) rather than an ordinary field.

// pushMapFrame opens a map field's JSON object body. containerSub is the
// Sink subframe the map's sequence attaches to (the enclosing message for
// an ordinary map field, or the Struct/Value submessage already created
// for a Struct redirect).
func (d *driverState) pushMapFrame(containerSub SubFrame, mapField Field) error {
	seqSub, err := d.sink.StartSeq(containerSub)
	if err != nil {
		return err
	}
	if err := d.pushFrame(frame{
		isMap:    true,
		m:        mapField.Submessage(),
		f:        mapField,
		mapField: mapField,
		sub:      seqSub,
	}); err != nil {
		return err
	}
	d.expect = esObjKeyOrEnd
	return nil
}

// beginMapEntry is invoked once a map object's member-name string has been
// fully captured. It pushes a mapentry frame (spec.md §4.7 step 1-2: a
// StartSubMsg attaching the entry to the map's sequence, then a StartMsg
// opening the entry message itself), decodes and emits the key immediately
// (integer/bool/string/bytes keys all arrive as a quoted JSON string, but
// are emitted through different Sink calls), and arms curField/curSub so
// the JSON value following ':' lands in the entry's value field.
func (d *driverState) beginMapEntry(name []byte) error {
	top := d.stack.top()
	mapEntryMsg := top.m
	keyField := mapEntryMsg.MapEntryKeyField()
	valueField := mapEntryMsg.MapEntryValueField()

	entryAttach, err := d.sink.StartSubMsg(top.sub, top.mapField)
	if err != nil {
		return err
	}
	entrySub, err := d.sink.StartMsg(entryAttach)
	if err != nil {
		return err
	}
	if err := d.pushFrame(frame{
		isMapEntry: true,
		m:          mapEntryMsg,
		f:          valueField,
		mapField:   top.mapField,
		sub:        entrySub,
		attachSub:  entryAttach,
	}); err != nil {
		return err
	}

	if err := d.emitMapKey(entrySub, keyField, name); err != nil {
		return err
	}

	d.curField = valueField
	d.curSub = entrySub
	d.expect = esObjColon
	return nil
}

// emitMapKey converts a map object's member-name text into the key field's
// native type and writes it through the Sink.
func (d *driverState) emitMapKey(entrySub SubFrame, keyField Field, name []byte) error {
	switch keyField.Kind() {
	case KindString, KindBytes:
		strSub, err := d.sink.StartStr(entrySub, keyField)
		if err != nil {
			return err
		}
		if err := d.sink.String(strSub, name); err != nil {
			return err
		}
		return d.sink.EndStr(strSub)
	case KindBool:
		switch string(name) {
		case "true":
			return d.sink.PutBool(entrySub, keyField, true)
		case "false":
			return d.sink.PutBool(entrySub, keyField, false)
		default:
			return typeMismatchErrorf("map key %q is not a valid bool", name)
		}
	case KindInt32, KindInt64, KindUint32, KindUint64:
		return parseNumber(name, keyField, true, func(kind FieldKind, nv numValue) error {
			switch kind {
			case KindInt32:
				return d.sink.PutInt32(entrySub, keyField, int32(nv.i64))
			case KindInt64:
				return d.sink.PutInt64(entrySub, keyField, nv.i64)
			case KindUint32:
				return d.sink.PutUint32(entrySub, keyField, uint32(nv.u64))
			case KindUint64:
				return d.sink.PutUint64(entrySub, keyField, nv.u64)
			default:
				return internalErrorf("unexpected map key kind")
			}
		})
	default:
		return internalErrorf("unsupported map key kind")
	}
}
