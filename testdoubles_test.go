package streamdecode

// Hand-rolled Message/Field/Sink test doubles (SPEC_FULL.md DOMAIN STACK:
// "satisfied in tests by an in-memory recorder"), in the teacher's own
// table-driven testing style rather than against a real protoreflect
// schema — this package's driver logic is independent of which descriptor
// library backs Message/Field, so these doubles exercise it directly.

import "fmt"

// fakeField is a Field built by hand for a test case.
type fakeField struct {
	name     string
	kind     FieldKind
	repeated bool
	isMap    bool
	sub      *fakeMessage
	enumVals map[string]int32
}

func (f *fakeField) Kind() FieldKind    { return f.kind }
func (f *fakeField) IsRepeated() bool   { return f.repeated }
func (f *fakeField) IsMap() bool        { return f.isMap }
func (f *fakeField) Submessage() Message {
	if f.sub == nil {
		return nil
	}
	return f.sub
}
func (f *fakeField) EnumValueByName(name string) (int32, bool) {
	v, ok := f.enumVals[name]
	return v, ok
}

// fakeMessage is a Message built by hand for a test case.
type fakeMessage struct {
	fullName                                              string
	fields                                                map[string]*fakeField
	wrapper, value, structM, listValue, duration, timestamp bool
	mapKey, mapVal                                        *fakeField
}

func newFakeMessage(name string) *fakeMessage {
	return &fakeMessage{fullName: name, fields: map[string]*fakeField{}}
}

func (m *fakeMessage) addField(f *fakeField) *fakeMessage {
	m.fields[f.name] = f
	return m
}

func (m *fakeMessage) FullName() string { return m.fullName }
func (m *fakeMessage) FieldByJSONName(name string) (Field, bool) {
	f, ok := m.fields[name]
	if !ok {
		return nil, false
	}
	return f, true
}
func (m *fakeMessage) IsWrapper() bool    { return m.wrapper }
func (m *fakeMessage) IsValue() bool      { return m.value }
func (m *fakeMessage) IsStruct() bool     { return m.structM }
func (m *fakeMessage) IsListValue() bool  { return m.listValue }
func (m *fakeMessage) IsDuration() bool   { return m.duration }
func (m *fakeMessage) IsTimestamp() bool  { return m.timestamp }
func (m *fakeMessage) MapEntryKeyField() Field { return m.mapKey }
func (m *fakeMessage) MapEntryValueField() Field { return m.mapVal }

// newWrapperMessage builds a fakeMessage shaped like one of the
// wrapperspb.*Value messages: a single "value" field of the given kind.
func newWrapperMessage(name string, valueKind FieldKind) *fakeMessage {
	return newFakeMessage(name).addField(&fakeField{name: "value", kind: valueKind})
	// IsWrapper is set by the caller, since the zero-value bool fields
	// can't be set from inside this constructor chain cleanly otherwise.
}

// newMapEntryMessage builds the synthetic mapentry Message a map field's
// Submessage() returns, per spec.md §4.7.
func newMapEntryMessage(keyKind FieldKind, valueField *fakeField) *fakeMessage {
	key := &fakeField{name: "key", kind: keyKind}
	m := newFakeMessage("mapentry")
	m.mapKey = key
	m.mapVal = valueField
	return m
}

// recFrame is the opaque SubFrame handle recSink hands back; its only
// purpose is to give every nesting level a distinguishable identity in the
// recorded event log.
type recFrame struct{ id int }

// recSink is the in-memory recorder Sink: every call appends a line
// describing itself to events, using fieldLabel to name fields (Field
// carries no Name() method of its own — spec.md §6 deliberately keeps it
// minimal — so tests label fakeFields by the name they were built with).
type recSink struct {
	events []string
	next   int
}

func (s *recSink) frame() *recFrame {
	s.next++
	return &recFrame{id: s.next}
}

func frameID(f SubFrame) int {
	if f == nil {
		return 0
	}
	rf, ok := f.(*recFrame)
	if !ok {
		return -1
	}
	return rf.id
}

func fieldLabel(f Field) string {
	if f == nil {
		return "<nil>"
	}
	if ff, ok := f.(*fakeField); ok {
		return ff.name
	}
	if _, ok := f.(rootField); ok {
		return "<root>"
	}
	return "<unknown>"
}

func (s *recSink) log(format string, args ...interface{}) {
	s.events = append(s.events, fmt.Sprintf(format, args...))
}

func (s *recSink) StartMsg(frame SubFrame) (SubFrame, error) {
	nf := s.frame()
	s.log("StartMsg(%d)=%d", frameID(frame), nf.id)
	return nf, nil
}

func (s *recSink) EndMsg(frame SubFrame) error {
	s.log("EndMsg(%d)", frameID(frame))
	return nil
}

func (s *recSink) StartSeq(frame SubFrame) (SubFrame, error) {
	nf := s.frame()
	s.log("StartSeq(%d)=%d", frameID(frame), nf.id)
	return nf, nil
}

func (s *recSink) EndSeq(frame SubFrame) error {
	s.log("EndSeq(%d)", frameID(frame))
	return nil
}

func (s *recSink) StartSubMsg(frame SubFrame, field Field) (SubFrame, error) {
	nf := s.frame()
	s.log("StartSubMsg(%d,%s)=%d", frameID(frame), fieldLabel(field), nf.id)
	return nf, nil
}

func (s *recSink) EndSubMsg(frame SubFrame) error {
	s.log("EndSubMsg(%d)", frameID(frame))
	return nil
}

func (s *recSink) StartStr(frame SubFrame, field Field) (SubFrame, error) {
	nf := s.frame()
	s.log("StartStr(%d,%s)=%d", frameID(frame), fieldLabel(field), nf.id)
	return nf, nil
}

func (s *recSink) String(frame SubFrame, chunk []byte) error {
	s.log("String(%d,%q)", frameID(frame), chunk)
	return nil
}

func (s *recSink) EndStr(frame SubFrame) error {
	s.log("EndStr(%d)", frameID(frame))
	return nil
}

func (s *recSink) PutBool(frame SubFrame, field Field, v bool) error {
	s.log("PutBool(%d,%s,%v)", frameID(frame), fieldLabel(field), v)
	return nil
}

func (s *recSink) PutInt32(frame SubFrame, field Field, v int32) error {
	s.log("PutInt32(%d,%s,%d)", frameID(frame), fieldLabel(field), v)
	return nil
}

func (s *recSink) PutInt64(frame SubFrame, field Field, v int64) error {
	s.log("PutInt64(%d,%s,%d)", frameID(frame), fieldLabel(field), v)
	return nil
}

func (s *recSink) PutUint32(frame SubFrame, field Field, v uint32) error {
	s.log("PutUint32(%d,%s,%d)", frameID(frame), fieldLabel(field), v)
	return nil
}

func (s *recSink) PutUint64(frame SubFrame, field Field, v uint64) error {
	s.log("PutUint64(%d,%s,%d)", frameID(frame), fieldLabel(field), v)
	return nil
}

func (s *recSink) PutFloat(frame SubFrame, field Field, v float32) error {
	s.log("PutFloat(%d,%s,%v)", frameID(frame), fieldLabel(field), v)
	return nil
}

func (s *recSink) PutDouble(frame SubFrame, field Field, v float64) error {
	s.log("PutDouble(%d,%s,%v)", frameID(frame), fieldLabel(field), v)
	return nil
}

func (s *recSink) PutEnum(frame SubFrame, field Field, v int32) error {
	s.log("PutEnum(%d,%s,%d)", frameID(frame), fieldLabel(field), v)
	return nil
}

// decodeAll feeds the whole of input through a fresh Driver for root/opts,
// growing the live buffer by chunkSize source bytes at a time (or handing
// it all over in one shot when chunkSize <= 0), so a small chunkSize
// exercises the property that splitting a document across arbitrary Feed
// boundaries produces the same event log as feeding it whole, up to how a
// string's text is divided among String calls (see normalizeStringRuns in
// driver_test.go) (spec.md §8).
func decodeAll(t interface {
	Helper()
	Fatalf(format string, args ...interface{})
}, root Message, opts Options, input string, chunkSize int) []string {
	t.Helper()
	sink := &recSink{}
	d, err := Create(root, sink, opts)
	if err != nil {
		t.Fatalf("Create: %s", err)
	}
	data := []byte(input)
	if chunkSize <= 0 {
		chunkSize = len(data)
	}
	var pending []byte
	offset := 0
	for {
		end := offset + chunkSize
		if end > len(data) {
			end = len(data)
		}
		pending = append(pending, data[offset:end]...)
		offset = end
		for len(pending) > 0 {
			n, err := d.Feed(pending)
			if err != nil {
				t.Fatalf("Feed(%q): %s", pending, err)
			}
			pending = pending[n:]
			if n == 0 {
				break
			}
		}
		if offset >= len(data) {
			break
		}
	}
	if err := d.End(); err != nil {
		t.Fatalf("End: %s", err)
	}
	return sink.events
}
