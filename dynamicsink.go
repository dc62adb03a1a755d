package streamdecode

// DynamicSink is the reference Sink implementation (SPEC_FULL.md DOMAIN
// STACK): it builds a google.golang.org/protobuf/types/dynamicpb.Message
// tree directly from the driver's callbacks, with no generated code. It is
// what cmd/pbjson-decode uses to turn decoded JSON into a binary-encoded
// protobuf message.
//
// Every SubFrame it hands back from StartMsg/StartSeq/StartSubMsg is one of
// three concrete shapes below, distinguishing "write straight into a
// message field", "append to a repeated field", and "fill in one map
// entry" — the three destinations any Put/Start* call in this package's
// driver can ever target. StartStr additionally hands back a dynStrFrame
// that collects one string's chunks until EndStr writes it to one of those.

import (
	"bytes"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// NewDynamicSink builds a Sink that decodes into a fresh message of the
// given descriptor.
func NewDynamicSink(desc protoreflect.MessageDescriptor) *DynamicSink {
	return &DynamicSink{root: dynamicpb.NewMessage(desc)}
}

type DynamicSink struct {
	root *dynamicpb.Message
}

// Message returns the decoded message, valid once Driver.End has succeeded.
func (s *DynamicSink) Message() protoreflect.Message {
	return s.root
}

type dynMsgFrame struct {
	msg protoreflect.Message
}

// dynListFrame backs both StartSeq outcomes: an ordinary repeated field and
// a map field (map fields are themselves entered via StartSeq/StartSubMsg
// per spec.md §4.7's map-as-mapentry-sequence choreography). Which one
// applies is only known once the first element/entry arrives, since
// StartSeq's signature carries no field — so resolution is lazy and cached.
type dynListFrame struct {
	parent protoreflect.Message
	list   protoreflect.List
	pmap   protoreflect.Map
}

func (f *dynListFrame) resolveList(fd protoreflect.FieldDescriptor) protoreflect.List {
	if f.list == nil {
		f.list = f.parent.Mutable(fd).List()
	}
	return f.list
}

func (f *dynListFrame) resolveMap(fd protoreflect.FieldDescriptor) protoreflect.Map {
	if f.pmap == nil {
		f.pmap = f.parent.Mutable(fd).Map()
	}
	return f.pmap
}

// dynMapEntryFrame accumulates one mapentry's key and value. The key always
// arrives first (mapentry.go emits it immediately on the member name), so
// by the time a value call arrives the key is already resolved.
type dynMapEntryFrame struct {
	pmap  protoreflect.Map
	keyFD protoreflect.FieldDescriptor
	key   protoreflect.MapKey
}

type dynStrFrame struct {
	dest SubFrame
	fd   protoreflect.FieldDescriptor
	buf  bytes.Buffer
}

func fieldDesc(f Field) protoreflect.FieldDescriptor {
	return f.(protoField).desc
}

// StartMsg opens the document root (frame == nil) or, for every other
// message, simply hands back the frame StartSubMsg already produced for
// it: StartSubMsg's three cases (dynMsgFrame, dynMapEntryFrame via a map
// field, dynMsgFrame via a repeated field's new element) already resolved
// or materialized the destination, so there is nothing left for StartMsg
// itself to do but complete the StartSubMsg/StartMsg pairing the driver
// expects of every message-shaped frame.
func (s *DynamicSink) StartMsg(frame SubFrame) (SubFrame, error) {
	if frame == nil {
		return &dynMsgFrame{msg: s.root}, nil
	}
	return frame, nil
}

func (s *DynamicSink) EndMsg(frame SubFrame) error { return nil }

func (s *DynamicSink) StartSeq(frame SubFrame) (SubFrame, error) {
	mf, ok := frame.(*dynMsgFrame)
	if !ok {
		return nil, internalErrorf("StartSeq called on a frame with no message to attach a list to")
	}
	return &dynListFrame{parent: mf.msg}, nil
}

func (s *DynamicSink) EndSeq(frame SubFrame) error { return nil }

func (s *DynamicSink) StartSubMsg(frame SubFrame, field Field) (SubFrame, error) {
	fd := fieldDesc(field)
	switch fr := frame.(type) {
	case *dynMsgFrame:
		return &dynMsgFrame{msg: fr.msg.Mutable(fd).Message()}, nil
	case *dynListFrame:
		if fd.IsMap() {
			return &dynMapEntryFrame{pmap: fr.resolveMap(fd), keyFD: fd.MapKey()}, nil
		}
		list := fr.resolveList(fd)
		elem := list.NewElement()
		list.Append(elem)
		return &dynMsgFrame{msg: elem.Message()}, nil
	case *dynMapEntryFrame:
		return &dynMsgFrame{msg: fr.pmap.Mutable(fr.key).Message()}, nil
	default:
		return nil, internalErrorf("StartSubMsg called on an unsupported frame")
	}
}

func (s *DynamicSink) EndSubMsg(frame SubFrame) error { return nil }

func (s *DynamicSink) StartStr(frame SubFrame, field Field) (SubFrame, error) {
	return &dynStrFrame{dest: frame, fd: fieldDesc(field)}, nil
}

func (s *DynamicSink) String(frame SubFrame, chunk []byte) error {
	sf, ok := frame.(*dynStrFrame)
	if !ok {
		return internalErrorf("String called on a non-string frame")
	}
	sf.buf.Write(chunk)
	return nil
}

func (s *DynamicSink) EndStr(frame SubFrame) error {
	sf, ok := frame.(*dynStrFrame)
	if !ok {
		return internalErrorf("EndStr called on a non-string frame")
	}
	var v protoreflect.Value
	if sf.fd.Kind() == protoreflect.BytesKind {
		v = protoreflect.ValueOfBytes(append([]byte(nil), sf.buf.Bytes()...))
	} else {
		v = protoreflect.ValueOfString(sf.buf.String())
	}
	return setValue(sf.dest, sf.fd, v)
}

// setValue routes a completed scalar to whichever destination shape frame
// turns out to be: an ordinary field set, a list append, or resolving (key)
// / committing (value) one map entry.
func setValue(frame SubFrame, fd protoreflect.FieldDescriptor, v protoreflect.Value) error {
	switch fr := frame.(type) {
	case *dynMsgFrame:
		fr.msg.Set(fd, v)
		return nil
	case *dynListFrame:
		fr.resolveList(fd).Append(v)
		return nil
	case *dynMapEntryFrame:
		if fd == fr.keyFD {
			fr.key = v.MapKey()
			return nil
		}
		fr.pmap.Set(fr.key, v)
		return nil
	default:
		return internalErrorf("cannot write a value onto an unsupported frame")
	}
}

func (s *DynamicSink) PutBool(frame SubFrame, field Field, v bool) error {
	return setValue(frame, fieldDesc(field), protoreflect.ValueOfBool(v))
}

func (s *DynamicSink) PutInt32(frame SubFrame, field Field, v int32) error {
	return setValue(frame, fieldDesc(field), protoreflect.ValueOfInt32(v))
}

func (s *DynamicSink) PutInt64(frame SubFrame, field Field, v int64) error {
	return setValue(frame, fieldDesc(field), protoreflect.ValueOfInt64(v))
}

func (s *DynamicSink) PutUint32(frame SubFrame, field Field, v uint32) error {
	return setValue(frame, fieldDesc(field), protoreflect.ValueOfUint32(v))
}

func (s *DynamicSink) PutUint64(frame SubFrame, field Field, v uint64) error {
	return setValue(frame, fieldDesc(field), protoreflect.ValueOfUint64(v))
}

func (s *DynamicSink) PutFloat(frame SubFrame, field Field, v float32) error {
	return setValue(frame, fieldDesc(field), protoreflect.ValueOfFloat32(v))
}

func (s *DynamicSink) PutDouble(frame SubFrame, field Field, v float64) error {
	return setValue(frame, fieldDesc(field), protoreflect.ValueOfFloat64(v))
}

func (s *DynamicSink) PutEnum(frame SubFrame, field Field, v int32) error {
	return setValue(frame, fieldDesc(field), protoreflect.ValueOfEnum(protoreflect.EnumNumber(v)))
}
