package streamdecode

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FieldKind is the subset of proto3 field shapes the decoder cares about.
type FieldKind int

const (
	KindBool FieldKind = iota
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindFloat
	KindDouble
	KindString
	KindBytes
	KindEnum
	KindMessage
)

// Field is the read-only view of a single message field the decoder
// consults while resolving a JSON member. See spec.md §6.
type Field interface {
	Kind() FieldKind
	IsRepeated() bool
	IsMap() bool
	Submessage() Message // valid when Kind() == KindMessage
	EnumValueByName(name string) (int32, bool)
}

// Message is the read-only view of a message descriptor the decoder
// consults while resolving JSON member names. See spec.md §6.
type Message interface {
	FullName() string
	FieldByJSONName(name string) (Field, bool)

	IsWrapper() bool
	IsValue() bool
	IsStruct() bool
	IsListValue() bool
	IsDuration() bool
	IsTimestamp() bool

	// MapEntryKeyField and MapEntryValueField are valid only when this
	// Message is itself a mapentry message (Field.IsMap() was true for the
	// field that produced it).
	MapEntryKeyField() Field
	MapEntryValueField() Field
}

// protoMessage adapts a protoreflect.MessageDescriptor to Message. This is
// the descriptor collaborator's concrete implementation for ordinary
// protobuf-go schemas (see SPEC_FULL.md DOMAIN STACK).
type protoMessage struct {
	desc protoreflect.MessageDescriptor
}

// NewMessage wraps a protoreflect.MessageDescriptor as a Message.
func NewMessage(desc protoreflect.MessageDescriptor) Message {
	return protoMessage{desc: desc}
}

func (m protoMessage) FullName() string {
	return string(m.desc.FullName())
}

func (m protoMessage) FieldByJSONName(name string) (Field, bool) {
	fields := m.desc.Fields()
	if fd := fields.ByJSONName(name); fd != nil {
		return protoField{desc: fd}, true
	}
	// A field's declared (proto) name must also be accepted, per spec.md
	// §4.9, even when json_name differs from it.
	if fd := fields.ByTextName(name); fd != nil {
		return protoField{desc: fd}, true
	}
	return nil, false
}

func (m protoMessage) IsWrapper() bool {
	switch m.desc.FullName() {
	case wrapperFullName((*wrapperspb.DoubleValue)(nil)),
		wrapperFullName((*wrapperspb.FloatValue)(nil)),
		wrapperFullName((*wrapperspb.Int64Value)(nil)),
		wrapperFullName((*wrapperspb.UInt64Value)(nil)),
		wrapperFullName((*wrapperspb.Int32Value)(nil)),
		wrapperFullName((*wrapperspb.UInt32Value)(nil)),
		wrapperFullName((*wrapperspb.BoolValue)(nil)),
		wrapperFullName((*wrapperspb.StringValue)(nil)),
		wrapperFullName((*wrapperspb.BytesValue)(nil)):
		return true
	}
	return false
}

func (m protoMessage) IsValue() bool {
	return m.desc.FullName() == (&structpb.Value{}).ProtoReflect().Descriptor().FullName()
}

func (m protoMessage) IsStruct() bool {
	return m.desc.FullName() == (&structpb.Struct{}).ProtoReflect().Descriptor().FullName()
}

func (m protoMessage) IsListValue() bool {
	return m.desc.FullName() == (&structpb.ListValue{}).ProtoReflect().Descriptor().FullName()
}

func (m protoMessage) IsDuration() bool {
	return m.desc.FullName() == (&durationpb.Duration{}).ProtoReflect().Descriptor().FullName()
}

func (m protoMessage) IsTimestamp() bool {
	return m.desc.FullName() == (&timestamppb.Timestamp{}).ProtoReflect().Descriptor().FullName()
}

func (m protoMessage) MapEntryKeyField() Field {
	return protoField{desc: m.desc.Fields().ByNumber(1)}
}

func (m protoMessage) MapEntryValueField() Field {
	return protoField{desc: m.desc.Fields().ByNumber(2)}
}

func wrapperFullName(msg interface{ ProtoReflect() protoreflect.Message }) protoreflect.FullName {
	return msg.ProtoReflect().Descriptor().FullName()
}

type protoField struct {
	desc protoreflect.FieldDescriptor
}

func (f protoField) Kind() FieldKind {
	switch f.desc.Kind() {
	case protoreflect.BoolKind:
		return KindBool
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return KindInt32
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return KindInt64
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return KindUint32
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return KindUint64
	case protoreflect.FloatKind:
		return KindFloat
	case protoreflect.DoubleKind:
		return KindDouble
	case protoreflect.StringKind:
		return KindString
	case protoreflect.BytesKind:
		return KindBytes
	case protoreflect.EnumKind:
		return KindEnum
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return KindMessage
	default:
		return KindString
	}
}

func (f protoField) IsRepeated() bool {
	return f.desc.IsList()
}

func (f protoField) IsMap() bool {
	return f.desc.IsMap()
}

// Submessage returns the message descriptor reached by this field: the
// mapentry descriptor for a map field (spec.md §4.7 pushes a sequence frame
// whose descriptor IS the mapentry type, not the map's value type), or the
// ordinary message descriptor otherwise.
func (f protoField) Submessage() Message {
	return protoMessage{desc: f.desc.Message()}
}

func (f protoField) EnumValueByName(name string) (int32, bool) {
	ev := f.desc.Enum().Values().ByName(protoreflect.Name(name))
	if ev == nil {
		return 0, false
	}
	return int32(ev.Number()), true
}
