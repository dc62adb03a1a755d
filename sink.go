package streamdecode

// Sink is the write-only event consumer the driver emits structured
// callbacks to. Its implementation is opaque to the decoder (spec.md §6);
// this package only depends on the interface below. StartMsg/EndMsg,
// StartSeq/EndSeq and StartSubMsg/EndSubMsg must always be correctly
// nested and paired (spec.md §8).
//
// Each method that enters a new emission context returns a SubFrame handle
// that subsequent calls at that nesting depth are made through — this lets
// a sink implementation (e.g. one building a tree of protoreflect values)
// track "where" it currently is without maintaining its own parallel stack.
type Sink interface {
	StartMsg(frame SubFrame) (SubFrame, error)
	EndMsg(frame SubFrame) error

	StartSeq(frame SubFrame) (SubFrame, error)
	EndSeq(frame SubFrame) error

	StartSubMsg(frame SubFrame, field Field) (SubFrame, error)
	EndSubMsg(frame SubFrame) error

	StartStr(frame SubFrame, field Field) (SubFrame, error)
	String(frame SubFrame, chunk []byte) error
	EndStr(frame SubFrame) error

	PutBool(frame SubFrame, field Field, v bool) error
	PutInt32(frame SubFrame, field Field, v int32) error
	PutInt64(frame SubFrame, field Field, v int64) error
	PutUint32(frame SubFrame, field Field, v uint32) error
	PutUint64(frame SubFrame, field Field, v uint64) error
	PutFloat(frame SubFrame, field Field, v float32) error
	PutDouble(frame SubFrame, field Field, v float64) error
	PutEnum(frame SubFrame, field Field, v int32) error
}

// SubFrame is an opaque handle a Sink implementation hands back from one
// emission call so the driver can pass it into the next. The driver never
// inspects it.
type SubFrame interface{}
