package streamdecode

// multipartMode is the Multipart Text Controller's state (spec.md §3/§4.2).
type multipartMode int

const (
	multipartInactive multipartMode = iota
	multipartAccumulate
	multipartPushEager
)

// multipart routes string/escape/raw-text output either into an
// accumulator (for values that must end up as one contiguous buffer: member
// names, numbers, enum names, base64, durations, timestamps) or straight
// through to the sink as string runs (proto string fields). Only two
// consumer shapes exist; spec.md §4.2 calls this out explicitly.
type multipart struct {
	mode multipartMode
	acc  accumulator

	// pushFrame/pushField identify where push-eager runs are written.
	pushFrame SubFrame
	pushField Field
}

// startAccumulate and startPushEager may only be called while inactive;
// like text's symmetric check below, an already-active multipart is an
// internal invariant violation rather than anything a caller could
// provoke from input (spec.md §9: impossible states are reported the same
// way as any other DecodeError, never a panic).
func (m *multipart) startAccumulate() error {
	if m.mode != multipartInactive {
		return internalErrorf("multipart.startAccumulate while already active")
	}
	m.mode = multipartAccumulate
	m.acc.clear()
	return nil
}

func (m *multipart) startPushEager(frame SubFrame, field Field) error {
	if m.mode != multipartInactive {
		return internalErrorf("multipart.startPushEager while already active")
	}
	m.mode = multipartPushEager
	m.pushFrame = frame
	m.pushField = field
	return nil
}

func (m *multipart) end() {
	m.mode = multipartInactive
	m.acc.clear()
	m.pushFrame = nil
	m.pushField = nil
}

// text routes a chunk of string data to the current consumer. Feeding text
// while inactive is a hard internal error (spec.md §4.2).
func (m *multipart) text(d *driverState, b []byte, canAlias bool) error {
	switch m.mode {
	case multipartAccumulate:
		return m.acc.append(b, canAlias)
	case multipartPushEager:
		return d.sink.String(m.pushFrame, b)
	default:
		return internalErrorf("multipart_text while inactive")
	}
}

// accumulated returns the fully-collected text. Valid only in
// multipartAccumulate mode.
func (m *multipart) accumulated() []byte {
	return m.acc.get()
}
