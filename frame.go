package streamdecode

// frame is one entry of the semantic stack (spec.md §3). An unknown
// member's value (spec.md §4.10) never gets a frame of its own: it is
// consumed directly off the byte stream by driverState.advanceSkip without
// touching this stack at all, so skipping can never interact with the
// frame-depth limit.
type frame struct {
	m Message
	f Field

	isMap      bool  // this frame is the synthetic repeated-mapentry sequence
	isMapEntry bool  // this frame is a single mapentry; set at push, before the key is emitted (key emission never runs valueCompleted, so it cannot pop the frame)
	mapField   Field // the enclosing map field, valid when isMap or isMapEntry

	isArr bool // this frame is an ordinary (non-map) JSON-array sequence

	// isWKWrapper marks a frame pushed purely to hold a well-known-type
	// wrapper message (wrapperspb.*, google.protobuf.Value, a directly-typed
	// Struct/ListValue, or Duration/Timestamp) open across a choreography
	// that spans more lexical tokens than the one bracket pair the caller
	// sees. It has no lexical container of its own; valueCompleted pops it
	// automatically once whatever it wraps finishes (spec.md §4.8's wrapper
	// and Value rewrites).
	isWKWrapper bool

	// isRoot marks the very first frame, whose sub was produced by
	// Sink.StartMsg(nil) directly rather than by StartSubMsg followed by
	// StartMsg, and so has no attachSub to close with EndSubMsg.
	isRoot bool

	sub SubFrame // the message-level handle: what children attach to, closed with EndMsg

	// attachSub is the StartSubMsg handle this message frame was opened
	// through — the parent-side attachment point, closed with EndSubMsg
	// once EndMsg has closed sub. Unused (nil) for isRoot, isMap and isArr
	// frames, which have no message of their own to open this way.
	attachSub SubFrame
}

// frameStack is the bounded (spec.md §6, MaxDepth) stack of frames.
type frameStack struct {
	frames []frame
}

func (s *frameStack) depth() int {
	return len(s.frames)
}

func (s *frameStack) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return &s.frames[len(s.frames)-1]
}

func (s *frameStack) push(fr frame) error {
	if len(s.frames) >= MaxDepth {
		return depthExceededError()
	}
	s.frames = append(s.frames, fr)
	return nil
}

func (s *frameStack) pop() frame {
	fr := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return fr
}

func (s *frameStack) reset() {
	s.frames = s.frames[:0]
}

// pushFrame and popFrame are the only way driverState touches the stack
// (mirroring upb_json_parser's push_frame/pop_frame, frame.go's grounding
// per DESIGN.md), so frame-depth tracing lives in exactly one place.
func (d *driverState) pushFrame(fr frame) error {
	if err := d.stack.push(fr); err != nil {
		return err
	}
	d.log.Trace("push frame", "depth", d.stack.depth(), "kind", frameKind(fr))
	return nil
}

func (d *driverState) popFrame() frame {
	fr := d.stack.pop()
	d.log.Trace("pop frame", "depth", d.stack.depth(), "kind", frameKind(fr))
	return fr
}

func frameKind(fr frame) string {
	switch {
	case fr.isRoot:
		return "root"
	case fr.isWKWrapper:
		return "wk-wrapper"
	case fr.isMapEntry:
		return "map-entry"
	case fr.isMap:
		return "map"
	case fr.isArr:
		return "array"
	default:
		return "message"
	}
}
