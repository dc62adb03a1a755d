package streamdecode

// capture tracks at most one in-progress region of the current input
// buffer; when closed it is handed to the Multipart Text Controller rather
// than appended anywhere directly (spec.md §3/§4.1/§4.2, grounded on
// upb/json/parser.c's capture_begin/capture_end/capture_suspend).
type capture struct {
	active    bool
	start     int // offset into the buffer currently being fed
	suspended bool
}

// begin opens a capture at byte offset start within the buffer currently
// being fed. No capture may already be open; like end's symmetric check,
// that would be an internal invariant violation rather than anything a
// caller could provoke from input (spec.md §9: impossible states are
// reported the same way as any other DecodeError, never a panic).
func (c *capture) begin(start int) error {
	if c.active {
		return internalErrorf("capture.begin with a capture already open")
	}
	c.active = true
	c.suspended = false
	c.start = start
	return nil
}

func (c *capture) isActive() bool {
	return c.active
}

// end closes the capture, routing buf[c.start:end) through mp. The region
// may alias buf only if no suspend has spilled part of it already.
func (c *capture) end(d *driverState, mp *multipart, buf []byte, end int) error {
	if !c.active {
		return internalErrorf("capture.end with no open capture")
	}
	c.active = false
	canAlias := !c.suspended
	c.suspended = false
	return mp.text(d, buf[c.start:end], canAlias)
}

// suspend is called at an input-buffer boundary while a capture is open.
// The partial region buf[c.start:len(buf)) is routed through mp (never
// aliased, since buf will not outlive this call), and the capture is
// re-armed to continue at offset 0 of the next buffer.
func (c *capture) suspend(d *driverState, mp *multipart, buf []byte) error {
	if !c.active {
		return nil
	}
	if err := mp.text(d, buf[c.start:], false); err != nil {
		return err
	}
	c.start = 0
	c.suspended = true
	return nil
}

func (c *capture) reset() {
	c.active = false
	c.suspended = false
	c.start = 0
}
