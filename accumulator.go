package streamdecode

// accumulator is a sliding, append-only byte buffer with two observable
// states: empty, or holding a contiguous region exposed via get(). The
// region may alias external memory (valid only until the next append) or
// live in an owned buffer that this type grows by doubling. See spec.md
// §3/§4.1; grounded on the buffer-shifting idea in the teacher's
// internal/scanner/scanner.go (tokenStartIndex/tokenParts/EndToken), adapted
// to an explicit alias/own state machine because this decoder is push-fed
// rather than pulling from an io.Reader.
type accumulator struct {
	// aliased is a borrowed view into caller-owned memory. Valid only until
	// the next mutation of this accumulator.
	aliased []byte

	// owned is this accumulator's private, growable buffer. Once non-nil,
	// it is always logically "in front of" any content that used to live
	// only in aliased (see append).
	owned []byte
}

const accumulatorFloor = 128

// append adds bytes to the accumulator. If nothing is aliased, no owned
// buffer has been allocated yet, and canAlias is true, it records a
// borrowed view with no copy; otherwise it ensures an owned buffer (copying
// any previously-aliased view into it first) and appends into that. Once
// the owned buffer exists, clear keeps it, so later appends always copy.
func (a *accumulator) append(b []byte, canAlias bool) error {
	if len(b) == 0 {
		return nil
	}
	if a.owned == nil && a.aliased == nil && canAlias {
		a.aliased = b
		return nil
	}
	if err := a.ensureOwned(); err != nil {
		return err
	}
	return a.growAppend(b)
}

// ensureOwned copies any aliased view into the owned buffer, and is a no-op
// if there is nothing aliased or the owned buffer already holds everything.
func (a *accumulator) ensureOwned() error {
	if a.aliased == nil {
		return nil
	}
	need := len(a.aliased)
	if cap(a.owned) < need {
		newCap, err := growCapacity(cap(a.owned), need)
		if err != nil {
			return err
		}
		a.owned = make([]byte, 0, newCap)
	}
	a.owned = append(a.owned[:0], a.aliased...)
	a.aliased = nil
	return nil
}

func (a *accumulator) growAppend(b []byte) error {
	need := len(a.owned) + len(b)
	if cap(a.owned) < need {
		newCap, err := growCapacity(cap(a.owned), need)
		if err != nil {
			return err
		}
		grown := make([]byte, len(a.owned), newCap)
		copy(grown, a.owned)
		a.owned = grown
	}
	a.owned = append(a.owned, b...)
	return nil
}

// growCapacity doubles from accumulatorFloor until capacity >= need, with a
// saturating multiply so overflow fails instead of wrapping (spec.md §3).
func growCapacity(current, need int) (int, error) {
	size := current
	if size == 0 {
		size = accumulatorFloor
	}
	for size < need {
		next := size * 2
		if next <= size {
			return 0, outOfMemoryError()
		}
		size = next
	}
	return size, nil
}

// get returns the accumulator's current contiguous region. The returned
// slice is valid only until the next mutating call.
func (a *accumulator) get() []byte {
	if a.owned != nil {
		return a.owned
	}
	return a.aliased
}

func (a *accumulator) empty() bool {
	return len(a.owned) == 0 && len(a.aliased) == 0
}

func (a *accumulator) clear() {
	a.aliased = nil
	a.owned = a.owned[:0]
}
