package streamdecode

import "testing"

// TestDecodeBytesMapKey covers the emitMapKey branch for a bytes-typed map
// key (spec.md §4.7: string and bytes keys share the same StartStr/String/
// EndStr emission, with no base64 decode applied to the key text). Before
// this was fixed, a bytes-typed key fell into emitMapKey's default branch
// and the decode failed with ErrInternal.
func TestDecodeBytesMapKey(t *testing.T) {
	entry := newMapEntryMessage(KindBytes, &fakeField{name: "value", kind: KindInt32})
	root := newFakeMessage("test.BytesKeyRoot")
	root.addField(&fakeField{name: "counts", kind: KindMessage, isMap: true, sub: entry})

	events := decodeAll(t, root, Options{}, `{"counts":{"abc":1}}`, 0)
	assertContains(t, events, "StartStr(")
	assertContains(t, events, `String(`)
	assertContains(t, events, `"abc"`)
	assertContains(t, events, "EndStr(")
	assertContains(t, events, "PutInt32(")
	assertContains(t, events, "value,1")
}

// TestDecodeBytesMapKeyNotBase64Decoded checks that the key text is passed
// through verbatim rather than treated as base64, unlike a bytes *value*.
func TestDecodeBytesMapKeyNotBase64Decoded(t *testing.T) {
	entry := newMapEntryMessage(KindBytes, &fakeField{name: "value", kind: KindInt32})
	root := newFakeMessage("test.BytesKeyRoot")
	root.addField(&fakeField{name: "counts", kind: KindMessage, isMap: true, sub: entry})

	// "aGk=" is valid base64 for "hi", but as a map key it must be emitted
	// as the literal four-character string, not decoded.
	events := decodeAll(t, root, Options{}, `{"counts":{"aGk=":1}}`, 0)
	assertContains(t, events, `String(`)
	assertContains(t, events, `"aGk="`)
}
