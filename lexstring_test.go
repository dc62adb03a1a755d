package streamdecode

import "testing"

// feedUntilError drives input through a fresh Driver over root with default
// Options and returns the first error Feed or End reports.
func feedUntilError(t *testing.T, root Message, input string) error {
	t.Helper()
	sink := &recSink{}
	d, err := Create(root, sink, Options{})
	if err != nil {
		t.Fatalf("Create: %s", err)
	}
	buf := []byte(input)
	for len(buf) > 0 {
		n, err := d.Feed(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			t.Fatalf("no progress without error")
		}
		buf = buf[n:]
	}
	return d.End()
}

func TestDecodeUnicodeEscapeBasic(t *testing.T) {
	events := decodeAll(t, newTestRootMessage(), Options{}, `{"name":"\u0041"}`, 0)
	assertContains(t, events, `String(2,"A")`)
}

func TestDecodeSurrogatePairCombines(t *testing.T) {
	// 😀 is the UTF-16 surrogate pair for U+1F600 GRINNING FACE.
	events := decodeAll(t, newTestRootMessage(), Options{}, `{"name":"\uD83D\uDE00"}`, 0)
	want := string(encodeUTF8(0x1F600))
	found := false
	for _, e := range events {
		if _, content, ok := parseStringEvent(e); ok && content == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a String event containing %q, got:\n%v", want, events)
	}
}

func TestDecodeUnpairedHighSurrogateAtClosingQuote(t *testing.T) {
	err := feedUntilError(t, newTestRootMessage(), `{"name":"\uD800"}`)
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrLexical {
		t.Fatalf("expected ErrLexical, got %v", err)
	}
}

func TestDecodeUnpairedHighSurrogateSplitByRawChar(t *testing.T) {
	// A literal character between the high surrogate and what would be its
	// low surrogate breaks the pair — it must not silently reassemble once
	// \uDC00 eventually arrives.
	err := feedUntilError(t, newTestRootMessage(), `{"name":"\uD800A\uDC00"}`)
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrLexical {
		t.Fatalf("expected ErrLexical for a surrogate pair split by a raw character, got %v", err)
	}
}

func TestDecodeUnpairedHighSurrogateSplitByOtherEscape(t *testing.T) {
	// Same as above but the intervening content is a non-\u escape rather
	// than a raw character.
	err := feedUntilError(t, newTestRootMessage(), `{"name":"\uD800\n\uDC00"}`)
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrLexical {
		t.Fatalf("expected ErrLexical for a surrogate pair split by another escape, got %v", err)
	}
}

func TestDecodeUnpairedLowSurrogate(t *testing.T) {
	err := feedUntilError(t, newTestRootMessage(), `{"name":"\uDC00"}`)
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrLexical {
		t.Fatalf("expected ErrLexical for a bare low surrogate, got %v", err)
	}
}

func TestDecodeHighSurrogateFollowedByRawCharNoTrailer(t *testing.T) {
	// Same break as TestDecodeUnpairedHighSurrogateSplitByRawChar, but
	// with no low surrogate after the interposed character — checks that the
	// raw-run check itself raises the error rather than relying on a
	// later \uDC00 (or the closing quote) to notice.
	err := feedUntilError(t, newTestRootMessage(), `{"name":"\uD800A"}`)
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrLexical {
		t.Fatalf("expected ErrLexical, got %v", err)
	}
}
