package streamdecode

import "testing"

func TestParseDurationBasic(t *testing.T) {
	seconds, nanos, err := parseDuration("3.5s")
	if err != nil {
		t.Fatalf("parseDuration: %s", err)
	}
	if seconds != 3 || nanos != 500000000 {
		t.Fatalf("got seconds=%d nanos=%d, want 3, 500000000", seconds, nanos)
	}
}

func TestParseDurationIntegerOnly(t *testing.T) {
	seconds, nanos, err := parseDuration("100s")
	if err != nil {
		t.Fatalf("parseDuration: %s", err)
	}
	if seconds != 100 || nanos != 0 {
		t.Fatalf("got seconds=%d nanos=%d, want 100, 0", seconds, nanos)
	}
}

func TestParseDurationNegativeSecondsCarriesSignToNanos(t *testing.T) {
	seconds, nanos, err := parseDuration("-3.5s")
	if err != nil {
		t.Fatalf("parseDuration: %s", err)
	}
	if seconds != -3 || nanos != -500000000 {
		t.Fatalf("got seconds=%d nanos=%d, want -3, -500000000", seconds, nanos)
	}
}

func TestParseDurationNegativeZeroSecondsInheritsSign(t *testing.T) {
	// seconds parses to 0 either way; the fractional part's sign must come
	// from the literal '-' since int64's zero has no sign of its own.
	seconds, nanos, err := parseDuration("-0.5s")
	if err != nil {
		t.Fatalf("parseDuration: %s", err)
	}
	if seconds != 0 || nanos != -500000000 {
		t.Fatalf("got seconds=%d nanos=%d, want 0, -500000000", seconds, nanos)
	}
}

func TestParseDurationFractionalDigitsPadded(t *testing.T) {
	_, nanos, err := parseDuration("1.5s")
	if err != nil {
		t.Fatalf("parseDuration: %s", err)
	}
	if nanos != 500000000 {
		t.Fatalf("got nanos=%d, want 500000000", nanos)
	}
}

func TestParseDurationTooManyFractionalDigits(t *testing.T) {
	_, _, err := parseDuration("1.1234567890s")
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrDuration {
		t.Fatalf("expected ErrDuration, got %v", err)
	}
}

func TestParseDurationMissingSuffix(t *testing.T) {
	_, _, err := parseDuration("3.5")
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrDuration {
		t.Fatalf("expected ErrDuration, got %v", err)
	}
}

func TestParseDurationAtUpperBound(t *testing.T) {
	seconds, _, err := parseDuration("315576000000s")
	if err != nil {
		t.Fatalf("parseDuration: %s", err)
	}
	if seconds != durationSecondsLimit {
		t.Fatalf("got seconds=%d, want %d", seconds, durationSecondsLimit)
	}
}

func TestParseDurationBeyondUpperBound(t *testing.T) {
	_, _, err := parseDuration("315576000001s")
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrDuration {
		t.Fatalf("expected ErrDuration, got %v", err)
	}
}

func TestParseDurationBeyondLowerBound(t *testing.T) {
	_, _, err := parseDuration("-315576000001s")
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrDuration {
		t.Fatalf("expected ErrDuration, got %v", err)
	}
}

func TestParseDurationNoIntegerPart(t *testing.T) {
	_, _, err := parseDuration(".5s")
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrDuration {
		t.Fatalf("expected ErrDuration, got %v", err)
	}
}

func TestParseDurationNonDigitFraction(t *testing.T) {
	_, _, err := parseDuration("1.5xs")
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrDuration {
		t.Fatalf("expected ErrDuration, got %v", err)
	}
}
