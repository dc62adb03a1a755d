package streamdecode

import "testing"

func TestParseTimestampEpoch(t *testing.T) {
	seconds, nanos, err := parseTimestamp("1970-01-01T00:00:01Z")
	if err != nil {
		t.Fatalf("parseTimestamp: %s", err)
	}
	if seconds != 1 || nanos != 0 {
		t.Fatalf("got seconds=%d nanos=%d, want 1, 0", seconds, nanos)
	}
}

func TestParseTimestampFractionalSeconds(t *testing.T) {
	seconds, nanos, err := parseTimestamp("1970-01-01T00:00:00.5Z")
	if err != nil {
		t.Fatalf("parseTimestamp: %s", err)
	}
	if seconds != 0 || nanos != 500000000 {
		t.Fatalf("got seconds=%d nanos=%d, want 0, 500000000", seconds, nanos)
	}
}

func TestParseTimestampPositiveZoneOffsetNormalizedToUTC(t *testing.T) {
	seconds, _, err := parseTimestamp("1970-01-01T01:00:00+01:00")
	if err != nil {
		t.Fatalf("parseTimestamp: %s", err)
	}
	if seconds != 0 {
		t.Fatalf("got seconds=%d, want 0", seconds)
	}
}

func TestParseTimestampNegativeZoneOffsetNormalizedToUTC(t *testing.T) {
	seconds, _, err := parseTimestamp("1970-01-01T00:00:00-01:00")
	if err != nil {
		t.Fatalf("parseTimestamp: %s", err)
	}
	if seconds != 3600 {
		t.Fatalf("got seconds=%d, want 3600", seconds)
	}
}

func TestParseTimestampAtMinimumBound(t *testing.T) {
	seconds, _, err := parseTimestamp("0001-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("parseTimestamp: %s", err)
	}
	if seconds != timestampSecondsMin {
		t.Fatalf("got seconds=%d, want %d", seconds, timestampSecondsMin)
	}
}

func TestParseTimestampBeforeMinimumBound(t *testing.T) {
	_, _, err := parseTimestamp("0000-12-31T23:59:59Z")
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrTimestamp {
		t.Fatalf("expected ErrTimestamp, got %v", err)
	}
}

func TestParseTimestampTooShort(t *testing.T) {
	_, _, err := parseTimestamp("1970-01-01T00:00:01")
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrTimestamp {
		t.Fatalf("expected ErrTimestamp, got %v", err)
	}
}

func TestParseTimestampBadDateSeparators(t *testing.T) {
	_, _, err := parseTimestamp("1970/01-01T00:00:01Z")
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrTimestamp {
		t.Fatalf("expected ErrTimestamp, got %v", err)
	}
}

func TestParseTimestampBadZone(t *testing.T) {
	_, _, err := parseTimestamp("1970-01-01T00:00:01X")
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrTimestamp {
		t.Fatalf("expected ErrTimestamp, got %v", err)
	}
}

func TestParseTimestampEmptyFractionalPartRejected(t *testing.T) {
	_, _, err := parseTimestamp("1970-01-01T00:00:01.Z")
	de, ok := err.(*DecodeError)
	if !ok || de.Code != ErrTimestamp {
		t.Fatalf("expected ErrTimestamp, got %v", err)
	}
}
