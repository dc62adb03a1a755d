package streamdecode

import (
	"strconv"
	"strings"
)

// durationSecondsLimit bounds the integer seconds part of a Duration
// literal to ±10,000 years, matching upb/json/parser.c's end_duration.
const durationSecondsLimit = 315576000000

// parseDuration parses a Duration's JSON string form "<int>(.<frac>)?s"
// (spec.md §4.8) into seconds/nanos, with the fractional part's sign
// inherited from the seconds part (or from a leading '-' when seconds is
// exactly zero).
func parseDuration(s string) (seconds int64, nanos int32, err error) {
	if !strings.HasSuffix(s, "s") {
		return 0, 0, durationErrorf("duration %q must end in 's'", s)
	}
	body := s[:len(s)-1]
	negative := strings.HasPrefix(body, "-")

	intPart := body
	fracPart := ""
	if dot := strings.IndexByte(body, '.'); dot >= 0 {
		intPart = body[:dot]
		fracPart = body[dot+1:]
	}
	if intPart == "" || intPart == "-" {
		return 0, 0, durationErrorf("duration %q has no integer part", s)
	}
	seconds, perr := strconv.ParseInt(intPart, 10, 64)
	if perr != nil {
		return 0, 0, durationErrorf("invalid duration %q: %s", s, perr)
	}
	if seconds > durationSecondsLimit || seconds < -durationSecondsLimit {
		return 0, 0, durationErrorf("duration %q out of range (max %d seconds)", s, durationSecondsLimit)
	}
	if fracPart != "" {
		if len(fracPart) > 9 {
			return 0, 0, durationErrorf("duration %q has too many fractional digits", s)
		}
		for _, c := range fracPart {
			if c < '0' || c > '9' {
				return 0, 0, durationErrorf("invalid duration %q: non-digit in fractional part", s)
			}
		}
		padded := fracPart + strings.Repeat("0", 9-len(fracPart))
		n, perr := strconv.ParseInt(padded, 10, 32)
		if perr != nil {
			return 0, 0, durationErrorf("invalid duration %q: %s", s, perr)
		}
		nanos = int32(n)
		if negative {
			nanos = -nanos
		}
	}
	return seconds, nanos, nil
}
