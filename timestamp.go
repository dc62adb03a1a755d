package streamdecode

import (
	"strconv"
	"strings"
	"time"
)

// timestampSecondsMin is 0001-01-01T00:00:00Z, the minimum acceptable
// Timestamp value (spec.md §4.8, matching upb/json/parser.c's
// end_timestamp_zone bound).
const timestampSecondsMin = -62135596800

// parseTimestamp parses a Timestamp's RFC-3339 JSON string form
// "YYYY-MM-DDTHH:MM:SS[.frac](Z|±HH:MM)" into seconds/nanos, always
// normalizing in UTC (spec.md §9 calls out the original's local-timezone
// bug; this repo never uses the process's local timezone).
func parseTimestamp(s string) (seconds int64, nanos int32, err error) {
	if len(s) < len("2006-01-02T15:04:05Z") {
		return 0, 0, timestampErrorf("timestamp %q is too short", s)
	}
	datePart := s[:10]
	if s[4] != '-' || s[7] != '-' || s[10] != 'T' {
		return 0, 0, timestampErrorf("timestamp %q is not RFC-3339", s)
	}
	year, derr := strconv.Atoi(datePart[0:4])
	month, merr := strconv.Atoi(datePart[5:7])
	day, dayerr := strconv.Atoi(datePart[8:10])
	if derr != nil || merr != nil || dayerr != nil {
		return 0, 0, timestampErrorf("timestamp %q has an invalid date", s)
	}

	rest := s[11:]
	if len(rest) < len("15:04:05Z") {
		return 0, 0, timestampErrorf("timestamp %q is not RFC-3339", s)
	}
	if rest[2] != ':' || rest[5] != ':' {
		return 0, 0, timestampErrorf("timestamp %q is not RFC-3339", s)
	}
	hour, herr := strconv.Atoi(rest[0:2])
	min, minerr := strconv.Atoi(rest[3:5])
	sec, serr := strconv.Atoi(rest[6:8])
	if herr != nil || minerr != nil || serr != nil {
		return 0, 0, timestampErrorf("timestamp %q has an invalid time", s)
	}

	tail := rest[8:]
	var fracNanos int32
	if strings.HasPrefix(tail, ".") {
		end := 1
		for end < len(tail) && tail[end] >= '0' && tail[end] <= '9' {
			end++
		}
		frac := tail[1:end]
		if len(frac) == 0 || len(frac) > 9 {
			return 0, 0, timestampErrorf("timestamp %q has an invalid fractional-seconds part", s)
		}
		padded := frac + strings.Repeat("0", 9-len(frac))
		n, perr := strconv.Atoi(padded)
		if perr != nil {
			return 0, 0, timestampErrorf("timestamp %q has an invalid fractional-seconds part", s)
		}
		fracNanos = int32(n)
		tail = tail[end:]
	}

	var zoneHours, zoneMinutes int
	switch {
	case tail == "Z":
		// UTC, no offset.
	case len(tail) == 6 && (tail[0] == '+' || tail[0] == '-') && tail[3] == ':':
		h, herr := strconv.Atoi(tail[1:3])
		m, merr := strconv.Atoi(tail[4:6])
		if herr != nil || merr != nil {
			return 0, 0, timestampErrorf("timestamp %q has an invalid zone offset", s)
		}
		zoneHours, zoneMinutes = h, m
		if tail[0] == '+' {
			zoneHours, zoneMinutes = -zoneHours, -zoneMinutes
		}
	default:
		return 0, 0, timestampErrorf("timestamp %q has an invalid zone", s)
	}

	t := time.Date(year, time.Month(month), day, hour+zoneHours, min+zoneMinutes, sec, 0, time.UTC)
	seconds = t.Unix()
	if seconds < timestampSecondsMin {
		return 0, 0, timestampErrorf("timestamp %q is before the minimum acceptable value 0001-01-01T00:00:00Z", s)
	}
	return seconds, fracNanos, nil
}
