package streamdecode

import (
	"math"
	"strconv"
)

// parseNumber interprets the accumulated digits in buf according to the
// target field f, emitting the result via put; the interpretation is
// driven entirely by the target field's type (spec.md §4.5). isQuoted is true when the
// literal appeared inside a JSON string (spec.md allows numeric fields to
// be quoted). Grounded on upb/json/parser.c's parse_number, minus the
// 32-bit-fallback bug spec.md §9 flags for removal: this always parses
// with a 64-bit width.
func parseNumber(buf []byte, f Field, isQuoted bool, put func(FieldKind, numValue) error) error {
	s := string(buf)
	switch f.Kind() {
	case KindInt32, KindInt64:
		if v, err := strconv.ParseInt(s, 0, 64); err == nil {
			if f.Kind() == KindInt32 && (v < math.MinInt32 || v > math.MaxInt32) {
				return numericParseErrorf("value %s out of range for int32", s)
			}
			return put(f.Kind(), numValue{i64: v})
		}
		return parseIntegerFromFloat(s, f, isQuoted, put)
	case KindUint32, KindUint64:
		if v, err := strconv.ParseUint(s, 0, 64); err == nil {
			if f.Kind() == KindUint32 && v > math.MaxUint32 {
				return numericParseErrorf("value %s out of range for uint32", s)
			}
			return put(f.Kind(), numValue{u64: v})
		}
		return parseIntegerFromFloat(s, f, isQuoted, put)
	case KindFloat, KindDouble:
		return parseFloatValue(s, f, put)
	default:
		return typeMismatchErrorf("numeric value specified for non-numeric field")
	}
}

// numValue is a small tagged union carrying a parsed numeric literal to the
// sink-emitting caller.
type numValue struct {
	i64 int64
	u64 uint64
	f64 float64
}

func parseIntegerFromFloat(s string, f Field, isQuoted bool, put func(FieldKind, numValue) error) error {
	if isQuoted {
		// spec.md §4.5: quoted input for a non-float target must still be
		// an integer literal; a decimal form is not accepted even if
		// integrally valued, once quoted.
		return numericParseErrorf("quoted value %q is not a valid integer literal", s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return numericParseErrorf("invalid number %q", s)
	}
	if math.Floor(v) != v || math.IsInf(v, 0) || math.IsNaN(v) {
		return numericParseErrorf("value %q is not integrally valued", s)
	}
	switch f.Kind() {
	case KindInt32:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return numericParseErrorf("value %s out of range for int32", s)
		}
		return put(f.Kind(), numValue{i64: int64(v)})
	case KindInt64:
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return numericParseErrorf("value %s out of range for int64", s)
		}
		return put(f.Kind(), numValue{i64: int64(v)})
	case KindUint32:
		if v < 0 || v > math.MaxUint32 {
			return numericParseErrorf("value %s out of range for uint32", s)
		}
		return put(f.Kind(), numValue{u64: uint64(v)})
	case KindUint64:
		if v < 0 || v >= math.MaxUint64 {
			return numericParseErrorf("value %s out of range for uint64", s)
		}
		return put(f.Kind(), numValue{u64: uint64(v)})
	default:
		return internalErrorf("parseIntegerFromFloat called for non-integer kind")
	}
}

func parseFloatValue(s string, f Field, put func(FieldKind, numValue) error) error {
	switch s {
	case "Infinity":
		return putFloatRange(f, math.Inf(1), put)
	case "-Infinity":
		return putFloatRange(f, math.Inf(-1), put)
	case "NaN":
		return numericParseErrorf("NaN is not an accepted JSON literal")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return numericParseErrorf("invalid number %q", s)
	}
	return putFloatRange(f, v, put)
}

func putFloatRange(f Field, v float64, put func(FieldKind, numValue) error) error {
	if f.Kind() == KindFloat {
		if !math.IsInf(v, 0) && (v > math.MaxFloat32 || v < -math.MaxFloat32) {
			return numericParseErrorf("value %v out of range for float", v)
		}
	}
	return put(f.Kind(), numValue{f64: v})
}
