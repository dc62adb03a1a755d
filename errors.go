package streamdecode

import "fmt"

// ErrorCode classifies a decode failure. See spec.md §7.
type ErrorCode int

const (
	ErrLexical ErrorCode = iota
	ErrUnknownField
	ErrTypeMismatch
	ErrNumericParse
	ErrEnumNameUnknown
	ErrBase64
	ErrDuration
	ErrTimestamp
	ErrDepthExceeded
	ErrInternal
	ErrOutOfMemory
)

func (c ErrorCode) String() string {
	switch c {
	case ErrLexical:
		return "LexicalError"
	case ErrUnknownField:
		return "UnknownField"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrNumericParse:
		return "NumericParseError"
	case ErrEnumNameUnknown:
		return "EnumNameUnknown"
	case ErrBase64:
		return "Base64Error"
	case ErrDuration:
		return "DurationError"
	case ErrTimestamp:
		return "TimestampError"
	case ErrDepthExceeded:
		return "DepthExceeded"
	case ErrInternal:
		return "InternalError"
	case ErrOutOfMemory:
		return "OutOfMemory"
	default:
		return "UnknownError"
	}
}

// DecodeError is the single error type produced by this package. All
// halting failures (spec.md §7) are reported through it.
type DecodeError struct {
	Code ErrorCode
	Msg  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func newError(code ErrorCode, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func lexicalErrorf(window []byte, format string, args ...interface{}) *DecodeError {
	msg := fmt.Sprintf(format, args...)
	return newError(ErrLexical, "%s (near %q)", msg, windowPreview(window))
}

func windowPreview(b []byte) []byte {
	const maxWindow = 24
	if len(b) <= maxWindow {
		return b
	}
	return b[:maxWindow]
}

func unknownFieldErrorf(name string) *DecodeError {
	return newError(ErrUnknownField, "no such field %q", name)
}

func typeMismatchErrorf(format string, args ...interface{}) *DecodeError {
	return newError(ErrTypeMismatch, format, args...)
}

func numericParseErrorf(format string, args ...interface{}) *DecodeError {
	return newError(ErrNumericParse, format, args...)
}

func enumNameUnknownErrorf(enumName, value string) *DecodeError {
	return newError(ErrEnumNameUnknown, "enum %s has no value named %q", enumName, value)
}

func base64Errorf(format string, args ...interface{}) *DecodeError {
	return newError(ErrBase64, format, args...)
}

func durationErrorf(format string, args ...interface{}) *DecodeError {
	return newError(ErrDuration, format, args...)
}

func timestampErrorf(format string, args ...interface{}) *DecodeError {
	return newError(ErrTimestamp, format, args...)
}

func depthExceededError() *DecodeError {
	return newError(ErrDepthExceeded, "nesting too deep (max %d)", MaxDepth)
}

func internalErrorf(format string, args ...interface{}) *DecodeError {
	return newError(ErrInternal, format, args...)
}

func outOfMemoryError() *DecodeError {
	return newError(ErrOutOfMemory, "accumulator growth failed")
}
