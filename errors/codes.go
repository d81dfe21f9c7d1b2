package errors

// ErrorCode identifies a failure class in the insights pipeline
type ErrorCode int

const (
	ErrorCode_INTERNAL ErrorCode = iota
	ErrorCode_INPUT_MALFORMED
	ErrorCode_BACKEND_UNAVAILABLE
	ErrorCode_SCHEMA_PARSE_FAILED
	ErrorCode_BACKEND_DISABLED
	ErrorCode_STAGE_TIMEOUT
	ErrorCode_CONFIGURATION
)

// String returns the canonical name of the error code
func (c ErrorCode) String() string {
	switch c {
	case ErrorCode_INPUT_MALFORMED:
		return "INPUT_MALFORMED"
	case ErrorCode_BACKEND_UNAVAILABLE:
		return "BACKEND_UNAVAILABLE"
	case ErrorCode_SCHEMA_PARSE_FAILED:
		return "SCHEMA_PARSE_FAILED"
	case ErrorCode_BACKEND_DISABLED:
		return "BACKEND_DISABLED"
	case ErrorCode_STAGE_TIMEOUT:
		return "STAGE_TIMEOUT"
	case ErrorCode_CONFIGURATION:
		return "CONFIGURATION"
	default:
		return "INTERNAL"
	}
}
