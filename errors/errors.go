package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the custom error type carried across the pipeline
type AppError struct {
	Raw     error
	Code    ErrorCode
	Message string
	Details map[string]string
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Input errors

// ErrMalformedTranscript signals that the supplied segment batch cannot be
// processed. This is the only error the pipeline surfaces to its caller.
func ErrMalformedTranscript(err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_INPUT_MALFORMED,
		Message: "Malformed transcript input",
	}
}

// Gateway errors

func ErrBackendUnavailable(backend string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_BACKEND_UNAVAILABLE,
		Message: "Generation backend unavailable",
	}.WithDetail("backend", backend)
}

func ErrBackendDisabled(backend string) AppError {
	return AppError{
		Code:    ErrorCode_BACKEND_DISABLED,
		Message: "Generation backend disabled by configuration",
	}.WithDetail("backend", backend)
}

func ErrSchemaParse(backend string, err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_SCHEMA_PARSE_FAILED,
		Message: "Backend response did not match requested schema",
	}.WithDetail("backend", backend)
}

// Orchestrator errors

func ErrStageTimeout(stage string) AppError {
	return AppError{
		Code:    ErrorCode_STAGE_TIMEOUT,
		Message: "Analysis stage exceeded its budget",
	}.WithDetail("stage", stage)
}

// Configuration errors

func ErrConfiguration(message string) AppError {
	return AppError{
		Code:    ErrorCode_CONFIGURATION,
		Message: message,
	}
}

func ErrInternal(err error) AppError {
	return AppError{
		Raw:     err,
		Code:    ErrorCode_INTERNAL,
		Message: "Internal error",
	}
}

// Predicates used at stage boundaries

// IsInputError reports whether err is fatal for the whole pipeline run.
func IsInputError(err error) bool {
	return hasCode(err, ErrorCode_INPUT_MALFORMED)
}

// IsGatewayError reports whether err originated in the model gateway and
// must be absorbed by the calling stage.
func IsGatewayError(err error) bool {
	return hasCode(err, ErrorCode_BACKEND_UNAVAILABLE) ||
		hasCode(err, ErrorCode_SCHEMA_PARSE_FAILED) ||
		hasCode(err, ErrorCode_BACKEND_DISABLED)
}

// IsStageTimeout reports whether err is an orchestrator-level stage timeout.
func IsStageTimeout(err error) bool {
	return hasCode(err, ErrorCode_STAGE_TIMEOUT)
}

func hasCode(err error, code ErrorCode) bool {
	var appErr AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
