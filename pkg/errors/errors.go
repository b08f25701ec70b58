// Package errors provides structured error types for chartdeck.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the library
//   - Machine-readable error codes for programmatic handling
//   - Short user-facing messages for conditions shown in place of a chart
//
// # Error Codes
//
// Codes fall into a few families:
//   - INVALID_*: Input validation failures
//   - Chart conditions (NON_NUMERIC_AXIS, NO_CHART_DATA, RENDER_NOT_READY):
//     expected outcomes that a UI displays as a notice instead of a chart
//   - NOT_FOUND, INTERNAL_ERROR and friends: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNonNumericAxis, "Scatter plot requires numeric X and Y values")
//	if errors.IsNotice(err) {
//	    showNotice(errors.UserMessage(err))
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidChartKind Code = "INVALID_CHART_KIND"
	ErrCodeInvalidDataset   Code = "INVALID_DATASET"
	ErrCodeInvalidColumn    Code = "INVALID_COLUMN"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Chart conditions. These are user-facing and never fatal.
	ErrCodeEmptyDataset     Code = "EMPTY_DATASET"
	ErrCodeNoNumericColumns Code = "NO_NUMERIC_COLUMNS"
	ErrCodeNonNumericAxis   Code = "NON_NUMERIC_AXIS"
	ErrCodeNoChartData      Code = "NO_CHART_DATA"
	ErrCodeRenderNotReady   Code = "RENDER_NOT_READY"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"
	ErrCodeUploadNotFound  Code = "UPLOAD_NOT_FOUND"

	// Delivery and storage errors
	ErrCodeNetwork          Code = "NETWORK_ERROR"
	ErrCodeTimeout          Code = "TIMEOUT"
	ErrCodeNotifierDelivery Code = "NOTIFIER_DELIVERY"
	ErrCodeStorage          Code = "STORAGE_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// User-facing messages for chart conditions.
const (
	MsgNonNumericAxis = "Scatter plot requires numeric X and Y values"
	MsgNoChartData    = "No data for pie chart"
	MsgRenderNotReady = "Chart not ready yet. Please wait and try again."
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsNotice reports whether err is a chart condition that should be shown to
// the user in place of a chart rather than treated as a failure.
func IsNotice(err error) bool {
	switch GetCode(err) {
	case ErrCodeNonNumericAxis, ErrCodeNoChartData, ErrCodeRenderNotReady,
		ErrCodeEmptyDataset, ErrCodeNoNumericColumns:
		return true
	}
	return false
}

// NonNumericAxis returns the scatter typing condition.
func NonNumericAxis() *Error { return New(ErrCodeNonNumericAxis, MsgNonNumericAxis) }

// NoChartData returns the empty aggregate condition.
func NoChartData() *Error { return New(ErrCodeNoChartData, MsgNoChartData) }

// RenderNotReady returns the export readiness condition.
func RenderNotReady() *Error { return New(ErrCodeRenderNotReady, MsgRenderNotReady) }

// HTTPStatus maps an error code to the status the HTTP API answers with.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidChartKind,
		ErrCodeInvalidDataset, ErrCodeInvalidColumn, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeNonNumericAxis, ErrCodeNoChartData, ErrCodeEmptyDataset, ErrCodeNoNumericColumns:
		return http.StatusUnprocessableEntity
	case ErrCodeRenderNotReady:
		return http.StatusConflict
	case ErrCodeNotFound, ErrCodeFileNotFound, ErrCodeSessionNotFound, ErrCodeUploadNotFound:
		return http.StatusNotFound
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNetwork, ErrCodeNotifierDelivery:
		return http.StatusBadGateway
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
