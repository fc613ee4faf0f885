package convert

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a failure class in the response envelope.
type ErrorCode string

const (
	CodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	CodeFileTooLarge      ErrorCode = "FILE_TOO_LARGE"
	CodeInvalidURL        ErrorCode = "INVALID_URL"
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
	CodeFetchFailed       ErrorCode = "FETCH_FAILED"
	CodeConversionFailed  ErrorCode = "CONVERSION_FAILED"
	CodeTimeout           ErrorCode = "TIMEOUT"
	CodeSSRFBlocked       ErrorCode = "SSRF_BLOCKED"
	CodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	CodeConnectionFailed  ErrorCode = "CONNECTION_FAILED"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeAccessDenied      ErrorCode = "ACCESS_DENIED"
	CodeContentEmpty      ErrorCode = "CONTENT_EMPTY"
)

var statusByCode = map[ErrorCode]int{
	CodeUnsupportedFormat: http.StatusUnsupportedMediaType,
	CodeFileTooLarge:      http.StatusRequestEntityTooLarge,
	CodeInvalidURL:        http.StatusBadRequest,
	CodeInvalidInput:      http.StatusBadRequest,
	CodeFetchFailed:       http.StatusBadRequest,
	CodeConversionFailed:  http.StatusInternalServerError,
	CodeTimeout:           http.StatusRequestTimeout,
	CodeSSRFBlocked:       http.StatusBadRequest,
	CodeUnauthorized:      http.StatusUnauthorized,
	CodeConnectionFailed:  http.StatusBadGateway,
	CodeNotFound:          http.StatusNotFound,
	CodeAccessDenied:      http.StatusForbidden,
	CodeContentEmpty:      http.StatusBadRequest,
}

var suggestionsByCode = map[ErrorCode][]string{
	CodeUnsupportedFormat: {
		"Check the list of supported formats at GET /formats",
		"Provide a mime_type or filename hint if the content type is ambiguous",
	},
	CodeFileTooLarge: {
		"Reduce the file size or split the document",
	},
	CodeInvalidURL: {
		"Provide an absolute http:// or https:// URL",
	},
	CodeInvalidInput: {
		"Send exactly one of url, content, or text",
		"Check field names and value ranges in the request body",
	},
	CodeFetchFailed: {
		"Verify the URL is reachable from the server",
		"Retry with js_rendering enabled if the site requires a browser",
	},
	CodeConversionFailed: {
		"Verify the document is not corrupted or password protected",
	},
	CodeTimeout: {
		"Increase timeout_seconds, up to the server maximum of 120",
	},
	CodeSSRFBlocked: {
		"Target a public address, or ask the operator to relax the network policy",
	},
	CodeConnectionFailed: {
		"Check that the remote host is up and accepting connections",
	},
	CodeNotFound: {
		"Verify the URL path; the remote server returned 404",
	},
	CodeAccessDenied: {
		"The remote server refused the request; credentials may be required",
	},
	CodeContentEmpty: {
		"Provide non-empty content to convert",
	},
}

// Error is the one error type the HTTP and MCP surfaces know how to
// shape. Details carries machine-readable context for the caller.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus maps the code to its response status.
func (e *Error) HTTPStatus() int {
	if s, ok := statusByCode[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Suggestions returns caller-facing remediation hints for the code.
func (e *Error) Suggestions() []string {
	return suggestionsByCode[e.Code]
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func NewErrorWithDetails(code ErrorCode, message string, details map[string]any) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// AsError extracts an *Error from any error chain. Unknown errors get
// folded into CONVERSION_FAILED by the caller.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
