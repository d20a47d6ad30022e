package errors

import "net/http"

// ErrorCode represents a unique error identifier
type ErrorCode int

// 10000-10999: system & common
// 13000-13999: execution
const (
	Success ErrorCode = 10000

	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	TooManyRequests     ErrorCode = 10006
	DatabaseError       ErrorCode = 10100

	UnsupportedLanguage     ErrorCode = 13003
	ImageNotFound           ErrorCode = 13010
	ContainerCreationFailed ErrorCode = 13011
	ContainerRuntime        ErrorCode = 13012
	ExecutionTimeout        ErrorCode = 13104
	TemplateNotFound        ErrorCode = 13200
	ExecutionNotFound       ErrorCode = 13201
)

var errorMessages = map[ErrorCode]string{
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	TooManyRequests:     "Too many requests, please try again later",
	DatabaseError:       "Database operation failed",

	UnsupportedLanguage:     "Unsupported language",
	ImageNotFound:           "Execution image not found",
	ContainerCreationFailed: "Failed to create execution container",
	ContainerRuntime:        "Container execution failed",
	ExecutionTimeout:        "Execution took too long",
	TemplateNotFound:        "Template not found",
	ExecutionNotFound:       "Execution not found",
}

var httpStatus = map[ErrorCode]int{
	Success:                 http.StatusOK,
	InvalidParams:           http.StatusUnprocessableEntity,
	UnsupportedLanguage:     http.StatusUnprocessableEntity,
	NotFound:                http.StatusNotFound,
	TemplateNotFound:        http.StatusNotFound,
	ExecutionNotFound:       http.StatusNotFound,
	TooManyRequests:         http.StatusTooManyRequests,
	ImageNotFound:           http.StatusServiceUnavailable,
	ExecutionTimeout:        http.StatusGatewayTimeout,
	ContainerCreationFailed: http.StatusInternalServerError,
	ContainerRuntime:        http.StatusInternalServerError,
	DatabaseError:           http.StatusInternalServerError,
	InternalServerError:     http.StatusInternalServerError,
}

// Message returns the default message for the code.
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus maps the code to a response status.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := httpStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}
