package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// ErrorType classifies a failed request
type ErrorType int

// APIError describes a failed request to the backend
type APIError struct {
	Type    ErrorType       `json:"type"`
	Status  int             `json:"status"`            // HTTP status, zero when no response was received
	Code    string          `json:"code,omitempty"`    // machine-readable code where the backend provides one
	Message string          `json:"message"`           // human-readable message
	Details json.RawMessage `json:"details,omitempty"` // raw error payload from the response body
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	ErrorTypeUnknown    ErrorType = iota // failure which is not an HTTP error
	ErrorTypeNetwork                     // no HTTP response was received
	ErrorTypeTimeout                     // deadline exceeded, or HTTP 408
	ErrorTypeValidation                  // any other 4xx status
	ErrorTypeAPI                         // 5xx or unexpected status
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewAPIError returns an error classified from an HTTP status code. A zero
// status means no response was received.
func NewAPIError(status int, message string) *APIError {
	if message == "" && status > 0 {
		message = http.StatusText(status)
	}
	return &APIError{
		Type:    typeFromStatus(status),
		Status:  status,
		Message: message,
	}
}

// WrapError returns an error classified from a transport-level failure,
// where no HTTP response was received.
func WrapError(err error) *APIError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &APIError{
			Type:    ErrorTypeTimeout,
			Status:  http.StatusRequestTimeout,
			Code:    "TIMEOUT",
			Message: "request timeout",
		}
	case isNetworkError(err):
		return &APIError{
			Type:    ErrorTypeNetwork,
			Message: err.Error(),
		}
	default:
		return &APIError{
			Type:    ErrorTypeUnknown,
			Message: err.Error(),
		}
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%v (%s %d)", e.Message, e.Type, e.Status)
	}
	return fmt.Sprintf("%v (%s)", e.Message, e.Type)
}

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeNetwork:
		return "NETWORK_ERROR"
	case ErrorTypeTimeout:
		return "TIMEOUT_ERROR"
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeAPI:
		return "API_ERROR"
	}
	return "UNKNOWN_ERROR"
}

func (t ErrorType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func typeFromStatus(status int) ErrorType {
	switch {
	case status == 0:
		return ErrorTypeNetwork
	case status == http.StatusRequestTimeout:
		return ErrorTypeTimeout
	case status >= 400 && status < 500:
		return ErrorTypeValidation
	default:
		return ErrorTypeAPI
	}
}

func isNetworkError(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
