package response

import (
	"net/http"
	"time"

	"github.com/grammarpost/grammarpost/pkg/apierror"
)

// ErrorResponse is the error body of the JSON endpoints.
type ErrorResponse struct {
	Error     string `json:"error" example:"Text is required"`
	Code      string `json:"code,omitempty" example:"BAD_REQUEST"`
	RequestID string `json:"request_id,omitempty"`
}

// ProviderErrorResponse is the error body of the tweet endpoints. Details is
// empty unless the provider error carried a code.
type ProviderErrorResponse struct {
	Error     string          `json:"error" example:"Twitter API authentication failed. Please check your credentials."`
	Timestamp string          `json:"timestamp" example:"2024-01-01T12:00:00Z"`
	Details   apierror.Detail `json:"details"`
	RequestID string          `json:"request_id,omitempty"`
}

// Common error codes
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalServer     = "INTERNAL_SERVER_ERROR"
	ErrCodeBadGateway         = "BAD_GATEWAY"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"
)

// ErrorCodeFromStatus returns an error code for the given HTTP status.
func ErrorCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeBadRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusMethodNotAllowed:
		return ErrCodeMethodNotAllowed
	case http.StatusRequestEntityTooLarge:
		return ErrCodeRequestTooLarge
	case http.StatusTooManyRequests:
		return ErrCodeTooManyRequests
	case http.StatusBadGateway:
		return ErrCodeBadGateway
	case http.StatusServiceUnavailable:
		return ErrCodeServiceUnavailable
	case http.StatusGatewayTimeout:
		return ErrCodeGatewayTimeout
	default:
		return ErrCodeInternalServer
	}
}

// HandleError writes err with the status chosen by apierror.StatusCode,
// falling back to 500.
func HandleError(w http.ResponseWriter, err error, requestID string) {
	status := apierror.StatusCode(err, http.StatusInternalServerError)
	Error(w, status, err.Error(), requestID)
}

// ProviderError writes err in the tweet endpoint format.
func ProviderError(w http.ResponseWriter, err error, requestID string) {
	ProviderErrorAt(w, err, requestID, time.Now())
}

// ProviderErrorAt is ProviderError with a fixed timestamp.
func ProviderErrorAt(w http.ResponseWriter, err error, requestID string, now time.Time) {
	JSON(w, apierror.StatusCode(err, http.StatusInternalServerError), ProviderErrorResponse{
		Error:     err.Error(),
		Timestamp: now.UTC().Format(time.RFC3339),
		Details:   apierror.Details(err),
		RequestID: requestID,
	})
}
