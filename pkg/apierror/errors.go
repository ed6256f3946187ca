// Package apierror defines the closed set of errors produced by the provider
// clients and consumed by the HTTP layer.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ConfigurationError is returned when a required setting is absent. It is
// always returned before any network I/O.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("missing required configuration: %s", e.Setting)
}

// ValidationError is returned when caller input is missing or out of bounds.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProviderHTTPError is returned when a provider answers with a non-success
// HTTP status.
type ProviderHTTPError struct {
	Provider   string
	StatusCode int
	// Code is the provider's own error code string, if any.
	Code    string
	Message string
}

func (e *ProviderHTTPError) Error() string {
	return e.Message
}

// ProviderLogicError is returned when a provider answers 2xx but reports a
// failure inside the payload.
type ProviderLogicError struct {
	Provider string
	Status   string
	Message  string
}

func (e *ProviderLogicError) Error() string {
	return e.Message
}

// ProviderDomainError is a coded provider error remapped to a clearer
// message. The original error stays reachable through Unwrap.
type ProviderDomainError struct {
	Provider string
	Code     int
	Message  string
	Data     json.RawMessage
	Original error
}

func (e *ProviderDomainError) Error() string {
	return e.Message
}

func (e *ProviderDomainError) Unwrap() error { return e.Original }

// Detail is the diagnostic block attached to failed provider responses.
type Detail struct {
	Code          int             `json:"code,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
	OriginalError *OriginalError  `json:"originalError,omitempty"`
}

// OriginalError describes the provider error that was remapped.
type OriginalError struct {
	Message string `json:"message"`
}

// Details returns the diagnostic block for err. Errors that are not
// ProviderDomainError yield an empty Detail.
func Details(err error) Detail {
	var domainErr *ProviderDomainError
	if !errors.As(err, &domainErr) {
		return Detail{}
	}

	d := Detail{
		Code: domainErr.Code,
		Data: domainErr.Data,
	}
	if domainErr.Original != nil {
		d.OriginalError = &OriginalError{Message: domainErr.Original.Error()}
	}
	return d
}

// StatusCode picks the HTTP status for err. A ProviderDomainError carrying a
// valid HTTP error status reuses it; validation errors map to 400; anything
// else yields fallback.
func StatusCode(err error, fallback int) int {
	var (
		domainErr     *ProviderDomainError
		validationErr *ValidationError
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &domainErr):
		if domainErr.Code >= 400 && domainErr.Code <= 599 {
			return domainErr.Code
		}
	}
	return fallback
}

// Kind returns a short label for err, used in logs and metrics.
func Kind(err error) string {
	var (
		configErr     *ConfigurationError
		validationErr *ValidationError
		httpErr       *ProviderHTTPError
		logicErr      *ProviderLogicError
		domainErr     *ProviderDomainError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &configErr):
		return "configuration"
	case errors.As(err, &validationErr):
		return "validation"
	case errors.As(err, &domainErr):
		return "provider_domain"
	case errors.As(err, &httpErr):
		return "provider_http"
	case errors.As(err, &logicErr):
		return "provider_logic"
	default:
		return "transport"
	}
}
