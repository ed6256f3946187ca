package twitter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/grammarpost/grammarpost/pkg/apierror"
)

const (
	msgForbidden    = "Twitter API rejected the request: Forbidden. This might be due to duplicate content or rate limits."
	msgUnauthorized = "Twitter API authentication failed. Please check your credentials."
)

// APIError is one entry of the provider's "errors" array.
type APIError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Title   string `json:"title,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Type    string `json:"type,omitempty"`
}

// RateLimit is read from the x-rate-limit-* response headers.
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// ResponseError is a non-2xx provider answer. Code is the HTTP status.
type ResponseError struct {
	Code      int
	Title     string
	Detail    string
	Errors    []APIError
	RateLimit *RateLimit
	// Data is the raw response body.
	Data json.RawMessage
}

func (e *ResponseError) Error() string {
	var reason string
	switch {
	case e.Detail != "":
		reason = e.Detail
	case len(e.Errors) > 0:
		msgs := make([]string, 0, len(e.Errors))
		for _, apiErr := range e.Errors {
			if apiErr.Message != "" {
				msgs = append(msgs, apiErr.Message)
			} else if apiErr.Detail != "" {
				msgs = append(msgs, apiErr.Detail)
			}
		}
		reason = strings.Join(msgs, "; ")
	case e.Title != "":
		reason = e.Title
	default:
		reason = http.StatusText(e.Code)
	}
	return fmt.Sprintf("Request failed with code %d - %s", e.Code, reason)
}

// newResponseError builds a ResponseError from a failed response.
func newResponseError(resp *http.Response, body []byte) *ResponseError {
	e := &ResponseError{
		Code:      resp.StatusCode,
		RateLimit: parseRateLimit(resp.Header),
	}
	if json.Valid(body) {
		e.Data = json.RawMessage(body)
		var payload struct {
			Title  string     `json:"title"`
			Detail string     `json:"detail"`
			Errors []APIError `json:"errors"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			e.Title = payload.Title
			e.Detail = payload.Detail
			e.Errors = payload.Errors
		}
	}
	return e
}

func parseRateLimit(h http.Header) *RateLimit {
	limit, err := strconv.Atoi(h.Get("x-rate-limit-limit"))
	if err != nil {
		return nil
	}
	rl := &RateLimit{Limit: limit}
	rl.Remaining, _ = strconv.Atoi(h.Get("x-rate-limit-remaining"))
	if reset, err := strconv.ParseInt(h.Get("x-rate-limit-reset"), 10, 64); err == nil {
		rl.Reset = time.Unix(reset, 0).UTC()
	}
	return rl
}

// mapError turns coded provider errors into apierror.ProviderDomainError
// with a clearer message. Errors without a code are returned unmodified.
func mapError(err error) error {
	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		return err
	}

	var msg string
	switch respErr.Code {
	case http.StatusForbidden:
		msg = msgForbidden
	case http.StatusUnauthorized:
		msg = msgUnauthorized
	default:
		msg = "Twitter API Error: " + respErr.Error()
	}

	return &apierror.ProviderDomainError{
		Provider: providerName,
		Code:     respErr.Code,
		Message:  msg,
		Data:     respErr.Data,
		Original: respErr,
	}
}
