// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grammarpost/grammarpost/pkg/api/middleware"
	"github.com/grammarpost/grammarpost/pkg/api/response"
)

var errBodyTooLarge = errors.New("request body too large")

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return err
	}
	return nil
}

// writeDecodeError answers a body that could not be decoded.
func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBodyTooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge, "Request body too large", getRequestID(r.Context()))
		return
	}
	response.Error(w, http.StatusBadRequest, "Invalid request body", getRequestID(r.Context()))
}

func getRequestID(ctx context.Context) string {
	return middleware.GetRequestID(ctx)
}
