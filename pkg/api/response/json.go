// Package response provides HTTP response utilities.
package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		// Headers are already sent; nothing useful can be written on failure.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes an error body with the given status code and message.
func Error(w http.ResponseWriter, statusCode int, message string, requestID string) {
	JSON(w, statusCode, ErrorResponse{
		Error:     message,
		Code:      ErrorCodeFromStatus(statusCode),
		RequestID: requestID,
	})
}
