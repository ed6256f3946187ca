package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/grammarpost/grammarpost/pkg/api/response"
	"github.com/grammarpost/grammarpost/pkg/logger"
)

// Recovery returns a middleware that recovers from panics. The panic value is
// logged but never sent to the client.
func Recovery(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					log.ErrorContext(r.Context(), "Panic recovered",
						"error", fmt.Sprint(err),
						"path", r.URL.Path,
						"method", r.Method,
						"request_id", GetRequestID(r.Context()),
						"stack", string(debug.Stack()),
					)

					response.Error(w, http.StatusInternalServerError, "Internal server error", GetRequestID(r.Context()))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
