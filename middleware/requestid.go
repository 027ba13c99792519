package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader is the header carrying the request ID in and out.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request a request ID, honouring one supplied by
// the caller, and echoes it in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), requestID)))
	})
}
