package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"mileage/internal/requestctx"
)

const requestIDHeader = "X-Request-ID"

// RequestID honours a caller-supplied id so upstream proxies can correlate
// logs, minting one otherwise.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), id)))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
