package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/response"
)

const HeaderCronSecret = "X-Cron-Secret"

// CronSecret guards internal endpoints with a shared secret. An empty secret
// disables the endpoints entirely.
func CronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := w.Header().Get(response.HeaderXRequestID)
			if secret == "" {
				response.Fail(w, http.StatusNotFound, "not_found", "not found", nil, reqID)
				return
			}
			got := r.Header.Get(HeaderCronSecret)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				response.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid cron secret", nil, reqID)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
