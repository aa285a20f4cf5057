package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
)

type VisitorResolver interface {
	Resolve(userID, clientIP string) domain.VisitorID
}

// Visitor attaches the dedup identity for view ingestion. It must run after
// auth so authenticated actors are keyed by user id.
func Visitor(res VisitorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			vid := res.Resolve(UserID(r), ClientIP(r))
			ctx := context.WithValue(r.Context(), ctxVisitor, vid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func VisitorID(r *http.Request) domain.VisitorID {
	if v, ok := r.Context().Value(ctxVisitor).(domain.VisitorID); ok {
		return v
	}
	return ""
}

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection address. Returns "" when none is usable.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
