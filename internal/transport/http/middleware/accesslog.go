package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/events"
)

// probe paths are logged at debug so scrapes do not drown real traffic
var quietPaths = map[string]struct{}{
	"/healthz": {},
	"/readyz":  {},
	"/metrics": {},
}

func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		ev := accessLevel(r.URL.Path, status)
		ev.
			Str("request_id", events.TraceIDFromContext(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("latency", time.Since(start)).
			Str("client_ip", ClientIP(r)).
			Msg("http_request")
	})
}

func accessLevel(path string, status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return zlog.Warn()
	case isQuiet(path):
		return zlog.Debug()
	default:
		return zlog.Info()
	}
}

func isQuiet(path string) bool {
	_, ok := quietPaths[strings.TrimSuffix(path, "/")]
	return ok
}
