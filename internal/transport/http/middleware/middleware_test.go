package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/application/events"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/engagement-service/internal/transport/http/response"
)

const (
	testSecret = "test-secret"
	testIssuer = "test-issuer"
)

func generateToken(uid, role, iss, secret string, expired bool) string {
	exp := time.Now().Add(time.Hour)
	if expired {
		exp = time.Now().Add(-time.Hour)
	}
	claims := Claims{
		UserID: uid,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    iss,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, _ := token.SignedString([]byte(secret))
	return ss
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestAuthMiddleware_Require(t *testing.T) {
	auth := NewAuth(testSecret, testIssuer)

	t.Run("valid_token_should_pass_and_set_context", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+generateToken("user-123", "admin", testIssuer, testSecret, false))
		rr := httptest.NewRecorder()

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "user-123", UserID(r))
			assert.Equal(t, "admin", Role(r))
			w.WriteHeader(http.StatusOK)
		})
		auth.Require(next).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	tests := []struct {
		name  string
		token string
	}{
		{"expired", generateToken("u1", "user", testIssuer, testSecret, true)},
		{"wrong_secret", generateToken("u1", "user", testIssuer, "wrong", false)},
		{"wrong_issuer", generateToken("u1", "user", "other", testSecret, false)},
		{"missing_uid", generateToken("", "user", testIssuer, testSecret, false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			rr := httptest.NewRecorder()
			auth.Require(okHandler).ServeHTTP(rr, req)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}

	t.Run("missing_header", func(t *testing.T) {
		rr := httptest.NewRecorder()
		auth.Require(okHandler).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAuthMiddleware_Optional(t *testing.T) {
	auth := NewAuth(testSecret, testIssuer)

	t.Run("anonymous_passes", func(t *testing.T) {
		rr := httptest.NewRecorder()
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, UserID(r))
			w.WriteHeader(http.StatusNoContent)
		})
		auth.Optional(next).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("valid_token_sets_actor", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+generateToken("u9", "", testIssuer, testSecret, false))
		rr := httptest.NewRecorder()
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "u9", UserID(r))
			assert.Equal(t, "user", Role(r))
		})
		auth.Optional(next).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("invalid_token_rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rr := httptest.NewRecorder()
		auth.Optional(okHandler).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded_first_hop", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", "203.0.113.7"},
		{"real_ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:1234", "198.51.100.4"},
		{"remote_addr", nil, "192.0.2.10:5555", "192.0.2.10"},
		{"remote_addr_without_port", nil, "192.0.2.11", "192.0.2.11"},
		{"nothing", nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}

func TestVisitor(t *testing.T) {
	res := domain.NewVisitorResolver("salt", "")
	auth := NewAuth(testSecret, testIssuer)

	var got domain.VisitorID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { got = VisitorID(r) })
	h := auth.Optional(Visitor(res)(next))

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.0.2.10:5555"
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, res.Resolve("", "192.0.2.10"), got)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+generateToken("u1", "user", testIssuer, testSecret, false))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, domain.VisitorID("user:u1"), got)
}

func TestCronSecret(t *testing.T) {
	guard := CronSecret("s3cret")

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set(HeaderCronSecret, "s3cret")
	rr := httptest.NewRecorder()
	guard(okHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest("POST", "/", nil)
	req.Header.Set(HeaderCronSecret, "nope")
	rr = httptest.NewRecorder()
	guard(okHandler).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	CronSecret("")(okHandler).ServeHTTP(rr, httptest.NewRequest("POST", "/", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = events.TraceIDFromContext(r.Context())
	})

	rr := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(response.HeaderXRequestID))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(response.HeaderXRequestID, "given")
	rr = httptest.NewRecorder()
	RequestID(next).ServeHTTP(rr, req)
	assert.Equal(t, "given", seen)
}

func TestAccessLogAndSecurityHeaders(t *testing.T) {
	req := httptest.NewRequest("GET", "/test-path", nil)
	rr := httptest.NewRecorder()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	})
	SecurityHeaders(AccessLog(next)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "hello", rr.Body.String())
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestAccessLog_QuietPaths(t *testing.T) {
	assert.True(t, isQuiet("/healthz"))
	assert.True(t, isQuiet("/metrics/"))
	assert.False(t, isQuiet("/engagement/v1/views/items"))
}
