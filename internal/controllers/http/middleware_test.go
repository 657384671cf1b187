package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminToken(t *testing.T, secret, role string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ops@storefront",
		"role": role,
		"exp":  time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func customerToken(t *testing.T, secret, email string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "cus_1042",
		"email": email,
		"exp":   time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func bearer(t *testing.T, token string) http.Header {
	t.Helper()
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func TestAdminAuth(t *testing.T) {
	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"role": "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         http.Header
		expectedStatus int
		expectSubject  bool
	}{
		{"valid admin token", bearer(t, adminToken(t, testSecret, "admin", time.Hour)), http.StatusOK, true},
		{"missing header", nil, http.StatusUnauthorized, false},
		{"not a bearer token", http.Header{"Authorization": []string{"Basic abc"}}, http.StatusUnauthorized, false},
		{"wrong secret", bearer(t, adminToken(t, "other", "admin", time.Hour)), http.StatusUnauthorized, false},
		{"expired", bearer(t, adminToken(t, testSecret, "admin", -time.Minute)), http.StatusUnauthorized, false},
		{"unsigned token", bearer(t, noneToken), http.StatusUnauthorized, false},
		{"customer role", bearer(t, adminToken(t, testSecret, "customer", time.Hour)), http.StatusForbidden, false},
		{"no expiry", bearer(t, signed(t, testSecret, jwt.MapClaims{"sub": "ops@storefront", "role": "admin"})), http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			var subject string
			r.GET("/admin", AdminAuth([]byte(testSecret)), func(c *gin.Context) {
				subject = c.GetString(ctxAdminSubject)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			for k, v := range tt.header {
				req.Header[k] = v
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectSubject {
				assert.Equal(t, "ops@storefront", subject)
			} else {
				assert.Empty(t, subject)
			}
		})
	}
}

func TestCustomerAuth(t *testing.T) {
	tests := []struct {
		name           string
		header         http.Header
		expectedStatus int
		expectedEmail  string
	}{
		{"email claim", bearer(t, customerToken(t, testCustomerSecret, "ada@example.com", time.Hour)), http.StatusOK, "ada@example.com"},
		{"email in sub", bearer(t, signed(t, testCustomerSecret, jwt.MapClaims{"sub": "ada@example.com", "exp": time.Now().Add(time.Hour).Unix()})), http.StatusOK, "ada@example.com"},
		{"no email", bearer(t, signed(t, testCustomerSecret, jwt.MapClaims{"sub": "cus_1042", "exp": time.Now().Add(time.Hour).Unix()})), http.StatusUnauthorized, ""},
		{"no expiry", bearer(t, signed(t, testCustomerSecret, jwt.MapClaims{"email": "ada@example.com"})), http.StatusUnauthorized, ""},
		{"expired", bearer(t, customerToken(t, testCustomerSecret, "ada@example.com", -time.Minute)), http.StatusUnauthorized, ""},
		{"wrong secret", bearer(t, customerToken(t, "other", "ada@example.com", time.Hour)), http.StatusUnauthorized, ""},
		{"missing header", nil, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			var email string
			r.GET("/orders", CustomerAuth([]byte(testCustomerSecret)), func(c *gin.Context) {
				email = c.GetString(ctxCustomerEmail)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			for k, v := range tt.header {
				req.Header[k] = v
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedEmail, email)
		})
	}
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusTeapot, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestBindingMessage(t *testing.T) {
	assert.Equal(t, "Invalid request body", bindingMessage(assert.AnError))
}
