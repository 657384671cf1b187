package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	ctxAdminSubject  = "admin_subject"
	ctxCustomerEmail = "customer_email"
	adminRole        = "admin"
)

// RequestLogger logs one line per request through slog.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()))
	}
}

// AdminAuth accepts HS256 bearer tokens signed with secret whose role claim is admin.
func AdminAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, secret)
		if !ok {
			return
		}
		if role, _ := claims["role"].(string); role != adminRole {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Message: "Admin role required"})
			return
		}

		sub, _ := claims["sub"].(string)
		c.Set(ctxAdminSubject, sub)
		c.Next()
	}
}

// CustomerAuth accepts HS256 bearer tokens signed with secret and binds the
// request to the email claim. A sub claim holding an address is accepted when
// email is absent.
func CustomerAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, secret)
		if !ok {
			return
		}
		email, _ := claims["email"].(string)
		if email == "" {
			sub, _ := claims["sub"].(string)
			if strings.Contains(sub, "@") {
				email = sub
			}
		}
		email = strings.TrimSpace(email)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Token carries no customer email"})
			return
		}

		c.Set(ctxCustomerEmail, email)
		c.Next()
	}
}

// bearerClaims verifies the bearer token and aborts with 401 when it is
// missing, badly signed, or has no future exp claim.
func bearerClaims(c *gin.Context, secret []byte) (jwt.MapClaims, bool) {
	raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Missing bearer token"})
		return nil, false
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	// jwt/v4 only checks exp when present.
	if err != nil || !token.Valid || !claims.VerifyExpiresAt(time.Now().Unix(), true) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid or expired token"})
		return nil, false
	}
	return claims, true
}
