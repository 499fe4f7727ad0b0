package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rongwang/nailpos-server/internal/models"
)

const (
	ctxUserID    = "userId"
	ctxEmail     = "email"
	ctxRole      = "role"
	ctxTraceID   = "traceId"
	ctxJWTSecret = "jwtSecret"
)

// JWTSecretMiddleware exposes the signing key to AuthMiddleware
func JWTSecretMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxJWTSecret, secret)
		c.Next()
	}
}

// TraceIDMiddleware tags every request with an id that is returned in the
// X-Trace-ID header and in error bodies
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := uuid.New().String()
		c.Set(ctxTraceID, traceID)
		c.Writer.Header().Set("X-Trace-ID", traceID)
		c.Next()
	}
}

// AuthMiddleware returns a Gin middleware for authentication
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWith(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token format")
			return
		}

		jwtSecret := c.MustGet(ctxJWTSecret).([]byte)
		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			abortWith(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortWith(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token claims")
			return
		}

		userID, ok := claims["sub"].(string)
		if !ok || userID == "" {
			abortWith(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user ID in token")
			return
		}
		role, ok := claims["role"].(string)
		if !ok || role == "" {
			abortWith(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid role in token")
			return
		}
		email, _ := claims["email"].(string)

		c.Set(ctxUserID, userID)
		c.Set(ctxEmail, email)
		c.Set(ctxRole, models.Role(role).Normalize())
		c.Next()
	}
}

// RequireRoles lets the request through only when the token carries one of
// the given roles. It must run after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ctxRole)
		current, _ := role.(models.Role)

		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}

		abortWith(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
	}
}

func abortWith(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString(ctxTraceID),
	})
}
