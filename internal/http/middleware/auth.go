package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"traintrack/internal/domain"
)

const (
	userIDKey = "user_id"
	tokenKey  = "auth_token"
)

// Authenticator resolves a bearer token to a user id.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// BearerToken returns the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAuth rejects requests without a live session.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		userID, err := auth.Authenticate(token)
		if err != nil {
			msg := "Invalid or expired token"
			var unauth domain.UnauthorizedError
			if errors.As(err, &unauth) && unauth.Msg != "" {
				msg = unauth.Msg
			}
			abortUnauthorized(c, msg)
			return
		}
		c.Set(userIDKey, userID)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":     "error",
		"message":    msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}

// RequestContext returns the authenticated identity set by RequireAuth.
func RequestContext(c *gin.Context) domain.RequestContext {
	return domain.RequestContext{UserID: c.GetString(userIDKey), Token: c.GetString(tokenKey)}
}
