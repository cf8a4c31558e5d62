package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mira-tracker/mira-backend/internal/api/http/respond"
	"github.com/mira-tracker/mira-backend/internal/auth"
	authdomain "github.com/mira-tracker/mira-backend/internal/auth/domain"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// Authenticator resolves a bearer token to its live session.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*authdomain.Session, error)
}

// Bearer validates the Authorization header and attaches the session to
// both the Gin context and the request context.
//
// With required=false a missing or invalid token lets the request through
// anonymously. With required=true it is rejected with 401.
func Bearer(a Authenticator, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			if required {
				respond.Abort(c, http.StatusUnauthorized, domain.KindUnauthorized.String(), "missing authorization token")
				return
			}
			c.Next()
			return
		}

		session, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			if required || domain.KindOf(err) == domain.KindStore {
				respond.Error(c, "auth.bearer", err)
				return
			}
			c.Next()
			return
		}

		c.Set(auth.CtxSession, session)
		c.Set(auth.CtxUserID, session.UserID)
		c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), session))
		c.Next()
	}
}

// RequireSession rejects requests that reached it without a session.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := auth.SessionFrom(c.Request.Context()); !ok {
			respond.Abort(c, http.StatusUnauthorized, domain.KindUnauthorized.String(), "authentication required")
			return
		}
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.EqualFold(bearerToken[:7], "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
