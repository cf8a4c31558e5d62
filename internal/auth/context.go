package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mira-tracker/mira-backend/internal/auth/domain"
)

const (
	CtxSession = "session"
	CtxUserID  = "user_id"
)

type sessionKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session attached by the bearer middleware, if any.
func SessionFrom(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*domain.Session)
	return s, ok && s != nil
}

// UserID returns the authenticated user id from the Gin context, or nil.
func UserID(c *gin.Context) *int64 {
	s, ok := SessionFrom(c.Request.Context())
	if !ok {
		return nil
	}
	id := s.UserID
	return &id
}
