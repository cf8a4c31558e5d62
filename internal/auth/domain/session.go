package domain

import (
	"errors"
	"time"
)

// Session is the server side state behind a bearer token. It is created at
// login or register and destroyed at logout.
type Session struct {
	ID                string    `json:"id"`
	UserID            int64     `json:"userId"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Role              string    `json:"role"`
	ActiveTab         string    `json:"activeTab,omitempty"`
	SelectedProjectID *int64    `json:"selectedProjectId,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	ExpiresAt         time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SessionPatch updates the UI state carried by a session. Nil fields are kept.
type SessionPatch struct {
	ActiveTab         *string
	SelectedProjectID *int64
	ClearProject      bool
}

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidToken    = errors.New("invalid token")
)
