package http

import (
	"github.com/mira-tracker/mira-backend/internal/api/http/request"
	authdomain "github.com/mira-tracker/mira-backend/internal/auth/domain"
	"github.com/mira-tracker/mira-backend/internal/auth/service"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

type Handler struct {
	authService *service.AuthService
}

func New(authService *service.AuthService) *Handler {
	return &Handler{
		authService: authService,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// sessionRequest distinguishes an absent selectedProjectId from an explicit null.
type sessionRequest struct {
	ActiveTab         *string               `json:"activeTab"`
	SelectedProjectID request.OptionalInt64 `json:"selectedProjectId"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type meResponse struct {
	User    *domain.User        `json:"user"`
	Session *authdomain.Session `json:"session"`
}
