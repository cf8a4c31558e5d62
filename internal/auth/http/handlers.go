package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mira-tracker/mira-backend/internal/api/http/request"
	"github.com/mira-tracker/mira-backend/internal/api/http/respond"
	"github.com/mira-tracker/mira-backend/internal/auth"
	authdomain "github.com/mira-tracker/mira-backend/internal/auth/domain"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !request.BindJSON(c, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		respond.Error(c, "auth.login", domain.ErrInvalidCredentials)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(c, "auth.login", err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: res.Token, User: res.User})
}

// SignUp creates an account and signs it in.
func (h *Handler) SignUp(c *gin.Context) {
	var req registerRequest
	if !request.BindJSON(c, &req) {
		return
	}

	res, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		// Duplicate accounts are reported as a plain bad request.
		if domain.KindOf(err) == domain.KindConflict {
			respond.BadRequest(c, domain.ErrUserExists.Message)
			return
		}
		respond.Error(c, "auth.register", err)
		return
	}
	c.JSON(http.StatusCreated, tokenResponse{Token: res.Token, User: res.User})
}

func (h *Handler) Me(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	user, err := h.authService.Me(c.Request.Context(), session)
	if err != nil {
		respond.Error(c, "auth.me", err)
		return
	}
	c.JSON(http.StatusOK, meResponse{User: user, Session: session})
}

func (h *Handler) Logout(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), session); err != nil {
		respond.Error(c, "auth.logout", err)
		return
	}
	c.JSON(http.StatusOK, respond.MessageBody{Message: "Logged out"})
}

// UpdateSession stores the UI state (active tab, selected project) on the session.
func (h *Handler) UpdateSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req sessionRequest
	if !request.BindJSON(c, &req) {
		return
	}

	patch := authdomain.SessionPatch{ActiveTab: req.ActiveTab}
	if req.SelectedProjectID.Set {
		patch.SelectedProjectID = req.SelectedProjectID.Value
		patch.ClearProject = req.SelectedProjectID.Value == nil
	}

	next, err := h.authService.UpdateSession(c.Request.Context(), session, patch)
	if err != nil {
		respond.Error(c, "auth.session", err)
		return
	}
	c.JSON(http.StatusOK, next)
}

func (h *Handler) session(c *gin.Context) (*authdomain.Session, bool) {
	s, ok := auth.SessionFrom(c.Request.Context())
	if !ok {
		respond.Abort(c, http.StatusUnauthorized, domain.KindUnauthorized.String(), "authentication required")
		return nil, false
	}
	return s, true
}
