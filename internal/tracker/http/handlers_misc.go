package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mira-tracker/mira-backend/internal/api/http/request"
	"github.com/mira-tracker/mira-backend/internal/api/http/respond"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respond.Error(c, "users.list", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetDashboard recomputes the dashboard view from a fresh issue snapshot.
func (h *Handler) GetDashboard(c *gin.Context) {
	projectID, ok := request.QueryID(c, "projectId")
	if !ok {
		return
	}
	view, err := h.dashboard.Compute(c.Request.Context(), domain.IssueFilter{ProjectID: projectID})
	if err != nil {
		respond.Error(c, "dashboard", err)
		return
	}
	c.JSON(http.StatusOK, view)
}
