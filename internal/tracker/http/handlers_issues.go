package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mira-tracker/mira-backend/internal/api/http/request"
	"github.com/mira-tracker/mira-backend/internal/api/http/respond"
	"github.com/mira-tracker/mira-backend/internal/auth"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// ListIssues returns every issue, optionally narrowed by ?projectId=.
func (h *Handler) ListIssues(c *gin.Context) {
	projectID, ok := request.QueryID(c, "projectId")
	if !ok {
		return
	}
	issues, err := h.issues.ListIssues(c.Request.Context(), domain.IssueFilter{ProjectID: projectID})
	if err != nil {
		respond.Error(c, "issues.list", err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

func (h *Handler) GetIssue(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	issue, err := h.issues.GetIssue(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, "issues.get", err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

// CreateIssue creates an issue. The reporter defaults to the signed in user.
func (h *Handler) CreateIssue(c *gin.Context) {
	var req createIssueRequest
	if !request.BindJSON(c, &req) {
		return
	}
	if req.ReporterID == 0 {
		if uid := auth.UserID(c); uid != nil {
			req.ReporterID = *uid
		}
	}
	in, err := req.toInput()
	if err != nil {
		respond.Error(c, "issues.create", err)
		return
	}

	issue, err := h.issues.CreateIssue(c.Request.Context(), in)
	if err != nil {
		respond.Error(c, "issues.create", err)
		return
	}
	c.JSON(http.StatusCreated, issue)
}

func (h *Handler) UpdateIssueStatus(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !request.BindJSON(c, &req) {
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		respond.Error(c, "issues.update_status", err)
		return
	}

	issue, err := h.issues.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		respond.Error(c, "issues.update_status", err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (h *Handler) UpdateIssue(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req updateIssueRequest
	if !request.BindJSON(c, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		respond.Error(c, "issues.update", err)
		return
	}

	issue, err := h.issues.UpdateIssue(c.Request.Context(), id, in)
	if err != nil {
		respond.Error(c, "issues.update", err)
		return
	}
	c.JSON(http.StatusOK, issue)
}
