package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mira-tracker/mira-backend/internal/api/http/request"
	"github.com/mira-tracker/mira-backend/internal/api/http/respond"
	"github.com/mira-tracker/mira-backend/internal/board"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		respond.Error(c, "projects.list", err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *Handler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if !request.BindJSON(c, &req) {
		return
	}
	project, err := h.projects.Create(c.Request.Context(), domain.CreateProjectInput{
		Name:        req.Name,
		Key:         req.Key,
		Description: req.Description,
	})
	if err != nil {
		respond.Error(c, "projects.create", err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// GetProject returns the project with its issues embedded.
func (h *Handler) GetProject(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	project, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, "projects.get", err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// GetBoard lays the project's issues out as kanban columns. ?search= and
// ?assignee= narrow what is rendered.
func (h *Handler) GetBoard(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	project, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, "projects.board", err)
		return
	}

	f := board.Filter{Search: c.Query("search"), Assignee: c.Query("assignee")}
	c.JSON(http.StatusOK, boardResponse{
		ProjectID: project.ID,
		Columns:   board.Columns(project.Issues, f),
		Members:   board.Members(project.Issues),
	})
}
