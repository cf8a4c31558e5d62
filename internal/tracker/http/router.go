package http

import "github.com/gin-gonic/gin"

// Register registers the tracker routes under rg (normally /api).
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/issues", h.ListIssues)
	rg.POST("/issues", h.CreateIssue)
	rg.GET("/issues/:id", h.GetIssue)
	rg.PUT("/issues/:id", h.UpdateIssue)
	rg.PATCH("/issues/:id/status", h.UpdateIssueStatus)

	rg.GET("/projects", h.ListProjects)
	rg.POST("/projects", h.CreateProject)
	rg.GET("/projects/:id", h.GetProject)
	rg.GET("/projects/:id/board", h.GetBoard)

	rg.GET("/comments/issue/:issueId", h.ListComments)
	rg.POST("/comments", h.CreateComment)
	rg.PUT("/comments/:id", h.UpdateComment)
	rg.DELETE("/comments/:id", h.DeleteComment)

	rg.GET("/users", h.ListUsers)
	rg.GET("/dashboard", h.GetDashboard)
}
