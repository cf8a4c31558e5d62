package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mira-tracker/mira-backend/internal/api/http/request"
	"github.com/mira-tracker/mira-backend/internal/api/http/respond"
	"github.com/mira-tracker/mira-backend/internal/auth"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// ListComments returns an issue's comments newest first.
func (h *Handler) ListComments(c *gin.Context) {
	issueID, ok := request.ParamID(c, "issueId")
	if !ok {
		return
	}
	comments, err := h.comments.ListByIssue(c.Request.Context(), issueID)
	if err != nil {
		respond.Error(c, "comments.list", err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *Handler) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if !request.BindJSON(c, &req) {
		return
	}
	if req.AuthorID == 0 {
		if uid := auth.UserID(c); uid != nil {
			req.AuthorID = *uid
		}
	}
	comment, err := h.comments.Create(c.Request.Context(), domain.CreateCommentInput{
		Content:  req.Content,
		IssueID:  req.IssueID,
		AuthorID: req.AuthorID,
	})
	if err != nil {
		respond.Error(c, "comments.create", err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) UpdateComment(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	var req updateCommentRequest
	if !request.BindJSON(c, &req) {
		return
	}
	comment, err := h.comments.Update(c.Request.Context(), id, req.Content)
	if err != nil {
		respond.Error(c, "comments.update", err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment is refused with 403 when a signed in user is not the author.
func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := request.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.comments.Delete(c.Request.Context(), id, auth.UserID(c)); err != nil {
		respond.Error(c, "comments.delete", err)
		return
	}
	c.JSON(http.StatusOK, respond.MessageBody{Message: "Comment deleted successfully"})
}
