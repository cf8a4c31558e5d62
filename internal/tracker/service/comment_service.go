package service

import (
	"context"
	"strings"

	"github.com/mira-tracker/mira-backend/internal/logging"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

type CommentService struct {
	comments CommentStore
}

func NewCommentService(comments CommentStore) *CommentService {
	return &CommentService{comments: comments}
}

func (s *CommentService) ListByIssue(ctx context.Context, issueID int64) ([]domain.Comment, error) {
	return s.comments.ListByIssue(ctx, issueID)
}

func (s *CommentService) Create(ctx context.Context, in domain.CreateCommentInput) (*domain.Comment, error) {
	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		return nil, domain.Validation("content is required")
	}
	if in.IssueID <= 0 {
		return nil, domain.Validation("issueId is required")
	}
	if in.AuthorID <= 0 {
		return nil, domain.Validation("authorId is required")
	}
	c, err := s.comments.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	logging.New(ctx).Infof("comments.create", "comment_id=%d issue_id=%d", c.ID, c.IssueID)
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, id int64, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.Validation("content is required")
	}
	return s.comments.UpdateContent(ctx, id, content)
}

// Delete removes a comment. actorID is the authenticated user, if any; a
// known actor may only delete their own comments.
func (s *CommentService) Delete(ctx context.Context, id int64, actorID *int64) error {
	if actorID != nil {
		c, err := s.comments.Get(ctx, id)
		if err != nil {
			return err
		}
		if c.AuthorID != *actorID {
			return domain.Forbidden("only the author can delete this comment")
		}
	}
	if err := s.comments.Delete(ctx, id); err != nil {
		return err
	}
	logging.New(ctx).Infof("comments.delete", "comment_id=%d", id)
	return nil
}
