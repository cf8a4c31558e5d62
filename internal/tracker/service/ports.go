package service

import (
	"context"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// IssueStore is the persistence surface the lifecycle service needs.
// Implemented by repository.IssueRepository and memstore.Issues.
type IssueStore interface {
	Create(ctx context.Context, in domain.CreateIssueInput) (*domain.Issue, error)
	Get(ctx context.Context, id int64) (*domain.Issue, error)
	List(ctx context.Context, f domain.IssueFilter) ([]domain.Issue, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) error
	Update(ctx context.Context, id int64, in domain.UpdateIssueInput) error
}

type ProjectStore interface {
	Create(ctx context.Context, in domain.CreateProjectInput) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	Get(ctx context.Context, id int64) (*domain.Project, error)
}

type CommentStore interface {
	ListByIssue(ctx context.Context, issueID int64) ([]domain.Comment, error)
	Get(ctx context.Context, id int64) (*domain.Comment, error)
	Create(ctx context.Context, in domain.CreateCommentInput) (*domain.Comment, error)
	UpdateContent(ctx context.Context, id int64, content string) (*domain.Comment, error)
	Delete(ctx context.Context, id int64) error
}

type UserStore interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}
