package service

import (
	"context"
	"strings"

	"github.com/mira-tracker/mira-backend/internal/logging"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

type ProjectService struct {
	projects ProjectStore
	issues   IssueStore
}

func NewProjectService(projects ProjectStore, issues IssueStore) *ProjectService {
	return &ProjectService{projects: projects, issues: issues}
}

func (s *ProjectService) Create(ctx context.Context, in domain.CreateProjectInput) (*domain.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Key = strings.ToUpper(strings.TrimSpace(in.Key))
	if in.Name == "" {
		return nil, domain.Validation("name is required")
	}
	if in.Key == "" {
		return nil, domain.Validation("key is required")
	}

	p, err := s.projects.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	logging.New(ctx).Infof("projects.create", "project_id=%d key=%s", p.ID, p.Key)
	return p, nil
}

func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.projects.List(ctx)
}

// Get returns the project with its issues embedded.
func (s *ProjectService) Get(ctx context.Context, id int64) (*domain.ProjectDetail, error) {
	p, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	issues, err := s.issues.List(ctx, domain.IssueFilter{ProjectID: &id})
	if err != nil {
		return nil, err
	}
	return &domain.ProjectDetail{Project: *p, Issues: issues}, nil
}
