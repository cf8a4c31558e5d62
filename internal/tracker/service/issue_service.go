package service

import (
	"context"
	"strings"

	"github.com/mira-tracker/mira-backend/internal/logging"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// IssueService owns the issue lifecycle and is the only place domain
// rules are enforced.
type IssueService struct {
	issues IssueStore
	policy TransitionPolicy
}

func NewIssueService(issues IssueStore, policy TransitionPolicy) *IssueService {
	return &IssueService{issues: issues, policy: policy}
}

func (s *IssueService) Policy() TransitionPolicy {
	return s.policy
}

// CreateIssue validates required fields and enum values and defaults status
// to OPEN and priority to MEDIUM. Unknown project, reporter or assignee ids
// are reported by the store.
func (s *IssueService) CreateIssue(ctx context.Context, in domain.CreateIssueInput) (*domain.Issue, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, domain.Validation("title is required")
	}
	if in.ProjectID <= 0 {
		return nil, domain.Validation("projectId is required")
	}
	if in.ReporterID <= 0 {
		return nil, domain.Validation("reporterId is required")
	}

	status := domain.StatusOpen
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, domain.Validation("invalid status: " + string(*in.Status))
		}
		status = *in.Status
	}
	priority := domain.PriorityMedium
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, domain.Validation("invalid priority: " + string(*in.Priority))
		}
		priority = *in.Priority
	}
	if in.ChipsetVendor != nil && !in.ChipsetVendor.Valid() {
		return nil, domain.Validation("invalid chipset vendor: " + string(*in.ChipsetVendor))
	}
	in.Status = &status
	in.Priority = &priority

	issue, err := s.issues.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	logging.New(ctx).Infof("issues.create", "issue_id=%d project_id=%d status=%s priority=%s",
		issue.ID, issue.ProjectID, issue.Status, issue.Priority)
	return issue, nil
}

// UpdateStatus overwrites the status after checking the transition policy
// and returns the reloaded issue.
func (s *IssueService) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Issue, error) {
	if !status.Valid() {
		return nil, domain.Validation("invalid status: " + string(status))
	}

	current, err := s.issues.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(current.Status, status); err != nil {
		return nil, err
	}
	if err := s.issues.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	logging.New(ctx).Infof("issues.update_status", "issue_id=%d from=%s to=%s", id, current.Status, status)
	return s.issues.Get(ctx, id)
}

// UpdateIssue applies a partial update. A status change passes the same
// policy check as UpdateStatus.
func (s *IssueService) UpdateIssue(ctx context.Context, id int64, in domain.UpdateIssueInput) (*domain.Issue, error) {
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return nil, domain.Validation("title cannot be empty")
		}
		in.Title = &t
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, domain.Validation("invalid status: " + string(*in.Status))
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return nil, domain.Validation("invalid priority: " + string(*in.Priority))
	}
	if in.ChipsetVendor != nil && !in.ChipsetVendor.Valid() {
		return nil, domain.Validation("invalid chipset vendor: " + string(*in.ChipsetVendor))
	}

	current, err := s.issues.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status != nil {
		if err := s.policy.Check(current.Status, *in.Status); err != nil {
			return nil, err
		}
	}
	if err := s.issues.Update(ctx, id, in); err != nil {
		return nil, err
	}

	logging.New(ctx).Infof("issues.update", "issue_id=%d", id)
	return s.issues.Get(ctx, id)
}

func (s *IssueService) GetIssue(ctx context.Context, id int64) (*domain.Issue, error) {
	return s.issues.Get(ctx, id)
}

func (s *IssueService) ListIssues(ctx context.Context, f domain.IssueFilter) ([]domain.Issue, error) {
	return s.issues.List(ctx, f)
}
