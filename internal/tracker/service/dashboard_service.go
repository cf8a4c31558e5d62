package service

import (
	"context"
	"time"

	"github.com/mira-tracker/mira-backend/internal/analytics"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// DashboardService recomputes the dashboard from a fresh snapshot on every call.
type DashboardService struct {
	issues IssueStore
	base   analytics.Options
	now    func() time.Time
}

func NewDashboardService(issues IssueStore, base analytics.Options) *DashboardService {
	return &DashboardService{issues: issues, base: base, now: time.Now}
}

func (s *DashboardService) Compute(ctx context.Context, f domain.IssueFilter) (analytics.DashboardView, error) {
	issues, err := s.issues.List(ctx, f)
	if err != nil {
		return analytics.DashboardView{}, err
	}
	opts := s.base
	opts.Now = s.now()
	return analytics.Compute(issues, opts), nil
}
