package http

import (
	"github.com/mira-tracker/mira-backend/internal/api/http/request"
	"github.com/mira-tracker/mira-backend/internal/board"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
	"github.com/mira-tracker/mira-backend/internal/tracker/service"
)

type Handler struct {
	issues    *service.IssueService
	projects  *service.ProjectService
	comments  *service.CommentService
	users     *service.UserService
	dashboard *service.DashboardService
}

// Services bundles what the tracker routes need.
type Services struct {
	Issues    *service.IssueService
	Projects  *service.ProjectService
	Comments  *service.CommentService
	Users     *service.UserService
	Dashboard *service.DashboardService
}

func New(s Services) *Handler {
	return &Handler{
		issues:    s.Issues,
		projects:  s.Projects,
		comments:  s.Comments,
		users:     s.Users,
		dashboard: s.Dashboard,
	}
}

type createIssueRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Status        *string `json:"status"`
	Priority      *string `json:"priority"`
	ProjectID     int64   `json:"projectId"`
	ReporterID    int64   `json:"reporterId"`
	AssigneeID    *int64  `json:"assigneeId"`
	Chipset       string  `json:"chipset"`
	ChipsetVer    *string `json:"chipsetVer"`
	ChipsetVendor *string `json:"chipsetVendor"`
}

// updateIssueRequest is a partial update; assigneeId null unassigns.
type updateIssueRequest struct {
	Title         *string               `json:"title"`
	Description   *string               `json:"description"`
	Status        *string               `json:"status"`
	Priority      *string               `json:"priority"`
	AssigneeID    request.OptionalInt64 `json:"assigneeId"`
	Chipset       *string               `json:"chipset"`
	ChipsetVer    *string               `json:"chipsetVer"`
	ChipsetVendor *string               `json:"chipsetVendor"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	Description string `json:"description"`
}

type createCommentRequest struct {
	Content  string `json:"content"`
	IssueID  int64  `json:"issueId"`
	AuthorID int64  `json:"authorId"`
}

type updateCommentRequest struct {
	Content string `json:"content"`
}

type boardResponse struct {
	ProjectID int64          `json:"projectId"`
	Columns   []board.Column `json:"columns"`
	Members   []string       `json:"members"`
}

func parseOptionalStatus(v *string) (*domain.Status, error) {
	if v == nil {
		return nil, nil
	}
	s, err := domain.ParseStatus(*v)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func parseOptionalPriority(v *string) (*domain.Priority, error) {
	if v == nil {
		return nil, nil
	}
	p, err := domain.ParsePriority(*v)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// parseOptionalVendor treats an empty string like an absent vendor.
func parseOptionalVendor(v *string) (*domain.ChipsetVendor, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	cv, err := domain.ParseChipsetVendor(*v)
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r createIssueRequest) toInput() (domain.CreateIssueInput, error) {
	in := domain.CreateIssueInput{
		Title:       r.Title,
		Description: r.Description,
		ProjectID:   r.ProjectID,
		ReporterID:  r.ReporterID,
		AssigneeID:  r.AssigneeID,
		Chipset:     r.Chipset,
		ChipsetVer:  r.ChipsetVer,
	}
	var err error
	if in.Status, err = parseOptionalStatus(r.Status); err != nil {
		return in, err
	}
	if in.Priority, err = parseOptionalPriority(r.Priority); err != nil {
		return in, err
	}
	if in.ChipsetVendor, err = parseOptionalVendor(r.ChipsetVendor); err != nil {
		return in, err
	}
	return in, nil
}

func (r updateIssueRequest) toInput() (domain.UpdateIssueInput, error) {
	in := domain.UpdateIssueInput{
		Title:       r.Title,
		Description: r.Description,
		Chipset:     r.Chipset,
		ChipsetVer:  r.ChipsetVer,
	}
	if r.AssigneeID.Set {
		in.AssigneeID = r.AssigneeID.Value
		in.ClearAssignee = r.AssigneeID.Value == nil
	}
	var err error
	if in.Status, err = parseOptionalStatus(r.Status); err != nil {
		return in, err
	}
	if in.Priority, err = parseOptionalPriority(r.Priority); err != nil {
		return in, err
	}
	if in.ChipsetVendor, err = parseOptionalVendor(r.ChipsetVendor); err != nil {
		return in, err
	}
	return in, nil
}
