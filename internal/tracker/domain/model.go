package domain

import "time"

// User is an account that reports, owns or comments on issues.
// The password hash never leaves the process.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRef is the reduced author projection embedded in comments.
type UserRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ProjectCount struct {
	Issues int `json:"issues"`
}

type Project struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Key         string        `json:"key"`
	Description string        `json:"description"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Count       *ProjectCount `json:"_count,omitempty"`
}

// ProjectDetail is a project with its issues embedded.
type ProjectDetail struct {
	Project
	Issues []Issue `json:"issues"`
}

// Issue is a tracked defect. UpdatedAt doubles as the resolution time
// when the status is RESOLVED or CLOSED.
type Issue struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Status        Status         `json:"status"`
	Priority      Priority       `json:"priority"`
	ChipsetVendor *ChipsetVendor `json:"chipsetVendor"`
	Chipset       string         `json:"chipset"`
	ChipsetVer    *string        `json:"chipsetVer"`
	ProjectID     int64          `json:"projectId"`
	ReporterID    int64          `json:"reporterId"`
	AssigneeID    *int64         `json:"assigneeId"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`

	Project  *Project `json:"project,omitempty"`
	Reporter *User    `json:"reporter,omitempty"`
	Assignee *User    `json:"assignee,omitempty"`
}

// ReporterName returns the joined reporter name, or "" when not loaded.
func (i Issue) ReporterName() string {
	if i.Reporter == nil {
		return ""
	}
	return i.Reporter.Name
}

// AssigneeName returns the joined assignee name, or "" when unassigned.
func (i Issue) AssigneeName() string {
	if i.Assignee == nil {
		return ""
	}
	return i.Assignee.Name
}

func (i Issue) ProjectName() string {
	if i.Project == nil {
		return ""
	}
	return i.Project.Name
}

type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	IssueID   int64     `json:"issueId"`
	AuthorID  int64     `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    *UserRef  `json:"author,omitempty"`
}

// CreateIssueInput carries caller supplied fields; nil pointers take defaults.
type CreateIssueInput struct {
	Title         string
	Description   string
	Status        *Status
	Priority      *Priority
	ProjectID     int64
	ReporterID    int64
	AssigneeID    *int64
	Chipset       string
	ChipsetVer    *string
	ChipsetVendor *ChipsetVendor
}

// UpdateIssueInput is a partial update. A nil field is left unchanged;
// ClearAssignee unassigns the issue.
type UpdateIssueInput struct {
	Title         *string
	Description   *string
	Status        *Status
	Priority      *Priority
	AssigneeID    *int64
	ClearAssignee bool
	Chipset       *string
	ChipsetVer    *string
	ChipsetVendor *ChipsetVendor
}

type IssueFilter struct {
	ProjectID *int64
}

type CreateProjectInput struct {
	Name        string
	Key         string
	Description string
}

type CreateCommentInput struct {
	Content  string
	IssueID  int64
	AuthorID int64
}

type CreateUserInput struct {
	Email        string
	Name         string
	PasswordHash string
	Role         Role
}
