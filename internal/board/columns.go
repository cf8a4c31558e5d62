// Package board projects an issue snapshot onto kanban columns and runs the
// optimistic drag-drop protocol against a status updater.
package board

import (
	"strconv"
	"strings"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

type Column struct {
	ID     domain.Status  `json:"id"`
	Title  string         `json:"title"`
	Issues []domain.Issue `json:"issues"`
}

type columnDef struct {
	status domain.Status
	title  string
}

// layout is a partial mapping. REOPENED has no column, so reopened issues
// are not on the board.
var layout = []columnDef{
	{domain.StatusOpen, "To Do"},
	{domain.StatusInProgress, "In Progress"},
	{domain.StatusResolved, "Resolved"},
	{domain.StatusClosed, "Done"},
}

// ColumnFor returns the column title for a status and whether one exists.
func ColumnFor(s domain.Status) (string, bool) {
	for _, c := range layout {
		if c.status == s {
			return c.title, true
		}
	}
	return "", false
}

// ColumnIDs lists the board columns in display order.
func ColumnIDs() []domain.Status {
	out := make([]domain.Status, len(layout))
	for i, c := range layout {
		out[i] = c.status
	}
	return out
}

// Filter narrows what is rendered. It never changes column membership.
type Filter struct {
	Search   string
	Assignee string
}

const AllAssignees = "all"

// Match reports whether the issue should be rendered: the search text must
// appear in the title (case-insensitive) or in the id, and the assignee must
// match by name unless it is empty or "all".
func (f Filter) Match(is domain.Issue) bool {
	if q := strings.TrimSpace(f.Search); q != "" {
		inTitle := strings.Contains(strings.ToLower(is.Title), strings.ToLower(q))
		inID := strings.Contains(strconv.FormatInt(is.ID, 10), q)
		if !inTitle && !inID {
			return false
		}
	}
	if a := strings.TrimSpace(f.Assignee); a != "" && a != AllAssignees {
		if is.Assignee == nil || is.Assignee.Name != a {
			return false
		}
	}
	return true
}

// Columns groups issues into the board layout, preserving snapshot order
// within each column. Every column is present even when empty.
func Columns(issues []domain.Issue, f Filter) []Column {
	cols := make([]Column, len(layout))
	index := make(map[domain.Status]int, len(layout))
	for i, c := range layout {
		cols[i] = Column{ID: c.status, Title: c.title, Issues: make([]domain.Issue, 0)}
		index[c.status] = i
	}
	for _, is := range issues {
		i, ok := index[is.Status]
		if !ok || !f.Match(is) {
			continue
		}
		cols[i].Issues = append(cols[i].Issues, is)
	}
	return cols
}

// Members returns distinct assignee names in first-seen order.
func Members(issues []domain.Issue) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, is := range issues {
		if is.Assignee == nil {
			continue
		}
		if _, ok := seen[is.Assignee.Name]; ok {
			continue
		}
		seen[is.Assignee.Name] = struct{}{}
		out = append(out, is.Assignee.Name)
	}
	return out
}
