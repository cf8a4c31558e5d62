package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// IssueRepository persists issues. Every write bumps updated_at without
// letting it move backwards.
type IssueRepository struct {
	db *sql.DB
}

func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

const issueColumns = `id, title, description, status, priority, chipset_vendor, chipset, chipset_ver,
       project_id, reporter_id, assignee_id, created_at, updated_at`

const issueSelect = `
SELECT i.id, i.title, i.description, i.status, i.priority, i.chipset_vendor, i.chipset, i.chipset_ver,
       i.project_id, i.reporter_id, i.assignee_id, i.created_at, i.updated_at,
       p.id, p.name, p."key", p.description, p.created_at, p.updated_at,
       r.id, r.email, r.name, r.role, r.created_at, r.updated_at,
       a.id, a.email, a.name, a.role, a.created_at, a.updated_at
FROM issues i
JOIN projects p ON p.id = i.project_id
JOIN users r ON r.id = i.reporter_id
LEFT JOIN users a ON a.id = i.assignee_id
`

// Create inserts an issue with status and priority already resolved by the caller.
func (r *IssueRepository) Create(ctx context.Context, in domain.CreateIssueInput) (*domain.Issue, error) {
	status := domain.StatusOpen
	if in.Status != nil {
		status = *in.Status
	}
	priority := domain.PriorityMedium
	if in.Priority != nil {
		priority = *in.Priority
	}

	const q = `
INSERT INTO issues (title, description, status, priority, chipset_vendor, chipset, chipset_ver,
                    project_id, reporter_id, assignee_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + issueColumns + `;
`
	row := r.db.QueryRowContext(ctx, q,
		in.Title,
		in.Description,
		status,
		priority,
		vendorArg(in.ChipsetVendor),
		in.Chipset,
		stringArg(in.ChipsetVer),
		in.ProjectID,
		in.ReporterID,
		int64Arg(in.AssigneeID),
	)
	issue, err := scanIssueRow(row)
	if err != nil {
		return nil, classify(err, domain.MsgIssueNotFound)
	}
	return issue, nil
}

// Get returns one issue joined with its project, reporter and assignee.
func (r *IssueRepository) Get(ctx context.Context, id int64) (*domain.Issue, error) {
	row := r.db.QueryRowContext(ctx, issueSelect+`WHERE i.id = $1;`, id)
	issue, err := scanIssueJoined(row)
	if err != nil {
		return nil, classify(err, domain.MsgIssueNotFound)
	}
	return issue, nil
}

// List returns issues in id order, optionally restricted to one project.
func (r *IssueRepository) List(ctx context.Context, f domain.IssueFilter) ([]domain.Issue, error) {
	q := issueSelect
	var args []any
	if f.ProjectID != nil {
		q += `WHERE i.project_id = $1
`
		args = append(args, *f.ProjectID)
	}
	q += `ORDER BY i.id ASC;`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, classify(err, domain.MsgIssueNotFound)
	}
	defer rows.Close()

	out := make([]domain.Issue, 0, 64)
	for rows.Next() {
		issue, err := scanIssueJoined(rows)
		if err != nil {
			return nil, domain.Store(err)
		}
		out = append(out, *issue)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Store(err)
	}
	return out, nil
}

// UpdateStatus overwrites the status. Returns NotFound when no row matched.
func (r *IssueRepository) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	const q = `UPDATE issues SET status = $2, updated_at = GREATEST(now(), updated_at) WHERE id = $1;`
	res, err := r.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return classify(err, domain.MsgIssueNotFound)
	}
	return expectOne(res, domain.MsgIssueNotFound)
}

// Update applies the non-nil fields of in as a single statement.
func (r *IssueRepository) Update(ctx context.Context, id int64, in domain.UpdateIssueInput) error {
	sets := make([]string, 0, 10)
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if in.Title != nil {
		add("title", *in.Title)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.Status != nil {
		add("status", *in.Status)
	}
	if in.Priority != nil {
		add("priority", *in.Priority)
	}
	if in.ClearAssignee {
		sets = append(sets, "assignee_id = NULL")
	} else if in.AssigneeID != nil {
		add("assignee_id", *in.AssigneeID)
	}
	if in.Chipset != nil {
		add("chipset", *in.Chipset)
	}
	if in.ChipsetVer != nil {
		add("chipset_ver", *in.ChipsetVer)
	}
	if in.ChipsetVendor != nil {
		add("chipset_vendor", *in.ChipsetVendor)
	}
	sets = append(sets, "updated_at = GREATEST(now(), updated_at)")

	q := `UPDATE issues SET ` + strings.Join(sets, ", ") + ` WHERE id = $1;`
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return classify(err, domain.MsgIssueNotFound)
	}
	return expectOne(res, domain.MsgIssueNotFound)
}

func expectOne(res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Store(err)
	}
	if n == 0 {
		return domain.NotFound(notFound)
	}
	return nil
}

func scanIssueRow(row rowScanner) (*domain.Issue, error) {
	var (
		i        domain.Issue
		vendor   sql.NullString
		ver      sql.NullString
		assignee sql.NullInt64
	)
	err := row.Scan(&i.ID, &i.Title, &i.Description, &i.Status, &i.Priority, &vendor, &i.Chipset, &ver,
		&i.ProjectID, &i.ReporterID, &assignee, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	applyNullable(&i, vendor, ver, assignee)
	return &i, nil
}

func scanIssueJoined(row rowScanner) (*domain.Issue, error) {
	var (
		i        domain.Issue
		vendor   sql.NullString
		ver      sql.NullString
		assignee sql.NullInt64
		p        domain.Project
		rep      domain.User
		aID      sql.NullInt64
		aEmail   sql.NullString
		aName    sql.NullString
		aRole    sql.NullString
		aCreated sql.NullTime
		aUpdated sql.NullTime
	)
	err := row.Scan(
		&i.ID, &i.Title, &i.Description, &i.Status, &i.Priority, &vendor, &i.Chipset, &ver,
		&i.ProjectID, &i.ReporterID, &assignee, &i.CreatedAt, &i.UpdatedAt,
		&p.ID, &p.Name, &p.Key, &p.Description, &p.CreatedAt, &p.UpdatedAt,
		&rep.ID, &rep.Email, &rep.Name, &rep.Role, &rep.CreatedAt, &rep.UpdatedAt,
		&aID, &aEmail, &aName, &aRole, &aCreated, &aUpdated,
	)
	if err != nil {
		return nil, err
	}
	applyNullable(&i, vendor, ver, assignee)
	i.Project = &p
	i.Reporter = &rep
	if aID.Valid {
		i.Assignee = &domain.User{
			ID:        aID.Int64,
			Email:     aEmail.String,
			Name:      aName.String,
			Role:      domain.Role(aRole.String),
			CreatedAt: aCreated.Time,
			UpdatedAt: aUpdated.Time,
		}
	}
	return &i, nil
}

func applyNullable(i *domain.Issue, vendor, ver sql.NullString, assignee sql.NullInt64) {
	if vendor.Valid {
		v := domain.ChipsetVendor(vendor.String)
		i.ChipsetVendor = &v
	}
	if ver.Valid {
		s := ver.String
		i.ChipsetVer = &s
	}
	if assignee.Valid {
		id := assignee.Int64
		i.AssigneeID = &id
	}
}

func vendorArg(v *domain.ChipsetVendor) any {
	if v == nil {
		return nil
	}
	return string(*v)
}

func stringArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func int64Arg(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
