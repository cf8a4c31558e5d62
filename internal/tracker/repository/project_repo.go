package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project. Keys are stored upper-case; a duplicate key is a Conflict.
func (r *ProjectRepository) Create(ctx context.Context, in domain.CreateProjectInput) (*domain.Project, error) {
	const q = `
INSERT INTO projects (name, "key", description)
VALUES ($1, $2, $3)
RETURNING id, name, "key", description, created_at, updated_at;
`
	var p domain.Project
	err := r.db.QueryRowContext(ctx, q, in.Name, strings.ToUpper(strings.TrimSpace(in.Key)), in.Description).
		Scan(&p.ID, &p.Name, &p.Key, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, classify(err, domain.MsgProjectNotFound)
	}
	p.Count = &domain.ProjectCount{}
	return &p, nil
}

// List returns every project with its issue count.
func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	const q = `
SELECT p.id, p.name, p."key", p.description, p.created_at, p.updated_at,
       (SELECT COUNT(*) FROM issues i WHERE i.project_id = p.id) AS issue_count
FROM projects p
ORDER BY p.id ASC;
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify(err, domain.MsgProjectNotFound)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 8)
	for rows.Next() {
		var p domain.Project
		var count int
		if err := rows.Scan(&p.ID, &p.Name, &p.Key, &p.Description, &p.CreatedAt, &p.UpdatedAt, &count); err != nil {
			return nil, domain.Store(err)
		}
		p.Count = &domain.ProjectCount{Issues: count}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Store(err)
	}
	return out, nil
}

// Get returns the bare project row.
func (r *ProjectRepository) Get(ctx context.Context, id int64) (*domain.Project, error) {
	const q = `SELECT id, name, "key", description, created_at, updated_at FROM projects WHERE id = $1;`
	var p domain.Project
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.Key, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, classify(err, domain.MsgProjectNotFound)
	}
	return &p, nil
}

func (r *ProjectRepository) GetByKey(ctx context.Context, key string) (*domain.Project, error) {
	const q = `SELECT id, name, "key", description, created_at, updated_at FROM projects WHERE "key" = $1;`
	var p domain.Project
	err := r.db.QueryRowContext(ctx, q, strings.ToUpper(strings.TrimSpace(key))).
		Scan(&p.ID, &p.Name, &p.Key, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, classify(err, domain.MsgProjectNotFound)
	}
	return &p, nil
}
