package repository

import (
	"context"
	"database/sql"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

const commentSelect = `
SELECT c.id, c.content, c.issue_id, c.author_id, c.created_at, c.updated_at,
       u.id, u.name, u.email
FROM comments c
JOIN users u ON u.id = c.author_id
`

// ListByIssue returns the comments of an issue, newest first.
func (r *CommentRepository) ListByIssue(ctx context.Context, issueID int64) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, commentSelect+`WHERE c.issue_id = $1
ORDER BY c.created_at DESC, c.id DESC;`, issueID)
	if err != nil {
		return nil, classify(err, domain.MsgCommentNotFound)
	}
	defer rows.Close()

	out := make([]domain.Comment, 0, 8)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, domain.Store(err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Store(err)
	}
	return out, nil
}

func (r *CommentRepository) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, commentSelect+`WHERE c.id = $1;`, id))
	if err != nil {
		return nil, classify(err, domain.MsgCommentNotFound)
	}
	return c, nil
}

// Create inserts a comment and returns it with the author embedded.
func (r *CommentRepository) Create(ctx context.Context, in domain.CreateCommentInput) (*domain.Comment, error) {
	const q = `
WITH inserted AS (
    INSERT INTO comments (content, issue_id, author_id)
    VALUES ($1, $2, $3)
    RETURNING id, content, issue_id, author_id, created_at, updated_at
)
SELECT c.id, c.content, c.issue_id, c.author_id, c.created_at, c.updated_at,
       u.id, u.name, u.email
FROM inserted c
JOIN users u ON u.id = c.author_id;
`
	c, err := scanComment(r.db.QueryRowContext(ctx, q, in.Content, in.IssueID, in.AuthorID))
	if err != nil {
		return nil, classify(err, domain.MsgCommentNotFound)
	}
	return c, nil
}

// UpdateContent replaces the comment body.
func (r *CommentRepository) UpdateContent(ctx context.Context, id int64, content string) (*domain.Comment, error) {
	const q = `
WITH updated AS (
    UPDATE comments SET content = $2, updated_at = GREATEST(now(), updated_at)
    WHERE id = $1
    RETURNING id, content, issue_id, author_id, created_at, updated_at
)
SELECT c.id, c.content, c.issue_id, c.author_id, c.created_at, c.updated_at,
       u.id, u.name, u.email
FROM updated c
JOIN users u ON u.id = c.author_id;
`
	c, err := scanComment(r.db.QueryRowContext(ctx, q, id, content))
	if err != nil {
		return nil, classify(err, domain.MsgCommentNotFound)
	}
	return c, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1;`, id)
	if err != nil {
		return classify(err, domain.MsgCommentNotFound)
	}
	return expectOne(res, domain.MsgCommentNotFound)
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	var c domain.Comment
	var a domain.UserRef
	if err := row.Scan(&c.ID, &c.Content, &c.IssueID, &c.AuthorID, &c.CreatedAt, &c.UpdatedAt,
		&a.ID, &a.Name, &a.Email); err != nil {
		return nil, err
	}
	c.Author = &a
	return &c, nil
}
