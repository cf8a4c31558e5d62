package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// UserRepository persists accounts. Users are never deleted.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, name, role, password_hash, created_at, updated_at`

// Create inserts a user. A duplicate email surfaces as domain.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}

	const q = `
INSERT INTO users (email, name, role, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns + `;
`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(in.Email)), in.Name, role, in.PasswordHash))
	if err != nil {
		return nil, classify(err, domain.MsgUserNotFound)
	}
	return u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1;`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, classify(err, domain.MsgUserNotFound)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1;`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return nil, classify(err, domain.MsgUserNotFound)
	}
	return u, nil
}

// List returns every user ordered by name, for assignee pickers.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY name ASC, id ASC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, classify(err, domain.MsgUserNotFound)
	}
	defer rows.Close()

	out := make([]domain.User, 0, 16)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, domain.Store(err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Store(err)
	}
	return out, nil
}

// UpdatePassword replaces the stored hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = GREATEST(now(), updated_at) WHERE id = $1;`
	res, err := r.db.ExecContext(ctx, q, id, hash)
	if err != nil {
		return classify(err, domain.MsgUserNotFound)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Store(err)
	}
	if n == 0 {
		return domain.NotFound(domain.MsgUserNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
