package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mira-tracker/mira-backend/internal/logging"
)

// schema is applied in order. Every statement is idempotent so Migrate can
// run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         TEXT NOT NULL,
		name          TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'USER',
		password_hash TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT users_email_key UNIQUE (email),
		CONSTRAINT users_role_check CHECK (role IN ('ADMIN','DEVELOPER','USER'))
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		"key"       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT projects_key_key UNIQUE ("key")
	)`,
	`CREATE TABLE IF NOT EXISTS issues (
		id             BIGSERIAL PRIMARY KEY,
		title          TEXT NOT NULL,
		description    TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL DEFAULT 'OPEN',
		priority       TEXT NOT NULL DEFAULT 'MEDIUM',
		chipset_vendor TEXT,
		chipset        TEXT NOT NULL DEFAULT '',
		chipset_ver    TEXT,
		project_id     BIGINT NOT NULL,
		reporter_id    BIGINT NOT NULL,
		assignee_id    BIGINT,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT issues_project_id_fkey FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
		CONSTRAINT issues_reporter_id_fkey FOREIGN KEY (reporter_id) REFERENCES users(id),
		CONSTRAINT issues_assignee_id_fkey FOREIGN KEY (assignee_id) REFERENCES users(id) ON DELETE SET NULL,
		CONSTRAINT issues_status_check CHECK (status IN ('OPEN','IN_PROGRESS','RESOLVED','CLOSED','REOPENED')),
		CONSTRAINT issues_priority_check CHECK (priority IN ('LOW','MEDIUM','HIGH','CRITICAL')),
		CONSTRAINT issues_chipset_vendor_check CHECK (chipset_vendor IS NULL OR chipset_vendor IN ('QUALCOMM','MEDIATEK','EXYNOS'))
	)`,
	`CREATE INDEX IF NOT EXISTS issues_project_id_idx ON issues (project_id)`,
	`CREATE INDEX IF NOT EXISTS issues_updated_at_idx ON issues (updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id         BIGSERIAL PRIMARY KEY,
		content    TEXT NOT NULL,
		issue_id   BIGINT NOT NULL,
		author_id  BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT comments_issue_id_fkey FOREIGN KEY (issue_id) REFERENCES issues(id) ON DELETE CASCADE,
		CONSTRAINT comments_author_id_fkey FOREIGN KEY (author_id) REFERENCES users(id)
	)`,
	`CREATE INDEX IF NOT EXISTS comments_issue_id_idx ON comments (issue_id, created_at DESC)`,
}

// Execer is the part of pgxpool.Pool that Migrate needs.
type Execer interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ Execer = (*pgxpool.Pool)(nil)

// Migrate applies the schema in a single transaction.
func Migrate(ctx context.Context, db Execer) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("migrate begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, stmt := range schema {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("migrate commit: %w", err)
	}
	logging.New(ctx).Infof("migrate", "statements=%d", len(schema))
	return nil
}
