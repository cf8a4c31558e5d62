package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

func setupDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var issueRowCols = []string{
	"id", "title", "description", "status", "priority", "chipset_vendor", "chipset", "chipset_ver",
	"project_id", "reporter_id", "assignee_id", "created_at", "updated_at",
}

var joinedIssueCols = append(append([]string{}, issueRowCols...),
	"p.id", "p.name", "p.key", "p.description", "p.created_at", "p.updated_at",
	"r.id", "r.email", "r.name", "r.role", "r.created_at", "r.updated_at",
	"a.id", "a.email", "a.name", "a.role", "a.created_at", "a.updated_at",
)

func TestClassify(t *testing.T) {
	t.Run("no rows is not found", func(t *testing.T) {
		err := classify(sql.ErrNoRows, domain.MsgIssueNotFound)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.Equal(t, "Issue not found", err.Error())
	})

	t.Run("unique violation is conflict", func(t *testing.T) {
		err := classify(&pq.Error{Code: "23505", Constraint: "users_email_key"}, "")
		assert.True(t, errors.Is(err, domain.ErrUserExists))
	})

	t.Run("foreign key violation is validation", func(t *testing.T) {
		err := classify(&pq.Error{Code: "23503", Constraint: "issues_project_id_fkey"}, "")
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		assert.Contains(t, err.Error(), "projectId")
	})

	t.Run("anything else is a store error with the raw message", func(t *testing.T) {
		err := classify(errors.New("connection reset by peer"), "")
		assert.Equal(t, domain.KindStore, domain.KindOf(err))
		assert.Equal(t, "connection reset by peer", err.(*domain.Error).Message)
	})
}

func TestIssueRepository_Create(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewIssueRepository(db)
	now := time.Now()

	t.Run("applies default status and priority", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO issues`)).
			WithArgs("Camera crash", "", "OPEN", "MEDIUM", nil, "SM8550", nil, int64(1), int64(2), nil).
			WillReturnRows(sqlmock.NewRows(issueRowCols).
				AddRow(10, "Camera crash", "", "OPEN", "MEDIUM", nil, "SM8550", nil, 1, 2, nil, now, now))

		issue, err := repo.Create(context.Background(), domain.CreateIssueInput{
			Title:      "Camera crash",
			ProjectID:  1,
			ReporterID: 2,
			Chipset:    "SM8550",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(10), issue.ID)
		assert.Equal(t, domain.StatusOpen, issue.Status)
		assert.Equal(t, domain.PriorityMedium, issue.Priority)
		assert.Nil(t, issue.AssigneeID)
		assert.Nil(t, issue.ChipsetVendor)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown project surfaces as validation", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO issues`)).
			WillReturnError(&pq.Error{Code: "23503", Constraint: "issues_project_id_fkey"})

		_, err := repo.Create(context.Background(), domain.CreateIssueInput{Title: "x", ProjectID: 99, ReporterID: 1})
		assert.True(t, errors.Is(err, domain.ErrValidation))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIssueRepository_Get(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewIssueRepository(db)
	now := time.Now()

	t.Run("embeds project reporter and assignee", func(t *testing.T) {
		mock.ExpectQuery(`SELECT i.id, i.title`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(joinedIssueCols).AddRow(
				5, "Modem drop", "desc", "IN_PROGRESS", "HIGH", "QUALCOMM", "SM8650", "v2",
				1, 2, 3, now, now,
				1, "MIRA", "MIRA", "", now, now,
				2, "jane@mira.com", "Jane", "DEVELOPER", now, now,
				3, "bob@mira.com", "Bob", "USER", now, now,
			))

		issue, err := repo.Get(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, "MIRA", issue.ProjectName())
		assert.Equal(t, "Jane", issue.ReporterName())
		assert.Equal(t, "Bob", issue.AssigneeName())
		require.NotNil(t, issue.ChipsetVendor)
		assert.Equal(t, domain.VendorQualcomm, *issue.ChipsetVendor)
		assert.Equal(t, "v2", *issue.ChipsetVer)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unassigned issue has no assignee", func(t *testing.T) {
		mock.ExpectQuery(`SELECT i.id, i.title`).
			WithArgs(int64(6)).
			WillReturnRows(sqlmock.NewRows(joinedIssueCols).AddRow(
				6, "Boot loop", "", "OPEN", "LOW", nil, "", nil,
				1, 2, nil, now, now,
				1, "MIRA", "MIRA", "", now, now,
				2, "jane@mira.com", "Jane", "DEVELOPER", now, now,
				nil, nil, nil, nil, nil, nil,
			))

		issue, err := repo.Get(context.Background(), 6)
		require.NoError(t, err)
		assert.Nil(t, issue.Assignee)
		assert.Equal(t, "", issue.AssigneeName())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing issue is not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT i.id, i.title`).
			WithArgs(int64(999999)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), 999999)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.Equal(t, domain.MsgIssueNotFound, err.Error())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIssueRepository_ListFiltersByProject(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewIssueRepository(db)

	pid := int64(7)
	mock.ExpectQuery(`WHERE i.project_id = \$1`).
		WithArgs(pid).
		WillReturnRows(sqlmock.NewRows(joinedIssueCols))

	issues, err := repo.List(context.Background(), domain.IssueFilter{ProjectID: &pid})
	require.NoError(t, err)
	assert.NotNil(t, issues)
	assert.Len(t, issues, 0)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueRepository_UpdateStatus(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewIssueRepository(db)

	t.Run("bumps updated_at monotonically", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE issues SET status = $2, updated_at = GREATEST(now(), updated_at) WHERE id = $1`)).
			WithArgs(int64(1), "CLOSED").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateStatus(context.Background(), 1, domain.StatusClosed))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matching row is not found", func(t *testing.T) {
		mock.ExpectExec(`UPDATE issues SET status`).
			WithArgs(int64(42), "OPEN").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(context.Background(), 42, domain.StatusOpen)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIssueRepository_UpdateBuildsPartialStatement(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewIssueRepository(db)

	title := "Renamed"
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE issues SET title = $2, assignee_id = NULL, updated_at = GREATEST(now(), updated_at) WHERE id = $1`)).
		WithArgs(int64(3), "Renamed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), 3, domain.UpdateIssueInput{Title: &title, ClearAssignee: true})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewProjectRepository(db)
	now := time.Now()

	t.Run("list carries issue counts", func(t *testing.T) {
		mock.ExpectQuery(`SELECT p.id, p.name`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "key", "description", "created_at", "updated_at", "issue_count"}).
				AddRow(1, "MIRA", "MIRA", "Main", now, now, 12).
				AddRow(2, "Modem", "MDM", "", now, now, 0))

		projects, err := repo.List(context.Background())
		require.NoError(t, err)
		require.Len(t, projects, 2)
		assert.Equal(t, 12, projects[0].Count.Issues)
		assert.Equal(t, 0, projects[1].Count.Issues)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate key is conflict", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO projects`)).
			WithArgs("Dup", "MIRA", "").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "projects_key_key"})

		_, err := repo.Create(context.Background(), domain.CreateProjectInput{Name: "Dup", Key: "mira"})
		assert.True(t, errors.Is(err, domain.ErrConflict))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing project is not found", func(t *testing.T) {
		mock.ExpectQuery(`FROM projects WHERE id`).
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), 404)
		assert.Equal(t, domain.MsgProjectNotFound, err.Error())
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewUserRepository(db)
	now := time.Now()
	cols := []string{"id", "email", "name", "role", "password_hash", "created_at", "updated_at"}

	t.Run("lookups normalize email", func(t *testing.T) {
		mock.ExpectQuery(`FROM users WHERE email`).
			WithArgs("admin@mira.com").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "admin@mira.com", "Admin", "ADMIN", "hash", now, now))

		u, err := repo.GetByEmail(context.Background(), "  Admin@Mira.com ")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, u.Role)
		assert.Equal(t, "hash", u.PasswordHash)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email reports user exists", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users`)).
			WithArgs("jane@mira.com", "Jane", "USER", "h").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		_, err := repo.Create(context.Background(), domain.CreateUserInput{Email: "jane@mira.com", Name: "Jane", PasswordHash: "h"})
		assert.True(t, errors.Is(err, domain.ErrUserExists))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCommentRepository(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewCommentRepository(db)
	now := time.Now()
	cols := []string{"id", "content", "issue_id", "author_id", "created_at", "updated_at", "u.id", "u.name", "u.email"}

	t.Run("lists newest first with author", func(t *testing.T) {
		mock.ExpectQuery(`ORDER BY c.created_at DESC`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(2, "second", 1, 1, now, now, 1, "Admin", "admin@mira.com").
				AddRow(1, "first", 1, 1, now.Add(-time.Hour), now, 1, "Admin", "admin@mira.com"))

		comments, err := repo.ListByIssue(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, comments, 2)
		assert.Equal(t, "second", comments[0].Content)
		assert.Equal(t, "Admin", comments[0].Author.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete of missing comment is not found", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM comments WHERE id = $1`)).
			WithArgs(int64(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), 9)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
