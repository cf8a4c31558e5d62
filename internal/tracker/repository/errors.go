package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqNotNullViolation    = "23502"
	pqInvalidText         = "22P02"
	pqCheckViolation      = "23514"
)

// classify maps a database/sql or lib/pq failure onto the domain taxonomy.
// notFound is the message used when no row matched.
func classify(err error, notFound string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(notFound)
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pqUniqueViolation:
			return &domain.Error{Kind: domain.KindConflict, Message: conflictMessage(pgErr), Err: err}
		case pqForeignKeyViolation:
			return &domain.Error{Kind: domain.KindValidation, Message: foreignKeyMessage(pgErr), Err: err}
		case pqNotNullViolation, pqInvalidText, pqCheckViolation:
			return &domain.Error{Kind: domain.KindValidation, Message: pgErr.Message, Err: err}
		}
	}
	return domain.Store(err)
}

func conflictMessage(e *pq.Error) string {
	switch e.Constraint {
	case "projects_key_key":
		return "project key already exists"
	case "users_email_key":
		return "User already exists"
	}
	return "duplicate value violates " + e.Constraint
}

func foreignKeyMessage(e *pq.Error) string {
	switch e.Constraint {
	case "issues_project_id_fkey":
		return "projectId does not reference an existing project"
	case "issues_reporter_id_fkey":
		return "reporterId does not reference an existing user"
	case "issues_assignee_id_fkey":
		return "assigneeId does not reference an existing user"
	case "comments_issue_id_fkey":
		return "issueId does not reference an existing issue"
	case "comments_author_id_fkey":
		return "authorId does not reference an existing user"
	}
	return "referenced row does not exist"
}
