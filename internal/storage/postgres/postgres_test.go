package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mira-tracker/mira-backend/config"
)

func TestDSN(t *testing.T) {
	cfg := &config.DatabaseConfig{Host: "db", Port: 5433, User: "mira", Password: "pw", Name: "tracker"}
	assert.Equal(t, "host=db port=5433 user=mira password=pw dbname=tracker sslmode=disable", DSN(cfg))

	cfg.SSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

// The repositories translate these constraint names into API messages.
func TestSchema_NamesClassifiedConstraints(t *testing.T) {
	all := strings.Join(schema, "\n")
	for _, name := range []string{
		"users_email_key",
		"projects_key_key",
		"issues_project_id_fkey",
		"issues_reporter_id_fkey",
		"issues_assignee_id_fkey",
		"comments_issue_id_fkey",
		"comments_author_id_fkey",
	} {
		assert.Contains(t, all, "CONSTRAINT "+name, name)
	}
}

func TestSchema_Idempotent(t *testing.T) {
	for _, stmt := range schema {
		assert.Contains(t, stmt, "IF NOT EXISTS")
	}
}
