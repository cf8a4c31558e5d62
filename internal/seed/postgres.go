package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// Copier is the bulk path of pgxpool.Pool.
type Copier interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// CopyImporter writes issues with COPY FROM.
type CopyImporter struct {
	db Copier
}

func NewCopyImporter(db Copier) *CopyImporter {
	return &CopyImporter{db: db}
}

var issueCopyColumns = []string{
	"title", "description", "status", "priority", "chipset_vendor", "chipset", "chipset_ver",
	"project_id", "reporter_id", "assignee_id", "created_at", "updated_at",
}

func (c *CopyImporter) Import(ctx context.Context, rows []domain.Issue) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := c.db.CopyFrom(ctx, pgx.Identifier{"issues"}, issueCopyColumns, pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
		is := rows[i]
		var vendor *string
		if is.ChipsetVendor != nil {
			v := string(*is.ChipsetVendor)
			vendor = &v
		}
		return []any{
			is.Title, is.Description, string(is.Status), string(is.Priority), vendor, is.Chipset, is.ChipsetVer,
			is.ProjectID, is.ReporterID, is.AssigneeID, is.CreatedAt, is.UpdatedAt,
		}, nil
	}))
	if err != nil {
		return 0, fmt.Errorf("copy issues: %w", err)
	}
	return n, nil
}
