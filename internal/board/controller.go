package board

import (
	"context"
	"sync"

	"github.com/mira-tracker/mira-backend/internal/logging"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// Source is what the controller reads from and writes to. Both the
// lifecycle service and the HTTP client satisfy it.
type Source interface {
	ListIssues(ctx context.Context, f domain.IssueFilter) ([]domain.Issue, error)
	UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Issue, error)
}

type Drop struct {
	IssueID     int64
	Source      domain.Status
	Destination *domain.Status
}

// Controller holds a local issue snapshot. State changes happen under mu;
// calls to Source happen outside it.
type Controller struct {
	src    Source
	filter domain.IssueFilter

	mu      sync.Mutex
	issues  []domain.Issue
	seq     uint64
	applied uint64
}

func NewController(src Source, filter domain.IssueFilter) *Controller {
	return &Controller{src: src, filter: filter}
}

// Snapshot returns a copy of the local issues.
func (c *Controller) Snapshot() []domain.Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Issue, len(c.issues))
	copy(out, c.issues)
	return out
}

func (c *Controller) Columns(f Filter) []Column {
	return Columns(c.Snapshot(), f)
}

// Refresh refetches the full collection. Each call takes a sequence number;
// a response is discarded when a later request or a local drop has already
// been applied. It reports whether the response was applied.
func (c *Controller) Refresh(ctx context.Context) (bool, error) {
	c.mu.Lock()
	c.seq++
	mine := c.seq
	c.mu.Unlock()

	issues, err := c.src.ListIssues(ctx, c.filter)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if mine < c.applied {
		logging.New(ctx).Debugf("board.refresh", "discarded seq=%d applied=%d", mine, c.applied)
		return false, nil
	}
	c.issues = issues
	c.applied = mine
	return true, nil
}

// Drop moves an issue to another column. Dropping outside a column or onto
// the source column does nothing and returns ok=false. Otherwise the local
// snapshot changes immediately, the status update runs in the background,
// and on failure only this issue is reverted, and only while it still shows
// the dropped status. The channel receives
// the update result and is then closed.
func (c *Controller) Drop(ctx context.Context, d Drop) (<-chan error, bool) {
	if d.Destination == nil || *d.Destination == d.Source {
		return nil, false
	}
	dest := *d.Destination
	if _, ok := ColumnFor(dest); !ok {
		return nil, false
	}

	c.mu.Lock()
	pos := -1
	for i := range c.issues {
		if c.issues[i].ID == d.IssueID {
			pos = i
			break
		}
	}
	if pos < 0 {
		c.mu.Unlock()
		return nil, false
	}
	prev := c.issues[pos].Status

	next := make([]domain.Issue, len(c.issues))
	copy(next, c.issues)
	next[pos].Status = dest
	c.issues = next
	c.seq++
	c.applied = c.seq
	c.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		defer close(done)
		_, err := c.src.UpdateStatus(ctx, d.IssueID, dest)
		if err != nil {
			logging.New(ctx).Warnf("board.drop", "issue_id=%d to=%s rollback error=%v", d.IssueID, dest, err)
			c.revert(d.IssueID, dest, prev)
		}
		done <- err
	}()
	return done, true
}

// revert puts prev back on the issue if it still carries the status a failed
// drop set. Rows touched by later drops or refreshes are left alone.
func (c *Controller) revert(id int64, dropped, prev domain.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.issues {
		if c.issues[i].ID != id {
			continue
		}
		if c.issues[i].Status != dropped {
			return
		}
		next := make([]domain.Issue, len(c.issues))
		copy(next, c.issues)
		next[i].Status = prev
		c.issues = next
		return
	}
}
