package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mira-tracker/mira-backend/config"
	"github.com/mira-tracker/mira-backend/internal/board"
	"github.com/mira-tracker/mira-backend/internal/client"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

func apiClient(cfg *config.Config) *client.Client {
	c := client.New(cfg.Worker.APIURL)
	if cfg.Worker.APIToken != "" {
		c = c.WithToken(cfg.Worker.APIToken)
	}
	return c
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", what, raw)
	}
	return id, nil
}

func runBoard(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: worker board <projectId> [search]")
	}
	projectID, err := parseID(args[0], "projectId")
	if err != nil {
		return err
	}

	ctrl := board.NewController(apiClient(cfg), domain.IssueFilter{ProjectID: &projectID})
	if _, err := ctrl.Refresh(ctx); err != nil {
		return err
	}
	var f board.Filter
	if len(args) > 1 {
		f.Search = strings.Join(args[1:], " ")
	}
	printBoard(out, ctrl.Columns(f))
	return nil
}

// runMove drags an issue onto the column for STATUS and waits for the
// server to confirm or the board to roll back.
func runMove(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: worker move <issueId> <STATUS>")
	}
	issueID, err := parseID(args[0], "issueId")
	if err != nil {
		return err
	}
	dest, err := domain.ParseStatus(args[1])
	if err != nil {
		return err
	}

	c := apiClient(cfg)
	issue, err := c.GetIssue(ctx, issueID)
	if err != nil {
		return err
	}
	ctrl := board.NewController(c, domain.IssueFilter{ProjectID: &issue.ProjectID})
	if _, err := ctrl.Refresh(ctx); err != nil {
		return err
	}

	done, ok := ctrl.Drop(ctx, board.Drop{IssueID: issueID, Source: issue.Status, Destination: &dest})
	if !ok {
		fmt.Fprintf(out, "issue %d: nothing to do (%s -> %s)\n", issueID, issue.Status, dest)
		return nil
	}
	if err := <-done; err != nil {
		printBoard(out, ctrl.Columns(board.Filter{}))
		return fmt.Errorf("move rolled back: %w", err)
	}
	fmt.Fprintf(out, "issue %d: %s -> %s\n", issueID, issue.Status, dest)
	printBoard(out, ctrl.Columns(board.Filter{}))
	return nil
}

func printBoard(out io.Writer, cols []board.Column) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, col := range cols {
		fmt.Fprintf(tw, "== %s (%d)\n", col.Title, len(col.Issues))
		for _, is := range col.Issues {
			assignee := is.AssigneeName()
			if assignee == "" {
				assignee = "-"
			}
			fmt.Fprintf(tw, "  #%d\t%s\t%s\t%s\n", is.ID, is.Priority, assignee, is.Title)
		}
	}
	tw.Flush()
}
