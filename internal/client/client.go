// Package client is a typed HTTP client for the tracker API. The worker's
// board commands drive the board controller through it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mira-tracker/mira-backend/internal/analytics"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// Client talks to a running API server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for baseURL, e.g. http://localhost:5000.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithToken returns a copy that sends token as a bearer credential.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned status %d (%s): %s", e.Status, e.Code, e.Message)
}

// Unwrap exposes the domain classification so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	return &domain.Error{Kind: kindFor(e.Status, e.Code), Message: e.Message}
}

func kindFor(status int, code string) domain.Kind {
	for _, k := range []domain.Kind{
		domain.KindValidation, domain.KindNotFound, domain.KindConflict, domain.KindStore,
		domain.KindInvalidTransition, domain.KindUnauthorized, domain.KindForbidden,
	} {
		if k.String() == code {
			return k
		}
	}
	switch status {
	case http.StatusBadRequest:
		return domain.KindValidation
	case http.StatusUnauthorized:
		return domain.KindUnauthorized
	case http.StatusForbidden:
		return domain.KindForbidden
	case http.StatusNotFound:
		return domain.KindNotFound
	case http.StatusConflict:
		return domain.KindConflict
	}
	return domain.KindStore
}

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListIssues(ctx context.Context, f domain.IssueFilter) ([]domain.Issue, error) {
	path := "/api/issues"
	if f.ProjectID != nil {
		path += "?" + url.Values{"projectId": {strconv.FormatInt(*f.ProjectID, 10)}}.Encode()
	}
	var out []domain.Issue
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetIssue(ctx context.Context, id int64) (*domain.Issue, error) {
	var out domain.Issue
	if err := c.do(ctx, http.MethodGet, "/api/issues/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type createIssueBody struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Status        *domain.Status        `json:"status,omitempty"`
	Priority      *domain.Priority      `json:"priority,omitempty"`
	ProjectID     int64                 `json:"projectId"`
	ReporterID    int64                 `json:"reporterId,omitempty"`
	AssigneeID    *int64                `json:"assigneeId,omitempty"`
	Chipset       string                `json:"chipset"`
	ChipsetVer    *string               `json:"chipsetVer,omitempty"`
	ChipsetVendor *domain.ChipsetVendor `json:"chipsetVendor,omitempty"`
}

func (c *Client) CreateIssue(ctx context.Context, in domain.CreateIssueInput) (*domain.Issue, error) {
	body := createIssueBody{
		Title:         in.Title,
		Description:   in.Description,
		Status:        in.Status,
		Priority:      in.Priority,
		ProjectID:     in.ProjectID,
		ReporterID:    in.ReporterID,
		AssigneeID:    in.AssigneeID,
		Chipset:       in.Chipset,
		ChipsetVer:    in.ChipsetVer,
		ChipsetVendor: in.ChipsetVendor,
	}
	var out domain.Issue
	if err := c.do(ctx, http.MethodPost, "/api/issues", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStatus implements board.Source.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status domain.Status) (*domain.Issue, error) {
	var out domain.Issue
	path := "/api/issues/" + strconv.FormatInt(id, 10) + "/status"
	if err := c.do(ctx, http.MethodPatch, path, map[string]domain.Status{"status": status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProject(ctx context.Context, id int64) (*domain.ProjectDetail, error) {
	var out domain.ProjectDetail
	if err := c.do(ctx, http.MethodGet, "/api/projects/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListComments(ctx context.Context, issueID int64) ([]domain.Comment, error) {
	var out []domain.Comment
	if err := c.do(ctx, http.MethodGet, "/api/comments/issue/"+strconv.FormatInt(issueID, 10), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Dashboard(ctx context.Context, f domain.IssueFilter) (*analytics.DashboardView, error) {
	path := "/api/dashboard"
	if f.ProjectID != nil {
		path += "?" + url.Values{"projectId": {strconv.FormatInt(*f.ProjectID, 10)}}.Encode()
	}
	var out analytics.DashboardView
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var envelope struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		}
		if json.Unmarshal(raw, &envelope) == nil && envelope.Message != "" {
			apiErr.Message = envelope.Message
			apiErr.Code = envelope.Code
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
