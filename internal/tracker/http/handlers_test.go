package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mira-tracker/mira-backend/internal/analytics"
	"github.com/mira-tracker/mira-backend/internal/auth"
	authdomain "github.com/mira-tracker/mira-backend/internal/auth/domain"
	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
	"github.com/mira-tracker/mira-backend/internal/tracker/memstore"
	"github.com/mira-tracker/mira-backend/internal/tracker/service"
)

type testEnv struct {
	router  *gin.Engine
	project *domain.Project
	admin   *domain.User
	jane    *domain.User
}

// asUser attaches a session for the id in X-Test-User, standing in for the bearer middleware.
func asUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User"); raw != "" {
			id, _ := strconv.ParseInt(raw, 10, 64)
			c.Request = c.Request.WithContext(auth.WithSession(c.Request.Context(), &authdomain.Session{ID: "s", UserID: id}))
		}
		c.Next()
	}
}

func newEnv(t *testing.T, policy service.TransitionPolicy) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db := memstore.New()
	admin, err := db.Users().Create(ctx, domain.CreateUserInput{Email: "admin@mira.com", Name: "Admin", Role: domain.RoleAdmin})
	require.NoError(t, err)
	jane, err := db.Users().Create(ctx, domain.CreateUserInput{Email: "jane@mira.com", Name: "Jane", Role: domain.RoleDeveloper})
	require.NoError(t, err)
	project, err := db.Projects().Create(ctx, domain.CreateProjectInput{Name: "MIRA", Key: "MIRA"})
	require.NoError(t, err)

	h := New(Services{
		Issues:    service.NewIssueService(db.Issues(), policy),
		Projects:  service.NewProjectService(db.Projects(), db.Issues()),
		Comments:  service.NewCommentService(db.Comments()),
		Users:     service.NewUserService(db.Users()),
		Dashboard: service.NewDashboardService(db.Issues(), analytics.Options{}),
	})
	r := gin.New()
	api := r.Group("/api", asUser())
	h.Register(api)
	return &testEnv{router: r, project: project, admin: admin, jane: jane}
}

func (e *testEnv) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) createIssue(t *testing.T, body gin.H) domain.Issue {
	t.Helper()
	rr := e.do(http.MethodPost, "/api/issues", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var is domain.Issue
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &is))
	return is
}

func errBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestCreateIssue_Defaults(t *testing.T) {
	e := newEnv(t, service.AllowAll())
	is := e.createIssue(t, gin.H{
		"title": "Camera crash", "description": "d", "projectId": e.project.ID,
		"reporterId": e.admin.ID, "chipset": "SM8550", "chipsetVendor": "qualcomm",
	})

	assert.Equal(t, domain.StatusOpen, is.Status)
	assert.Equal(t, domain.PriorityMedium, is.Priority)
	require.NotNil(t, is.ChipsetVendor)
	assert.Equal(t, domain.VendorQualcomm, *is.ChipsetVendor)
	assert.Nil(t, is.AssigneeID)
}

func TestCreateIssue_Validation(t *testing.T) {
	e := newEnv(t, service.AllowAll())
	cases := map[string]gin.H{
		"missing title":    {"projectId": e.project.ID, "reporterId": e.admin.ID},
		"bad priority":     {"title": "x", "projectId": e.project.ID, "reporterId": e.admin.ID, "priority": "URGENT"},
		"unknown project":  {"title": "x", "projectId": 999, "reporterId": e.admin.ID},
		"unknown assignee": {"title": "x", "projectId": e.project.ID, "reporterId": e.admin.ID, "assigneeId": 999},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := e.do(http.MethodPost, "/api/issues", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "VALIDATION_ERROR", errBody(t, rr)["code"])
		})
	}
}

func TestCreateIssue_ReporterFromSession(t *testing.T) {
	e := newEnv(t, service.AllowAll())
	rr := e.do(http.MethodPost, "/api/issues", gin.H{"title": "x", "projectId": e.project.ID},
		"X-Test-User", strconv.FormatInt(e.jane.ID, 10))
	require.Equal(t, http.StatusCreated, rr.Code)

	var is domain.Issue
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &is))
	assert.Equal(t, e.jane.ID, is.ReporterID)
}

func TestGetIssue(t *testing.T) {
	e := newEnv(t, service.AllowAll())
	created := e.createIssue(t, gin.H{"title": "x", "projectId": e.project.ID, "reporterId": e.admin.ID, "assigneeId": e.jane.ID})

	rr := e.do(http.MethodGet, "/api/issues/"+strconv.FormatInt(created.ID, 10), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var is domain.Issue
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &is))
	assert.Equal(t, "MIRA", is.ProjectName())
	assert.Equal(t, "Admin", is.ReporterName())
	assert.Equal(t, "Jane", is.AssigneeName())
	assert.NotContains(t, rr.Body.String(), "passwordHash")

	rr = e.do(http.MethodGet, "/api/issues/4242", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Issue not found", errBody(t, rr)["message"])

	rr = e.do(http.MethodGet, "/api/issues/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListIssues_ProjectFilter(t *testing.T) {
	e := newEnv(t, service.AllowAll())
	e.createIssue(t, gin.H{"title": "a", "projectId": e.project.ID, "reporterId": e.admin.ID})

	rr := e.do(http.MethodPost, "/api/projects", gin.H{"name": "Other", "key": "oth"})
	require.Equal(t, http.StatusCreated, rr.Code)
	var other domain.Project
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &other))
	assert.Equal(t, "OTH", other.Key)
	e.createIssue(t, gin.H{"title": "b", "projectId": other.ID, "reporterId": e.admin.ID})

	var all, filtered []domain.Issue
	require.NoError(t, json.Unmarshal(e.do(http.MethodGet, "/api/issues", nil).Body.Bytes(), &all))
	require.NoError(t, json.Unmarshal(e.do(http.MethodGet, "/api/issues?projectId="+strconv.FormatInt(other.ID, 10), nil).Body.Bytes(), &filtered))
	assert.Len(t, all, 2)
	require.Len(t, filtered, 1)
	assert.Equal(t, "b", filtered[0].Title)
}

func TestUpdateIssueStatus(t *testing.T) {
	e := newEnv(t, service.AllowAll())
	is := e.createIssue(t, gin.H{"title": "x", "projectId": e.project.ID, "reporterId": e.admin.ID})
	path := "/api/issues/" + strconv.FormatInt(is.ID, 10) + "/status"

	rr := e.do(http.MethodPatch, path, gin.H{"status": "RESOLVED"})
	require.Equal(t, http.StatusOK, rr.Code)
	var updated domain.Issue
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, domain.StatusResolved, updated.Status)
	assert.False(t, updated.UpdatedAt.Before(is.UpdatedAt))

	rr = e.do(http.MethodPatch, path, gin.H{"status": "DONE"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(http.MethodPatch, "/api/issues/999/status", gin.H{"status": "OPEN"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateIssueStatus_PolicyRejects(t *testing.T) {
	policy := service.NewTransitionPolicy([2]domain.Status{domain.StatusOpen, domain.StatusInProgress})
	e := newEnv(t, policy)
	is := e.createIssue(t, gin.H{"title": "x", "projectId": e.project.ID, "reporterId": e.admin.ID})

	rr := e.do(http.MethodPatch, "/api/issues/"+strconv.FormatInt(is.ID, 10)+"/status", gin.H{"status": "CLOSED"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "INVALID_TRANSITION", errBody(t, rr)["code"])
}

func TestUpdateIssue_Partial(t *testing.T) {
	e := newEnv(t, service.AllowAll())
	is := e.createIssue(t, gin.H{"title": "x", "projectId": e.project.ID, "reporterId": e.admin.ID, "assigneeId": e.jane.ID})
	path := "/api/issues/" + strconv.FormatInt(is.ID, 10)

	rr := e.do(http.MethodPut, path, gin.H{"priority": "CRITICAL"})
	require.Equal(t, http.StatusOK, rr.Code)
	var got domain.Issue
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, domain.PriorityCritical, got.Priority)
	assert.Equal(t, "x", got.Title)
	require.NotNil(t, got.AssigneeID)

	rr = e.do(http.MethodPut, path, gin.H{"assigneeId": nil})
	require.Equal(t, http.StatusOK, rr.Code)
	got = domain.Issue{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Nil(t, got.AssigneeID)
	assert.Nil(t, got.Assignee)
}

func TestProjects(t *testing.T) {
	e := newEnv(t, service.AllowAll())
	e.createIssue(t, gin.H{"title": "a", "projectId": e.project.ID, "reporterId": e.admin.ID})

	rr := e.do(http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []domain.Project
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Count)
	assert.Equal(t, 1, list[0].Count.Issues)

	rr = e.do(http.MethodGet, "/api/projects/"+strconv.FormatInt(e.project.ID, 10), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var detail domain.ProjectDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.Len(t, detail.Issues, 1)

	rr = e.do(http.MethodGet, "/api/projects/77", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Project not found", errBody(t, rr)["message"])

	rr = e.do(http.MethodPost, "/api/projects", gin.H{"name": "Dup", "key": "mira"})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGetBoard(t *testing.T) {
	e := newEnv(t, service.AllowAll())
	e.createIssue(t, gin.H{"title": "open one", "projectId": e.project.ID, "reporterId": e.admin.ID, "assigneeId": e.jane.ID})
	e.createIssue(t, gin.H{"title": "reopened", "projectId": e.project.ID, "reporterId": e.admin.ID, "status": "REOPENED"})
	e.createIssue(t, gin.H{"title": "closed", "projectId": e.project.ID, "reporterId": e.admin.ID, "status": "CLOSED"})

	rr := e.do(http.MethodGet, "/api/projects/"+strconv.FormatInt(e.project.ID, 10)+"/board", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var b boardResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
	require.Len(t, b.Columns, 4)
	assert.Len(t, b.Columns[0].Issues, 1)
	assert.Len(t, b.Columns[3].Issues, 1)
	assert.Equal(t, []string{"Jane"}, b.Members)

	rr = e.do(http.MethodGet, "/api/projects/"+strconv.FormatInt(e.project.ID, 10)+"/board?search=nothing", nil)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
	assert.Empty(t, b.Columns[0].Issues)
}

func TestComments(t *testing.T) {
	e := newEnv(t, service.AllowAll())
	is := e.createIssue(t, gin.H{"title": "x", "projectId": e.project.ID, "reporterId": e.admin.ID})

	rr := e.do(http.MethodPost, "/api/comments", gin.H{"content": "first", "issueId": is.ID, "authorId": e.jane.ID})
	require.Equal(t, http.StatusCreated, rr.Code)
	var c domain.Comment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &c))
	require.NotNil(t, c.Author)
	assert.Equal(t, "Jane", c.Author.Name)

	rr = e.do(http.MethodPut, "/api/comments/"+strconv.FormatInt(c.ID, 10), gin.H{"content": "edited"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = e.do(http.MethodGet, "/api/comments/issue/"+strconv.FormatInt(is.ID, 10), nil)
	var list []domain.Comment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "edited", list[0].Content)

	path := "/api/comments/" + strconv.FormatInt(c.ID, 10)
	rr = e.do(http.MethodDelete, path, nil, "X-Test-User", strconv.FormatInt(e.admin.ID, 10))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = e.do(http.MethodDelete, path, nil, "X-Test-User", strconv.FormatInt(e.jane.ID, 10))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Comment deleted successfully"}`, rr.Body.String())

	rr = e.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUsersAndDashboard(t *testing.T) {
	e := newEnv(t, service.AllowAll())
	e.createIssue(t, gin.H{"title": "x", "projectId": e.project.ID, "reporterId": e.admin.ID, "priority": "CRITICAL", "chipset": "SM8550"})

	rr := e.do(http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var users []domain.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
	assert.Len(t, users, 2)

	rr = e.do(http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var view analytics.DashboardView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, 1, view.KPIs.TotalIssues)
	assert.Equal(t, 1, view.KPIs.CriticalIssues)
	require.Len(t, view.ChipsetReliability, 1)
	assert.Equal(t, 100, view.ChipsetReliability[0].ErrorRate)
}
