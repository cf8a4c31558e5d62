package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

func serve(t *testing.T, err error) (int, ErrorBody) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { Error(c, "test", err) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr.Code, body
}

func TestError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
		msg    string
	}{
		{domain.Validation("title is required"), 400, "VALIDATION_ERROR", "title is required"},
		{domain.NotFound(domain.MsgIssueNotFound), 404, "NOT_FOUND", "Issue not found"},
		{domain.Conflict("project key already exists"), 409, "CONFLICT", "project key already exists"},
		{domain.InvalidTransition(domain.StatusOpen, domain.StatusClosed), 409, "INVALID_TRANSITION", "transition OPEN -> CLOSED is not allowed"},
		{domain.ErrInvalidCredentials, 400, "VALIDATION_ERROR", "Invalid credentials"},
		{domain.Unauthorized("invalid token"), 401, "UNAUTHORIZED", "invalid token"},
		{domain.Forbidden("nope"), 403, "FORBIDDEN", "nope"},
		{domain.Store(errors.New("pq: connection refused")), 500, "STORE_ERROR", "pq: connection refused"},
		{errors.New("raw failure"), 500, "STORE_ERROR", "raw failure"},
		{fmt.Errorf("load issue 7: %w", domain.NotFound(domain.MsgIssueNotFound)), 404, "NOT_FOUND", "Issue not found"},
	}
	for _, tc := range cases {
		t.Run(tc.code+"/"+tc.msg, func(t *testing.T) {
			status, body := serve(t, tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.msg, body.Message)
		})
	}
}
