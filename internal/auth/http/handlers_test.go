package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mira-tracker/mira-backend/internal/auth"
	"github.com/mira-tracker/mira-backend/internal/auth/middleware"
	"github.com/mira-tracker/mira-backend/internal/auth/repository"
	"github.com/mira-tracker/mira-backend/internal/auth/service"
	"github.com/mira-tracker/mira-backend/internal/tracker/memstore"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	svc, err := service.NewAuthService(memstore.New().Users(), repository.NewSessionRepository(client),
		auth.NewTokenIssuer("test-secret"), service.Options{SessionTTL: time.Hour, HashCost: bcrypt.MinCost})
	require.NoError(t, err)

	r := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	New(svc).Register(r.Group("/api/auth"), pass, middleware.Bearer(svc, true))
	return r
}

func call(r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestRegisterAndLogin(t *testing.T) {
	r := newTestRouter(t)

	rr := call(r, http.MethodPost, "/api/auth/register", "", gin.H{"email": "jane@mira.com", "password": "pw", "name": "Jane"})
	require.Equal(t, http.StatusCreated, rr.Code)
	body := decode(t, rr)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "jane@mira.com", user["email"])
	assert.Equal(t, "USER", user["role"])
	assert.NotContains(t, user, "passwordHash")

	rr = call(r, http.MethodPost, "/api/auth/login", "", gin.H{"email": "jane@mira.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, decode(t, rr)["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	r := newTestRouter(t)
	call(r, http.MethodPost, "/api/auth/register", "", gin.H{"email": "jane@mira.com", "password": "pw", "name": "Jane"})

	for _, creds := range []gin.H{
		{"email": "jane@mira.com", "password": "wrong"},
		{"email": "nobody@mira.com", "password": "pw"},
		{"email": "jane@mira.com"},
	} {
		rr := call(r, http.MethodPost, "/api/auth/login", "", creds)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid credentials", decode(t, rr)["message"])
	}
}

func TestRegister_Duplicate(t *testing.T) {
	r := newTestRouter(t)
	req := gin.H{"email": "jane@mira.com", "password": "pw", "name": "Jane"}
	require.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/api/auth/register", "", req).Code)

	rr := call(r, http.MethodPost, "/api/auth/register", "", req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "User already exists", decode(t, rr)["message"])
}

func TestMeSessionAndLogout(t *testing.T) {
	r := newTestRouter(t)
	rr := call(r, http.MethodPost, "/api/auth/register", "", gin.H{"email": "bob@mira.com", "password": "pw", "name": "Bob"})
	token := decode(t, rr)["token"].(string)

	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/auth/me", "", nil).Code)

	rr = call(r, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode(t, rr)
	assert.Equal(t, "Bob", me["user"].(map[string]any)["name"])

	rr = call(r, http.MethodPatch, "/api/auth/session", token, gin.H{"activeTab": "board", "selectedProjectId": 3})
	require.Equal(t, http.StatusOK, rr.Code)
	sess := decode(t, rr)
	assert.Equal(t, "board", sess["activeTab"])
	assert.EqualValues(t, 3, sess["selectedProjectId"])

	rr = call(r, http.MethodPatch, "/api/auth/session", token, gin.H{"selectedProjectId": nil})
	require.Equal(t, http.StatusOK, rr.Code)
	sess = decode(t, rr)
	assert.NotContains(t, sess, "selectedProjectId")
	assert.Equal(t, "board", sess["activeTab"])

	require.Equal(t, http.StatusOK, call(r, http.MethodPost, "/api/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, "/api/auth/me", token, nil).Code)
}
