package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danivela/ai-todo-be/internal/auth"
	"github.com/danivela/ai-todo-be/internal/database"
	"github.com/danivela/ai-todo-be/internal/services"
)

type stubAI struct{}

func (stubAI) GenerateTasks(_ context.Context, topic string) (string, error) {
	return "1. study " + topic, nil
}

func (stubAI) SummarizeFeedback(_ context.Context, _ string) (string, error) {
	return "- all good", nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	userService := services.NewUserService(db, auth.NewHasher())
	authService := auth.NewService([]byte("test-secret"), time.Hour, userService)
	taskService := services.NewTaskService(db)

	router := NewRouter(authService, userService, taskService, stubAI{}, "http://localhost:8501")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(bytes.TrimSpace(raw)) > 0 && strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func register(t *testing.T, base, username, password string) (*http.Response, map[string]interface{}) {
	t.Helper()
	return doJSON(t, http.MethodPost, base+"/api/v1/auth/register", "",
		map[string]string{"username": username, "password": password})
}

func login(t *testing.T, base, username, password string) (*http.Response, map[string]interface{}) {
	t.Helper()

	resp, err := http.PostForm(base+"/api/v1/auth/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func mustLogin(t *testing.T, base, username, password string) string {
	t.Helper()

	resp, body := login(t, base, username, password)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "bearer", body["token_type"])
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegister_And_Conflict(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	resp, body := register(t, ts.URL, "alice", "secret1")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "alice", body["username"])
	assert.NotNil(t, body["id"])
	_, leaked := body["password"]
	assert.False(t, leaked, "password must not be echoed back")

	resp, _ = register(t, ts.URL, "alice", "other")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	resp, body := register(t, ts.URL, "", "secret1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "username")
}

func TestLogin_FailuresAreUniform(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	resp, _ := register(t, ts.URL, "alice", "secret1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	wrongResp, wrongBody := login(t, ts.URL, "alice", "wrong")
	unknownResp, unknownBody := login(t, ts.URL, "nobody", "secret1")

	assert.Equal(t, http.StatusUnauthorized, wrongResp.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, unknownResp.StatusCode)
	assert.Equal(t, wrongBody, unknownBody, "login failures must not reveal which part was wrong")
}

func TestTasks_RequireAuthentication(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/v1/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/v1/tasks", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTasks_Lifecycle(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	resp, _ := register(t, ts.URL, "alice", "secret1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := mustLogin(t, ts.URL, "alice", "secret1")

	// Create
	resp, task := doJSON(t, http.MethodPost, ts.URL+"/api/v1/tasks", token,
		map[string]string{"description": "write report"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "write report", task["description"])
	assert.Equal(t, "pending", task["status"])
	id := int64(task["id"].(float64))

	// Update status only; description must survive
	resp, updated := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/tasks/%d", ts.URL, id), token,
		map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "write report", updated["description"])
	assert.Equal(t, "done", updated["status"])

	// Delete, then the list is empty
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/tasks/%d", ts.URL, id), token, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var tasks []map[string]interface{}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&tasks))
	assert.Empty(t, tasks)

	// A second delete of the same id reports not-found
	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/tasks/%d", ts.URL, id), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTasks_OwnershipBoundary(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	for _, u := range []string{"alice", "bob"} {
		resp, _ := register(t, ts.URL, u, "secret1")
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	aliceToken := mustLogin(t, ts.URL, "alice", "secret1")
	bobToken := mustLogin(t, ts.URL, "bob", "secret1")

	resp, task := doJSON(t, http.MethodPost, ts.URL+"/api/v1/tasks", aliceToken,
		map[string]string{"description": "alice's task"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := int64(task["id"].(float64))

	// Bob's update and delete of alice's task both read as not-found
	resp, _ = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/tasks/%d", ts.URL, id), bobToken,
		map[string]string{"status": "done"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/tasks/%d", ts.URL, id), bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Alice still sees her task unchanged
	resp, updated := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/tasks/%d", ts.URL, id), aliceToken,
		map[string]string{"description": "still alice's task"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "still alice's task", updated["description"])
}

func TestAI_Endpoints(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	resp, _ := register(t, ts.URL, "alice", "secret1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := mustLogin(t, ts.URL, "alice", "secret1")

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/ai/generate-tasks", token,
		map[string]string{"topic": "Go"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1. study Go", body["suggestions"])

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/v1/ai/generate-tasks", token,
		map[string]string{"topic": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "topic")

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/v1/ai/summarize-feedback", token,
		map[string]string{"text": "great"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "- all good", body["summary"])

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/v1/ai/generate-tasks", "",
		map[string]string{"topic": "Go"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
