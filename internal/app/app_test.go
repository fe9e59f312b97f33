package app

import (
	"bytes"
	"context"
	"encoding/json"
	"faaqs_backend/internal/config"
	"faaqs_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: "debug"},
		Database:  config.DatabaseConfig{Driver: util.DatabaseMemory},
		JWT:       config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Storage:   config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()},
		Mail:      config.MailConfig{Provider: "console"},
		Quiz:      config.QuizConfig{TickInterval: time.Hour},
		Community: config.CommunityConfig{ListLimit: 50},
		Admin:     config.AdminSeedConfig{Email: "admin@example.com", Password: "admin-pass"},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
	}
	cfg.CreateAdmin = true
	return cfg
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	t      *testing.T
	router http.Handler
}

func (c *client) call(method, path, token string, body interface{}) (int, apiResponse) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w.Code, resp
}

func (c *client) login(path string, body interface{}) string {
	c.t.Helper()
	code, resp := c.call(http.MethodPost, path, "", body)
	require.Contains(c.t, []int{http.StatusOK, http.StatusCreated}, code, resp.Message)
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(resp.Data, &session))
	require.NotEmpty(c.t, session.Token)
	return session.Token
}

func newTestApp(t *testing.T) (*App, *client) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	a := New(cfg, nil, nil)
	a.seed(context.Background(), cfg)
	t.Cleanup(a.services.sessions.Shutdown)
	return a, &client{t: t, router: a.Router}
}

func TestHealthInMemoryMode(t *testing.T) {
	_, c := newTestApp(t)

	code, _ := c.call(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestQuizFlowEndToEnd(t *testing.T) {
	_, c := newTestApp(t)

	adminToken := c.login("/api/auth/login", map[string]string{"email": "admin@example.com", "password": "admin-pass"})
	studentToken := c.login("/api/auth/signup", map[string]string{
		"email": "awa@example.com", "password": "secret1", "confirmPassword": "secret1",
	})

	// 学生不能访问后台
	code, _ := c.call(http.MethodGet, "/api/admin/quizzes", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, resp := c.call(http.MethodPost, "/api/admin/quizzes", adminToken, map[string]interface{}{
		"programmeId":  "prog-ena",
		"title":        "Culture générale",
		"timeLimit":    10,
		"passingScore": 50,
		"isPublished":  true,
		"questions": []map[string]interface{}{
			{"id": "q1", "question": "2 + 2 ?", "options": []string{"3", "4"}, "correctAnswer": 1},
			{"id": "q2", "question": "Capitale ?", "options": []string{"Dakar", "Abidjan"}, "correctAnswer": 0},
		},
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var quiz struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &quiz))

	code, resp = c.call(http.MethodPost, "/api/quizzes/"+quiz.ID+"/sessions", studentToken, nil)
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var view struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, "in_progress", view.State)

	// 其他用户不能操作这个会话
	code, _ = c.call(http.MethodGet, "/api/sessions/"+view.ID, adminToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = c.call(http.MethodPut, "/api/sessions/"+view.ID+"/answers", studentToken, map[string]interface{}{"questionId": "q1", "optionIndex": 1})
	require.Equal(t, http.StatusOK, code)
	code, _ = c.call(http.MethodPut, "/api/sessions/"+view.ID+"/answers", studentToken, map[string]interface{}{"questionId": "q2", "optionIndex": 5})
	assert.Equal(t, http.StatusBadRequest, code)

	code, resp = c.call(http.MethodPost, "/api/sessions/"+view.ID+"/submit", studentToken, nil)
	require.Equal(t, http.StatusOK, code, resp.Message)
	var submitted struct {
		State  string `json:"state"`
		Result struct {
			Score  int  `json:"score"`
			Passed bool `json:"passed"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &submitted))
	assert.Equal(t, "results", submitted.State)
	assert.Equal(t, 50, submitted.Result.Score)
	assert.True(t, submitted.Result.Passed)

	code, resp = c.call(http.MethodGet, "/api/dashboard", studentToken, nil)
	require.Equal(t, http.StatusOK, code)
	var dashboard struct {
		Stats struct {
			AvgScore     int `json:"avgScore"`
			TotalQuizzes int `json:"totalQuizzes"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &dashboard))
	assert.Equal(t, 50, dashboard.Stats.AvgScore)
	assert.Equal(t, 1, dashboard.Stats.TotalQuizzes)

	code, _ = c.call(http.MethodPost, "/api/auth/logout", studentToken, nil)
	require.Equal(t, http.StatusOK, code)
	code, _ = c.call(http.MethodGet, "/api/dashboard", studentToken, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCommunityVisibility(t *testing.T) {
	_, c := newTestApp(t)
	adminToken := c.login("/api/auth/login", map[string]string{"email": "admin@example.com", "password": "admin-pass"})
	studentToken := c.login("/api/auth/signup", map[string]string{
		"email": "awa@example.com", "password": "secret1", "confirmPassword": "secret1",
	})

	code, _ := c.call(http.MethodPost, "/api/community/posts", "", map[string]string{"title": "t", "content": "c"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, resp := c.call(http.MethodPost, "/api/community/posts", studentToken, map[string]interface{}{
		"title": "Conseils", "content": "Lisez beaucoup.", "tags": []string{"ena"},
	})
	require.Equal(t, http.StatusCreated, code, resp.Message)
	var post struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &post))
	assert.Equal(t, "approved", post.Status)

	code, _ = c.call(http.MethodGet, "/api/community/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = c.call(http.MethodPost, "/api/admin/posts/"+post.ID+"/reject", adminToken, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = c.call(http.MethodGet, "/api/community/posts/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = c.call(http.MethodPost, "/api/community/posts/"+post.ID+"/like", studentToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = c.call(http.MethodPost, "/api/community/posts/"+post.ID+"/replies", studentToken, map[string]string{"content": "x"})
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = c.call(http.MethodGet, "/api/community/posts/"+post.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestConfigReloadCallbacks(t *testing.T) {
	a, c := newTestApp(t)
	token := c.login("/api/auth/signup", map[string]string{
		"email": "awa@example.com", "password": "secret1", "confirmPassword": "secret1",
	})
	for i := 0; i < 3; i++ {
		code, _ := c.call(http.MethodPost, "/api/community/posts", token, map[string]string{"title": "t", "content": "c"})
		require.Equal(t, http.StatusCreated, code)
	}

	var seen *config.Config
	a.RegisterConfigCallback(func(cfg *config.Config) { seen = cfg })

	reloaded := *a.Config
	reloaded.Community.ListLimit = 2
	a.applyConfig(&reloaded)
	assert.Same(t, &reloaded, seen)

	_, resp := c.call(http.MethodGet, "/api/community/posts", "", nil)
	var posts []json.RawMessage
	require.NoError(t, json.Unmarshal(resp.Data, &posts))
	assert.Len(t, posts, 2)
}
