package middleware

import (
	"context"
	"errors"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeAuth struct {
	sessions map[string]*util.AuthSession
	err      error
}

func (f *fakeAuth) Authenticate(ctx context.Context, token string) (*util.AuthSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[token]
	if !ok {
		return nil, util.ErrInvalidToken
	}
	return s, nil
}

func session(uid string, role model.UserRole) *util.AuthSession {
	return &util.AuthSession{
		Claims:  &util.Claims{UserID: uid, Role: role},
		Profile: &model.UserProfile{UID: uid, Role: role},
	}
}

func newRouter(auth Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(auth), func(c *gin.Context) {
		c.String(http.StatusOK, util.GetSessionFromContext(c).UserID())
	})
	r.GET("/admin", AuthMiddleware(auth), RoleMiddleware(model.Admin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/feed", OptionalAuth(auth), func(c *gin.Context) {
		c.String(http.StatusOK, util.GetSessionFromContext(c).UserID())
	})
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(&fakeAuth{sessions: map[string]*util.AuthSession{"good": session("u1", model.Student)}})

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "bad").Code)

	w := do(r, "/me", "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	// websocket 握手通过查询参数带令牌
	w = do(r, "/me?token=good", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareBackendDown(t *testing.T) {
	r := newRouter(&fakeAuth{err: util.Unavailable("find user", errors.New("timeout"))})

	assert.Equal(t, http.StatusServiceUnavailable, do(r, "/me", "any").Code)
}

func TestRoleMiddleware(t *testing.T) {
	r := newRouter(&fakeAuth{sessions: map[string]*util.AuthSession{
		"student": session("u1", model.Student),
		"admin":   session("u2", model.Admin),
	}})

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "student").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", "admin").Code)
}

func TestRoleMiddlewarePrefersProfileRole(t *testing.T) {
	// 令牌签发后被降级，以档案为准
	demoted := session("u3", model.Student)
	demoted.Claims.Role = model.Admin
	r := newRouter(&fakeAuth{sessions: map[string]*util.AuthSession{"demoted": demoted}})

	assert.Equal(t, http.StatusForbidden, do(r, "/admin", "demoted").Code)
}

func TestOptionalAuth(t *testing.T) {
	r := newRouter(&fakeAuth{sessions: map[string]*util.AuthSession{"good": session("u1", model.Student)}})

	w := do(r, "/feed", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", w.Body.String())

	w = do(r, "/feed", "bad")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, "/feed", "good")
	assert.Equal(t, "u1", w.Body.String())
}
