package util

import (
	"faaqs_backend/internal/model"

	"github.com/gin-gonic/gin"
)

const sessionContextKey = "auth_session"

// AuthSession 一次登录对应的会话对象，登录时创建、退出登录时销毁。
// 由中间件挂到请求上下文，替代全局的认证状态。
type AuthSession struct {
	Token   string             `json:"token"`
	Claims  *Claims            `json:"-"`
	Profile *model.UserProfile `json:"profile"`
}

func (s *AuthSession) UserID() string {
	if s == nil || s.Claims == nil {
		return ""
	}
	return s.Claims.UserID
}

func (s *AuthSession) IsAdmin() bool {
	if s == nil {
		return false
	}
	if s.Profile != nil {
		return s.Profile.IsAdmin()
	}
	return s.Claims != nil && s.Claims.Role == model.Admin
}

func SetSession(c *gin.Context, s *AuthSession) {
	c.Set(sessionContextKey, s)
}

func GetSessionFromContext(c *gin.Context) *AuthSession {
	v, exists := c.Get(sessionContextKey)
	if !exists {
		return nil
	}
	s, ok := v.(*AuthSession)
	if !ok {
		return nil
	}
	return s
}
