package middleware

import (
	"context"
	"errors"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"faaqs_backend/pkg/logger"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator 由 AuthService 实现
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*util.AuthSession, error)
}

func bearerToken(c *gin.Context) string {
	tokenString := ""
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}
	// websocket 握手无法带自定义头
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	return tokenString
}

// AuthMiddleware 校验令牌并把会话挂到上下文
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, util.ErrInvalidToken) {
				logger.Log.Debug("rejected token", zap.String("path", c.FullPath()))
				util.Unauthorized(c)
			} else {
				util.HandleError(c, err)
			}
			c.Abort()
			return
		}

		util.SetSession(c, session)
		c.Next()
	}
}

// OptionalAuth 有合法令牌时挂上会话，没有也放行
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if session, err := auth.Authenticate(c.Request.Context(), tokenString); err == nil {
				util.SetSession(c, session)
			}
		}
		c.Next()
	}
}

// RoleMiddleware 以服务端档案中的角色为准，管理员直接放行
func RoleMiddleware(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := util.GetSessionFromContext(c)
		if session == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		role := model.UserRole("")
		if session.Profile != nil {
			role = session.Profile.Role
		} else if session.Claims != nil {
			role = session.Claims.Role
		}

		hasRole := role == model.Admin
		for _, r := range roles {
			if role == r {
				hasRole = true
				break
			}
		}

		if !hasRole {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
