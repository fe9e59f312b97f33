package controller

import (
	"faaqs_backend/internal/service"
	"faaqs_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// Signup godoc
// @Summary 注册新用户
// @Description 邮箱密码注册，密码至少 6 位且需两次输入一致，新用户角色为 student
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.SignupRequest true "注册信息"
// @Success 201 {object} util.Response{data=util.AuthSession} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Router /auth/signup [post]
func (c *AuthController) Signup(ctx *gin.Context) {
	var req service.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.AuthService.Signup(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, session)
}

// Login godoc
// @Summary 用户登录
// @Description 验证邮箱密码并返回会话令牌
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.LoginRequest true "登录凭据"
// @Success 200 {object} util.Response{data=util.AuthSession} "登录成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "邮箱或密码错误"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.AuthService.Login(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// SSO godoc
// @Summary 第三方登录
// @Description 用外部身份提供方签发的令牌换取会话，首次登录自动建档
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.SSORequest true "身份令牌"
// @Success 200 {object} util.Response{data=util.AuthSession} "登录成功"
// @Failure 401 {object} util.Response "令牌无效"
// @Router /auth/sso [post]
func (c *AuthController) SSO(ctx *gin.Context) {
	var req service.SSORequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.AuthService.SSO(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// Logout godoc
// @Summary 退出登录
// @Description 注销当前令牌
// @Tags 认证
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "已退出"
// @Router /auth/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.AuthService.Logout(ctx.Request.Context(), util.GetSessionFromContext(ctx)); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// RequestPasswordReset godoc
// @Summary 申请重置密码
// @Description 向邮箱发送重置链接，邮箱未注册时同样返回成功
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.PasswordResetRequest true "邮箱"
// @Success 200 {object} util.Response "已受理"
// @Failure 503 {object} util.Response "邮件服务不可用"
// @Router /auth/password-reset [post]
func (c *AuthController) RequestPasswordReset(ctx *gin.Context) {
	var req service.PasswordResetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AuthService.RequestPasswordReset(ctx.Request.Context(), req); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ConfirmPasswordReset godoc
// @Summary 确认重置密码
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.PasswordResetConfirmRequest true "重置令牌与新密码"
// @Success 200 {object} util.Response "密码已更新"
// @Failure 400 {object} util.Response "密码不符合要求"
// @Failure 401 {object} util.Response "令牌无效或已使用"
// @Router /auth/password-reset/confirm [post]
func (c *AuthController) ConfirmPasswordReset(ctx *gin.Context) {
	var req service.PasswordResetConfirmRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AuthService.ConfirmPasswordReset(ctx.Request.Context(), req); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
