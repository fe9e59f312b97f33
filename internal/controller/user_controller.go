package controller

import (
	"faaqs_backend/internal/service"
	"faaqs_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// GetProfile godoc
// @Summary 获取个人档案
// @Tags 用户
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.UserProfile}
// @Router /profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	profile, err := c.UserService.GetProfile(ctx.Request.Context(), session.UserID())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// UpdateProfile godoc
// @Summary 修改显示名称
// @Tags 用户
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.ProfileUpdateRequest true "显示名称"
// @Success 200 {object} util.Response{data=model.UserProfile}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	var req service.ProfileUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	session := util.GetSessionFromContext(ctx)
	profile, err := c.UserService.UpdateProfile(ctx.Request.Context(), session.UserID(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// ListUsers godoc
// @Summary 用户列表
// @Description 管理员查看全部用户
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.UserProfile}
// @Failure 403 {object} util.Response "权限不足"
// @Router /admin/users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	users, err := c.UserService.ListUsers(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

// UpdateRole godoc
// @Summary 修改用户角色
// @Tags 管理员
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param uid path string true "用户ID"
// @Param body body service.RoleUpdateRequest true "角色 student/admin"
// @Success 200 {object} util.Response{data=model.UserProfile}
// @Failure 400 {object} util.Response "角色无效"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /admin/users/{uid}/role [patch]
func (c *UserController) UpdateRole(ctx *gin.Context) {
	var req service.RoleUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	user, err := c.UserService.UpdateRole(ctx.Request.Context(), ctx.Param("uid"), req.Role)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
