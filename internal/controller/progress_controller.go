package controller

import (
	"faaqs_backend/internal/service"
	"faaqs_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// ListAttempts godoc
// @Summary 作答记录
// @Description 按完成时间倒序
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param programmeId query string false "按项目过滤"
// @Success 200 {object} util.Response{data=[]model.UserProgress}
// @Router /progress [get]
func (c *ProgressController) ListAttempts(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	attempts, err := c.ProgressService.ListAttempts(ctx.Request.Context(), session.UserID(), ctx.Query("programmeId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

// Dashboard godoc
// @Summary 学习仪表盘
// @Description 平均分、测验次数、累计用时（分钟）及作答记录
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param programmeId query string false "按项目过滤"
// @Success 200 {object} util.Response{data=service.Dashboard}
// @Router /dashboard [get]
func (c *ProgressController) Dashboard(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	dashboard, err := c.ProgressService.GetDashboard(ctx.Request.Context(), session.UserID(), ctx.Query("programmeId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, dashboard)
}
