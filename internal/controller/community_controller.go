package controller

import (
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/service"
	"faaqs_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CommunityController struct {
	CommunityService *service.CommunityService
}

func NewCommunityController(communityService *service.CommunityService) *CommunityController {
	return &CommunityController{CommunityService: communityService}
}

// ListPosts godoc
// @Summary 社区帖子列表
// @Description 只返回已通过的帖子，按创建时间倒序
// @Tags 社区
// @Produce json
// @Param programmeId query string false "按项目过滤"
// @Success 200 {object} util.Response{data=[]model.CommunityPost}
// @Router /community/posts [get]
func (c *CommunityController) ListPosts(ctx *gin.Context) {
	posts, err := c.CommunityService.ListPosts(ctx.Request.Context(), ctx.Query("programmeId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, posts)
}

// GetPost godoc
// @Summary 帖子详情
// @Tags 社区
// @Produce json
// @Param id path string true "帖子ID"
// @Success 200 {object} util.Response{data=model.CommunityPost}
// @Failure 404 {object} util.Response "帖子不存在"
// @Router /community/posts/{id} [get]
func (c *CommunityController) GetPost(ctx *gin.Context) {
	isAdmin := util.GetSessionFromContext(ctx).IsAdmin()
	post, err := c.CommunityService.GetPost(ctx.Request.Context(), ctx.Param("id"), isAdmin)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, post)
}

// CreatePost godoc
// @Summary 发布帖子
// @Description 标题最多 200 字、内容最多 2000 字、标签最多 5 个
// @Tags 社区
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.PostRequest true "帖子内容"
// @Success 201 {object} util.Response{data=model.CommunityPost}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /community/posts [post]
func (c *CommunityController) CreatePost(ctx *gin.Context) {
	var req service.PostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	session := util.GetSessionFromContext(ctx)
	post, err := c.CommunityService.CreatePost(ctx.Request.Context(), session.UserID(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, post)
}

// LikePost godoc
// @Summary 点赞
// @Description 重复点赞不产生变化
// @Tags 社区
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "帖子ID"
// @Success 200 {object} util.Response{data=model.CommunityPost}
// @Router /community/posts/{id}/like [post]
func (c *CommunityController) LikePost(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	post, err := c.CommunityService.LikePost(ctx.Request.Context(), ctx.Param("id"), session.UserID(), session.IsAdmin())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, post)
}

// UnlikePost godoc
// @Summary 取消点赞
// @Tags 社区
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "帖子ID"
// @Success 200 {object} util.Response{data=model.CommunityPost}
// @Router /community/posts/{id}/unlike [post]
func (c *CommunityController) UnlikePost(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	post, err := c.CommunityService.UnlikePost(ctx.Request.Context(), ctx.Param("id"), session.UserID(), session.IsAdmin())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, post)
}

// ToggleLike godoc
// @Summary 切换点赞
// @Tags 社区
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "帖子ID"
// @Success 200 {object} util.Response{data=object}
// @Router /community/posts/{id}/toggle-like [post]
func (c *CommunityController) ToggleLike(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	post, liked, err := c.CommunityService.ToggleLike(ctx.Request.Context(), ctx.Param("id"), session.UserID(), session.IsAdmin())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"liked": liked, "likes": len(post.Likes), "post": post})
}

// Reply godoc
// @Summary 回复帖子
// @Tags 社区
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "帖子ID"
// @Param body body service.ReplyRequest true "回复内容"
// @Success 201 {object} util.Response{data=model.CommunityReply}
// @Router /community/posts/{id}/replies [post]
func (c *CommunityController) Reply(ctx *gin.Context) {
	var req service.ReplyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	session := util.GetSessionFromContext(ctx)
	reply, err := c.CommunityService.Reply(ctx.Request.Context(), ctx.Param("id"), session.UserID(), session.IsAdmin(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, reply)
}

// ToggleReplyLike godoc
// @Summary 切换回复点赞
// @Tags 社区
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "帖子ID"
// @Param replyId path string true "回复ID"
// @Success 200 {object} util.Response{data=object}
// @Router /community/posts/{id}/replies/{replyId}/toggle-like [post]
func (c *CommunityController) ToggleReplyLike(ctx *gin.Context) {
	session := util.GetSessionFromContext(ctx)
	reply, liked, err := c.CommunityService.ToggleReplyLike(ctx.Request.Context(), ctx.Param("id"), ctx.Param("replyId"), session.UserID(), session.IsAdmin())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"liked": liked, "reply": reply})
}

// Report godoc
// @Summary 举报帖子
// @Description 原因为空时使用默认文案，同一用户可重复举报
// @Tags 社区
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "帖子ID"
// @Param body body service.ReportRequest false "举报原因"
// @Success 200 {object} util.Response{data=object}
// @Router /community/posts/{id}/reports [post]
func (c *CommunityController) Report(ctx *gin.Context) {
	var req service.ReportRequest
	// 允许空请求体
	_ = ctx.ShouldBindJSON(&req)
	session := util.GetSessionFromContext(ctx)
	post, err := c.CommunityService.Report(ctx.Request.Context(), ctx.Param("id"), session.UserID(), session.IsAdmin(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"reports": len(post.Reports)})
}

// AdminListPosts godoc
// @Summary 审核列表
// @Description 全部状态的帖子
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "pending/approved/rejected/reported"
// @Success 200 {object} util.Response{data=[]model.CommunityPost}
// @Router /admin/posts [get]
func (c *CommunityController) AdminListPosts(ctx *gin.Context) {
	posts, err := c.CommunityService.AdminListPosts(ctx.Request.Context(), model.PostStatus(ctx.Query("status")))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, posts)
}

// ApprovePost godoc
// @Summary 通过帖子
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "帖子ID"
// @Success 200 {object} util.Response{data=model.CommunityPost}
// @Router /admin/posts/{id}/approve [post]
func (c *CommunityController) ApprovePost(ctx *gin.Context) {
	post, err := c.CommunityService.Approve(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, post)
}

// RejectPost godoc
// @Summary 驳回帖子
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "帖子ID"
// @Success 200 {object} util.Response{data=model.CommunityPost}
// @Router /admin/posts/{id}/reject [post]
func (c *CommunityController) RejectPost(ctx *gin.Context) {
	post, err := c.CommunityService.Reject(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, post)
}

// DeletePost godoc
// @Summary 删除帖子
// @Description 物理删除，不可恢复
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "帖子ID"
// @Success 200 {object} util.Response
// @Router /admin/posts/{id} [delete]
func (c *CommunityController) DeletePost(ctx *gin.Context) {
	if err := c.CommunityService.DeletePost(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
