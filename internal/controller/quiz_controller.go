package controller

import (
	"faaqs_backend/internal/service"
	"faaqs_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// GetQuiz godoc
// @Summary 测验详情
// @Description 学生视角，不含正确答案
// @Tags 测验
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response{data=service.QuizSummary}
// @Failure 404 {object} util.Response "测验不存在"
// @Router /quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	quiz, err := c.QuizService.GetQuiz(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// AdminListQuizzes godoc
// @Summary 全部测验
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Quiz}
// @Router /admin/quizzes [get]
func (c *QuizController) AdminListQuizzes(ctx *gin.Context) {
	quizzes, err := c.QuizService.AdminListQuizzes(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// AdminGetQuiz godoc
// @Summary 测验详情（含答案）
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /admin/quizzes/{id} [get]
func (c *QuizController) AdminGetQuiz(ctx *gin.Context) {
	quiz, err := c.QuizService.AdminGetQuiz(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// CreateQuiz godoc
// @Summary 创建测验
// @Tags 管理员
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuizRequest true "测验内容"
// @Success 201 {object} util.Response{data=model.Quiz}
// @Failure 400 {object} util.Response "题目不合法"
// @Router /admin/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	quiz, err := c.QuizService.CreateQuiz(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// UpdateQuiz godoc
// @Summary 更新测验
// @Tags 管理员
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Param body body service.QuizRequest true "测验内容"
// @Success 200 {object} util.Response{data=model.Quiz}
// @Router /admin/quizzes/{id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	var req service.QuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	quiz, err := c.QuizService.UpdateQuiz(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary 删除测验
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "测验ID"
// @Success 200 {object} util.Response
// @Router /admin/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	if err := c.QuizService.DeleteQuiz(ctx.Request.Context(), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
