package controller

import (
	"faaqs_backend/internal/service"
	"faaqs_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgrammeController struct {
	ProgrammeService *service.ProgrammeService
}

func NewProgrammeController(programmeService *service.ProgrammeService) *ProgrammeController {
	return &ProgrammeController{ProgrammeService: programmeService}
}

// ListProgrammes godoc
// @Summary 备考项目列表
// @Tags 项目
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Programme}
// @Router /programmes [get]
func (c *ProgrammeController) ListProgrammes(ctx *gin.Context) {
	list, err := c.ProgrammeService.List(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// GetProgramme godoc
// @Summary 项目详情
// @Tags 项目
// @Produce json
// @Param slug path string true "项目 slug"
// @Success 200 {object} util.Response{data=model.Programme}
// @Failure 404 {object} util.Response "项目不存在"
// @Router /programmes/{slug} [get]
func (c *ProgrammeController) GetProgramme(ctx *gin.Context) {
	p, err := c.ProgrammeService.GetBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, p)
}

// ListProgrammeQuizzes godoc
// @Summary 项目下已发布的测验
// @Tags 项目
// @Produce json
// @Param slug path string true "项目 slug"
// @Success 200 {object} util.Response{data=[]service.QuizSummary}
// @Failure 404 {object} util.Response "项目不存在"
// @Router /programmes/{slug}/quizzes [get]
func (c *ProgrammeController) ListProgrammeQuizzes(ctx *gin.Context) {
	quizzes, err := c.ProgrammeService.ListQuizzes(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}
