package controller

import (
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/service"
	"faaqs_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type FileController struct {
	FileService *service.FileService
}

func NewFileController(fileService *service.FileService) *FileController {
	return &FileController{FileService: fileService}
}

// UploadFile godoc
// @Summary 上传资料
// @Description 只接受 PDF 和图片，对象键为 programmes/{programmeId}/{category}/{fileName}
// @Tags 管理员
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "文件"
// @Param programmeId formData string true "项目ID"
// @Param title formData string true "标题"
// @Param category formData string false "revision-sheet/past-paper/methodology/other"
// @Param description formData string false "说明"
// @Success 201 {object} util.Response{data=model.UploadedFile}
// @Failure 400 {object} util.Response "缺少文件或参数"
// @Router /admin/files [post]
func (c *FileController) UploadFile(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, util.MaxUploadSize)

	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file: required")
		return
	}
	f, err := header.Open()
	if err != nil {
		util.BadRequest(ctx, "file: unreadable")
		return
	}
	defer f.Close()

	session := util.GetSessionFromContext(ctx)
	uploaded, err := c.FileService.Upload(ctx.Request.Context(), service.UploadRequest{
		ProgrammeID: ctx.PostForm("programmeId"),
		Category:    model.FileCategory(ctx.PostForm("category")),
		Title:       ctx.PostForm("title"),
		Description: ctx.PostForm("description"),
		FileName:    header.Filename,
		Size:        header.Size,
		UploadedBy:  session.UserID(),
	}, f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, uploaded)
}

// ListFiles godoc
// @Summary 资料列表
// @Tags 管理员
// @Produce json
// @Security ApiKeyAuth
// @Param programmeId query string false "按项目过滤"
// @Success 200 {object} util.Response{data=[]model.UploadedFile}
// @Router /admin/files [get]
func (c *FileController) ListFiles(ctx *gin.Context) {
	files, err := c.FileService.List(ctx.Request.Context(), ctx.Query("programmeId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, files)
}
