package controller

import (
	"errors"
	"io"
	"papershare_backend/internal/service"
	"papershare_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
	AuthService       *service.AuthService
}

func NewSubmissionController(submissionService *service.SubmissionService, authService *service.AuthService) *SubmissionController {
	return &SubmissionController{
		SubmissionService: submissionService,
		AuthService:       authService,
	}
}

// UploadRequest 上传表单的分类字段
type UploadRequest struct {
	DepartmentID uint   `form:"departmentId" binding:"required"`
	CourseID     uint   `form:"courseId" binding:"required"`
	SemesterID   uint   `form:"semesterId" binding:"required"`
	ExamTypeID   uint   `form:"examTypeId" binding:"required"`
	Section      string `form:"section"`
}

// UploadPaper godoc
// @Summary 上传试卷
// @Description 上传一份PDF并归入对应的试卷槽位，转换在后台进行
// @Tags 试卷
// @Accept  multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param departmentId formData int true "院系ID"
// @Param courseId formData int true "课程ID"
// @Param semesterId formData int true "学期ID"
// @Param examTypeId formData int true "考试类型ID"
// @Param section formData string false "分组（A/B卷等）"
// @Param file formData file true "PDF文件"
// @Success 201 {object} util.Response{data=model.Submission}
// @Failure 400 {object} util.Response "文件或分类不合法"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/papers [post]
func (c *SubmissionController) UploadPaper(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UploadRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	submission, err := c.SubmissionService.Create(ctx.Request.Context(), service.CreateSubmissionInput{
		DepartmentID: req.DepartmentID,
		CourseID:     req.CourseID,
		SemesterID:   req.SemesterID,
		ExamTypeID:   req.ExamTypeID,
		Section:      req.Section,
		UploaderID:   user.ID,
		UploaderName: user.Name,
		PDF:          data,
	})
	if err != nil {
		switch {
		case errors.Is(err, util.ErrFileTooLarge):
			util.Error(ctx, 413, err.Error())
		case errors.Is(err, util.ErrNotPDF):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrClassificationBad):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, submission)
}
