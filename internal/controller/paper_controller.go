package controller

import (
	"errors"
	"net/http"
	"papershare_backend/internal/repository"
	"papershare_backend/internal/service"
	"papershare_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PaperController 公开读路径：列表、详情、筛选项、下载
type PaperController struct {
	PaperService      *service.PaperService
	SubmissionService *service.SubmissionService
}

func NewPaperController(paperService *service.PaperService, submissionService *service.SubmissionService) *PaperController {
	return &PaperController{
		PaperService:      paperService,
		SubmissionService: submissionService,
	}
}

// ListPapers godoc
// @Summary 试卷列表
// @Description 按分类维度过滤的已发布试卷分页列表
// @Tags 试卷
// @Produce json
// @Param department query int false "院系ID"
// @Param course query int false "课程ID"
// @Param semester query int false "学期ID"
// @Param examType query int false "考试类型ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/papers [get]
func (c *PaperController) ListPapers(ctx *gin.Context) {
	filter := repository.QuestionListFilter{
		DepartmentID: uintQuery(ctx, "department"),
		CourseID:     uintQuery(ctx, "course"),
		SemesterID:   uintQuery(ctx, "semester"),
		ExamTypeID:   uintQuery(ctx, "examType"),
	}
	filter.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	payload, err := c.PaperService.List(ctx.Request.Context(), filter)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	writeCachedJSON(ctx, payload)
}

// GetPaper godoc
// @Summary 试卷详情
// @Description 单个试卷槽位及其全部上传版本
// @Tags 试卷
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 404 {object} util.Response
// @Router /api/papers/{id} [get]
func (c *PaperController) GetPaper(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	payload, err := c.PaperService.Detail(ctx.Request.Context(), uint(id))
	if errors.Is(err, util.ErrQuestionNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	writeCachedJSON(ctx, payload)
}

// GetFilters godoc
// @Summary 筛选项
// @Description 四个分类维度的全部可选值
// @Tags 试卷
// @Produce json
// @Success 200 {object} util.Response{data=service.FilterOptions}
// @Router /api/papers/filters [get]
func (c *PaperController) GetFilters(ctx *gin.Context) {
	options, err := c.PaperService.Filters()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, options)
}

// DownloadSubmission godoc
// @Summary 下载试卷
// @Description 跳转到公开版本PDF，转换未完成时退回原件
// @Tags 试卷
// @Param id path int true "Submission ID"
// @Success 302
// @Failure 404 {object} util.Response
// @Router /api/papers/submissions/{id}/download [get]
func (c *PaperController) DownloadSubmission(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	url, err := c.SubmissionService.Download(uint(id))
	if errors.Is(err, util.ErrSubmissionNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusFound, url)
}

func uintQuery(ctx *gin.Context, name string) uint {
	value, err := strconv.ParseUint(ctx.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(value)
}

// writeCachedJSON 缓存里存的就是最终JSON，包一层统一响应结构原样输出
func writeCachedJSON(ctx *gin.Context, payload []byte) {
	ctx.Header("Content-Type", "application/json; charset=utf-8")
	ctx.Status(http.StatusOK)
	ctx.Writer.WriteString(`{"code":200,"message":"success","data":`)
	ctx.Writer.Write(payload)
	ctx.Writer.WriteString(`}`)
}
