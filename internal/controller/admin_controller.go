package controller

import (
	"errors"
	"papershare_backend/internal/model"
	"papershare_backend/internal/service"
	"papershare_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AdminController 管理端维护操作
type AdminController struct {
	AdminService      *service.AdminService
	SubmissionService *service.SubmissionService
}

func NewAdminController(adminService *service.AdminService, submissionService *service.SubmissionService) *AdminController {
	return &AdminController{
		AdminService:      adminService,
		SubmissionService: submissionService,
	}
}

// StatusUpdateRequest 状态改判请求体
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required,oneof=pending_review published rejected"`
	Reason string `json:"reason"`
}

// UpdateQuestionStatus godoc
// @Summary 改判试卷状态
// @Description 人工改判槽位状态，三个状态之间可任意流转
// @Tags 管理
// @Accept  json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Question ID"
// @Param body body StatusUpdateRequest true "目标状态"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/questions/{id}/status [put]
func (c *AdminController) UpdateQuestionStatus(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req StatusUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	err = c.AdminService.UpdateStatus(ctx.Request.Context(), uint(id), model.QuestionStatus(req.Status), req.Reason)
	if errors.Is(err, util.ErrQuestionNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// CheckDuplicate godoc
// @Summary 人工查重
// @Description 查找同一分类下更早发布的槽位，最早发布者视为原件
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Question ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Router /api/admin/questions/{id}/duplicate [get]
func (c *AdminController) CheckDuplicate(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	duplicate, err := c.AdminService.CheckDuplicate(uint(id))
	if errors.Is(err, util.ErrQuestionNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"hasDuplicate": duplicate != nil,
		"original":     duplicate,
	})
}

// DeleteQuestion godoc
// @Summary 删除试卷槽位
// @Description 删除槽位及其全部上传、票和存储对象
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Question ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/questions/{id} [delete]
func (c *AdminController) DeleteQuestion(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	err = c.AdminService.DeleteQuestion(ctx.Request.Context(), uint(id))
	if errors.Is(err, util.ErrQuestionNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// DeleteSubmission godoc
// @Summary 删除单份上传
// @Description 删除一份上传及其票和存储对象，槽位保留
// @Tags 管理
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Submission ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/submissions/{id} [delete]
func (c *AdminController) DeleteSubmission(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	err = c.SubmissionService.Delete(ctx.Request.Context(), uint(id))
	if errors.Is(err, util.ErrSubmissionNotFound) {
		util.NotFound(ctx)
		return
	}
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
