package controller

import (
	"errors"
	"papershare_backend/internal/service"
	"papershare_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type VoteController struct {
	VoteService *service.VoteService
}

func NewVoteController(voteService *service.VoteService) *VoteController {
	return &VoteController{VoteService: voteService}
}

// VoteRequest 投票请求体，value取1或-1
type VoteRequest struct {
	Value int `json:"value" binding:"required"`
}

// CastVote godoc
// @Summary 为上传投票
// @Description 每个用户对每份上传只保留最新一票，重复投票就地改票
// @Tags 试卷
// @Accept  json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Submission ID"
// @Param body body VoteRequest true "投票值"
// @Success 200 {object} util.Response{data=object} "返回最新合计分"
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/papers/submissions/{id}/vote [post]
func (c *VoteController) CastVote(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req VoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	score, err := c.VoteService.Cast(ctx.Request.Context(), uint(id), user.UserID, req.Value)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidVoteValue):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrSubmissionNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"score": score})
}
