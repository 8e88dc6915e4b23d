package service

import (
	"context"
	"errors"
	"papershare_backend/internal/repository"
	"papershare_backend/internal/util"

	"gorm.io/gorm"
)

// VoteService 上传质量投票。每个用户对每份Submission只保留最新一票。
type VoteService struct {
	Votes       *repository.VoteRepository
	Submissions *repository.SubmissionRepository
	Cache       *PaperCacheService
}

func NewVoteService(votes *repository.VoteRepository, submissions *repository.SubmissionRepository, cache *PaperCacheService) *VoteService {
	return &VoteService{
		Votes:       votes,
		Submissions: submissions,
		Cache:       cache,
	}
}

// Cast 记录一票并返回该Submission的最新合计分
func (s *VoteService) Cast(ctx context.Context, submissionID, userID uint, value int) (int64, error) {
	if value != 1 && value != -1 {
		return 0, util.ErrInvalidVoteValue
	}

	submission, err := s.Submissions.FindByID(submissionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, util.ErrSubmissionNotFound
	}
	if err != nil {
		return 0, err
	}

	if err := s.Votes.Upsert(submissionID, userID, value); err != nil {
		return 0, err
	}

	s.Cache.Invalidate(ctx, submission.QuestionID)

	return s.Votes.ScoreForSubmission(submissionID)
}
