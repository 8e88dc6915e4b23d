package service

import (
	"context"
	"errors"
	"fmt"
	"papershare_backend/internal/model"
	"papershare_backend/internal/repository"
	"papershare_backend/internal/util"
	"papershare_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminService 管理端维护操作：状态流转、人工查重、删除整个Question。
type AdminService struct {
	Questions *repository.QuestionRepository
	Votes     *repository.VoteRepository
	Resolver  *QuestionService
	Storage   *StorageService
	Cache     *PaperCacheService
}

func NewAdminService(
	questions *repository.QuestionRepository,
	votes *repository.VoteRepository,
	resolver *QuestionService,
	storage *StorageService,
	cache *PaperCacheService,
) *AdminService {
	return &AdminService{
		Questions: questions,
		Votes:     votes,
		Resolver:  resolver,
		Storage:   storage,
		Cache:     cache,
	}
}

// UpdateStatus 人工改判状态，三个状态之间可以任意流转
func (s *AdminService) UpdateStatus(ctx context.Context, id uint, status model.QuestionStatus, reason string) error {
	switch status {
	case model.StatusPendingReview, model.StatusPublished, model.StatusRejected:
	default:
		return fmt.Errorf("unknown status %q", status)
	}

	if _, err := s.Questions.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuestionNotFound
		}
		return err
	}

	if err := s.Questions.UpdateStatus(id, status, reason); err != nil {
		return err
	}

	logger.Log.Info("question status updated",
		zap.Uint("questionId", id), zap.String("status", string(status)))

	s.Cache.Invalidate(ctx, id)
	return nil
}

// CheckDuplicate 对指定Question做人工查重：
// 同一分类下是否已有更早发布的记录。最早发布者视为原件保留。
func (s *AdminService) CheckDuplicate(id uint) (*model.Question, error) {
	question, err := s.Questions.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.Resolver.FindDuplicate(
		question.DepartmentID, question.CourseID,
		question.SemesterID, question.ExamTypeID,
		question.Section, question.ID,
	)
}

// DeleteQuestion 删除Question及其全部Submission、票和存储对象。
// 级联只在这一处显式发生。
func (s *AdminService) DeleteQuestion(ctx context.Context, id uint) error {
	question, err := s.Questions.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrQuestionNotFound
	}
	if err != nil {
		return err
	}

	for _, submission := range question.Submissions {
		if err := s.Votes.DeleteBySubmission(submission.ID); err != nil {
			return err
		}
	}

	if err := s.Questions.DeleteWithSubmissions(id); err != nil {
		return err
	}

	for _, submission := range question.Submissions {
		if err := s.Storage.Delete(ctx, submission.OriginalKey); err != nil {
			logger.Log.Warn("original object delete failed", zap.String("key", submission.OriginalKey), zap.Error(err))
		}
		if submission.DerivativeKey != "" {
			if err := s.Storage.Delete(ctx, submission.DerivativeKey); err != nil {
				logger.Log.Warn("derivative object delete failed", zap.String("key", submission.DerivativeKey), zap.Error(err))
			}
		}
	}

	logger.Log.Info("question deleted",
		zap.Uint("questionId", id), zap.Int("submissions", len(question.Submissions)))

	s.Cache.Invalidate(ctx, id)
	return nil
}
