package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"papershare_backend/internal/config"
	"papershare_backend/internal/model"
	"papershare_backend/internal/repository"
	"papershare_backend/internal/util"
	"papershare_backend/pkg/logger"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateSubmissionInput 上传一份试卷所需的全部输入
type CreateSubmissionInput struct {
	DepartmentID uint
	CourseID     uint
	SemesterID   uint
	ExamTypeID   uint
	Section      string
	UploaderID   uint
	UploaderName string
	PDF          []byte
}

// SubmissionService 上传主流程：校验、归位Question、存原件、登记记录，
// 然后异步转换出公开版本。原件落库即上传成功，转换不阻塞请求。
type SubmissionService struct {
	Submissions *repository.SubmissionRepository
	Taxonomy    *repository.TaxonomyRepository
	Votes       *repository.VoteRepository
	Questions   *QuestionService
	Storage     *StorageService
	Converter   *ConverterService
	Cache       *PaperCacheService
	Cfg         *config.Config
}

func NewSubmissionService(
	submissions *repository.SubmissionRepository,
	taxonomy *repository.TaxonomyRepository,
	votes *repository.VoteRepository,
	questions *QuestionService,
	storage *StorageService,
	converter *ConverterService,
	cache *PaperCacheService,
	cfg *config.Config,
) *SubmissionService {
	return &SubmissionService{
		Submissions: submissions,
		Taxonomy:    taxonomy,
		Votes:       votes,
		Questions:   questions,
		Storage:     storage,
		Converter:   converter,
		Cache:       cache,
		Cfg:         cfg,
	}
}

// Create 校验并登记一份上传。返回时原件已持久化，转换在后台进行。
func (s *SubmissionService) Create(ctx context.Context, input CreateSubmissionInput) (*model.Submission, error) {
	maxSize := int64(s.Cfg.Upload.MaxSizeMB) * 1024 * 1024
	if maxSize > 0 && int64(len(input.PDF)) > maxSize {
		return nil, util.ErrFileTooLarge
	}

	if _, err := util.ValidateMimeType(bytes.NewReader(input.PDF), []string{util.MimePDF}); err != nil {
		return nil, util.ErrNotPDF
	}
	pages, err := util.PDFPageCount(input.PDF)
	if err != nil {
		return nil, err
	}

	ok, err := s.Taxonomy.ClassificationExists(input.DepartmentID, input.CourseID, input.SemesterID, input.ExamTypeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrClassificationBad
	}

	question, err := s.Questions.Resolve(input.DepartmentID, input.CourseID, input.SemesterID, input.ExamTypeID, input.Section)
	if err != nil {
		return nil, err
	}

	originalKey := fmt.Sprintf("papers/original/%s.pdf", uuid.New().String())
	if _, err := s.Storage.Upload(ctx, originalKey, bytes.NewReader(input.PDF), int64(len(input.PDF)), util.MimePDF); err != nil {
		return nil, err
	}

	submission := &model.Submission{
		QuestionID:   question.ID,
		UploaderID:   input.UploaderID,
		OriginalKey:  originalKey,
		OriginalSize: int64(len(input.PDF)),
	}
	if err := s.Submissions.Create(submission); err != nil {
		return nil, err
	}

	logger.Log.Info("submission created",
		zap.Uint("submissionId", submission.ID),
		zap.Uint("questionId", question.ID),
		zap.Int("pages", pages),
		zap.Int("sizeBytes", len(input.PDF)))

	s.Cache.Invalidate(ctx, question.ID)

	pdfCopy := make([]byte, len(input.PDF))
	copy(pdfCopy, input.PDF)
	go s.convertAsync(submission.ID, question.ID, pdfCopy, input.UploaderName)

	return submission, nil
}

// convertAsync 后台转换出公开版本并登记对象键。
// 失败只记日志不重试，下载端会退回原件。
func (s *SubmissionService) convertAsync(submissionID, questionID uint, original []byte, uploaderName string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("pdf conversion panicked",
				zap.Uint("submissionId", submissionID), zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	derived, err := s.Converter.Convert(ctx, original, uploaderName)
	if err != nil {
		logger.Log.Error("pdf conversion failed, keeping original only",
			zap.Uint("submissionId", submissionID), zap.Error(err))
		return
	}

	derivativeKey := fmt.Sprintf("papers/public/%s.pdf", uuid.New().String())
	if _, err := s.Storage.Upload(ctx, derivativeKey, bytes.NewReader(derived), int64(len(derived)), util.MimePDF); err != nil {
		logger.Log.Error("derivative upload failed",
			zap.Uint("submissionId", submissionID), zap.Error(err))
		return
	}

	if err := s.Submissions.UpdateDerivativeKey(submissionID, derivativeKey); err != nil {
		logger.Log.Error("derivative key update failed",
			zap.Uint("submissionId", submissionID), zap.Error(err))
		return
	}

	logger.Log.Info("submission converted",
		zap.Uint("submissionId", submissionID),
		zap.Int("derivedBytes", len(derived)))

	s.Cache.Invalidate(ctx, questionID)
}

// Download 返回可分发的URL并累计浏览次数。
// 优先公开版本，转换未完成或失败时退回原件。
func (s *SubmissionService) Download(id uint) (string, error) {
	submission, err := s.Submissions.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", util.ErrSubmissionNotFound
	}
	if err != nil {
		return "", err
	}

	key := submission.DerivativeKey
	if key == "" {
		key = submission.OriginalKey
	}

	if err := s.Submissions.IncrementViewCount(id); err != nil {
		logger.Log.Warn("view count increment failed", zap.Uint("submissionId", id), zap.Error(err))
	}

	return s.Storage.GetURL(key), nil
}

// Delete 管理端删除单份上传：清票、删对象、删记录、失效缓存
func (s *SubmissionService) Delete(ctx context.Context, id uint) error {
	submission, err := s.Submissions.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrSubmissionNotFound
	}
	if err != nil {
		return err
	}

	if err := s.Votes.DeleteBySubmission(id); err != nil {
		return err
	}
	if err := s.Submissions.Delete(id); err != nil {
		return err
	}

	// 对象删除失败不回滚数据库，残留对象留给运维清理
	if err := s.Storage.Delete(ctx, submission.OriginalKey); err != nil {
		logger.Log.Warn("original object delete failed", zap.String("key", submission.OriginalKey), zap.Error(err))
	}
	if submission.DerivativeKey != "" {
		if err := s.Storage.Delete(ctx, submission.DerivativeKey); err != nil {
			logger.Log.Warn("derivative object delete failed", zap.String("key", submission.DerivativeKey), zap.Error(err))
		}
	}

	s.Cache.Invalidate(ctx, submission.QuestionID)
	return nil
}
