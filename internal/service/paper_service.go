package service

import (
	"context"
	"encoding/json"
	"errors"
	"papershare_backend/internal/model"
	"papershare_backend/internal/repository"
	"papershare_backend/internal/util"
	"papershare_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FilterOptions 公开筛选项：四个分类维度的全量取值
type FilterOptions struct {
	Departments []model.Department `json:"departments"`
	Courses     []model.Course     `json:"courses"`
	Semesters   []model.Semester   `json:"semesters"`
	ExamTypes   []model.ExamType   `json:"examTypes"`
}

// PaperService 公开读路径。List与Detail走版本化缓存，
// 缓存里存的是序列化好的最终JSON，命中时原样返回不再反序列化。
type PaperService struct {
	Questions   *repository.QuestionRepository
	Taxonomy    *repository.TaxonomyRepository
	Votes       *repository.VoteRepository
	Submissions *repository.SubmissionRepository
	Cache       *PaperCacheService
}

func NewPaperService(
	questions *repository.QuestionRepository,
	taxonomy *repository.TaxonomyRepository,
	votes *repository.VoteRepository,
	submissions *repository.SubmissionRepository,
	cache *PaperCacheService,
) *PaperService {
	return &PaperService{
		Questions:   questions,
		Taxonomy:    taxonomy,
		Votes:       votes,
		Submissions: submissions,
		Cache:       cache,
	}
}

// List 已发布试卷的分页列表，读穿缓存
func (s *PaperService) List(ctx context.Context, filter repository.QuestionListFilter) (json.RawMessage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	if payload, ok := s.Cache.GetList(ctx, filter); ok {
		return json.RawMessage(payload), nil
	}

	questions, total, err := s.Questions.List(filter)
	if err != nil {
		return nil, err
	}

	for i := range questions {
		s.attachScores(questions[i].Submissions)
	}

	payload, err := json.Marshal(util.PageResponse{
		List:  questions,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
	if err != nil {
		return nil, err
	}

	s.Cache.SetList(ctx, filter, string(payload))
	return payload, nil
}

// Detail 单个Question及其全部Submission，读穿缓存
func (s *PaperService) Detail(ctx context.Context, id uint) (json.RawMessage, error) {
	if payload, ok := s.Cache.GetDetail(ctx, id); ok {
		return json.RawMessage(payload), nil
	}

	question, err := s.Questions.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}

	s.attachScores(question.Submissions)

	payload, err := json.Marshal(question)
	if err != nil {
		return nil, err
	}

	s.Cache.SetDetail(ctx, id, string(payload))
	return payload, nil
}

// Filters 筛选项不走缓存，taxonomy表极小且几乎不变
func (s *PaperService) Filters() (*FilterOptions, error) {
	departments, err := s.Taxonomy.ListDepartments()
	if err != nil {
		return nil, err
	}
	courses, err := s.Taxonomy.ListCourses()
	if err != nil {
		return nil, err
	}
	semesters, err := s.Taxonomy.ListSemesters()
	if err != nil {
		return nil, err
	}
	examTypes, err := s.Taxonomy.ListExamTypes()
	if err != nil {
		return nil, err
	}

	return &FilterOptions{
		Departments: departments,
		Courses:     courses,
		Semesters:   semesters,
		ExamTypes:   examTypes,
	}, nil
}

// attachScores 给每份Submission补上票数合计。
// 单条聚合失败按0分处理，不拖垮整个读路径。
func (s *PaperService) attachScores(submissions []model.Submission) {
	for i := range submissions {
		score, err := s.Votes.ScoreForSubmission(submissions[i].ID)
		if err != nil {
			logger.Log.Warn("score aggregation failed",
				zap.Uint("submissionId", submissions[i].ID), zap.Error(err))
			continue
		}
		submissions[i].Score = score
	}
}
