package service

import (
	"errors"
	"papershare_backend/internal/model"
	"papershare_backend/internal/repository"
	"papershare_backend/internal/util"
	"papershare_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuestionStore Question查找与创建所需的最小数据访问面，
// 由 repository.QuestionRepository 实现（中间件里对UserActivityRepo用过同样手法）。
type QuestionStore interface {
	FindByClassification(departmentID, courseID, semesterID, examTypeID uint, section string) (*model.Question, error)
	Create(question *model.Question) error
	CountPublishedByAxis(column string, id uint) (int64, error)
	FindOldestPublished(departmentID, courseID, semesterID, examTypeID uint, section string, excludeID uint) (*model.Question, error)
}

type QuestionService struct {
	Questions QuestionStore
}

func NewQuestionService(questions QuestionStore) *QuestionService {
	return &QuestionService{Questions: questions}
}

// Resolve 把一次上传归位到规范的Question记录。
// 已存在同一五元组的记录则原样返回（无论其当前状态）；
// 不存在则新建，初始状态由自动发布判定给出。
// 并发创建同一槽位时，插入撞唯一索引按"别人先建好了"处理，重查后返回。
func (s *QuestionService) Resolve(departmentID, courseID, semesterID, examTypeID uint, section string) (*model.Question, error) {
	section = util.NormalizeSection(section)

	question, err := s.Questions.FindByClassification(departmentID, courseID, semesterID, examTypeID, section)
	if err == nil {
		return question, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	status, err := s.decideInitialStatus(departmentID, courseID, semesterID, examTypeID)
	if err != nil {
		return nil, err
	}

	question = &model.Question{
		DepartmentID: departmentID,
		CourseID:     courseID,
		SemesterID:   semesterID,
		ExamTypeID:   examTypeID,
		Section:      section,
		Status:       status,
	}

	if err := s.Questions.Create(question); err != nil {
		if repository.IsDuplicateKeyError(err) {
			logger.Log.Debug("question slot created concurrently, re-reading",
				zap.Uint("departmentId", departmentID),
				zap.Uint("courseId", courseID))
			return s.Questions.FindByClassification(departmentID, courseID, semesterID, examTypeID, section)
		}
		return nil, err
	}

	return question, nil
}

// decideInitialStatus 自动发布判定，只在创建时运行一次。
// 四个分类维度各自独立检查：该取值下是否已存在任一已发布Question。
// 四个维度都见过已发布记录，说明组合里没有全新维度取值，低风险直接发布；
// 任何一个维度是全新取值则进入人工审核。
func (s *QuestionService) decideInitialStatus(departmentID, courseID, semesterID, examTypeID uint) (model.QuestionStatus, error) {
	axes := []struct {
		column string
		id     uint
	}{
		{"department_id", departmentID},
		{"course_id", courseID},
		{"semester_id", semesterID},
		{"exam_type_id", examTypeID},
	}

	for _, axis := range axes {
		count, err := s.Questions.CountPublishedByAxis(axis.column, axis.id)
		if err != nil {
			return "", err
		}
		if count == 0 {
			return model.StatusPendingReview, nil
		}
	}

	return model.StatusPublished, nil
}

// FindDuplicate 管理端人工查重：同一分类下最早的已发布Question。
// excludeID 非零时排除正在编辑的记录本身。没有重复返回 (nil, nil)。
func (s *QuestionService) FindDuplicate(departmentID, courseID, semesterID, examTypeID uint, section string, excludeID uint) (*model.Question, error) {
	question, err := s.Questions.FindOldestPublished(
		departmentID, courseID, semesterID, examTypeID,
		util.NormalizeSection(section), excludeID,
	)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return question, nil
}
