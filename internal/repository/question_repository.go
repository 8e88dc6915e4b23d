package repository

import (
	"errors"
	"papershare_backend/internal/model"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// QuestionListFilter 公开列表的过滤参数，零值表示该维度不过滤
type QuestionListFilter struct {
	DepartmentID uint
	CourseID     uint
	SemesterID   uint
	ExamTypeID   uint
	Page         int
	Limit        int
}

// sectionScope 空串与历史遗留的NULL等价，都表示"无分组"
func sectionScope(db *gorm.DB, section string) *gorm.DB {
	if section == "" {
		return db.Where("(section = '' OR section IS NULL)")
	}
	return db.Where("section = ?", section)
}

func (r *QuestionRepository) FindByClassification(departmentID, courseID, semesterID, examTypeID uint, section string) (*model.Question, error) {
	var question model.Question
	db := r.DB.Where(
		"department_id = ? AND course_id = ? AND semester_id = ? AND exam_type_id = ?",
		departmentID, courseID, semesterID, examTypeID,
	)
	err := sectionScope(db, section).First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	err := r.DB.
		Preload("Department").
		Preload("Course").
		Preload("Semester").
		Preload("ExamType").
		Preload("Submissions").
		Preload("Submissions.Uploader").
		First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// CountPublishedByAxis 统计单个分类维度取值下已发布Question的数量。
// column 由调用方从白名单传入，不接受用户输入。
func (r *QuestionRepository) CountPublishedByAxis(column string, id uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).
		Where(column+" = ? AND status = ?", id, model.StatusPublished).
		Count(&count).Error
	return count, err
}

// FindOldestPublished 查找同一分类下最早创建的已发布Question（推定原件）。
// excludeID 非零时排除该记录，供编辑时查重使用。
func (r *QuestionRepository) FindOldestPublished(departmentID, courseID, semesterID, examTypeID uint, section string, excludeID uint) (*model.Question, error) {
	var question model.Question
	db := r.DB.Where(
		"department_id = ? AND course_id = ? AND semester_id = ? AND exam_type_id = ? AND status = ?",
		departmentID, courseID, semesterID, examTypeID, model.StatusPublished,
	)
	db = sectionScope(db, section)
	if excludeID != 0 {
		db = db.Where("id != ?", excludeID)
	}
	err := db.Order("created_at ASC").First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// List 公开列表，仅返回已发布的Question
func (r *QuestionRepository) List(filter QuestionListFilter) ([]model.Question, int64, error) {
	db := r.DB.Model(&model.Question{}).Where("status = ?", model.StatusPublished)

	if filter.DepartmentID != 0 {
		db = db.Where("department_id = ?", filter.DepartmentID)
	}
	if filter.CourseID != 0 {
		db = db.Where("course_id = ?", filter.CourseID)
	}
	if filter.SemesterID != 0 {
		db = db.Where("semester_id = ?", filter.SemesterID)
	}
	if filter.ExamTypeID != 0 {
		db = db.Where("exam_type_id = ?", filter.ExamTypeID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []model.Question
	err := db.
		Preload("Department").
		Preload("Course").
		Preload("Semester").
		Preload("ExamType").
		Preload("Submissions").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&questions).Error
	return questions, total, err
}

func (r *QuestionRepository) UpdateStatus(id uint, status model.QuestionStatus, reason string) error {
	return r.DB.Model(&model.Question{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "status_reason": reason}).Error
}

// DeleteWithSubmissions 显式删除Question及其全部Submission（级联仅发生在这里）
func (r *QuestionRepository) DeleteWithSubmissions(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.Submission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, id).Error
	})
}

// IsDuplicateKeyError 插入撞上唯一索引。并发创建同一槽位时这是预期结果，
// 调用方应当重查而不是报错。
func IsDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}
