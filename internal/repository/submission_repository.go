package repository

import (
	"papershare_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(submission *model.Submission) error {
	return r.DB.Create(submission).Error
}

func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	var submission model.Submission
	err := r.DB.Preload("Uploader").First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// UpdateDerivativeKey 转换完成后登记公开版本的对象键。
// 只改derivative_key，原始对象键绝不改写。
func (r *SubmissionRepository) UpdateDerivativeKey(id uint, key string) error {
	return r.DB.Model(&model.Submission{}).Where("id = ?", id).
		Update("derivative_key", key).Error
}

func (r *SubmissionRepository) IncrementViewCount(id uint) error {
	return r.DB.Model(&model.Submission{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).
		Error
}

func (r *SubmissionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Submission{}, id).Error
}

func (r *SubmissionRepository) CountByQuestion(questionID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).Where("question_id = ?", questionID).Count(&count).Error
	return count, err
}
