package repository

import (
	"papershare_backend/internal/model"

	"gorm.io/gorm"
)

// TaxonomyRepository 四个分类维度的只读访问。
// 维度本身的增删改属于普通后台CRUD，由管理端直接操作。
type TaxonomyRepository struct {
	DB *gorm.DB
}

func NewTaxonomyRepository(db *gorm.DB) *TaxonomyRepository {
	return &TaxonomyRepository{DB: db}
}

func (r *TaxonomyRepository) ListDepartments() ([]model.Department, error) {
	var items []model.Department
	err := r.DB.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *TaxonomyRepository) ListCourses() ([]model.Course, error) {
	var items []model.Course
	err := r.DB.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *TaxonomyRepository) ListSemesters() ([]model.Semester, error) {
	var items []model.Semester
	err := r.DB.Order("id ASC").Find(&items).Error
	return items, err
}

func (r *TaxonomyRepository) ListExamTypes() ([]model.ExamType, error) {
	var items []model.ExamType
	err := r.DB.Order("id ASC").Find(&items).Error
	return items, err
}

// ClassificationExists 校验四个维度ID是否都指向真实记录
func (r *TaxonomyRepository) ClassificationExists(departmentID, courseID, semesterID, examTypeID uint) (bool, error) {
	var count int64
	if err := r.DB.Model(&model.Department{}).Where("id = ?", departmentID).Count(&count).Error; err != nil || count == 0 {
		return false, err
	}
	if err := r.DB.Model(&model.Course{}).Where("id = ?", courseID).Count(&count).Error; err != nil || count == 0 {
		return false, err
	}
	if err := r.DB.Model(&model.Semester{}).Where("id = ?", semesterID).Count(&count).Error; err != nil || count == 0 {
		return false, err
	}
	if err := r.DB.Model(&model.ExamType{}).Where("id = ?", examTypeID).Count(&count).Error; err != nil || count == 0 {
		return false, err
	}
	return true, nil
}
