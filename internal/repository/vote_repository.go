package repository

import (
	"papershare_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteRepository struct {
	DB *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{DB: db}
}

// Upsert 每个(submission, user)只有一行，改票就地更新。
// 单条INSERT带冲突子句，两个并发首投也不会把唯一索引冲突冒泡给请求。
func (r *VoteRepository) Upsert(submissionID, userID uint, value int) error {
	vote := model.Vote{
		SubmissionID: submissionID,
		UserID:       userID,
		Value:        value,
	}
	return r.DB.Clauses(voteUpsertClause()).Create(&vote).Error
}

// voteUpsertClause 撞上(submission_id, user_id)唯一索引时只改value
func voteUpsertClause() clause.OnConflict {
	return clause.OnConflict{
		Columns: []clause.Column{
			{Name: "submission_id"},
			{Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}
}

// ScoreForSubmission 带符号合计，派生值不落库
func (r *VoteRepository) ScoreForSubmission(submissionID uint) (int64, error) {
	var score int64
	err := r.DB.Model(&model.Vote{}).
		Where("submission_id = ?", submissionID).
		Select("COALESCE(SUM(value), 0)").
		Scan(&score).Error
	return score, err
}

func (r *VoteRepository) DeleteBySubmission(submissionID uint) error {
	return r.DB.Where("submission_id = ?", submissionID).Delete(&model.Vote{}).Error
}
