package model

// Vote 一个用户对一份Submission的投票，值为 +1 或 -1。
// (submission_id, user_id) 唯一，改票就地更新而不是插入第二行。
// swagger:model Vote
type Vote struct {
	BaseModel
	SubmissionID uint `gorm:"not null;uniqueIndex:idx_vote_once" json:"submissionId"`
	UserID       uint `gorm:"not null;uniqueIndex:idx_vote_once" json:"userId"`
	Value        int  `gorm:"not null" json:"value"`
}

func (Vote) TableName() string {
	return "votes"
}
