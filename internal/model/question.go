package model

type QuestionStatus string

const (
	StatusPendingReview QuestionStatus = "pending_review"
	StatusPublished     QuestionStatus = "published"
	StatusRejected      QuestionStatus = "rejected"
)

// Question 一个规范化的试卷槽位。
// 唯一标识为 (department, course, semester, exam_type, section) 五元组。
// section 在入库前统一规范化为非NULL（空串表示无分组），使MySQL的联合唯一索引
// 对无分组槽位同样生效（唯一索引对NULL不判重）。
// swagger:model Question
type Question struct {
	BaseModel
	DepartmentID uint           `gorm:"not null;index;uniqueIndex:idx_question_slot" json:"departmentId"`
	CourseID     uint           `gorm:"not null;index;uniqueIndex:idx_question_slot" json:"courseId"`
	SemesterID   uint           `gorm:"not null;index;uniqueIndex:idx_question_slot" json:"semesterId"`
	ExamTypeID   uint           `gorm:"not null;index;uniqueIndex:idx_question_slot" json:"examTypeId"`
	Section      string         `gorm:"size:50;not null;default:'';uniqueIndex:idx_question_slot" json:"section"`
	Status       QuestionStatus `gorm:"type:enum('pending_review','published','rejected');default:'pending_review';index" json:"status"`
	StatusReason string         `gorm:"size:255" json:"statusReason,omitempty"`

	Department Department   `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Course     Course       `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Semester   Semester     `gorm:"foreignKey:SemesterID" json:"semester,omitempty"`
	ExamType   ExamType     `gorm:"foreignKey:ExamTypeID" json:"examType,omitempty"`
	Submissions []Submission `gorm:"foreignKey:QuestionID" json:"submissions,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// StatusLabel 状态到展示文案的映射，供管理端使用
func (q *Question) StatusLabel() string {
	switch q.Status {
	case StatusPublished:
		return "Published"
	case StatusRejected:
		return "Rejected"
	default:
		return "Pending Review"
	}
}
