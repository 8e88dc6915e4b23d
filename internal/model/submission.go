package model

// Submission 一份上传的试卷PDF，归属一个Question和一个上传用户。
// OriginalKey 指向对象存储中的原始PDF，转换管线绝不改写它；
// DerivativeKey 指向加水印（必要时压缩）的公开版本，转换未完成或失败时为空。
// swagger:model Submission
type Submission struct {
	BaseModel
	QuestionID    uint   `gorm:"not null;index" json:"questionId"`
	UploaderID    uint   `gorm:"not null;index" json:"uploaderId"`
	OriginalKey   string `gorm:"size:255;not null" json:"-"`
	DerivativeKey string `gorm:"size:255" json:"-"`
	OriginalSize  int64  `gorm:"not null" json:"originalSize"`
	ViewCount     int64  `gorm:"default:0" json:"viewCount"`

	Question *Question `gorm:"foreignKey:QuestionID" json:"-"`
	Uploader *User     `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`

	// 票数合计，读取时由Vote聚合得出，不落库
	Score int64 `gorm:"-" json:"score"`
}

func (Submission) TableName() string {
	return "submissions"
}
