package model

// 分类维度：院系/课程/学期/考试类型。四个维度加上section构成试卷槽位的唯一标识。

// swagger:model Department
type Department struct {
	BaseModel
	Name string `gorm:"size:150;unique;not null" json:"name"`
	Code string `gorm:"size:20" json:"code"`
}

// swagger:model Course
type Course struct {
	BaseModel
	Name string `gorm:"size:150;unique;not null" json:"name"`
	Code string `gorm:"size:20" json:"code"`
}

// swagger:model Semester
type Semester struct {
	BaseModel
	Name string `gorm:"size:50;unique;not null" json:"name"`
}

// swagger:model ExamType
type ExamType struct {
	BaseModel
	Name string `gorm:"size:50;unique;not null" json:"name"`
}
