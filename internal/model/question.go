package model

// swagger:model QuestionCategory
type QuestionCategory struct {
	BaseModel

	Name      string     `gorm:"size:200;not null" json:"name"`
	Questions []Question `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (QuestionCategory) TableName() string {
	return "question_categories"
}

// swagger:model Question
type Question struct {
	BaseModel

	CategoryID uint             `gorm:"index;type:bigint unsigned;not null" json:"categoryId"`
	BodyText   string           `gorm:"type:text" json:"bodyText"`
	BodyPhoto  string           `gorm:"size:512" json:"bodyPhoto,omitempty"` // stored object URL
	Score      float64          `gorm:"default:1" json:"score"`
	Options    []QuestionOption `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model QuestionOption
type QuestionOption struct {
	BaseModel

	QuestionID  uint   `gorm:"index;type:bigint unsigned;not null" json:"questionId"`
	BodyText    string `gorm:"type:text" json:"bodyText"`
	BodyPhoto   string `gorm:"size:512" json:"bodyPhoto,omitempty"`
	OrderNumber uint   `gorm:"not null" json:"orderNumber"` // 1-based display order within the question
	IsCorrect   bool   `gorm:"default:false" json:"-"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
