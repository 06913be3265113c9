package model

import "time"

// UserAttempt rows are immutable once materialized, except for the
// completion fields; selected flags live on the option instances.
// swagger:model UserAttempt
type UserAttempt struct {
	BaseModel

	QuizID      uint       `gorm:"index;type:bigint unsigned;not null" json:"quizId"`
	UserID      uint       `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"` // min(started+duration, quiz end)
	IsCompleted bool       `gorm:"default:false" json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	Quiz              Quiz                   `gorm:"foreignKey:QuizID" json:"quiz,omitempty"`
	InstanceQuestions []QuizInstanceQuestion `gorm:"foreignKey:UserAttemptID;constraint:OnDelete:CASCADE" json:"instanceQuestions,omitempty"`
}

func (UserAttempt) TableName() string {
	return "user_attempts"
}

// WindowContains reports whether the attempt is still open for viewing and
// answering. Expiry is a derived fact, never persisted.
func (a *UserAttempt) WindowContains(now time.Time) bool {
	if a.StartedAt == nil || a.EndTime == nil {
		return false
	}
	return !now.Before(*a.StartedAt) && !now.After(*a.EndTime)
}

// swagger:model QuizInstanceQuestion
type QuizInstanceQuestion struct {
	BaseModel

	UserAttemptID uint    `gorm:"uniqueIndex:uniq_attempt_question;type:bigint unsigned;not null" json:"userAttemptId"`
	GroupID       *uint   `gorm:"index;type:bigint unsigned" json:"groupId,omitempty"`
	QuestionID    uint    `gorm:"uniqueIndex:uniq_attempt_question;type:bigint unsigned;not null" json:"questionId"`
	QuestionOrder int     `gorm:"not null" json:"questionOrder"` // 0-based position shown to the user
	Score         float64 `gorm:"default:1" json:"score"`        // weight frozen at materialization

	Question Question             `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
	Options  []QuizInstanceOption `gorm:"foreignKey:QuestionInstanceID;constraint:OnDelete:CASCADE" json:"options,omitempty"`
}

func (QuizInstanceQuestion) TableName() string {
	return "quiz_instance_questions"
}

// swagger:model QuizInstanceOption
type QuizInstanceOption struct {
	BaseModel

	QuestionInstanceID uint `gorm:"uniqueIndex:uniq_instance_option;type:bigint unsigned;not null" json:"questionInstanceId"`
	OptionID           uint `gorm:"uniqueIndex:uniq_instance_option;type:bigint unsigned;not null" json:"optionId"`
	OptionOrder        int  `gorm:"not null" json:"optionOrder"`
	Selected           bool `gorm:"default:false" json:"selected"`

	Option QuestionOption `gorm:"foreignKey:OptionID" json:"option,omitempty"`
}

func (QuizInstanceOption) TableName() string {
	return "quiz_instance_options"
}
