package model

import (
	"time"

	"gorm.io/gorm"
)

type QuizAccess string

const (
	AccessPublic  QuizAccess = "public"
	AccessPrivate QuizAccess = "private"
)

type QuizStatus int

const (
	QuizNotStarted QuizStatus = -1
	QuizOpen       QuizStatus = 0
	QuizClosed     QuizStatus = 1
)

// swagger:model QuizCategory
type QuizCategory struct {
	BaseModel

	Name    string `gorm:"size:200;not null" json:"name"`
	Quizzes []Quiz `gorm:"foreignKey:CategoryID" json:"quizzes,omitempty"`
}

func (QuizCategory) TableName() string {
	return "quiz_categories"
}

// swagger:model Quiz
type Quiz struct {
	BaseModel

	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	CategoryID  *uint      `gorm:"index;type:bigint unsigned" json:"categoryId,omitempty"`
	StartTime   time.Time  `gorm:"not null" json:"startTime"`
	Duration    uint       `gorm:"not null" json:"duration"` // minutes
	EndTime     time.Time  `json:"endTime"`
	Access      QuizAccess `gorm:"size:10;default:'public'" json:"access"`

	GroupedQuestions   bool `gorm:"default:false" json:"groupedQuestions"`
	HasRandomQuestions bool `gorm:"default:false" json:"hasRandomQuestions"`
	HasRandomOptions   bool `gorm:"default:false" json:"hasRandomOptions"`

	Attempts       uint `gorm:"default:1" json:"attempts"` // max attempts per user
	TotalQuestions uint `json:"totalQuestions"`            // required when flat + random

	QuestionGroups []QuizQuestionGroup `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questionGroups,omitempty"`
	QuizQuestions  []QuizQuestion      `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"quizQuestions,omitempty"`
	AllowedUsers   []AllowedUser       `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"-"`
	AllowedGrades  []AllowedGrade      `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// EndTime is an independent override: it is derived from StartTime+Duration
// only when absent at creation and is never recomputed on later edits.
// Callers that change Duration must clear EndTime to get it re-derived.
func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.EndTime.IsZero() {
		q.EndTime = q.StartTime.Add(time.Duration(q.Duration) * time.Minute)
	}
	return nil
}

// StatusAt reports the quiz window state at the given instant.
func (q *Quiz) StatusAt(now time.Time) QuizStatus {
	switch {
	case now.Before(q.StartTime):
		return QuizNotStarted
	case !now.After(q.EndTime):
		return QuizOpen
	default:
		return QuizClosed
	}
}

// QuestionCount reports how many question instances an attempt on this quiz
// will contain. Relies on QuestionGroups / QuizQuestions being preloaded.
func (q *Quiz) QuestionCount() uint {
	if q.GroupedQuestions {
		var total uint
		for _, g := range q.QuestionGroups {
			total += g.TotalQuestions
		}
		return total
	}
	if q.HasRandomQuestions {
		return q.TotalQuestions
	}
	return uint(len(q.QuizQuestions))
}

// swagger:model AllowedGrade
type AllowedGrade struct {
	BaseModel

	QuizID  uint `gorm:"uniqueIndex:uniq_quiz_grade;type:bigint unsigned;not null" json:"quizId"`
	GradeID uint `gorm:"uniqueIndex:uniq_quiz_grade;type:bigint unsigned;not null" json:"gradeId"`
}

func (AllowedGrade) TableName() string {
	return "allowed_grades"
}

// swagger:model AllowedUser
type AllowedUser struct {
	BaseModel

	QuizID uint `gorm:"uniqueIndex:uniq_quiz_user;type:bigint unsigned;not null" json:"quizId"`
	UserID uint `gorm:"uniqueIndex:uniq_quiz_user;type:bigint unsigned;not null" json:"userId"`
}

func (AllowedUser) TableName() string {
	return "allowed_users"
}

// swagger:model QuizQuestionGroup
type QuizQuestionGroup struct {
	BaseModel

	QuizID          uint    `gorm:"index;type:bigint unsigned;not null" json:"quizId"`
	Title           string  `gorm:"size:255" json:"title"`
	GroupID         uint    `gorm:"index;type:bigint unsigned;not null" json:"groupId"` // sampling pool
	RandomQuestions bool    `gorm:"default:false" json:"randomQuestions"`
	RandomOptions   bool    `gorm:"default:false" json:"randomOptions"`
	TotalQuestions  uint    `gorm:"not null" json:"totalQuestions"` // how many to draw from the pool
	OrderNumber     uint    `gorm:"default:1" json:"orderNumber"`
	Point           float64 `gorm:"default:1" json:"point"` // score weight per question in this group

	Group QuestionCategory `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}

func (QuizQuestionGroup) TableName() string {
	return "quiz_question_groups"
}

// New groups append at the end of the quiz: order_number = max existing + 1.
func (g *QuizQuestionGroup) BeforeCreate(tx *gorm.DB) error {
	var highest QuizQuestionGroup
	err := tx.Where("quiz_id = ?", g.QuizID).Order("order_number DESC").First(&highest).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			g.OrderNumber = 1
			return nil
		}
		return err
	}
	g.OrderNumber = highest.OrderNumber + 1
	return nil
}

// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel

	QuizID      uint     `gorm:"uniqueIndex:uniq_quiz_question;type:bigint unsigned;not null" json:"quizId"`
	QuestionID  uint     `gorm:"uniqueIndex:uniq_quiz_question;type:bigint unsigned;not null" json:"questionId"`
	OrderNumber uint     `gorm:"not null" json:"orderNumber"`
	Score       *float64 `json:"score,omitempty"` // overrides the question's own weight

	Question Question `gorm:"foreignKey:QuestionID" json:"question,omitempty"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
