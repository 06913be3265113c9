package repository

import (
	"quiz_portal_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(tx *gorm.DB, attempt *model.UserAttempt) error {
	return tx.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.UserAttempt, error) {
	var a model.UserAttempt
	err := r.DB.First(&a, id).Error
	return &a, err
}

// FindSnapshot loads the full materialized attempt: questions in attempt
// order, each with its options in instance order.
func (r *AttemptRepository) FindSnapshot(id uint) (*model.UserAttempt, error) {
	var a model.UserAttempt
	err := r.DB.
		Preload("Quiz").
		Preload("InstanceQuestions", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_order")
		}).
		Preload("InstanceQuestions.Question").
		Preload("InstanceQuestions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("option_order")
		}).
		Preload("InstanceQuestions.Options.Option").
		First(&a, id).Error
	return &a, err
}

func (r *AttemptRepository) ListByUser(userID uint) ([]model.UserAttempt, error) {
	var attempts []model.UserAttempt
	err := r.DB.Preload("Quiz").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByUserAndQuiz(userID, quizID uint) ([]model.UserAttempt, error) {
	var attempts []model.UserAttempt
	err := r.DB.Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Find(&attempts).Error
	return attempts, err
}

// ListByUserAndQuizLocked takes row locks on the user's attempt rows for the
// quiz so the quota recheck and the insert happen under one critical section.
// Must run inside the caller's transaction.
func (r *AttemptRepository) ListByUserAndQuizLocked(tx *gorm.DB, userID, quizID uint) ([]model.UserAttempt, error) {
	var attempts []model.UserAttempt
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) CreateInstanceQuestions(tx *gorm.DB, questions []model.QuizInstanceQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	return tx.Create(&questions).Error
}

func (r *AttemptRepository) CreateInstanceOptions(tx *gorm.DB, options []model.QuizInstanceOption) error {
	if len(options) == 0 {
		return nil
	}
	return tx.Create(&options).Error
}

func (r *AttemptRepository) StampTiming(tx *gorm.DB, attemptID uint, startedAt, endTime time.Time) error {
	return tx.Model(&model.UserAttempt{}).
		Where("id = ?", attemptID).
		Updates(map[string]interface{}{
			"started_at": startedAt,
			"end_time":   endTime,
		}).Error
}

func (r *AttemptRepository) MarkCompleted(attemptID uint, completedAt time.Time) error {
	return r.DB.Model(&model.UserAttempt{}).
		Where("id = ? AND is_completed = ?", attemptID, false).
		Updates(map[string]interface{}{
			"is_completed": true,
			"completed_at": completedAt,
		}).Error
}

func (r *AttemptRepository) FindInstanceOption(attemptID, instanceOptionID uint) (*model.QuizInstanceOption, error) {
	var opt model.QuizInstanceOption
	err := r.DB.
		Joins("JOIN quiz_instance_questions ON quiz_instance_questions.id = quiz_instance_options.question_instance_id").
		Where("quiz_instance_options.id = ? AND quiz_instance_questions.user_attempt_id = ?", instanceOptionID, attemptID).
		First(&opt).Error
	return &opt, err
}

// SetSelected marks one option of a question instance as the chosen answer
// and clears any earlier choice on the same question.
func (r *AttemptRepository) SetSelected(tx *gorm.DB, questionInstanceID, instanceOptionID uint) error {
	if err := tx.Model(&model.QuizInstanceOption{}).
		Where("question_instance_id = ? AND id <> ?", questionInstanceID, instanceOptionID).
		Update("selected", false).Error; err != nil {
		return err
	}
	return tx.Model(&model.QuizInstanceOption{}).
		Where("id = ?", instanceOptionID).
		Update("selected", true).Error
}
