package repository

import (
	"quiz_portal_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) CreateCategory(c *model.QuestionCategory) error {
	return r.DB.Create(c).Error
}

func (r *QuestionRepository) FindCategoryByID(id uint) (*model.QuestionCategory, error) {
	var c model.QuestionCategory
	err := r.DB.First(&c, id).Error
	return &c, err
}

func (r *QuestionRepository) ListCategories() ([]model.QuestionCategory, error) {
	var cats []model.QuestionCategory
	err := r.DB.Order("id").Find(&cats).Error
	return cats, err
}

func (r *QuestionRepository) UpdateCategory(c *model.QuestionCategory) error {
	return r.DB.Save(c).Error
}

// DeleteCategory cascades to the category's questions and their options.
func (r *QuestionRepository) DeleteCategory(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var questionIDs []uint
		if err := tx.Model(&model.Question{}).Where("category_id = ?", id).Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.QuestionOption{}).Error; err != nil {
				return err
			}
			if err := tx.Where("category_id = ?", id).Delete(&model.Question{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.QuestionCategory{}, id).Error
	})
}

func (r *QuestionRepository) CountByCategory(categoryID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

func (r *QuestionRepository) CreateQuestion(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *QuestionRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_number")
	}).First(&q, id).Error
	return &q, err
}

func (r *QuestionRepository) ListQuestions(categoryID uint) ([]model.Question, error) {
	var questions []model.Question
	query := r.DB.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_number")
	})
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	err := query.Order("id").Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) UpdateQuestion(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *QuestionRepository) DeleteQuestion(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.QuestionOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, id).Error
	})
}

// ReplaceOptions swaps a question's option set in one transaction.
func (r *QuestionRepository) ReplaceOptions(questionID uint, options []model.QuestionOption) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", questionID).Delete(&model.QuestionOption{}).Error; err != nil {
			return err
		}
		for i := range options {
			options[i].QuestionID = questionID
		}
		return tx.Create(&options).Error
	})
}
