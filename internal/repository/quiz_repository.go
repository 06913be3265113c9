package repository

import (
	"quiz_portal_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) CreateCategory(c *model.QuizCategory) error {
	return r.DB.Create(c).Error
}

func (r *QuizRepository) ListCategories() ([]model.QuizCategory, error) {
	var cats []model.QuizCategory
	err := r.DB.Order("id").Find(&cats).Error
	return cats, err
}

func (r *QuizRepository) DeleteCategory(id uint) error {
	return r.DB.Delete(&model.QuizCategory{}, id).Error
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

// Update persists the quiz row only. The quiz may arrive with associations
// preloaded; saving those here would re-insert link rows on every metadata
// edit.
func (r *QuizRepository) Update(quiz *model.Quiz) error {
	return r.DB.Omit(clause.Associations).Save(quiz).Error
}

func (r *QuizRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Quiz{}, id).Error
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Preload("QuestionGroups", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_number")
	}).Preload("QuizQuestions", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_number")
	}).First(&quiz, id).Error
	return &quiz, err
}

// FindForMaterialize loads everything the attempt builder needs in one shot:
// groups ordered by order_number with their full pools, and direct quiz
// questions ordered by order_number, all with options in stored order.
func (r *QuizRepository) FindForMaterialize(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.
		Preload("QuestionGroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_number")
		}).
		Preload("QuestionGroups.Group.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("QuestionGroups.Group.Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_number")
		}).
		Preload("QuizQuestions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_number")
		}).
		Preload("QuizQuestions.Question.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_number")
		}).
		First(&quiz, id).Error
	return &quiz, err
}

func (r *QuizRepository) List(categoryID uint) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	query := r.DB.Order("start_time DESC")
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	err := query.Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) CreateGroup(g *model.QuizQuestionGroup) error {
	return r.DB.Create(g).Error
}

func (r *QuizRepository) DeleteGroup(id uint) error {
	return r.DB.Delete(&model.QuizQuestionGroup{}, id).Error
}

// SwapGroupOrder exchanges the order_number of two groups on the quiz, both
// rows scoped to quiz_id so a link from another quiz cannot be moved.
func (r *QuizRepository) SwapGroupOrder(quizID, firstID, secondID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var a, b model.QuizQuestionGroup
		if err := tx.Where("quiz_id = ?", quizID).First(&a, firstID).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quizID).First(&b, secondID).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.QuizQuestionGroup{}).Where("id = ?", a.ID).
			Update("order_number", b.OrderNumber).Error; err != nil {
			return err
		}
		return tx.Model(&model.QuizQuestionGroup{}).Where("id = ?", b.ID).
			Update("order_number", a.OrderNumber).Error
	})
}

func (r *QuizRepository) CreateQuizQuestion(qq *model.QuizQuestion) error {
	return r.DB.Create(qq).Error
}

func (r *QuizRepository) DeleteQuizQuestion(id uint) error {
	return r.DB.Delete(&model.QuizQuestion{}, id).Error
}

// SwapQuizQuestionOrder exchanges the order_number of two question links on
// the quiz.
func (r *QuizRepository) SwapQuizQuestionOrder(quizID, firstID, secondID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var a, b model.QuizQuestion
		if err := tx.Where("quiz_id = ?", quizID).First(&a, firstID).Error; err != nil {
			return err
		}
		if err := tx.Where("quiz_id = ?", quizID).First(&b, secondID).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.QuizQuestion{}).Where("id = ?", a.ID).
			Update("order_number", b.OrderNumber).Error; err != nil {
			return err
		}
		return tx.Model(&model.QuizQuestion{}).Where("id = ?", b.ID).
			Update("order_number", a.OrderNumber).Error
	})
}

func (r *QuizRepository) AddAllowedUser(quizID, userID uint) error {
	return r.DB.Create(&model.AllowedUser{QuizID: quizID, UserID: userID}).Error
}

func (r *QuizRepository) RemoveAllowedUser(quizID, userID uint) error {
	return r.DB.Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Delete(&model.AllowedUser{}).Error
}

func (r *QuizRepository) AddAllowedGrade(quizID, gradeID uint) error {
	return r.DB.Create(&model.AllowedGrade{QuizID: quizID, GradeID: gradeID}).Error
}

func (r *QuizRepository) RemoveAllowedGrade(quizID, gradeID uint) error {
	return r.DB.Where("quiz_id = ? AND grade_id = ?", quizID, gradeID).
		Delete(&model.AllowedGrade{}).Error
}

// IsUserAllowed reports whether the user may take a private quiz, either by
// direct allowance or through their grade.
func (r *QuizRepository) IsUserAllowed(quizID, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.AllowedUser{}).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Count(&count).Error
	if err != nil || count > 0 {
		return count > 0, err
	}

	err = r.DB.Model(&model.AllowedGrade{}).
		Joins("JOIN users ON users.grade_id = allowed_grades.grade_id").
		Where("allowed_grades.quiz_id = ? AND users.id = ?", quizID, userID).
		Count(&count).Error
	return count > 0, err
}
