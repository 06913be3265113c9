package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quiz_portal_backend/internal/config"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/repository"
	"quiz_portal_backend/internal/util"
	"quiz_portal_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo    *repository.QuizRepository
	AttemptRepo *repository.AttemptRepository
	Redis       *redis.Client
	Clock       Clock

	cacheTTL time.Duration
}

func NewQuizService(quizRepo *repository.QuizRepository, attemptRepo *repository.AttemptRepository, rdb *redis.Client, cfg *config.Config) *QuizService {
	ttl := time.Duration(cfg.Cache.QuizTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &QuizService{
		QuizRepo:    quizRepo,
		AttemptRepo: attemptRepo,
		Redis:       rdb,
		Clock:       utcClock{},
		cacheTTL:    ttl,
	}
}

// EvaluateEligibility applies the four start predicates over already-loaded
// state. Kept pure so the pre-check and the under-lock recheck inside the
// materialization transaction share one implementation.
func EvaluateEligibility(quiz *model.Quiz, attempts []model.UserAttempt, allowed bool, now time.Time) error {
	if quiz.StatusAt(now) != model.QuizOpen {
		return util.ErrQuizNotOpen
	}
	for i := range attempts {
		a := &attempts[i]
		if !a.IsCompleted && a.WindowContains(now) {
			return util.ErrActiveAttempt
		}
	}
	if uint(len(attempts)) >= quiz.Attempts {
		return util.ErrNoAttemptsLeft
	}
	if quiz.Access != model.AccessPublic && !allowed {
		return util.ErrQuizAccessDenied
	}
	return nil
}

// CanStart reports whether the user may start an attempt right now. The
// returned error names the failing predicate; it is a denial, not a fault.
func (s *QuizService) CanStart(userID, quizID uint) (bool, error) {
	quiz, err := s.QuizRepo.FindByID(quizID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, util.ErrQuizNotFound
		}
		return false, err
	}

	attempts, err := s.AttemptRepo.ListByUserAndQuiz(userID, quizID)
	if err != nil {
		return false, err
	}

	allowed := false
	if quiz.Access != model.AccessPublic {
		allowed, err = s.QuizRepo.IsUserAllowed(quizID, userID)
		if err != nil {
			return false, err
		}
	}

	if err := EvaluateEligibility(quiz, attempts, allowed, s.Clock.Now()); err != nil {
		return false, err
	}
	return true, nil
}

type QuizCreateRequest struct {
	Title              string     `json:"title" binding:"required"`
	Description        string     `json:"description"`
	CategoryID         *uint      `json:"categoryId"`
	StartTime          time.Time  `json:"startTime" binding:"required"`
	Duration           uint       `json:"duration" binding:"required,min=1"`
	EndTime            *time.Time `json:"endTime"`
	Access             string     `json:"access"`
	GroupedQuestions   bool       `json:"groupedQuestions"`
	HasRandomQuestions bool       `json:"hasRandomQuestions"`
	HasRandomOptions   bool       `json:"hasRandomOptions"`
	Attempts           uint       `json:"attempts"`
	TotalQuestions     uint       `json:"totalQuestions"`
}

func (s *QuizService) CreateQuiz(req QuizCreateRequest) (*model.Quiz, error) {
	access := model.QuizAccess(req.Access)
	if access == "" {
		access = model.AccessPublic
	}
	if !req.GroupedQuestions && req.HasRandomQuestions && req.TotalQuestions < 1 {
		return nil, util.ErrNoTotalQuestions
	}
	attempts := req.Attempts
	if attempts == 0 {
		attempts = 1
	}

	quiz := &model.Quiz{
		Title:              req.Title,
		Description:        req.Description,
		CategoryID:         req.CategoryID,
		StartTime:          req.StartTime.UTC(),
		Duration:           req.Duration,
		Access:             access,
		GroupedQuestions:   req.GroupedQuestions,
		HasRandomQuestions: req.HasRandomQuestions,
		HasRandomOptions:   req.HasRandomOptions,
		Attempts:           attempts,
		TotalQuestions:     req.TotalQuestions,
	}
	if req.EndTime != nil {
		quiz.EndTime = req.EndTime.UTC()
	}

	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// QuizDetail decorates a quiz with its derived window state and how many
// questions an attempt will contain.
type QuizDetail struct {
	model.Quiz
	Status        model.QuizStatus `json:"status"`
	QuestionCount uint             `json:"questionCount"`
}

func (s *QuizService) GetQuiz(id uint) (*QuizDetail, error) {
	quiz, err := s.getQuizCached(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return &QuizDetail{
		Quiz:          *quiz,
		Status:        quiz.StatusAt(s.Clock.Now()),
		QuestionCount: quiz.QuestionCount(),
	}, nil
}

func (s *QuizService) getQuizCached(id uint) (*model.Quiz, error) {
	ctx := context.Background()
	key := quizCacheKey(id)

	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, key).Bytes(); err == nil {
			var quiz model.Quiz
			if err := json.Unmarshal(raw, &quiz); err == nil {
				return &quiz, nil
			}
		}
	}

	quiz, err := s.QuizRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(quiz); err == nil {
			if err := s.Redis.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
				logger.Log.Warn("quiz cache write failed", zap.Error(err), zap.Uint("quizId", id))
			}
		}
	}
	return quiz, nil
}

func (s *QuizService) invalidateQuiz(id uint) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), quizCacheKey(id)).Err(); err != nil {
		logger.Log.Warn("quiz cache invalidation failed", zap.Error(err), zap.Uint("quizId", id))
	}
}

func quizCacheKey(id uint) string {
	return fmt.Sprintf("quiz:%d", id)
}

func (s *QuizService) ListQuizzes(categoryID uint) ([]QuizDetail, error) {
	quizzes, err := s.QuizRepo.List(categoryID)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	details := make([]QuizDetail, 0, len(quizzes))
	for _, q := range quizzes {
		details = append(details, QuizDetail{
			Quiz:   q,
			Status: q.StatusAt(now),
		})
	}
	return details, nil
}

type QuizUpdateRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	CategoryID     *uint      `json:"categoryId"`
	StartTime      *time.Time `json:"startTime"`
	Duration       *uint      `json:"duration"`
	EndTime        *time.Time `json:"endTime"`
	Access         *string    `json:"access"`
	Attempts       *uint      `json:"attempts"`
	TotalQuestions *uint      `json:"totalQuestions"`
}

// UpdateQuiz edits quiz metadata. EndTime is an independent override and is
// never re-derived here; pass endTime explicitly to move the closing time.
// Attempts already materialized are unaffected by any of this.
func (s *QuizService) UpdateQuiz(id uint, req QuizUpdateRequest) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}

	if req.Title != "" {
		quiz.Title = req.Title
	}
	if req.Description != "" {
		quiz.Description = req.Description
	}
	if req.CategoryID != nil {
		quiz.CategoryID = req.CategoryID
	}
	if req.StartTime != nil {
		quiz.StartTime = req.StartTime.UTC()
	}
	if req.Duration != nil {
		quiz.Duration = *req.Duration
	}
	if req.EndTime != nil {
		quiz.EndTime = req.EndTime.UTC()
	}
	if req.Access != nil {
		quiz.Access = model.QuizAccess(*req.Access)
	}
	if req.Attempts != nil {
		quiz.Attempts = *req.Attempts
	}
	if req.TotalQuestions != nil {
		quiz.TotalQuestions = *req.TotalQuestions
	}

	if err := s.QuizRepo.Update(quiz); err != nil {
		return nil, err
	}
	s.invalidateQuiz(id)
	return quiz, nil
}

func (s *QuizService) DeleteQuiz(id uint) error {
	if err := s.QuizRepo.Delete(id); err != nil {
		return err
	}
	s.invalidateQuiz(id)
	return nil
}

func (s *QuizService) CreateCategory(name string) (*model.QuizCategory, error) {
	c := &model.QuizCategory{Name: name}
	if err := s.QuizRepo.CreateCategory(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *QuizService) ListCategories() ([]model.QuizCategory, error) {
	return s.QuizRepo.ListCategories()
}

func (s *QuizService) DeleteCategory(id uint) error {
	return s.QuizRepo.DeleteCategory(id)
}

type GroupCreateRequest struct {
	Title           string  `json:"title" binding:"required"`
	GroupID         uint    `json:"groupId" binding:"required"`
	RandomQuestions bool    `json:"randomQuestions"`
	RandomOptions   bool    `json:"randomOptions"`
	TotalQuestions  uint    `json:"totalQuestions" binding:"required,min=1"`
	Point           float64 `json:"point"`
}

func (s *QuizService) AddGroup(quizID uint, req GroupCreateRequest) (*model.QuizQuestionGroup, error) {
	if _, err := s.QuizRepo.FindByID(quizID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	point := req.Point
	if point == 0 {
		point = 1
	}
	g := &model.QuizQuestionGroup{
		QuizID:          quizID,
		Title:           req.Title,
		GroupID:         req.GroupID,
		RandomQuestions: req.RandomQuestions,
		RandomOptions:   req.RandomOptions,
		TotalQuestions:  req.TotalQuestions,
		Point:           point,
	}
	if err := s.QuizRepo.CreateGroup(g); err != nil {
		return nil, err
	}
	s.invalidateQuiz(quizID)
	return g, nil
}

func (s *QuizService) RemoveGroup(quizID, groupID uint) error {
	if err := s.QuizRepo.DeleteGroup(groupID); err != nil {
		return err
	}
	s.invalidateQuiz(quizID)
	return nil
}

type SwapOrderRequest struct {
	FirstID  uint `json:"firstId" binding:"required"`
	SecondID uint `json:"secondId" binding:"required"`
}

// SwapGroups exchanges the positions of two question groups on the quiz.
func (s *QuizService) SwapGroups(quizID uint, req SwapOrderRequest) error {
	if err := s.QuizRepo.SwapGroupOrder(quizID, req.FirstID, req.SecondID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrGroupNotFound
		}
		return err
	}
	s.invalidateQuiz(quizID)
	return nil
}

type QuizQuestionRequest struct {
	QuestionID  uint     `json:"questionId" binding:"required"`
	OrderNumber uint     `json:"orderNumber" binding:"required,min=1"`
	Score       *float64 `json:"score"`
}

func (s *QuizService) AddQuizQuestion(quizID uint, req QuizQuestionRequest) (*model.QuizQuestion, error) {
	qq := &model.QuizQuestion{
		QuizID:      quizID,
		QuestionID:  req.QuestionID,
		OrderNumber: req.OrderNumber,
		Score:       req.Score,
	}
	if err := s.QuizRepo.CreateQuizQuestion(qq); err != nil {
		return nil, err
	}
	s.invalidateQuiz(quizID)
	return qq, nil
}

func (s *QuizService) RemoveQuizQuestion(quizID, quizQuestionID uint) error {
	if err := s.QuizRepo.DeleteQuizQuestion(quizQuestionID); err != nil {
		return err
	}
	s.invalidateQuiz(quizID)
	return nil
}

// SwapQuestions exchanges the positions of two question links on the quiz.
func (s *QuizService) SwapQuestions(quizID uint, req SwapOrderRequest) error {
	if err := s.QuizRepo.SwapQuizQuestionOrder(quizID, req.FirstID, req.SecondID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrQuestionNotFound
		}
		return err
	}
	s.invalidateQuiz(quizID)
	return nil
}

func (s *QuizService) AddAllowedUser(quizID, userID uint) error {
	return s.QuizRepo.AddAllowedUser(quizID, userID)
}

func (s *QuizService) RemoveAllowedUser(quizID, userID uint) error {
	return s.QuizRepo.RemoveAllowedUser(quizID, userID)
}

func (s *QuizService) AddAllowedGrade(quizID, gradeID uint) error {
	return s.QuizRepo.AddAllowedGrade(quizID, gradeID)
}

func (s *QuizService) RemoveAllowedGrade(quizID, gradeID uint) error {
	return s.QuizRepo.RemoveAllowedGrade(quizID, gradeID)
}
