package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/repository"
	"quiz_portal_backend/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestionBankService struct {
	QuestionRepo *repository.QuestionRepository
	Storage      *StorageService
}

func NewQuestionBankService(questionRepo *repository.QuestionRepository, storage *StorageService) *QuestionBankService {
	return &QuestionBankService{
		QuestionRepo: questionRepo,
		Storage:      storage,
	}
}

func (s *QuestionBankService) CreateCategory(name string) (*model.QuestionCategory, error) {
	c := &model.QuestionCategory{Name: name}
	if err := s.QuestionRepo.CreateCategory(c); err != nil {
		return nil, err
	}
	return c, nil
}

// CategorySummary adds the pool size, which quiz groups care about when
// configuring how many questions to draw.
type CategorySummary struct {
	model.QuestionCategory
	TotalQuestions int64 `json:"totalQuestions"`
}

func (s *QuestionBankService) ListCategories() ([]CategorySummary, error) {
	cats, err := s.QuestionRepo.ListCategories()
	if err != nil {
		return nil, err
	}
	summaries := make([]CategorySummary, 0, len(cats))
	for _, c := range cats {
		count, err := s.QuestionRepo.CountByCategory(c.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, CategorySummary{QuestionCategory: c, TotalQuestions: count})
	}
	return summaries, nil
}

func (s *QuestionBankService) RenameCategory(id uint, name string) (*model.QuestionCategory, error) {
	c, err := s.QuestionRepo.FindCategoryByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCategoryNotFound
		}
		return nil, err
	}
	c.Name = name
	if err := s.QuestionRepo.UpdateCategory(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *QuestionBankService) DeleteCategory(id uint) error {
	return s.QuestionRepo.DeleteCategory(id)
}

type OptionRequest struct {
	BodyText    string `json:"bodyText"`
	BodyPhoto   string `json:"bodyPhoto"`
	OrderNumber uint   `json:"orderNumber" binding:"required,min=1"`
	IsCorrect   bool   `json:"isCorrect"`
}

type QuestionCreateRequest struct {
	CategoryID uint            `json:"categoryId" binding:"required"`
	BodyText   string          `json:"bodyText"`
	BodyPhoto  string          `json:"bodyPhoto"`
	Score      float64         `json:"score"`
	Options    []OptionRequest `json:"options" binding:"required"`
}

// validateOptions enforces the bank's structural invariant: at least two
// options, exactly one marked correct, order numbers positive and unique.
func validateOptions(options []OptionRequest) error {
	if len(options) < 2 {
		return util.ErrOptionValidation
	}
	correct := 0
	seenOrder := make(map[uint]bool, len(options))
	for _, o := range options {
		if o.IsCorrect {
			correct++
		}
		if o.OrderNumber < 1 || seenOrder[o.OrderNumber] {
			return util.ErrOptionValidation
		}
		seenOrder[o.OrderNumber] = true
	}
	if correct != 1 {
		return util.ErrOptionValidation
	}
	return nil
}

func (s *QuestionBankService) CreateQuestion(req QuestionCreateRequest) (*model.Question, error) {
	if err := validateOptions(req.Options); err != nil {
		return nil, err
	}
	if _, err := s.QuestionRepo.FindCategoryByID(req.CategoryID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCategoryNotFound
		}
		return nil, err
	}

	score := req.Score
	if score == 0 {
		score = 1
	}
	q := &model.Question{
		CategoryID: req.CategoryID,
		BodyText:   req.BodyText,
		BodyPhoto:  req.BodyPhoto,
		Score:      score,
	}
	for _, o := range req.Options {
		q.Options = append(q.Options, model.QuestionOption{
			BodyText:    o.BodyText,
			BodyPhoto:   o.BodyPhoto,
			OrderNumber: o.OrderNumber,
			IsCorrect:   o.IsCorrect,
		})
	}
	if err := s.QuestionRepo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionBankService) GetQuestion(id uint) (*model.Question, error) {
	q, err := s.QuestionRepo.FindQuestionByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *QuestionBankService) ListQuestions(categoryID uint) ([]model.Question, error) {
	return s.QuestionRepo.ListQuestions(categoryID)
}

type QuestionUpdateRequest struct {
	BodyText  string          `json:"bodyText"`
	BodyPhoto string          `json:"bodyPhoto"`
	Score     *float64        `json:"score"`
	Options   []OptionRequest `json:"options"`
}

// UpdateQuestion edits the master question. Materialized attempts keep
// their frozen copies: scores were copied at materialization and option
// rows are soft-deleted, so existing snapshots still resolve.
func (s *QuestionBankService) UpdateQuestion(id uint, req QuestionUpdateRequest) (*model.Question, error) {
	q, err := s.QuestionRepo.FindQuestionByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	if req.BodyText != "" {
		q.BodyText = req.BodyText
	}
	if req.BodyPhoto != "" {
		q.BodyPhoto = req.BodyPhoto
	}
	if req.Score != nil {
		q.Score = *req.Score
	}

	if len(req.Options) > 0 {
		if err := validateOptions(req.Options); err != nil {
			return nil, err
		}
		options := make([]model.QuestionOption, 0, len(req.Options))
		for _, o := range req.Options {
			options = append(options, model.QuestionOption{
				BodyText:    o.BodyText,
				BodyPhoto:   o.BodyPhoto,
				OrderNumber: o.OrderNumber,
				IsCorrect:   o.IsCorrect,
			})
		}
		if err := s.QuestionRepo.ReplaceOptions(q.ID, options); err != nil {
			return nil, err
		}
		q.Options = options
	}

	update := *q
	update.Options = nil
	if err := s.QuestionRepo.UpdateQuestion(&update); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *QuestionBankService) DeleteQuestion(id uint) error {
	return s.QuestionRepo.DeleteQuestion(id)
}

// UploadImage stores a question or option image and returns its URL.
func (s *QuestionBankService) UploadImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range util.AllowedImageExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = util.MimeOctetStream
	}

	filename := "questions/" + uuid.New().String() + ext
	return s.Storage.Upload(ctx, filename, src, file.Size, contentType)
}
