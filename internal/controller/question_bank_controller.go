package controller

import (
	"errors"
	"quiz_portal_backend/internal/service"
	"quiz_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionBankController struct {
	Service *service.QuestionBankService
}

func NewQuestionBankController(svc *service.QuestionBankService) *QuestionBankController {
	return &QuestionBankController{Service: svc}
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// @Summary Create a question category
// @Tags QuestionBank
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body categoryRequest true "category"
// @Success 201 {object} util.Response
// @Router /api/admin/question-categories [post]
func (c *QuestionBankController) CreateCategory(ctx *gin.Context) {
	var req categoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cat, err := c.Service.CreateCategory(req.Name)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, cat)
}

// @Summary List question categories with pool sizes
// @Tags QuestionBank
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/admin/question-categories [get]
func (c *QuestionBankController) ListCategories(ctx *gin.Context) {
	cats, err := c.Service.ListCategories()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, cats)
}

// @Summary Rename a question category
// @Tags QuestionBank
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "category id"
// @Param body body categoryRequest true "category"
// @Success 200 {object} util.Response
// @Router /api/admin/question-categories/{id} [put]
func (c *QuestionBankController) RenameCategory(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	var req categoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	cat, err := c.Service.RenameCategory(id, req.Name)
	if err != nil {
		if errors.Is(err, util.ErrCategoryNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, cat)
}

// @Summary Delete a question category and its questions
// @Tags QuestionBank
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "category id"
// @Success 200 {object} util.Response
// @Router /api/admin/question-categories/{id} [delete]
func (c *QuestionBankController) DeleteCategory(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.Service.DeleteCategory(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Create a question with its options
// @Tags QuestionBank
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuestionCreateRequest true "question"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/admin/questions [post]
func (c *QuestionBankController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.CreateQuestion(req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrOptionValidation):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrCategoryNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, q)
}

// @Summary List questions
// @Tags QuestionBank
// @Produce json
// @Security ApiKeyAuth
// @Param categoryId query int false "filter by category"
// @Success 200 {object} util.Response
// @Router /api/admin/questions [get]
func (c *QuestionBankController) ListQuestions(ctx *gin.Context) {
	categoryID := util.MustParseUint(ctx.Query("categoryId"))
	questions, err := c.Service.ListQuestions(categoryID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// @Summary Get one question
// @Tags QuestionBank
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "question id"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [get]
func (c *QuestionBankController) GetQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	q, err := c.Service.GetQuestion(id)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, q)
}

// @Summary Update a question
// @Tags QuestionBank
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "question id"
// @Param body body service.QuestionUpdateRequest true "changes"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [put]
func (c *QuestionBankController) UpdateQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	var req service.QuestionUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.UpdateQuestion(id, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrOptionValidation):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, q)
}

// @Summary Delete a question
// @Tags QuestionBank
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "question id"
// @Success 200 {object} util.Response
// @Router /api/admin/questions/{id} [delete]
func (c *QuestionBankController) DeleteQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.Service.DeleteQuestion(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Upload a question or option image
// @Tags QuestionBank
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "image"
// @Success 201 {object} util.Response
// @Router /api/admin/questions/images [post]
func (c *QuestionBankController) UploadImage(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	url, err := c.Service.UploadImage(ctx.Request.Context(), file)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	util.Created(ctx, gin.H{"url": url})
}
