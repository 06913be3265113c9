package controller

import (
	"errors"
	"quiz_portal_backend/internal/service"
	"quiz_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Service *service.QuizService
}

func NewQuizController(svc *service.QuizService) *QuizController {
	return &QuizController{Service: svc}
}

// @Summary Create a quiz category
// @Tags Quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body categoryRequest true "category"
// @Success 201 {object} util.Response
// @Router /api/admin/quiz-categories [post]
func (c *QuizController) CreateCategory(ctx *gin.Context) {
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

// @Summary List quiz categories
// @Tags Quiz
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/quiz-categories [get]
func (c *QuizController) ListCategories(ctx *gin.Context) {
	cats, err := c.Service.ListCategories()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, cats)
}

// @Summary Delete a quiz category
// @Tags Quiz
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "category id"
// @Success 200 {object} util.Response
// @Router /api/admin/quiz-categories/{id} [delete]
func (c *QuizController) DeleteCategory(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.Service.DeleteCategory(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Create a quiz
// @Tags Quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.QuizCreateRequest true "quiz"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /api/admin/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req service.QuizCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Service.CreateQuiz(req)
	if err != nil {
		if errors.Is(err, util.ErrNoTotalQuestions) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, quiz)
}

// @Summary List quizzes with window status
// @Tags Quiz
// @Produce json
// @Security ApiKeyAuth
// @Param categoryId query int false "filter by category"
// @Success 200 {object} util.Response
// @Router /api/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	categoryID := util.MustParseUint(ctx.Query("categoryId"))
	quizzes, err := c.Service.ListQuizzes(categoryID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quizzes)
}

// @Summary Get a quiz with derived status and question count
// @Tags Quiz
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	quiz, err := c.Service.GetQuiz(id)
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, quiz)
}

// @Summary Update a quiz
// @Tags Quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Param body body service.QuizUpdateRequest true "changes"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	var req service.QuizUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.Service.UpdateQuiz(id, req)
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, quiz)
}

// @Summary Delete a quiz
// @Tags Quiz
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.Service.DeleteQuiz(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Add a question group (sampling pool) to a quiz
// @Tags Quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Param body body service.GroupCreateRequest true "group"
// @Success 201 {object} util.Response
// @Router /api/admin/quizzes/{id}/groups [post]
func (c *QuizController) AddGroup(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))
	var req service.GroupCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	g, err := c.Service.AddGroup(quizID, req)
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, g)
}

// @Summary Remove a question group from a quiz
// @Tags Quiz
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Param groupId path int true "group id"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id}/groups/{groupId} [delete]
func (c *QuizController) RemoveGroup(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))
	groupID := util.MustParseUint(ctx.Param("groupId"))
	if err := c.Service.RemoveGroup(quizID, groupID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary Swap the display order of two question groups
// @Tags Quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Param body body service.SwapOrderRequest true "group link ids"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/quizzes/{id}/groups/swap [post]
func (c *QuizController) SwapGroups(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))
	var req service.SwapOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.SwapGroups(quizID, req); err != nil {
		if errors.Is(err, util.ErrGroupNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// @Summary Attach a question directly to a quiz
// @Tags Quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Param body body service.QuizQuestionRequest true "link"
// @Success 201 {object} util.Response
// @Router /api/admin/quizzes/{id}/questions [post]
func (c *QuizController) AddQuestion(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))
	var req service.QuizQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	qq, err := c.Service.AddQuizQuestion(quizID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, qq)
}

// @Summary Swap the display order of two quiz questions
// @Tags Quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Param body body service.SwapOrderRequest true "question link ids"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/admin/quizzes/{id}/questions/swap [post]
func (c *QuizController) SwapQuestions(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))
	var req service.SwapOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.SwapQuestions(quizID, req); err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// @Summary Detach a question from a quiz
// @Tags Quiz
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Param linkId path int true "quiz-question link id"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id}/questions/{linkId} [delete]
func (c *QuizController) RemoveQuestion(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))
	linkID := util.MustParseUint(ctx.Param("linkId"))
	if err := c.Service.RemoveQuizQuestion(quizID, linkID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type allowedUserRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

// @Summary Allow a user on a private quiz
// @Tags Quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Param body body allowedUserRequest true "user"
// @Success 201 {object} util.Response
// @Router /api/admin/quizzes/{id}/allowed-users [post]
func (c *QuizController) AddAllowedUser(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))
	var req allowedUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.AddAllowedUser(quizID, req.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, nil)
}

// @Summary Revoke a user's access to a private quiz
// @Tags Quiz
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Param userId path int true "user id"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id}/allowed-users/{userId} [delete]
func (c *QuizController) RemoveAllowedUser(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))
	userID := util.MustParseUint(ctx.Param("userId"))
	if err := c.Service.RemoveAllowedUser(quizID, userID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type allowedGradeRequest struct {
	GradeID uint `json:"gradeId" binding:"required"`
}

// @Summary Allow a grade on a private quiz
// @Tags Quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Param body body allowedGradeRequest true "grade"
// @Success 201 {object} util.Response
// @Router /api/admin/quizzes/{id}/allowed-grades [post]
func (c *QuizController) AddAllowedGrade(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))
	var req allowedGradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Service.AddAllowedGrade(quizID, req.GradeID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, nil)
}

// @Summary Revoke a grade's access to a private quiz
// @Tags Quiz
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Param gradeId path int true "grade id"
// @Success 200 {object} util.Response
// @Router /api/admin/quizzes/{id}/allowed-grades/{gradeId} [delete]
func (c *QuizController) RemoveAllowedGrade(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))
	gradeID := util.MustParseUint(ctx.Param("gradeId"))
	if err := c.Service.RemoveAllowedGrade(quizID, gradeID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
