package controller

import (
	"errors"
	"quiz_portal_backend/internal/service"
	"quiz_portal_backend/internal/util"
	"quiz_portal_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Attempts *service.AttemptService
	Quizzes  *service.QuizService
}

func NewAttemptController(attempts *service.AttemptService, quizzes *service.QuizService) *AttemptController {
	return &AttemptController{Attempts: attempts, Quizzes: quizzes}
}

// @Summary Check whether the caller may start an attempt
// @Tags Attempt
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/can-start [get]
func (c *AttemptController) CanStart(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID := util.MustParseUint(ctx.Param("id"))
	allowed, err := c.Quizzes.CanStart(claims.UserID, quizID)
	switch {
	case err == nil:
		util.Success(ctx, gin.H{"canStart": allowed})
	case errors.Is(err, util.ErrQuizNotFound):
		util.NotFound(ctx)
	case service.IsStartDenial(err):
		// a failed predicate is a valid answer, not a server fault
		util.Success(ctx, gin.H{"canStart": false, "reason": err.Error()})
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary Start a quiz attempt
// @Description Materializes a per-user snapshot of the quiz and opens the attempt window.
// @Tags Attempt
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "quiz id"
// @Success 201 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/quizzes/{id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID := util.MustParseUint(ctx.Param("id"))
	attempt, err := c.Attempts.StartAttempt(claims.UserID, quizID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			monitoring.AttemptStarts.WithLabelValues("denied").Inc()
			util.NotFound(ctx)
		case errors.Is(err, util.ErrQuizAccessDenied):
			monitoring.AttemptStarts.WithLabelValues("denied").Inc()
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrQuizNotOpen),
			errors.Is(err, util.ErrActiveAttempt),
			errors.Is(err, util.ErrNoAttemptsLeft):
			monitoring.AttemptStarts.WithLabelValues("denied").Inc()
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrPoolTooSmall),
			errors.Is(err, util.ErrNoTotalQuestions),
			errors.Is(err, util.ErrDuplicateQuestion):
			monitoring.AttemptStarts.WithLabelValues("error").Inc()
			util.BadRequest(ctx, err.Error())
		default:
			monitoring.AttemptStarts.WithLabelValues("error").Inc()
			util.LogInternalError(ctx, err)
		}
		return
	}
	monitoring.AttemptStarts.WithLabelValues("started").Inc()
	util.Created(ctx, attempt)
}

// @Summary Get an attempt snapshot
// @Tags Attempt
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := util.MustParseUint(ctx.Param("id"))
	attempt, err := c.Attempts.GetAttempt(claims.UserID, attemptID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAttemptClosed):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, attempt)
}

// @Summary List the caller's attempts
// @Tags Attempt
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/attempts [get]
func (c *AttemptController) ListMyAttempts(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attempts, err := c.Attempts.ListMyAttempts(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempts)
}

type selectOptionRequest struct {
	InstanceOptionID uint `json:"instanceOptionId" binding:"required"`
}

// @Summary Select an answer option on an open attempt
// @Tags Attempt
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "attempt id"
// @Param body body selectOptionRequest true "selection"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/answer [post]
func (c *AttemptController) SelectOption(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := util.MustParseUint(ctx.Param("id"))
	var req selectOptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.Attempts.SelectOption(claims.UserID, attemptID, req.InstanceOptionID); err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAttemptClosed):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// @Summary Complete an attempt
// @Description Idempotent: completing an already completed attempt succeeds without changes.
// @Tags Attempt
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/complete [post]
func (c *AttemptController) CompleteAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptID := util.MustParseUint(ctx.Param("id"))
	if err := c.Attempts.CompleteAttempt(claims.UserID, attemptID); err != nil {
		if errors.Is(err, util.ErrAttemptNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
