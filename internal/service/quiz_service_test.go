package service

import (
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openQuiz(maxAttempts uint) *model.Quiz {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &model.Quiz{
		BaseModel: model.BaseModel{ID: 1},
		Title:     "midterm",
		StartTime: start,
		Duration:  60,
		EndTime:   start.Add(2 * time.Hour),
		Access:    model.AccessPublic,
		Attempts:  maxAttempts,
	}
}

func attemptAt(started time.Time, minutes int, completed bool) model.UserAttempt {
	end := started.Add(time.Duration(minutes) * time.Minute)
	return model.UserAttempt{
		QuizID:      1,
		UserID:      5,
		StartedAt:   &started,
		EndTime:     &end,
		IsCompleted: completed,
	}
}

func TestEvaluateEligibility(t *testing.T) {
	quiz := openQuiz(2)
	inWindow := quiz.StartTime.Add(30 * time.Minute)

	t.Run("open public quiz with no history", func(t *testing.T) {
		require.NoError(t, EvaluateEligibility(quiz, nil, false, inWindow))
	})

	t.Run("before the window opens", func(t *testing.T) {
		before := quiz.StartTime.Add(-time.Minute)
		err := EvaluateEligibility(quiz, nil, false, before)
		require.ErrorIs(t, err, util.ErrQuizNotOpen)
	})

	t.Run("after the window closes", func(t *testing.T) {
		after := quiz.EndTime.Add(time.Second)
		err := EvaluateEligibility(quiz, nil, false, after)
		require.ErrorIs(t, err, util.ErrQuizNotOpen)
	})

	t.Run("window boundaries are inclusive", func(t *testing.T) {
		require.NoError(t, EvaluateEligibility(quiz, nil, false, quiz.StartTime))
		require.NoError(t, EvaluateEligibility(quiz, nil, false, quiz.EndTime))
	})

	t.Run("running attempt blocks a second start", func(t *testing.T) {
		attempts := []model.UserAttempt{attemptAt(inWindow.Add(-10*time.Minute), 60, false)}
		err := EvaluateEligibility(quiz, attempts, false, inWindow)
		require.ErrorIs(t, err, util.ErrActiveAttempt)
	})

	t.Run("expired incomplete attempt does not block", func(t *testing.T) {
		attempts := []model.UserAttempt{attemptAt(quiz.StartTime, 10, false)}
		require.NoError(t, EvaluateEligibility(quiz, attempts, false, inWindow))
	})

	t.Run("completed attempt does not block but still counts", func(t *testing.T) {
		attempts := []model.UserAttempt{attemptAt(quiz.StartTime, 60, true)}
		require.NoError(t, EvaluateEligibility(quiz, attempts, false, inWindow))

		attempts = append(attempts, attemptAt(quiz.StartTime, 10, true))
		err := EvaluateEligibility(quiz, attempts, false, inWindow)
		require.ErrorIs(t, err, util.ErrNoAttemptsLeft)
	})

	t.Run("attempt budget exhausted", func(t *testing.T) {
		one := openQuiz(1)
		attempts := []model.UserAttempt{attemptAt(one.StartTime, 10, true)}
		err := EvaluateEligibility(one, attempts, false, inWindow)
		require.ErrorIs(t, err, util.ErrNoAttemptsLeft)
	})

	t.Run("private quiz requires allowance", func(t *testing.T) {
		private := openQuiz(1)
		private.Access = model.AccessPrivate

		err := EvaluateEligibility(private, nil, false, inWindow)
		require.ErrorIs(t, err, util.ErrQuizAccessDenied)

		require.NoError(t, EvaluateEligibility(private, nil, true, inWindow))
	})

	t.Run("status check precedes access check", func(t *testing.T) {
		private := openQuiz(1)
		private.Access = model.AccessPrivate
		err := EvaluateEligibility(private, nil, false, private.EndTime.Add(time.Hour))
		require.ErrorIs(t, err, util.ErrQuizNotOpen)
	})
}

func TestQuizStatusAt(t *testing.T) {
	quiz := openQuiz(1)

	assert.Equal(t, model.QuizNotStarted, quiz.StatusAt(quiz.StartTime.Add(-time.Second)))
	assert.Equal(t, model.QuizOpen, quiz.StatusAt(quiz.StartTime))
	assert.Equal(t, model.QuizOpen, quiz.StatusAt(quiz.EndTime))
	assert.Equal(t, model.QuizClosed, quiz.StatusAt(quiz.EndTime.Add(time.Second)))
}
