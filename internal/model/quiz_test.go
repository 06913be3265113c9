package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizBeforeCreateDerivesEndTime(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("derived from start plus duration when absent", func(t *testing.T) {
		quiz := Quiz{StartTime: start, Duration: 90}
		require.NoError(t, quiz.BeforeCreate(nil))
		assert.Equal(t, start.Add(90*time.Minute), quiz.EndTime)
	})

	t.Run("explicit end time wins", func(t *testing.T) {
		end := start.Add(6 * time.Hour)
		quiz := Quiz{StartTime: start, Duration: 90, EndTime: end}
		require.NoError(t, quiz.BeforeCreate(nil))
		assert.Equal(t, end, quiz.EndTime)
	})
}

func TestQuizQuestionCount(t *testing.T) {
	t.Run("grouped sums the draw counts", func(t *testing.T) {
		quiz := Quiz{
			GroupedQuestions: true,
			QuestionGroups: []QuizQuestionGroup{
				{TotalQuestions: 3},
				{TotalQuestions: 2},
			},
		}
		assert.Equal(t, uint(5), quiz.QuestionCount())
	})

	t.Run("flat random uses total questions", func(t *testing.T) {
		quiz := Quiz{HasRandomQuestions: true, TotalQuestions: 4}
		assert.Equal(t, uint(4), quiz.QuestionCount())
	})

	t.Run("flat fixed counts the links", func(t *testing.T) {
		quiz := Quiz{QuizQuestions: []QuizQuestion{{}, {}, {}}}
		assert.Equal(t, uint(3), quiz.QuestionCount())
	})
}
