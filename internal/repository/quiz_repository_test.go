package repository

import (
	"quiz_portal_backend/internal/model"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	return db, mock
}

// A metadata edit works on a quiz loaded with its links preloaded. Only the
// quizzes row may be written; re-saving the associations would duplicate
// link rows on every edit.
func TestQuizUpdateWritesQuizRowOnly(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuizRepository(db)

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	quiz := &model.Quiz{
		BaseModel: model.BaseModel{ID: 1},
		Title:     "renamed",
		StartTime: start,
		Duration:  60,
		EndTime:   start.Add(time.Hour),
		Access:    model.AccessPublic,
		Attempts:  1,
		QuestionGroups: []model.QuizQuestionGroup{
			{BaseModel: model.BaseModel{ID: 4}, QuizID: 1, GroupID: 9, TotalQuestions: 2},
		},
		QuizQuestions: []model.QuizQuestion{
			{BaseModel: model.BaseModel{ID: 7}, QuizID: 1, QuestionID: 10, OrderNumber: 1},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `quizzes`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(quiz))
	require.NoError(t, mock.ExpectationsWereMet())
}

func quizQuestionColumns() []string {
	return []string{"id", "quiz_id", "question_id", "order_number"}
}

func TestSwapQuizQuestionOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuizRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `quiz_questions`").
		WillReturnRows(sqlmock.NewRows(quizQuestionColumns()).AddRow(7, 1, 10, 1))
	mock.ExpectQuery("SELECT (.+) FROM `quiz_questions`").
		WillReturnRows(sqlmock.NewRows(quizQuestionColumns()).AddRow(8, 1, 11, 2))
	mock.ExpectExec("UPDATE `quiz_questions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `quiz_questions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SwapQuizQuestionOrder(1, 7, 8))
	require.NoError(t, mock.ExpectationsWereMet())
}

// A link id from another quiz must not be movable: the lookup is scoped to
// quiz_id, so the swap rolls back before any write.
func TestSwapGroupOrderForeignRowRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewQuizRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `quiz_question_groups`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quiz_id", "group_id", "total_questions", "order_number"}))
	mock.ExpectRollback()

	err := repo.SwapGroupOrder(1, 99, 100)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
