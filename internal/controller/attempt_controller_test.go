package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"quiz_portal_backend/internal/config"
	"quiz_portal_backend/internal/repository"
	"quiz_portal_backend/internal/service"
	"quiz_portal_backend/internal/util"
	"quiz_portal_backend/pkg/logger"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

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

func newAttemptController(db *gorm.DB, now time.Time) *AttemptController {
	if logger.Log == nil {
		logger.Log = zap.NewNop()
	}
	quizRepo := repository.NewQuizRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	quizzes := service.NewQuizService(quizRepo, attemptRepo, nil, &config.Config{})
	quizzes.Clock = fixedClock{now: now}
	attempts := service.NewAttemptService(attemptRepo, quizRepo, db)
	attempts.Clock = fixedClock{now: now}
	return NewAttemptController(attempts, quizzes)
}

func canStartRequest(t *testing.T, userID uint, quizID string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/api/quizzes/"+quizID+"/can-start", nil)
	ctx.Params = gin.Params{{Key: "id", Value: quizID}}
	ctx.Set("user", &util.Claims{UserID: userID})
	return ctx, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) util.Response {
	t.Helper()
	var resp util.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func canStartQuizColumns() []string {
	return []string{
		"id", "title", "description", "category_id", "start_time", "duration",
		"end_time", "access", "grouped_questions", "has_random_questions",
		"has_random_options", "attempts", "total_questions",
	}
}

func expectQuizLoad(mock sqlmock.Sqlmock, start, end time.Time) {
	mock.ExpectQuery("SELECT (.+) FROM `quizzes`").
		WillReturnRows(sqlmock.NewRows(canStartQuizColumns()).
			AddRow(1, "quiz", "", nil, start, 60, end, "public", false, false, false, 1, 0))
	mock.ExpectQuery("SELECT (.+) FROM `quiz_question_groups`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quiz_id"}))
	mock.ExpectQuery("SELECT (.+) FROM `quiz_questions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quiz_id"}))
}

// A failed start predicate is an answer, not a server fault: the endpoint
// must report canStart=false with HTTP 200 instead of an internal error.
func TestCanStartClosedQuizAnswersFalse(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := newAttemptController(db, now)

	expectQuizLoad(mock, now.Add(-3*time.Hour), now.Add(-2*time.Hour))
	mock.ExpectQuery("SELECT (.+) FROM `user_attempts`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quiz_id", "user_id", "started_at", "end_time", "is_completed", "completed_at"}))

	ctx, w := canStartRequest(t, 5, "1")
	c.CanStart(ctx)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, data["canStart"])
	assert.Equal(t, util.ErrQuizNotOpen.Error(), data["reason"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCanStartOpenQuizAnswersTrue(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := newAttemptController(db, now)

	expectQuizLoad(mock, now.Add(-30*time.Minute), now.Add(time.Hour))
	mock.ExpectQuery("SELECT (.+) FROM `user_attempts`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quiz_id", "user_id", "started_at", "end_time", "is_completed", "completed_at"}))

	ctx, w := canStartRequest(t, 5, "1")
	c.CanStart(ctx)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["canStart"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCanStartQuizMissing(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := newAttemptController(db, now)

	mock.ExpectQuery("SELECT (.+) FROM `quizzes`").
		WillReturnRows(sqlmock.NewRows(canStartQuizColumns()))

	ctx, w := canStartRequest(t, 5, "42")
	c.CanStart(ctx)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
