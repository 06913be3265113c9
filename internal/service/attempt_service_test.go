package service

import (
	"math/rand"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/repository"
	"quiz_portal_backend/internal/util"
	"quiz_portal_backend/pkg/logger"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
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

func newAttemptService(db *gorm.DB, now time.Time) *AttemptService {
	if logger.Log == nil {
		logger.Log = zap.NewNop()
	}
	svc := NewAttemptService(repository.NewAttemptRepository(db), repository.NewQuizRepository(db), db)
	svc.Clock = fixedClock{now: now}
	svc.NewRand = func() *rand.Rand { return rand.New(rand.NewSource(1)) }
	return svc
}

func quizColumns() []string {
	return []string{
		"id", "title", "description", "category_id", "start_time", "duration",
		"end_time", "access", "grouped_questions", "has_random_questions",
		"has_random_options", "attempts", "total_questions",
	}
}

func attemptColumns() []string {
	return []string{"id", "quiz_id", "user_id", "started_at", "end_time", "is_completed", "completed_at"}
}

// A denied start must leave the database untouched: the eligibility check
// fails before the materialization transaction ever opens.
func TestStartAttemptClosedQuizWritesNothing(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := newAttemptService(db, now)

	start := now.Add(-3 * time.Hour)
	end := now.Add(-2 * time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM `quizzes`").
		WillReturnRows(sqlmock.NewRows(quizColumns()).
			AddRow(1, "closed quiz", "", nil, start, 60, end, "public", false, false, false, 1, 0))
	mock.ExpectQuery("SELECT (.+) FROM `quiz_question_groups`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quiz_id"}))
	mock.ExpectQuery("SELECT (.+) FROM `quiz_questions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quiz_id"}))
	mock.ExpectQuery("SELECT (.+) FROM `user_attempts`").
		WillReturnRows(sqlmock.NewRows(attemptColumns()))

	_, err := svc.StartAttempt(5, 1)
	require.ErrorIs(t, err, util.ErrQuizNotOpen)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A misconfigured quiz fails while planning, which also happens before any
// row is written.
func TestStartAttemptPoolTooSmallWritesNothing(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	svc := newAttemptService(db, now)

	start := now.Add(-30 * time.Minute)
	end := now.Add(90 * time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM `quizzes`").
		WillReturnRows(sqlmock.NewRows(quizColumns()).
			AddRow(1, "misconfigured", "", nil, start, 60, end, "public", false, true, false, 1, 3))
	mock.ExpectQuery("SELECT (.+) FROM `quiz_question_groups`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quiz_id"}))
	mock.ExpectQuery("SELECT (.+) FROM `quiz_questions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quiz_id", "question_id", "order_number"}).
			AddRow(1, 1, 10, 0))
	mock.ExpectQuery("SELECT (.+) FROM `questions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "score"}).AddRow(10, 1))
	mock.ExpectQuery("SELECT (.+) FROM `question_options`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "question_id", "order_number"}).
			AddRow(101, 10, 1).AddRow(102, 10, 2))
	mock.ExpectQuery("SELECT (.+) FROM `user_attempts`").
		WillReturnRows(sqlmock.NewRows(attemptColumns()))

	_, err := svc.StartAttempt(5, 1)
	require.ErrorIs(t, err, util.ErrPoolTooSmall)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Two requests can both pass the pre-check before either inserts. The row
// lock inside the transaction must catch the loser: the recheck sees the
// quota already spent, and the transaction rolls back without an INSERT.
func TestStartAttemptLockedRecheckDeniesRacedQuota(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	svc := newAttemptService(db, now)

	start := now.Add(-30 * time.Minute)
	end := now.Add(90 * time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM `quizzes`").
		WillReturnRows(sqlmock.NewRows(quizColumns()).
			AddRow(1, "raced", "", nil, start, 60, end, "public", false, false, false, 1, 0))
	mock.ExpectQuery("SELECT (.+) FROM `quiz_question_groups`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quiz_id"}))
	mock.ExpectQuery("SELECT (.+) FROM `quiz_questions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "quiz_id", "question_id", "order_number"}).
			AddRow(1, 1, 10, 1))
	mock.ExpectQuery("SELECT (.+) FROM `questions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "score"}).AddRow(10, 1))
	mock.ExpectQuery("SELECT (.+) FROM `question_options`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "question_id", "order_number"}).
			AddRow(101, 10, 1).AddRow(102, 10, 2))

	// pre-check sees no attempts yet
	mock.ExpectQuery("SELECT (.+) FROM `user_attempts`").
		WillReturnRows(sqlmock.NewRows(attemptColumns()))

	// by the time the lock is held, a concurrent start has spent the quota
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `user_attempts`(.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(attemptColumns()).
			AddRow(7, 1, 5, start, end, true, now.Add(-5*time.Minute)))
	mock.ExpectRollback()

	_, err := svc.StartAttempt(5, 1)
	require.ErrorIs(t, err, util.ErrNoAttemptsLeft)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStartAttemptQuizMissing(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newAttemptService(db, time.Now().UTC())

	mock.ExpectQuery("SELECT (.+) FROM `quizzes`").
		WillReturnRows(sqlmock.NewRows(quizColumns()))

	_, err := svc.StartAttempt(5, 99)
	require.ErrorIs(t, err, util.ErrQuizNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteAttemptIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	svc := newAttemptService(db, now)

	completed := now.Add(-10 * time.Minute)
	started := now.Add(-40 * time.Minute)
	end := now.Add(20 * time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM `user_attempts`").
		WillReturnRows(sqlmock.NewRows(attemptColumns()).
			AddRow(3, 1, 5, started, end, true, completed))

	// no UPDATE expected: completing twice is a no-op
	require.NoError(t, svc.CompleteAttempt(5, 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteAttemptMarksOnce(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	svc := newAttemptService(db, now)

	started := now.Add(-40 * time.Minute)
	end := now.Add(20 * time.Minute)

	mock.ExpectQuery("SELECT (.+) FROM `user_attempts`").
		WillReturnRows(sqlmock.NewRows(attemptColumns()).
			AddRow(3, 1, 5, started, end, false, nil))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `user_attempts`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.CompleteAttempt(5, 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteAttemptOwnership(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newAttemptService(db, time.Now().UTC())

	mock.ExpectQuery("SELECT (.+) FROM `user_attempts`").
		WillReturnRows(sqlmock.NewRows(attemptColumns()).
			AddRow(3, 1, 99, nil, nil, false, nil))

	err := svc.CompleteAttempt(5, 3)
	require.ErrorIs(t, err, util.ErrAttemptNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAttemptClosedOutsideWindow(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := newAttemptService(db, now)

	started := now.Add(-2 * time.Hour)
	end := now.Add(-time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM `user_attempts`").
		WillReturnRows(sqlmock.NewRows(attemptColumns()).
			AddRow(3, 1, 5, started, end, false, nil))
	mock.ExpectQuery("SELECT (.+) FROM `quiz_instance_questions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_attempt_id"}))
	mock.ExpectQuery("SELECT (.+) FROM `quizzes`").
		WillReturnRows(sqlmock.NewRows(quizColumns()))

	_, err := svc.GetAttempt(5, 3)
	require.ErrorIs(t, err, util.ErrAttemptClosed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptWindowContains(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	started := now.Add(-30 * time.Minute)
	end := now.Add(30 * time.Minute)

	a := model.UserAttempt{StartedAt: &started, EndTime: &end}
	assert.True(t, a.WindowContains(now))
	assert.True(t, a.WindowContains(started))
	assert.True(t, a.WindowContains(end))
	assert.False(t, a.WindowContains(end.Add(time.Second)))
	assert.False(t, a.WindowContains(started.Add(-time.Second)))

	unstamped := model.UserAttempt{}
	assert.False(t, unstamped.WindowContains(now))
}

func TestIsStartDenial(t *testing.T) {
	for _, err := range []error{
		util.ErrQuizNotFound,
		util.ErrQuizNotOpen,
		util.ErrActiveAttempt,
		util.ErrNoAttemptsLeft,
		util.ErrQuizAccessDenied,
		util.ErrPoolTooSmall,
		util.ErrNoTotalQuestions,
		util.ErrDuplicateQuestion,
	} {
		assert.True(t, IsStartDenial(err), "%v should be a denial", err)
	}

	assert.False(t, IsStartDenial(gorm.ErrInvalidTransaction))
	assert.False(t, IsStartDenial(util.ErrAttemptStart))
}
