package service

import (
	"errors"
	"math/rand"
	"time"

	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/repository"
	"quiz_portal_backend/internal/util"
	"quiz_portal_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AttemptService struct {
	AttemptRepo *repository.AttemptRepository
	QuizRepo    *repository.QuizRepository
	DB          *gorm.DB
	Clock       Clock
	NewRand     func() *rand.Rand
}

func NewAttemptService(attemptRepo *repository.AttemptRepository, quizRepo *repository.QuizRepository, db *gorm.DB) *AttemptService {
	return &AttemptService{
		AttemptRepo: attemptRepo,
		QuizRepo:    quizRepo,
		DB:          db,
		Clock:       utcClock{},
		// fresh source per call: no shuffle state shared across requests
		NewRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// IsStartDenial reports whether err is a start-predicate or configuration
// denial. Denials are surfaced to the caller as-is; everything else during
// materialization is logged and collapsed into ErrAttemptStart.
func IsStartDenial(err error) bool {
	for _, d := range []error{
		util.ErrQuizNotFound,
		util.ErrQuizNotOpen,
		util.ErrActiveAttempt,
		util.ErrNoAttemptsLeft,
		util.ErrQuizAccessDenied,
		util.ErrPoolTooSmall,
		util.ErrNoTotalQuestions,
		util.ErrDuplicateQuestion,
	} {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}

// StartAttempt materializes a personalized attempt for the user: it rechecks
// eligibility under a row lock, snapshots the randomized question/option
// layout, and stamps the timing window, all inside one transaction. A
// failure anywhere rolls the whole thing back.
func (s *AttemptService) StartAttempt(userID, quizID uint) (*model.UserAttempt, error) {
	quiz, err := s.QuizRepo.FindForMaterialize(quizID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuizNotFound
		}
		return nil, s.startFailure(err, userID, quizID)
	}

	allowed := false
	if quiz.Access != model.AccessPublic {
		allowed, err = s.QuizRepo.IsUserAllowed(quizID, userID)
		if err != nil {
			return nil, s.startFailure(err, userID, quizID)
		}
	}

	// cheap pre-check before paying for the plan; authoritative recheck
	// happens under lock below
	attempts, err := s.AttemptRepo.ListByUserAndQuiz(userID, quizID)
	if err != nil {
		return nil, s.startFailure(err, userID, quizID)
	}
	if err := EvaluateEligibility(quiz, attempts, allowed, s.Clock.Now()); err != nil {
		return nil, err
	}

	plan, err := BuildQuestionPlan(quiz, s.NewRand())
	if err != nil {
		return nil, err
	}

	var attemptID uint
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		locked, err := s.AttemptRepo.ListByUserAndQuizLocked(tx, userID, quizID)
		if err != nil {
			return err
		}
		if err := EvaluateEligibility(quiz, locked, allowed, s.Clock.Now()); err != nil {
			return err
		}

		attempt := &model.UserAttempt{QuizID: quizID, UserID: userID}
		if err := s.AttemptRepo.Create(tx, attempt); err != nil {
			return err
		}

		instances := make([]model.QuizInstanceQuestion, len(plan))
		for i, p := range plan {
			instances[i] = model.QuizInstanceQuestion{
				UserAttemptID: attempt.ID,
				GroupID:       p.GroupID,
				QuestionID:    p.QuestionID,
				QuestionOrder: p.Order,
				Score:         p.Score,
			}
		}
		if err := s.AttemptRepo.CreateInstanceQuestions(tx, instances); err != nil {
			return err
		}

		instanceByQuestion := make(map[uint]uint, len(instances))
		for _, inst := range instances {
			instanceByQuestion[inst.QuestionID] = inst.ID
		}

		var options []model.QuizInstanceOption
		for _, p := range plan {
			for _, op := range p.Options {
				options = append(options, model.QuizInstanceOption{
					QuestionInstanceID: instanceByQuestion[p.QuestionID],
					OptionID:           op.OptionID,
					OptionOrder:        op.Order,
				})
			}
		}
		if err := s.AttemptRepo.CreateInstanceOptions(tx, options); err != nil {
			return err
		}

		started := s.Clock.Now()
		end := started.Add(time.Duration(quiz.Duration) * time.Minute)
		// an attempt never outlives the quiz window
		if end.After(quiz.EndTime) {
			end = quiz.EndTime
		}
		if err := s.AttemptRepo.StampTiming(tx, attempt.ID, started, end); err != nil {
			return err
		}

		attemptID = attempt.ID
		return nil
	})
	if err != nil {
		if IsStartDenial(err) {
			return nil, err
		}
		return nil, s.startFailure(err, userID, quizID)
	}

	return s.AttemptRepo.FindSnapshot(attemptID)
}

func (s *AttemptService) startFailure(err error, userID, quizID uint) error {
	logger.Log.Error("attempt materialization failed",
		zap.Error(err),
		zap.Uint("userId", userID),
		zap.Uint("quizId", quizID),
	)
	return util.ErrAttemptStart
}

// GetAttempt returns the materialized snapshot while the attempt is open:
// owned by the caller, not completed, now within [started_at, end_time].
func (s *AttemptService) GetAttempt(userID, attemptID uint) (*model.UserAttempt, error) {
	attempt, err := s.AttemptRepo.FindSnapshot(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrAttemptNotFound
	}
	if attempt.IsCompleted || !attempt.WindowContains(s.Clock.Now()) {
		return nil, util.ErrAttemptClosed
	}
	return attempt, nil
}

func (s *AttemptService) ListMyAttempts(userID uint) ([]model.UserAttempt, error) {
	return s.AttemptRepo.ListByUser(userID)
}

// SelectOption records the user's answer on one materialized question.
// Re-selecting moves the choice; the snapshot rows themselves never change.
func (s *AttemptService) SelectOption(userID, attemptID, instanceOptionID uint) error {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrAttemptNotFound
		}
		return err
	}
	if attempt.UserID != userID {
		return util.ErrAttemptNotFound
	}
	if attempt.IsCompleted || !attempt.WindowContains(s.Clock.Now()) {
		return util.ErrAttemptClosed
	}

	opt, err := s.AttemptRepo.FindInstanceOption(attemptID, instanceOptionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrAttemptNotFound
		}
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.AttemptRepo.SetSelected(tx, opt.QuestionInstanceID, opt.ID)
	})
}

// CompleteAttempt finalizes the attempt. Idempotent: completing an already
// completed attempt is a no-op and never moves completed_at.
func (s *AttemptService) CompleteAttempt(userID, attemptID uint) error {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrAttemptNotFound
		}
		return err
	}
	if attempt.UserID != userID {
		return util.ErrAttemptNotFound
	}
	if attempt.IsCompleted {
		return nil
	}
	return s.AttemptRepo.MarkCompleted(attemptID, s.Clock.Now())
}
