package util

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailRegistered = errors.New("email already registered")

	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrGroupNotFound    = errors.New("question group not found")

	// eligibility denials
	ErrQuizNotOpen      = errors.New("quiz is not open")
	ErrActiveAttempt    = errors.New("an attempt is already in progress")
	ErrNoAttemptsLeft   = errors.New("no attempts left")
	ErrQuizAccessDenied = errors.New("quiz access denied")

	// materialization configuration failures
	ErrPoolTooSmall      = errors.New("question pool smaller than requested sample")
	ErrNoTotalQuestions  = errors.New("total_questions must be at least 1 for a random quiz")
	ErrDuplicateQuestion = errors.New("question appears in more than one group pool")

	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAttemptClosed    = errors.New("attempt window is closed")
	ErrAttemptStart     = errors.New("could not start attempt")
	ErrOptionValidation = errors.New("exactly one option must be marked correct")
)
