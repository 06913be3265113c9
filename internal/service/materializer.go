package service

import (
	"fmt"
	"math/rand"
	"quiz_portal_backend/internal/model"
	"quiz_portal_backend/internal/util"
)

// QuestionPlan is one materialized question before persistence: which
// question, at which position, worth how much, with its options already
// ordered. Plans are computed fully in memory so a configuration failure
// writes nothing.
type QuestionPlan struct {
	QuestionID uint
	GroupID    *uint
	Order      int
	Score      float64
	Options    []OptionPlan
}

type OptionPlan struct {
	OptionID uint
	Order    int
}

// BuildQuestionPlan computes the personalized question/option layout for one
// attempt. It is a pure function of the loaded quiz definition and the given
// random source; persistence happens elsewhere. The quiz must be loaded via
// QuizRepository.FindForMaterialize so groups, pools and options are present.
//
// Grouped quizzes draw from each group's pool in group order; flat quizzes
// use the direct quiz-question links. Sampling and position shuffling are
// independent draws, so which questions appear and where they appear are
// uncorrelated.
func BuildQuestionPlan(quiz *model.Quiz, rng *rand.Rand) ([]QuestionPlan, error) {
	if quiz.GroupedQuestions {
		return buildGroupedPlan(quiz, rng)
	}
	return buildFlatPlan(quiz, rng)
}

func buildGroupedPlan(quiz *model.Quiz, rng *rand.Rand) ([]QuestionPlan, error) {
	var plans []QuestionPlan
	seen := make(map[uint]bool)

	for gi := range quiz.QuestionGroups {
		group := &quiz.QuestionGroups[gi]
		pool := group.Group.Questions

		var picked []model.Question
		var orders []int

		if group.RandomQuestions {
			k := int(group.TotalQuestions)
			if k < 1 {
				return nil, fmt.Errorf("%w: group %q", util.ErrNoTotalQuestions, group.Title)
			}
			if k > len(pool) {
				return nil, fmt.Errorf("%w: group %q wants %d of %d", util.ErrPoolTooSmall, group.Title, k, len(pool))
			}
			for _, idx := range rng.Perm(len(pool))[:k] {
				picked = append(picked, pool[idx])
			}
			orders = rng.Perm(k)
		} else {
			picked = pool
			// positions keep the pool's stored sequence, local to the group
			orders = make([]int, len(pool))
			for i := range orders {
				orders[i] = i
			}
		}

		groupID := group.ID
		for i, q := range picked {
			if seen[q.ID] {
				return nil, fmt.Errorf("%w: question %d", util.ErrDuplicateQuestion, q.ID)
			}
			seen[q.ID] = true
			plans = append(plans, QuestionPlan{
				QuestionID: q.ID,
				GroupID:    &groupID,
				Order:      orders[i],
				Score:      group.Point,
				Options:    buildOptionPlan(q.Options, group.RandomOptions, rng),
			})
		}
	}
	return plans, nil
}

func buildFlatPlan(quiz *model.Quiz, rng *rand.Rand) ([]QuestionPlan, error) {
	rows := quiz.QuizQuestions

	var picked []model.QuizQuestion
	var orders []int

	if quiz.HasRandomQuestions {
		k := int(quiz.TotalQuestions)
		if k < 1 {
			return nil, util.ErrNoTotalQuestions
		}
		if k > len(rows) {
			return nil, fmt.Errorf("%w: quiz wants %d of %d", util.ErrPoolTooSmall, k, len(rows))
		}
		for _, idx := range rng.Perm(len(rows))[:k] {
			picked = append(picked, rows[idx])
		}
		orders = rng.Perm(k)
	} else {
		picked = rows
		orders = make([]int, len(rows))
		for i, row := range rows {
			orders[i] = int(row.OrderNumber)
		}
	}

	plans := make([]QuestionPlan, 0, len(picked))
	for i, row := range picked {
		score := row.Question.Score
		if row.Score != nil {
			score = *row.Score
		}
		plans = append(plans, QuestionPlan{
			QuestionID: row.QuestionID,
			Order:      orders[i],
			Score:      score,
			Options:    buildOptionPlan(row.Question.Options, quiz.HasRandomOptions, rng),
		})
	}
	return plans, nil
}

// buildOptionPlan keeps the stored order_number order, or Fisher-Yates
// shuffles a copy when the effective randomize flag is set. option_order is
// the 0-based position in the resulting list either way.
func buildOptionPlan(options []model.QuestionOption, randomize bool, rng *rand.Rand) []OptionPlan {
	ordered := make([]model.QuestionOption, len(options))
	copy(ordered, options)

	if randomize {
		rng.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}

	plans := make([]OptionPlan, len(ordered))
	for i, opt := range ordered {
		plans[i] = OptionPlan{OptionID: opt.ID, Order: i}
	}
	return plans
}
