package service

import (
	"quiz_portal_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateOptions(t *testing.T) {
	two := func(correct ...bool) []OptionRequest {
		opts := make([]OptionRequest, len(correct))
		for i, c := range correct {
			opts[i] = OptionRequest{BodyText: "opt", OrderNumber: uint(i) + 1, IsCorrect: c}
		}
		return opts
	}

	t.Run("valid set", func(t *testing.T) {
		require.NoError(t, validateOptions(two(true, false, false)))
	})

	t.Run("single option rejected", func(t *testing.T) {
		require.ErrorIs(t, validateOptions(two(true)), util.ErrOptionValidation)
	})

	t.Run("no correct answer", func(t *testing.T) {
		require.ErrorIs(t, validateOptions(two(false, false)), util.ErrOptionValidation)
	})

	t.Run("two correct answers", func(t *testing.T) {
		require.ErrorIs(t, validateOptions(two(true, true)), util.ErrOptionValidation)
	})

	t.Run("duplicate order number", func(t *testing.T) {
		opts := two(true, false)
		opts[1].OrderNumber = opts[0].OrderNumber
		require.ErrorIs(t, validateOptions(opts), util.ErrOptionValidation)
	})

	t.Run("zero order number", func(t *testing.T) {
		opts := two(true, false)
		opts[0].OrderNumber = 0
		require.ErrorIs(t, validateOptions(opts), util.ErrOptionValidation)
	})
}
