package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinels_AreDistinct(t *testing.T) {
	all := []error{
		ErrorNotFound,
		ErrInvalidTarget,
		ErrMissingRequiredField,
		ErrUnknownField,
		ErrImmutableField,
		ErrConstraintViolation,
		ErrFingerprintMismatch,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				require.False(t, errors.Is(a, b), "%v must not match %v", a, b)
			}
		}
	}
}

func TestSentinels_SurviveWrapping(t *testing.T) {
	engine := errors.New("NOT NULL constraint failed: repo.name")
	err := fmt.Errorf("%w: %w", ErrConstraintViolation, engine)

	require.ErrorIs(t, err, ErrConstraintViolation)
	require.ErrorIs(t, err, engine)
	require.Contains(t, err.Error(), "repo.name")
}
