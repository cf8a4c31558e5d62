package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

func TestAllowAll(t *testing.T) {
	p := AllowAll()
	assert.True(t, p.Unrestricted())
	assert.True(t, p.Allows(domain.StatusClosed, domain.StatusOpen))
	assert.True(t, p.Allows(domain.StatusReopened, domain.StatusClosed))
}

func TestParseTransitions(t *testing.T) {
	t.Run("empty means allow all", func(t *testing.T) {
		p, err := ParseTransitions("  ")
		require.NoError(t, err)
		assert.True(t, p.Unrestricted())
	})

	t.Run("builds allow list", func(t *testing.T) {
		p, err := ParseTransitions("open>in_progress, IN_PROGRESS>RESOLVED")
		require.NoError(t, err)
		assert.False(t, p.Unrestricted())
		assert.True(t, p.Allows(domain.StatusOpen, domain.StatusInProgress))
		assert.True(t, p.Allows(domain.StatusInProgress, domain.StatusResolved))
		assert.False(t, p.Allows(domain.StatusResolved, domain.StatusOpen))
		assert.True(t, p.Allows(domain.StatusClosed, domain.StatusClosed))

		err = p.Check(domain.StatusOpen, domain.StatusClosed)
		assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	})

	t.Run("rejects malformed pairs", func(t *testing.T) {
		_, err := ParseTransitions("OPEN-IN_PROGRESS")
		assert.Error(t, err)

		_, err = ParseTransitions("OPEN>DONE")
		assert.Error(t, err)
	})
}
