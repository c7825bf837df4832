package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swayamn72/aegis-sub001/models"
)

// Неизвестный статус отклоняется до обращения к базе, поэтому db здесь nil.
func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()

	err := NewPostgresPhaseRepository(nil).UpdateStatus(ctx, nil, 50, models.PhaseStatus("archived"))
	assert.ErrorIs(t, err, ErrInvalidPhaseState)
	assert.Contains(t, err.Error(), "archived")

	err = NewPostgresMatchRepository(nil).UpdateStatus(ctx, nil, 900, models.MatchStatus("paused"))
	assert.ErrorIs(t, err, ErrInvalidMatchState)
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range []models.PhaseStatus{models.PhaseStatusUpcoming, models.PhaseStatusInProgress, models.PhaseStatusCompleted, models.PhaseStatusCancelled} {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, models.PhaseStatus("").IsValid())

	for _, s := range []models.MatchStatus{models.MatchStatusScheduled, models.MatchStatusInProgress, models.MatchStatusCompleted, models.MatchStatusCancelled} {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, models.MatchStatus("live").IsValid())
}
