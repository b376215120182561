package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
)

func TestRegistry(t *testing.T) {
	post := &models.Post{ID: 9, UserID: ownerID, Status: models.PostStatusPending}
	agg := NewAggregate(post, nil)

	p, err := agg.Add(aliceID, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.PostID)
	assert.Equal(t, models.ParticipantStatusPending, p.Status)

	_, err = agg.Add(aliceID, fixedNow)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyParticipating)

	_, err = agg.Add(bobID, fixedNow)
	require.NoError(t, err)

	list := agg.List()
	require.Len(t, list, 2)
	assert.Equal(t, aliceID, list[0].UserID)
	assert.Equal(t, bobID, list[1].UserID)

	got, err := agg.Get(bobID)
	require.NoError(t, err)
	assert.Same(t, list[1], got)

	_, err = agg.Get(carolID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	removed, err := agg.Remove(aliceID)
	require.NoError(t, err)
	assert.Equal(t, aliceID, removed.UserID)
	assert.Len(t, agg.List(), 1)

	_, err = agg.Remove(aliceID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestRegistryRemoveRejectsSelectedLineage(t *testing.T) {
	for _, status := range []models.ParticipantStatus{
		models.ParticipantStatusInProgress,
		models.ParticipantStatusWaitForComplete,
		models.ParticipantStatusComplete,
	} {
		t.Run(string(status), func(t *testing.T) {
			agg := NewAggregate(&models.Post{ID: 9, UserID: ownerID}, []*models.Participant{
				{PostID: 9, UserID: aliceID, Status: status},
			})
			_, err := agg.Remove(aliceID)
			assert.ErrorIs(t, err, apperrors.ErrInvalidState)
			assert.Len(t, agg.Participants, 1)
		})
	}
}

func TestParseAvailability(t *testing.T) {
	start, end, err := ParseAvailability("2025-04-01")
	require.NoError(t, err)
	assert.Equal(t, start, end)

	start, end, err = ParseAvailability("2025-04-01, 2025-04-03")
	require.NoError(t, err)
	assert.True(t, end.After(start))

	for _, bad := range []string{"", "April 1", "2025-04-03,2025-04-01", "2025-04-01,2025-04-02,2025-04-03"} {
		_, _, err := ParseAvailability(bad)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed, bad)
	}
}
