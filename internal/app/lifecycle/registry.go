package lifecycle

import (
	"fmt"
	"time"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
)

// Add registers userID as a pending participant of the post.
func (a *Aggregate) Add(userID int64, now time.Time) (*models.Participant, error) {
	if existing, _ := a.find(userID); existing != nil {
		return nil, apperrors.NewCustomError(apperrors.ErrAlreadyParticipating,
			fmt.Sprintf("user %d already participates in post %d", userID, a.Post.ID))
	}

	p := &models.Participant{
		PostID:    a.Post.ID,
		UserID:    userID,
		Status:    models.ParticipantStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	a.Participants = append(a.Participants, p)
	return p, nil
}

// Remove deletes a participant record that never entered the selected lineage.
// Selected participants leave through cancellation instead.
func (a *Aggregate) Remove(userID int64) (*models.Participant, error) {
	p, idx := a.find(userID)
	if p == nil {
		return nil, apperrors.ErrParticipantNotFound
	}
	if !p.Status.IsRemovable() {
		return nil, apperrors.NewInvalidStateError(
			fmt.Sprintf("participant is %s; cancel the collaboration instead", p.Status))
	}

	a.drop(idx)
	return p, nil
}

// List returns the participant records in insertion order.
func (a *Aggregate) List() []*models.Participant {
	out := make([]*models.Participant, len(a.Participants))
	copy(out, a.Participants)
	return out
}

// Get returns the record for userID
func (a *Aggregate) Get(userID int64) (*models.Participant, error) {
	p, _ := a.find(userID)
	if p == nil {
		return nil, apperrors.ErrParticipantNotFound
	}
	return p, nil
}
