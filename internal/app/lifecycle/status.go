package lifecycle

import "github.com/huskybridge/marketplace/internal/app/models"

// DeriveStatus computes the post-level status from the selection and the
// selected participant's record.
//
// Wait for Complete is never produced here: while the participant waits the
// post stays In Progress until the owner confirms.
func DeriveStatus(post *models.Post, selected *models.Participant) models.PostStatus {
	if post.SelectedParticipantID == nil {
		return models.PostStatusPending
	}
	if selected == nil {
		// the participant archived a finished collaboration
		if post.OwnerCompleted {
			return models.PostStatusComplete
		}
		return models.PostStatusInProgress
	}
	if selected.Status == models.ParticipantStatusComplete && post.OwnerCompleted {
		return models.PostStatusComplete
	}
	return models.PostStatusInProgress
}
