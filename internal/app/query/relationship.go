// Package query holds the read-only derivations used by listings and post
// detail views. Nothing here mutates its inputs.
package query

import "github.com/huskybridge/marketplace/internal/app/models"

// DeriveUserRelationship classifies userID against a post and its participant set.
func DeriveUserRelationship(post *models.Post, participants []*models.Participant, userID int64) models.Relationship {
	switch {
	case post.IsOwnedBy(userID):
		return models.RelationshipOwner
	case post.SelectedParticipantID != nil && *post.SelectedParticipantID == userID:
		return models.RelationshipSelected
	case findParticipant(participants, userID) != nil:
		return models.RelationshipParticipant
	}
	return models.RelationshipNone
}

// DeriveDisplayStatus returns the badge a viewer sees. Owners and outsiders see
// the post status, which reads In Progress while the participant waits for
// confirmation. Participants see their own record verbatim.
func DeriveDisplayStatus(post *models.Post, participants []*models.Participant, viewerID int64) string {
	if post.IsOwnedBy(viewerID) {
		return string(post.Status)
	}
	if p := findParticipant(participants, viewerID); p != nil {
		return string(p.Status)
	}
	return string(post.Status)
}

// ParticipantStatusFor returns the viewer's own participant status, if any
func ParticipantStatusFor(participants []*models.Participant, viewerID int64) *models.ParticipantStatus {
	p := findParticipant(participants, viewerID)
	if p == nil {
		return nil
	}
	status := p.Status
	return &status
}

func findParticipant(participants []*models.Participant, userID int64) *models.Participant {
	for _, p := range participants {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}
