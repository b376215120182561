package lifecycle

import (
	"fmt"
	"time"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
)

// Engine applies lifecycle operations to aggregates. Every operation checks all
// of its preconditions before touching the aggregate, so a failed call leaves
// it unchanged.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an Engine. A nil clock falls back to time.Now.
func NewEngine(clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{now: clock}
}

// NewPost builds a fresh post owned by the actor
func (e *Engine) NewPost(id int64, owner models.Actor, content models.PostContent) (*models.Post, error) {
	if err := ValidateContent(content); err != nil {
		return nil, err
	}
	now := e.now().UTC()
	post := &models.Post{
		ID:          id,
		UserID:      owner.UserID,
		PostContent: content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	post.Status = DeriveStatus(post, nil)
	return post, nil
}

// Edit replaces the owner-editable content of a post that is not yet complete.
func (e *Engine) Edit(agg *Aggregate, actor models.Actor, content models.PostContent) (*Mutation, error) {
	if err := requireOwner(agg.Post, actor); err != nil {
		return nil, err
	}
	if agg.Post.Status == models.PostStatusComplete {
		return nil, apperrors.NewInvalidStateError("completed posts cannot be edited")
	}
	if err := ValidateContent(content); err != nil {
		return nil, err
	}

	agg.Post.PostContent = content
	agg.refresh(e.now().UTC())
	return &Mutation{PostChanged: true}, nil
}

// Participate records the actor's interest in the post.
func (e *Engine) Participate(agg *Aggregate, actor models.Actor) (*Mutation, error) {
	if agg.Post.IsOwnedBy(actor.UserID) {
		return nil, apperrors.NewInvalidStateError("owners cannot participate in their own post")
	}
	if agg.Post.Status == models.PostStatusComplete {
		return nil, apperrors.NewInvalidStateError("post is already complete")
	}

	p, err := agg.Add(actor.UserID, e.now().UTC())
	if err != nil {
		return nil, err
	}
	return &Mutation{Added: []*models.Participant{p}}, nil
}

// Select accepts one participant. Every other pending participant becomes
// Not Selected and the post moves to In Progress.
func (e *Engine) Select(agg *Aggregate, actor models.Actor, participantID int64) (*Mutation, error) {
	if err := requireOwner(agg.Post, actor); err != nil {
		return nil, err
	}
	// checked before status so the loser of a select race sees AlreadySelected
	if agg.Post.HasSelection() {
		return nil, apperrors.NewCustomError(apperrors.ErrAlreadySelected,
			fmt.Sprintf("participant %d is already selected", *agg.Post.SelectedParticipantID))
	}
	if agg.Post.Status != models.PostStatusPending {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("post is %s, expected Pending", agg.Post.Status))
	}
	target, _ := agg.find(participantID)
	if target == nil {
		return nil, apperrors.ErrParticipantNotFound
	}
	if !target.Status.IsSelectable() {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("participant is %s", target.Status))
	}

	now := e.now().UTC()
	m := &Mutation{PostChanged: true}
	for _, p := range agg.Participants {
		switch {
		case p.UserID == participantID:
			p.Status = models.ParticipantStatusInProgress
		case p.Status == models.ParticipantStatusPending:
			p.Status = models.ParticipantStatusNotSelected
		default:
			continue
		}
		p.UpdatedAt = now
		m.update(p)
	}

	selected := participantID
	agg.Post.SelectedParticipantID = &selected
	agg.Post.OwnerCompleted = false
	agg.Post.ParticipantCompleted = false
	agg.refresh(now)
	return m, nil
}

// MarkParticipantComplete records the selected participant's side as done.
func (e *Engine) MarkParticipantComplete(agg *Aggregate, actor models.Actor) (*Mutation, error) {
	selected := agg.Selected()
	if selected == nil || selected.UserID != actor.UserID {
		return nil, apperrors.ErrNotParticipant
	}
	if selected.Status != models.ParticipantStatusInProgress {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("participant is %s, expected In Progress", selected.Status))
	}

	now := e.now().UTC()
	selected.Status = models.ParticipantStatusWaitForComplete
	selected.UpdatedAt = now
	agg.Post.ParticipantCompleted = true
	agg.refresh(now)

	m := &Mutation{PostChanged: true}
	m.update(selected)
	return m, nil
}

// ConfirmComplete closes the collaboration. The participant must have marked
// their side first.
func (e *Engine) ConfirmComplete(agg *Aggregate, actor models.Actor) (*Mutation, error) {
	if err := requireOwner(agg.Post, actor); err != nil {
		return nil, err
	}
	if agg.Post.Status != models.PostStatusInProgress {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("post is %s, expected In Progress", agg.Post.Status))
	}
	selected := agg.Selected()
	if selected == nil || selected.Status != models.ParticipantStatusWaitForComplete {
		return nil, apperrors.NewInvalidStateError("the selected participant has not marked the work complete")
	}

	now := e.now().UTC()
	selected.Status = models.ParticipantStatusComplete
	selected.CompletedAt = &now
	selected.UpdatedAt = now
	agg.Post.OwnerCompleted = true
	agg.refresh(now)

	m := &Mutation{PostChanged: true}
	m.update(selected)
	return m, nil
}

// Cancel ends an active collaboration. The selected participant reverts to
// Not Selected so it can be chosen again later.
func (e *Engine) Cancel(agg *Aggregate, actor models.Actor) (*Mutation, error) {
	selected := agg.Selected()
	isOwner := agg.Post.IsOwnedBy(actor.UserID)
	if !isOwner && (selected == nil || selected.UserID != actor.UserID) {
		return nil, apperrors.ErrNotParticipant
	}
	if agg.Post.Status != models.PostStatusInProgress && agg.Post.Status != models.PostStatusWaitForComplete {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("post is %s; nothing to cancel", agg.Post.Status))
	}
	if selected == nil {
		return nil, apperrors.NewInvalidStateError("post has no active collaboration")
	}
	if selected.Status != models.ParticipantStatusInProgress && selected.Status != models.ParticipantStatusWaitForComplete {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("participant is %s", selected.Status))
	}

	now := e.now().UTC()
	selected.Status = models.ParticipantStatusNotSelected
	selected.CompletedAt = nil
	selected.UpdatedAt = now
	agg.Post.SelectedParticipantID = nil
	agg.Post.OwnerCompleted = false
	agg.Post.ParticipantCompleted = false
	agg.refresh(now)

	m := &Mutation{PostChanged: true}
	m.update(selected)
	return m, nil
}

// Decline removes a participant the owner is not going to work with.
func (e *Engine) Decline(agg *Aggregate, actor models.Actor, participantID int64) (*Mutation, error) {
	if err := requireOwner(agg.Post, actor); err != nil {
		return nil, err
	}
	p, err := agg.Remove(participantID)
	if err != nil {
		return nil, err
	}
	return &Mutation{Removed: []int64{p.UserID}}, nil
}

// Delete removes a pending post and all of its participants.
func (e *Engine) Delete(agg *Aggregate, actor models.Actor) (*Mutation, error) {
	if err := requireOwner(agg.Post, actor); err != nil {
		return nil, err
	}
	if agg.Post.Status != models.PostStatusPending {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("post is %s; only pending posts can be deleted", agg.Post.Status))
	}
	return ForceDelete(agg), nil
}

// ForceDelete removes the post regardless of its status. Moderation uses it.
func ForceDelete(agg *Aggregate) *Mutation {
	m := &Mutation{DeletePost: true}
	for _, p := range agg.Participants {
		m.Removed = append(m.Removed, p.UserID)
	}
	agg.Participants = nil
	return m
}

// RemoveFromMyPosts lets a not-selected participant drop the post from their list.
func (e *Engine) RemoveFromMyPosts(agg *Aggregate, actor models.Actor) (*Mutation, error) {
	p, idx := agg.find(actor.UserID)
	if p == nil {
		return nil, apperrors.ErrNotParticipant
	}
	if p.Status != models.ParticipantStatusNotSelected {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("participant is %s, expected Not Selected", p.Status))
	}

	agg.drop(idx)
	return &Mutation{Removed: []int64{p.UserID}}, nil
}

// RemoveCompletedPost lets the participant archive a finished collaboration.
// The post and the owner's view are untouched.
func (e *Engine) RemoveCompletedPost(agg *Aggregate, actor models.Actor) (*Mutation, error) {
	p, idx := agg.find(actor.UserID)
	if p == nil {
		return nil, apperrors.ErrNotParticipant
	}
	if p.Status != models.ParticipantStatusComplete || agg.Post.Status != models.PostStatusComplete {
		return nil, apperrors.NewInvalidStateError("only completed collaborations can be removed")
	}

	agg.drop(idx)
	return &Mutation{Removed: []int64{p.UserID}}, nil
}

func requireOwner(post *models.Post, actor models.Actor) error {
	if !post.IsOwnedBy(actor.UserID) {
		return apperrors.NewCustomError(apperrors.ErrNotOwner,
			fmt.Sprintf("user %d does not own post %d", actor.UserID, post.ID))
	}
	return nil
}
