package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/huskybridge/marketplace/internal/app/lifecycle"
	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/app/models/dto"
	"github.com/huskybridge/marketplace/internal/app/repositories"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
)

// operation is one engine call against a locked aggregate
type operation func(agg *lifecycle.Aggregate, actor models.Actor) (*lifecycle.Mutation, error)

// Participate records the actor's interest in a post
func (s *postServiceImpl) Participate(ctx context.Context, actor *models.Actor, postID int64) (*dto.PostResponse, error) {
	return s.mutateAndRespond(ctx, "participate", actor, postID, s.engine.Participate)
}

// SelectParticipant accepts one participant for the post
func (s *postServiceImpl) SelectParticipant(ctx context.Context, actor *models.Actor, postID, participantID int64) (*dto.PostResponse, error) {
	return s.mutateAndRespond(ctx, "select", actor, postID, func(agg *lifecycle.Aggregate, a models.Actor) (*lifecycle.Mutation, error) {
		return s.engine.Select(agg, a, participantID)
	})
}

// DeclineParticipant removes a pending or not-selected participant
func (s *postServiceImpl) DeclineParticipant(ctx context.Context, actor *models.Actor, postID, participantID int64) (*dto.PostResponse, error) {
	return s.mutateAndRespond(ctx, "decline", actor, postID, func(agg *lifecycle.Aggregate, a models.Actor) (*lifecycle.Mutation, error) {
		return s.engine.Decline(agg, a, participantID)
	})
}

// MarkParticipantComplete records the selected participant's completion
func (s *postServiceImpl) MarkParticipantComplete(ctx context.Context, actor *models.Actor, postID int64) (*dto.PostResponse, error) {
	return s.mutateAndRespond(ctx, "mark_participant_complete", actor, postID, s.engine.MarkParticipantComplete)
}

// ConfirmComplete records the owner's confirmation and completes the post
func (s *postServiceImpl) ConfirmComplete(ctx context.Context, actor *models.Actor, postID int64) (*dto.PostResponse, error) {
	return s.mutateAndRespond(ctx, "confirm_complete", actor, postID, s.engine.ConfirmComplete)
}

// CancelCollaboration returns an in-progress post to Pending
func (s *postServiceImpl) CancelCollaboration(ctx context.Context, actor *models.Actor, postID int64) (*dto.PostResponse, error) {
	return s.mutateAndRespond(ctx, "cancel", actor, postID, s.engine.Cancel)
}

// DeletePost deletes a pending post with its participants
func (s *postServiceImpl) DeletePost(ctx context.Context, actor *models.Actor, postID int64) error {
	_, err := s.mutate(ctx, "delete", actor, postID, s.engine.Delete)
	return err
}

// RemoveFromMyPosts drops a not-selected participation
func (s *postServiceImpl) RemoveFromMyPosts(ctx context.Context, actor *models.Actor, postID int64) error {
	_, err := s.mutate(ctx, "remove_from_my_posts", actor, postID, s.engine.RemoveFromMyPosts)
	return err
}

// RemoveCompletedPost archives a completed collaboration from the participant's list
func (s *postServiceImpl) RemoveCompletedPost(ctx context.Context, actor *models.Actor, postID int64) error {
	_, err := s.mutate(ctx, "remove_completed_post", actor, postID, s.engine.RemoveCompletedPost)
	return err
}

func (s *postServiceImpl) mutateAndRespond(ctx context.Context, name string, actor *models.Actor, postID int64, op operation) (*dto.PostResponse, error) {
	agg, err := s.mutate(ctx, name, actor, postID, op)
	if err != nil {
		return nil, err
	}
	return s.buildPostResponse(ctx, actor, agg.Post, agg.Participants)
}

// mutate loads the post under a row lock, applies op and persists the result,
// all in one transaction.
func (s *postServiceImpl) mutate(ctx context.Context, name string, actor *models.Actor, postID int64, op operation) (*lifecycle.Aggregate, error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle."+name, trace.WithAttributes(attribute.Int64("post.id", postID)))
	defer span.End()

	if actor == nil {
		span.SetStatus(codes.Error, "unauthenticated")
		return nil, apperrors.ErrUnauthenticated
	}
	span.SetAttributes(attribute.Int64("actor.id", actor.UserID))

	log := s.logger.With().Str("operation", name).Int64("postID", postID).Int64("actorID", actor.UserID).Logger()
	log.Debug().Msg("Applying lifecycle operation")

	var agg *lifecycle.Aggregate
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repositories.TxRepositories) error {
		post, err := repos.Posts().GetByIDForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		participants, err := repos.Participants().ListByPost(ctx, postID)
		if err != nil {
			return err
		}

		agg = lifecycle.NewAggregate(post, participants)
		mutation, err := op(agg, *actor)
		if err != nil {
			return err
		}
		return persistMutation(ctx, repos, agg, mutation)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperrors.MessageOf(err))
		if isRejection(err) {
			log.Warn().Err(err).Msg("Lifecycle operation rejected")
		} else {
			log.Error().Err(err).Msg("Lifecycle operation failed")
		}
		return nil, err
	}

	span.SetAttributes(attribute.String("post.status", string(agg.Post.Status)))
	log.Info().Str("status", string(agg.Post.Status)).Msg("Lifecycle operation applied")
	return agg, nil
}

// persistMutation writes the rows an engine operation changed. The post row is
// always rewritten so its version moves forward on every mutation.
func persistMutation(ctx context.Context, repos repositories.TxRepositories, agg *lifecycle.Aggregate, m *lifecycle.Mutation) error {
	if m.DeletePost {
		return repos.Posts().Delete(ctx, agg.Post.ID)
	}

	for _, userID := range m.Removed {
		if err := repos.Participants().Delete(ctx, agg.Post.ID, userID); err != nil {
			return err
		}
	}
	// records leaving the selected lineage are written before the one entering it
	for _, p := range m.Updated {
		if !p.Status.IsSelectedLineage() {
			if err := repos.Participants().Update(ctx, p); err != nil {
				return err
			}
		}
	}
	for _, p := range m.Updated {
		if p.Status.IsSelectedLineage() {
			if err := repos.Participants().Update(ctx, p); err != nil {
				return err
			}
		}
	}
	for _, p := range m.Added {
		if err := repos.Participants().Insert(ctx, p); err != nil {
			return err
		}
	}

	return repos.Posts().Update(ctx, agg.Post)
}

// isRejection reports whether err is an expected refusal rather than a failure
func isRejection(err error) bool {
	return apperrors.Is(err, apperrors.ErrInvalidState,
		apperrors.ErrNotOwner,
		apperrors.ErrNotParticipant,
		apperrors.ErrAlreadySelected,
		apperrors.ErrAlreadyParticipating,
		apperrors.ErrResourceNotFound,
		apperrors.ErrValidationFailed,
		apperrors.ErrConflict,
		apperrors.ErrUnauthenticated,
		apperrors.ErrForbidden,
	) || errors.Is(err, context.Canceled)
}
