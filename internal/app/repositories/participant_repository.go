package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/db"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
	"github.com/huskybridge/marketplace/internal/pkg/dberrors"
	"github.com/huskybridge/marketplace/internal/pkg/logger"
)

// Constraint names from migrations/001_init.sql
const (
	participantPrimaryKey     = "post_participants_pkey"
	participantSelectedUnique = "uq_post_participants_selected"
)

var participantColumns = []string{"post_id", "user_id", "status", "completed_at", "created_at", "updated_at"}

// ParticipantRepository handles post participant database operations
type ParticipantRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db db.DBTX) *ParticipantRepository {
	return &ParticipantRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanParticipant(row pgx.Row) (*models.Participant, error) {
	p := &models.Participant{}
	if err := row.Scan(&p.PostID, &p.UserID, &p.Status, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// translateWriteError maps constraint violations onto lifecycle errors
func translateWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, participantPrimaryKey):
		return apperrors.ErrAlreadyParticipating
	case dberrors.IsDuplicateConstraintError(err, participantSelectedUnique):
		return apperrors.ErrAlreadySelected
	case dberrors.IsForeignKeyViolation(err):
		return apperrors.ErrPostNotFound
	}
	return nil
}

// ListByPost retrieves the participants of a post in join order
func (r *ParticipantRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Participant, error) {
	byPost, err := r.ListByPosts(ctx, []int64{postID})
	if err != nil {
		return nil, err
	}
	if participants, ok := byPost[postID]; ok {
		return participants, nil
	}
	return []*models.Participant{}, nil
}

// ListByPosts retrieves the participants of several posts keyed by post id
func (r *ParticipantRepository) ListByPosts(ctx context.Context, postIDs []int64) (map[int64][]*models.Participant, error) {
	result := make(map[int64][]*models.Participant, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	sql, args, err := r.sb.Select(participantColumns...).
		From("post_participants").
		Where(squirrel.Eq{"post_id": postIDs}).
		OrderBy("post_id", "created_at", "user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list participants query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning participant row: %w", err)
		}
		result[p.PostID] = append(result[p.PostID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return result, nil
}

// Insert adds a participant record
func (r *ParticipantRepository) Insert(ctx context.Context, p *models.Participant) error {
	sql, args, err := r.sb.Insert("post_participants").
		Columns(participantColumns...).
		Values(p.PostID, p.UserID, p.Status, p.CompletedAt, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert participant query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if mapped := translateWriteError(err); mapped != nil {
			return mapped
		}
		logger.Error().Err(err).Int64("postID", p.PostID).Int64("userID", p.UserID).Msg("Error executing insert participant query")
		return fmt.Errorf("error inserting participant: %w", err)
	}
	return nil
}

// Update writes the status columns of a participant record
func (r *ParticipantRepository) Update(ctx context.Context, p *models.Participant) error {
	sql, args, err := r.sb.Update("post_participants").
		Set("status", p.Status).
		Set("completed_at", p.CompletedAt).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"post_id": p.PostID, "user_id": p.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update participant query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if mapped := translateWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("error updating participant: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrParticipantNotFound
	}
	return nil
}

// Delete removes one participant record
func (r *ParticipantRepository) Delete(ctx context.Context, postID, userID int64) error {
	sql, args, err := r.sb.Delete("post_participants").
		Where(squirrel.Eq{"post_id": postID, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete participant query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting participant: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrParticipantNotFound
	}
	return nil
}
