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

var postColumns = []string{
	"p.id", "p.user_id", "p.title", "p.description", "p.post_type", "p.category", "p.location",
	"p.availability", "p.status", "p.selected_participant_id", "p.owner_completed",
	"p.participant_completed", "p.version", "p.created_at", "p.updated_at",
}

// PostRepository handles post database operations
type PostRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db db.DBTX) *PostRepository {
	return &PostRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanPost(row pgx.Row) (*models.Post, error) {
	post := &models.Post{}
	err := row.Scan(
		&post.ID, &post.UserID, &post.Title, &post.Description, &post.PostType, &post.Category,
		&post.Location, &post.Availability, &post.Status, &post.SelectedParticipantID,
		&post.OwnerCompleted, &post.ParticipantCompleted, &post.Version, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Create inserts a new post. The id is assigned by the caller.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Version == 0 {
		post.Version = 1
	}

	sql, args, err := r.sb.Insert("posts").
		Columns("id", "user_id", "title", "description", "post_type", "category", "location",
			"availability", "status", "selected_participant_id", "owner_completed",
			"participant_completed", "version", "created_at", "updated_at").
		Values(post.ID, post.UserID, post.Title, post.Description, post.PostType, post.Category, post.Location,
			post.Availability, post.Status, post.SelectedParticipantID, post.OwnerCompleted,
			post.ParticipantCompleted, post.Version, post.CreatedAt, post.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create post query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("postID", post.ID).Msg("Error executing create post query")
		return fmt.Errorf("error creating post: %w", err)
	}
	return nil
}

func (r *PostRepository) getOne(ctx context.Context, id int64, suffix string) (*models.Post, error) {
	builder := r.sb.Select(postColumns...).
		From("posts p").
		Where(squirrel.Eq{"p.id": id})
	if suffix != "" {
		builder = builder.Suffix(suffix)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get post query: %w", err)
	}

	post, err := scanPost(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("error retrieving post %d: %w", id, err)
	}
	return post, nil
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return r.getOne(ctx, id, "")
}

// GetByIDForUpdate retrieves a post by ID and locks its row
func (r *PostRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Post, error) {
	return r.getOne(ctx, id, "FOR UPDATE")
}

// Update writes every mutable column guarded by the version the post was loaded with
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	sql, args, err := r.sb.Update("posts").
		Set("title", post.Title).
		Set("description", post.Description).
		Set("post_type", post.PostType).
		Set("category", post.Category).
		Set("location", post.Location).
		Set("availability", post.Availability).
		Set("status", post.Status).
		Set("selected_participant_id", post.SelectedParticipantID).
		Set("owner_completed", post.OwnerCompleted).
		Set("participant_completed", post.ParticipantCompleted).
		Set("updated_at", post.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": post.ID, "version": post.Version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update post query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("postID", post.ID).Msg("Error executing update post query")
		return fmt.Errorf("error updating post: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrConcurrentModification
	}

	post.Version++
	return nil
}

// Delete removes a post. Participants go with it through the foreign key cascade.
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("posts").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete post query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) list(ctx context.Context, builder squirrel.SelectBuilder) ([]*models.Post, error) {
	sql, args, err := builder.OrderBy("p.created_at DESC", "p.id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list posts query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}
	return posts, nil
}

// List retrieves every post, newest first
func (r *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	return r.list(ctx, r.sb.Select(postColumns...).From("posts p"))
}

// ListByOwner retrieves the posts created by userID, newest first
func (r *PostRepository) ListByOwner(ctx context.Context, userID int64) ([]*models.Post, error) {
	return r.list(ctx, r.sb.Select(postColumns...).From("posts p").Where(squirrel.Eq{"p.user_id": userID}))
}

// ListByParticipant retrieves the posts userID has a participant record on, newest first
func (r *PostRepository) ListByParticipant(ctx context.Context, userID int64) ([]*models.Post, error) {
	return r.list(ctx, r.sb.Select(postColumns...).
		From("posts p").
		Join("post_participants pp ON pp.post_id = p.id").
		Where(squirrel.Eq{"pp.user_id": userID}))
}
