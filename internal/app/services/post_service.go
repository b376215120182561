package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/huskybridge/marketplace/internal/app/lifecycle"
	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/app/models/dto"
	"github.com/huskybridge/marketplace/internal/app/query"
	"github.com/huskybridge/marketplace/internal/app/repositories"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
	"github.com/huskybridge/marketplace/internal/pkg/helpers"
	"github.com/huskybridge/marketplace/internal/pkg/id"
)

// PostService defines the interface for post and participation operations.
// A nil actor means an anonymous caller.
type PostService interface {
	CreatePost(ctx context.Context, actor *models.Actor, req *dto.PostRequest) (*dto.PostResponse, error)
	UpdatePost(ctx context.Context, actor *models.Actor, postID int64, req *dto.PostRequest) (*dto.PostResponse, error)
	GetPost(ctx context.Context, viewer *models.Actor, postID int64) (*dto.PostResponse, error)
	ListPosts(ctx context.Context, viewer *models.Actor, filters query.Filters, page, size int) (*dto.PostListResponse, error)
	ListMyPosts(ctx context.Context, actor *models.Actor, page, size int) (*dto.PostListResponse, error)
	ListParticipatingPosts(ctx context.Context, actor *models.Actor, page, size int) (*dto.PostListResponse, error)
	ListParticipants(ctx context.Context, actor *models.Actor, postID int64) ([]dto.ParticipantResponse, error)

	Participate(ctx context.Context, actor *models.Actor, postID int64) (*dto.PostResponse, error)
	SelectParticipant(ctx context.Context, actor *models.Actor, postID, participantID int64) (*dto.PostResponse, error)
	DeclineParticipant(ctx context.Context, actor *models.Actor, postID, participantID int64) (*dto.PostResponse, error)
	MarkParticipantComplete(ctx context.Context, actor *models.Actor, postID int64) (*dto.PostResponse, error)
	ConfirmComplete(ctx context.Context, actor *models.Actor, postID int64) (*dto.PostResponse, error)
	CancelCollaboration(ctx context.Context, actor *models.Actor, postID int64) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, actor *models.Actor, postID int64) error
	RemoveFromMyPosts(ctx context.Context, actor *models.Actor, postID int64) error
	RemoveCompletedPost(ctx context.Context, actor *models.Actor, postID int64) error
}

// postServiceImpl implements PostService
type postServiceImpl struct {
	postRepo        repositories.IPostRepository
	participantRepo repositories.IParticipantRepository
	userRepo        repositories.IUserRepository
	txManager       repositories.TxManager
	engine          *lifecycle.Engine
	newID           id.Generator
	locations       []string
	now             func() time.Time
	tracer          trace.Tracer
	logger          zerolog.Logger
}

// PostServiceDeps groups the collaborators of the post service
type PostServiceDeps struct {
	PostRepo        repositories.IPostRepository
	ParticipantRepo repositories.IParticipantRepository
	UserRepo        repositories.IUserRepository
	TxManager       repositories.TxManager
	Engine          *lifecycle.Engine
	NewID           id.Generator
	// Locations are the known campus locations the listing filter accepts
	Locations []string
	Clock     func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(deps PostServiceDeps, logger zerolog.Logger) PostService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	engine := deps.Engine
	if engine == nil {
		engine = lifecycle.NewEngine(clock)
	}
	newID := deps.NewID
	if newID == nil {
		newID = id.New
	}

	return &postServiceImpl{
		postRepo:        deps.PostRepo,
		participantRepo: deps.ParticipantRepo,
		userRepo:        deps.UserRepo,
		txManager:       deps.TxManager,
		engine:          engine,
		newID:           newID,
		locations:       deps.Locations,
		now:             clock,
		tracer:          otel.Tracer(tracerName),
		logger:          logger.With().Str("service", "post").Logger(),
	}
}

// CreatePost creates a new pending post owned by the actor
func (s *postServiceImpl) CreatePost(ctx context.Context, actor *models.Actor, req *dto.PostRequest) (*dto.PostResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	content := req.ToContent()
	if canonical := query.CanonicalLocation(content.Location, s.locations); canonical != "" {
		content.Location = canonical
	}

	post, err := s.engine.NewPost(s.newID(), *actor, content)
	if err != nil {
		return nil, err
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// the token outlived its account
			return nil, apperrors.ErrUnauthenticated
		}
		s.logger.Error().Err(err).Int64("userID", actor.UserID).Msg("Failed to create post")
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	s.logger.Info().Int64("postID", post.ID).Int64("userID", actor.UserID).Str("category", string(post.Category)).Msg("Post created")
	return s.buildPostResponse(ctx, actor, post, []*models.Participant{})
}

// UpdatePost replaces the editable content of a post
func (s *postServiceImpl) UpdatePost(ctx context.Context, actor *models.Actor, postID int64, req *dto.PostRequest) (*dto.PostResponse, error) {
	content := req.ToContent()
	if canonical := query.CanonicalLocation(content.Location, s.locations); canonical != "" {
		content.Location = canonical
	}

	return s.mutateAndRespond(ctx, "edit", actor, postID, func(agg *lifecycle.Aggregate, a models.Actor) (*lifecycle.Mutation, error) {
		return s.engine.Edit(agg, a, content)
	})
}

// GetPost retrieves a post decorated for the viewer
func (s *postServiceImpl) GetPost(ctx context.Context, viewer *models.Actor, postID int64) (*dto.PostResponse, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error loading participants: %w", err)
	}

	return s.buildPostResponse(ctx, viewer, post, participants)
}

// ListPosts filters every post and returns the requested page
func (s *postServiceImpl) ListPosts(ctx context.Context, viewer *models.Actor, filters query.Filters, page, size int) (*dto.PostListResponse, error) {
	s.logger.Debug().Interface("filters", filters).Int("page", page).Int("size", size).Msg("Listing posts")

	if err := filters.Validate(s.locations); err != nil {
		return nil, err
	}

	posts, err := s.postRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list posts")
		return nil, fmt.Errorf("error listing posts: %w", err)
	}

	if !filters.IsEmpty() {
		posts = query.FilterPosts(posts, filters, s.now())
	}
	return s.buildPostList(ctx, viewer, posts, page, size)
}

// ListMyPosts lists the posts the actor owns
func (s *postServiceImpl) ListMyPosts(ctx context.Context, actor *models.Actor, page, size int) (*dto.PostListResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	posts, err := s.postRepo.ListByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing own posts: %w", err)
	}
	return s.buildPostList(ctx, actor, posts, page, size)
}

// ListParticipatingPosts lists the posts the actor has a participant record on
func (s *postServiceImpl) ListParticipatingPosts(ctx context.Context, actor *models.Actor, page, size int) (*dto.PostListResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	posts, err := s.postRepo.ListByParticipant(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing participating posts: %w", err)
	}
	return s.buildPostList(ctx, actor, posts, page, size)
}

// ListParticipants lists the participants of a post with their public profiles
func (s *postServiceImpl) ListParticipants(ctx context.Context, actor *models.Actor, postID int64) ([]dto.ParticipantResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	participants, err := s.participantRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error loading participants: %w", err)
	}

	ids := make([]int64, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.UserID)
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading participant profiles: %w", err)
	}

	result := make([]dto.ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		result = append(result, dto.FromParticipant(p, users[p.UserID]))
	}
	return result, nil
}

func (s *postServiceImpl) buildPostList(ctx context.Context, viewer *models.Actor, posts []*models.Post, page, size int) (*dto.PostListResponse, error) {
	pagePosts, pagination := helpers.Paginate(posts, page, size)

	responses, err := s.buildPostResponses(ctx, viewer, pagePosts)
	if err != nil {
		return nil, err
	}

	return &dto.PostListResponse{Posts: responses, Pagination: pagination}, nil
}

func (s *postServiceImpl) buildPostResponses(ctx context.Context, viewer *models.Actor, posts []*models.Post) ([]dto.PostResponse, error) {
	responses := make([]dto.PostResponse, 0, len(posts))
	if len(posts) == 0 {
		return responses, nil
	}

	postIDs := make([]int64, 0, len(posts))
	ownerIDs := make([]int64, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		ownerIDs = append(ownerIDs, p.UserID)
	}

	participants, err := s.participantRepo.ListByPosts(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("error loading participants: %w", err)
	}
	owners, err := s.userRepo.GetByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("error loading post owners: %w", err)
	}

	for _, p := range posts {
		responses = append(responses, toPostResponse(viewer, p, participants[p.ID], owners[p.UserID]))
	}
	return responses, nil
}

func (s *postServiceImpl) buildPostResponse(ctx context.Context, viewer *models.Actor, post *models.Post, participants []*models.Participant) (*dto.PostResponse, error) {
	owners, err := s.userRepo.GetByIDs(ctx, []int64{post.UserID})
	if err != nil {
		return nil, fmt.Errorf("error loading post owner: %w", err)
	}

	resp := toPostResponse(viewer, post, participants, owners[post.UserID])
	return &resp, nil
}

func toPostResponse(viewer *models.Actor, post *models.Post, participants []*models.Participant, owner *models.User) dto.PostResponse {
	var viewerID int64
	if viewer != nil {
		viewerID = viewer.UserID
	}

	resp := dto.PostResponse{
		ID:                    post.ID,
		Owner:                 dto.ToPublicProfile(post.UserID, owner),
		Title:                 post.Title,
		Description:           post.Description,
		PostType:              post.PostType,
		Category:              post.Category,
		Location:              post.Location,
		Availability:          post.Availability,
		Status:                post.Status,
		DisplayStatus:         query.DeriveDisplayStatus(post, participants, viewerID),
		SelectedParticipantID: post.SelectedParticipantID,
		OwnerCompleted:        post.OwnerCompleted,
		ParticipantCompleted:  post.ParticipantCompleted,
		ParticipantCount:      len(participants),
		UserRelationship:      models.RelationshipNone,
		CreatedAt:             post.CreatedAt,
		UpdatedAt:             post.UpdatedAt,
	}

	if viewer != nil {
		resp.UserRelationship = query.DeriveUserRelationship(post, participants, viewerID)
		resp.UserParticipantStatus = query.ParticipantStatusFor(participants, viewerID)
	}
	return resp
}
