package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/app/models/dto"
	"github.com/huskybridge/marketplace/internal/app/query"
	"github.com/huskybridge/marketplace/internal/app/services"
	"github.com/huskybridge/marketplace/internal/middleware"
	"github.com/huskybridge/marketplace/internal/pkg/helpers"
)

// PostController handles post and participation endpoints
type PostController struct {
	postService services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService services.PostService) *PostController {
	return &PostController{postService: postService}
}

// toFilters converts the listing query string into query.Filters
func toFilters(q dto.ListPostsQuery) query.Filters {
	f := query.Filters{
		PostType:   models.PostType(q.PostType),
		Status:     models.PostStatus(q.Status),
		Location:   q.Location,
		DateRange:  query.DateRange(q.DateRange),
		TitleQuery: q.Query,
		Sort:       query.SortOrder(q.Sort),
	}
	for _, c := range q.Category {
		f.Categories = append(f.Categories, models.Category(c))
	}
	return f
}

// CreatePost handles post creation
// @Summary Create a post
// @Description Creates a Pending post owned by the caller
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.PostRequest true "Post content"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse} "Post created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /posts [post]
func (c *PostController) CreatePost(ctx *gin.Context) {
	var req dto.PostRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	post, err := c.postService.CreatePost(ctx.Request.Context(), middleware.ActorFromContext(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(post))
}

// UpdatePost handles post edits
// @Summary Edit a post
// @Description Replaces the content of a post that is not complete. Owner only.
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.PostRequest true "Post content"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse} "Post updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Failure 409 {object} dto.ErrorResponse "Post is complete"
// @Router /posts/{id} [put]
func (c *PostController) UpdatePost(ctx *gin.Context) {
	postID, ok := parseIDParam(ctx, "id", "post")
	if !ok {
		return
	}
	var req dto.PostRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	post, err := c.postService.UpdatePost(ctx.Request.Context(), middleware.ActorFromContext(ctx), postID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// GetPost handles post detail
// @Summary Get a post
// @Description Returns a post decorated with the caller's relationship and display status
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse} "Post"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id} [get]
func (c *PostController) GetPost(ctx *gin.Context) {
	postID, ok := parseIDParam(ctx, "id", "post")
	if !ok {
		return
	}

	post, err := c.postService.GetPost(ctx.Request.Context(), middleware.ActorFromContext(ctx), postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// ListPosts handles the filtered post listing
// @Summary List posts
// @Description Lists posts newest first with optional filters
// @Tags posts
// @Produce json
// @Param postType query string false "request or offer"
// @Param category query []string false "One or more categories" collectionFormat(multi)
// @Param status query string false "Pending, In Progress, Wait for Complete or Complete"
// @Param location query string false "Campus location"
// @Param dateRange query string false "all, 1h, 24h, 7d or 30d"
// @Param sort query string false "latest or oldest"
// @Param q query string false "Title search"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PostListResponse} "Posts"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /posts [get]
func (c *PostController) ListPosts(ctx *gin.Context) {
	var q dto.ListPostsQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	posts, err := c.postService.ListPosts(ctx.Request.Context(), middleware.ActorFromContext(ctx), toFilters(q), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(posts))
}

// ListMyPosts handles the caller's own posts
// @Summary List my posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PostListResponse} "Posts"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /posts/mine [get]
func (c *PostController) ListMyPosts(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	posts, err := c.postService.ListMyPosts(ctx.Request.Context(), middleware.ActorFromContext(ctx), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(posts))
}

// ListParticipatingPosts handles the posts the caller participates in
// @Summary List posts I participate in
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PostListResponse} "Posts"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /posts/participating [get]
func (c *PostController) ListParticipatingPosts(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	posts, err := c.postService.ListParticipatingPosts(ctx.Request.Context(), middleware.ActorFromContext(ctx), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(posts))
}

// ListParticipants handles the participant list of a post
// @Summary List participants
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.ParticipantResponse} "Participants"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/participants [get]
func (c *PostController) ListParticipants(ctx *gin.Context) {
	postID, ok := parseIDParam(ctx, "id", "post")
	if !ok {
		return
	}

	participants, err := c.postService.ListParticipants(ctx.Request.Context(), middleware.ActorFromContext(ctx), postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(participants))
}

// Participate handles joining a post
// @Summary Participate in a post
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse} "Participation recorded"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Failure 409 {object} dto.ErrorResponse "Already participating or post complete"
// @Router /posts/{id}/participants [post]
func (c *PostController) Participate(ctx *gin.Context) {
	postID, ok := parseIDParam(ctx, "id", "post")
	if !ok {
		return
	}

	post, err := c.postService.Participate(ctx.Request.Context(), middleware.ActorFromContext(ctx), postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(post))
}

// SelectParticipant handles choosing a participant
// @Summary Select a participant
// @Description Owner accepts one participant; every other pending participant becomes Not Selected
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param userId path int true "Participant user ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse} "Participant selected"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Post or participant not found"
// @Failure 409 {object} dto.ErrorResponse "Already selected or post not pending"
// @Router /posts/{id}/participants/{userId}/select [put]
func (c *PostController) SelectParticipant(ctx *gin.Context) {
	postID, ok := parseIDParam(ctx, "id", "post")
	if !ok {
		return
	}
	userID, ok := parseIDParam(ctx, "userId", "user")
	if !ok {
		return
	}

	post, err := c.postService.SelectParticipant(ctx.Request.Context(), middleware.ActorFromContext(ctx), postID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// DeclineParticipant handles removing a participant
// @Summary Decline a participant
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param userId path int true "Participant user ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse} "Participant declined"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 409 {object} dto.ErrorResponse "Participant is selected"
// @Router /posts/{id}/participants/{userId} [delete]
func (c *PostController) DeclineParticipant(ctx *gin.Context) {
	postID, ok := parseIDParam(ctx, "id", "post")
	if !ok {
		return
	}
	userID, ok := parseIDParam(ctx, "userId", "user")
	if !ok {
		return
	}

	post, err := c.postService.DeclineParticipant(ctx.Request.Context(), middleware.ActorFromContext(ctx), postID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// MarkParticipantComplete handles the participant's completion
// @Summary Mark my side complete
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse} "Marked complete"
// @Failure 403 {object} dto.ErrorResponse "Not the selected participant"
// @Failure 409 {object} dto.ErrorResponse "Not in progress"
// @Router /posts/{id}/complete-participant [put]
func (c *PostController) MarkParticipantComplete(ctx *gin.Context) {
	c.lifecycleAction(ctx, c.postService.MarkParticipantComplete)
}

// ConfirmComplete handles the owner's confirmation
// @Summary Confirm completion
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse} "Post complete"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 409 {object} dto.ErrorResponse "Participant has not marked complete"
// @Router /posts/{id}/complete-owner [put]
func (c *PostController) ConfirmComplete(ctx *gin.Context) {
	c.lifecycleAction(ctx, c.postService.ConfirmComplete)
}

// CancelCollaboration handles cancelling an active collaboration
// @Summary Cancel collaboration
// @Description Returns the post to Pending. Requires the X-Confirm-Action: true header.
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param X-Confirm-Action header string true "Must be true"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse} "Collaboration cancelled"
// @Failure 403 {object} dto.ErrorResponse "Not the owner or selected participant"
// @Failure 409 {object} dto.ErrorResponse "Nothing to cancel"
// @Failure 428 {object} dto.ErrorResponse "Confirmation required"
// @Router /posts/{id}/cancel [put]
func (c *PostController) CancelCollaboration(ctx *gin.Context) {
	c.lifecycleAction(ctx, c.postService.CancelCollaboration)
}

func (c *PostController) lifecycleAction(ctx *gin.Context, action func(ctx context.Context, actor *models.Actor, postID int64) (*dto.PostResponse, error)) {
	postID, ok := parseIDParam(ctx, "id", "post")
	if !ok {
		return
	}

	post, err := action(ctx.Request.Context(), middleware.ActorFromContext(ctx), postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(post))
}

// DeletePost handles post deletion
// @Summary Delete a post
// @Description Deletes a Pending post with its participants. Requires the X-Confirm-Action: true header.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param X-Confirm-Action header string true "Must be true"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Post deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 409 {object} dto.ErrorResponse "Post is not pending"
// @Failure 428 {object} dto.ErrorResponse "Confirmation required"
// @Router /posts/{id} [delete]
func (c *PostController) DeletePost(ctx *gin.Context) {
	c.removal(ctx, c.postService.DeletePost, "Post deleted")
}

// RemoveFromMyPosts handles dropping a not-selected participation
// @Summary Remove from my posts
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Participation removed"
// @Failure 403 {object} dto.ErrorResponse "No participation"
// @Failure 409 {object} dto.ErrorResponse "Participation is not Not Selected"
// @Router /posts/{id}/participation [delete]
func (c *PostController) RemoveFromMyPosts(ctx *gin.Context) {
	c.removal(ctx, c.postService.RemoveFromMyPosts, "Participation removed")
}

// RemoveCompletedPost handles archiving a completed collaboration
// @Summary Remove a completed post
// @Description Requires the X-Confirm-Action: true header.
// @Tags participation
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param X-Confirm-Action header string true "Must be true"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Completed post removed"
// @Failure 403 {object} dto.ErrorResponse "No participation"
// @Failure 409 {object} dto.ErrorResponse "Collaboration not complete"
// @Failure 428 {object} dto.ErrorResponse "Confirmation required"
// @Router /posts/{id}/participation/completed [delete]
func (c *PostController) RemoveCompletedPost(ctx *gin.Context) {
	c.removal(ctx, c.postService.RemoveCompletedPost, "Completed post removed")
}

func (c *PostController) removal(ctx *gin.Context, action func(ctx context.Context, actor *models.Actor, postID int64) error, message string) {
	postID, ok := parseIDParam(ctx, "id", "post")
	if !ok {
		return
	}

	if err := action(ctx.Request.Context(), middleware.ActorFromContext(ctx), postID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SuccessResponse{Message: message}))
}
