package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/app/models/dto"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
)

func (e *testEnv) report(t *testing.T, reporter *models.Actor, postID int64, reason string) int64 {
	t.Helper()
	resp, err := e.reports.ReportPost(context.Background(), reporter, postID, &dto.CreateReportRequest{Reason: reason})
	require.NoError(t, err)
	return resp.ID
}

func TestReportPost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	postID := env.createPost(t)
	env.participate(t, postID, env.alice)

	anonymous, err := env.reports.ReportPost(ctx, nil, postID, &dto.CreateReportRequest{Reason: "Spam", Comments: "  posted twice  "})
	require.NoError(t, err)
	assert.Nil(t, anonymous.ReporterID)
	assert.Equal(t, models.ReportReasonSpam, anonymous.Reason)
	assert.Equal(t, "posted twice", anonymous.Comments)
	assert.Equal(t, "Need a calculus tutor", anonymous.PostTitle)
	assert.Equal(t, models.ReportResolutionOpen, anonymous.Resolution)

	signed, err := env.reports.ReportPost(ctx, &env.bob, postID, &dto.CreateReportRequest{Reason: "scam"})
	require.NoError(t, err)
	require.NotNil(t, signed.ReporterID)
	assert.Equal(t, env.bob.UserID, *signed.ReporterID)

	// reporting never touches the lifecycle
	post, err := env.posts.GetPost(ctx, &env.owner, postID)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPending, post.Status)
	assert.Equal(t, 1, post.ParticipantCount)

	_, err = env.reports.ReportPost(ctx, nil, postID, &dto.CreateReportRequest{Reason: "boring"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.reports.ReportPost(ctx, nil, 424242, &dto.CreateReportRequest{Reason: "spam"})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestModerationRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	postID := env.createPost(t)
	reportID := env.report(t, nil, postID, "spam")

	_, err := env.reports.ListReports(ctx, nil, "", 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, err = env.reports.ListReports(ctx, &env.alice, "", 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = env.reports.ResolveKeep(ctx, &env.alice, reportID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// the token claims admin but the stored account does not
	forged := models.NewActor(env.bob.UserID, "admin")
	_, err = env.reports.ResolveDelete(ctx, &forged, reportID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// role names are compared case-insensitively
	lower := models.NewActor(env.admin.UserID, "admin")
	list, err := env.reports.ListReports(ctx, &lower, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, list.Reports, 1)
}

func TestResolveKeep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	postID := env.createPost(t)
	reportID := env.report(t, nil, postID, "other")

	resp, err := env.reports.ResolveKeep(ctx, &env.admin, reportID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolutionKept, resp.Resolution)
	require.NotNil(t, resp.ResolvedBy)
	assert.Equal(t, env.admin.UserID, *resp.ResolvedBy)
	require.NotNil(t, resp.ResolvedAt)

	_, err = env.reports.ResolveKeep(ctx, &env.admin, reportID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	_, err = env.reports.ResolveDelete(ctx, &env.admin, reportID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = env.posts.GetPost(ctx, nil, postID)
	assert.NoError(t, err)
}

func TestResolveDeleteRemovesPostInAnyStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	postID := env.createPost(t)
	env.participate(t, postID, env.alice, env.bob)
	_, err := env.posts.SelectParticipant(ctx, &env.owner, postID, env.alice.UserID)
	require.NoError(t, err)

	first := env.report(t, nil, postID, "spam")
	second := env.report(t, &env.bob, postID, "scam")
	otherPost := env.createPost(t)
	unrelated := env.report(t, nil, otherPost, "spam")

	resp, err := env.reports.ResolveDelete(ctx, &env.admin, first)
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolutionDeleted, resp.Resolution)

	_, err = env.posts.GetPost(ctx, nil, postID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
	ps, err := env.store.Participants().ListByPost(ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, ps)

	sibling, err := env.store.Reports().GetByID(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolutionDeleted, sibling.Resolution)

	untouched, err := env.store.Reports().GetByID(ctx, unrelated)
	require.NoError(t, err)
	assert.True(t, untouched.IsOpen())

	detail, err := env.reports.GetReport(ctx, &env.admin, first)
	require.NoError(t, err)
	assert.Nil(t, detail.Post)
	assert.Equal(t, "Need a calculus tutor", detail.Report.PostTitle)
}

func TestResolveDeleteWhenPostAlreadyGone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	postID := env.createPost(t)
	reportID := env.report(t, nil, postID, "spam")

	require.NoError(t, env.posts.DeletePost(ctx, &env.owner, postID))

	resp, err := env.reports.ResolveDelete(ctx, &env.admin, reportID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportResolutionDeleted, resp.Resolution)
}

func TestListAndGetReports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	postID := env.createPost(t)
	kept := env.report(t, nil, postID, "spam")
	open := env.report(t, nil, postID, "harassment")

	_, err := env.reports.ResolveKeep(ctx, &env.admin, kept)
	require.NoError(t, err)

	openOnly, err := env.reports.ListReports(ctx, &env.admin, models.ReportResolutionOpen, 1, 10)
	require.NoError(t, err)
	require.Len(t, openOnly.Reports, 1)
	assert.Equal(t, open, openOnly.Reports[0].ID)

	all, err := env.reports.ListReports(ctx, &env.admin, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, all.Reports, 2)
	assert.Equal(t, int64(2), all.Pagination.TotalItems)

	_, err = env.reports.ListReports(ctx, &env.admin, "archived", 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	detail, err := env.reports.GetReport(ctx, &env.admin, open)
	require.NoError(t, err)
	require.NotNil(t, detail.Post)
	assert.Equal(t, postID, detail.Post.ID)

	_, err = env.reports.GetReport(ctx, &env.admin, 99)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
