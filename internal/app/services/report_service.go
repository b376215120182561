package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/huskybridge/marketplace/internal/app/auth"
	"github.com/huskybridge/marketplace/internal/app/lifecycle"
	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/app/models/dto"
	"github.com/huskybridge/marketplace/internal/app/repositories"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
	"github.com/huskybridge/marketplace/internal/pkg/helpers"
	"github.com/huskybridge/marketplace/internal/pkg/id"
)

// ReportService defines the moderation operations
type ReportService interface {
	ReportPost(ctx context.Context, actor *models.Actor, postID int64, req *dto.CreateReportRequest) (*dto.ReportResponse, error)
	ListReports(ctx context.Context, actor *models.Actor, resolution models.ReportResolution, page, size int) (*dto.ReportListResponse, error)
	GetReport(ctx context.Context, actor *models.Actor, reportID int64) (*dto.ReportDetailResponse, error)
	ResolveKeep(ctx context.Context, actor *models.Actor, reportID int64) (*dto.ReportResponse, error)
	ResolveDelete(ctx context.Context, actor *models.Actor, reportID int64) (*dto.ReportResponse, error)
}

// reportServiceImpl implements ReportService
type reportServiceImpl struct {
	reportRepo  repositories.IReportRepository
	postRepo    repositories.IPostRepository
	postService PostService
	txManager   repositories.TxManager
	authz       *auth.AuthorizationService
	newID       id.Generator
	now         func() time.Time
	tracer      trace.Tracer
	logger      zerolog.Logger
}

// ReportServiceDeps groups the collaborators of the report service
type ReportServiceDeps struct {
	ReportRepo  repositories.IReportRepository
	PostRepo    repositories.IPostRepository
	PostService PostService
	TxManager   repositories.TxManager
	Authz       *auth.AuthorizationService
	NewID       id.Generator
	Clock       func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(deps ReportServiceDeps, logger zerolog.Logger) ReportService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	newID := deps.NewID
	if newID == nil {
		newID = id.New
	}

	return &reportServiceImpl{
		reportRepo:  deps.ReportRepo,
		postRepo:    deps.PostRepo,
		postService: deps.PostService,
		txManager:   deps.TxManager,
		authz:       deps.Authz,
		newID:       newID,
		now:         clock,
		tracer:      otel.Tracer(tracerName),
		logger:      logger.With().Str("service", "report").Logger(),
	}
}

// ReportPost flags a post for moderation. Anonymous reports are allowed and the
// post lifecycle is not touched.
func (s *reportServiceImpl) ReportPost(ctx context.Context, actor *models.Actor, postID int64, req *dto.CreateReportRequest) (*dto.ReportResponse, error) {
	reason := models.ReportReason(strings.ToLower(strings.TrimSpace(req.Reason)))
	if !reason.Valid() {
		return nil, apperrors.NewValidationError("reason", "unknown report reason "+req.Reason)
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:         s.newID(),
		PostID:     post.ID,
		PostTitle:  post.Title,
		Reason:     reason,
		Comments:   strings.TrimSpace(req.Comments),
		Resolution: models.ReportResolutionOpen,
		CreatedAt:  s.now().UTC(),
	}
	if actor != nil {
		reporter := actor.UserID
		report.ReporterID = &reporter
	}

	if err := s.reportRepo.Create(ctx, report); err != nil {
		s.logger.Error().Err(err).Int64("postID", postID).Msg("Failed to create report")
		return nil, fmt.Errorf("error creating report: %w", err)
	}

	s.logger.Info().
		Int64("reportID", report.ID).
		Int64("postID", postID).
		Str("reason", string(reason)).
		Bool("anonymous", actor == nil).
		Msg("Post reported")

	resp := dto.FromReport(report)
	return &resp, nil
}

// ListReports lists reports for administrators
func (s *reportServiceImpl) ListReports(ctx context.Context, actor *models.Actor, resolution models.ReportResolution, page, size int) (*dto.ReportListResponse, error) {
	if err := s.authz.ValidateAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if resolution != "" && !resolution.Valid() {
		return nil, apperrors.NewValidationError("resolution", "resolution must be open, kept or deleted")
	}

	reports, err := s.reportRepo.List(ctx, resolution)
	if err != nil {
		return nil, fmt.Errorf("error listing reports: %w", err)
	}

	pageReports, pagination := helpers.Paginate(reports, page, size)
	responses := make([]dto.ReportResponse, 0, len(pageReports))
	for _, r := range pageReports {
		responses = append(responses, dto.FromReport(r))
	}

	return &dto.ReportListResponse{Reports: responses, Pagination: pagination}, nil
}

// GetReport returns a report with the reported post when it still exists
func (s *reportServiceImpl) GetReport(ctx context.Context, actor *models.Actor, reportID int64) (*dto.ReportDetailResponse, error) {
	if err := s.authz.ValidateAdmin(ctx, actor); err != nil {
		return nil, err
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	detail := &dto.ReportDetailResponse{Report: dto.FromReport(report)}
	post, err := s.postService.GetPost(ctx, actor, report.PostID)
	switch {
	case err == nil:
		detail.Post = post
	case errors.Is(err, apperrors.ErrResourceNotFound):
		// the post was already removed
	default:
		return nil, err
	}
	return detail, nil
}

// ResolveKeep closes an open report and leaves the post alone
func (s *reportServiceImpl) ResolveKeep(ctx context.Context, actor *models.Actor, reportID int64) (*dto.ReportResponse, error) {
	return s.resolve(ctx, "keep", actor, reportID, func(ctx context.Context, repos repositories.TxRepositories, report *models.Report, admin int64, at time.Time) error {
		return markResolved(ctx, repos, report, models.ReportResolutionKept, admin, at)
	})
}

// ResolveDelete closes an open report and deletes the post with its participants
// whatever its lifecycle status. Other open reports on the post are closed too.
func (s *reportServiceImpl) ResolveDelete(ctx context.Context, actor *models.Actor, reportID int64) (*dto.ReportResponse, error) {
	return s.resolve(ctx, "delete", actor, reportID, func(ctx context.Context, repos repositories.TxRepositories, report *models.Report, admin int64, at time.Time) error {
		post, err := repos.Posts().GetByIDForUpdate(ctx, report.PostID)
		switch {
		case err == nil:
			participants, err := repos.Participants().ListByPost(ctx, post.ID)
			if err != nil {
				return err
			}
			agg := lifecycle.NewAggregate(post, participants)
			if err := persistMutation(ctx, repos, agg, lifecycle.ForceDelete(agg)); err != nil {
				return err
			}
			s.logger.Info().Int64("postID", post.ID).Int("participants", len(participants)).Msg("Post removed by moderation")
		case errors.Is(err, apperrors.ErrResourceNotFound):
			s.logger.Debug().Int64("postID", report.PostID).Msg("Reported post already gone")
		default:
			return err
		}

		if err := markResolved(ctx, repos, report, models.ReportResolutionDeleted, admin, at); err != nil {
			return err
		}
		closed, err := repos.Reports().ResolveOpenByPost(ctx, report.PostID, models.ReportResolutionDeleted, admin, at)
		if err != nil {
			return err
		}
		if closed > 0 {
			s.logger.Info().Int64("postID", report.PostID).Int64("reports", closed).Msg("Closed sibling reports")
		}
		return nil
	})
}

type resolution func(ctx context.Context, repos repositories.TxRepositories, report *models.Report, admin int64, at time.Time) error

func (s *reportServiceImpl) resolve(ctx context.Context, name string, actor *models.Actor, reportID int64, apply resolution) (*dto.ReportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "moderation."+name, trace.WithAttributes(attribute.Int64("report.id", reportID)))
	defer span.End()

	if err := s.authz.ValidateAdmin(ctx, actor); err != nil {
		span.SetStatus(codes.Error, apperrors.MessageOf(err))
		return nil, err
	}

	var resolved *models.Report
	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repositories.TxRepositories) error {
		report, err := repos.Reports().GetByIDForUpdate(ctx, reportID)
		if err != nil {
			return err
		}
		if !report.IsOpen() {
			return apperrors.NewInvalidStateError(fmt.Sprintf("report is already %s", report.Resolution))
		}
		if err := apply(ctx, repos, report, actor.UserID, s.now().UTC()); err != nil {
			return err
		}
		resolved = report
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperrors.MessageOf(err))
		if isRejection(err) {
			s.logger.Warn().Err(err).Int64("reportID", reportID).Str("action", name).Msg("Report resolution rejected")
		} else {
			s.logger.Error().Err(err).Int64("reportID", reportID).Str("action", name).Msg("Report resolution failed")
		}
		return nil, err
	}

	s.logger.Info().
		Int64("reportID", reportID).
		Int64("postID", resolved.PostID).
		Int64("adminID", actor.UserID).
		Str("resolution", string(resolved.Resolution)).
		Msg("Report resolved")

	resp := dto.FromReport(resolved)
	return &resp, nil
}

func markResolved(ctx context.Context, repos repositories.TxRepositories, report *models.Report, outcome models.ReportResolution, admin int64, at time.Time) error {
	report.Resolution = outcome
	report.ResolvedBy = &admin
	report.ResolvedAt = &at
	return repos.Reports().Update(ctx, report)
}
