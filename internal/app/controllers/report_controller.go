package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/app/models/dto"
	"github.com/huskybridge/marketplace/internal/app/services"
	"github.com/huskybridge/marketplace/internal/middleware"
	"github.com/huskybridge/marketplace/internal/pkg/helpers"
)

// ReportController handles post reports and their moderation
type ReportController struct {
	reportService services.ReportService
	logger        zerolog.Logger
}

// NewReportController creates a new ReportController
func NewReportController(reportService services.ReportService, logger zerolog.Logger) *ReportController {
	return &ReportController{
		reportService: reportService,
		logger:        logger,
	}
}

// ReportPost handles flagging a post
// @Summary Report a post
// @Description Flags a post for moderation. Anonymous reports are accepted.
// @Tags reports
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body dto.CreateReportRequest true "Report"
// @Success 201 {object} dto.APIResponse{data=dto.ReportResponse} "Report filed"
// @Failure 400 {object} dto.ErrorResponse "Invalid reason"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/reports [post]
func (c *ReportController) ReportPost(ctx *gin.Context) {
	postID, ok := parseIDParam(ctx, "id", "post")
	if !ok {
		return
	}
	var req dto.CreateReportRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	report, err := c.reportService.ReportPost(ctx.Request.Context(), middleware.ActorFromContext(ctx), postID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("reportID", report.ID).Int64("postID", postID).Str("reason", string(report.Reason)).Msg("Post reported")
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(report))
}

// ListReports handles the moderation queue
// @Summary List reports
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param resolution query string false "open, kept or deleted"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.ReportListResponse} "Reports"
// @Failure 403 {object} dto.ErrorResponse "Administrator role required"
// @Router /reports [get]
func (c *ReportController) ListReports(ctx *gin.Context) {
	var q dto.ListReportsQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	reports, err := c.reportService.ListReports(ctx.Request.Context(), middleware.ActorFromContext(ctx),
		models.ReportResolution(q.Resolution), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(reports))
}

// GetReport handles report detail
// @Summary Get a report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param reportId path int true "Report ID"
// @Success 200 {object} dto.APIResponse{data=dto.ReportDetailResponse} "Report"
// @Failure 403 {object} dto.ErrorResponse "Administrator role required"
// @Failure 404 {object} dto.ErrorResponse "Report not found"
// @Router /reports/{reportId} [get]
func (c *ReportController) GetReport(ctx *gin.Context) {
	reportID, ok := parseIDParam(ctx, "reportId", "report")
	if !ok {
		return
	}

	report, err := c.reportService.GetReport(ctx.Request.Context(), middleware.ActorFromContext(ctx), reportID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report))
}

// KeepPost handles dismissing a report
// @Summary Keep the reported post
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param reportId path int true "Report ID"
// @Success 200 {object} dto.APIResponse{data=dto.ReportResponse} "Report resolved"
// @Failure 403 {object} dto.ErrorResponse "Administrator role required"
// @Failure 409 {object} dto.ErrorResponse "Report already resolved"
// @Router /reports/{reportId}/keep [post]
func (c *ReportController) KeepPost(ctx *gin.Context) {
	reportID, ok := parseIDParam(ctx, "reportId", "report")
	if !ok {
		return
	}

	report, err := c.reportService.ResolveKeep(ctx.Request.Context(), middleware.ActorFromContext(ctx), reportID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report))
}

// DeletePost handles removing a reported post
// @Summary Delete the reported post
// @Description Deletes the post in any status and resolves every open report against it
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param reportId path int true "Report ID"
// @Success 200 {object} dto.APIResponse{data=dto.ReportResponse} "Post deleted"
// @Failure 403 {object} dto.ErrorResponse "Administrator role required"
// @Failure 409 {object} dto.ErrorResponse "Report already resolved"
// @Router /reports/{reportId}/delete [post]
func (c *ReportController) DeletePost(ctx *gin.Context) {
	reportID, ok := parseIDParam(ctx, "reportId", "report")
	if !ok {
		return
	}

	report, err := c.reportService.ResolveDelete(ctx.Request.Context(), middleware.ActorFromContext(ctx), reportID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("reportID", reportID).Int64("postID", report.PostID).Msg("Reported post deleted")
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(report))
}
