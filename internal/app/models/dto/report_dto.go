package dto

import (
	"time"

	"github.com/huskybridge/marketplace/internal/app/models"
)

// CreateReportRequest is the body of POST /posts/{id}/reports
type CreateReportRequest struct {
	Reason   string `json:"reason" binding:"required,reportreason" example:"spam"`
	Comments string `json:"comments" binding:"max=1000" example:"Same post three times today"`
}

// ReportResponse represents a moderation report
type ReportResponse struct {
	ID         int64                   `json:"id" example:"1780000000000000001"`
	PostID     int64                   `json:"postId" example:"1780000000000000000"`
	PostTitle  string                  `json:"postTitle" example:"Need a calculus tutor"`
	ReporterID *int64                  `json:"reporterId,omitempty"`
	Reason     models.ReportReason     `json:"reason" example:"spam"`
	Comments   string                  `json:"comments"`
	Resolution models.ReportResolution `json:"resolution" example:"open"`
	ResolvedBy *int64                  `json:"resolvedBy,omitempty"`
	ResolvedAt *time.Time              `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time               `json:"createdAt"`
}

// ReportDetailResponse is a report with the reported post, when it still exists
type ReportDetailResponse struct {
	Report ReportResponse `json:"report"`
	Post   *PostResponse  `json:"post,omitempty"`
}

// ReportListResponse represents a paginated list of reports
type ReportListResponse struct {
	Reports    []ReportResponse `json:"reports"`
	Pagination PaginationInfo   `json:"pagination"`
}

// FromReport converts a models.Report to a ReportResponse
func FromReport(r *models.Report) ReportResponse {
	return ReportResponse{
		ID:         r.ID,
		PostID:     r.PostID,
		PostTitle:  r.PostTitle,
		ReporterID: r.ReporterID,
		Reason:     r.Reason,
		Comments:   r.Comments,
		Resolution: r.Resolution,
		ResolvedBy: r.ResolvedBy,
		ResolvedAt: r.ResolvedAt,
		CreatedAt:  r.CreatedAt,
	}
}
