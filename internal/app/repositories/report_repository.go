package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/db"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
	"github.com/huskybridge/marketplace/internal/pkg/dberrors"
	"github.com/huskybridge/marketplace/internal/pkg/logger"
)

var reportColumns = []string{
	"id", "post_id", "post_title", "reporter_id", "reason", "comments",
	"resolution", "resolved_by", "resolved_at", "created_at",
}

// ReportRepository handles post report database operations
type ReportRepository struct {
	db db.DBTX
	sb squirrel.StatementBuilderType
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db db.DBTX) *ReportRepository {
	return &ReportRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanReport(row pgx.Row) (*models.Report, error) {
	r := &models.Report{}
	err := row.Scan(&r.ID, &r.PostID, &r.PostTitle, &r.ReporterID, &r.Reason, &r.Comments,
		&r.Resolution, &r.ResolvedBy, &r.ResolvedAt, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Create inserts a new report. The id is assigned by the caller.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	sql, args, err := r.sb.Insert("post_reports").
		Columns(reportColumns...).
		Values(report.ID, report.PostID, report.PostTitle, report.ReporterID, report.Reason, report.Comments,
			report.Resolution, report.ResolvedBy, report.ResolvedAt, report.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create report query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("postID", report.PostID).Msg("Error executing create report query")
		return fmt.Errorf("error creating report: %w", err)
	}
	return nil
}

func (r *ReportRepository) getOne(ctx context.Context, id int64, suffix string) (*models.Report, error) {
	builder := r.sb.Select(reportColumns...).From("post_reports").Where(squirrel.Eq{"id": id})
	if suffix != "" {
		builder = builder.Suffix(suffix)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get report query: %w", err)
	}

	report, err := scanReport(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrReportNotFound
		}
		return nil, fmt.Errorf("error retrieving report %d: %w", id, err)
	}
	return report, nil
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*models.Report, error) {
	return r.getOne(ctx, id, "")
}

// GetByIDForUpdate retrieves a report by ID and locks its row
func (r *ReportRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Report, error) {
	return r.getOne(ctx, id, "FOR UPDATE")
}

// List retrieves reports newest first, optionally narrowed to one resolution
func (r *ReportRepository) List(ctx context.Context, resolution models.ReportResolution) ([]*models.Report, error) {
	builder := r.sb.Select(reportColumns...).From("post_reports")
	if resolution != "" {
		builder = builder.Where(squirrel.Eq{"resolution": resolution})
	}

	sql, args, err := builder.OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list reports query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*models.Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning report row: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report rows: %w", err)
	}
	return reports, nil
}

// Update writes the resolution columns of a report
func (r *ReportRepository) Update(ctx context.Context, report *models.Report) error {
	sql, args, err := r.sb.Update("post_reports").
		Set("resolution", report.Resolution).
		Set("resolved_by", report.ResolvedBy).
		Set("resolved_at", report.ResolvedAt).
		Where(squirrel.Eq{"id": report.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update report query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating report: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrReportNotFound
	}
	return nil
}

// ResolveOpenByPost resolves every open report against postID
func (r *ReportRepository) ResolveOpenByPost(ctx context.Context, postID int64, resolution models.ReportResolution, resolvedBy int64, at time.Time) (int64, error) {
	sql, args, err := r.sb.Update("post_reports").
		Set("resolution", resolution).
		Set("resolved_by", resolvedBy).
		Set("resolved_at", at).
		Where(squirrel.Eq{"post_id": postID, "resolution": models.ReportResolutionOpen}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build resolve reports query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error resolving reports for post %d: %w", postID, err)
	}
	return cmdTag.RowsAffected(), nil
}
