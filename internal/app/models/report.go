package models

import "time"

// ReportReason is why a post was flagged
type ReportReason string

const (
	ReportReasonSpam          ReportReason = "spam"
	ReportReasonInappropriate ReportReason = "inappropriate"
	ReportReasonHarassment    ReportReason = "harassment"
	ReportReasonScam          ReportReason = "scam"
	ReportReasonFalse         ReportReason = "false"
	ReportReasonOther         ReportReason = "other"
)

// Valid reports whether r is a known reason
func (r ReportReason) Valid() bool {
	switch r {
	case ReportReasonSpam, ReportReasonInappropriate, ReportReasonHarassment,
		ReportReasonScam, ReportReasonFalse, ReportReasonOther:
		return true
	}
	return false
}

// ReportResolution tracks moderation outcome
type ReportResolution string

const (
	ReportResolutionOpen    ReportResolution = "open"
	ReportResolutionKept    ReportResolution = "kept"
	ReportResolutionDeleted ReportResolution = "deleted"
)

// Valid reports whether r is a known resolution
func (r ReportResolution) Valid() bool {
	return r == ReportResolutionOpen || r == ReportResolutionKept || r == ReportResolutionDeleted
}

// Report defines a moderation flag raised against a post ('post_reports' table).
// PostID is a weak reference: the post may already be gone.
type Report struct {
	ID         int64            `json:"id" db:"id"`
	PostID     int64            `json:"postId" db:"post_id"`
	PostTitle  string           `json:"postTitle" db:"post_title"`
	ReporterID *int64           `json:"reporterId,omitempty" db:"reporter_id"`
	Reason     ReportReason     `json:"reason" db:"reason" example:"spam"`
	Comments   string           `json:"comments" db:"comments"`
	Resolution ReportResolution `json:"resolution" db:"resolution" example:"open"`
	ResolvedBy *int64           `json:"resolvedBy,omitempty" db:"resolved_by"`
	ResolvedAt *time.Time       `json:"resolvedAt,omitempty" db:"resolved_at"`
	CreatedAt  time.Time        `json:"createdAt" db:"created_at"`
}

// IsOpen reports whether the report still awaits an admin decision
func (r *Report) IsOpen() bool {
	return r.Resolution == ReportResolutionOpen
}
