package dto

// ConfirmActionHeader must be "true" on destructive requests
const ConfirmActionHeader = "X-Confirm-Action"

// ListPostsQuery represents the query string of GET /posts
type ListPostsQuery struct {
	PostType  string   `form:"postType" binding:"omitempty,posttype"`
	Category  []string `form:"category" binding:"omitempty,dive,category"`
	Status    string   `form:"status"`
	Location  string   `form:"location" binding:"max=200"`
	DateRange string   `form:"dateRange" binding:"omitempty,oneof=all 1h 24h 7d 30d"`
	Sort      string   `form:"sort" binding:"omitempty,oneof=latest oldest"`
	Query     string   `form:"q" binding:"max=120"`
}

// ListReportsQuery represents the query string of GET /reports
type ListReportsQuery struct {
	Resolution string `form:"resolution" binding:"omitempty,oneof=open kept deleted"`
}
