package models

import "time"

// PostType distinguishes requests from offers
type PostType string

const (
	PostTypeRequest PostType = "request"
	PostTypeOffer   PostType = "offer"
)

// Valid reports whether t is a known post type
func (t PostType) Valid() bool {
	return t == PostTypeRequest || t == PostTypeOffer
}

// Category is the marketplace section a post belongs to
type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryHousing    Category = "housing"
	CategoryTutoring   Category = "tutoring"
	CategoryLendBorrow Category = "lend-borrow"
)

// Categories lists every category in display order
var Categories = []Category{CategoryGeneral, CategoryHousing, CategoryTutoring, CategoryLendBorrow}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PostStatus is the post-level lifecycle marker
type PostStatus string

const (
	PostStatusPending         PostStatus = "Pending"
	PostStatusInProgress      PostStatus = "In Progress"
	PostStatusWaitForComplete PostStatus = "Wait for Complete"
	PostStatusComplete        PostStatus = "Complete"
)

// Valid reports whether s is a known post status
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusPending, PostStatusInProgress, PostStatusWaitForComplete, PostStatusComplete:
		return true
	}
	return false
}

// PostContent holds the owner-editable fields of a post
type PostContent struct {
	Title        string   `json:"title" db:"title" example:"Need a calculus tutor"`
	Description  string   `json:"description" db:"description" example:"Two sessions a week before the midterm"`
	PostType     PostType `json:"postType" db:"post_type" example:"request"`
	Category     Category `json:"category" db:"category" example:"tutoring"`
	Location     string   `json:"location" db:"location" example:"Snell Library"`
	Availability string   `json:"availability" db:"availability" example:"2025-03-01,2025-03-15"`
}

// Post defines the post model based on the 'posts' table
type Post struct {
	ID     int64 `json:"id" db:"id" example:"1780000000000000000"`
	UserID int64 `json:"userId" db:"user_id" example:"7"`
	PostContent
	Status                PostStatus `json:"status" db:"status" example:"Pending"`
	SelectedParticipantID *int64     `json:"selectedParticipantId" db:"selected_participant_id"`
	OwnerCompleted        bool       `json:"ownerCompleted" db:"owner_completed"`
	ParticipantCompleted  bool       `json:"participantCompleted" db:"participant_completed"`
	Version               int64      `json:"-" db:"version"`
	CreatedAt             time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsOwnedBy reports whether userID owns the post
func (p *Post) IsOwnedBy(userID int64) bool {
	return p.UserID == userID
}

// HasSelection reports whether a participant is currently selected
func (p *Post) HasSelection() bool {
	return p.SelectedParticipantID != nil
}
