package models

import "time"

// ParticipantStatus is a participant's personal standing on a post
type ParticipantStatus string

const (
	ParticipantStatusPending         ParticipantStatus = "Pending"
	ParticipantStatusInProgress      ParticipantStatus = "In Progress"
	ParticipantStatusWaitForComplete ParticipantStatus = "Wait for Complete"
	ParticipantStatusComplete        ParticipantStatus = "Complete"
	ParticipantStatusNotSelected     ParticipantStatus = "Not Selected"
)

// IsSelectedLineage reports whether the status belongs to the single selected participant
func (s ParticipantStatus) IsSelectedLineage() bool {
	switch s {
	case ParticipantStatusInProgress, ParticipantStatusWaitForComplete, ParticipantStatusComplete:
		return true
	}
	return false
}

// IsRemovable reports whether a record in this status may be deleted outright
func (s ParticipantStatus) IsRemovable() bool {
	return s == ParticipantStatusPending || s == ParticipantStatusNotSelected
}

// IsSelectable reports whether the owner may choose a participant in this status
func (s ParticipantStatus) IsSelectable() bool {
	return s == ParticipantStatusPending || s == ParticipantStatusNotSelected
}

// Participant defines one user's interest in a post ('post_participants' table)
type Participant struct {
	PostID      int64             `json:"postId" db:"post_id"`
	UserID      int64             `json:"userId" db:"user_id"`
	Status      ParticipantStatus `json:"status" db:"status" example:"Pending"`
	CompletedAt *time.Time        `json:"completedAt,omitempty" db:"completed_at"`
	CreatedAt   time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time         `json:"updatedAt" db:"updated_at"`
}
