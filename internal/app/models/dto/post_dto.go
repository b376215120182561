package dto

import (
	"time"

	"github.com/huskybridge/marketplace/internal/app/models"
)

// PostRequest is the body of POST /posts and PUT /posts/{id}
type PostRequest struct {
	Title        string `json:"title" binding:"required,min=3,max=120" example:"Need a calculus tutor"`
	Description  string `json:"description" binding:"max=2000" example:"Two sessions a week before the midterm"`
	PostType     string `json:"postType" binding:"required,posttype" example:"request"`
	Category     string `json:"category" binding:"required,category" example:"tutoring"`
	Location     string `json:"location" binding:"max=200" example:"Snell Library"`
	Availability string `json:"availability" binding:"required,availability" example:"2025-03-01,2025-03-15"`
}

// ToContent converts the request into editable post content
func (r PostRequest) ToContent() models.PostContent {
	return models.PostContent{
		Title:        r.Title,
		Description:  r.Description,
		PostType:     models.PostType(r.PostType),
		Category:     models.Category(r.Category),
		Location:     r.Location,
		Availability: r.Availability,
	}
}

// PostResponse represents a post as seen by a particular viewer
type PostResponse struct {
	ID                    int64                     `json:"id" example:"1780000000000000000"`
	Owner                 PublicProfile             `json:"owner"`
	Title                 string                    `json:"title" example:"Need a calculus tutor"`
	Description           string                    `json:"description"`
	PostType              models.PostType           `json:"postType" example:"request"`
	Category              models.Category           `json:"category" example:"tutoring"`
	Location              string                    `json:"location" example:"Snell Library"`
	Availability          string                    `json:"availability" example:"2025-03-01,2025-03-15"`
	Status                models.PostStatus         `json:"status" example:"Pending"`
	DisplayStatus         string                    `json:"displayStatus" example:"Pending"`
	SelectedParticipantID *int64                    `json:"selectedParticipantId,omitempty"`
	OwnerCompleted        bool                      `json:"ownerCompleted"`
	ParticipantCompleted  bool                      `json:"participantCompleted"`
	ParticipantCount      int                       `json:"participantCount" example:"3"`
	UserRelationship      models.Relationship       `json:"userRelationship" example:"none"`
	UserParticipantStatus *models.ParticipantStatus `json:"userParticipantStatus,omitempty"`
	CreatedAt             time.Time                 `json:"createdAt"`
	UpdatedAt             time.Time                 `json:"updatedAt"`
}

// PostListResponse represents a paginated list of posts
type PostListResponse struct {
	Posts      []PostResponse `json:"posts"`
	Pagination PaginationInfo `json:"pagination"`
}

// ParticipantResponse represents one participant of a post
type ParticipantResponse struct {
	User        PublicProfile            `json:"user"`
	Status      models.ParticipantStatus `json:"status" example:"Pending"`
	CompletedAt *time.Time               `json:"completedAt,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
}

// FromParticipant converts a models.Participant to a ParticipantResponse
func FromParticipant(p *models.Participant, user *models.User) ParticipantResponse {
	return ParticipantResponse{
		User:        ToPublicProfile(p.UserID, user),
		Status:      p.Status,
		CompletedAt: p.CompletedAt,
		CreatedAt:   p.CreatedAt,
	}
}
