// Package lifecycle implements the post participation state machine. It is
// storage free: callers load an Aggregate, run one operation, and persist the
// returned Mutation inside the same transaction.
package lifecycle

import (
	"time"

	"github.com/huskybridge/marketplace/internal/app/models"
)

// Aggregate is a post together with every participant record attached to it.
type Aggregate struct {
	Post         *models.Post
	Participants []*models.Participant
}

// NewAggregate creates an Aggregate from loaded rows
func NewAggregate(post *models.Post, participants []*models.Participant) *Aggregate {
	return &Aggregate{Post: post, Participants: participants}
}

// Selected returns the participant the owner accepted, or nil.
func (a *Aggregate) Selected() *models.Participant {
	if a.Post.SelectedParticipantID == nil {
		return nil
	}
	p, _ := a.find(*a.Post.SelectedParticipantID)
	return p
}

func (a *Aggregate) find(userID int64) (*models.Participant, int) {
	for i, p := range a.Participants {
		if p.UserID == userID {
			return p, i
		}
	}
	return nil, -1
}

func (a *Aggregate) drop(index int) {
	a.Participants = append(a.Participants[:index], a.Participants[index+1:]...)
}

// refresh recomputes the post status. It is the only place Post.Status is written
// after creation.
func (a *Aggregate) refresh(now time.Time) {
	a.Post.Status = DeriveStatus(a.Post, a.Selected())
	a.Post.UpdatedAt = now
}

// Mutation describes the rows an operation changed.
type Mutation struct {
	PostChanged bool
	DeletePost  bool
	Added       []*models.Participant
	Updated     []*models.Participant
	Removed     []int64
}

func (m *Mutation) update(p *models.Participant) {
	m.Updated = append(m.Updated, p)
}
