package models

import "strings"

// RoleType defines the user role type
type RoleType string

const (
	RoleUser  RoleType = "USER"
	RoleAdmin RoleType = "ADMIN"
)

// IsAdmin reports whether the role is the administrator role. Roles coming
// from tokens or legacy rows are not guaranteed to be upper case.
func (r RoleType) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(string(r)), string(RoleAdmin))
}

// Actor is the identity every lifecycle operation is performed as.
type Actor struct {
	UserID int64
	Role   RoleType
}

// NewActor creates an Actor
func NewActor(userID int64, role RoleType) Actor {
	return Actor{UserID: userID, Role: role}
}

// IsAdmin reports whether the actor holds the administrator role
func (a Actor) IsAdmin() bool {
	return a.Role.IsAdmin()
}

// Relationship describes how a viewer relates to a post.
type Relationship string

const (
	RelationshipOwner       Relationship = "owner"
	RelationshipSelected    Relationship = "selected"
	RelationshipParticipant Relationship = "participant"
	RelationshipNone        Relationship = "none"
)
