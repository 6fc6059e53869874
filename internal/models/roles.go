package models

import "time"

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// SystemUserID marks synthetic messages that nobody may delete.
const SystemUserID = "system"

// Membership associates a user with a fan club.
type Membership struct {
	FanclubID string    `json:"fanclub_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}
