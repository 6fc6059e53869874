package models

import "time"

// ChatMessage is a plain-text message in a fan club chat.
type ChatMessage struct {
	ID        string    `json:"id"`
	FanclubID string    `json:"fanclub_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// IsSystem reports whether the message was generated rather than written by a user.
func (m ChatMessage) IsSystem() bool {
	return m.UserID == SystemUserID
}
