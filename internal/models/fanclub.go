package models

import "time"

// Fanclub is a paid community owned by one user.
type Fanclub struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Purpose       string    `json:"purpose"`
	MonthlyFee    int       `json:"monthly_fee"`
	CoverImageURL string    `json:"cover_image_url"`
	OwnerID       string    `json:"owner_id"`
	OwnerName     string    `json:"owner_name"`
	MemberCount   int       `json:"member_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
