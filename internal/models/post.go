package models

import "time"

const (
	VisibilityPublic  = "public"
	VisibilityMembers = "members"
)

// Post is an article published inside a fan club. Content is HTML.
type Post struct {
	ID               string    `json:"id"`
	FanclubID        string    `json:"fanclub_id"`
	AuthorID         string    `json:"author_id"`
	AuthorName       string    `json:"author_name"`
	Title            string    `json:"title"`
	Excerpt          string    `json:"excerpt"`
	Content          string    `json:"content"`
	FeaturedImageURL string    `json:"featured_image_url"`
	Visibility       string    `json:"visibility"`
	LikeCount        int       `json:"like_count"`
	IsLiked          bool      `json:"is_liked"`
	Locked           bool      `json:"locked,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
