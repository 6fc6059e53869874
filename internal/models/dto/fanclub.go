package dto

type CreateFanclubRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Purpose       string `json:"purpose"`
	MonthlyFee    int    `json:"monthly_fee"`
	CoverImageURL string `json:"cover_image_url"`
}

type CreatePostRequest struct {
	Title            string `json:"title"`
	Excerpt          string `json:"excerpt"`
	Content          string `json:"content"`
	FeaturedImageURL string `json:"featured_image_url"`
	Visibility       string `json:"visibility"`
}

type ChatMessageRequest struct {
	Message string `json:"message"`
}

type MembershipResponse struct {
	IsMember bool   `json:"is_member"`
	Role     string `json:"role,omitempty"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
