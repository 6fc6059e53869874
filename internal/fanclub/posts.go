package fanclub

import (
	"context"
	"fmt"
	"strings"

	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/richtext"
)

// CreatePostInput carries the fields of the post editor. Content is HTML.
type CreatePostInput struct {
	Title            string
	Excerpt          string
	Content          string
	FeaturedImageURL string
	Visibility       string
}

// CreatePost publishes a post. Only the fan club owner may post.
func (s *Service) CreatePost(ctx context.Context, fanclubID string, author models.User, in CreatePostInput) (models.Post, error) {
	title := strings.TrimSpace(in.Title)
	content := richtext.Sanitize(strings.TrimSpace(in.Content))
	if title == "" || richtext.PlainText(content) == "" {
		return models.Post{}, invalid("title and content are required")
	}
	visibility := in.Visibility
	switch visibility {
	case "":
		visibility = models.VisibilityPublic
	case models.VisibilityPublic, models.VisibilityMembers:
	default:
		return models.Post{}, invalid("visibility must be public or members")
	}
	club, err := s.store.FindFanclub(ctx, fanclubID)
	if err != nil {
		return models.Post{}, err
	}
	if club.OwnerID != author.ID {
		return models.Post{}, ErrForbidden
	}
	excerpt := strings.TrimSpace(in.Excerpt)
	if excerpt == "" {
		excerpt = richtext.Excerpt(content)
	}
	post := models.Post{
		ID:               newID("post"),
		FanclubID:        fanclubID,
		AuthorID:         author.ID,
		AuthorName:       author.DisplayName(),
		Title:            title,
		Excerpt:          excerpt,
		Content:          content,
		FeaturedImageURL: strings.TrimSpace(in.FeaturedImageURL),
		Visibility:       visibility,
		CreatedAt:        timeNow(),
	}
	created, err := s.store.CreatePost(ctx, post)
	if err != nil {
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// Posts lists a fan club's posts as seen by viewerID (empty when anonymous).
// Members-only posts keep their title and excerpt for non-members but lose
// their content and are flagged as locked.
func (s *Service) Posts(ctx context.Context, fanclubID, viewerID string) ([]models.Post, error) {
	if _, err := s.store.FindFanclub(ctx, fanclubID); err != nil {
		return nil, err
	}
	posts, err := s.store.ListPosts(ctx, fanclubID)
	if err != nil {
		return nil, err
	}
	_, member, err := s.Membership(ctx, fanclubID, viewerID)
	if err != nil {
		return nil, err
	}
	liked := map[string]bool{}
	if viewerID != "" {
		if liked, err = s.store.LikedPostIDs(ctx, fanclubID, viewerID); err != nil {
			return nil, err
		}
	}
	for i := range posts {
		posts[i].IsLiked = liked[posts[i].ID]
		if posts[i].Visibility == models.VisibilityMembers && !member {
			posts[i].Content = ""
			posts[i].Locked = true
		}
	}
	return posts, nil
}

// SetLike likes or unlikes a post on behalf of user.
func (s *Service) SetLike(ctx context.Context, postID string, user models.User, liked bool) (models.Post, error) {
	post, err := s.store.FindPost(ctx, postID)
	if err != nil {
		return models.Post{}, err
	}
	if post.Visibility == models.VisibilityMembers {
		if _, member, err := s.Membership(ctx, post.FanclubID, user.ID); err != nil {
			return models.Post{}, err
		} else if !member {
			return models.Post{}, ErrForbidden
		}
	}
	return s.store.SetLike(ctx, postID, user.ID, liked)
}
