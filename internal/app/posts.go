package app

import (
	"context"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/models/dto"
	"github.com/hongminglow/fanclub/internal/richtext"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// PostForm is the post editor. Body is markdown.
type PostForm struct {
	Title            string
	Body             string
	Excerpt          string
	FeaturedImageURL string
	Visibility       string
}

// CreatePost publishes a post to the current fan club and reloads its posts.
func (a *App) CreatePost(ctx context.Context, f PostForm) (models.Post, error) {
	if !a.sess.LoggedIn() {
		return models.Post{}, a.needLogin(msgCreateNeedsLogin, AuthLogin)
	}
	club, err := a.currentFanclub()
	if err != nil {
		return models.Post{}, err
	}
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		return models.Post{}, a.reject(msgTitleRequired)
	}
	if strings.TrimSpace(f.Body) == "" {
		return models.Post{}, a.reject(msgRequiredFields)
	}
	switch f.Visibility {
	case "", models.VisibilityPublic, models.VisibilityMembers:
	default:
		return models.Post{}, a.reject(msgRequiredFields)
	}
	content, err := richtext.FromMarkdown(f.Body)
	if err != nil {
		a.logger.Printf("render post body: %v", err)
		return models.Post{}, a.reject(msgPostFailed)
	}

	done := a.loading.Begin()
	defer done()
	post, err := a.gw.CreatePost(ctx, club.ID, dto.CreatePostRequest{
		Title:            f.Title,
		Excerpt:          strings.TrimSpace(f.Excerpt),
		Content:          content,
		FeaturedImageURL: strings.TrimSpace(f.FeaturedImageURL),
		Visibility:       f.Visibility,
	})
	if err != nil {
		return models.Post{}, a.fail("create post in "+club.ID, msgPostFailed, err)
	}
	a.notifier.Notify(NoticeSuccess, msgPostOK)

	c := ContainerPosts
	if a.Page() == PageAdmin {
		c = ContainerAdminPosts
	}
	return post, a.loadPosts(ctx, c, a.reloadFresh())
}

// Like likes or unlikes a post and redraws the loaded post list.
func (a *App) Like(ctx context.Context, postID string, liked bool) (models.Post, error) {
	if !a.sess.LoggedIn() {
		return models.Post{}, a.needLogin(msgLikeNeedsLogin, AuthLogin)
	}
	done := a.loading.Begin()
	defer done()

	post, err := a.gw.SetLike(ctx, postID, liked)
	if err != nil {
		return models.Post{}, a.fail("like post "+postID, msgLikeFailed, err)
	}

	a.mu.Lock()
	i := slices.IndexFunc(a.posts, func(p models.Post) bool { return p.ID == postID })
	if i >= 0 {
		a.posts[i].LikeCount = post.LikeCount
		a.posts[i].IsLiked = post.IsLiked
	}
	posts := slices.Clone(a.posts)
	c := a.postsContainer
	a.mu.Unlock()
	if i >= 0 {
		a.view.RenderPosts(c, posts)
	}
	return post, nil
}

// UploadImage uploads a cover or post image and returns its URL.
func (a *App) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	if !a.sess.LoggedIn() {
		return "", a.needLogin(msgCreateNeedsLogin, AuthLogin)
	}
	if filename == "" || content == nil {
		return "", a.reject(msgUploadNeedsFile)
	}
	if !slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(filename))) {
		return "", a.reject(msgUploadBadType)
	}
	done := a.loading.Begin()
	defer done()

	url, err := a.gw.UploadImage(ctx, filepath.Base(filename), content)
	if err != nil {
		return "", a.fail("upload "+filename, msgUploadFailed, err)
	}
	a.notifier.Notify(NoticeSuccess, msgUploadOK)
	return url, nil
}
