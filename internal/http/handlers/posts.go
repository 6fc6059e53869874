package handlers

import (
	"net/http"

	"github.com/hongminglow/fanclub/internal/fanclub"
	"github.com/hongminglow/fanclub/internal/http/respond"
	"github.com/hongminglow/fanclub/internal/middleware"
	"github.com/hongminglow/fanclub/internal/models/dto"
)

// PostHandler serves fan club posts and likes.
type PostHandler struct {
	svc   *fanclub.Service
	authn *middleware.Authenticator
}

// NewPostHandler constructs the handler.
func NewPostHandler(svc *fanclub.Service, authn *middleware.Authenticator) *PostHandler {
	return &PostHandler{svc: svc, authn: authn}
}

// Register attaches post routes to the mux.
func (h *PostHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/fanclubs/{id}/posts", h.authn.Optional(h.handleList))
	mux.HandleFunc("POST /api/fanclubs/{id}/posts", h.authn.Require(h.handleCreate))
	mux.HandleFunc("POST /api/posts/{id}/like", h.authn.Require(h.handleLike))
	mux.HandleFunc("DELETE /api/posts/{id}/unlike", h.authn.Require(h.handleUnlike))
}

func (h *PostHandler) handleList(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.UserFrom(r.Context())
	posts, err := h.svc.Posts(r.Context(), r.PathValue("id"), viewer.ID)
	if err != nil {
		writeServiceError(w, err, "list posts")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", nonNil(posts))
}

func (h *PostHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	var req dto.CreatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	post, err := h.svc.CreatePost(r.Context(), r.PathValue("id"), user, fanclub.CreatePostInput{
		Title:            req.Title,
		Excerpt:          req.Excerpt,
		Content:          req.Content,
		FeaturedImageURL: req.FeaturedImageURL,
		Visibility:       req.Visibility,
	})
	if err != nil {
		writeServiceError(w, err, "create post")
		return
	}
	respond.JSON(w, http.StatusCreated, "post published", post)
}

func (h *PostHandler) handleLike(w http.ResponseWriter, r *http.Request) {
	h.setLike(w, r, true)
}

func (h *PostHandler) handleUnlike(w http.ResponseWriter, r *http.Request) {
	h.setLike(w, r, false)
}

func (h *PostHandler) setLike(w http.ResponseWriter, r *http.Request, liked bool) {
	user, _ := middleware.UserFrom(r.Context())
	post, err := h.svc.SetLike(r.Context(), r.PathValue("id"), user, liked)
	if err != nil {
		writeServiceError(w, err, "update like")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", post)
}
