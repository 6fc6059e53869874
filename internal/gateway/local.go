package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/hongminglow/fanclub/internal/fanclub"
	"github.com/hongminglow/fanclub/internal/localstore"
	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/models/dto"
	"github.com/hongminglow/fanclub/internal/storage"
)

// Ensure Local satisfies the Gateway interface at compile time.
var _ Gateway = (*Local)(nil)

// keySessions maps issued mock tokens to user ids.
const keySessions = "mock_sessions_db"

const placeholderImageURL = "https://via.placeholder.com/600x400/01D3D9/white?text="

// Local serves every call in process from a fanclub.Service, typically over
// the memory store persisted in the client's state file. Tokens are opaque
// mock_token_<n> strings resolved through the same file.
type Local struct {
	svc            *fanclub.Service
	kv             *localstore.Store
	tokens         TokenSource
	onUnauthorized func()

	mu  sync.Mutex
	now func() time.Time
}

// NewLocal builds the in-process gateway. onUnauthorized may be nil.
func NewLocal(svc *fanclub.Service, kv *localstore.Store, tokens TokenSource, onUnauthorized func()) *Local {
	return &Local{svc: svc, kv: kv, tokens: tokens, onUnauthorized: onUnauthorized, now: time.Now}
}

func (l *Local) issueToken(userID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sessions := map[string]string{}
	if _, err := l.kv.Decode(keySessions, &sessions); err != nil {
		return "", err
	}
	n := l.now().UnixNano()
	token := "mock_token_" + strconv.FormatInt(n, 10)
	for sessions[token] != "" {
		n++
		token = "mock_token_" + strconv.FormatInt(n, 10)
	}
	sessions[token] = userID
	if err := l.kv.Encode(keySessions, sessions); err != nil {
		return "", err
	}
	return token, nil
}

// currentUser resolves the session token, failing with a 401 APIError.
func (l *Local) currentUser(ctx context.Context) (models.User, error) {
	token := l.tokens.Token()
	sessions := map[string]string{}
	if token != "" {
		if _, err := l.kv.Decode(keySessions, &sessions); err != nil {
			return models.User{}, err
		}
	}
	id, ok := sessions[token]
	if !ok {
		return models.User{}, l.unauthorized()
	}
	user, err := l.svc.User(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, l.unauthorized()
	}
	return user, err
}

func (l *Local) unauthorized() error {
	if l.onUnauthorized != nil {
		l.onUnauthorized()
	}
	return &APIError{Status: http.StatusUnauthorized, Message: "authentication required"}
}

// translate gives service errors the same shape the REST API produces.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var verr *fanclub.ValidationError
	switch {
	case errors.As(err, &verr):
		return &APIError{Status: http.StatusBadRequest, Message: verr.Message}
	case errors.Is(err, storage.ErrNotFound):
		return &APIError{Status: http.StatusNotFound, Message: "not found"}
	case errors.Is(err, fanclub.ErrInvalidCredentials):
		return &APIError{Status: http.StatusUnauthorized, Message: "invalid email or password"}
	case errors.Is(err, fanclub.ErrForbidden):
		return &APIError{Status: http.StatusForbidden, Message: "you are not allowed to do that"}
	case errors.Is(err, fanclub.ErrEmailTaken),
		errors.Is(err, fanclub.ErrAlreadyMember),
		errors.Is(err, fanclub.ErrNotMember),
		errors.Is(err, fanclub.ErrOwnerCannotLeave):
		return &APIError{Status: http.StatusConflict, Message: err.Error()}
	}
	return err
}

// Login authenticates with email and password.
func (l *Local) Login(ctx context.Context, email, password string) (Auth, error) {
	user, err := l.svc.Authenticate(ctx, email, password)
	if err != nil {
		return Auth{}, translate(err)
	}
	token, err := l.issueToken(user.ID)
	if err != nil {
		return Auth{}, err
	}
	return Auth{Token: token, User: user}, nil
}

// Signup registers a new account and logs it in.
func (l *Local) Signup(ctx context.Context, req dto.SignupRequest) (Auth, error) {
	user, err := l.svc.Signup(ctx, fanclub.SignupInput{
		Nickname: req.Nickname,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		return Auth{}, translate(err)
	}
	token, err := l.issueToken(user.ID)
	if err != nil {
		return Auth{}, err
	}
	return Auth{Token: token, User: user}, nil
}

// CurrentUser resolves the session token.
func (l *Local) CurrentUser(ctx context.Context) (models.User, error) {
	return l.currentUser(ctx)
}

// UpdatePassword changes the signed-in user's password.
func (l *Local) UpdatePassword(ctx context.Context, current, next string) error {
	user, err := l.currentUser(ctx)
	if err != nil {
		return err
	}
	err = l.svc.ChangePassword(ctx, user.ID, current, next)
	if errors.Is(err, fanclub.ErrInvalidCredentials) {
		return &APIError{Status: http.StatusBadRequest, Message: "current password is incorrect"}
	}
	return translate(err)
}

// Fanclubs lists fan clubs, optionally filtered.
func (l *Local) Fanclubs(ctx context.Context, query string) ([]models.Fanclub, error) {
	clubs, err := l.svc.Fanclubs(ctx, query)
	return clubs, translate(err)
}

// Fanclub loads one fan club.
func (l *Local) Fanclub(ctx context.Context, id string) (models.Fanclub, error) {
	club, err := l.svc.Fanclub(ctx, id)
	return club, translate(err)
}

// CreateFanclub creates a fan club owned by the signed-in user.
func (l *Local) CreateFanclub(ctx context.Context, req dto.CreateFanclubRequest) (models.Fanclub, error) {
	user, err := l.currentUser(ctx)
	if err != nil {
		return models.Fanclub{}, err
	}
	club, err := l.svc.CreateFanclub(ctx, user, fanclub.CreateFanclubInput{
		Name:          req.Name,
		Description:   req.Description,
		Purpose:       req.Purpose,
		MonthlyFee:    req.MonthlyFee,
		CoverImageURL: req.CoverImageURL,
	})
	return club, translate(err)
}

// JoinFanclub joins and returns the updated fan club.
func (l *Local) JoinFanclub(ctx context.Context, id string) (models.Fanclub, error) {
	user, err := l.currentUser(ctx)
	if err != nil {
		return models.Fanclub{}, err
	}
	club, err := l.svc.Join(ctx, id, user)
	return club, translate(err)
}

// LeaveFanclub leaves and returns the updated fan club.
func (l *Local) LeaveFanclub(ctx context.Context, id string) (models.Fanclub, error) {
	user, err := l.currentUser(ctx)
	if err != nil {
		return models.Fanclub{}, err
	}
	club, err := l.svc.Leave(ctx, id, user)
	return club, translate(err)
}

// JoinedFanclubs lists the signed-in user's fan clubs.
func (l *Local) JoinedFanclubs(ctx context.Context) ([]models.Fanclub, error) {
	user, err := l.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	clubs, err := l.svc.JoinedFanclubs(ctx, user.ID)
	return clubs, translate(err)
}

// Membership reports whether the signed-in user belongs to the fan club.
// Anonymous callers are simply not members.
func (l *Local) Membership(ctx context.Context, id string) (dto.MembershipResponse, error) {
	if l.tokens.Token() == "" {
		return dto.MembershipResponse{}, nil
	}
	user, err := l.currentUser(ctx)
	if err != nil {
		return dto.MembershipResponse{}, err
	}
	m, ok, err := l.svc.Membership(ctx, id, user.ID)
	if err != nil {
		return dto.MembershipResponse{}, translate(err)
	}
	return dto.MembershipResponse{IsMember: ok, Role: m.Role}, nil
}

// Members lists a fan club's members.
func (l *Local) Members(ctx context.Context, id string) ([]models.Membership, error) {
	members, err := l.svc.Members(ctx, id)
	return members, translate(err)
}

// viewerID is the signed-in user's id, or empty when anonymous.
func (l *Local) viewerID(ctx context.Context) (string, error) {
	if l.tokens.Token() == "" {
		return "", nil
	}
	user, err := l.currentUser(ctx)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// Posts lists a fan club's posts as seen by the signed-in user.
func (l *Local) Posts(ctx context.Context, fanclubID string) ([]models.Post, error) {
	viewer, err := l.viewerID(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := l.svc.Posts(ctx, fanclubID, viewer)
	return posts, translate(err)
}

// CreatePost publishes a post.
func (l *Local) CreatePost(ctx context.Context, fanclubID string, req dto.CreatePostRequest) (models.Post, error) {
	user, err := l.currentUser(ctx)
	if err != nil {
		return models.Post{}, err
	}
	post, err := l.svc.CreatePost(ctx, fanclubID, user, fanclub.CreatePostInput{
		Title:            req.Title,
		Excerpt:          req.Excerpt,
		Content:          req.Content,
		FeaturedImageURL: req.FeaturedImageURL,
		Visibility:       req.Visibility,
	})
	return post, translate(err)
}

// SetLike likes or unlikes a post.
func (l *Local) SetLike(ctx context.Context, postID string, liked bool) (models.Post, error) {
	user, err := l.currentUser(ctx)
	if err != nil {
		return models.Post{}, err
	}
	post, err := l.svc.SetLike(ctx, postID, user, liked)
	return post, translate(err)
}

// ChatMessages loads the chat, or only messages after lastID.
func (l *Local) ChatMessages(ctx context.Context, fanclubID, lastID string) ([]models.ChatMessage, error) {
	msgs, err := l.svc.ChatMessages(ctx, fanclubID, lastID)
	return msgs, translate(err)
}

// SendChatMessage appends a chat message.
func (l *Local) SendChatMessage(ctx context.Context, fanclubID, message string) (models.ChatMessage, error) {
	user, err := l.currentUser(ctx)
	if err != nil {
		return models.ChatMessage{}, err
	}
	msg, err := l.svc.SendChatMessage(ctx, fanclubID, user, message)
	return msg, translate(err)
}

// DeleteChatMessage removes a chat message.
func (l *Local) DeleteChatMessage(ctx context.Context, fanclubID, messageID string) error {
	user, err := l.currentUser(ctx)
	if err != nil {
		return err
	}
	return translate(l.svc.DeleteChatMessage(ctx, fanclubID, messageID, user))
}

// UploadImage stores nothing and returns a placeholder URL naming the file.
func (l *Local) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	if _, err := l.currentUser(ctx); err != nil {
		return "", err
	}
	if _, err := io.Copy(io.Discard, content); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return placeholderImageURL + url.QueryEscape(filepath.Base(filename)), nil
}
