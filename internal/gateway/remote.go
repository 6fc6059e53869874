package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/models/dto"
)

// Ensure Remote satisfies the Gateway interface at compile time.
var _ Gateway = (*Remote)(nil)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

// Remote calls the REST API with the session's bearer token.
type Remote struct {
	base           string
	client         *http.Client
	tokens         TokenSource
	onUnauthorized func()
}

// RemoteOption customises a Remote gateway.
type RemoteOption func(*Remote)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) { r.client = c }
}

// WithUnauthorizedHook runs fn whenever the API answers 401.
func WithUnauthorizedHook(fn func()) RemoteOption {
	return func(r *Remote) { r.onUnauthorized = fn }
}

// NewRemote builds a gateway rooted at base, e.g. http://localhost:3000/api.
func NewRemote(base string, timeout time.Duration, tokens TokenSource, opts ...RemoteOption) *Remote {
	r := &Remote{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: timeout},
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Remote) do(ctx context.Context, method, path string, body any, out any) error {
	return r.call(ctx, method, path, body, out, true)
}

// call sends a JSON request. A 401 runs the unauthorized hook only when the
// request is bound to the session; for login and signup it means wrong
// credentials.
func (r *Remote) call(ctx context.Context, method, path string, body any, out any, sessionBound bool) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.base+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return r.send(req, out, sessionBound)
}

func (r *Remote) send(req *http.Request, out any, sessionBound bool) error {
	if token := r.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Message = env.Error
			if apiErr.Message == "" {
				apiErr.Message = env.Message
			}
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		if resp.StatusCode == http.StatusUnauthorized && sessionBound && r.onUnauthorized != nil {
			r.onUnauthorized()
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func clubPath(id string, parts ...string) string {
	p := "/fanclubs/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

// Login authenticates with email and password.
func (r *Remote) Login(ctx context.Context, email, password string) (Auth, error) {
	var out Auth
	err := r.call(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &out, false)
	return out, err
}

// Signup registers a new account.
func (r *Remote) Signup(ctx context.Context, req dto.SignupRequest) (Auth, error) {
	var out Auth
	err := r.call(ctx, http.MethodPost, "/auth/signup", req, &out, false)
	return out, err
}

// CurrentUser revalidates the token.
func (r *Remote) CurrentUser(ctx context.Context) (models.User, error) {
	var out models.User
	err := r.do(ctx, http.MethodGet, "/auth/user", nil, &out)
	return out, err
}

// UpdatePassword changes the password of the signed-in user.
func (r *Remote) UpdatePassword(ctx context.Context, current, next string) error {
	return r.do(ctx, http.MethodPost, "/auth/update-password",
		dto.UpdatePasswordRequest{CurrentPassword: current, NewPassword: next}, nil)
}

// Fanclubs lists fan clubs, optionally filtered.
func (r *Remote) Fanclubs(ctx context.Context, query string) ([]models.Fanclub, error) {
	path := "/fanclubs"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var out []models.Fanclub
	err := r.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Fanclub loads one fan club.
func (r *Remote) Fanclub(ctx context.Context, id string) (models.Fanclub, error) {
	var out models.Fanclub
	err := r.do(ctx, http.MethodGet, clubPath(id), nil, &out)
	return out, err
}

// CreateFanclub creates a fan club owned by the signed-in user.
func (r *Remote) CreateFanclub(ctx context.Context, req dto.CreateFanclubRequest) (models.Fanclub, error) {
	var out models.Fanclub
	err := r.do(ctx, http.MethodPost, "/fanclubs", req, &out)
	return out, err
}

// JoinFanclub joins and returns the updated fan club.
func (r *Remote) JoinFanclub(ctx context.Context, id string) (models.Fanclub, error) {
	var out models.Fanclub
	err := r.do(ctx, http.MethodPost, clubPath(id, "join"), nil, &out)
	return out, err
}

// LeaveFanclub leaves and returns the updated fan club.
func (r *Remote) LeaveFanclub(ctx context.Context, id string) (models.Fanclub, error) {
	var out models.Fanclub
	err := r.do(ctx, http.MethodDelete, clubPath(id, "leave"), nil, &out)
	return out, err
}

// JoinedFanclubs lists the signed-in user's fan clubs.
func (r *Remote) JoinedFanclubs(ctx context.Context) ([]models.Fanclub, error) {
	var out []models.Fanclub
	err := r.do(ctx, http.MethodGet, "/fanclubs/joined", nil, &out)
	return out, err
}

// Membership asks the backend whether the signed-in user belongs to the fan club.
func (r *Remote) Membership(ctx context.Context, id string) (dto.MembershipResponse, error) {
	var out dto.MembershipResponse
	err := r.do(ctx, http.MethodGet, clubPath(id, "membership"), nil, &out)
	return out, err
}

// Members lists a fan club's members.
func (r *Remote) Members(ctx context.Context, id string) ([]models.Membership, error) {
	var out []models.Membership
	err := r.do(ctx, http.MethodGet, clubPath(id, "members"), nil, &out)
	return out, err
}

// Posts lists a fan club's posts.
func (r *Remote) Posts(ctx context.Context, fanclubID string) ([]models.Post, error) {
	var out []models.Post
	err := r.do(ctx, http.MethodGet, clubPath(fanclubID, "posts"), nil, &out)
	return out, err
}

// CreatePost publishes a post.
func (r *Remote) CreatePost(ctx context.Context, fanclubID string, req dto.CreatePostRequest) (models.Post, error) {
	var out models.Post
	err := r.do(ctx, http.MethodPost, clubPath(fanclubID, "posts"), req, &out)
	return out, err
}

// SetLike likes or unlikes a post.
func (r *Remote) SetLike(ctx context.Context, postID string, liked bool) (models.Post, error) {
	method, action := http.MethodPost, "like"
	if !liked {
		method, action = http.MethodDelete, "unlike"
	}
	var out models.Post
	err := r.do(ctx, method, "/posts/"+url.PathEscape(postID)+"/"+action, nil, &out)
	return out, err
}

// ChatMessages loads the chat, or only messages after lastID.
func (r *Remote) ChatMessages(ctx context.Context, fanclubID, lastID string) ([]models.ChatMessage, error) {
	path := clubPath(fanclubID, "chat")
	if lastID != "" {
		path += "?last_id=" + url.QueryEscape(lastID)
	}
	var out []models.ChatMessage
	err := r.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// SendChatMessage posts a chat message.
func (r *Remote) SendChatMessage(ctx context.Context, fanclubID, message string) (models.ChatMessage, error) {
	var out models.ChatMessage
	err := r.do(ctx, http.MethodPost, clubPath(fanclubID, "chat"), dto.ChatMessageRequest{Message: message}, &out)
	return out, err
}

// DeleteChatMessage removes a chat message.
func (r *Remote) DeleteChatMessage(ctx context.Context, fanclubID, messageID string) error {
	return r.do(ctx, http.MethodDelete, clubPath(fanclubID, "chat", url.PathEscape(messageID)), nil, nil)
}

// UploadImage sends content as multipart field "image" and returns its URL.
func (r *Remote) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(fw, content); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build upload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+"/upload", &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out dto.UploadResponse
	if err := r.send(req, &out, true); err != nil {
		return "", err
	}
	return out.URL, nil
}
