// Package gateway is the client's single data access capability. Remote talks
// to the REST API; Local runs the same rules in process over the state file.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hongminglow/fanclub/internal/models"
	"github.com/hongminglow/fanclub/internal/models/dto"
)

// ErrUnauthorized is matched by any APIError with status 401.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a failed call with the message reported by the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// UserMessage extracts a message suitable for showing to the user.
func UserMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

// TokenSource supplies the bearer token for each call.
type TokenSource interface {
	Token() string
}

// Auth is the result of a login or signup.
type Auth = dto.LoginResponse

// Gateway lists every backend operation the client performs.
type Gateway interface {
	Login(ctx context.Context, email, password string) (Auth, error)
	Signup(ctx context.Context, req dto.SignupRequest) (Auth, error)
	CurrentUser(ctx context.Context) (models.User, error)
	UpdatePassword(ctx context.Context, current, next string) error

	Fanclubs(ctx context.Context, query string) ([]models.Fanclub, error)
	Fanclub(ctx context.Context, id string) (models.Fanclub, error)
	CreateFanclub(ctx context.Context, req dto.CreateFanclubRequest) (models.Fanclub, error)
	JoinFanclub(ctx context.Context, id string) (models.Fanclub, error)
	LeaveFanclub(ctx context.Context, id string) (models.Fanclub, error)
	JoinedFanclubs(ctx context.Context) ([]models.Fanclub, error)
	Membership(ctx context.Context, id string) (dto.MembershipResponse, error)
	Members(ctx context.Context, id string) ([]models.Membership, error)

	Posts(ctx context.Context, fanclubID string) ([]models.Post, error)
	CreatePost(ctx context.Context, fanclubID string, req dto.CreatePostRequest) (models.Post, error)
	SetLike(ctx context.Context, postID string, liked bool) (models.Post, error)

	ChatMessages(ctx context.Context, fanclubID, lastID string) ([]models.ChatMessage, error)
	SendChatMessage(ctx context.Context, fanclubID, message string) (models.ChatMessage, error)
	DeleteChatMessage(ctx context.Context, fanclubID, messageID string) error

	UploadImage(ctx context.Context, filename string, content io.Reader) (string, error)
}
